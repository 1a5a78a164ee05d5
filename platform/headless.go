package platform

import (
	"context"
	"log"
	"sync/atomic"
	"time"
)

// tetheredPoll is how often the tethered routine looks at the switch.
const tetheredPoll = 50 * time.Millisecond

// Headless is a platform with no front panel. The switch is set from the
// command line or moved with SIGUSR1; LEDs are only tracked.
type Headless struct {
	Watchdog

	position atomic.Int32
	leds     [2]atomic.Bool
	log      *log.Logger
}

// NewHeadless returns a platform with the switch at pos.
func NewHeadless(pos Position, log *log.Logger) *Headless {
	h := &Headless{log: log}
	h.position.Store(int32(pos))
	return h
}

// SwitchPosition implements Platform.
func (h *Headless) SwitchPosition() Position {
	return Position(h.position.Load())
}

// SetSwitch moves the switch.
func (h *Headless) SetSwitch(pos Position) {
	h.position.Store(int32(pos))
}

// Cycle moves the switch one notch: usb, custom, default, usb...
func (h *Headless) Cycle() Position {
	next := (h.SwitchPosition() + 1) % 3
	h.SetSwitch(next)
	h.log.Printf("switch moved to %v", next)
	return next
}

// SetLED implements Platform.
func (h *Headless) SetLED(c Color, on bool) {
	h.leds[c].Store(on)
}

// SetBothLEDs implements Platform.
func (h *Headless) SetBothLEDs(on bool) {
	h.leds[Green].Store(on)
	h.leds[Red].Store(on)
}

// LED returns the state of one LED.
func (h *Headless) LED(c Color) bool {
	return h.leds[c].Load()
}

// FeedWatchdog implements Platform.
func (h *Headless) FeedWatchdog() {
	h.Feed()
}

// Delay implements Platform.
func (h *Headless) Delay(ctx context.Context, d time.Duration) {
	h.Feed()
	sleep(ctx, d)
	h.Feed()
}

// PowerDown implements Platform.
func (h *Headless) PowerDown(ctx context.Context, d time.Duration) {
	h.log.Printf("powering down for %v", d)
	h.Delay(ctx, d)
}

// ServiceTethered implements Platform.
func (h *Headless) ServiceTethered(ctx context.Context) {
	h.log.Printf("tethered: waiting for the switch to leave %v", USB)
	for h.SwitchPosition().Tethered() && ctx.Err() == nil {
		h.Feed()
		sleep(ctx, tetheredPoll)
	}
}
