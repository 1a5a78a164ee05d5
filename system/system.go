package system

import (
	"context"
	"fmt"
	"log"
	"time"

	"altair/console"
	"altair/platform"
)

// ClearScreen is sent to the host at the start of every session.
const ClearScreen = "\033[2J\033[H"

// Config holds the loop thresholds. Counts are in loop iterations.
type Config struct {
	// LEDFlashThreshold iterations between LED toggles.
	LEDFlashThreshold uint32

	// SwitchChangeThreshold iterations a new switch reading must hold
	// before it is committed.
	SwitchChangeThreshold uint32

	// WaitInterval is used for power-down and around the banner.
	WaitInterval time.Duration
}

// DefaultConfig returns the firmware constants.
func DefaultConfig() Config {
	return Config{
		LEDFlashThreshold:     50000,
		SwitchChangeThreshold: 200000,
		WaitInterval:          200 * time.Millisecond,
	}
}

// Machine is the emulated computer as seen by the loop.
type Machine interface {
	Reset()
	Step()
}

// Link is the byte transport as seen by the loop.
type Link interface {
	Reset()
	SendOutbound(p []byte) error
}

// Stats counts what the device has done since New.
type Stats struct {
	PowerOns   uint64
	Sessions   uint64
	Iterations uint64
	Toggles    uint64
}

// Device is the top-level state machine.
type Device struct {
	cfg      Config
	platform platform.Platform
	machine  Machine
	link     Link
	console  console.Console
	log      *log.Logger

	// mode state
	position platform.Position
	debounce uint32
	led      bool
	ledCount uint32

	stats Stats
}

// New returns a device. Nothing runs until Run or PowerOn.
func New(cfg Config, p platform.Platform, m Machine, l Link, c console.Console, log *log.Logger) *Device {
	return &Device{
		cfg:      cfg,
		platform: p,
		machine:  m,
		link:     l,
		console:  c,
		log:      log,
	}
}

// Run repeats power-on cycles until ctx ends. Waking from power-down is a
// fresh power-on, as after a reset.
func (d *Device) Run(ctx context.Context) error {
	for ctx.Err() == nil {
		d.PowerOn(ctx)
	}
	return ctx.Err()
}

// PowerOn runs from reset to the next power-down.
func (d *Device) PowerOn(ctx context.Context) {
	d.stats.PowerOns++
	d.position = d.platform.SwitchPosition()
	d.status("power on, switch %v", d.position)

	if d.position.Tethered() {
		d.status("tethered to host")
		d.platform.ServiceTethered(ctx)
		d.platform.PowerDown(ctx, d.cfg.WaitInterval)
		return
	}

	for {
		d.session(ctx)
		d.platform.SetBothLEDs(false)
		if d.position.Tethered() || ctx.Err() != nil {
			break
		}
	}

	d.status("power down")
	d.platform.PowerDown(ctx, d.cfg.WaitInterval)
}

// session is the Running state. It returns once a switch change has been
// committed or ctx ends.
func (d *Device) session(ctx context.Context) {
	d.stats.Sessions++

	d.platform.Delay(ctx, d.cfg.WaitInterval)
	if err := d.link.SendOutbound([]byte(ClearScreen)); err != nil {
		d.log.Printf("banner not sent: %v", err)
	}
	d.platform.Delay(ctx, d.cfg.WaitInterval)

	d.machine.Reset()
	d.link.Reset()
	d.debounce = 0
	d.led = false
	d.ledCount = 0

	d.status("session %d started, switch %v, %v LED", d.stats.Sessions, d.position, ledColor(d.position))

	done := ctx.Done()
	for {
		select {
		case <-done:
			return
		default:
		}
		if d.Iterate() {
			d.status("switch moved to %v", d.position)
			return
		}
	}
}

// Iterate is one pass of the step loop. It returns true when a switch
// change has been committed, in which case the machine is not stepped.
// The watchdog is fed on every pass.
func (d *Device) Iterate() bool {
	d.stats.Iterations++

	changed := d.debounceSwitch()
	if !changed {
		d.flashLED()
		d.machine.Step()
	}
	d.platform.FeedWatchdog()
	return changed
}

func (d *Device) debounceSwitch() bool {
	current := d.platform.SwitchPosition()
	if current != d.position {
		d.debounce++
	} else {
		d.debounce = 0
	}
	if d.debounce > d.cfg.SwitchChangeThreshold {
		d.position = current
		d.debounce = 0
		return true
	}
	return false
}

func (d *Device) flashLED() {
	d.ledCount++
	if d.ledCount > d.cfg.LEDFlashThreshold {
		d.led = !d.led
		d.platform.SetLED(ledColor(d.position), d.led)
		d.ledCount = 0
		d.stats.Toggles++
	}
}

// Position returns the latched switch position.
func (d *Device) Position() platform.Position {
	return d.position
}

// Latch sets the latched switch position, as PowerOn does on entry.
func (d *Device) Latch(pos platform.Position) {
	d.position = pos
	d.debounce = 0
}

// Stats returns the counters. Not safe while Run is active.
func (d *Device) Stats() Stats {
	return d.stats
}

func (d *Device) status(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	d.log.Print(msg)
	if d.console != nil {
		if err := d.console.WriteConsole(msg); err != nil {
			d.log.Printf("console: %v", err)
		}
	}
}

func ledColor(pos platform.Position) platform.Color {
	if pos == platform.Default {
		return platform.Green
	}
	return platform.Red
}
