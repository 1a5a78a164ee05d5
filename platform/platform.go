// Package platform describes the hardware the run-loop drives: the
// three-position switch, the two status LEDs, the watchdog and the power
// controller.
package platform

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Position of the mode switch.
type Position int

const (
	// USB is the USB/OFF position: the device is a tethered peripheral.
	USB Position = iota
	// Custom runs the session with the red LED.
	Custom
	// Default runs the session with the green LED.
	Default
)

// ErrUnknownPosition is returned by ParsePosition.
var ErrUnknownPosition = errors.New("unknown switch position")

// ParsePosition accepts the names printed by Position.String.
func ParsePosition(s string) (Position, error) {
	switch strings.ToLower(s) {
	case "usb", "off", "usb/off":
		return USB, nil
	case "custom":
		return Custom, nil
	case "default":
		return Default, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPosition, s)
}

func (p Position) String() string {
	switch p {
	case USB:
		return "usb"
	case Custom:
		return "custom"
	case Default:
		return "default"
	}
	return fmt.Sprintf("position(%d)", int(p))
}

// Tethered reports whether p hands the device over to the host.
func (p Position) Tethered() bool {
	return p == USB
}

// Color of a status LED.
type Color int

const (
	Green Color = iota
	Red
)

func (c Color) String() string {
	if c == Red {
		return "red"
	}
	return "green"
}

// Platform is everything below the run-loop.
type Platform interface {
	SwitchPosition() Position

	SetLED(c Color, on bool)
	SetBothLEDs(on bool)

	// FeedWatchdog must be called more often than the watchdog timeout.
	FeedWatchdog()

	// Delay busy-waits with the processor awake.
	Delay(ctx context.Context, d time.Duration)

	// PowerDown sleeps in low power and returns on wake.
	PowerDown(ctx context.Context, d time.Duration)

	// ServiceTethered runs the host-serviced peripheral routine and
	// returns when the switch leaves USB or ctx ends.
	ServiceTethered(ctx context.Context)
}

// sleep waits for d or until ctx ends.
func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
