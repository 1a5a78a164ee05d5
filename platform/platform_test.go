package platform

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"altair/logger"
)

func TestParsePosition(t *testing.T) {
	tests := []struct {
		in      string
		want    Position
		wantErr bool
	}{
		{"default", Default, false},
		{"CUSTOM", Custom, false},
		{"usb", USB, false},
		{"off", USB, false},
		{"middle", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePosition(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownPosition) {
					t.Errorf("ParsePosition(%q) error = %v, want ErrUnknownPosition", tt.in, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParsePosition(%q) = %v, %v, want %v", tt.in, got, err, tt.want)
			}
			if back, _ := ParsePosition(got.String()); back != got {
				t.Errorf("ParsePosition(%v.String()) = %v", got, back)
			}
		})
	}
}

func TestHeadlessCycle(t *testing.T) {
	h := NewHeadless(USB, logger.Discard())
	for _, want := range []Position{Custom, Default, USB, Custom} {
		if got := h.Cycle(); got != want || h.SwitchPosition() != want {
			t.Errorf("Cycle() = %v, SwitchPosition() = %v, want %v", got, h.SwitchPosition(), want)
		}
	}
}

func TestHeadlessLEDs(t *testing.T) {
	h := NewHeadless(Default, logger.Discard())
	h.SetLED(Red, true)
	if !h.LED(Red) || h.LED(Green) {
		t.Errorf("LED(red) = %v, LED(green) = %v, want true, false", h.LED(Red), h.LED(Green))
	}
	h.SetBothLEDs(true)
	h.SetBothLEDs(false)
	if h.LED(Red) || h.LED(Green) {
		t.Error("SetBothLEDs(false) left an LED on")
	}
}

func TestServiceTetheredReturnsOnSwitch(t *testing.T) {
	h := NewHeadless(USB, logger.Discard())
	done := make(chan struct{})
	go func() {
		h.ServiceTethered(context.Background())
		close(done)
	}()

	time.Sleep(2 * tetheredPoll)
	h.SetSwitch(Default)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("ServiceTethered did not return after the switch moved")
	}
	if h.Feeds() == 0 {
		t.Error("ServiceTethered did not feed the watchdog")
	}
}

func TestServiceTetheredReturnsOnCancel(t *testing.T) {
	h := NewHeadless(USB, logger.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	h.ServiceTethered(ctx)
}

func TestWatchdogExpires(t *testing.T) {
	var w Watchdog
	var fired atomic.Bool
	done := make(chan struct{})
	go func() {
		w.Supervise(context.Background(), 10*time.Millisecond, logger.Discard(), func() { fired.Store(true) })
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watchdog never expired")
	}
	if !fired.Load() {
		t.Error("expire hook not called")
	}
}

func TestWatchdogFedDoesNotExpire(t *testing.T) {
	var w Watchdog
	var fired atomic.Bool
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Supervise(ctx, 20*time.Millisecond, logger.Discard(), func() { fired.Store(true) })
		close(done)
	}()

	stop := time.After(200 * time.Millisecond)
feeding:
	for {
		select {
		case <-stop:
			break feeding
		default:
			w.Feed()
			time.Sleep(time.Millisecond)
		}
	}
	cancel()
	<-done

	if fired.Load() {
		t.Error("watchdog expired while being fed")
	}
}
