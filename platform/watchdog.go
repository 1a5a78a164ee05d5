package platform

import (
	"context"
	"log"
	"sync/atomic"
	"time"
)

// DefaultWatchdogTimeout is the supervisor period of the simulated
// platforms.
const DefaultWatchdogTimeout = 2 * time.Second

// Watchdog counts feeds and resets the device when they stop.
type Watchdog struct {
	feeds atomic.Uint64
}

// Feed records one liveness attestation.
func (w *Watchdog) Feed() {
	w.feeds.Add(1)
}

// Feeds returns the number of feeds so far.
func (w *Watchdog) Feeds() uint64 {
	return w.feeds.Load()
}

// Supervise checks the feed count every timeout. If no feed arrived in a
// whole period it calls expire once and returns.
func (w *Watchdog) Supervise(ctx context.Context, timeout time.Duration, log *log.Logger, expire func()) {
	ticker := time.NewTicker(timeout)
	defer ticker.Stop()

	last := w.feeds.Load()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n := w.feeds.Load()
			if n == last {
				log.Printf("watchdog: no feed for %v, resetting", timeout)
				expire()
				return
			}
			last = n
		}
	}
}
