//go:build unix

package platform

import (
	"context"
	"os"
	"os/signal"

	"golang.org/x/sys/unix"
)

// CycleOnSignal moves the switch one notch on every SIGUSR1.
func (h *Headless) CycleOnSignal(ctx context.Context) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, unix.SIGUSR1)
	go func() {
		defer signal.Stop(c)
		for {
			select {
			case <-ctx.Done():
				return
			case <-c:
				h.Cycle()
			}
		}
	}()
}
