//go:build !unix

package platform

import "context"

// CycleOnSignal is unavailable without SIGUSR1.
func (h *Headless) CycleOnSignal(ctx context.Context) {
	h.log.Printf("switch cycling by signal is not supported on this system")
}
