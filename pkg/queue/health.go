package queue

import (
	"context"
	"time"
)

// healthMonitor is a fast liveness probe for the backing store, consulted
// before operations that would otherwise fail slowly on a dead connection.
type healthMonitor struct {
	store   Store
	timeout time.Duration
}

func newHealthMonitor(store Store, timeout time.Duration) *healthMonitor {
	return &healthMonitor{store: store, timeout: timeout}
}

// Healthy issues a single ping under a short deadline. Any error or timeout
// means unhealthy; the error itself is deliberately swallowed so callers can
// fail fast without untangling connectivity causes.
func (h *healthMonitor) Healthy(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	return h.store.Ping(ctx) == nil
}
