package task

import (
	"context"
	"time"
)

// Poller executes a function immediately and then repeatedly in a fixed
// interval until its context is cancelled
type Poller struct {
	Interval time.Duration
	Run      func(ctx context.Context)
}

// Loop blocks and keeps executing the poll function.
// It returns once ctx is cancelled; a poll already in flight is not
// interrupted beyond the cancellation of its own context.
func (poller *Poller) Loop(ctx context.Context) {
	poller.Run(ctx)

	ticker := time.NewTicker(poller.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			poller.Run(ctx)
		}
	}
}
