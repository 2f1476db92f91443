package monitor

import (
	"context"
	"time"
)

type pollOutcome int

const (
	pollSatisfied pollOutcome = iota
	pollTimeout
	pollCancelled
)

// pollLoop evaluates cond every interval until it is satisfied, the
// deadline derived from now() passes, or the context is cancelled. The
// clock is injected so tests can drive phase deadlines without sleeping.
func pollLoop(ctx context.Context, now func() time.Time, interval, timeout time.Duration, cond func(context.Context) bool) pollOutcome {
	deadline := now().Add(timeout)
	for {
		if ctx.Err() != nil {
			return pollCancelled
		}
		if cond(ctx) {
			return pollSatisfied
		}
		if !now().Before(deadline) {
			return pollTimeout
		}

		select {
		case <-ctx.Done():
			return pollCancelled
		case <-time.After(interval):
		}
	}
}
