package monitor

import (
	"context"

	"github.com/patternforge/patternctl/internal/cluster"
	"github.com/patternforge/patternctl/internal/config"
	"github.com/patternforge/patternctl/internal/pattern"
	"github.com/patternforge/patternctl/internal/status"
	"github.com/patternforge/patternctl/internal/util/async"
)

// Monitor is one concurrent polling task. Run writes terminal state into
// the status store and never returns an error; one component's failure
// must not crash the run.
type Monitor interface {
	ComponentID() string
	Run(ctx context.Context)
}

// ForComponent builds the monitor the component's declared monitor type
// calls for. Components whose readiness is implied by the deploy action
// itself get no monitor and return nil.
func ForComponent(c *pattern.Component, cl cluster.Interface, store *status.Store, t *config.Timeouts) Monitor {
	switch c.MonitorType {
	case pattern.MonitorSubscription:
		return NewSubscription(c, cl, store, t)
	case pattern.MonitorApplicationSync:
		return NewApplication(c, cl, store, t)
	default:
		return nil
	}
}

// RunAll starts one goroutine per monitor and blocks until every monitor
// has reached a terminal state or observed cancellation. This is the
// parallel fan-out barrier: monitors within the barrier have no ordering
// relationship, and no later stage work starts before all of them return.
func RunAll(ctx context.Context, monitors []Monitor) {
	tasks := make([]async.Task, 0, len(monitors))
	for _, m := range monitors {
		tasks = append(tasks, async.Task{
			Name: m.ComponentID(),
			Func: func(ctx context.Context) error {
				m.Run(ctx)
				return nil
			},
		})
	}
	_ = async.RunParallel(ctx, tasks)
}
