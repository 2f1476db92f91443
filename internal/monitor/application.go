package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/patternforge/patternctl/internal/cluster"
	"github.com/patternforge/patternctl/internal/config"
	"github.com/patternforge/patternctl/internal/pattern"
	"github.com/patternforge/patternctl/internal/status"
)

// Application watches a declaratively synced application until the
// reconciling controller reports it Synced and Healthy.
type Application struct {
	component *pattern.Component
	cluster   cluster.Interface
	store     *status.Store

	interval      time.Duration
	appearTimeout time.Duration
	syncTimeout   time.Duration

	now func() time.Time
}

// NewApplication creates an application monitor for one sync unit.
func NewApplication(c *pattern.Component, cl cluster.Interface, store *status.Store, t *config.Timeouts) *Application {
	return &Application{
		component:     c,
		cluster:       cl,
		store:         store,
		interval:      t.PollInterval,
		appearTimeout: t.ApplicationAppear,
		syncTimeout:   t.ApplicationSync,
		now:           time.Now,
	}
}

// ComponentID implements Monitor.
func (m *Application) ComponentID() string {
	return m.component.ID
}

// Run implements Monitor.
func (m *Application) Run(ctx context.Context) {
	id := m.component.ID
	unit := m.component.SyncUnit
	if unit == "" {
		m.store.Update(id, status.StateFailed, "no sync unit name resolved")
		return
	}

	m.store.Update(id, status.StateWaiting,
		fmt.Sprintf("waiting for Application %s", unit))

	// Phase 1: the sync unit appears anywhere observable. The controller
	// materializes it, so its namespace is discovered here, not declared.
	var unitNamespace string
	outcome := pollLoop(ctx, m.now, m.interval, m.appearTimeout, func(ctx context.Context) bool {
		ns, found, err := m.cluster.LocateApplication(ctx, unit)
		if err != nil || !found {
			return false
		}
		unitNamespace = ns
		return true
	})
	switch outcome {
	case pollTimeout:
		m.store.Update(id, status.StateFailed,
			fmt.Sprintf("Application %s not created after %d seconds", unit, int(m.appearTimeout.Seconds())))
		return
	case pollCancelled:
		m.abort(id)
		return
	}

	m.store.Update(id, status.StateSyncing,
		fmt.Sprintf("Application %s created, waiting for sync", unit))

	// Phase 2: sync and health both settle. Intermediate observations map
	// onto Syncing or Progressing so the dashboard shows movement.
	outcome = pollLoop(ctx, m.now, m.interval, m.syncTimeout, func(ctx context.Context) bool {
		sync, health, err := m.cluster.ApplicationHealth(ctx, unit, unitNamespace)
		if err != nil {
			return false
		}
		if sync == cluster.SyncSynced && health == cluster.HealthHealthy {
			return true
		}

		detail := fmt.Sprintf("sync=%s health=%s", sync, health)
		switch {
		case health == cluster.HealthProgressing || health == cluster.HealthDegraded:
			m.store.Update(id, status.StateProgressing, detail)
		default:
			m.store.Update(id, status.StateSyncing, detail)
		}
		return false
	})
	switch outcome {
	case pollTimeout:
		rec := m.store.Get(id)
		m.store.Update(id, status.StateFailed,
			fmt.Sprintf("Application %s not synced and healthy after %d seconds (%s)",
				unit, int(m.syncTimeout.Seconds()), rec.Detail))
		return
	case pollCancelled:
		m.abort(id)
		return
	}

	m.store.Update(id, status.StateSuccess,
		fmt.Sprintf("Application %s synced and healthy", unit))
}

func (m *Application) abort(id string) {
	if !m.store.Get(id).State.Terminal() {
		m.store.Update(id, status.StateAborted, "run aborted")
	}
}
