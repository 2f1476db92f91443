package monitor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/patternforge/patternctl/internal/cluster"
	"github.com/patternforge/patternctl/internal/pattern"
	"github.com/patternforge/patternctl/internal/status"
)

func appComponent() *pattern.Component {
	return &pattern.Component{
		ID:          "qtodo-app",
		Category:    pattern.CategoryApplication,
		MonitorType: pattern.MonitorApplicationSync,
		SyncUnit:    "qtodo-app",
	}
}

func TestApplication_Success(t *testing.T) {
	t.Parallel()
	store := status.NewStore()
	mock := &cluster.Mock{
		LocateApplicationFunc: func(_ context.Context, name string) (string, bool, error) {
			assert.Equal(t, "qtodo-app", name)
			return "openshift-gitops", true, nil
		},
		ApplicationHealthFunc: func(_ context.Context, _, namespace string) (cluster.SyncStatus, cluster.HealthStatus, error) {
			assert.Equal(t, "openshift-gitops", namespace)
			return cluster.SyncSynced, cluster.HealthHealthy, nil
		},
	}
	m := NewApplication(appComponent(), mock, store, testTimeouts())

	m.Run(context.Background())

	rec := store.Get("qtodo-app")
	assert.Equal(t, status.StateSuccess, rec.State)
	assert.Contains(t, rec.Detail, "synced and healthy")
}

func TestApplication_NoSyncUnit(t *testing.T) {
	t.Parallel()
	store := status.NewStore()
	c := appComponent()
	c.SyncUnit = ""
	m := NewApplication(c, &cluster.Mock{}, store, testTimeouts())

	m.Run(context.Background())

	rec := store.Get("qtodo-app")
	assert.Equal(t, status.StateFailed, rec.State)
	assert.Equal(t, "no sync unit name resolved", rec.Detail)
}

func TestApplication_AppearTimeout(t *testing.T) {
	t.Parallel()
	store := status.NewStore()
	m := NewApplication(appComponent(), &cluster.Mock{}, store, testTimeouts())
	m.now = newSteppingClock(30 * time.Second).Now

	m.Run(context.Background())

	rec := store.Get("qtodo-app")
	assert.Equal(t, status.StateFailed, rec.State)
	assert.Equal(t, "Application qtodo-app not created after 180 seconds", rec.Detail)
}

func TestApplication_SyncTimeoutKeepsLastObservation(t *testing.T) {
	t.Parallel()
	store := status.NewStore()
	mock := &cluster.Mock{
		LocateApplicationFunc: func(context.Context, string) (string, bool, error) {
			return "openshift-gitops", true, nil
		},
		ApplicationHealthFunc: func(context.Context, string, string) (cluster.SyncStatus, cluster.HealthStatus, error) {
			return cluster.SyncOutOfSync, cluster.HealthDegraded, nil
		},
	}
	m := NewApplication(appComponent(), mock, store, testTimeouts())
	m.now = newSteppingClock(90 * time.Second).Now

	m.Run(context.Background())

	rec := store.Get("qtodo-app")
	assert.Equal(t, status.StateFailed, rec.State)
	assert.Contains(t, rec.Detail, "not synced and healthy after 900 seconds")
	assert.Contains(t, rec.Detail, "sync=OutOfSync health=Degraded")
}

func TestApplication_ProgressingObservation(t *testing.T) {
	t.Parallel()
	store := status.NewStore()
	calls := 0
	var intermediate status.Record
	mock := &cluster.Mock{
		LocateApplicationFunc: func(context.Context, string) (string, bool, error) {
			return "openshift-gitops", true, nil
		},
		ApplicationHealthFunc: func(context.Context, string, string) (cluster.SyncStatus, cluster.HealthStatus, error) {
			calls++
			switch calls {
			case 1:
				return cluster.SyncOutOfSync, cluster.HealthProgressing, nil
			case 2:
				intermediate = store.Get("qtodo-app")
				return cluster.SyncOutOfSync, cluster.HealthUnknown, nil
			default:
				return cluster.SyncSynced, cluster.HealthHealthy, nil
			}
		},
	}
	m := NewApplication(appComponent(), mock, store, testTimeouts())

	m.Run(context.Background())

	assert.Equal(t, status.StateProgressing, intermediate.State)
	assert.Equal(t, "sync=OutOfSync health=Progressing", intermediate.Detail)
	assert.Equal(t, status.StateSuccess, store.Get("qtodo-app").State)
	assert.Equal(t, 3, calls)
}

func TestApplication_Cancelled(t *testing.T) {
	t.Parallel()
	store := status.NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := NewApplication(appComponent(), &cluster.Mock{}, store, testTimeouts())

	m.Run(ctx)

	assert.Equal(t, status.StateAborted, store.Get("qtodo-app").State)
}
