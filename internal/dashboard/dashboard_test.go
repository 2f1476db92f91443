package dashboard

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patternforge/patternctl/internal/config"
	"github.com/patternforge/patternctl/internal/pattern"
	"github.com/patternforge/patternctl/internal/status"
)

type testSource struct {
	components map[pattern.Category][]pattern.Hint
}

func (s *testSource) Categories() []pattern.Category {
	var out []pattern.Category
	for _, cat := range pattern.Categories {
		if len(s.components[cat]) > 0 {
			out = append(out, cat)
		}
	}
	return out
}

func (s *testSource) Components(cat pattern.Category) ([]pattern.Hint, error) {
	return s.components[cat], nil
}

func testDirectory(t *testing.T) *pattern.Directory {
	t.Helper()
	dir, err := pattern.Load(&testSource{components: map[pattern.Category][]pattern.Hint{
		pattern.CategoryOperator:    {{ID: "vault-operator", DisplayName: "Vault Operator"}},
		pattern.CategoryApplication: {{ID: "vault-app"}, {ID: "qtodo-app"}},
	}})
	require.NoError(t, err)
	return dir
}

func testDashboard(dir *pattern.Directory, store *status.Store) (*Dashboard, *bytes.Buffer) {
	out := &bytes.Buffer{}
	d := New(dir, store, &config.Timeouts{
		DashboardRefresh: time.Millisecond,
		DashboardMaxWait: time.Minute,
	})
	d.out = out
	d.styles = newStyles(false)
	return d, out
}

func TestRender_GroupsByCategory(t *testing.T) {
	t.Parallel()
	dir := testDirectory(t)
	store := status.NewStore()
	store.Update("vault-operator", status.StateInstalling, "waiting for install")
	store.Update("vault-app", status.StateFailed, "sync timeout")
	d, _ := testDashboard(dir, store)

	frame := d.render()

	assert.Contains(t, frame, "== operator ==")
	assert.Contains(t, frame, "== application ==")
	assert.Contains(t, frame, "Vault Operator")
	assert.Contains(t, frame, "[..]")
	assert.Contains(t, frame, "[!!]")
	assert.Contains(t, frame, "sync timeout")
	// qtodo-app was never written and renders Pending.
	assert.Contains(t, frame, "[  ]")

	opIdx := bytes.Index([]byte(frame), []byte("== operator =="))
	appIdx := bytes.Index([]byte(frame), []byte("== application =="))
	assert.Less(t, opIdx, appIdx, "categories render in tier order")
}

func TestRender_ElapsedUsesSince(t *testing.T) {
	t.Parallel()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store := status.NewStoreWithClock(func() time.Time { return base })
	store.Update("vault-operator", status.StateInstalling, "")

	d, _ := testDashboard(testDirectory(t), store)
	d.now = func() time.Time { return base.Add(90 * time.Second) }

	frame := d.render()
	assert.Contains(t, frame, "1m30s")
}

func TestRun_StopsWhenAllTerminal(t *testing.T) {
	t.Parallel()
	dir := testDirectory(t)
	store := status.NewStore()
	store.Update("vault-operator", status.StateSuccess, "")
	store.Update("vault-app", status.StateSuccess, "")
	store.Update("qtodo-app", status.StateFailed, "timeout")
	d, out := testDashboard(dir, store)

	err := d.Run(context.Background())

	require.NoError(t, err)
	assert.NotEmpty(t, out.String())
}

func TestRun_CeilingElapsed(t *testing.T) {
	t.Parallel()
	dir := testDirectory(t)
	store := status.NewStore()
	d, out := testDashboard(dir, store)
	d.maxWait = 5 * time.Millisecond

	err := d.Run(context.Background())

	require.ErrorIs(t, err, ErrTimeout)
	assert.Contains(t, out.String(), "timed out after")
}

func TestRun_ContextCancelled(t *testing.T) {
	t.Parallel()
	dir := testDirectory(t)
	d, _ := testDashboard(dir, status.NewStore())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := d.Run(ctx)

	require.NoError(t, err, "cancellation is a clean stop, not a dashboard failure")
}
