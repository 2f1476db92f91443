// Package dashboard renders periodic category-grouped progress for a run.
//
// The dashboard sits outside the control path: it only snapshots the
// status store and prints. It stops when every component is terminal or
// its own wall-clock ceiling elapses, reporting the timeout instead of
// hanging.
package dashboard

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/patternforge/patternctl/internal/config"
	"github.com/patternforge/patternctl/internal/pattern"
	"github.com/patternforge/patternctl/internal/status"
)

// ErrTimeout is returned when components are still non-terminal at the
// dashboard's global ceiling.
var ErrTimeout = fmt.Errorf("dashboard wait ceiling elapsed")

// Dashboard periodically renders the run's component states.
type Dashboard struct {
	dir   *pattern.Directory
	store *status.Store

	out     io.Writer
	refresh time.Duration
	maxWait time.Duration
	styles  styles
	now     func() time.Time
}

// New creates a dashboard over the directory and store, writing to stdout
// with color when stdout is a terminal.
func New(dir *pattern.Directory, store *status.Store, t *config.Timeouts) *Dashboard {
	return &Dashboard{
		dir:     dir,
		store:   store,
		out:     os.Stdout,
		refresh: t.DashboardRefresh,
		maxWait: t.DashboardMaxWait,
		styles:  newStyles(stdoutIsTerminal()),
		now:     time.Now,
	}
}

// Run renders every refresh interval until all components are terminal,
// the context is cancelled, or the global ceiling elapses. Only the
// ceiling case returns an error.
func (d *Dashboard) Run(ctx context.Context) error {
	deadline := d.now().Add(d.maxWait)
	ids := d.componentIDs()

	for {
		fmt.Fprint(d.out, d.render())

		if d.store.AllTerminal(ids) {
			return nil
		}
		if !d.now().Before(deadline) {
			fmt.Fprintln(d.out, d.styles.failed.Render(
				fmt.Sprintf("timed out after %v with components still pending", d.maxWait)))
			return ErrTimeout
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(d.refresh):
		}
	}
}

func (d *Dashboard) componentIDs() []string {
	all := d.dir.All()
	ids := make([]string, 0, len(all))
	for _, c := range all {
		ids = append(ids, c.ID)
	}
	return ids
}

// render produces one category-grouped snapshot frame. Components keep
// their configuration-declared order within a category.
func (d *Dashboard) render() string {
	snap := d.store.Snapshot()
	now := d.now()

	var b strings.Builder
	b.WriteString(d.styles.title.Render("Pattern progress"))
	b.WriteString("\n")

	for _, cat := range pattern.Categories {
		components := d.dir.ByCategory(cat)
		if len(components) == 0 {
			continue
		}
		b.WriteString(d.styles.section.Render(fmt.Sprintf("== %s ==", cat)))
		b.WriteString("\n")

		for _, c := range components {
			rec, ok := snap[c.ID]
			if !ok {
				rec = d.store.Get(c.ID)
			}
			b.WriteString(d.renderComponent(c, rec, now))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (d *Dashboard) renderComponent(c *pattern.Component, rec status.Record, now time.Time) string {
	elapsed := now.Sub(rec.Since).Round(time.Second)
	line := fmt.Sprintf("%s %-28s %-12s %8s  %s",
		stateMark(rec.State), c.Name(), rec.State, elapsed, rec.Detail)

	switch rec.State {
	case status.StateSuccess:
		return d.styles.ready.Render(line)
	case status.StateFailed:
		return d.styles.failed.Render(line)
	case status.StateAborted:
		return d.styles.warning.Render(line)
	case status.StatePending:
		return d.styles.dim.Render(line)
	default:
		return d.styles.active.Render(line)
	}
}

func stateMark(s status.State) string {
	switch s {
	case status.StateSuccess:
		return checkMark
	case status.StateFailed:
		return crossMark
	case status.StateAborted:
		return warnMark
	case status.StatePending:
		return pendMark
	default:
		return spinner
	}
}
