package dashboard

import (
	"fmt"
	"strings"

	"github.com/patternforge/patternctl/internal/pattern"
	"github.com/patternforge/patternctl/internal/status"
)

// Outcome is the final reduction of the status store at the end of a run.
type Outcome struct {
	Succeeded int
	Failed    int
	Aborted   int
	Pending   int
}

// Passed reports whether every component reached Success.
func (o Outcome) Passed() bool {
	return o.Failed == 0 && o.Aborted == 0 && o.Pending == 0
}

// Reduce folds the status store into a pass/fail outcome over every
// component in the directory.
func Reduce(dir *pattern.Directory, store *status.Store) Outcome {
	var o Outcome
	for _, c := range dir.All() {
		switch store.Get(c.ID).State {
		case status.StateSuccess:
			o.Succeeded++
		case status.StateFailed:
			o.Failed++
		case status.StateAborted:
			o.Aborted++
		default:
			o.Pending++
		}
	}
	return o
}

// Summary renders the final per-category report.
func Summary(dir *pattern.Directory, store *status.Store) string {
	var b strings.Builder
	for _, cat := range pattern.Categories {
		components := dir.ByCategory(cat)
		if len(components) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s:\n", cat)
		for _, c := range components {
			rec := store.Get(c.ID)
			verdict := "FAIL"
			if rec.State == status.StateSuccess {
				verdict = "PASS"
			}
			fmt.Fprintf(&b, "  %-4s %-28s %s", verdict, c.Name(), rec.State)
			if rec.Detail != "" {
				fmt.Fprintf(&b, " (%s)", rec.Detail)
			}
			b.WriteString("\n")
		}
	}

	o := Reduce(dir, store)
	fmt.Fprintf(&b, "%d succeeded, %d failed, %d aborted, %d pending\n",
		o.Succeeded, o.Failed, o.Aborted, o.Pending)
	return b.String()
}
