package teardown

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/patternforge/patternctl/internal/auditlog"
	"github.com/patternforge/patternctl/internal/cluster"
	"github.com/patternforge/patternctl/internal/config"
	"github.com/patternforge/patternctl/internal/pattern"
	"github.com/patternforge/patternctl/internal/pipeline"
)

// patternNamespace is where the pattern's root custom resource lives.
const patternNamespace = "openshift-operators"

// cleanupKinds is the declared, type-keyed selector of pattern-owned
// sub-resources removable inside protected namespaces. Nothing outside
// this table is ever touched in a protected namespace.
var cleanupKinds = map[pattern.Category][]cluster.Kind{
	pattern.CategoryOperator:    {cluster.KindSubscription, cluster.KindCSV},
	pattern.CategoryController:  {cluster.KindApplication},
	pattern.CategoryApplication: {cluster.KindApplication},
}

// Residue is what the final verification found still present. Non-empty
// residue is a warning, never a failure.
type Residue struct {
	Items []string
}

// Count returns the number of surviving pattern resources.
func (r Residue) Count() int {
	return len(r.Items)
}

// Orchestrator deletes a pattern in strict reverse install order.
// Every deletion attempt swallows failure; the sweep always runs to
// completion and only the final verification communicates residual state.
type Orchestrator struct {
	directory *pattern.Directory
	cluster   cluster.Interface
	observer  pipeline.Observer
	timeouts  *config.Timeouts

	patternName     string
	gitopsNamespace string

	pollInterval time.Duration
	now          func() time.Time
}

// New creates a teardown orchestrator for the given run.
func New(dir *pattern.Directory, cl cluster.Interface, obs pipeline.Observer, t *config.Timeouts, patternName, gitopsNamespace string) *Orchestrator {
	return &Orchestrator{
		directory:       dir,
		cluster:         cl,
		observer:        obs,
		timeouts:        t,
		patternName:     patternName,
		gitopsNamespace: gitopsNamespace,
		pollInterval:    t.PollInterval,
		now:             time.Now,
	}
}

// Run performs the teardown sweep and returns the residue of the final
// verification. The error is reserved for context cancellation; deletion
// failures never abort the sweep.
func (o *Orchestrator) Run(ctx context.Context) (Residue, error) {
	// Applications go first, in reverse of their recorded install order.
	apps := o.directory.ByCategory(pattern.CategoryApplication)
	for i := len(apps) - 1; i >= 0; i-- {
		o.deleteSyncUnit(ctx, apps[i])
	}

	// Then the controller's top-level sync unit.
	controllers := o.directory.ByCategory(pattern.CategoryController)
	for i := len(controllers) - 1; i >= 0; i-- {
		o.deleteSyncUnit(ctx, controllers[i])
	}

	// Operator subscriptions and the package records they installed.
	operators := o.directory.ByCategory(pattern.CategoryOperator)
	for i := len(operators) - 1; i >= 0; i-- {
		o.deleteOperator(ctx, operators[i])
	}

	// Pattern-owned namespaces only. Protected namespaces are skipped
	// here and never escalated; only the cleanupKinds entries above may
	// remove resources inside them.
	for _, ns := range o.targetNamespaces(ctx) {
		if Classify(ns) == Protected {
			o.observer.Event(pipeline.Event{
				Type:    pipeline.EventResourceSkipped,
				Message: fmt.Sprintf("namespace %s is protected", ns),
			})
			continue
		}
		o.deleteAndWait(ctx, cluster.KindNamespace, ns, "", o.timeouts.NamespaceDeleteWait)
	}

	// The root custom resource goes last.
	o.deleteAndWait(ctx, cluster.KindPattern, o.patternName, patternNamespace, o.timeouts.DeleteWait)

	if err := ctx.Err(); err != nil {
		return Residue{}, err
	}
	return o.verify(ctx), nil
}

// deleteSyncUnit removes one component's sync unit wherever the
// reconciling controller keeps it.
func (o *Orchestrator) deleteSyncUnit(ctx context.Context, c *pattern.Component) {
	unit := c.SyncUnit
	if unit == "" {
		return
	}

	ns := o.gitopsNamespace
	if located, found, err := o.cluster.LocateApplication(ctx, unit); err == nil && found {
		ns = located
	}
	o.deleteAndWait(ctx, cluster.KindApplication, unit, ns, o.timeouts.DeleteWait)
}

// deleteOperator removes the subscription and its installed CSV.
func (o *Orchestrator) deleteOperator(ctx context.Context, c *pattern.Component) {
	name := c.SubscriptionName
	if name == "" {
		return
	}

	ns := c.Namespace.Value
	if !c.Namespace.Known {
		ns = patternNamespace
	}

	// Resolve the CSV before the subscription disappears with its record.
	csv, err := o.cluster.InstalledCSV(ctx, name, ns)
	if err != nil {
		o.observer.Printf("could not resolve installed CSV for %s: %v", name, err)
	}

	o.deleteAndWait(ctx, cluster.KindSubscription, name, ns, o.timeouts.DeleteWait)
	if csv != "" {
		o.deleteAndWait(ctx, cluster.KindCSV, csv, ns, o.timeouts.DeleteWait)
	}
}

// targetNamespaces merges the namespaces referenced by components with
// those discovered live, preserving reverse install order for the former.
func (o *Orchestrator) targetNamespaces(ctx context.Context) []string {
	declared := o.directory.Namespaces()

	out := make([]string, 0, len(declared))
	seen := make(map[string]bool)
	for i := len(declared) - 1; i >= 0; i-- {
		out = append(out, declared[i])
		seen[declared[i]] = true
	}

	// Live namespaces carrying the pattern name cover anything the
	// controller created beyond the declared set.
	live, err := o.cluster.ListNamespaces(ctx)
	if err != nil {
		o.observer.Printf("could not list namespaces: %v", err)
		return out
	}
	for _, ns := range live {
		if seen[ns] || !relatedNamespace(ns, o.patternName) {
			continue
		}
		out = append(out, ns)
	}
	return out
}

// deleteAndWait issues a non-blocking delete, polls for disappearance,
// and escalates a surviving resource by stripping finalizers and deleting
// again. Failures are logged and swallowed.
func (o *Orchestrator) deleteAndWait(ctx context.Context, kind cluster.Kind, name, ns string, wait time.Duration) {
	o.observer.Event(pipeline.Event{
		Type:    pipeline.EventResourceDeleting,
		Message: fmt.Sprintf("%s %s", kind, qualified(name, ns)),
	})

	if err := o.cluster.Delete(ctx, kind, name, ns); err != nil {
		o.observer.Printf("delete %s %s: %v", kind, qualified(name, ns), err)
	}

	if o.waitGone(ctx, kind, name, ns, wait) {
		o.observer.Event(pipeline.Event{
			Type:    pipeline.EventResourceDeleted,
			Message: fmt.Sprintf("%s %s", kind, qualified(name, ns)),
		})
		return
	}

	// Escalate: strip whatever is blocking deletion and try once more.
	if err := o.cluster.StripFinalizers(ctx, kind, name, ns); err != nil {
		o.observer.Printf("strip finalizers %s %s: %v", kind, qualified(name, ns), err)
	}
	if err := o.cluster.Delete(ctx, kind, name, ns); err != nil {
		o.observer.Printf("forced delete %s %s: %v", kind, qualified(name, ns), err)
	}

	if o.waitGone(ctx, kind, name, ns, wait) {
		o.observer.Event(pipeline.Event{
			Type:    pipeline.EventResourceEscalated,
			Message: fmt.Sprintf("%s %s removed after finalizer strip", kind, qualified(name, ns)),
		})
		return
	}

	o.observer.Printf("%s %s still present after forced delete", kind, qualified(name, ns))
}

// waitGone polls until the resource disappears or the wait elapses.
func (o *Orchestrator) waitGone(ctx context.Context, kind cluster.Kind, name, ns string, wait time.Duration) bool {
	deadline := o.now().Add(wait)
	for {
		exists, err := o.cluster.Exists(ctx, kind, name, ns)
		if err == nil && !exists {
			return true
		}
		if !o.now().Before(deadline) {
			return false
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(o.pollInterval):
		}
	}
}

// verify re-counts all pattern-related resources and reports what is
// still present.
func (o *Orchestrator) verify(ctx context.Context) Residue {
	var res Residue

	check := func(kind cluster.Kind, name, ns string) {
		exists, err := o.cluster.Exists(ctx, kind, name, ns)
		if err == nil && exists {
			res.Items = append(res.Items, fmt.Sprintf("%s %s", kind, qualified(name, ns)))
		}
	}

	for _, c := range o.directory.InstallOrder() {
		for _, kind := range cleanupKinds[c.Category] {
			switch kind {
			case cluster.KindSubscription:
				if c.SubscriptionName != "" {
					check(kind, c.SubscriptionName, c.Namespace.Value)
				}
			case cluster.KindApplication:
				if c.SyncUnit != "" {
					check(kind, c.SyncUnit, o.gitopsNamespace)
				}
			}
		}
	}

	for _, ns := range o.directory.Namespaces() {
		if Classify(ns) != PatternOwned {
			continue
		}
		exists, err := o.cluster.Exists(ctx, cluster.KindNamespace, ns, "")
		if err != nil || !exists {
			continue
		}
		item := fmt.Sprintf("%s %s", cluster.KindNamespace, ns)
		if pods, err := o.cluster.PodCount(ctx, ns); err == nil && pods > 0 {
			item = fmt.Sprintf("%s (%d pods still running)", item, pods)
		}
		res.Items = append(res.Items, item)
	}

	check(cluster.KindPattern, o.patternName, patternNamespace)
	return res
}

// relatedNamespace reports whether a live namespace name ties back to the
// pattern.
func relatedNamespace(ns, patternName string) bool {
	return ns == patternName || strings.HasPrefix(ns, patternName+"-")
}

func qualified(name, ns string) string {
	if ns == "" {
		return name
	}
	return ns + "/" + name
}

// LogResidue writes the verification result to the uninstall audit log.
func LogResidue(audit *auditlog.Log, res Residue) {
	if audit == nil {
		return
	}
	if res.Count() == 0 {
		audit.Printf(auditlog.CategoryUninstall, "no pattern resources remain")
		return
	}
	for _, item := range res.Items {
		audit.Printf(auditlog.CategoryUninstall, "residue: %s", item)
	}
}
