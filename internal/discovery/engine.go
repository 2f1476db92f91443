// Package discovery resolves each component's operational identity from
// ranked probe sources.
//
// The engine never fails hard: every field ends up with either a resolved
// value or an Unknown carrying the reason, and every probe attempt is
// appended to the audit trail exactly once. Downstream code treats Unknown
// namespace or version as a display-only gap; only a monitor that strictly
// requires a missing identity field turns the gap into a Failed component.
package discovery

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/patternforge/patternctl/internal/cluster"
	"github.com/patternforge/patternctl/internal/pattern"
)

// Probe source names as they appear in the audit trail.
const (
	SourceConfig       = "config"
	SourceDefault      = "default"
	SourceSubscription = "subscription-channel"
	SourceChartFile    = "chart-manifest"
	SourceOLMDefault   = "olm-default"
)

// Engine fills namespace and version fields for every component of a run.
type Engine struct {
	cluster cluster.Interface
	trail   *Trail

	// chartVersion reads the version out of a local chart manifest.
	// Replaceable in tests.
	chartVersion func(chartRef string) (string, error)
}

// NewEngine creates a discovery engine over the given cluster collaborator.
func NewEngine(cl cluster.Interface) *Engine {
	return &Engine{
		cluster:      cl,
		trail:        NewTrail(),
		chartVersion: readChartVersion,
	}
}

// Trail returns the engine's append-only audit trail.
func (e *Engine) Trail() *Trail {
	return e.trail
}

// Resolve fills each component's namespace and version exactly once.
// It never returns an error; unresolvable fields become Unknown values.
func (e *Engine) Resolve(ctx context.Context, dir *pattern.Directory) {
	for _, c := range dir.All() {
		c.Namespace = e.resolveNamespace(ctx, c)
		c.Version = e.resolveVersion(ctx, c)
	}
}

func (e *Engine) resolveNamespace(ctx context.Context, c *pattern.Component) pattern.Value {
	if c.NamespaceHint != "" {
		return e.record(c, "namespace", SourceConfig, c.NamespaceHint, "")
	}
	e.record(c, "namespace", SourceConfig, "", "no namespace declared")

	switch c.Category {
	case pattern.CategoryOperator:
		// OLM installs global operators into its default namespace when
		// the subscription does not say otherwise.
		return e.record(c, "namespace", SourceOLMDefault, "openshift-operators", "")
	case pattern.CategoryInfrastructure, pattern.CategoryController:
		return e.record(c, "namespace", SourceDefault, defaultNamespace(c.ID), "")
	default:
		return e.recordUnknown(c, "namespace", SourceDefault, "no namespace declared and no default for applications")
	}
}

func (e *Engine) resolveVersion(ctx context.Context, c *pattern.Component) pattern.Value {
	switch c.Category {
	case pattern.CategoryOperator:
		return e.resolveOperatorVersion(ctx, c)
	case pattern.CategoryApplication:
		return e.resolveChartVersion(c)
	default:
		if c.VersionHint != "" {
			return e.record(c, "version", SourceConfig, c.VersionHint, "")
		}
		if c.ChartRef != "" {
			return e.resolveChartVersion(c)
		}
		return e.record(c, "version", SourceDefault, "in-chart", "")
	}
}

func (e *Engine) resolveOperatorVersion(ctx context.Context, c *pattern.Component) pattern.Value {
	if c.SubscriptionName == "" {
		return e.recordUnknown(c, "version", SourceSubscription, "no subscription name declared")
	}

	ns := c.Namespace.Value
	if !c.Namespace.Known {
		ns = "openshift-operators"
	}

	channel, err := e.cluster.SubscriptionChannel(ctx, c.SubscriptionName, ns)
	if err == nil && channel != "" {
		return e.record(c, "version", SourceSubscription, channel, "")
	}
	reason := "subscription not found"
	if err != nil {
		reason = fmt.Sprintf("subscription query failed: %v", err)
	}
	e.record(c, "version", SourceSubscription, "", reason)

	if c.Channel != "" {
		return e.record(c, "version", SourceConfig, c.Channel, "")
	}
	return e.recordUnknown(c, "version", SourceConfig, reason)
}

func (e *Engine) resolveChartVersion(c *pattern.Component) pattern.Value {
	if c.VersionHint != "" {
		return e.record(c, "version", SourceConfig, c.VersionHint, "")
	}
	e.record(c, "version", SourceConfig, "", "no version declared")

	if c.ChartRef == "" {
		return e.recordUnknown(c, "version", SourceChartFile, "no chart reference declared")
	}

	version, err := e.chartVersion(c.ChartRef)
	if err != nil {
		return e.recordUnknown(c, "version", SourceChartFile, fmt.Sprintf("reading chart manifest: %v", err))
	}
	if version == "" {
		return e.recordUnknown(c, "version", SourceChartFile, "chart manifest has no version")
	}
	return e.record(c, "version", SourceChartFile, version, "")
}

// record appends a probe attempt and returns the resulting Value. An empty
// value with a reason is a failed probe; the caller moves to the next
// ranked source.
func (e *Engine) record(c *pattern.Component, field, source, value, reason string) pattern.Value {
	e.trail.append(Record{
		ComponentID: c.ID,
		Field:       field,
		Source:      source,
		Value:       value,
		Known:       value != "",
		Reason:      reason,
	})
	if value == "" {
		return pattern.Unknown(reason)
	}
	return pattern.Resolved(value, source)
}

// recordUnknown appends a final failed probe and returns the Unknown value.
func (e *Engine) recordUnknown(c *pattern.Component, field, source, reason string) pattern.Value {
	e.record(c, field, source, "", reason)
	return pattern.Unknown(reason)
}

// defaultNamespace derives a namespace from a component id. The "-app"
// suffix marks the wrapping application, not the workload namespace.
func defaultNamespace(id string) string {
	return strings.TrimSuffix(id, "-app")
}

// readChartVersion reads the version field from a chart's Chart.yaml.
func readChartVersion(chartRef string) (string, error) {
	// #nosec G304
	data, err := os.ReadFile(filepath.Join(chartRef, "Chart.yaml"))
	if err != nil {
		return "", err
	}

	var manifest struct {
		Version string `yaml:"version"`
	}
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return "", err
	}
	return manifest.Version, nil
}
