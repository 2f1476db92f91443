package pattern

import "fmt"

// Category classifies a component by its role in the pattern.
type Category string

const (
	CategoryInfrastructure Category = "infrastructure"
	CategoryOperator       Category = "operator"
	CategoryController     Category = "controller"
	CategoryApplication    Category = "application"
)

// Categories lists all categories in install-tier order.
var Categories = []Category{
	CategoryInfrastructure,
	CategoryOperator,
	CategoryController,
	CategoryApplication,
}

// Tier returns the install-order tier for the category. Uninstall walks
// tiers in reverse.
func (c Category) Tier() int {
	switch c {
	case CategoryInfrastructure:
		return 0
	case CategoryOperator:
		return 1
	case CategoryController:
		return 2
	case CategoryApplication:
		return 3
	default:
		return -1
	}
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	return c.Tier() >= 0
}

// MonitorType selects the polling protocol used to observe a component.
type MonitorType string

const (
	// MonitorSubscription watches an OLM subscription through to its
	// installed CSV.
	MonitorSubscription MonitorType = "subscription"
	// MonitorApplicationSync watches a GitOps sync unit until it is
	// synced and healthy.
	MonitorApplicationSync MonitorType = "application-sync"
	// MonitorNone marks components whose readiness is implied by the
	// deploy action itself.
	MonitorNone MonitorType = "none"
)

// Value is a discovered field with its provenance. A Value is either
// resolved from a named source or unknown with a reason; it is never both.
type Value struct {
	Value  string
	Source string
	Known  bool
	Reason string
}

// Resolved returns a known Value produced by the given source.
func Resolved(value, source string) Value {
	return Value{Value: value, Source: source, Known: true}
}

// Unknown returns an unresolved Value carrying the reason resolution failed.
func Unknown(reason string) Value {
	return Value{Reason: reason}
}

// String renders the value for display. Unknown values render as
// "unknown (<reason>)" so gaps stay visible without failing the caller.
func (v Value) String() string {
	if !v.Known {
		if v.Reason == "" {
			return "unknown"
		}
		return fmt.Sprintf("unknown (%s)", v.Reason)
	}
	return v.Value
}

// Component is one installable unit of the pattern. Identity hints come
// from configuration; Namespace and Version are filled exactly once per run
// by the discovery engine and are immutable afterwards.
type Component struct {
	ID          string
	Category    Category
	DisplayName string
	MonitorType MonitorType

	// Static identity hints from configuration.
	SubscriptionName string // OLM subscription name (operators)
	SyncUnit         string // GitOps application name (applications, controller)
	NamespaceHint    string // declared target namespace, if any
	ChartRef         string // chart path or reference handed to the deployer
	Channel          string // subscription channel hint (operators)
	VersionHint      string // declared chart version, if any

	// Discovered operational identity.
	Namespace Value
	Version   Value
}

// Tier returns the component's install tier.
func (c *Component) Tier() int {
	return c.Category.Tier()
}

// Name returns the display name, falling back to the id.
func (c *Component) Name() string {
	if c.DisplayName != "" {
		return c.DisplayName
	}
	return c.ID
}
