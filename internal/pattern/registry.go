package pattern

import (
	"fmt"
	"sort"
)

// Hint carries the static identity fields a configuration source declares
// for one component. Operational fields (namespace, version) are resolved
// later by discovery.
type Hint struct {
	ID           string
	DisplayName  string
	Subscription string
	SyncUnit     string
	Namespace    string
	Chart        string
	Channel      string
	Version      string
}

// Source is the configuration collaborator the registry loads from.
type Source interface {
	// Categories returns the declared categories in declaration order.
	Categories() []Category

	// Components returns the component hints declared for a category.
	Components(Category) ([]Hint, error)
}

// ConfigError indicates the configuration source is missing or structurally
// invalid. It is fatal and aborts the run before any mutating call.
type ConfigError struct {
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("pattern configuration: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("pattern configuration: %s", e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Directory holds the materialized components of one run, keyed by id and
// preserving configuration-declared order within each category.
type Directory struct {
	components map[string]*Component
	order      []string
}

// Load materializes the component directory from the configuration source.
// Duplicate categories are collapsed; duplicate component ids are a
// ConfigError.
func Load(src Source) (*Directory, error) {
	if src == nil {
		return nil, &ConfigError{Reason: "no configuration source"}
	}

	dir := &Directory{components: make(map[string]*Component)}

	seen := make(map[Category]bool)
	for _, cat := range src.Categories() {
		if seen[cat] {
			continue
		}
		seen[cat] = true

		if !cat.Valid() {
			return nil, &ConfigError{Reason: fmt.Sprintf("unknown category %q", cat)}
		}

		hints, err := src.Components(cat)
		if err != nil {
			return nil, &ConfigError{Reason: fmt.Sprintf("listing %s components", cat), Err: err}
		}

		for _, h := range hints {
			if h.ID == "" {
				return nil, &ConfigError{Reason: fmt.Sprintf("component in category %s has no id", cat)}
			}
			if _, dup := dir.components[h.ID]; dup {
				return nil, &ConfigError{Reason: fmt.Sprintf("duplicate component id %q", h.ID)}
			}
			dir.add(newComponent(cat, h))
		}
	}

	if len(dir.order) == 0 {
		return nil, &ConfigError{Reason: "no components declared"}
	}
	return dir, nil
}

func newComponent(cat Category, h Hint) *Component {
	c := &Component{
		ID:               h.ID,
		Category:         cat,
		DisplayName:      h.DisplayName,
		SubscriptionName: h.Subscription,
		SyncUnit:         h.SyncUnit,
		NamespaceHint:    h.Namespace,
		ChartRef:         h.Chart,
		Channel:          h.Channel,
		VersionHint:      h.Version,
	}
	switch cat {
	case CategoryOperator:
		c.MonitorType = MonitorSubscription
	case CategoryApplication:
		c.MonitorType = MonitorApplicationSync
	default:
		c.MonitorType = MonitorNone
	}
	return c
}

func (d *Directory) add(c *Component) {
	d.components[c.ID] = c
	d.order = append(d.order, c.ID)
}

// Get returns the component with the given id.
func (d *Directory) Get(id string) (*Component, bool) {
	c, ok := d.components[id]
	return c, ok
}

// Len returns the number of components.
func (d *Directory) Len() int {
	return len(d.order)
}

// All returns every component in declaration order.
func (d *Directory) All() []*Component {
	out := make([]*Component, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, d.components[id])
	}
	return out
}

// ByCategory returns the components of one category in declaration order.
func (d *Directory) ByCategory(cat Category) []*Component {
	var out []*Component
	for _, id := range d.order {
		if c := d.components[id]; c.Category == cat {
			out = append(out, c)
		}
	}
	return out
}

// InstallOrder returns all components ordered by tier, then by declaration
// order within a tier. Teardown walks this slice backwards.
func (d *Directory) InstallOrder() []*Component {
	out := d.All()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Tier() < out[j].Tier()
	})
	return out
}

// Namespaces returns the distinct known namespaces referenced by any
// component, in install order.
func (d *Directory) Namespaces() []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range d.InstallOrder() {
		ns := c.Namespace.Value
		if !c.Namespace.Known || ns == "" || seen[ns] {
			continue
		}
		seen[ns] = true
		out = append(out, ns)
	}
	return out
}
