package config

import (
	"github.com/patternforge/patternctl/internal/pattern"
)

// Config is the parsed pattern configuration. It implements pattern.Source
// so the registry can materialize components directly from it.
type Config struct {
	// Pattern is the pattern name; it also names the root custom resource.
	Pattern string `mapstructure:"pattern"`

	// GitopsNamespace is where the reconciling controller keeps its sync
	// units. Defaults to openshift-gitops.
	GitopsNamespace string `mapstructure:"gitopsNamespace"`

	// LogDir is the directory for per-run audit logs. Defaults to ./logs.
	LogDir string `mapstructure:"logDir"`

	// ComponentSet holds the per-category component declarations.
	ComponentSet ComponentSet `mapstructure:"components"`
}

// ComponentSet groups component declarations by category.
type ComponentSet struct {
	Infrastructure []ComponentSpec `mapstructure:"infrastructure"`
	Operators      []ComponentSpec `mapstructure:"operators"`
	Controller     []ComponentSpec `mapstructure:"controller"`
	Applications   []ComponentSpec `mapstructure:"applications"`
}

// ComponentSpec declares one component's static identity hints.
type ComponentSpec struct {
	ID           string `mapstructure:"id"`
	DisplayName  string `mapstructure:"displayName"`
	Namespace    string `mapstructure:"namespace"`
	Subscription string `mapstructure:"subscription"`
	Application  string `mapstructure:"application"`
	Chart        string `mapstructure:"chart"`
	Channel      string `mapstructure:"channel"`
	Version      string `mapstructure:"version"`
}

// Categories implements pattern.Source. Categories appear in tier order and
// only when they declare at least one component.
func (c *Config) Categories() []pattern.Category {
	var out []pattern.Category
	for _, cat := range pattern.Categories {
		if len(c.specs(cat)) > 0 {
			out = append(out, cat)
		}
	}
	return out
}

// Components implements pattern.Source.
func (c *Config) Components(cat pattern.Category) ([]pattern.Hint, error) {
	specs := c.specs(cat)
	hints := make([]pattern.Hint, 0, len(specs))
	for _, s := range specs {
		hints = append(hints, pattern.Hint{
			ID:           s.ID,
			DisplayName:  s.DisplayName,
			Namespace:    s.Namespace,
			Subscription: s.Subscription,
			SyncUnit:     s.Application,
			Chart:        s.Chart,
			Channel:      s.Channel,
			Version:      s.Version,
		})
	}
	return hints, nil
}

func (c *Config) specs(cat pattern.Category) []ComponentSpec {
	switch cat {
	case pattern.CategoryInfrastructure:
		return c.ComponentSet.Infrastructure
	case pattern.CategoryOperator:
		return c.ComponentSet.Operators
	case pattern.CategoryController:
		return c.ComponentSet.Controller
	case pattern.CategoryApplication:
		return c.ComponentSet.Applications
	default:
		return nil
	}
}
