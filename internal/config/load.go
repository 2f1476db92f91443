package config

import (
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/patternforge/patternctl/internal/pattern"
)

// LoadFile reads and parses the pattern configuration from a YAML file.
// A missing or structurally invalid file is a pattern.ConfigError, which
// callers treat as fatal before any mutating call.
func LoadFile(path string) (*Config, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &pattern.ConfigError{Reason: "reading config file", Err: err}
	}
	return Load(data)
}

// Load parses the pattern configuration from raw YAML bytes.
func Load(data []byte) (*Config, error) {
	var rawConfig map[string]interface{}
	if err := yaml.Unmarshal(data, &rawConfig); err != nil {
		return nil, &pattern.ConfigError{Reason: "unmarshalling yaml", Err: err}
	}

	var cfg Config
	if err := mapstructure.Decode(rawConfig, &cfg); err != nil {
		return nil, &pattern.ConfigError{Reason: "decoding config", Err: err}
	}

	// Defaults
	if cfg.GitopsNamespace == "" {
		cfg.GitopsNamespace = "openshift-gitops"
	}
	if cfg.LogDir == "" {
		cfg.LogDir = "logs"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks structural requirements the loader cannot express in types.
func (c *Config) Validate() error {
	if c.Pattern == "" {
		return &pattern.ConfigError{Reason: "pattern name is required"}
	}

	for _, cat := range pattern.Categories {
		for _, s := range c.specs(cat) {
			if s.ID == "" {
				return &pattern.ConfigError{Reason: fmt.Sprintf("%s component without id", cat)}
			}
			if cat == pattern.CategoryOperator && s.Subscription == "" {
				// Tolerated: discovery records the gap and the monitor
				// fails that component alone, not the load.
				continue
			}
		}
	}

	if len(c.Categories()) == 0 {
		return &pattern.ConfigError{Reason: "no components declared"}
	}
	return nil
}
