// Package config loads and validates the declarative pattern configuration
// and the environment-tunable timeout set.
package config
