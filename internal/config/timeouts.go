package config

import (
	"os"
	"strconv"
	"time"
)

// Timeouts holds all configurable timing values for a run.
// Every value can be overridden via environment variables.
type Timeouts struct {
	PollInterval        time.Duration // Interval between monitor polls
	SubscriptionAppear  time.Duration // Phase 1: subscription object appears
	SubscriptionInstall time.Duration // Phase 2: install reaches AtLatestKnown
	ApplicationAppear   time.Duration // Phase 1: sync unit appears
	ApplicationSync     time.Duration // Phase 2: Synced and Healthy
	ApplicationCeiling  time.Duration // Overall ceiling for the application stage
	DashboardRefresh    time.Duration // Dashboard refresh interval
	DashboardMaxWait    time.Duration // Dashboard global wall-clock ceiling
	DeployAttempts      int           // Retry budget for deploy actions
	DeployBackoff       time.Duration // Fixed backoff between deploy attempts
	DeleteWait          time.Duration // Per-resource wait for disappearance
	NamespaceDeleteWait time.Duration // Namespaces drain slower than other kinds
}

// LoadTimeouts loads timing configuration from environment variables.
// If a variable is not set or invalid, the default value is used.
//
// Environment Variables:
//   - PATTERN_POLL_INTERVAL (default: 5s)
//   - PATTERN_TIMEOUT_SUB_APPEAR (default: 300s)
//   - PATTERN_TIMEOUT_SUB_INSTALL (default: 600s)
//   - PATTERN_TIMEOUT_APP_APPEAR (default: 180s)
//   - PATTERN_TIMEOUT_APP_SYNC (default: 900s)
//   - PATTERN_TIMEOUT_APP_CEILING (default: 600s)
//   - PATTERN_DASHBOARD_REFRESH (default: 15s)
//   - PATTERN_DASHBOARD_MAX_WAIT (default: 1800s)
//   - PATTERN_DEPLOY_ATTEMPTS (default: 10)
//   - PATTERN_DEPLOY_BACKOFF (default: 15s)
//   - PATTERN_TIMEOUT_DELETE (default: 60s)
//   - PATTERN_TIMEOUT_NS_DELETE (default: 120s)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		PollInterval:        parseDuration("PATTERN_POLL_INTERVAL", 5*time.Second),
		SubscriptionAppear:  parseDuration("PATTERN_TIMEOUT_SUB_APPEAR", 300*time.Second),
		SubscriptionInstall: parseDuration("PATTERN_TIMEOUT_SUB_INSTALL", 600*time.Second),
		ApplicationAppear:   parseDuration("PATTERN_TIMEOUT_APP_APPEAR", 180*time.Second),
		ApplicationSync:     parseDuration("PATTERN_TIMEOUT_APP_SYNC", 900*time.Second),
		ApplicationCeiling:  parseDuration("PATTERN_TIMEOUT_APP_CEILING", 600*time.Second),
		DashboardRefresh:    parseDuration("PATTERN_DASHBOARD_REFRESH", 15*time.Second),
		DashboardMaxWait:    parseDuration("PATTERN_DASHBOARD_MAX_WAIT", 1800*time.Second),
		DeployAttempts:      parseInt("PATTERN_DEPLOY_ATTEMPTS", 10),
		DeployBackoff:       parseDuration("PATTERN_DEPLOY_BACKOFF", 15*time.Second),
		DeleteWait:          parseDuration("PATTERN_TIMEOUT_DELETE", 60*time.Second),
		NamespaceDeleteWait: parseDuration("PATTERN_TIMEOUT_NS_DELETE", 120*time.Second),
	}
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}

	return d
}

// parseInt parses an integer from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return i
}
