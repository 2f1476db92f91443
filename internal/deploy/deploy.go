// Package deploy is the chart-apply collaborator of the install pipeline.
//
// The pipeline owns the retry policy; the deployer only performs a single
// apply and reports success plus raw tool output. The Helm implementation
// installs or upgrades a chart, creating the release namespace if needed.
package deploy

import (
	"context"
	"time"
)

// Options configures one apply call.
type Options struct {
	Namespace   string
	ReleaseName string
	Values      map[string]interface{}
	Timeout     time.Duration
	DryRun      bool
}

// Result is the outcome of one apply call. Success false with Output set
// is an ExternalActionFailure the caller may retry.
type Result struct {
	Success bool
	Output  string
}

// Deployer applies a chart reference to the cluster.
type Deployer interface {
	Apply(ctx context.Context, manifestRef string, opts Options) Result
}
