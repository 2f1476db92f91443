// Package handlers implements the business logic for CLI commands.
//
// This package contains handler functions that are called by command
// definitions in the commands package. Handlers are framework-agnostic and
// can be tested independently of the CLI framework.
package handlers

import (
	"context"
	"fmt"

	"github.com/patternforge/patternctl/internal/auditlog"
	"github.com/patternforge/patternctl/internal/cluster"
	"github.com/patternforge/patternctl/internal/config"
	"github.com/patternforge/patternctl/internal/deploy"
	"github.com/patternforge/patternctl/internal/discovery"
	"github.com/patternforge/patternctl/internal/pattern"
	"github.com/patternforge/patternctl/internal/secrets"
)

// Factory function variables - can be replaced in tests for dependency injection.
var (
	// loadConfigFile loads the pattern configuration from file.
	loadConfigFile = config.LoadFile

	// newClusterClient creates a cluster client from a kubeconfig path.
	newClusterClient = func(kubeconfigPath string) (cluster.Interface, error) {
		return cluster.NewClient(kubeconfigPath)
	}

	// newDeployer creates the chart deployer.
	newDeployer = func(kubeconfigPath string) (deploy.Deployer, error) {
		return deploy.NewHelmDeployer(kubeconfigPath)
	}

	// newSecretsLoader creates the secrets loader.
	newSecretsLoader = func(cl cluster.Interface) secrets.Loader {
		return secrets.NewFileLoader(cl)
	}

	// openAuditLog opens the per-run audit log set.
	openAuditLog = auditlog.Open

	// loadTimeouts reads the timeout configuration from the environment.
	loadTimeouts = config.LoadTimeouts
)

// run holds the collaborators shared by install and uninstall.
type run struct {
	cfg     *config.Config
	dir     *pattern.Directory
	audit   *auditlog.Log
	cluster cluster.Interface
	engine  *discovery.Engine
}

// setup loads the configuration, materializes the component directory,
// opens the audit logs, connects to the cluster, and resolves component
// identity. Discovery never fails; unresolved fields stay Unknown with a
// recorded reason.
func setup(ctx context.Context, patternName, configPath, kubeconfigPath string) (*run, error) {
	cfg, err := loadConfigFile(configPath)
	if err != nil {
		return nil, err
	}
	if cfg.Pattern == "" {
		cfg.Pattern = patternName
	} else if cfg.Pattern != patternName {
		return nil, fmt.Errorf("pattern %q does not match configured pattern %q", patternName, cfg.Pattern)
	}

	dir, err := pattern.Load(cfg)
	if err != nil {
		return nil, err
	}

	audit, err := openAuditLog(cfg.LogDir)
	if err != nil {
		return nil, fmt.Errorf("opening audit logs: %w", err)
	}

	cl, err := newClusterClient(kubeconfigPath)
	if err != nil {
		audit.Close()
		return nil, fmt.Errorf("connecting to cluster: %w", err)
	}

	engine := discovery.NewEngine(cl)
	engine.Resolve(ctx, dir)
	for _, rec := range engine.Trail().Records() {
		audit.Printf(auditlog.CategoryDiscovery, "%s", rec.String())
	}

	return &run{cfg: cfg, dir: dir, audit: audit, cluster: cl, engine: engine}, nil
}
