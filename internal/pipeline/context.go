// Package pipeline drives the staged install of a pattern.
//
// A run builds one Context carrying every collaborator and the shared
// status store, then executes the five install stages in order. A stage
// failure aborts all later stages; completed stages are never rolled back.
package pipeline

import (
	"context"

	"github.com/patternforge/patternctl/internal/auditlog"
	"github.com/patternforge/patternctl/internal/cluster"
	"github.com/patternforge/patternctl/internal/config"
	"github.com/patternforge/patternctl/internal/deploy"
	"github.com/patternforge/patternctl/internal/pattern"
	"github.com/patternforge/patternctl/internal/secrets"
	"github.com/patternforge/patternctl/internal/status"
)

// Context wraps all dependencies and state needed for one install run.
// It is constructed at run start and disposed at run end; stages share it
// but only the status store is mutated concurrently.
type Context struct {
	context.Context
	Config    *config.Config
	Directory *pattern.Directory
	Cluster   cluster.Interface
	Deployer  deploy.Deployer
	Secrets   secrets.Loader
	Status    *status.Store
	Observer  Observer
	Timeouts  *config.Timeouts
	Audit     *auditlog.Log
}

// NewContext creates a run context with a console observer and
// environment-derived timeouts.
func NewContext(
	ctx context.Context,
	cfg *config.Config,
	dir *pattern.Directory,
	cl cluster.Interface,
	deployer deploy.Deployer,
	loader secrets.Loader,
	audit *auditlog.Log,
) *Context {
	return &Context{
		Context:   ctx,
		Config:    cfg,
		Directory: dir,
		Cluster:   cl,
		Deployer:  deployer,
		Secrets:   loader,
		Status:    status.NewStore(),
		Observer:  NewConsoleObserver(audit, auditlog.CategoryDeploy),
		Timeouts:  config.LoadTimeouts(),
		Audit:     audit,
	}
}
