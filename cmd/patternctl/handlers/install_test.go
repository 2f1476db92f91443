package handlers

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patternforge/patternctl/internal/cluster"
	"github.com/patternforge/patternctl/internal/config"
	"github.com/patternforge/patternctl/internal/deploy"
	"github.com/patternforge/patternctl/internal/pattern"
	"github.com/patternforge/patternctl/internal/pipeline"
	"github.com/patternforge/patternctl/internal/secrets"
	"github.com/patternforge/patternctl/internal/status"
)

// stubDeployer always succeeds.
type stubDeployer struct {
	calls atomic.Int32
}

func (s *stubDeployer) Apply(context.Context, string, deploy.Options) deploy.Result {
	s.calls.Add(1)
	return deploy.Result{Success: true, Output: "deployed"}
}

// markAllStage drives every component to Success, standing in for the
// real five-stage pipeline.
type markAllStage struct{}

func (s *markAllStage) Name() string { return "mark-all" }

func (s *markAllStage) Run(ctx *pipeline.Context) error {
	for _, c := range ctx.Directory.All() {
		ctx.Status.Update(c.ID, status.StateSuccess, "")
	}
	return nil
}

// failingStage fails without touching any component.
type failingStage struct{}

func (s *failingStage) Name() string { return "broken" }

func (s *failingStage) Run(*pipeline.Context) error { return assert.AnError }

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Pattern:         "qtodo",
		GitopsNamespace: "openshift-gitops",
		LogDir:          t.TempDir(),
		ComponentSet: config.ComponentSet{
			Operators: []config.ComponentSpec{
				{ID: "vault-operator", Subscription: "vault-operator", Namespace: "openshift-operators"},
			},
			Applications: []config.ComponentSpec{
				{ID: "qtodo-app", Application: "qtodo-app", Namespace: "qtodo"},
			},
		},
	}
}

// swapFactories replaces every handler seam for one test and restores
// them afterwards.
func swapFactories(t *testing.T, cfg *config.Config, mock *cluster.Mock, d deploy.Deployer) *atomic.Int32 {
	t.Helper()
	origLoad := loadConfigFile
	origCluster := newClusterClient
	origDeployer := newDeployer
	origSecrets := newSecretsLoader
	origStages := installStages
	t.Cleanup(func() {
		loadConfigFile = origLoad
		newClusterClient = origCluster
		newDeployer = origDeployer
		newSecretsLoader = origSecrets
		installStages = origStages
	})

	var deployerCreations atomic.Int32
	loadConfigFile = func(string) (*config.Config, error) { return cfg, nil }
	newClusterClient = func(string) (cluster.Interface, error) { return mock, nil }
	newDeployer = func(string) (deploy.Deployer, error) {
		deployerCreations.Add(1)
		return d, nil
	}
	newSecretsLoader = func(cluster.Interface) secrets.Loader {
		return secrets.LoaderFunc(func(context.Context, string) (bool, error) { return true, nil })
	}
	installStages = func() []pipeline.Stage { return []pipeline.Stage{&markAllStage{}} }
	return &deployerCreations
}

func TestInstall(t *testing.T) {
	t.Setenv("PATTERN_DASHBOARD_REFRESH", "1ms")
	swapFactories(t, testConfig(t), &cluster.Mock{}, &stubDeployer{})

	err := Install(context.Background(), InstallOptions{
		PatternName: "qtodo",
		ConfigPath:  "pattern.yaml",
	})

	require.NoError(t, err)
}

func TestInstall_StageFailureAbortsAndErrors(t *testing.T) {
	t.Setenv("PATTERN_DASHBOARD_REFRESH", "1ms")
	swapFactories(t, testConfig(t), &cluster.Mock{}, &stubDeployer{})
	installStages = func() []pipeline.Stage { return []pipeline.Stage{&failingStage{}} }

	err := Install(context.Background(), InstallOptions{
		PatternName: "qtodo",
		ConfigPath:  "pattern.yaml",
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "install failed")
}

func TestInstall_PatternNameMismatch(t *testing.T) {
	swapFactories(t, testConfig(t), &cluster.Mock{}, &stubDeployer{})

	err := Install(context.Background(), InstallOptions{
		PatternName: "other",
		ConfigPath:  "pattern.yaml",
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match configured pattern")
}

func TestInstall_DryRunMakesNoMutatingCalls(t *testing.T) {
	mock := &cluster.Mock{}
	deployerCreations := swapFactories(t, testConfig(t), mock, &stubDeployer{})

	err := Install(context.Background(), InstallOptions{
		PatternName: "qtodo",
		ConfigPath:  "pattern.yaml",
		DryRun:      true,
	})

	require.NoError(t, err)
	assert.Zero(t, deployerCreations.Load(), "dry run must not build a deployer")
	assert.Empty(t, mock.Deleted())
	assert.Empty(t, mock.Secrets())
}

func TestInstallPlan(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t)
	dir, err := pattern.Load(cfg)
	require.NoError(t, err)
	for _, c := range dir.All() {
		c.Namespace = pattern.Resolved(c.NamespaceHint, "config")
		c.Version = pattern.Unknown("no version declared")
	}

	plan := installPlan(dir)

	assert.Contains(t, plan, "Install plan (dry run)")
	assert.Contains(t, plan, "operator:")
	assert.Contains(t, plan, "vault-operator")
	assert.Contains(t, plan, "namespace=openshift-operators")
	assert.Contains(t, plan, "version=unknown (no version declared)")
	assert.Contains(t, plan, "Protected")
	assert.Contains(t, plan, "PatternOwned")
}
