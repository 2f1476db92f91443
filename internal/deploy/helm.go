package deploy

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"helm.sh/helm/v3/pkg/action"
	"helm.sh/helm/v3/pkg/chart/loader"
	"helm.sh/helm/v3/pkg/cli"
	"k8s.io/apimachinery/pkg/api/meta"
	"k8s.io/client-go/discovery"
	"k8s.io/client-go/discovery/cached/memory"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/restmapper"
	"k8s.io/client-go/tools/clientcmd"
	clientcmdapi "k8s.io/client-go/tools/clientcmd/api"
)

// HelmDeployer implements Deployer with Helm install/upgrade actions.
type HelmDeployer struct {
	settings   *cli.EnvSettings
	restConfig *rest.Config
}

// NewHelmDeployer creates a deployer from a kubeconfig file path. An empty
// path falls back to the default loading rules.
func NewHelmDeployer(kubeconfigPath string) (*HelmDeployer, error) {
	loadingRules := clientcmd.NewDefaultClientConfigLoadingRules()
	if kubeconfigPath != "" {
		loadingRules.ExplicitPath = kubeconfigPath
	}

	restConfig, err := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(
		loadingRules, &clientcmd.ConfigOverrides{}).ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to build kubeconfig: %w", err)
	}

	return &HelmDeployer{
		settings:   cli.New(),
		restConfig: restConfig,
	}, nil
}

// Apply implements Deployer. The chart at manifestRef is installed, or
// upgraded when release history already exists. Failures are reported in
// the Result, never raised; the pipeline decides whether to retry.
func (h *HelmDeployer) Apply(ctx context.Context, manifestRef string, opts Options) Result {
	actionConfig := new(action.Configuration)
	clientGetter := &restClientGetter{
		config:    h.restConfig,
		namespace: opts.Namespace,
	}

	if err := actionConfig.Init(clientGetter, opts.Namespace, os.Getenv("HELM_DRIVER"), log.Printf); err != nil {
		return Result{Output: fmt.Sprintf("failed to init helm action config: %v", err)}
	}

	chart, err := loader.Load(manifestRef)
	if err != nil {
		return Result{Output: fmt.Sprintf("failed to load chart %s: %v", manifestRef, err)}
	}

	releaseName := opts.ReleaseName
	if releaseName == "" {
		releaseName = chart.Name()
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 5 * time.Minute
	}

	histClient := action.NewHistory(actionConfig)
	histClient.Max = 1
	if _, err := histClient.Run(releaseName); err == nil {
		upgrade := action.NewUpgrade(actionConfig)
		upgrade.Namespace = opts.Namespace
		upgrade.Wait = true
		upgrade.Timeout = timeout
		upgrade.DryRun = opts.DryRun

		rel, err := upgrade.RunWithContext(ctx, releaseName, chart, opts.Values)
		if err != nil {
			return Result{Output: fmt.Sprintf("helm upgrade failed: %v", err)}
		}
		return Result{Success: true, Output: fmt.Sprintf("release %s upgraded to revision %d", rel.Name, rel.Version)}
	}

	install := action.NewInstall(actionConfig)
	install.Namespace = opts.Namespace
	install.ReleaseName = releaseName
	install.CreateNamespace = true
	install.Wait = true
	install.Timeout = timeout
	install.DryRun = opts.DryRun

	rel, err := install.RunWithContext(ctx, chart, opts.Values)
	if err != nil {
		return Result{Output: fmt.Sprintf("helm install failed: %v", err)}
	}
	return Result{Success: true, Output: fmt.Sprintf("release %s installed", rel.Name)}
}

// restClientGetter implements a basic RESTClientGetter for Helm.
type restClientGetter struct {
	config    *rest.Config
	namespace string
}

func (g *restClientGetter) ToRESTConfig() (*rest.Config, error) {
	return g.config, nil
}

func (g *restClientGetter) ToDiscoveryClient() (discovery.CachedDiscoveryInterface, error) {
	discoveryClient, err := discovery.NewDiscoveryClientForConfig(g.config)
	if err != nil {
		return nil, err
	}
	return memory.NewMemCacheClient(discoveryClient), nil
}

func (g *restClientGetter) ToRESTMapper() (meta.RESTMapper, error) {
	discoveryClient, err := g.ToDiscoveryClient()
	if err != nil {
		return nil, err
	}
	return restmapper.NewDeferredDiscoveryRESTMapper(discoveryClient), nil
}

func (g *restClientGetter) ToRawKubeConfigLoader() clientcmd.ClientConfig {
	return clientcmd.NewDefaultClientConfig(*clientcmdapi.NewConfig(), &clientcmd.ConfigOverrides{})
}
