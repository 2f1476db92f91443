package handlers

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/patternforge/patternctl/internal/dashboard"
	"github.com/patternforge/patternctl/internal/pattern"
	"github.com/patternforge/patternctl/internal/pipeline"
	"github.com/patternforge/patternctl/internal/teardown"
)

// InstallOptions carries the install command's resolved flags.
type InstallOptions struct {
	PatternName string
	ConfigPath  string
	Kubeconfig  string
	DryRun      bool
}

// installStages produces the staged install plan - replaceable in tests.
var installStages = pipeline.InstallStages

// Install deploys a pattern onto the cluster.
//
// The flow is: load and validate the configuration, resolve component
// identity through discovery, then run the five install stages while a
// status dashboard renders progress. A stage failure marks every
// not-yet-started component Aborted and skips all later stages. The final
// per-component summary is printed either way.
//
// With DryRun set the resolved plan is rendered and the handler returns
// before any mutating cluster call.
func Install(ctx context.Context, opts InstallOptions) error {
	r, err := setup(ctx, opts.PatternName, opts.ConfigPath, opts.Kubeconfig)
	if err != nil {
		return err
	}
	defer r.audit.Close()

	log.Printf("Installing pattern: %s (%d components)", r.cfg.Pattern, r.dir.Len())

	if opts.DryRun {
		fmt.Print(installPlan(r.dir))
		return nil
	}

	deployer, err := newDeployer(opts.Kubeconfig)
	if err != nil {
		return fmt.Errorf("initializing deployer: %w", err)
	}

	pCtx := pipeline.NewContext(ctx, r.cfg, r.dir, r.cluster, deployer, newSecretsLoader(r.cluster), r.audit)

	dash := dashboard.New(r.dir, pCtx.Status, pCtx.Timeouts)
	dashDone := make(chan struct{})
	go func() {
		defer close(dashDone)
		if err := dash.Run(ctx); err != nil {
			log.Printf("Warning: dashboard stopped: %v", err)
		}
	}()

	runErr := pipeline.RunStages(pCtx, installStages())
	if runErr != nil {
		pCtx.Status.AbortPending(componentIDs(r.dir), "aborted: earlier stage failed")
	}
	<-dashDone

	fmt.Fprint(os.Stdout, dashboard.Summary(r.dir, pCtx.Status))

	if runErr != nil {
		return fmt.Errorf("install failed: %w", runErr)
	}
	if outcome := dashboard.Reduce(r.dir, pCtx.Status); !outcome.Passed() {
		return fmt.Errorf("install incomplete: %d of %d components failed",
			outcome.Failed+outcome.Aborted, r.dir.Len())
	}

	log.Printf("Pattern %s installed successfully", r.cfg.Pattern)
	return nil
}

// installPlan renders the dry-run view: components grouped by stage with
// their resolved namespace and version, then the namespaces the run will
// touch and how teardown would classify them.
func installPlan(dir *pattern.Directory) string {
	var b strings.Builder
	b.WriteString("Install plan (dry run):\n")
	for _, cat := range pattern.Categories {
		components := dir.ByCategory(cat)
		if len(components) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s:\n", cat)
		for _, c := range components {
			fmt.Fprintf(&b, "  %-24s namespace=%s version=%s\n", c.Name(), c.Namespace, c.Version)
		}
	}
	b.WriteString("\nNamespaces:\n")
	for _, ns := range dir.Namespaces() {
		fmt.Fprintf(&b, "  %-24s %s\n", ns, teardown.Classify(ns))
	}
	return b.String()
}

func componentIDs(dir *pattern.Directory) []string {
	ids := make([]string, 0, dir.Len())
	for _, c := range dir.All() {
		ids = append(ids, c.ID)
	}
	return ids
}
