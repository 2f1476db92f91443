package handlers

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/patternforge/patternctl/internal/auditlog"
	"github.com/patternforge/patternctl/internal/pattern"
	"github.com/patternforge/patternctl/internal/pipeline"
	"github.com/patternforge/patternctl/internal/teardown"
)

// UninstallOptions carries the uninstall command's resolved flags.
type UninstallOptions struct {
	PatternName string
	ConfigPath  string
	Kubeconfig  string
	DryRun      bool
}

// Uninstall removes a pattern from the cluster.
//
// Deletion runs in strict reverse install order and always sweeps to
// completion; individual delete failures are logged, escalated where a
// resource is stuck on finalizers, and reported as residue at the end.
// Residue is a warning, not a failure, so the handler returns nil unless
// setup fails or the context is cancelled.
func Uninstall(ctx context.Context, opts UninstallOptions) error {
	r, err := setup(ctx, opts.PatternName, opts.ConfigPath, opts.Kubeconfig)
	if err != nil {
		return err
	}
	defer r.audit.Close()

	log.Printf("Uninstalling pattern: %s (%d components)", r.cfg.Pattern, r.dir.Len())

	if opts.DryRun {
		fmt.Print(uninstallPlan(r.dir))
		return nil
	}

	obs := pipeline.NewConsoleObserver(r.audit, auditlog.CategoryUninstall)
	orch := teardown.New(r.dir, r.cluster, obs, loadTimeouts(), r.cfg.Pattern, r.cfg.GitopsNamespace)

	res, err := orch.Run(ctx)
	if err != nil {
		return fmt.Errorf("uninstall interrupted: %w", err)
	}

	teardown.LogResidue(r.audit, res)
	if res.Count() > 0 {
		log.Printf("Warning: %d resources survived the sweep:", res.Count())
		for _, item := range res.Items {
			log.Printf("  %s", item)
		}
	} else {
		log.Printf("Pattern %s removed, no residue", r.cfg.Pattern)
	}
	return nil
}

// uninstallPlan renders the dry-run view: deletion targets in sweep order,
// with protected namespaces called out as skipped.
func uninstallPlan(dir *pattern.Directory) string {
	var b strings.Builder
	b.WriteString("Teardown plan (dry run):\n")
	for i := len(pattern.Categories) - 1; i >= 0; i-- {
		components := dir.ByCategory(pattern.Categories[i])
		if len(components) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s:\n", pattern.Categories[i])
		for j := len(components) - 1; j >= 0; j-- {
			fmt.Fprintf(&b, "  delete %s\n", components[j].Name())
		}
	}
	b.WriteString("\nNamespaces:\n")
	for _, ns := range dir.Namespaces() {
		if teardown.Classify(ns) == teardown.Protected {
			fmt.Fprintf(&b, "  skip   %s (protected)\n", ns)
		} else {
			fmt.Fprintf(&b, "  delete %s\n", ns)
		}
	}
	return b.String()
}
