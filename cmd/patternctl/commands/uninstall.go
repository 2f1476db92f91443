package commands

import (
	"github.com/spf13/cobra"

	"github.com/patternforge/patternctl/cmd/patternctl/handlers"
)

// Uninstall returns the uninstall command.
//
// Uninstall removes the pattern in strict reverse install order:
// applications, the controller's sync unit, operator subscriptions and
// their installed package records, pattern-owned namespaces, and finally
// the root custom resource. Protected platform namespaces are never
// deleted.
func Uninstall() *cobra.Command {
	var (
		configPath     string
		kubeconfigPath string
		dryRun         bool
	)

	cmd := &cobra.Command{
		Use:   "uninstall <pattern>",
		Short: "Remove a pattern and its resources from the managed cluster",
		Long: `Uninstall deletes pattern resources in reverse install order and
escalates stuck resources by stripping finalizers before a forced delete.
Namespaces the platform depends on are never deleted; only declared
pattern-owned sub-resources inside them are removed.

The sweep always runs to completion. Surviving resources are reported as
residue at the end, as a warning rather than a failure.

Example:
  patternctl uninstall qtodo -c pattern.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Uninstall(cmd.Context(), handlers.UninstallOptions{
				PatternName: args[0],
				ConfigPath:  configPath,
				Kubeconfig:  kubeconfigPath,
				DryRun:      dryRun,
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to pattern configuration file (required)")
	cmd.Flags().StringVar(&kubeconfigPath, "kubeconfig", "", "Path to kubeconfig (defaults to standard loading rules)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Render the teardown plan without any mutating call")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}
