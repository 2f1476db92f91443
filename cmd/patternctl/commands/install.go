package commands

import (
	"github.com/spf13/cobra"

	"github.com/patternforge/patternctl/cmd/patternctl/handlers"
)

// Install returns the install command.
//
// Install runs the staged pipeline: infrastructure deploy, secrets load,
// operator install and wait, controller deploy, and the application sync
// wait. A stage failure aborts all later stages.
func Install() *cobra.Command {
	var (
		configPath     string
		kubeconfigPath string
		dryRun         bool
	)

	cmd := &cobra.Command{
		Use:   "install <pattern>",
		Short: "Install a pattern onto the managed cluster",
		Long: `Install deploys a pattern's components in dependency order:

  1. Infrastructure charts
  2. Secrets load
  3. Operator subscriptions (parallel wait)
  4. The pattern controller
  5. Application sync units (parallel wait)

A stage failure aborts all later stages; completed stages are not rolled
back. With --dry-run the plan is rendered and no mutating call is made.

Example:
  patternctl install qtodo -c pattern.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Install(cmd.Context(), handlers.InstallOptions{
				PatternName: args[0],
				ConfigPath:  configPath,
				Kubeconfig:  kubeconfigPath,
				DryRun:      dryRun,
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to pattern configuration file (required)")
	cmd.Flags().StringVar(&kubeconfigPath, "kubeconfig", "", "Path to kubeconfig (defaults to standard loading rules)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Render the install plan without any mutating call")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}
