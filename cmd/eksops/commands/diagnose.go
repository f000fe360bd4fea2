package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/eksops/cmd/eksops/handlers"
)

// Diagnose returns the diagnose command.
func Diagnose() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "diagnose",
		Short: "Run read-only health checks against a cluster",
		Long: `Diagnose runs independent read-only checks against a running cluster:
system namespace, node readiness, controller deployments, managed addon
health, and the OIDC issuer. Every check is reported even when earlier ones
fail; checks that cannot reach their subject degrade to "unknown".

Each failing check carries a remediation hint.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Diagnose(cmd.Context(), handlers.DiagnoseOptions{
				ClusterName: clusterName,
				Region:      region,
				ConfigFile:  configFile,
				JSON:        jsonOutput,
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the report as JSON")

	return cmd
}
