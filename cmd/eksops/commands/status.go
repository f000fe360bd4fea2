package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/eksops/cmd/eksops/handlers"
)

// Status returns the status command.
func Status() *cobra.Command {
	var orphans bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the derived lifecycle state of a cluster",
		Long: `Status derives the cluster's lifecycle state (Absent, Creating, Ready,
Degraded, Deleting) from live observation of the control plane and its node
groups. Nothing is stored between runs.

With --orphans the region is additionally scanned for load balancers,
security groups and NAT gateways tied to the cluster name.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Status(cmd.Context(), handlers.StatusOptions{
				ClusterName: clusterName,
				Region:      region,
				ConfigFile:  configFile,
				Orphans:     orphans,
			})
		},
	}

	cmd.Flags().BoolVar(&orphans, "orphans", false, "Also scan for orphaned cloud resources")

	return cmd
}
