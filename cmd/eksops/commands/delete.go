package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/eksops/cmd/eksops/handlers"
)

// Delete returns the delete command.
//
// The delete command tears down the cluster: node groups first, then the
// control plane, then scans for orphaned cloud resources. It requires
// --confirm DELETE; anything else performs no destructive action.
func Delete() *cobra.Command {
	var confirm string
	var skipOrphanScan bool

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a cluster and scan for orphaned resources",
		Long: `Delete removes the cluster and everything the provisioner owns:

  - Managed node groups
  - The control plane

Load balancers, security groups and NAT gateways created by in-cluster
controllers are NOT owned by the provisioner and survive teardown. After
deletion the orphan scan lists them for manual review; nothing is
auto-deleted.

The operation requires explicit confirmation:

  eksops delete --cluster-name demo --confirm DELETE

WARNING: This operation is irreversible. All cluster data will be lost.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Delete(cmd.Context(), handlers.DeleteOptions{
				ClusterName:    clusterName,
				Region:         region,
				ConfigFile:     configFile,
				Confirm:        confirm,
				SkipOrphanScan: skipOrphanScan,
			})
		},
	}

	cmd.Flags().StringVar(&confirm, "confirm", "", `Confirmation token; must be exactly "DELETE"`)
	cmd.Flags().BoolVar(&skipOrphanScan, "skip-orphan-scan", false, "Skip the post-deletion orphaned resource scan")

	return cmd
}
