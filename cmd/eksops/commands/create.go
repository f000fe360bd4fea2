package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/eksops/cmd/eksops/handlers"
)

// Create returns the create command.
//
// The create command provisions a cluster from the resolved spec: control
// plane, managed node groups and the addon set. It is idempotent: rerunning
// against an existing cluster reports AlreadyExists instead of creating a
// duplicate.
func Create() *cobra.Command {
	var timeoutMinutes int
	var dryRun bool
	var skipAddons bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a cluster with node groups and addons",
		Long: `Create provisions a cluster from the resolved configuration.

The configuration is resolved from the config file, environment variable
overrides (CLUSTER_NAME, REGION, K8S_VERSION, MIN_NODES, ...) and built-in
defaults, in that precedence order. Provisioning runs in phases:

  1. Control plane creation
  2. Wait for the control plane to become active
  3. Managed node group creation
  4. Wait for node groups to become ready
  5. Addon installation (vpc-cni, coredns, kube-proxy by default)

Example:
  eksops create --cluster-name demo --region us-east-1

Rerunning create against an existing cluster returns AlreadyExists; it never
creates a second cluster.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Create(cmd.Context(), handlers.CreateOptions{
				ClusterName:    clusterName,
				Region:         region,
				ConfigFile:     configFile,
				TimeoutMinutes: timeoutMinutes,
				DryRun:         dryRun,
				SkipAddons:     skipAddons,
			})
		},
	}

	cmd.Flags().IntVar(&timeoutMinutes, "timeout", 0, "Convergence wait timeout in minutes (0 uses the configured default)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Render the cluster manifest without creating anything")
	cmd.Flags().BoolVar(&skipAddons, "skip-addons", false, "Skip addon installation after the cluster is ready")

	return cmd
}
