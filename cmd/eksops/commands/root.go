// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument
// parsing and flag binding. Command execution is delegated to handler
// functions in the handlers package.
package commands

import "github.com/spf13/cobra"

// Global flag values shared by every subcommand. Flags override environment
// variables the same way the matching CLUSTER_NAME/REGION variables would.
var (
	clusterName string
	region      string
	configFile  string
)

// Root returns the root command for the eksops CLI.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eksops",
		Short: "Provision and manage EKS cluster lifecycles",
	}

	cmd.PersistentFlags().StringVar(&clusterName, "cluster-name", "", "Cluster name (overrides CLUSTER_NAME and config defaults)")
	cmd.PersistentFlags().StringVar(&region, "region", "", "AWS region (overrides REGION and config defaults)")
	cmd.PersistentFlags().StringVarP(&configFile, "config-file", "c", "", "Path to cluster configuration YAML")

	cmd.AddCommand(Create())
	cmd.AddCommand(Delete())
	cmd.AddCommand(Status())
	cmd.AddCommand(Diagnose())
	cmd.AddCommand(Version())

	return cmd
}
