package handlers

import (
	"context"
	"fmt"
	"log"

	"github.com/imamik/eksops/internal/config"
	"github.com/imamik/eksops/internal/orchestrator"
	"github.com/imamik/eksops/internal/util/naming"
)

// CreateOptions carries the create command's inputs.
type CreateOptions struct {
	ClusterName    string
	Region         string
	ConfigFile     string
	TimeoutMinutes int
	DryRun         bool
	SkipAddons     bool
}

// Create handles the create command.
//
// Prerequisites run fully before any mutating call: a late credential
// failure mid-provisioning can leave a cluster half-created.
func Create(ctx context.Context, opts CreateOptions) error {
	spec, err := resolveSpec(opts.ClusterName, opts.Region, opts.ConfigFile)
	if err != nil {
		return err
	}
	if opts.TimeoutMinutes > 0 {
		spec.WaitTimeoutMinutes = opts.TimeoutMinutes
	}

	if err := checkTools().Error(); err != nil {
		return err
	}

	clients, err := newServiceClients(ctx, spec.Region)
	if err != nil {
		return err
	}
	identity, err := checkCredentials(ctx, clients)
	if err != nil {
		return err
	}
	log.Printf("Authenticated as %s (account %s)", identity.ARN, identity.AccountID)

	if opts.DryRun {
		return renderDryRun(spec, identity.AccountID)
	}

	orch := newOrchestrator(clients, identity.AccountID)
	handle, err := orch.Create(ctx, spec)
	if err != nil {
		return err
	}

	if !opts.SkipAddons {
		installer := newAddonInstaller(clients, spec)
		if _, err := installer.Install(ctx, handle, spec.Addons); err != nil {
			return err
		}
	}

	log.Printf("Cluster %s created: %s", handle.Name, handle.Endpoint)
	return nil
}

// renderDryRun prints the manifest that create would submit, with role ARNs
// derived the same way the orchestrator derives them.
func renderDryRun(spec *config.ClusterSpec, accountID string) error {
	clusterRole := spec.ClusterRoleARN
	if clusterRole == "" {
		clusterRole = fmt.Sprintf("arn:aws:iam::%s:role/%s", accountID, naming.ClusterRole(spec.Name))
	}
	nodeRole := spec.NodeRoleARN
	if nodeRole == "" {
		nodeRole = fmt.Sprintf("arn:aws:iam::%s:role/%s", accountID, naming.NodeRole(spec.Name))
	}

	manifest := orchestrator.BuildManifest(spec, spec.SubnetIDs, clusterRole, nodeRole)
	data, err := manifest.Render()
	if err != nil {
		return err
	}
	fmt.Print(string(data))
	return nil
}
