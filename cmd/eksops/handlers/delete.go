package handlers

import (
	"context"
	"fmt"
	"log"

	"github.com/imamik/eksops/internal/ui"
)

// DeleteOptions carries the delete command's inputs.
type DeleteOptions struct {
	ClusterName    string
	Region         string
	ConfigFile     string
	Confirm        string
	SkipOrphanScan bool
}

// Delete handles the delete command.
//
// The confirmation token is checked by the orchestrator before anything
// destructive runs. After teardown the region is scanned for resources that
// in-cluster controllers left behind; scan failures are reported but never
// fail a completed deletion.
func Delete(ctx context.Context, opts DeleteOptions) error {
	spec, err := resolveSpec(opts.ClusterName, opts.Region, opts.ConfigFile)
	if err != nil {
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

	orch := newOrchestrator(clients, identity.AccountID)
	if err := orch.Delete(ctx, spec.Name, spec.Region, opts.Confirm); err != nil {
		return err
	}
	log.Printf("Cluster %s deleted", spec.Name)

	if opts.SkipOrphanScan {
		return nil
	}

	orphans, err := newOrphanFinder(clients).FindOrphans(ctx, spec.Name, spec.Region)
	if err != nil {
		log.Printf("Warning: orphan scan failed: %v", err)
		return nil
	}
	fmt.Print(ui.RenderOrphans(orphans, spec.Name, ui.IsInteractive()))
	return nil
}
