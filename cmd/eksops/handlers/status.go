package handlers

import (
	"context"
	"fmt"

	"github.com/imamik/eksops/internal/ui"
)

// StatusOptions carries the status command's inputs.
type StatusOptions struct {
	ClusterName string
	Region      string
	ConfigFile  string
	Orphans     bool
}

// Status handles the status command. State is derived from live observation;
// a missing cluster reports Absent rather than an error.
func Status(ctx context.Context, opts StatusOptions) error {
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
	obs, err := orch.Observe(ctx, spec.Name)
	if err != nil {
		return err
	}
	fmt.Print(ui.RenderStatus(obs, spec.Name, spec.Region, ui.IsInteractive()))

	if !opts.Orphans {
		return nil
	}
	orphans, err := newOrphanFinder(clients).FindOrphans(ctx, spec.Name, spec.Region)
	if err != nil {
		return err
	}
	fmt.Print(ui.RenderOrphans(orphans, spec.Name, ui.IsInteractive()))
	return nil
}
