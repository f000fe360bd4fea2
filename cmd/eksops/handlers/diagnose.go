package handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/imamik/eksops/internal/orchestrator"
	"github.com/imamik/eksops/internal/ui"
)

// DiagnoseOptions carries the diagnose command's inputs.
type DiagnoseOptions struct {
	ClusterName string
	Region      string
	ConfigFile  string
	JSON        bool
}

// Diagnose handles the diagnose command. The report is the deliverable:
// failing checks are findings, not command errors.
func Diagnose(ctx context.Context, opts DiagnoseOptions) error {
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
	if obs.State == orchestrator.StateAbsent {
		return &orchestrator.NotFoundError{Name: spec.Name, Region: spec.Region}
	}

	handle := &orchestrator.ClusterHandle{
		Name:              obs.Cluster.Name,
		Region:            spec.Region,
		ARN:               obs.Cluster.ARN,
		Endpoint:          obs.Cluster.Endpoint,
		OIDCIssuer:        obs.Cluster.OIDCIssuer,
		VPCID:             obs.Cluster.VPCID,
		KubernetesVersion: obs.Cluster.Version,
	}

	report := newDiagnosticsRunner(clients).Diagnose(ctx, handle)

	if opts.JSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}
	fmt.Print(ui.RenderDiagnostics(report, ui.IsInteractive()))
	return nil
}
