// Package handlers implements the CLI command execution logic.
//
// Handlers wire the resolved configuration to the platform clients and the
// lifecycle components. Collaborators are constructed through package-level
// factory variables so tests can inject fakes.
package handlers

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"github.com/imamik/eksops/internal/addons"
	"github.com/imamik/eksops/internal/config"
	"github.com/imamik/eksops/internal/diagnostics"
	"github.com/imamik/eksops/internal/k8s"
	"github.com/imamik/eksops/internal/orchestrator"
	awsplat "github.com/imamik/eksops/internal/platform/aws"
	"github.com/imamik/eksops/internal/reaper"
	"github.com/imamik/eksops/internal/util/prerequisites"
)

// clusterOrchestrator is the lifecycle surface handlers drive.
type clusterOrchestrator interface {
	Create(ctx context.Context, spec *config.ClusterSpec) (*orchestrator.ClusterHandle, error)
	Delete(ctx context.Context, name, region, confirm string) error
	Observe(ctx context.Context, name string) (*orchestrator.Observation, error)
}

// addonInstaller installs the addon set after create.
type addonInstaller interface {
	Install(ctx context.Context, handle *orchestrator.ClusterHandle, specs []config.AddonSpec) ([]addons.AddonResult, error)
}

// orphanFinder scans for leftover cloud resources.
type orphanFinder interface {
	FindOrphans(ctx context.Context, clusterName, region string) ([]reaper.OrphanResource, error)
}

// diagnosticsRunner runs the read-only health checks.
type diagnosticsRunner interface {
	Diagnose(ctx context.Context, handle *orchestrator.ClusterHandle) *diagnostics.Report
}

// Factory function variables - can be replaced in tests for dependency injection.
var (
	// resolveSpec resolves the cluster spec. Flags beat the matching
	// environment variables but lose to explicit config file values, same
	// as the env overrides they stand in for.
	resolveSpec = func(clusterName, region, configFile string) (*config.ClusterSpec, error) {
		env := config.EnvFromOS()
		if clusterName != "" {
			env["CLUSTER_NAME"] = clusterName
		}
		if region != "" {
			env["REGION"] = region
		}
		return config.Resolve(env, configFile)
	}

	// checkTools verifies required client tools.
	checkTools = prerequisites.CheckDefault

	// newServiceClients builds the region-scoped platform clients.
	newServiceClients = func(ctx context.Context, region string) (*awsplat.ServiceClients, error) {
		return awsplat.NewServiceClients(ctx, awsplat.SessionOptions{
			Region:  region,
			Profile: os.Getenv("AWS_PROFILE"),
		})
	}

	// checkCredentials performs the identity probe.
	checkCredentials = func(ctx context.Context, clients *awsplat.ServiceClients) (*prerequisites.Identity, error) {
		return prerequisites.CheckCredentials(ctx, clients.STS)
	}

	// newOrchestrator creates the lifecycle orchestrator.
	newOrchestrator = func(clients *awsplat.ServiceClients, accountID string) clusterOrchestrator {
		return orchestrator.New(clients.EKS, clients.EC2, accountID)
	}

	// newAddonInstaller creates the addon installer. The kubeconfig is only
	// needed for chart-based addons; managed addons go through the
	// provisioner API.
	newAddonInstaller = func(clients *awsplat.ServiceClients, spec *config.ClusterSpec) addonInstaller {
		tags := map[string]string{spec.OwnershipTag(): "owned"}
		return addons.NewInstaller(clients.EKS, k8s.NewHelmClient(), loadKubeconfigBytes(), tags, nil)
	}

	// newOrphanFinder creates the post-deletion resource scanner.
	newOrphanFinder = func(clients *awsplat.ServiceClients) orphanFinder {
		return reaper.New(clients.ELB, clients.EC2)
	}

	// newDiagnosticsRunner creates the health check runner. Without a
	// usable kubeconfig the Kubernetes-side checks degrade to unknown.
	newDiagnosticsRunner = func(clients *awsplat.ServiceClients) diagnosticsRunner {
		var kube diagnostics.KubeInspector
		if data := loadKubeconfigBytes(); len(data) > 0 {
			if client, err := k8s.NewClientFromBytes(data); err == nil {
				kube = client
			} else {
				log.Printf("kubeconfig unusable, Kubernetes checks degrade to unknown: %v", err)
			}
		}
		return diagnostics.NewRunner(kube, clients.EKS)
	}
)

// loadKubeconfigBytes reads the active kubeconfig, or nil when none exists.
func loadKubeconfigBytes() []byte {
	path := os.Getenv("KUBECONFIG")
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		path = filepath.Join(home, ".kube", "config")
	}
	data, err := os.ReadFile(path) // #nosec G304 - standard kubeconfig location
	if err != nil {
		return nil
	}
	return data
}
