// Package addons installs cluster addons after the cluster reaches Ready.
//
// Addons are largely independent of each other (DNS, CNI, CSI driver, load
// balancer controller), so installs run concurrently and a failure in one
// never aborts the others. Partial availability is still useful; failures are
// collected and reported as a set.
package addons

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/imamik/eksops/internal/config"
	"github.com/imamik/eksops/internal/orchestrator"
	awsplat "github.com/imamik/eksops/internal/platform/aws"
	"github.com/imamik/eksops/internal/util/naming"
	"github.com/imamik/eksops/internal/util/retry"
)

// maxConcurrentInstalls bounds the install pool. The managed addon API rate
// limits aggressively right after cluster creation.
const maxConcurrentInstalls = 4

// Outcome classifies one addon install attempt.
type Outcome string

const (
	OutcomeInstalled      Outcome = "installed"
	OutcomeAlreadyPresent Outcome = "already-present"
	OutcomeFailed         Outcome = "failed"
)

// AddonResult is the per-addon install record. Err is set only for
// OutcomeFailed.
type AddonResult struct {
	Name    string
	Outcome Outcome
	Version string
	Err     error
}

// PartialFailureError reports the failed subset of an install run. The
// successful subset is preserved in the results returned alongside it.
type PartialFailureError struct {
	Total  int
	Failed []AddonResult
}

func (e *PartialFailureError) Error() string {
	names := make([]string, 0, len(e.Failed))
	for _, r := range e.Failed {
		names = append(names, fmt.Sprintf("%s (%v)", r.Name, r.Err))
	}
	return fmt.Sprintf("%d of %d addon(s) failed: %s", len(e.Failed), e.Total, strings.Join(names, "; "))
}

// ManagedAddonAPI is the managed addon surface of the provisioner.
// Implemented by the platform EKS wrapper.
type ManagedAddonAPI interface {
	DescribeAddon(ctx context.Context, clusterName, name string) (*awsplat.Addon, error)
	CreateAddon(ctx context.Context, clusterName, name, version string, tags map[string]string) error
	ResolveAddonVersion(ctx context.Context, name, kubernetesVersion string) (string, error)
}

// HelmInstaller installs chart-based addons. Implemented by k8s.HelmClient.
type HelmInstaller interface {
	InstallOrUpgrade(kubeconfig []byte, namespace, releaseName, repoURL, chartName, version string, values map[string]interface{}) error
}

// Installer applies a declarative addon list to a ready cluster.
type Installer struct {
	api        ManagedAddonAPI
	helm       HelmInstaller
	kubeconfig []byte
	tags       map[string]string
	observer   orchestrator.Observer

	// retryOpts shortens backoff in tests.
	retryOpts []retry.Option
}

// NewInstaller creates an installer. kubeconfig is only needed when the addon
// list includes chart-based addons; tags are applied to every managed addon.
func NewInstaller(api ManagedAddonAPI, helm HelmInstaller, kubeconfig []byte, tags map[string]string, observer orchestrator.Observer) *Installer {
	if observer == nil {
		observer = orchestrator.NewConsoleObserver()
	}
	return &Installer{
		api:        api,
		helm:       helm,
		kubeconfig: kubeconfig,
		tags:       tags,
		observer:   observer,
	}
}

// Install applies every addon independently in a bounded pool. It always
// returns the full result set; when any addon failed the error is a
// PartialFailureError naming each failure.
func (i *Installer) Install(ctx context.Context, handle *orchestrator.ClusterHandle, specs []config.AddonSpec) ([]AddonResult, error) {
	if len(specs) == 0 {
		specs = config.DefaultAddons()
	}

	results := make([]AddonResult, len(specs))

	g := &errgroup.Group{}
	g.SetLimit(maxConcurrentInstalls)
	for idx, spec := range specs {
		idx, spec := idx, spec
		g.Go(func() error {
			// Failures land in the result slot, never in the group:
			// sibling installs must not be aborted.
			results[idx] = i.installOne(ctx, handle, spec)
			return nil
		})
	}
	_ = g.Wait()

	var failed []AddonResult
	for _, r := range results {
		switch r.Outcome {
		case OutcomeFailed:
			failed = append(failed, r)
			i.observer.Printf("Addon %s failed: %v", r.Name, r.Err)
		case OutcomeAlreadyPresent:
			i.observer.Printf("Addon %s already present (version %s)", r.Name, r.Version)
		default:
			i.observer.Printf("Addon %s installed (version %s)", r.Name, r.Version)
		}
	}
	if len(failed) > 0 {
		return results, &PartialFailureError{Total: len(specs), Failed: failed}
	}
	return results, nil
}

func (i *Installer) installOne(ctx context.Context, handle *orchestrator.ClusterHandle, spec config.AddonSpec) AddonResult {
	if spec.Name == "" {
		return AddonResult{Name: spec.Name, Outcome: OutcomeFailed, Err: fmt.Errorf("addon has no name")}
	}
	if spec.Name == naming.LoadBalancerControllerRelease() {
		return i.installLoadBalancerController(ctx, handle, spec)
	}
	return i.installManaged(ctx, handle, spec)
}

// installManaged drives one managed addon: presence check, version
// resolution, then a retried create. Re-applying a present addon is a no-op.
func (i *Installer) installManaged(ctx context.Context, handle *orchestrator.ClusterHandle, spec config.AddonSpec) AddonResult {
	existing, err := i.api.DescribeAddon(ctx, handle.Name, spec.Name)
	if err == nil {
		return AddonResult{Name: spec.Name, Outcome: OutcomeAlreadyPresent, Version: existing.Version}
	}
	if !awsplat.IsNotFound(err) {
		return AddonResult{Name: spec.Name, Outcome: OutcomeFailed, Err: err}
	}

	version := spec.Version
	if version == "" || version == "latest" {
		version, err = i.api.ResolveAddonVersion(ctx, spec.Name, handle.KubernetesVersion)
		if err != nil {
			return AddonResult{Name: spec.Name, Outcome: OutcomeFailed, Err: err}
		}
	}

	err = retry.WithExponentialBackoff(ctx, func() error {
		if err := i.api.CreateAddon(ctx, handle.Name, spec.Name, version, i.tags); err != nil {
			if isValidationFailure(err) {
				return retry.Fatal(err)
			}
			return err
		}
		return nil
	}, i.retryOpts...)
	if err != nil {
		return AddonResult{Name: spec.Name, Outcome: OutcomeFailed, Err: err}
	}
	return AddonResult{Name: spec.Name, Outcome: OutcomeInstalled, Version: version}
}

// isValidationFailure reports whether the provisioner rejected the request
// itself; retrying a malformed request can never succeed.
func isValidationFailure(err error) bool {
	switch awsplat.ErrorCode(err) {
	case "InvalidParameterException", "InvalidRequestException":
		return true
	}
	return false
}
