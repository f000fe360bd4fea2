package addons

import (
	"context"
	"fmt"

	"github.com/imamik/eksops/internal/config"
	"github.com/imamik/eksops/internal/orchestrator"
	"github.com/imamik/eksops/internal/util/naming"
	"github.com/imamik/eksops/internal/util/retry"
)

const (
	loadBalancerControllerNamespace = "kube-system"
	loadBalancerControllerRepo      = "https://aws.github.io/eks-charts"
	loadBalancerControllerChart     = "aws-load-balancer-controller"
)

// installLoadBalancerController installs the load balancer controller chart.
// The chart is not available through the managed addon API, so it goes in via
// helm; the release history check inside InstallOrUpgrade makes re-runs
// upgrades rather than duplicate installs.
func (i *Installer) installLoadBalancerController(ctx context.Context, handle *orchestrator.ClusterHandle, spec config.AddonSpec) AddonResult {
	if i.helm == nil {
		return AddonResult{
			Name:    spec.Name,
			Outcome: OutcomeFailed,
			Err:     fmt.Errorf("no helm installer configured for chart-based addon %s", spec.Name),
		}
	}
	if len(i.kubeconfig) == 0 {
		return AddonResult{
			Name:    spec.Name,
			Outcome: OutcomeFailed,
			Err:     fmt.Errorf("no kubeconfig available for chart-based addon %s", spec.Name),
		}
	}

	version := spec.Version
	if version == "latest" {
		// Empty version lets the chart repository pick its newest release.
		version = ""
	}

	// The controller discovers subnets and provisions load balancers itself,
	// so it needs the cluster identity and VPC wiring as chart values. The
	// service account is expected to carry an IRSA role annotation created
	// alongside the cluster roles.
	values := map[string]interface{}{
		"clusterName": handle.Name,
		"region":      handle.Region,
		"vpcId":       handle.VPCID,
		"serviceAccount": map[string]interface{}{
			"name": naming.LoadBalancerControllerRelease(),
		},
	}

	err := retry.WithExponentialBackoff(ctx, func() error {
		return i.helm.InstallOrUpgrade(
			i.kubeconfig,
			loadBalancerControllerNamespace,
			naming.LoadBalancerControllerRelease(),
			loadBalancerControllerRepo,
			loadBalancerControllerChart,
			version,
			values,
		)
	}, i.retryOpts...)
	if err != nil {
		return AddonResult{Name: spec.Name, Outcome: OutcomeFailed, Err: err}
	}
	return AddonResult{Name: spec.Name, Outcome: OutcomeInstalled, Version: spec.Version}
}
