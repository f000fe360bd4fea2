// Package diagnostics inspects a running cluster and reports actionable
// findings. Every check is read-only and independent; the report always lists
// all results so the operator gets the complete picture in one pass.
package diagnostics

import (
	"context"
	"fmt"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"

	"github.com/imamik/eksops/internal/k8s"
	"github.com/imamik/eksops/internal/orchestrator"
	awsplat "github.com/imamik/eksops/internal/platform/aws"
	"github.com/imamik/eksops/internal/util/naming"
)

// Status classifies one check result. Best-effort checks that cannot reach
// their subject degrade to unknown rather than aborting the report.
type Status string

const (
	StatusPass    Status = "pass"
	StatusFail    Status = "fail"
	StatusUnknown Status = "unknown"
)

// Check is one diagnostic finding.
type Check struct {
	Name        string `json:"name"`
	Status      Status `json:"status"`
	Evidence    string `json:"evidence"`
	Remediation string `json:"remediation,omitempty"`
}

// Report aggregates every check for one cluster.
type Report struct {
	ClusterName string  `json:"clusterName"`
	Checks      []Check `json:"checks"`
}

// Healthy reports whether no check failed. Unknown results do not count as
// failures; they flag blind spots, not problems.
func (r *Report) Healthy() bool {
	for _, c := range r.Checks {
		if c.Status == StatusFail {
			return false
		}
	}
	return true
}

// KubeInspector is the read surface of the Kubernetes client the runner
// needs. Implemented by k8s.Client.
type KubeInspector interface {
	GetNodes(ctx context.Context) ([]corev1.Node, error)
	GetDeployment(ctx context.Context, namespace, name string) (*appsv1.Deployment, error)
	NamespaceExists(ctx context.Context, name string) (bool, error)
}

// AddonLister is the managed addon read surface. Implemented by the platform
// EKS wrapper.
type AddonLister interface {
	ListAddons(ctx context.Context, clusterName string) ([]awsplat.Addon, error)
}

// Runner executes the diagnostic checks.
type Runner struct {
	kube   KubeInspector
	addons AddonLister
}

// NewRunner creates a runner. Either dependency may be nil, in which case its
// checks degrade to unknown.
func NewRunner(kube KubeInspector, addons AddonLister) *Runner {
	return &Runner{kube: kube, addons: addons}
}

// Diagnose runs every check against the cluster. It never returns an error:
// unreachable subjects yield unknown results with the failure as evidence.
func (r *Runner) Diagnose(ctx context.Context, handle *orchestrator.ClusterHandle) *Report {
	report := &Report{ClusterName: handle.Name}
	report.Checks = append(report.Checks,
		r.checkSystemNamespace(ctx),
		r.checkNodesReady(ctx),
		r.checkDeployment(ctx, "coredns", "kube-system", "coredns",
			"check the coredns deployment: kubectl -n kube-system describe deployment coredns"),
		r.checkDeployment(ctx, "load-balancer-controller", "kube-system", naming.LoadBalancerControllerRelease(),
			"install the aws-load-balancer-controller addon"),
		r.checkManagedAddons(ctx, handle.Name),
		checkOIDCIssuer(handle),
	)
	return report
}

func (r *Runner) checkSystemNamespace(ctx context.Context) Check {
	check := Check{Name: "system-namespace"}
	if r.kube == nil {
		check.Status = StatusUnknown
		check.Evidence = "no cluster API access configured"
		return check
	}

	exists, err := r.kube.NamespaceExists(ctx, "kube-system")
	if err != nil {
		check.Status = StatusUnknown
		check.Evidence = err.Error()
		return check
	}
	if !exists {
		check.Status = StatusFail
		check.Evidence = "kube-system namespace not found"
		check.Remediation = "the control plane is not serving system workloads; check cluster provisioning"
		return check
	}
	check.Status = StatusPass
	check.Evidence = "kube-system namespace present"
	return check
}

func (r *Runner) checkNodesReady(ctx context.Context) Check {
	check := Check{Name: "nodes-ready"}
	if r.kube == nil {
		check.Status = StatusUnknown
		check.Evidence = "no cluster API access configured"
		return check
	}

	nodes, err := r.kube.GetNodes(ctx)
	if err != nil {
		check.Status = StatusUnknown
		check.Evidence = err.Error()
		return check
	}
	if len(nodes) == 0 {
		check.Status = StatusFail
		check.Evidence = "no nodes registered"
		check.Remediation = "check node group status: eksops status"
		return check
	}

	ready := 0
	for i := range nodes {
		if k8s.IsNodeReady(&nodes[i]) {
			ready++
		}
	}
	check.Evidence = fmt.Sprintf("%d/%d nodes Ready", ready, len(nodes))
	if ready < len(nodes) {
		check.Status = StatusFail
		check.Remediation = "inspect NotReady nodes: kubectl describe nodes"
		return check
	}
	check.Status = StatusPass
	return check
}

func (r *Runner) checkDeployment(ctx context.Context, checkName, namespace, name, remediation string) Check {
	check := Check{Name: checkName}
	if r.kube == nil {
		check.Status = StatusUnknown
		check.Evidence = "no cluster API access configured"
		return check
	}

	deployment, err := r.kube.GetDeployment(ctx, namespace, name)
	if err != nil {
		check.Status = StatusUnknown
		check.Evidence = err.Error()
		return check
	}
	if deployment == nil {
		check.Status = StatusFail
		check.Evidence = fmt.Sprintf("deployment %s/%s not present", namespace, name)
		check.Remediation = remediation
		return check
	}
	if !k8s.IsDeploymentReady(deployment) {
		check.Status = StatusFail
		check.Evidence = fmt.Sprintf("deployment %s/%s: %d/%d replicas available",
			namespace, name, deployment.Status.AvailableReplicas, deploymentReplicas(deployment))
		check.Remediation = remediation
		return check
	}
	check.Status = StatusPass
	check.Evidence = fmt.Sprintf("deployment %s/%s: %d replicas available", namespace, name, deployment.Status.AvailableReplicas)
	return check
}

func deploymentReplicas(deployment *appsv1.Deployment) int32 {
	if deployment.Spec.Replicas == nil {
		return 0
	}
	return *deployment.Spec.Replicas
}

func (r *Runner) checkManagedAddons(ctx context.Context, clusterName string) Check {
	check := Check{Name: "managed-addons"}
	if r.addons == nil {
		check.Status = StatusUnknown
		check.Evidence = "no provisioner API access configured"
		return check
	}

	addons, err := r.addons.ListAddons(ctx, clusterName)
	if err != nil {
		check.Status = StatusUnknown
		check.Evidence = err.Error()
		return check
	}
	if len(addons) == 0 {
		check.Status = StatusFail
		check.Evidence = "no managed addons registered"
		check.Remediation = "install the default addon set: eksops create installs vpc-cni, coredns and kube-proxy"
		return check
	}

	var unhealthy []string
	for _, addon := range addons {
		if addon.Status != "ACTIVE" {
			unhealthy = append(unhealthy, fmt.Sprintf("%s=%s", addon.Name, addon.Status))
		}
	}
	if len(unhealthy) > 0 {
		check.Status = StatusFail
		check.Evidence = fmt.Sprintf("%d addon(s) not ACTIVE: %v", len(unhealthy), unhealthy)
		check.Remediation = "describe the unhealthy addon for its health issues"
		return check
	}
	check.Status = StatusPass
	check.Evidence = fmt.Sprintf("%d addon(s) ACTIVE", len(addons))
	return check
}

func checkOIDCIssuer(handle *orchestrator.ClusterHandle) Check {
	check := Check{Name: "oidc-issuer"}
	if handle.OIDCIssuer == "" {
		check.Status = StatusFail
		check.Evidence = "no OIDC issuer configured"
		check.Remediation = "IAM roles for service accounts require an OIDC provider; recreate the cluster with OIDC enabled"
		return check
	}
	check.Status = StatusPass
	check.Evidence = handle.OIDCIssuer
	return check
}
