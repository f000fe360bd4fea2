// Package orchestrator drives the cluster lifecycle state machine:
// Absent --create--> Creating --(poll converge)--> Ready, and
// Ready --delete--> Deleting --(poll converge)--> Gone. State is derived only
// from observation of the external provisioner, never asserted locally.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/imamik/eksops/internal/config"
	awsplat "github.com/imamik/eksops/internal/platform/aws"
	"github.com/imamik/eksops/internal/util/naming"
)

// ConfirmationToken must be supplied verbatim to Delete. The friction is
// deliberate: it protects against accidental irreversible destruction.
const ConfirmationToken = "DELETE"

// DefaultPollInterval is how often convergence polling samples the external
// system. Polling, not busy-looping; provisioning takes tens of minutes.
const DefaultPollInterval = 20 * time.Second

// ClusterAPI is the provisioning surface the orchestrator drives.
// Implemented by the platform EKS wrapper.
type ClusterAPI interface {
	DescribeCluster(ctx context.Context, name string) (*awsplat.Cluster, error)
	CreateCluster(ctx context.Context, params awsplat.CreateClusterParams) error
	DeleteCluster(ctx context.Context, name string) error
	ListNodeGroups(ctx context.Context, clusterName string) ([]awsplat.NodeGroup, error)
	CreateNodeGroup(ctx context.Context, params awsplat.CreateNodeGroupParams) error
	DeleteNodeGroup(ctx context.Context, clusterName, name string) error
}

// SubnetLookup discovers the cluster's subnets when the config names none.
type SubnetLookup interface {
	ListSubnetsByTag(ctx context.Context, tagKey string) ([]awsplat.Subnet, error)
}

// Orchestrator owns no persistent state; every method re-derives cluster
// state by querying the external system.
type Orchestrator struct {
	api          ClusterAPI
	subnets      SubnetLookup
	accountID    string
	observer     Observer
	pollInterval time.Duration
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithObserver sets the progress observer.
func WithObserver(obs Observer) Option {
	return func(o *Orchestrator) {
		o.observer = obs
	}
}

// WithPollInterval sets the convergence polling interval.
func WithPollInterval(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.pollInterval = d
	}
}

// New creates an orchestrator bound to one account and region (the api client
// is region-scoped).
func New(api ClusterAPI, subnets SubnetLookup, accountID string, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		api:          api,
		subnets:      subnets,
		accountID:    accountID,
		observer:     NewConsoleObserver(),
		pollInterval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Observe returns a point-in-time snapshot of external cluster state.
func (o *Orchestrator) Observe(ctx context.Context, name string) (*Observation, error) {
	cluster, err := o.api.DescribeCluster(ctx, name)
	if err != nil {
		if awsplat.IsNotFound(err) {
			return &Observation{State: StateAbsent}, nil
		}
		return nil, o.external("DescribeCluster", err)
	}

	var groups []awsplat.NodeGroup
	if cluster.Status != "DELETING" {
		groups, err = o.api.ListNodeGroups(ctx, name)
		if err != nil {
			return nil, o.external("ListNodegroups", err)
		}
	}

	return &Observation{
		State:      DeriveState(cluster, groups),
		Cluster:    cluster,
		NodeGroups: groups,
	}, nil
}

// Create provisions the cluster described by spec and waits for convergence.
//
// Idempotency contract: if a cluster with the same name already exists in
// this region, Create returns AlreadyExistsError without submitting anything,
// so a retried invocation can never produce two clusters.
func (o *Orchestrator) Create(ctx context.Context, spec *config.ClusterSpec) (*ClusterHandle, error) {
	existing, err := o.api.DescribeCluster(ctx, spec.Name)
	if err != nil && !awsplat.IsNotFound(err) {
		return nil, o.external("DescribeCluster", err)
	}
	if err == nil && existing != nil {
		return nil, &AlreadyExistsError{Name: spec.Name, Region: spec.Region}
	}

	subnetIDs, err := o.resolveSubnets(ctx, spec)
	if err != nil {
		return nil, err
	}
	clusterRole, nodeRole := o.resolveRoles(spec)

	manifest := BuildManifest(spec, subnetIDs, clusterRole, nodeRole)
	manifestPath, err := manifest.WriteTransient()
	if err != nil {
		return nil, err
	}
	o.observer.Printf("Rendered cluster manifest: %s", manifestPath)

	timeout := time.Duration(spec.WaitTimeoutMinutes) * time.Minute

	o.observer.Printf("Phase 1: Creating control plane %s (Kubernetes %s)...", spec.Name, spec.KubernetesVersion)
	if err := o.api.CreateCluster(ctx, awsplat.CreateClusterParams{
		Name:          spec.Name,
		Version:       spec.KubernetesVersion,
		RoleARN:       clusterRole,
		SubnetIDs:     subnetIDs,
		Tags:          manifest.Metadata.Tags,
		EnableLogging: true,
	}); err != nil {
		if awsplat.IsAlreadyExists(err) {
			return nil, &AlreadyExistsError{Name: spec.Name, Region: spec.Region}
		}
		return nil, o.external("CreateCluster", err)
	}

	o.observer.Printf("Phase 2: Waiting for control plane to become active...")
	if err := o.waitControlPlaneActive(ctx, spec.Name, timeout); err != nil {
		return nil, err
	}

	o.observer.Printf("Phase 3: Creating %d node group(s)...", len(spec.NodeGroups))
	for _, ng := range spec.NodeGroups {
		params := awsplat.CreateNodeGroupParams{
			ClusterName:  spec.Name,
			Name:         naming.NodeGroup(spec.Name, ng.Name),
			InstanceType: ng.InstanceType,
			MinNodes:     ng.MinNodes,
			MaxNodes:     ng.MaxNodes,
			DesiredNodes: ng.DesiredNodes,
			VolumeSizeGB: ng.VolumeSizeGB,
			NodeRoleARN:  nodeRole,
			SubnetIDs:    subnetIDs,
			Labels:       ng.Labels,
			Tags:         manifest.Metadata.Tags,
		}
		if err := o.api.CreateNodeGroup(ctx, params); err != nil {
			if awsplat.IsAlreadyExists(err) {
				o.observer.Printf("Node group %s already exists, keeping it", params.Name)
				continue
			}
			return nil, o.external("CreateNodegroup", err)
		}
	}

	o.observer.Printf("Phase 4: Waiting for node groups to become ready...")
	if err := o.WaitReady(ctx, spec.Name, timeout); err != nil {
		return nil, err
	}

	cluster, err := o.api.DescribeCluster(ctx, spec.Name)
	if err != nil {
		return nil, o.external("DescribeCluster", err)
	}
	o.observer.Printf("Cluster %s is ready", spec.Name)

	return &ClusterHandle{
		Name:              cluster.Name,
		Region:            spec.Region,
		ARN:               cluster.ARN,
		Endpoint:          cluster.Endpoint,
		OIDCIssuer:        cluster.OIDCIssuer,
		VPCID:             cluster.VPCID,
		KubernetesVersion: cluster.Version,
	}, nil
}

// Delete tears the cluster down: node groups first, then the control plane,
// polling until the provisioner reports the cluster gone.
//
// The confirm argument must equal ConfirmationToken; anything else performs
// no destructive action. Existence is checked first so the operator gets an
// actionable NotFoundError instead of an ambiguous provider failure.
func (o *Orchestrator) Delete(ctx context.Context, name, region, confirm string) error {
	if confirm != ConfirmationToken {
		return &ConfirmationError{Got: confirm}
	}

	cluster, err := o.api.DescribeCluster(ctx, name)
	if err != nil {
		if awsplat.IsNotFound(err) {
			return &NotFoundError{Name: name, Region: region}
		}
		return o.external("DescribeCluster", err)
	}

	timeout := 40 * time.Minute
	o.observer.Printf("Deleting cluster %s (%s)...", name, cluster.Status)

	groups, err := o.api.ListNodeGroups(ctx, name)
	if err != nil {
		return o.external("ListNodegroups", err)
	}
	for _, ng := range groups {
		o.observer.Printf("Deleting node group %s...", ng.Name)
		if err := o.api.DeleteNodeGroup(ctx, name, ng.Name); err != nil && !awsplat.IsNotFound(err) {
			return o.external("DeleteNodegroup", err)
		}
	}
	if len(groups) > 0 {
		if err := o.waitNodeGroupsGone(ctx, name, timeout); err != nil {
			return err
		}
	}

	o.observer.Printf("Deleting control plane %s...", name)
	if err := o.api.DeleteCluster(ctx, name); err != nil && !awsplat.IsNotFound(err) {
		return o.external("DeleteCluster", err)
	}

	if err := o.waitGone(ctx, name, timeout); err != nil {
		return err
	}
	o.observer.Printf("Cluster %s is gone", name)
	return nil
}

// WaitReady polls at a fixed interval until the cluster derives Ready. The
// caller-supplied context cancels mid-poll within one interval; a timeout
// surfaces as TimeoutError and the cluster reports as Degraded thereafter.
func (o *Orchestrator) WaitReady(ctx context.Context, name string, timeout time.Duration) error {
	return o.poll(ctx, "waitReady", name, timeout, func(obs *Observation) (bool, error) {
		switch obs.State {
		case StateReady:
			return true, nil
		case StateDegraded:
			return false, &ExternalError{
				Op:  "waitReady",
				Err: fmt.Errorf("cluster %q degraded while waiting for readiness", name),
			}
		}
		return false, nil
	})
}

// waitControlPlaneActive waits for the control plane alone; node groups do
// not exist yet at this point in the create path.
func (o *Orchestrator) waitControlPlaneActive(ctx context.Context, name string, timeout time.Duration) error {
	return o.poll(ctx, "waitControlPlane", name, timeout, func(obs *Observation) (bool, error) {
		if obs.Cluster == nil {
			return false, nil
		}
		switch obs.Cluster.Status {
		case "ACTIVE":
			return true, nil
		case "FAILED":
			return false, &ExternalError{
				Op:  "waitControlPlane",
				Err: fmt.Errorf("control plane %q entered FAILED", name),
			}
		}
		return false, nil
	})
}

func (o *Orchestrator) waitNodeGroupsGone(ctx context.Context, name string, timeout time.Duration) error {
	return o.poll(ctx, "waitNodeGroupsGone", name, timeout, func(obs *Observation) (bool, error) {
		return len(obs.NodeGroups) == 0, nil
	})
}

func (o *Orchestrator) waitGone(ctx context.Context, name string, timeout time.Duration) error {
	return o.poll(ctx, "waitGone", name, timeout, func(obs *Observation) (bool, error) {
		return obs.State == StateAbsent, nil
	})
}

// poll samples Observe on the configured interval until done, cancellation or
// timeout. Transient observation failures are logged and retried on the next
// tick rather than aborting a multi-minute wait.
func (o *Orchestrator) poll(ctx context.Context, op, name string, timeout time.Duration, done func(*Observation) (bool, error)) error {
	ticker := time.NewTicker(o.pollInterval)
	defer ticker.Stop()
	deadline := time.After(timeout)

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("%s for cluster %q cancelled: %w", op, name, ctx.Err())
		case <-deadline:
			return &TimeoutError{Op: op, Name: name, Timeout: timeout}
		case <-ticker.C:
			obs, err := o.Observe(ctx, name)
			if err != nil {
				o.observer.Printf("%s: observation failed, retrying next interval: %v", op, err)
				continue
			}
			ok, err := done(obs)
			if err != nil {
				return err
			}
			if ok {
				return nil
			}
			o.observer.Printf("%s: cluster %s state %s", op, name, obs.State)
		}
	}
}

// resolveSubnets returns the configured subnets, falling back to discovery by
// the cluster ownership tag.
func (o *Orchestrator) resolveSubnets(ctx context.Context, spec *config.ClusterSpec) ([]string, error) {
	if len(spec.SubnetIDs) > 0 {
		return spec.SubnetIDs, nil
	}

	subnets, err := o.subnets.ListSubnetsByTag(ctx, spec.OwnershipTag())
	if err != nil {
		return nil, o.external("DescribeSubnets", err)
	}
	if len(subnets) == 0 {
		return nil, fmt.Errorf("no subnets configured and none tagged %q; set subnet_ids in the config file", spec.OwnershipTag())
	}

	ids := make([]string, 0, len(subnets))
	for _, sn := range subnets {
		ids = append(ids, sn.ID)
	}
	return ids, nil
}

// resolveRoles returns the configured role ARNs, falling back to the naming
// convention in the caller's account.
func (o *Orchestrator) resolveRoles(spec *config.ClusterSpec) (clusterRole, nodeRole string) {
	clusterRole = spec.ClusterRoleARN
	if clusterRole == "" {
		clusterRole = fmt.Sprintf("arn:aws:iam::%s:role/%s", o.accountID, naming.ClusterRole(spec.Name))
	}
	nodeRole = spec.NodeRoleARN
	if nodeRole == "" {
		nodeRole = fmt.Sprintf("arn:aws:iam::%s:role/%s", o.accountID, naming.NodeRole(spec.Name))
	}
	return clusterRole, nodeRole
}

func (o *Orchestrator) external(op string, err error) *ExternalError {
	return &ExternalError{Op: op, Code: awsplat.ErrorCode(err), Err: err}
}
