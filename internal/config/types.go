// Package config defines the cluster specification and its resolution from
// defaults, environment overrides and a YAML config file.
package config

// ClusterSpec is the immutable description of a managed cluster. It is
// constructed once by Resolve and passed by reference through the call chain;
// nothing mutates it after validation.
type ClusterSpec struct {
	Name              string            `yaml:"cluster_name"`
	Region            string            `yaml:"region"`
	KubernetesVersion string            `yaml:"kubernetes_version"`
	VPCCIDR           string            `yaml:"vpc_cidr"`
	NodeGroups        []NodeGroupSpec   `yaml:"nodegroups"`
	Addons            []AddonSpec       `yaml:"addons"`
	Tags              map[string]string `yaml:"tags"`

	// Network and IAM wiring handed to the provisioning API. When subnets
	// are not named, they are discovered by the cluster ownership tag;
	// role ARNs default to the {cluster}-cluster-role / {cluster}-node-role
	// convention in the caller's account.
	SubnetIDs      []string `yaml:"subnet_ids"`
	ClusterRoleARN string   `yaml:"cluster_role_arn"`
	NodeRoleARN    string   `yaml:"node_role_arn"`

	// WaitTimeoutMinutes bounds waiting for cluster convergence. Control
	// plane plus node group provisioning is slow and externally rate
	// limited, so the default is generous.
	WaitTimeoutMinutes int `yaml:"wait_timeout_minutes"`
}

// NodeGroupSpec describes one managed node group.
type NodeGroupSpec struct {
	Name            string            `yaml:"name"`
	InstanceType    string            `yaml:"instance_type"`
	MinNodes        int               `yaml:"min_nodes"`
	MaxNodes        int               `yaml:"max_nodes"`
	DesiredNodes    int               `yaml:"desired_nodes"`
	VolumeSizeGB    int               `yaml:"volume_size_gb"`
	VolumeType      string            `yaml:"volume_type"`
	VolumeEncrypted bool              `yaml:"volume_encrypted"`
	Private         bool              `yaml:"private"`
	Labels          map[string]string `yaml:"labels"`
}

// AddonSpec describes one cluster addon. Ordering is irrelevant and
// installation is idempotent; re-applying a present addon is a no-op.
type AddonSpec struct {
	Name string `yaml:"name"`

	// Version is either the literal "latest" or a pinned addon version.
	Version string `yaml:"version"`

	// RequiresIAMPolicy names an IAM policy capability the addon needs
	// (e.g. the EBS CSI driver policy). Informational for diagnostics.
	RequiresIAMPolicy string `yaml:"requires_iam_policy"`
}

// DefaultAddons returns the addon set installed when the config names none.
func DefaultAddons() []AddonSpec {
	return []AddonSpec{
		{Name: "vpc-cni", Version: "latest"},
		{Name: "coredns", Version: "latest"},
		{Name: "kube-proxy", Version: "latest"},
	}
}

// OwnershipTag returns the standard cluster ownership tag key. Every resource
// created for the cluster carries it, and the reaper matches on it exactly.
func (s *ClusterSpec) OwnershipTag() string {
	return "kubernetes.io/cluster/" + s.Name
}
