package config

import (
	"fmt"
	"net"
	"strings"
)

// ValidationError reports every violated invariant found in a spec, not just
// the first, so an operator can fix the configuration in one pass.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid cluster spec: %s", strings.Join(e.Violations, "; "))
}

// validate checks the spec invariants and returns all violations found.
func (s *ClusterSpec) validate() []string {
	var violations []string

	if s.Name == "" {
		violations = append(violations, "cluster_name is required (set CLUSTER_NAME or cluster_name)")
	}
	if s.Region == "" {
		violations = append(violations, "region is required")
	}
	if s.KubernetesVersion == "" {
		violations = append(violations, "kubernetes_version is required")
	}
	if s.VPCCIDR != "" {
		if _, _, err := net.ParseCIDR(s.VPCCIDR); err != nil {
			violations = append(violations, fmt.Sprintf("vpc_cidr %q is not a valid CIDR", s.VPCCIDR))
		}
	}

	if len(s.NodeGroups) == 0 {
		violations = append(violations, "at least one node group is required")
	}
	seen := make(map[string]bool, len(s.NodeGroups))
	for i, ng := range s.NodeGroups {
		label := ng.Name
		if label == "" {
			label = fmt.Sprintf("#%d", i)
			violations = append(violations, fmt.Sprintf("node group %s: name is required", label))
		}
		if seen[ng.Name] && ng.Name != "" {
			violations = append(violations, fmt.Sprintf("node group %q: duplicate name", ng.Name))
		}
		seen[ng.Name] = true

		if ng.InstanceType == "" {
			violations = append(violations, fmt.Sprintf("node group %s: instance_type is required", label))
		}
		if ng.MinNodes < 0 {
			violations = append(violations, fmt.Sprintf("node group %s: min_nodes must not be negative", label))
		}
		if ng.MinNodes > ng.MaxNodes {
			violations = append(violations, fmt.Sprintf(
				"node group %s: MIN_NODES>MAX_NODES (min %d, max %d)", label, ng.MinNodes, ng.MaxNodes))
		}
		if ng.DesiredNodes < ng.MinNodes || ng.DesiredNodes > ng.MaxNodes {
			violations = append(violations, fmt.Sprintf(
				"node group %s: desired_nodes %d outside [min %d, max %d]",
				label, ng.DesiredNodes, ng.MinNodes, ng.MaxNodes))
		}
		if ng.VolumeSizeGB < 0 {
			violations = append(violations, fmt.Sprintf("node group %s: volume_size_gb must not be negative", label))
		}
	}

	for i, addon := range s.Addons {
		if addon.Name == "" {
			violations = append(violations, fmt.Sprintf("addon #%d: name is required", i))
		}
	}

	if s.WaitTimeoutMinutes <= 0 {
		violations = append(violations, "wait_timeout_minutes must be positive")
	}

	return violations
}
