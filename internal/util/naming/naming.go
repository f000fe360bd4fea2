// Package naming provides consistent naming functions for cluster resources.
//
// Cloud resources created for a cluster follow the pattern {cluster}-{type},
// which is also what the orphan scan falls back to when a resource carries no
// ownership tag.
package naming

import (
	"fmt"
	"strings"
)

func NodeGroup(cluster, poolName string) string {
	return fmt.Sprintf("%s-%s", cluster, poolName)
}

func ClusterRole(cluster string) string {
	return fmt.Sprintf("%s-cluster-role", cluster)
}

func NodeRole(cluster string) string {
	return fmt.Sprintf("%s-node-role", cluster)
}

func ManifestFile(cluster string) string {
	return fmt.Sprintf("%s-cluster.yaml", cluster)
}

func LoadBalancerControllerRelease() string {
	return "aws-load-balancer-controller"
}

// BelongsTo reports whether a resource name looks like it was created for the
// cluster. This is a best-effort heuristic with known false-negative risk;
// tag matching is always preferred.
func BelongsTo(cluster, resourceName string) bool {
	if cluster == "" || resourceName == "" {
		return false
	}
	return strings.Contains(resourceName, cluster)
}
