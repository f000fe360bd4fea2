// Package reaper scans for cloud resources left behind after cluster
// deletion. Load balancers, security groups and NAT gateways created by
// in-cluster controllers are not owned by the provisioner and survive
// teardown; they keep billing until someone removes them.
//
// The scan only reports. Cross-resource deletion ordering is error-prone and
// costly when wrong, so removal stays an explicit human action.
package reaper

import (
	"context"
	"fmt"

	awsplat "github.com/imamik/eksops/internal/platform/aws"
	"github.com/imamik/eksops/internal/util/naming"
)

// ResourceKind classifies an orphaned resource.
type ResourceKind string

const (
	KindLoadBalancer  ResourceKind = "load-balancer"
	KindSecurityGroup ResourceKind = "security-group"
	KindNatGateway    ResourceKind = "nat-gateway"
)

// MatchRule records which heuristic flagged a resource. Tag matches are
// authoritative; name matches are best-effort with known false-negative risk.
type MatchRule string

const (
	MatchedByTag  MatchRule = "ownership-tag"
	MatchedByName MatchRule = "name-substring"
)

// OrphanResource is one discovered leftover. Never deleted by the tool.
type OrphanResource struct {
	Kind      ResourceKind `json:"kind"`
	ID        string       `json:"id"`
	Name      string       `json:"name,omitempty"`
	MatchedBy MatchRule    `json:"matchedBy"`
}

// LoadBalancerInventory lists load balancers with tags. Implemented by the
// platform ELB wrapper.
type LoadBalancerInventory interface {
	ListLoadBalancers(ctx context.Context) ([]awsplat.LoadBalancer, error)
}

// NetworkInventory lists security groups and NAT gateways. Implemented by the
// platform EC2 wrapper.
type NetworkInventory interface {
	ListSecurityGroups(ctx context.Context) ([]awsplat.SecurityGroup, error)
	ListNatGateways(ctx context.Context) ([]awsplat.NatGateway, error)
}

// Reaper discovers orphaned resources for a deleted cluster.
type Reaper struct {
	elb LoadBalancerInventory
	ec2 NetworkInventory
}

// New creates a reaper over the given inventories.
func New(elb LoadBalancerInventory, ec2 NetworkInventory) *Reaper {
	return &Reaper{elb: elb, ec2: ec2}
}

// FindOrphans scans the region's load balancers, security groups and NAT
// gateways for resources tied to the cluster. The ownership tag
// kubernetes.io/cluster/{name} matches first; resources without it fall back
// to the name-substring heuristic. Each finding records which rule matched.
func (r *Reaper) FindOrphans(ctx context.Context, clusterName, region string) ([]OrphanResource, error) {
	ownershipTag := "kubernetes.io/cluster/" + clusterName

	var orphans []OrphanResource

	lbs, err := r.elb.ListLoadBalancers(ctx)
	if err != nil {
		return nil, fmt.Errorf("scanning load balancers in %s: %w", region, err)
	}
	for _, lb := range lbs {
		if rule, ok := matches(ownershipTag, clusterName, lb.Tags, lb.Name); ok {
			orphans = append(orphans, OrphanResource{
				Kind:      KindLoadBalancer,
				ID:        lb.Name,
				Name:      lb.Name,
				MatchedBy: rule,
			})
		}
	}

	groups, err := r.ec2.ListSecurityGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("scanning security groups in %s: %w", region, err)
	}
	for _, sg := range groups {
		// The VPC default group carries no cluster name but also cannot
		// be deleted; skip it.
		if sg.Name == "default" {
			continue
		}
		if rule, ok := matches(ownershipTag, clusterName, sg.Tags, sg.Name); ok {
			orphans = append(orphans, OrphanResource{
				Kind:      KindSecurityGroup,
				ID:        sg.ID,
				Name:      sg.Name,
				MatchedBy: rule,
			})
		}
	}

	gateways, err := r.ec2.ListNatGateways(ctx)
	if err != nil {
		return nil, fmt.Errorf("scanning NAT gateways in %s: %w", region, err)
	}
	for _, gw := range gateways {
		if rule, ok := matches(ownershipTag, clusterName, gw.Tags, gw.Name); ok {
			orphans = append(orphans, OrphanResource{
				Kind:      KindNatGateway,
				ID:        gw.ID,
				Name:      gw.Name,
				MatchedBy: rule,
			})
		}
	}

	return orphans, nil
}

func matches(ownershipTag, clusterName string, tags map[string]string, name string) (MatchRule, bool) {
	if _, ok := tags[ownershipTag]; ok {
		return MatchedByTag, true
	}
	if naming.BelongsTo(clusterName, name) {
		return MatchedByName, true
	}
	return "", false
}
