package aws

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awseks "github.com/aws/aws-sdk-go-v2/service/eks"
	ekstypes "github.com/aws/aws-sdk-go-v2/service/eks/types"
)

// EKSAPI is the EKS surface the tool depends on.
type EKSAPI interface {
	CreateCluster(ctx context.Context, params *awseks.CreateClusterInput, optFns ...func(*awseks.Options)) (*awseks.CreateClusterOutput, error)
	DeleteCluster(ctx context.Context, params *awseks.DeleteClusterInput, optFns ...func(*awseks.Options)) (*awseks.DeleteClusterOutput, error)
	DescribeCluster(ctx context.Context, params *awseks.DescribeClusterInput, optFns ...func(*awseks.Options)) (*awseks.DescribeClusterOutput, error)
	CreateNodegroup(ctx context.Context, params *awseks.CreateNodegroupInput, optFns ...func(*awseks.Options)) (*awseks.CreateNodegroupOutput, error)
	DeleteNodegroup(ctx context.Context, params *awseks.DeleteNodegroupInput, optFns ...func(*awseks.Options)) (*awseks.DeleteNodegroupOutput, error)
	DescribeNodegroup(ctx context.Context, params *awseks.DescribeNodegroupInput, optFns ...func(*awseks.Options)) (*awseks.DescribeNodegroupOutput, error)
	ListNodegroups(ctx context.Context, params *awseks.ListNodegroupsInput, optFns ...func(*awseks.Options)) (*awseks.ListNodegroupsOutput, error)
	CreateAddon(ctx context.Context, params *awseks.CreateAddonInput, optFns ...func(*awseks.Options)) (*awseks.CreateAddonOutput, error)
	DescribeAddon(ctx context.Context, params *awseks.DescribeAddonInput, optFns ...func(*awseks.Options)) (*awseks.DescribeAddonOutput, error)
	ListAddons(ctx context.Context, params *awseks.ListAddonsInput, optFns ...func(*awseks.Options)) (*awseks.ListAddonsOutput, error)
	DescribeAddonVersions(ctx context.Context, params *awseks.DescribeAddonVersionsInput, optFns ...func(*awseks.Options)) (*awseks.DescribeAddonVersionsOutput, error)
}

// EKSClient wraps EKS operations behind flat domain types.
type EKSClient struct {
	api EKSAPI
}

// NewEKSClient creates a new EKS wrapper.
func NewEKSClient(api EKSAPI) *EKSClient {
	return &EKSClient{api: api}
}

// Cluster is the observed control plane state.
type Cluster struct {
	Name       string
	ARN        string
	Status     string
	Version    string
	Endpoint   string
	OIDCIssuer string
	VPCID      string
	CreatedAt  time.Time
	Tags       map[string]string
}

// NodeGroup is the observed state of one managed node group.
type NodeGroup struct {
	Name         string
	Status       string
	InstanceType string
	MinNodes     int
	MaxNodes     int
	DesiredNodes int
	ReadyNodes   int
}

// Addon is the observed state of one registered cluster addon.
type Addon struct {
	Name    string
	Version string
	Status  string
	Issues  []string
}

// CreateClusterParams carries the control plane creation request.
type CreateClusterParams struct {
	Name             string
	Version          string
	RoleARN          string
	SubnetIDs        []string
	SecurityGroupIDs []string
	Tags             map[string]string
	EnableLogging    bool
}

// CreateNodeGroupParams carries one node group creation request.
type CreateNodeGroupParams struct {
	ClusterName  string
	Name         string
	InstanceType string
	MinNodes     int
	MaxNodes     int
	DesiredNodes int
	VolumeSizeGB int
	NodeRoleARN  string
	SubnetIDs    []string
	Labels       map[string]string
	Tags         map[string]string
}

// DescribeCluster returns the observed cluster state. Callers distinguish a
// missing cluster with IsNotFound.
func (c *EKSClient) DescribeCluster(ctx context.Context, name string) (*Cluster, error) {
	out, err := c.api.DescribeCluster(ctx, &awseks.DescribeClusterInput{
		Name: aws.String(name),
	})
	if err != nil {
		return nil, fmt.Errorf("DescribeCluster(%s): %w", name, err)
	}

	cl := out.Cluster

	var createdAt time.Time
	if cl.CreatedAt != nil {
		createdAt = *cl.CreatedAt
	}
	var issuer string
	if cl.Identity != nil && cl.Identity.Oidc != nil {
		issuer = aws.ToString(cl.Identity.Oidc.Issuer)
	}
	var vpcID string
	if cl.ResourcesVpcConfig != nil {
		vpcID = aws.ToString(cl.ResourcesVpcConfig.VpcId)
	}

	return &Cluster{
		Name:       aws.ToString(cl.Name),
		ARN:        aws.ToString(cl.Arn),
		Status:     string(cl.Status),
		Version:    aws.ToString(cl.Version),
		Endpoint:   aws.ToString(cl.Endpoint),
		OIDCIssuer: issuer,
		VPCID:      vpcID,
		CreatedAt:  createdAt,
		Tags:       cl.Tags,
	}, nil
}

// CreateCluster submits the control plane creation request. The call returns
// as soon as the cluster enters CREATING; convergence is polled separately.
func (c *EKSClient) CreateCluster(ctx context.Context, params CreateClusterParams) error {
	in := &awseks.CreateClusterInput{
		Name:    aws.String(params.Name),
		Version: aws.String(params.Version),
		RoleArn: aws.String(params.RoleARN),
		ResourcesVpcConfig: &ekstypes.VpcConfigRequest{
			SubnetIds:        params.SubnetIDs,
			SecurityGroupIds: params.SecurityGroupIDs,
		},
		Tags: params.Tags,
	}
	if params.EnableLogging {
		enabled := true
		in.Logging = &ekstypes.Logging{
			ClusterLogging: []ekstypes.LogSetup{{
				Enabled: &enabled,
				Types: []ekstypes.LogType{
					ekstypes.LogTypeApi,
					ekstypes.LogTypeAudit,
					ekstypes.LogTypeControllerManager,
				},
			}},
		}
	}

	if _, err := c.api.CreateCluster(ctx, in); err != nil {
		return fmt.Errorf("CreateCluster(%s): %w", params.Name, err)
	}
	return nil
}

// DeleteCluster submits the control plane deletion request.
func (c *EKSClient) DeleteCluster(ctx context.Context, name string) error {
	if _, err := c.api.DeleteCluster(ctx, &awseks.DeleteClusterInput{
		Name: aws.String(name),
	}); err != nil {
		return fmt.Errorf("DeleteCluster(%s): %w", name, err)
	}
	return nil
}

// ListNodeGroups returns the observed state of every node group.
func (c *EKSClient) ListNodeGroups(ctx context.Context, clusterName string) ([]NodeGroup, error) {
	var names []string
	var nextToken *string

	for {
		out, err := c.api.ListNodegroups(ctx, &awseks.ListNodegroupsInput{
			ClusterName: aws.String(clusterName),
			NextToken:   nextToken,
		})
		if err != nil {
			return nil, fmt.Errorf("ListNodegroups(%s): %w", clusterName, err)
		}

		names = append(names, out.Nodegroups...)

		if out.NextToken == nil {
			break
		}
		nextToken = out.NextToken
	}

	var groups []NodeGroup
	for _, name := range names {
		out, err := c.api.DescribeNodegroup(ctx, &awseks.DescribeNodegroupInput{
			ClusterName:   aws.String(clusterName),
			NodegroupName: aws.String(name),
		})
		if err != nil {
			return nil, fmt.Errorf("DescribeNodegroup(%s/%s): %w", clusterName, name, err)
		}

		ng := out.Nodegroup
		group := NodeGroup{
			Name:   aws.ToString(ng.NodegroupName),
			Status: string(ng.Status),
		}
		if len(ng.InstanceTypes) > 0 {
			group.InstanceType = ng.InstanceTypes[0]
		}
		if sc := ng.ScalingConfig; sc != nil {
			group.MinNodes = int(aws.ToInt32(sc.MinSize))
			group.MaxNodes = int(aws.ToInt32(sc.MaxSize))
			group.DesiredNodes = int(aws.ToInt32(sc.DesiredSize))
		}
		groups = append(groups, group)
	}

	return groups, nil
}

// CreateNodeGroup submits one node group creation request.
func (c *EKSClient) CreateNodeGroup(ctx context.Context, params CreateNodeGroupParams) error {
	in := &awseks.CreateNodegroupInput{
		ClusterName:   aws.String(params.ClusterName),
		NodegroupName: aws.String(params.Name),
		NodeRole:      aws.String(params.NodeRoleARN),
		Subnets:       params.SubnetIDs,
		InstanceTypes: []string{params.InstanceType},
		ScalingConfig: &ekstypes.NodegroupScalingConfig{
			MinSize:     aws.Int32(int32(params.MinNodes)),
			MaxSize:     aws.Int32(int32(params.MaxNodes)),
			DesiredSize: aws.Int32(int32(params.DesiredNodes)),
		},
		Labels: params.Labels,
		Tags:   params.Tags,
	}
	if params.VolumeSizeGB > 0 {
		in.DiskSize = aws.Int32(int32(params.VolumeSizeGB))
	}

	if _, err := c.api.CreateNodegroup(ctx, in); err != nil {
		return fmt.Errorf("CreateNodegroup(%s/%s): %w", params.ClusterName, params.Name, err)
	}
	return nil
}

// DeleteNodeGroup submits one node group deletion request.
func (c *EKSClient) DeleteNodeGroup(ctx context.Context, clusterName, name string) error {
	if _, err := c.api.DeleteNodegroup(ctx, &awseks.DeleteNodegroupInput{
		ClusterName:   aws.String(clusterName),
		NodegroupName: aws.String(name),
	}); err != nil {
		return fmt.Errorf("DeleteNodegroup(%s/%s): %w", clusterName, name, err)
	}
	return nil
}

// ListAddons returns the observed state of every registered addon.
func (c *EKSClient) ListAddons(ctx context.Context, clusterName string) ([]Addon, error) {
	var names []string
	var nextToken *string

	for {
		out, err := c.api.ListAddons(ctx, &awseks.ListAddonsInput{
			ClusterName: aws.String(clusterName),
			NextToken:   nextToken,
		})
		if err != nil {
			return nil, fmt.Errorf("ListAddons(%s): %w", clusterName, err)
		}

		names = append(names, out.Addons...)

		if out.NextToken == nil {
			break
		}
		nextToken = out.NextToken
	}

	var addons []Addon
	for _, name := range names {
		addon, err := c.DescribeAddon(ctx, clusterName, name)
		if err != nil {
			return nil, err
		}
		addons = append(addons, *addon)
	}

	return addons, nil
}

// DescribeAddon returns the observed state of one addon. Callers distinguish
// an unregistered addon with IsNotFound.
func (c *EKSClient) DescribeAddon(ctx context.Context, clusterName, name string) (*Addon, error) {
	out, err := c.api.DescribeAddon(ctx, &awseks.DescribeAddonInput{
		ClusterName: aws.String(clusterName),
		AddonName:   aws.String(name),
	})
	if err != nil {
		return nil, fmt.Errorf("DescribeAddon(%s/%s): %w", clusterName, name, err)
	}

	addon := &Addon{
		Name:    aws.ToString(out.Addon.AddonName),
		Version: aws.ToString(out.Addon.AddonVersion),
		Status:  string(out.Addon.Status),
	}
	if out.Addon.Health != nil {
		for _, issue := range out.Addon.Health.Issues {
			addon.Issues = append(addon.Issues, aws.ToString(issue.Message))
		}
	}
	return addon, nil
}

// CreateAddon registers a managed addon at the given version.
func (c *EKSClient) CreateAddon(ctx context.Context, clusterName, name, version string, tags map[string]string) error {
	in := &awseks.CreateAddonInput{
		ClusterName:      aws.String(clusterName),
		AddonName:        aws.String(name),
		ResolveConflicts: ekstypes.ResolveConflictsOverwrite,
		Tags:             tags,
	}
	if version != "" {
		in.AddonVersion = aws.String(version)
	}

	if _, err := c.api.CreateAddon(ctx, in); err != nil {
		return fmt.Errorf("CreateAddon(%s/%s): %w", clusterName, name, err)
	}
	return nil
}

// ResolveAddonVersion resolves the "latest" selector against the addon
// versions published for the cluster's Kubernetes version.
func (c *EKSClient) ResolveAddonVersion(ctx context.Context, name, kubernetesVersion string) (string, error) {
	out, err := c.api.DescribeAddonVersions(ctx, &awseks.DescribeAddonVersionsInput{
		AddonName:         aws.String(name),
		KubernetesVersion: aws.String(kubernetesVersion),
	})
	if err != nil {
		return "", fmt.Errorf("DescribeAddonVersions(%s): %w", name, err)
	}

	for _, info := range out.Addons {
		for _, v := range info.AddonVersions {
			for _, compat := range v.Compatibilities {
				if compat.DefaultVersion {
					return aws.ToString(v.AddonVersion), nil
				}
			}
		}
	}
	// No published default; fall back to the first listed version.
	for _, info := range out.Addons {
		if len(info.AddonVersions) > 0 {
			return aws.ToString(info.AddonVersions[0].AddonVersion), nil
		}
	}
	return "", fmt.Errorf("no versions published for addon %s on Kubernetes %s", name, kubernetesVersion)
}
