package aws

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awseks "github.com/aws/aws-sdk-go-v2/service/eks"
	ekstypes "github.com/aws/aws-sdk-go-v2/service/eks/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEKSAPI struct {
	EKSAPI

	describeClusterOut *awseks.DescribeClusterOutput
	describeClusterErr error

	createClusterIn *awseks.CreateClusterInput

	listNodegroupPages []*awseks.ListNodegroupsOutput
	listNodegroupCalls int
	nodegroups         map[string]*awseks.DescribeNodegroupOutput

	listAddonsOut    *awseks.ListAddonsOutput
	describeAddonOut *awseks.DescribeAddonOutput

	addonVersionsOut *awseks.DescribeAddonVersionsOutput
}

func (f *fakeEKSAPI) DescribeCluster(_ context.Context, _ *awseks.DescribeClusterInput, _ ...func(*awseks.Options)) (*awseks.DescribeClusterOutput, error) {
	return f.describeClusterOut, f.describeClusterErr
}

func (f *fakeEKSAPI) CreateCluster(_ context.Context, in *awseks.CreateClusterInput, _ ...func(*awseks.Options)) (*awseks.CreateClusterOutput, error) {
	f.createClusterIn = in
	return &awseks.CreateClusterOutput{}, nil
}

func (f *fakeEKSAPI) ListNodegroups(_ context.Context, _ *awseks.ListNodegroupsInput, _ ...func(*awseks.Options)) (*awseks.ListNodegroupsOutput, error) {
	out := f.listNodegroupPages[f.listNodegroupCalls]
	f.listNodegroupCalls++
	return out, nil
}

func (f *fakeEKSAPI) DescribeNodegroup(_ context.Context, in *awseks.DescribeNodegroupInput, _ ...func(*awseks.Options)) (*awseks.DescribeNodegroupOutput, error) {
	return f.nodegroups[aws.ToString(in.NodegroupName)], nil
}

func (f *fakeEKSAPI) ListAddons(_ context.Context, _ *awseks.ListAddonsInput, _ ...func(*awseks.Options)) (*awseks.ListAddonsOutput, error) {
	return f.listAddonsOut, nil
}

func (f *fakeEKSAPI) DescribeAddon(_ context.Context, _ *awseks.DescribeAddonInput, _ ...func(*awseks.Options)) (*awseks.DescribeAddonOutput, error) {
	return f.describeAddonOut, nil
}

func (f *fakeEKSAPI) DescribeAddonVersions(_ context.Context, _ *awseks.DescribeAddonVersionsInput, _ ...func(*awseks.Options)) (*awseks.DescribeAddonVersionsOutput, error) {
	return f.addonVersionsOut, nil
}

func TestDescribeCluster(t *testing.T) {
	api := &fakeEKSAPI{
		describeClusterOut: &awseks.DescribeClusterOutput{
			Cluster: &ekstypes.Cluster{
				Name:     aws.String("demo"),
				Status:   ekstypes.ClusterStatusActive,
				Version:  aws.String("1.30"),
				Endpoint: aws.String("https://example.eks.amazonaws.com"),
				Identity: &ekstypes.Identity{
					Oidc: &ekstypes.OIDC{Issuer: aws.String("https://oidc.eks.us-east-1.amazonaws.com/id/ABC")},
				},
				ResourcesVpcConfig: &ekstypes.VpcConfigResponse{VpcId: aws.String("vpc-123")},
			},
		},
	}
	client := NewEKSClient(api)

	cluster, err := client.DescribeCluster(context.Background(), "demo")
	require.NoError(t, err)
	assert.Equal(t, "demo", cluster.Name)
	assert.Equal(t, "ACTIVE", cluster.Status)
	assert.Equal(t, "vpc-123", cluster.VPCID)
	assert.Contains(t, cluster.OIDCIssuer, "oidc.eks")
}

func TestDescribeClusterNotFound(t *testing.T) {
	api := &fakeEKSAPI{
		describeClusterErr: &ekstypes.ResourceNotFoundException{Message: aws.String("no cluster")},
	}
	client := NewEKSClient(api)

	_, err := client.DescribeCluster(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestCreateClusterEnablesLogging(t *testing.T) {
	api := &fakeEKSAPI{}
	client := NewEKSClient(api)

	err := client.CreateCluster(context.Background(), CreateClusterParams{
		Name:          "demo",
		Version:       "1.30",
		RoleARN:       "arn:aws:iam::123456789012:role/demo-cluster-role",
		SubnetIDs:     []string{"subnet-a", "subnet-b"},
		EnableLogging: true,
	})
	require.NoError(t, err)

	require.NotNil(t, api.createClusterIn)
	assert.Equal(t, "demo", aws.ToString(api.createClusterIn.Name))
	require.NotNil(t, api.createClusterIn.Logging)
	require.Len(t, api.createClusterIn.Logging.ClusterLogging, 1)
	assert.True(t, *api.createClusterIn.Logging.ClusterLogging[0].Enabled)
}

func TestListNodeGroupsPaginates(t *testing.T) {
	api := &fakeEKSAPI{
		listNodegroupPages: []*awseks.ListNodegroupsOutput{
			{Nodegroups: []string{"demo-a"}, NextToken: aws.String("next")},
			{Nodegroups: []string{"demo-b"}},
		},
		nodegroups: map[string]*awseks.DescribeNodegroupOutput{
			"demo-a": {Nodegroup: &ekstypes.Nodegroup{
				NodegroupName: aws.String("demo-a"),
				Status:        ekstypes.NodegroupStatusActive,
				InstanceTypes: []string{"t3.medium"},
				ScalingConfig: &ekstypes.NodegroupScalingConfig{
					MinSize: aws.Int32(1), MaxSize: aws.Int32(3), DesiredSize: aws.Int32(2),
				},
			}},
			"demo-b": {Nodegroup: &ekstypes.Nodegroup{
				NodegroupName: aws.String("demo-b"),
				Status:        ekstypes.NodegroupStatusCreating,
			}},
		},
	}
	client := NewEKSClient(api)

	groups, err := client.ListNodeGroups(context.Background(), "demo")
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, 2, groups[0].DesiredNodes)
	assert.Equal(t, "CREATING", groups[1].Status)
}

func TestResolveAddonVersionPrefersDefault(t *testing.T) {
	api := &fakeEKSAPI{
		addonVersionsOut: &awseks.DescribeAddonVersionsOutput{
			Addons: []ekstypes.AddonInfo{{
				AddonName: aws.String("vpc-cni"),
				AddonVersions: []ekstypes.AddonVersionInfo{
					{AddonVersion: aws.String("v1.18.0-eksbuild.1")},
					{
						AddonVersion:    aws.String("v1.17.1-eksbuild.1"),
						Compatibilities: []ekstypes.Compatibility{{DefaultVersion: true}},
					},
				},
			}},
		},
	}
	client := NewEKSClient(api)

	version, err := client.ResolveAddonVersion(context.Background(), "vpc-cni", "1.30")
	require.NoError(t, err)
	assert.Equal(t, "v1.17.1-eksbuild.1", version)
}
