package aws

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsec2 "github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	elbv2 "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	elbtypes "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeELBAPI struct {
	lbs  *elbv2.DescribeLoadBalancersOutput
	tags *elbv2.DescribeTagsOutput
}

func (f *fakeELBAPI) DescribeLoadBalancers(_ context.Context, _ *elbv2.DescribeLoadBalancersInput, _ ...func(*elbv2.Options)) (*elbv2.DescribeLoadBalancersOutput, error) {
	return f.lbs, nil
}

func (f *fakeELBAPI) DescribeTags(_ context.Context, _ *elbv2.DescribeTagsInput, _ ...func(*elbv2.Options)) (*elbv2.DescribeTagsOutput, error) {
	return f.tags, nil
}

func TestListLoadBalancersWithTags(t *testing.T) {
	api := &fakeELBAPI{
		lbs: &elbv2.DescribeLoadBalancersOutput{
			LoadBalancers: []elbtypes.LoadBalancer{{
				LoadBalancerName: aws.String("demo-alb"),
				LoadBalancerArn:  aws.String("arn:lb/demo-alb"),
				Type:             elbtypes.LoadBalancerTypeEnumApplication,
			}},
		},
		tags: &elbv2.DescribeTagsOutput{
			TagDescriptions: []elbtypes.TagDescription{{
				ResourceArn: aws.String("arn:lb/demo-alb"),
				Tags: []elbtypes.Tag{{
					Key:   aws.String("kubernetes.io/cluster/demo"),
					Value: aws.String("owned"),
				}},
			}},
		},
	}
	client := NewELBClient(api)

	lbs, err := client.ListLoadBalancers(context.Background())
	require.NoError(t, err)
	require.Len(t, lbs, 1)
	assert.Equal(t, "demo-alb", lbs[0].Name)
	assert.Equal(t, "owned", lbs[0].Tags["kubernetes.io/cluster/demo"])
}

type fakeEC2API struct {
	groups   *awsec2.DescribeSecurityGroupsOutput
	gateways *awsec2.DescribeNatGatewaysOutput
	subnets  *awsec2.DescribeSubnetsOutput
}

func (f *fakeEC2API) DescribeSecurityGroups(_ context.Context, _ *awsec2.DescribeSecurityGroupsInput, _ ...func(*awsec2.Options)) (*awsec2.DescribeSecurityGroupsOutput, error) {
	return f.groups, nil
}

func (f *fakeEC2API) DescribeNatGateways(_ context.Context, _ *awsec2.DescribeNatGatewaysInput, _ ...func(*awsec2.Options)) (*awsec2.DescribeNatGatewaysOutput, error) {
	return f.gateways, nil
}

func (f *fakeEC2API) DescribeSubnets(_ context.Context, _ *awsec2.DescribeSubnetsInput, _ ...func(*awsec2.Options)) (*awsec2.DescribeSubnetsOutput, error) {
	return f.subnets, nil
}

func TestListNatGatewaysSkipsDeleted(t *testing.T) {
	api := &fakeEC2API{
		gateways: &awsec2.DescribeNatGatewaysOutput{
			NatGateways: []ec2types.NatGateway{
				{
					NatGatewayId: aws.String("nat-1"),
					State:        ec2types.NatGatewayStateAvailable,
					Tags:         []ec2types.Tag{{Key: aws.String("Name"), Value: aws.String("demo-nat")}},
				},
				{
					NatGatewayId: aws.String("nat-2"),
					State:        ec2types.NatGatewayStateDeleted,
				},
			},
		},
	}
	client := NewEC2Client(api)

	gws, err := client.ListNatGateways(context.Background())
	require.NoError(t, err)
	require.Len(t, gws, 1)
	assert.Equal(t, "demo-nat", gws[0].Name)
}

func TestListSubnetsByTag(t *testing.T) {
	api := &fakeEC2API{
		subnets: &awsec2.DescribeSubnetsOutput{
			Subnets: []ec2types.Subnet{{
				SubnetId:  aws.String("subnet-a"),
				VpcId:     aws.String("vpc-1"),
				CidrBlock: aws.String("10.0.1.0/24"),
			}},
		},
	}
	client := NewEC2Client(api)

	subnets, err := client.ListSubnetsByTag(context.Background(), "kubernetes.io/cluster/demo")
	require.NoError(t, err)
	require.Len(t, subnets, 1)
	assert.Equal(t, "subnet-a", subnets[0].ID)
}
