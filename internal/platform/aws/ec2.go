package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsec2 "github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

// EC2API is the EC2 surface the tool depends on.
type EC2API interface {
	DescribeSecurityGroups(ctx context.Context, params *awsec2.DescribeSecurityGroupsInput, optFns ...func(*awsec2.Options)) (*awsec2.DescribeSecurityGroupsOutput, error)
	DescribeNatGateways(ctx context.Context, params *awsec2.DescribeNatGatewaysInput, optFns ...func(*awsec2.Options)) (*awsec2.DescribeNatGatewaysOutput, error)
	DescribeSubnets(ctx context.Context, params *awsec2.DescribeSubnetsInput, optFns ...func(*awsec2.Options)) (*awsec2.DescribeSubnetsOutput, error)
}

// EC2Client wraps network resource inventory operations.
type EC2Client struct {
	api EC2API
}

// NewEC2Client creates a new EC2 wrapper.
func NewEC2Client(api EC2API) *EC2Client {
	return &EC2Client{api: api}
}

// SecurityGroup is one observed security group.
type SecurityGroup struct {
	ID          string
	Name        string
	Description string
	VPCID       string
	Tags        map[string]string
}

// NatGateway is one observed NAT gateway.
type NatGateway struct {
	ID    string
	Name  string
	State string
	VPCID string
	Tags  map[string]string
}

// Subnet is one observed subnet.
type Subnet struct {
	ID               string
	VPCID            string
	CIDR             string
	AvailabilityZone string
	Tags             map[string]string
}

func tagMap(tags []ec2types.Tag) map[string]string {
	m := make(map[string]string, len(tags))
	for _, tag := range tags {
		m[aws.ToString(tag.Key)] = aws.ToString(tag.Value)
	}
	return m
}

// ListSecurityGroups returns every security group in the region.
func (c *EC2Client) ListSecurityGroups(ctx context.Context) ([]SecurityGroup, error) {
	var groups []SecurityGroup
	var nextToken *string

	for {
		out, err := c.api.DescribeSecurityGroups(ctx, &awsec2.DescribeSecurityGroupsInput{
			NextToken: nextToken,
		})
		if err != nil {
			return nil, fmt.Errorf("DescribeSecurityGroups: %w", err)
		}

		for _, sg := range out.SecurityGroups {
			groups = append(groups, SecurityGroup{
				ID:          aws.ToString(sg.GroupId),
				Name:        aws.ToString(sg.GroupName),
				Description: aws.ToString(sg.Description),
				VPCID:       aws.ToString(sg.VpcId),
				Tags:        tagMap(sg.Tags),
			})
		}

		if out.NextToken == nil {
			break
		}
		nextToken = out.NextToken
	}
	return groups, nil
}

// ListNatGateways returns every NAT gateway in the region that is not already
// deleted.
func (c *EC2Client) ListNatGateways(ctx context.Context) ([]NatGateway, error) {
	var gateways []NatGateway
	var nextToken *string

	for {
		out, err := c.api.DescribeNatGateways(ctx, &awsec2.DescribeNatGatewaysInput{
			NextToken: nextToken,
		})
		if err != nil {
			return nil, fmt.Errorf("DescribeNatGateways: %w", err)
		}

		for _, gw := range out.NatGateways {
			if gw.State == ec2types.NatGatewayStateDeleted {
				continue
			}
			tags := tagMap(gw.Tags)
			gateways = append(gateways, NatGateway{
				ID:    aws.ToString(gw.NatGatewayId),
				Name:  tags["Name"],
				State: string(gw.State),
				VPCID: aws.ToString(gw.VpcId),
				Tags:  tags,
			})
		}

		if out.NextToken == nil {
			break
		}
		nextToken = out.NextToken
	}
	return gateways, nil
}

// ListSubnetsByTag returns the subnets carrying the given tag key, used to
// discover the cluster's network when the config names no subnets.
func (c *EC2Client) ListSubnetsByTag(ctx context.Context, tagKey string) ([]Subnet, error) {
	var subnets []Subnet
	var nextToken *string

	for {
		out, err := c.api.DescribeSubnets(ctx, &awsec2.DescribeSubnetsInput{
			Filters: []ec2types.Filter{
				{Name: aws.String("tag-key"), Values: []string{tagKey}},
			},
			NextToken: nextToken,
		})
		if err != nil {
			return nil, fmt.Errorf("DescribeSubnets: %w", err)
		}

		for _, sn := range out.Subnets {
			subnets = append(subnets, Subnet{
				ID:               aws.ToString(sn.SubnetId),
				VPCID:            aws.ToString(sn.VpcId),
				CIDR:             aws.ToString(sn.CidrBlock),
				AvailabilityZone: aws.ToString(sn.AvailabilityZone),
				Tags:             tagMap(sn.Tags),
			})
		}

		if out.NextToken == nil {
			break
		}
		nextToken = out.NextToken
	}
	return subnets, nil
}
