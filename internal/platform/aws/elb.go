package aws

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	elbv2 "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
)

// ELBAPI is the ELBv2 surface the tool depends on.
type ELBAPI interface {
	DescribeLoadBalancers(ctx context.Context, params *elbv2.DescribeLoadBalancersInput, optFns ...func(*elbv2.Options)) (*elbv2.DescribeLoadBalancersOutput, error)
	DescribeTags(ctx context.Context, params *elbv2.DescribeTagsInput, optFns ...func(*elbv2.Options)) (*elbv2.DescribeTagsOutput, error)
}

// ELBClient wraps load balancer inventory operations.
type ELBClient struct {
	api ELBAPI
}

// NewELBClient creates a new ELBv2 wrapper.
func NewELBClient(api ELBAPI) *ELBClient {
	return &ELBClient{api: api}
}

// LoadBalancer is one observed load balancer with its tags.
type LoadBalancer struct {
	Name      string
	ARN       string
	Type      string
	Scheme    string
	DNSName   string
	VPCID     string
	CreatedAt time.Time
	Tags      map[string]string
}

// ListLoadBalancers returns every load balancer in the region, tags included.
func (c *ELBClient) ListLoadBalancers(ctx context.Context) ([]LoadBalancer, error) {
	var lbs []LoadBalancer
	var marker *string

	for {
		out, err := c.api.DescribeLoadBalancers(ctx, &elbv2.DescribeLoadBalancersInput{
			Marker: marker,
		})
		if err != nil {
			return nil, fmt.Errorf("DescribeLoadBalancers: %w", err)
		}

		for _, lb := range out.LoadBalancers {
			var createdAt time.Time
			if lb.CreatedTime != nil {
				createdAt = *lb.CreatedTime
			}
			lbs = append(lbs, LoadBalancer{
				Name:      aws.ToString(lb.LoadBalancerName),
				ARN:       aws.ToString(lb.LoadBalancerArn),
				Type:      string(lb.Type),
				Scheme:    string(lb.Scheme),
				DNSName:   aws.ToString(lb.DNSName),
				VPCID:     aws.ToString(lb.VpcId),
				CreatedAt: createdAt,
			})
		}

		if out.NextMarker == nil {
			break
		}
		marker = out.NextMarker
	}

	if err := c.attachTags(ctx, lbs); err != nil {
		return nil, err
	}
	return lbs, nil
}

// attachTags fetches tags for the listed load balancers. DescribeTags caps
// resource ARNs at 20 per call.
func (c *ELBClient) attachTags(ctx context.Context, lbs []LoadBalancer) error {
	const batchSize = 20

	byARN := make(map[string]int, len(lbs))
	for i, lb := range lbs {
		byARN[lb.ARN] = i
	}

	for start := 0; start < len(lbs); start += batchSize {
		end := start + batchSize
		if end > len(lbs) {
			end = len(lbs)
		}
		arns := make([]string, 0, end-start)
		for _, lb := range lbs[start:end] {
			arns = append(arns, lb.ARN)
		}

		out, err := c.api.DescribeTags(ctx, &elbv2.DescribeTagsInput{
			ResourceArns: arns,
		})
		if err != nil {
			return fmt.Errorf("DescribeTags: %w", err)
		}

		for _, desc := range out.TagDescriptions {
			idx, ok := byARN[aws.ToString(desc.ResourceArn)]
			if !ok {
				continue
			}
			tags := make(map[string]string, len(desc.Tags))
			for _, tag := range desc.Tags {
				tags[aws.ToString(tag.Key)] = aws.ToString(tag.Value)
			}
			lbs[idx].Tags = tags
		}
	}
	return nil
}
