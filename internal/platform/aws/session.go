// Package aws wraps the cloud SDK behind narrow per-service interfaces so the
// rest of the tool (and its tests) never touch the SDK surface directly.
package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/eks"
	elbv2 "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// SessionOptions controls how the shared SDK config is loaded.
type SessionOptions struct {
	Profile string
	Region  string

	// Static credentials, used only when both are set. The default
	// provider chain (env, shared config, instance role) applies otherwise.
	AccessKeyID     string
	SecretAccessKey string
}

// LoadConfig loads an AWS config with optional profile, region and static
// credential overrides.
func LoadConfig(ctx context.Context, opts SessionOptions) (aws.Config, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if opts.Profile != "" {
		loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(opts.Profile))
	}
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, "")))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("loading AWS config: %w", err)
	}
	return cfg, nil
}

// ServiceClients bundles the wrapped service clients used by the tool.
type ServiceClients struct {
	EKS *EKSClient
	ELB *ELBClient
	EC2 *EC2Client
	STS *sts.Client
}

// NewServiceClients builds all service wrappers from one shared config.
func NewServiceClients(ctx context.Context, opts SessionOptions) (*ServiceClients, error) {
	cfg, err := LoadConfig(ctx, opts)
	if err != nil {
		return nil, err
	}

	return &ServiceClients{
		EKS: NewEKSClient(eks.NewFromConfig(cfg)),
		ELB: NewELBClient(elbv2.NewFromConfig(cfg)),
		EC2: NewEC2Client(ec2.NewFromConfig(cfg)),
		STS: sts.NewFromConfig(cfg),
	}, nil
}
