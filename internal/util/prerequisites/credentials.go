package prerequisites

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// IdentityAPI is the STS surface needed for the credentials probe.
type IdentityAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// Identity describes the verified cloud caller.
type Identity struct {
	AccountID string
	ARN       string
	UserID    string
}

// CredentialsError indicates that cloud credentials are missing or unusable.
// It carries remediation text so the operator knows what to fix.
type CredentialsError struct {
	Err error
}

func (e *CredentialsError) Error() string {
	return fmt.Sprintf("cloud credentials check failed: %v (configure credentials via AWS_PROFILE, "+
		"AWS_ACCESS_KEY_ID/AWS_SECRET_ACCESS_KEY, or an attached instance role)", e.Err)
}

func (e *CredentialsError) Unwrap() error {
	return e.Err
}

// CheckCredentials performs one lightweight identity-verification call
// against the cloud provider. It must pass before any mutating step runs.
func CheckCredentials(ctx context.Context, api IdentityAPI) (*Identity, error) {
	out, err := api.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return nil, &CredentialsError{Err: err}
	}
	return &Identity{
		AccountID: aws.ToString(out.Account),
		ARN:       aws.ToString(out.Arn),
		UserID:    aws.ToString(out.UserId),
	}, nil
}
