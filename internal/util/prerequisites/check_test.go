package prerequisites

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckFindsCommonTool(t *testing.T) {
	// sh exists on every platform the tool supports.
	report := Check([]Tool{{Name: "sh", Required: true}})

	require.Len(t, report.Results, 1)
	assert.True(t, report.Results[0].Found)
	assert.NotEmpty(t, report.Results[0].Path)
	assert.False(t, report.HasErrors())
	assert.NoError(t, report.Error())
}

func TestCheckReportsMissingRequiredTool(t *testing.T) {
	report := Check([]Tool{{
		Name:       "definitely-not-a-real-binary-xyz",
		Required:   true,
		InstallURL: "https://example.com/install",
	}})

	assert.True(t, report.HasErrors())
	err := report.Error()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "definitely-not-a-real-binary-xyz")
	assert.Contains(t, err.Error(), "https://example.com/install")
}

func TestCheckMissingOptionalToolIsNotAnError(t *testing.T) {
	report := Check([]Tool{{Name: "definitely-not-a-real-binary-xyz", Required: false}})

	assert.Len(t, report.Missing, 1)
	assert.False(t, report.HasErrors())
	assert.NoError(t, report.Error())
}

type fakeIdentityAPI struct {
	out *sts.GetCallerIdentityOutput
	err error
}

func (f *fakeIdentityAPI) GetCallerIdentity(_ context.Context, _ *sts.GetCallerIdentityInput, _ ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	return f.out, f.err
}

func TestCheckCredentials(t *testing.T) {
	api := &fakeIdentityAPI{out: &sts.GetCallerIdentityOutput{
		Account: aws.String("123456789012"),
		Arn:     aws.String("arn:aws:iam::123456789012:user/ops"),
		UserId:  aws.String("AIDAEXAMPLE"),
	}}

	id, err := CheckCredentials(context.Background(), api)
	require.NoError(t, err)
	assert.Equal(t, "123456789012", id.AccountID)
	assert.Equal(t, "arn:aws:iam::123456789012:user/ops", id.ARN)
}

func TestCheckCredentialsFailure(t *testing.T) {
	api := &fakeIdentityAPI{err: errors.New("ExpiredToken")}

	_, err := CheckCredentials(context.Background(), api)
	var credErr *CredentialsError
	require.ErrorAs(t, err, &credErr)
	assert.Contains(t, credErr.Error(), "ExpiredToken")
	assert.Contains(t, credErr.Error(), "AWS_PROFILE")
}
