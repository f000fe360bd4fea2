package aws

import (
	"errors"

	ekstypes "github.com/aws/aws-sdk-go-v2/service/eks/types"
	elbtypes "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2/types"
	"github.com/aws/smithy-go"
)

// IsNotFound reports whether err indicates a resource that does not exist.
func IsNotFound(err error) bool {
	var eksNotFound *ekstypes.ResourceNotFoundException
	if errors.As(err, &eksNotFound) {
		return true
	}
	var elbNotFound *elbtypes.LoadBalancerNotFoundException
	if errors.As(err, &elbNotFound) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		// EC2 does not model its not-found errors as types; match codes.
		switch apiErr.ErrorCode() {
		case "ResourceNotFoundException", "NotFoundException",
			"InvalidGroup.NotFound", "NatGatewayNotFound":
			return true
		}
	}
	return false
}

// IsAlreadyExists reports whether err indicates a duplicate create.
func IsAlreadyExists(err error) bool {
	var inUse *ekstypes.ResourceInUseException
	if errors.As(err, &inUse) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode() == "ResourceInUseException" || apiErr.ErrorCode() == "AlreadyExistsException"
	}
	return false
}

// ErrorCode extracts the provider's structured reason code, or empty string.
func ErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}
