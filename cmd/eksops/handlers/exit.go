package handlers

import (
	"errors"

	"github.com/imamik/eksops/internal/addons"
	"github.com/imamik/eksops/internal/orchestrator"
)

// Exit codes of the CLI. Validation and precondition failures (bad spec,
// missing tools or credentials, unconfirmed delete, idempotency signals) are
// distinguished from external-call failures and timeouts so automation can
// branch on the class of failure.
const (
	ExitOK         = 0
	ExitValidation = 1
	ExitExternal   = 2
	ExitTimeout    = 3
)

// ExitCode maps an error returned by a handler to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var timeout *orchestrator.TimeoutError
	if errors.As(err, &timeout) {
		return ExitTimeout
	}

	var external *orchestrator.ExternalError
	if errors.As(err, &external) {
		return ExitExternal
	}
	var partial *addons.PartialFailureError
	if errors.As(err, &partial) {
		return ExitExternal
	}

	// ValidationError, CredentialsError, ConfirmationError, AlreadyExists,
	// NotFound and anything unclassified: local precondition failure.
	return ExitValidation
}
