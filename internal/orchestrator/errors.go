package orchestrator

import (
	"fmt"
	"time"
)

// AlreadyExistsError signals that a cluster with the same name and region
// already exists. It is an idempotency signal, distinguishable from generic
// failure: a retried invocation must not create a second cluster.
type AlreadyExistsError struct {
	Name   string
	Region string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("cluster %q already exists in %s", e.Name, e.Region)
}

// NotFoundError signals that the named cluster does not exist.
type NotFoundError struct {
	Name   string
	Region string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("cluster %q not found in %s (nothing to do)", e.Name, e.Region)
}

// ConfirmationError signals that a destructive operation was requested
// without the required confirmation token. No destructive action was taken.
type ConfirmationError struct {
	Got string
}

func (e *ConfirmationError) Error() string {
	return fmt.Sprintf("deletion not confirmed: pass --confirm %s (got %q); no action taken",
		ConfirmationToken, e.Got)
}

// TimeoutError signals that the external system did not converge in time.
// It is surfaced, never silently retried: retrying a multi-minute cloud
// operation risks duplicate billable resources.
type TimeoutError struct {
	Op      string
	Name    string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: cluster %q did not converge within %s", e.Op, e.Name, e.Timeout)
}

// ExternalError wraps a failed provisioning or control call. The provider
// message passes through verbatim for operator diagnosis alongside the
// structured reason code.
type ExternalError struct {
	Op   string
	Code string
	Err  error
}

func (e *ExternalError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s failed (%s): %v", e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *ExternalError) Unwrap() error {
	return e.Err
}
