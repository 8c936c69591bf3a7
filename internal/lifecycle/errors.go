package lifecycle

import (
	"errors"
	"fmt"
)

// ErrAlreadyAttached is returned when Attach is called more than once.
var ErrAlreadyAttached = errors.New("controller already attached")

// ErrNotArmed is returned by Wait when Attach has not armed the bootstrap.
var ErrNotArmed = errors.New("bootstrap not armed")

// ErrNoPatcher is returned when Attach has no Patcher to install hooks with.
var ErrNoPatcher = errors.New("no patcher configured")

// CompatError reports that a host does not match its profile.
type CompatError struct {
	// Code identifies what did not match.
	Code CompatErrorCode

	// Profile is the profile being attached.
	Profile string

	// Target is the symbolic target involved, if any.
	Target string

	// Err is the underlying cause.
	Err error
}

// CompatErrorCode categorizes compatibility errors.
type CompatErrorCode string

const (
	// ErrCodeBadProfile indicates the profile itself is unusable.
	ErrCodeBadProfile CompatErrorCode = "BAD_PROFILE"

	// ErrCodeUnresolved indicates a target could not be located in the host.
	ErrCodeUnresolved CompatErrorCode = "UNRESOLVED_TARGET"

	// ErrCodeArmFailed indicates the bootstrap detour could not be attached.
	ErrCodeArmFailed CompatErrorCode = "ARM_FAILED"
)

// Error implements the error interface.
func (e *CompatError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("%s: profile %s: %s: %v", e.Code, e.Profile, e.Target, e.Err)
	}
	return fmt.Sprintf("%s: profile %s: %v", e.Code, e.Profile, e.Err)
}

// Unwrap returns the underlying cause.
func (e *CompatError) Unwrap() error { return e.Err }

// IsCompatError returns true if err is or wraps a *CompatError.
func IsCompatError(err error) bool {
	var ce *CompatError
	return errors.As(err, &ce)
}
