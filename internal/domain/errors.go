package domain

import (
	"fmt"
)

// StoreError means the document store was unreachable or rejected a write.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// ConnectionError means the ledger node could not be reached or returned no
// usable signing account.
type ConnectionError struct {
	Endpoint string
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("ledger connection to %s: %v", e.Endpoint, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// AnchorError means an anchoring transaction reverted, ran out of gas, or the
// node failed mid-flight. No partial receipt exists when this is returned.
type AnchorError struct {
	FIRID string
	Err   error
}

func (e *AnchorError) Error() string {
	return fmt.Sprintf("anchor %s: %v", e.FIRID, e.Err)
}

func (e *AnchorError) Unwrap() error { return e.Err }

// ConfigError means the contract address, ABI or signing key is missing or
// malformed. Fatal at startup.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("config %s: invalid", e.Field)
	}
	return fmt.Sprintf("config %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// ErrInvalidCredentials is the only authentication failure ever surfaced, so
// callers cannot tell which part of a credential pair was wrong.
var ErrInvalidCredentials = &AuthError{}

// AuthError covers bad credentials and OTP mismatches alike.
type AuthError struct{}

func (e *AuthError) Error() string { return "invalid credentials" }

// Is makes every AuthError match ErrInvalidCredentials.
func (e *AuthError) Is(target error) bool {
	_, ok := target.(*AuthError)
	return ok
}

// ErrDuplicateRecord rejects re-registering an id that already holds a
// receipt. The ledger itself stays append-only; this guard is service-level.
var ErrDuplicateRecord = fmt.Errorf("record already anchored")

// RegistrationError wraps the step that broke a registration, so callers can
// distinguish "record never persisted" from "record persisted but not
// anchored" through errors.As on the cause.
type RegistrationError struct {
	Cause error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("registration failed: %v", e.Cause)
}

func (e *RegistrationError) Unwrap() error { return e.Cause }
