package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// Listing state errors
	ErrInvalidStatus  = errors.New("invalid listing status")
	ErrNoAgency       = errors.New("user is not attached to an agency")
	ErrUnknownTier    = errors.New("unknown subscription tier")
	ErrAlreadyExpired = errors.New("featured period must end in the future")
)

// ConfigError reports a missing or malformed piece of process configuration.
// It is fatal at boot and never recovered at request time.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return "config: " + e.Message
	}
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// StoreError wraps an infrastructure failure from the listings store.
// Callers surface it as a 5xx without exposing Err to clients.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError wraps err unless it is nil or already a StoreError.
func NewStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

// QuotaDeniedError carries a Deny decision through layers that only speak error.
type QuotaDeniedError struct {
	Decision Decision
}

func (e *QuotaDeniedError) Error() string {
	return e.Decision.Message()
}
