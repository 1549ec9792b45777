package migration

import (
	"errors"
	"fmt"
	"time"
)

// Migration error codes
const (
	ErrCodeMigrateValidation    = "ERR_MIGRATE_VALIDATION"
	ErrCodeMigrateDuplicate     = "ERR_MIGRATE_DUPLICATE"
	ErrCodeMigrateRateLimit     = "ERR_MIGRATE_RATE_LIMIT"
	ErrCodeMigrateAPI           = "ERR_MIGRATE_API"
	ErrCodeMigrateConnection    = "ERR_MIGRATE_CONNECTION"
	ErrCodeMigrateConfiguration = "ERR_MIGRATE_CONFIGURATION"
)

// Common migration errors
var (
	// ErrRetriesExhausted marks an error that survived the full retry budget
	ErrRetriesExhausted = errors.New("migration: retries exhausted")

	// ErrSourceUnreachable is returned when the source API cannot be reached at all
	ErrSourceUnreachable = errors.New("migration: source API unreachable")

	// ErrDestinationUnreachable is returned when the destination API cannot be reached at all
	ErrDestinationUnreachable = errors.New("migration: destination API unreachable")

	// ErrMappingRequired is returned when a migrator needs a mapping a prior
	// migrator did not produce (e.g. products before categories)
	ErrMappingRequired = errors.New("migration: required id mapping is missing")
)

// ValidationError indicates a bad or missing required field on a source
// entity. Never retried; the item is excluded from the run.
type ValidationError struct {
	Entity  string
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: field '%s': %s", e.Entity, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Entity, e.Message)
}

// Code returns the error code for this error type
func (e *ValidationError) Code() string { return ErrCodeMigrateValidation }

// NewValidationError creates a ValidationError for an entity field
func NewValidationError(entity, field, message string) *ValidationError {
	return &ValidationError{Entity: entity, Field: field, Message: message}
}

// DuplicateError indicates the entity already exists on the destination.
// This is an idempotency short-circuit, not a failure; the item is counted
// as skipped.
type DuplicateError struct {
	Entity string
	Key    string
	// DestinationID is the id of the pre-existing destination entity, when known
	DestinationID int64
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s '%s' already exists on destination", e.Entity, e.Key)
}

// Code returns the error code for this error type
func (e *DuplicateError) Code() string { return ErrCodeMigrateDuplicate }

// RateLimitError indicates the destination rejected the call for quota
// reasons. Always retried; RetryAfter carries the reset hint when the
// destination provided one.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
	}
	return "rate limited"
}

// Code returns the error code for this error type
func (e *RateLimitError) Code() string { return ErrCodeMigrateRateLimit }

// APIError indicates an HTTP-level failure from either platform API.
// Retriable only when the status is absent, 429, or 5xx.
type APIError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.Path, e.Status, e.Body)
	}
	return fmt.Sprintf("%s %s: HTTP %d", e.Method, e.Path, e.Status)
}

// Code returns the error code for this error type
func (e *APIError) Code() string { return ErrCodeMigrateAPI }

// Retriable reports whether this HTTP failure is worth retrying
func (e *APIError) Retriable() bool {
	return e.Status == 0 || e.Status == 429 || e.Status >= 500
}

// ConnectionError indicates a network-level failure before any HTTP status
// was produced. Always retriable.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection failed during %s: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// Code returns the error code for this error type
func (e *ConnectionError) Code() string { return ErrCodeMigrateConnection }

// ConfigurationError indicates a missing prerequisite (credentials, required
// mapping). Fatal to the whole run; nothing is attempted.
type ConfigurationError struct {
	Message string
	Err     error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("configuration: %s", e.Message)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Code returns the error code for this error type
func (e *ConfigurationError) Code() string { return ErrCodeMigrateConfiguration }

// NewConfigurationError creates a ConfigurationError
func NewConfigurationError(message string, err error) *ConfigurationError {
	return &ConfigurationError{Message: message, Err: err}
}

// Retriable classifies an error for the gateway's retry policy
func Retriable(err error) bool {
	if err == nil {
		return false
	}

	var rateErr *RateLimitError
	if errors.As(err, &rateErr) {
		return true
	}

	var connErr *ConnectionError
	if errors.As(err, &connErr) {
		return true
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Retriable()
	}

	return false
}

// IsDuplicate reports whether err is an idempotency short-circuit
func IsDuplicate(err error) bool {
	var dupErr *DuplicateError
	return errors.As(err, &dupErr)
}

// IsFatal reports whether err must abort the entire run
func IsFatal(err error) bool {
	var cfgErr *ConfigurationError
	if errors.As(err, &cfgErr) {
		return true
	}
	return errors.Is(err, ErrSourceUnreachable) || errors.Is(err, ErrDestinationUnreachable)
}

// ErrorCode returns the taxonomy code for err, or empty when untyped
func ErrorCode(err error) string {
	type coded interface{ Code() string }
	var c coded
	if errors.As(err, &c) {
		return c.Code()
	}
	return ""
}
