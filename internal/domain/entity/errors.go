package entity

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain layer operations.
var (
	// ErrNotFound indicates that a requested entity was not found
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrValidationFailed indicates that validation checks have failed
	ErrValidationFailed = errors.New("validation failed")

	// ErrDuplicateURL indicates a resource with the same URL already exists. Callers adding
	// resources during ingestion treat this as benign and skip the candidate.
	ErrDuplicateURL = errors.New("resource with this url already exists")

	// ErrTooLarge indicates fetched content exceeded the absolute size ceiling.
	ErrTooLarge = errors.New("content exceeds maximum allowed size")

	// ErrTimeout indicates an operation did not complete within its deadline.
	ErrTimeout = errors.New("operation timed out")

	// ErrAuth indicates an external API rejected credentials. Unlike other per-item ingestion
	// errors this is treated as job-fatal: retrying other items will not help.
	ErrAuth = errors.New("external api authentication failed")
)

// ValidationError represents a validation error with detailed field information.
// It implements the error interface and provides context about which field failed validation.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns a formatted error message for the validation error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}
