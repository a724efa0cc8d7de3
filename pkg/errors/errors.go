// Package errors provides custom error types for the halpsync system.
// These errors enable programmatic error checking and carry the external
// services' rejection payloads so the invoking scheduler can diagnose a
// failed run before re-triggering it.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the halpsync system
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrDirectoryExhausted indicates the full directory was paginated
	// without a name match
	ErrDirectoryExhausted = errors.New("directory exhausted")

	// ErrMalformedEmail indicates a lookup key is not a valid email address
	ErrMalformedEmail = errors.New("malformed email")

	// ErrPlaceholderMissing indicates the inbound-mailbox contact does not
	// exist in the contact store at run start
	ErrPlaceholderMissing = errors.New("placeholder contact missing")

	// ErrMergeRejected indicates the contact store refused a merge
	ErrMergeRejected = errors.New("merge rejected")

	// ErrUpdateRejected indicates the contact store refused an update
	ErrUpdateRejected = errors.New("update rejected")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrAPIKeyRequired indicates that an API key is required but not provided
	ErrAPIKeyRequired = errors.New("API key required")
)

// NotFoundError represents an error when a resource is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// DirectoryExhaustedError is returned when a name matched no directory
// user after full pagination. It is terminal for the run, not retryable.
type DirectoryExhaustedError struct {
	Name  string
	Pages int
}

// Error implements the error interface
func (e *DirectoryExhaustedError) Error() string {
	if e.Pages > 0 {
		return fmt.Sprintf("no directory user matches %q after %d pages", e.Name, e.Pages)
	}
	return fmt.Sprintf("no directory user matches %q", e.Name)
}

// Is implements errors.Is support
func (e *DirectoryExhaustedError) Is(target error) bool {
	return target == ErrDirectoryExhausted
}

// MalformedEmailError indicates an email string used as a lookup key is
// not syntactically valid. This is a caller-configuration error.
type MalformedEmailError struct {
	Email string
	Err   error
}

// Error implements the error interface
func (e *MalformedEmailError) Error() string {
	return fmt.Sprintf("malformed email address %q", e.Email)
}

// Unwrap implements errors.Unwrap
func (e *MalformedEmailError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *MalformedEmailError) Is(target error) bool {
	return target == ErrMalformedEmail
}

// PlaceholderMissingError indicates the inbound-mailbox contact was absent
// at run start, which points at an upstream integration fault.
type PlaceholderMissingError struct {
	InboundAddress string
}

// Error implements the error interface
func (e *PlaceholderMissingError) Error() string {
	return fmt.Sprintf("placeholder contact for %s does not exist; "+
		"send a reply or create a new ticket to recreate it", e.InboundAddress)
}

// Is implements errors.Is support
func (e *PlaceholderMissingError) Is(target error) bool {
	return target == ErrPlaceholderMissing
}

// MergeError represents a contact-store refusal to merge two records.
// Payload carries the service's error response verbatim.
type MergeError struct {
	PrimaryID   int64
	SecondaryID int64
	Payload     string
	Err         error
}

// Error implements the error interface
func (e *MergeError) Error() string {
	if e.Payload != "" {
		return fmt.Sprintf("merging requester %d into %d failed: %s", e.SecondaryID, e.PrimaryID, e.Payload)
	}
	return fmt.Sprintf("merging requester %d into %d failed: %v", e.SecondaryID, e.PrimaryID, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *MergeError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *MergeError) Is(target error) bool {
	return target == ErrMergeRejected
}

// UpdateError represents a contact-store or ticket-store refusal to apply
// an update. Payload carries the service's error response verbatim.
type UpdateError struct {
	Resource string
	ID       string
	Payload  string
	Err      error
}

// Error implements the error interface
func (e *UpdateError) Error() string {
	if e.Payload != "" {
		return fmt.Sprintf("updating %s %s failed: %s", e.Resource, e.ID, e.Payload)
	}
	return fmt.Sprintf("updating %s %s failed: %v", e.Resource, e.ID, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *UpdateError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *UpdateError) Is(target error) bool {
	return target == ErrUpdateRejected
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// APIError represents an error from an external service API
type APIError struct {
	Service    string
	StatusCode int
	Message    string
	Endpoint   string
	Err        error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("API error from %s (status %d): %s", e.Service, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error from %s: %s", e.Service, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *APIError) Unwrap() error {
	return e.Err
}

// NewAPIError creates a new APIError
func NewAPIError(service string, statusCode int, message string) *APIError {
	return &APIError{
		Service:    service,
		StatusCode: statusCode,
		Message:    message,
	}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDirectoryExhausted checks if an error is a directory-exhausted error
func IsDirectoryExhausted(err error) bool {
	return errors.Is(err, ErrDirectoryExhausted)
}

// IsMalformedEmail checks if an error is a malformed-email error
func IsMalformedEmail(err error) bool {
	return errors.Is(err, ErrMalformedEmail)
}

// IsPlaceholderMissing checks if an error is a missing-placeholder error
func IsPlaceholderMissing(err error) bool {
	return errors.Is(err, ErrPlaceholderMissing)
}

// IsMergeRejected checks if an error is a rejected merge
func IsMergeRejected(err error) bool {
	return errors.Is(err, ErrMergeRejected)
}

// IsUpdateRejected checks if an error is a rejected update
func IsUpdateRejected(err error) bool {
	return errors.Is(err, ErrUpdateRejected)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// Helper wrapping functions for common patterns

// WrapAPI wraps an error as an APIError
func WrapAPI(service string, statusCode int, err error) error {
	if err == nil {
		return nil
	}
	return &APIError{
		Service:    service,
		StatusCode: statusCode,
		Message:    err.Error(),
		Err:        err,
	}
}

// WrapValidation wraps an error as a ValidationError
func WrapValidation(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}
