package services

import (
	"errors"
	"fmt"
)

// ErrorType represents the type/category of error
type ErrorType string

const (
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeValidation  ErrorType = "validation"
	ErrorTypeIndex       ErrorType = "index_unavailable"
	ErrorTypeGeneration  ErrorType = "generation_failed"
	ErrorTypePersistence ErrorType = "persistence_failed"
	ErrorTypeMalformed   ErrorType = "malformed_output"
	ErrorTypeInternal    ErrorType = "internal"
)

// DomainError represents a structured error with additional context
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Details map[string]interface{}
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// WithDetail adds a detail to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewDomainError creates a new domain error
func NewDomainError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
		Details: make(map[string]interface{}),
	}
}

// Domain error variables

var (
	// Not Found Errors
	ErrSessionNotFound      = NewDomainError(ErrorTypeNotFound, "chat session not found", nil)
	ErrDocumentNotFound     = NewDomainError(ErrorTypeNotFound, "document not found", nil)
	ErrFAQItemNotFound      = NewDomainError(ErrorTypeNotFound, "faq item not found", nil)
	ErrQuizQuestionNotFound = NewDomainError(ErrorTypeNotFound, "quiz question not found", nil)

	// Validation Errors
	ErrInvalidInput  = NewDomainError(ErrorTypeValidation, "invalid input", nil)
	ErrEmptyQuestion = NewDomainError(ErrorTypeValidation, "question cannot be empty", nil)
	ErrEmptyFilename = NewDomainError(ErrorTypeValidation, "filename cannot be empty", nil)

	// Index Errors: the embedding provider could not be reached during a
	// rebuild. Recovered locally by keeping the previous index in effect.
	ErrIndexUnavailable = NewDomainError(ErrorTypeIndex, "embedding index unavailable", nil)

	// Generation Errors: the completion provider failed or timed out.
	// Surfaced to the caller; retries are a caller responsibility.
	ErrGenerationFailed  = NewDomainError(ErrorTypeGeneration, "answer generation failed", nil)
	ErrGenerationTimeout = NewDomainError(ErrorTypeGeneration, "answer generation timed out", nil)

	// Persistence Errors: always recovered locally, never shown to end users.
	ErrPersistenceFailed = NewDomainError(ErrorTypePersistence, "record persistence failed", nil)

	// Malformed output: the provider returned text that failed structural
	// parsing even after the bounded repair attempt.
	ErrMalformedOutput = NewDomainError(ErrorTypeMalformed, "provider returned malformed output", nil)

	// Internal Errors
	ErrInternal      = NewDomainError(ErrorTypeInternal, "internal server error", nil)
	ErrDatabaseError = NewDomainError(ErrorTypeInternal, "database error", nil)
)

// Error type checking helper functions

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeNotFound
	}
	return false
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeValidation
	}
	return false
}

// IsIndexError checks if an error is an index-unavailable error
func IsIndexError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeIndex
	}
	return false
}

// IsGenerationError checks if an error is a generation failure
func IsGenerationError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeGeneration
	}
	return false
}

// IsPersistenceError checks if an error is a persistence failure
func IsPersistenceError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypePersistence
	}
	return false
}

// IsMalformedError checks if an error is a malformed-output error
func IsMalformedError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeMalformed
	}
	return false
}

// GetErrorType returns the ErrorType of a domain error, or empty string if not a domain error
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ""
}

// GetErrorDetails returns the details map of a domain error, or nil if not a domain error
func GetErrorDetails(err error) map[string]interface{} {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Details
	}
	return nil
}

// WrapError wraps an error with additional context
func WrapError(errType ErrorType, message string, err error) error {
	return NewDomainError(errType, message, err)
}

// WrapInternal wraps an error as an internal error
func WrapInternal(message string, err error) error {
	return NewDomainError(ErrorTypeInternal, message, err)
}

// WrapGeneration wraps an error as a generation failure
func WrapGeneration(message string, err error) error {
	return NewDomainError(ErrorTypeGeneration, message, err)
}
