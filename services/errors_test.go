package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDomainError(t *testing.T) {
	baseErr := errors.New("base error")
	domainErr := NewDomainError(ErrorTypeNotFound, "resource not found", baseErr)

	assert.Equal(t, ErrorTypeNotFound, domainErr.Type)
	assert.Equal(t, "resource not found", domainErr.Message)
	assert.Equal(t, baseErr, domainErr.Err)
	assert.NotNil(t, domainErr.Details)
}

func TestDomainError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *DomainError
		wantMsg string
	}{
		{
			name: "error with wrapped error",
			err: &DomainError{
				Type:    ErrorTypeNotFound,
				Message: "session not found",
				Err:     errors.New("db error"),
			},
			wantMsg: "not_found: session not found (db error)",
		},
		{
			name: "error without wrapped error",
			err: &DomainError{
				Type:    ErrorTypeValidation,
				Message: "invalid input",
				Err:     nil,
			},
			wantMsg: "validation: invalid input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.err.Error())
		})
	}
}

func TestDomainError_Unwrap(t *testing.T) {
	baseErr := errors.New("base error")
	domainErr := NewDomainError(ErrorTypeInternal, "internal error", baseErr)

	unwrapped := errors.Unwrap(domainErr)
	assert.Equal(t, baseErr, unwrapped)
}

func TestDomainError_Is(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{
			name:   "same error type",
			err:    NewDomainError(ErrorTypeNotFound, "not found", nil),
			target: ErrSessionNotFound,
			want:   true,
		},
		{
			name:   "different error type",
			err:    NewDomainError(ErrorTypeValidation, "validation", nil),
			target: ErrSessionNotFound,
			want:   false,
		},
		{
			name:   "not a domain error",
			err:    NewDomainError(ErrorTypeNotFound, "not found", nil),
			target: errors.New("regular error"),
			want:   false,
		},
		{
			name:   "wrapped domain error matches through fmt.Errorf",
			err:    fmt.Errorf("handler: %w", NewDomainError(ErrorTypeGeneration, "provider down", nil)),
			target: ErrGenerationFailed,
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.Is(tt.err, tt.target))
		})
	}
}

func TestErrorTypeCheckers(t *testing.T) {
	assert.True(t, IsIndexError(ErrIndexUnavailable))
	assert.True(t, IsGenerationError(ErrGenerationTimeout))
	assert.True(t, IsPersistenceError(fmt.Errorf("save: %w", ErrPersistenceFailed)))
	assert.True(t, IsMalformedError(ErrMalformedOutput))
	assert.False(t, IsGenerationError(ErrIndexUnavailable))
	assert.False(t, IsIndexError(errors.New("plain")))
}

func TestGetErrorType(t *testing.T) {
	assert.Equal(t, ErrorTypeGeneration, GetErrorType(ErrGenerationFailed))
	assert.Equal(t, ErrorType(""), GetErrorType(errors.New("plain")))
}

func TestWithDetail(t *testing.T) {
	err := NewDomainError(ErrorTypeMalformed, "bad json", nil).
		WithDetail("raw", "not json at all")

	details := GetErrorDetails(err)
	assert.Equal(t, "not json at all", details["raw"])
}
