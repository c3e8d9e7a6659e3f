package providers

import (
	"context"
	"fmt"
)

// CompletionProvider produces model-generated text for a prompt.
type CompletionProvider interface {
	// Name returns the provider name (e.g., "openai")
	Name() string

	// Model returns the model identifier used for completions
	Model() string

	// Complete performs a blocking completion request. The returned token
	// count comes from the provider's usage metadata, never from estimation.
	Complete(ctx context.Context, prompt string) (*Completion, error)

	// Stream performs a streaming completion request. The returned channel
	// yields chunks in provider order and is closed after the final chunk.
	// A chunk carrying a non-nil Err signals a connection-level failure;
	// it is always the last chunk delivered. The stream is finite and not
	// restartable.
	Stream(ctx context.Context, prompt string) (<-chan StreamChunk, error)
}

// EmbeddingProvider converts text into a vector representation.
type EmbeddingProvider interface {
	// Embed returns an embedding vector for the given text
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Completion represents a finished completion response
type Completion struct {
	// Text is the full generated answer
	Text string

	// TokensUsed is usage.total_tokens reported by the provider
	TokensUsed int

	// Model that produced the completion
	Model string
}

// StreamChunk is one incremental piece of a streaming completion
type StreamChunk struct {
	// Content is the token text carried by this chunk (may be empty)
	Content string

	// TokensUsed is set on the final usage chunk when the provider reports
	// streaming usage, zero otherwise
	TokensUsed int

	// Err is non-nil when the stream failed at the connection level
	Err error
}

// ProviderError represents an error from an LLM provider
type ProviderError struct {
	Provider   string
	Code       string
	Message    string
	StatusCode int
	Retryable  bool
	Err        error
}

// Error implements the error interface
func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider error [%s]: %s", e.Provider, e.Code, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError creates a new provider error
func NewProviderError(provider, code, message string, statusCode int, retryable bool, err error) *ProviderError {
	return &ProviderError{
		Provider:   provider,
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Retryable:  retryable,
		Err:        err,
	}
}
