package openai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/provaia/knowledge-backend/config"
	"github.com/provaia/knowledge-backend/services/providers"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"

	// streamDone is the sentinel the chat-completions SSE stream ends with
	streamDone = "[DONE]"
)

// Adapter implements CompletionProvider and EmbeddingProvider against an
// OpenAI-compatible HTTP API.
type Adapter struct {
	config     config.OpenAIConfig
	httpClient *http.Client
	// streamClient carries no overall timeout: a streaming completion can
	// legitimately outlive cfg.Timeout, so its lifetime is bounded by the
	// request context instead.
	streamClient *http.Client
}

// NewAdapter creates a new OpenAI adapter
func NewAdapter(cfg config.OpenAIConfig) *Adapter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	return &Adapter{
		config: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		streamClient: &http.Client{},
	}
}

// Name returns the provider name
func (a *Adapter) Name() string {
	return "openai"
}

// Model returns the completion model identifier
func (a *Adapter) Model() string {
	return a.config.Model
}

// Complete performs a blocking chat completion request
func (a *Adapter) Complete(ctx context.Context, prompt string) (*providers.Completion, error) {
	reqBody := chatRequest{
		Model:    a.config.Model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	}

	respBody, statusCode, err := a.post(ctx, "/chat/completions", reqBody)
	if err != nil {
		return nil, providers.NewProviderError(a.Name(), "HTTP_ERROR", "HTTP request failed", 0, true, err)
	}
	if statusCode != http.StatusOK {
		return nil, a.handleErrorResponse(statusCode, respBody)
	}

	var resp chatResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, providers.NewProviderError(a.Name(), "UNMARSHAL_ERROR", "Failed to unmarshal response", statusCode, false, err)
	}
	if len(resp.Choices) == 0 {
		return nil, providers.NewProviderError(a.Name(), "EMPTY_RESPONSE", "No choices in response", statusCode, false, nil)
	}

	return &providers.Completion{
		Text:       resp.Choices[0].Message.Content,
		TokensUsed: resp.Usage.TotalTokens,
		Model:      resp.Model,
	}, nil
}

// Stream performs a streaming chat completion request. The returned channel
// yields one StreamChunk per SSE data event and closes after the [DONE]
// sentinel or a connection failure.
func (a *Adapter) Stream(ctx context.Context, prompt string) (<-chan providers.StreamChunk, error) {
	reqBody := chatRequest{
		Model:    a.config.Model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
		Stream:   true,
		StreamOptions: &streamOptions{
			IncludeUsage: true,
		},
	}

	data, err := json.Marshal(reqBody)
	if err != nil {
		return nil, providers.NewProviderError(a.Name(), "MARSHAL_ERROR", "Failed to marshal request", 0, false, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.BaseURL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return nil, providers.NewProviderError(a.Name(), "REQUEST_ERROR", "Failed to create request", 0, false, err)
	}
	a.setHeaders(httpReq)
	httpReq.Header.Set("Accept", "text/event-stream")

	httpResp, err := a.streamClient.Do(httpReq)
	if err != nil {
		return nil, providers.NewProviderError(a.Name(), "HTTP_ERROR", "HTTP request failed", 0, true, err)
	}
	if httpResp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(httpResp.Body)
		_ = httpResp.Body.Close()
		return nil, a.handleErrorResponse(httpResp.StatusCode, body)
	}

	out := make(chan providers.StreamChunk)
	go a.readStream(httpResp.Body, out)
	return out, nil
}

// readStream parses SSE data lines off the response body and forwards them
// as chunks. Runs until [DONE], EOF, or a read error.
func (a *Adapter) readStream(body io.ReadCloser, out chan<- providers.StreamChunk) {
	defer close(out)
	defer func() { _ = body.Close() }()

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == streamDone {
			return
		}

		var event chatStreamEvent
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			// One undecodable event does not kill the stream
			continue
		}

		chunk := providers.StreamChunk{}
		if len(event.Choices) > 0 {
			chunk.Content = event.Choices[0].Delta.Content
		}
		if event.Usage != nil {
			chunk.TokensUsed = event.Usage.TotalTokens
		}
		if chunk.Content == "" && chunk.TokensUsed == 0 {
			continue
		}
		out <- chunk
	}

	if err := scanner.Err(); err != nil {
		out <- providers.StreamChunk{
			Err: providers.NewProviderError(a.Name(), "STREAM_ERROR", "stream read failed", 0, true, err),
		}
	}
}

// Embed returns an embedding vector for the given text
func (a *Adapter) Embed(ctx context.Context, text string) ([]float64, error) {
	reqBody := embeddingRequest{
		Model: a.config.EmbeddingModel,
		Input: text,
	}

	var lastErr error
	for attempt := 0; attempt <= a.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryDelay(attempt)):
			}
		}

		respBody, statusCode, err := a.post(ctx, "/embeddings", reqBody)
		if err != nil {
			lastErr = err
			continue
		}
		if statusCode == http.StatusTooManyRequests || statusCode >= 500 {
			lastErr = fmt.Errorf("embeddings request failed with status %d", statusCode)
			continue
		}
		if statusCode != http.StatusOK {
			return nil, a.handleErrorResponse(statusCode, respBody)
		}

		var resp embeddingResponse
		if err := json.Unmarshal(respBody, &resp); err != nil {
			return nil, providers.NewProviderError(a.Name(), "UNMARSHAL_ERROR", "Failed to unmarshal embeddings", statusCode, false, err)
		}
		if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
			return nil, providers.NewProviderError(a.Name(), "EMPTY_RESPONSE", "No embedding returned", statusCode, false, nil)
		}
		return resp.Data[0].Embedding, nil
	}

	return nil, providers.NewProviderError(a.Name(), "HTTP_ERROR", "embeddings request failed", 0, true, lastErr)
}

// post issues a JSON POST and returns the raw body and status code
func (a *Adapter) post(ctx context.Context, path string, body interface{}) ([]byte, int, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, 0, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, 0, err
	}
	a.setHeaders(httpReq)

	httpResp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, httpResp.StatusCode, err
	}
	return respBody, httpResp.StatusCode, nil
}

func (a *Adapter) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.config.APIKey)
}

// handleErrorResponse converts an API error payload into a ProviderError
func (a *Adapter) handleErrorResponse(statusCode int, body []byte) error {
	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		return providers.NewProviderError(a.Name(), "UNKNOWN_ERROR", string(body), statusCode, false, err)
	}

	retryable := statusCode >= 500 || statusCode == http.StatusTooManyRequests

	return providers.NewProviderError(
		a.Name(),
		errResp.Error.Type,
		errResp.Error.Message,
		statusCode,
		retryable,
		errors.New(errResp.Error.Message),
	)
}

func retryDelay(attempt int) time.Duration {
	base := 200 * time.Millisecond
	d := base << attempt
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d
}

// OpenAI-specific request/response types

type chatRequest struct {
	Model         string         `json:"model"`
	Messages      []chatMessage  `json:"messages"`
	Stream        bool           `json:"stream,omitempty"`
	StreamOptions *streamOptions `json:"stream_options,omitempty"`
}

type streamOptions struct {
	IncludeUsage bool `json:"include_usage"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   usage        `json:"usage"`
}

type chatChoice struct {
	Index        int         `json:"index"`
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type chatStreamEvent struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
	Usage *usage `json:"usage"`
}

type usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}
