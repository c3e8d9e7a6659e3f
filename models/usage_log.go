package models

import (
	"time"

	"github.com/google/uuid"
)

// UsageLog is one append-only record of a completed generation
type UsageLog struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Timestamp   time.Time `json:"timestamp" db:"timestamp"`
	Prompt      string    `json:"prompt" db:"prompt"`
	Response    string    `json:"response" db:"response"`
	TokensUsed  int       `json:"tokens_used" db:"tokens_used"`
	ModelName   string    `json:"model_name" db:"model_name"`
	ContextUsed []string  `json:"context_used,omitempty" db:"context_used"`
}

// TableName returns the table name for the UsageLog model
func (UsageLog) TableName() string {
	return "usage_logs"
}

// NewUsageLog creates a usage record for one generation
func NewUsageLog(prompt, response string, tokensUsed int, modelName string, contextUsed []string) *UsageLog {
	return &UsageLog{
		ID:          uuid.New(),
		Timestamp:   time.Now(),
		Prompt:      prompt,
		Response:    response,
		TokensUsed:  tokensUsed,
		ModelName:   modelName,
		ContextUsed: contextUsed,
	}
}

// UsageStats aggregates the usage log for reporting
type UsageStats struct {
	TotalRequests int     `json:"total_requests"`
	TotalTokens   int     `json:"total_tokens"`
	AverageTokens float64 `json:"average_tokens"`
}
