package models

import (
	"time"

	"github.com/google/uuid"
)

// MessageRole identifies who produced a chat message
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// ChatSession groups the messages of one conversation
type ChatSession struct {
	ID          uuid.UUID `json:"id" db:"id"`
	SessionID   string    `json:"session_id" db:"session_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	LastUpdated time.Time `json:"last_updated" db:"last_updated"`
}

// TableName returns the table name for the ChatSession model
func (ChatSession) TableName() string {
	return "chat_sessions"
}

// NewChatSession creates a session with a fresh external session ID
func NewChatSession() *ChatSession {
	now := time.Now()
	return &ChatSession{
		ID:          uuid.New(),
		SessionID:   uuid.New().String(),
		CreatedAt:   now,
		LastUpdated: now,
	}
}

// ChatMessage is one turn inside a session. Context and token usage are only
// set on assistant messages.
type ChatMessage struct {
	ID          uuid.UUID   `json:"id" db:"id"`
	SessionID   string      `json:"session_id" db:"session_id"`
	Role        MessageRole `json:"role" db:"role"`
	Content     string      `json:"content" db:"content"`
	ContextUsed []string    `json:"context_used,omitempty" db:"context_used"`
	TokensUsed  int         `json:"tokens_used" db:"tokens_used"`
	Timestamp   time.Time   `json:"timestamp" db:"timestamp"`
}

// TableName returns the table name for the ChatMessage model
func (ChatMessage) TableName() string {
	return "chat_messages"
}

// NewUserMessage creates a user turn for the given session
func NewUserMessage(sessionID, content string) *ChatMessage {
	return &ChatMessage{
		ID:        uuid.New(),
		SessionID: sessionID,
		Role:      RoleUser,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewAssistantMessage creates an assistant turn carrying the context it was
// grounded on and the provider-reported token usage
func NewAssistantMessage(sessionID, content string, contextUsed []string, tokensUsed int) *ChatMessage {
	return &ChatMessage{
		ID:          uuid.New(),
		SessionID:   sessionID,
		Role:        RoleAssistant,
		Content:     content,
		ContextUsed: contextUsed,
		TokensUsed:  tokensUsed,
		Timestamp:   time.Now(),
	}
}
