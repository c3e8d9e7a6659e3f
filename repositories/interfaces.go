package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/provaia/knowledge-backend/models"
)

// ChatRepository handles chat session and message persistence
type ChatRepository interface {
	// CreateSession stores a new session
	CreateSession(ctx context.Context, session *models.ChatSession) error

	// GetSessionBySessionID retrieves a session by its external session ID
	GetSessionBySessionID(ctx context.Context, sessionID string) (*models.ChatSession, error)

	// TouchSession bumps a session's last_updated timestamp
	TouchSession(ctx context.Context, sessionID string) error

	// CreateMessage stores one chat turn
	CreateMessage(ctx context.Context, message *models.ChatMessage) error

	// GetMessagesBySessionID retrieves a session's messages oldest first
	GetMessagesBySessionID(ctx context.Context, sessionID string) ([]*models.ChatMessage, error)
}

// UsageRepository handles the append-only generation usage log
type UsageRepository interface {
	// Create appends one usage record
	Create(ctx context.Context, log *models.UsageLog) error

	// GetStats aggregates request and token totals
	GetStats(ctx context.Context) (*models.UsageStats, error)
}

// FAQRepository handles generated FAQ items
type FAQRepository interface {
	// Create stores one FAQ item
	Create(ctx context.Context, item *models.FAQItem) error

	// GetAll retrieves every FAQ item newest first
	GetAll(ctx context.Context) ([]*models.FAQItem, error)

	// Delete removes one FAQ item
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteAll removes every FAQ item
	DeleteAll(ctx context.Context) error
}

// QuizRepository handles quizzes and their questions
type QuizRepository interface {
	// CreateQuiz stores a quiz
	CreateQuiz(ctx context.Context, quiz *models.Quiz) error

	// CreateQuestion stores one question of a quiz
	CreateQuestion(ctx context.Context, question *models.QuizQuestion) error

	// GetAllQuestions retrieves every question newest quiz first
	GetAllQuestions(ctx context.Context) ([]*models.QuizQuestion, error)

	// GetQuestionsByTopic retrieves the questions of the newest quiz for a topic
	GetQuestionsByTopic(ctx context.Context, topic string) ([]*models.QuizQuestion, error)

	// GetQuestionByID retrieves one question
	GetQuestionByID(ctx context.Context, id uuid.UUID) (*models.QuizQuestion, error)
}
