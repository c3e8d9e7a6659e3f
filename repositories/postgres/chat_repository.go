package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/provaia/knowledge-backend/models"
	"github.com/provaia/knowledge-backend/repositories"
	"github.com/provaia/knowledge-backend/services"
)

// ChatRepository implements the repositories.ChatRepository interface
type ChatRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewChatRepository creates a new chat repository
func NewChatRepository(db *DB, logger *zap.Logger) repositories.ChatRepository {
	return &ChatRepository{
		db:     db,
		logger: logger,
	}
}

// CreateSession stores a new session
func (r *ChatRepository) CreateSession(ctx context.Context, session *models.ChatSession) error {
	query := `
		INSERT INTO chat_sessions (id, session_id, created_at, last_updated)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.ExecContext(ctx, query,
		session.ID,
		session.SessionID,
		session.CreatedAt,
		session.LastUpdated,
	)
	if err != nil {
		return fmt.Errorf("failed to insert chat session: %w", err)
	}

	r.logger.Debug("chat session created", zap.String("session_id", session.SessionID))
	return nil
}

// GetSessionBySessionID retrieves a session by its external session ID
func (r *ChatRepository) GetSessionBySessionID(ctx context.Context, sessionID string) (*models.ChatSession, error) {
	query := `
		SELECT id, session_id, created_at, last_updated
		FROM chat_sessions
		WHERE session_id = $1
	`

	session := &models.ChatSession{}
	err := r.db.QueryRowContext(ctx, query, sessionID).Scan(
		&session.ID,
		&session.SessionID,
		&session.CreatedAt,
		&session.LastUpdated,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, services.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get chat session: %w", err)
	}

	return session, nil
}

// TouchSession bumps a session's last_updated timestamp
func (r *ChatRepository) TouchSession(ctx context.Context, sessionID string) error {
	query := `UPDATE chat_sessions SET last_updated = $1 WHERE session_id = $2`

	result, err := r.db.ExecContext(ctx, query, time.Now(), sessionID)
	if err != nil {
		return fmt.Errorf("failed to touch chat session: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check touch result: %w", err)
	}
	if rows == 0 {
		return services.ErrSessionNotFound
	}
	return nil
}

// CreateMessage stores one chat turn
func (r *ChatRepository) CreateMessage(ctx context.Context, message *models.ChatMessage) error {
	contextJSON, err := marshalContext(message.ContextUsed)
	if err != nil {
		return fmt.Errorf("failed to marshal message context: %w", err)
	}

	query := `
		INSERT INTO chat_messages (id, session_id, role, content, context_used, tokens_used, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = r.db.ExecContext(ctx, query,
		message.ID,
		message.SessionID,
		message.Role,
		message.Content,
		contextJSON,
		message.TokensUsed,
		message.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert chat message: %w", err)
	}

	r.logger.Debug("chat message created",
		zap.String("session_id", message.SessionID),
		zap.String("role", string(message.Role)))
	return nil
}

// GetMessagesBySessionID retrieves a session's messages oldest first
func (r *ChatRepository) GetMessagesBySessionID(ctx context.Context, sessionID string) ([]*models.ChatMessage, error) {
	query := `
		SELECT id, session_id, role, content, context_used, tokens_used, timestamp
		FROM chat_messages
		WHERE session_id = $1
		ORDER BY timestamp ASC
	`

	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var messages []*models.ChatMessage
	for rows.Next() {
		message := &models.ChatMessage{}
		var contextJSON []byte

		err := rows.Scan(
			&message.ID,
			&message.SessionID,
			&message.Role,
			&message.Content,
			&contextJSON,
			&message.TokensUsed,
			&message.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}

		if message.ContextUsed, err = unmarshalContext(contextJSON); err != nil {
			return nil, fmt.Errorf("failed to unmarshal message context: %w", err)
		}
		messages = append(messages, message)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chat messages: %w", err)
	}
	return messages, nil
}

// marshalContext encodes a context fragment list as JSONB, NULL when empty.
func marshalContext(contextUsed []string) ([]byte, error) {
	if len(contextUsed) == 0 {
		return nil, nil
	}
	return json.Marshal(contextUsed)
}

func unmarshalContext(data []byte) ([]string, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var contextUsed []string
	if err := json.Unmarshal(data, &contextUsed); err != nil {
		return nil, err
	}
	return contextUsed, nil
}
