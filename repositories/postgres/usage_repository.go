package postgres

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/provaia/knowledge-backend/models"
	"github.com/provaia/knowledge-backend/repositories"
)

// UsageRepository implements the repositories.UsageRepository interface
type UsageRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewUsageRepository creates a new usage repository
func NewUsageRepository(db *DB, logger *zap.Logger) repositories.UsageRepository {
	return &UsageRepository{
		db:     db,
		logger: logger,
	}
}

// Create appends one usage record
func (r *UsageRepository) Create(ctx context.Context, log *models.UsageLog) error {
	contextJSON, err := marshalContext(log.ContextUsed)
	if err != nil {
		return fmt.Errorf("failed to marshal usage context: %w", err)
	}

	query := `
		INSERT INTO usage_logs (id, timestamp, prompt, response, tokens_used, model_name, context_used)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = r.db.ExecContext(ctx, query,
		log.ID,
		log.Timestamp,
		log.Prompt,
		log.Response,
		log.TokensUsed,
		log.ModelName,
		contextJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to insert usage log: %w", err)
	}

	r.logger.Debug("usage log created",
		zap.String("id", log.ID.String()),
		zap.Int("tokens_used", log.TokensUsed))
	return nil
}

// GetStats aggregates request and token totals
func (r *UsageRepository) GetStats(ctx context.Context) (*models.UsageStats, error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(tokens_used), 0), COALESCE(AVG(tokens_used), 0)
		FROM usage_logs
	`

	stats := &models.UsageStats{}
	err := r.db.QueryRowContext(ctx, query).Scan(
		&stats.TotalRequests,
		&stats.TotalTokens,
		&stats.AverageTokens,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get usage stats: %w", err)
	}

	return stats, nil
}
