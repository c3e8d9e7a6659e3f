package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/provaia/knowledge-backend/models"
	"github.com/provaia/knowledge-backend/repositories"
	"github.com/provaia/knowledge-backend/services"
)

// FAQRepository implements the repositories.FAQRepository interface
type FAQRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewFAQRepository creates a new FAQ repository
func NewFAQRepository(db *DB, logger *zap.Logger) repositories.FAQRepository {
	return &FAQRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores one FAQ item
func (r *FAQRepository) Create(ctx context.Context, item *models.FAQItem) error {
	query := `
		INSERT INTO faq_items (id, question, answer, source, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query,
		item.ID,
		item.Question,
		item.Answer,
		item.Source,
		item.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert faq item: %w", err)
	}

	r.logger.Debug("faq item created", zap.String("id", item.ID.String()))
	return nil
}

// GetAll retrieves every FAQ item newest first
func (r *FAQRepository) GetAll(ctx context.Context) ([]*models.FAQItem, error) {
	query := `
		SELECT id, question, answer, source, created_at
		FROM faq_items
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query faq items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []*models.FAQItem
	for rows.Next() {
		item := &models.FAQItem{}
		err := rows.Scan(&item.ID, &item.Question, &item.Answer, &item.Source, &item.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan faq item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate faq items: %w", err)
	}
	return items, nil
}

// Delete removes one FAQ item
func (r *FAQRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM faq_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete faq item: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rows == 0 {
		return services.ErrFAQItemNotFound
	}

	r.logger.Debug("faq item deleted", zap.String("id", id.String()))
	return nil
}

// DeleteAll removes every FAQ item
func (r *FAQRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM faq_items`); err != nil {
		return fmt.Errorf("failed to delete faq items: %w", err)
	}

	r.logger.Debug("all faq items deleted")
	return nil
}
