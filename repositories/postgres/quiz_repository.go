package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/provaia/knowledge-backend/models"
	"github.com/provaia/knowledge-backend/repositories"
	"github.com/provaia/knowledge-backend/services"
)

// QuizRepository implements the repositories.QuizRepository interface
type QuizRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewQuizRepository creates a new quiz repository
func NewQuizRepository(db *DB, logger *zap.Logger) repositories.QuizRepository {
	return &QuizRepository{
		db:     db,
		logger: logger,
	}
}

// CreateQuiz stores a quiz
func (r *QuizRepository) CreateQuiz(ctx context.Context, quiz *models.Quiz) error {
	query := `
		INSERT INTO quizzes (id, topic, created_at)
		VALUES ($1, $2, $3)
	`

	_, err := r.db.ExecContext(ctx, query, quiz.ID, quiz.Topic, quiz.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert quiz: %w", err)
	}

	r.logger.Debug("quiz created",
		zap.String("id", quiz.ID.String()),
		zap.String("topic", quiz.Topic))
	return nil
}

// CreateQuestion stores one question of a quiz
func (r *QuizRepository) CreateQuestion(ctx context.Context, question *models.QuizQuestion) error {
	optionsJSON, err := json.Marshal(question.Options)
	if err != nil {
		return fmt.Errorf("failed to marshal question options: %w", err)
	}

	query := `
		INSERT INTO quiz_questions (id, quiz_id, question, correct_answer, explanation, options)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = r.db.ExecContext(ctx, query,
		question.ID,
		question.QuizID,
		question.Question,
		question.CorrectAnswer,
		question.Explanation,
		optionsJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to insert quiz question: %w", err)
	}

	r.logger.Debug("quiz question created", zap.String("id", question.ID.String()))
	return nil
}

// GetAllQuestions retrieves every question newest quiz first
func (r *QuizRepository) GetAllQuestions(ctx context.Context) ([]*models.QuizQuestion, error) {
	query := `
		SELECT q.id, q.quiz_id, q.question, q.correct_answer, q.explanation, q.options
		FROM quiz_questions q
		JOIN quizzes z ON z.id = q.quiz_id
		ORDER BY z.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query quiz questions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanQuestions(rows)
}

// GetQuestionsByTopic retrieves the questions of the newest quiz for a topic
func (r *QuizRepository) GetQuestionsByTopic(ctx context.Context, topic string) ([]*models.QuizQuestion, error) {
	query := `
		SELECT q.id, q.quiz_id, q.question, q.correct_answer, q.explanation, q.options
		FROM quiz_questions q
		WHERE q.quiz_id = (
			SELECT id FROM quizzes WHERE topic = $1 ORDER BY created_at DESC LIMIT 1
		)
	`

	rows, err := r.db.QueryContext(ctx, query, topic)
	if err != nil {
		return nil, fmt.Errorf("failed to query quiz questions by topic: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanQuestions(rows)
}

// GetQuestionByID retrieves one question
func (r *QuizRepository) GetQuestionByID(ctx context.Context, id uuid.UUID) (*models.QuizQuestion, error) {
	query := `
		SELECT id, quiz_id, question, correct_answer, explanation, options
		FROM quiz_questions
		WHERE id = $1
	`

	question := &models.QuizQuestion{}
	var optionsJSON []byte

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&question.ID,
		&question.QuizID,
		&question.Question,
		&question.CorrectAnswer,
		&question.Explanation,
		&optionsJSON,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, services.ErrQuizQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get quiz question: %w", err)
	}

	if err := json.Unmarshal(optionsJSON, &question.Options); err != nil {
		return nil, fmt.Errorf("failed to unmarshal question options: %w", err)
	}
	return question, nil
}

func scanQuestions(rows *sql.Rows) ([]*models.QuizQuestion, error) {
	var questions []*models.QuizQuestion
	for rows.Next() {
		question := &models.QuizQuestion{}
		var optionsJSON []byte

		err := rows.Scan(
			&question.ID,
			&question.QuizID,
			&question.Question,
			&question.CorrectAnswer,
			&question.Explanation,
			&optionsJSON,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quiz question: %w", err)
		}

		if err := json.Unmarshal(optionsJSON, &question.Options); err != nil {
			return nil, fmt.Errorf("failed to unmarshal question options: %w", err)
		}
		questions = append(questions, question)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate quiz questions: %w", err)
	}
	return questions, nil
}
