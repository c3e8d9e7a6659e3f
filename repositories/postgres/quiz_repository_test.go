package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/provaia/knowledge-backend/models"
	"github.com/provaia/knowledge-backend/services"
)

func TestQuizRepository_CreateQuizAndQuestion(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewQuizRepository(db, zap.NewNop())
	ctx := context.Background()

	quiz := models.NewQuiz("historia")
	mock.ExpectExec("INSERT INTO quizzes").
		WithArgs(quiz.ID, quiz.Topic, quiz.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.CreateQuiz(ctx, quiz))

	question := models.NewQuizQuestion(quiz.ID, "Quando o SENAI foi criado?", "1942", "Decreto-lei 4.048.", []string{"1930", "1942", "1950", "1964"})
	mock.ExpectExec("INSERT INTO quiz_questions").
		WithArgs(question.ID, question.QuizID, question.Question, question.CorrectAnswer, question.Explanation, []byte(`["1930","1942","1950","1964"]`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.CreateQuestion(ctx, question))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuizRepository_GetQuestionByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewQuizRepository(db, zap.NewNop())

	question := models.NewQuizQuestion(uuid.New(), "Quando o SENAI foi criado?", "1942", "Decreto-lei 4.048.", []string{"1930", "1942"})
	rows := sqlmock.NewRows([]string{"id", "quiz_id", "question", "correct_answer", "explanation", "options"}).
		AddRow(question.ID, question.QuizID, question.Question, question.CorrectAnswer, question.Explanation, []byte(`["1930","1942"]`))

	mock.ExpectQuery("SELECT id, quiz_id, question, correct_answer, explanation, options").
		WithArgs(question.ID).
		WillReturnRows(rows)

	got, err := repo.GetQuestionByID(context.Background(), question.ID)
	require.NoError(t, err)
	assert.Equal(t, "1942", got.CorrectAnswer)
	assert.Equal(t, []string{"1930", "1942"}, got.Options)
}

func TestQuizRepository_GetQuestionByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewQuizRepository(db, zap.NewNop())

	id := uuid.New()
	mock.ExpectQuery("SELECT id, quiz_id, question, correct_answer, explanation, options").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "quiz_id", "question", "correct_answer", "explanation", "options"}))

	_, err := repo.GetQuestionByID(context.Background(), id)
	assert.ErrorIs(t, err, services.ErrQuizQuestionNotFound)
}

func TestQuizRepository_GetQuestionsByTopic(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewQuizRepository(db, zap.NewNop())

	quizID := uuid.New()
	q1 := models.NewQuizQuestion(quizID, "Pergunta 1?", "A", "", []string{"A", "B"})
	q2 := models.NewQuizQuestion(quizID, "Pergunta 2?", "B", "", []string{"A", "B"})

	rows := sqlmock.NewRows([]string{"id", "quiz_id", "question", "correct_answer", "explanation", "options"}).
		AddRow(q1.ID, q1.QuizID, q1.Question, q1.CorrectAnswer, q1.Explanation, []byte(`["A","B"]`)).
		AddRow(q2.ID, q2.QuizID, q2.Question, q2.CorrectAnswer, q2.Explanation, []byte(`["A","B"]`))

	mock.ExpectQuery("SELECT q.id, q.quiz_id, q.question, q.correct_answer, q.explanation, q.options").
		WithArgs("historia").
		WillReturnRows(rows)

	questions, err := repo.GetQuestionsByTopic(context.Background(), "historia")
	require.NoError(t, err)
	assert.Len(t, questions, 2)
}
