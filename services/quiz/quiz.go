package quiz

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/provaia/knowledge-backend/models"
	"github.com/provaia/knowledge-backend/repositories"
	"github.com/provaia/knowledge-backend/services"
	"github.com/provaia/knowledge-backend/services/extract"
	"github.com/provaia/knowledge-backend/services/providers"
	"github.com/provaia/knowledge-backend/services/qa"
	"github.com/provaia/knowledge-backend/services/retrieval"
)

const (
	defaultQuestions = 5
	maxQuestions     = 20
)

// Service generates multiple-choice quizzes about knowledge-base topics and
// checks submitted answers.
type Service struct {
	retriever qa.ContextRetriever
	provider  providers.CompletionProvider
	repo      repositories.QuizRepository
	topK      int
	logger    *zap.Logger
}

// NewService creates a quiz service.
func NewService(
	retriever qa.ContextRetriever,
	provider providers.CompletionProvider,
	repo repositories.QuizRepository,
	topK int,
	logger *zap.Logger,
) *Service {
	return &Service{
		retriever: retriever,
		provider:  provider,
		repo:      repo,
		topK:      topK,
		logger:    logger,
	}
}

type generatedQuestion struct {
	Question      string   `json:"question"`
	CorrectAnswer string   `json:"correct_answer"`
	Options       []string `json:"options"`
	Explanation   string   `json:"explanation"`
}

// AnswerResult is the outcome of checking one submitted answer.
type AnswerResult struct {
	IsCorrect     bool   `json:"is_correct"`
	CorrectAnswer string `json:"correct_answer"`
	Explanation   string `json:"explanation"`
}

// Generate creates a quiz with numQuestions multiple-choice questions about
// topic. Incomplete generated items are skipped; when nothing usable remains
// the provider output is reported as malformed.
func (s *Service) Generate(ctx context.Context, topic string, numQuestions int) ([]*models.QuizQuestion, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, services.NewDomainError(services.ErrorTypeValidation, "topic cannot be empty", nil)
	}
	if numQuestions <= 0 {
		numQuestions = defaultQuestions
	}
	if numQuestions > maxQuestions {
		numQuestions = maxQuestions
	}

	fragments, err := s.retriever.RelevantContext(ctx, topic, s.topK)
	if err != nil {
		return nil, err
	}

	completion, err := s.provider.Complete(ctx, buildPrompt(topic, numQuestions, fragments))
	if err != nil {
		return nil, services.WrapGeneration("quiz generation failed", err)
	}

	rawItems, err := extract.Parse(completion.Text)
	if err != nil {
		return nil, err
	}

	quiz := models.NewQuiz(topic)
	var questions []*models.QuizQuestion
	for _, raw := range rawItems {
		var gen generatedQuestion
		if err := json.Unmarshal(raw, &gen); err != nil {
			s.logger.Warn("skipping undecodable quiz question", zap.Error(err))
			continue
		}

		gen.Question = strings.TrimSpace(gen.Question)
		gen.CorrectAnswer = strings.TrimSpace(gen.CorrectAnswer)
		if gen.Question == "" || gen.CorrectAnswer == "" || len(gen.Options) < 2 {
			continue
		}
		if !containsFold(gen.Options, gen.CorrectAnswer) {
			gen.Options = append(gen.Options, gen.CorrectAnswer)
		}

		questions = append(questions, models.NewQuizQuestion(
			quiz.ID, gen.Question, gen.CorrectAnswer, strings.TrimSpace(gen.Explanation), gen.Options))
	}

	if len(questions) == 0 {
		return nil, services.NewDomainError(services.ErrorTypeMalformed, "model produced no usable quiz questions", nil).
			WithDetail("raw", completion.Text)
	}

	if err := s.repo.CreateQuiz(ctx, quiz); err != nil {
		return nil, services.WrapError(services.ErrorTypePersistence, "failed to persist quiz", err)
	}
	for _, question := range questions {
		if err := s.repo.CreateQuestion(ctx, question); err != nil {
			return nil, services.WrapError(services.ErrorTypePersistence, "failed to persist quiz question", err)
		}
	}

	s.logger.Info("quiz generated",
		zap.String("topic", topic),
		zap.Int("questions", len(questions)),
		zap.Int("tokens_used", completion.TokensUsed))
	return questions, nil
}

// GetAll returns every stored question, newest quiz first.
func (s *Service) GetAll(ctx context.Context) ([]*models.QuizQuestion, error) {
	return s.repo.GetAllQuestions(ctx)
}

// GetByTopic returns the questions of the newest quiz for a topic.
func (s *Service) GetByTopic(ctx context.Context, topic string) ([]*models.QuizQuestion, error) {
	return s.repo.GetQuestionsByTopic(ctx, topic)
}

// CheckAnswer compares a submitted answer against the stored correct answer,
// ignoring case and surrounding whitespace.
func (s *Service) CheckAnswer(ctx context.Context, questionID uuid.UUID, userAnswer string) (*AnswerResult, error) {
	question, err := s.repo.GetQuestionByID(ctx, questionID)
	if err != nil {
		return nil, err
	}

	return &AnswerResult{
		IsCorrect:     strings.EqualFold(strings.TrimSpace(userAnswer), strings.TrimSpace(question.CorrectAnswer)),
		CorrectAnswer: question.CorrectAnswer,
		Explanation:   question.Explanation,
	}, nil
}

func containsFold(options []string, answer string) bool {
	for _, option := range options {
		if strings.EqualFold(strings.TrimSpace(option), answer) {
			return true
		}
	}
	return false
}

func buildPrompt(topic string, numQuestions int, fragments []string) string {
	var sb strings.Builder
	sb.WriteString("Gere um quiz de multipla escolha sobre o tema a seguir usando o contexto fornecido.\n\n")

	if len(fragments) == 0 {
		sb.WriteString("Contexto: ")
		sb.WriteString(retrieval.NoContextMarker)
		sb.WriteString("\n")
	} else {
		sb.WriteString("Contexto:\n")
		for i, fragment := range fragments {
			fmt.Fprintf(&sb, "[%d] %s\n", i+1, fragment)
		}
	}

	fmt.Fprintf(&sb, "\nTema: %s\n\n", topic)
	fmt.Fprintf(&sb, "Responda APENAS com um array JSON de %d objetos no formato ", numQuestions)
	sb.WriteString(`[{"question": "...", "correct_answer": "...", "options": ["...", "...", "...", "..."], "explanation": "..."}] sem texto adicional.`)
	return sb.String()
}
