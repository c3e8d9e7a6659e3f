package qa

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/provaia/knowledge-backend/models"
	"github.com/provaia/knowledge-backend/repositories"
	"github.com/provaia/knowledge-backend/services"
	"github.com/provaia/knowledge-backend/services/providers"
	"github.com/provaia/knowledge-backend/services/retrieval"
)

// ContextRetriever is the retrieval surface the QA service depends on.
type ContextRetriever interface {
	RelevantContext(ctx context.Context, question string, maxFragments int) ([]string, error)
}

// Answer is the result of one grounded question/answer round trip. Tokens
// always comes from the provider's usage metadata.
type Answer struct {
	Text    string
	Context []string
	Tokens  int
}

// ChatResult is a blocking chat turn together with the session it created.
type ChatResult struct {
	SessionID string
	Answer    *Answer
}

// Service answers questions grounded on the knowledge base. Every generation
// is logged to the usage repository; chat turns are persisted per session.
type Service struct {
	retriever ContextRetriever
	provider  providers.CompletionProvider
	chatRepo  repositories.ChatRepository
	usageRepo repositories.UsageRepository
	topK      int
	logger    *zap.Logger
}

// NewService creates a QA service retrieving up to topK context fragments per
// question.
func NewService(
	retriever ContextRetriever,
	provider providers.CompletionProvider,
	chatRepo repositories.ChatRepository,
	usageRepo repositories.UsageRepository,
	topK int,
	logger *zap.Logger,
) *Service {
	return &Service{
		retriever: retriever,
		provider:  provider,
		chatRepo:  chatRepo,
		usageRepo: usageRepo,
		topK:      topK,
		logger:    logger,
	}
}

// Answer runs the blocking path: retrieve context, build the grounded prompt,
// call the provider once. Provider failure surfaces as a generation error
// without retry; a failed usage-log append is logged but never surfaced.
func (s *Service) Answer(ctx context.Context, question string) (*Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, services.ErrEmptyQuestion
	}

	fragments, err := s.retriever.RelevantContext(ctx, question, s.topK)
	if err != nil {
		return nil, err
	}

	prompt := retrieval.BuildPrompt(question, fragments)

	completion, err := s.provider.Complete(ctx, prompt)
	if err != nil {
		return nil, services.WrapGeneration("completion failed", err)
	}

	s.logUsage(ctx, prompt, completion.Text, completion.TokensUsed, fragments)

	return &Answer{
		Text:    completion.Text,
		Context: fragments,
		Tokens:  completion.TokensUsed,
	}, nil
}

// ChatAnswer runs a blocking chat turn: a new session is created and both the
// user and assistant messages are persisted.
func (s *Service) ChatAnswer(ctx context.Context, question string) (*ChatResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, services.ErrEmptyQuestion
	}

	session := models.NewChatSession()
	if err := s.chatRepo.CreateSession(ctx, session); err != nil {
		s.logger.Warn("failed to persist chat session",
			zap.String("session_id", session.SessionID),
			zap.Error(err))
	} else if err := s.chatRepo.CreateMessage(ctx, models.NewUserMessage(session.SessionID, question)); err != nil {
		s.logger.Warn("failed to persist user message",
			zap.String("session_id", session.SessionID),
			zap.Error(err))
	}

	answer, err := s.Answer(ctx, question)
	if err != nil {
		return nil, err
	}

	msg := models.NewAssistantMessage(session.SessionID, answer.Text, answer.Context, answer.Tokens)
	if err := s.chatRepo.CreateMessage(ctx, msg); err != nil {
		s.logger.Warn("failed to persist assistant message",
			zap.String("session_id", session.SessionID),
			zap.Error(err))
	}

	return &ChatResult{SessionID: session.SessionID, Answer: answer}, nil
}

// History returns a session's messages oldest first.
func (s *Service) History(ctx context.Context, sessionID string) ([]*models.ChatMessage, error) {
	if _, err := s.chatRepo.GetSessionBySessionID(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.chatRepo.GetMessagesBySessionID(ctx, sessionID)
}

// logUsage appends one usage record. Persistence failures are logged only.
func (s *Service) logUsage(ctx context.Context, prompt, response string, tokens int, fragments []string) {
	log := models.NewUsageLog(prompt, response, tokens, s.provider.Model(), fragments)
	if err := s.usageRepo.Create(ctx, log); err != nil {
		s.logger.Error("failed to append usage log",
			zap.String("id", log.ID.String()),
			zap.Error(err))
	}
}
