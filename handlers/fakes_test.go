package handlers

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/provaia/knowledge-backend/models"
	"github.com/provaia/knowledge-backend/services"
	"github.com/provaia/knowledge-backend/services/providers"
	"github.com/provaia/knowledge-backend/services/qa"
)

type stubRetriever struct {
	fragments []string
}

func (s *stubRetriever) RelevantContext(context.Context, string, int) ([]string, error) {
	return s.fragments, nil
}

type stubProvider struct {
	text   string
	tokens int
	err    error
	chunks []providers.StreamChunk
}

func (s *stubProvider) Name() string  { return "stub" }
func (s *stubProvider) Model() string { return "stub-model" }

func (s *stubProvider) Complete(context.Context, string) (*providers.Completion, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &providers.Completion{Text: s.text, TokensUsed: s.tokens}, nil
}

func (s *stubProvider) Stream(context.Context, string) (<-chan providers.StreamChunk, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make(chan providers.StreamChunk)
	go func() {
		defer close(out)
		for _, chunk := range s.chunks {
			out <- chunk
		}
	}()
	return out, nil
}

type memoryChatRepo struct {
	mu       sync.Mutex
	sessions map[string]*models.ChatSession
	messages map[string][]*models.ChatMessage
}

func newMemoryChatRepo() *memoryChatRepo {
	return &memoryChatRepo{
		sessions: make(map[string]*models.ChatSession),
		messages: make(map[string][]*models.ChatMessage),
	}
}

func (r *memoryChatRepo) CreateSession(_ context.Context, session *models.ChatSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.SessionID] = session
	return nil
}

func (r *memoryChatRepo) GetSessionBySessionID(_ context.Context, sessionID string) (*models.ChatSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[sessionID]
	if !ok {
		return nil, services.ErrSessionNotFound
	}
	return session, nil
}

func (r *memoryChatRepo) TouchSession(_ context.Context, sessionID string) error {
	return nil
}

func (r *memoryChatRepo) CreateMessage(_ context.Context, message *models.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages[message.SessionID] = append(r.messages[message.SessionID], message)
	return nil
}

func (r *memoryChatRepo) GetMessagesBySessionID(_ context.Context, sessionID string) ([]*models.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.messages[sessionID], nil
}

type memoryUsageRepo struct {
	mu   sync.Mutex
	logs []*models.UsageLog
}

func (r *memoryUsageRepo) Create(_ context.Context, log *models.UsageLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, log)
	return nil
}

func (r *memoryUsageRepo) GetStats(context.Context) (*models.UsageStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := &models.UsageStats{TotalRequests: len(r.logs)}
	for _, log := range r.logs {
		stats.TotalTokens += log.TokensUsed
	}
	if stats.TotalRequests > 0 {
		stats.AverageTokens = float64(stats.TotalTokens) / float64(stats.TotalRequests)
	}
	return stats, nil
}

type memoryFAQRepo struct {
	mu    sync.Mutex
	items []*models.FAQItem
}

func (r *memoryFAQRepo) Create(_ context.Context, item *models.FAQItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, item)
	return nil
}

func (r *memoryFAQRepo) GetAll(context.Context) ([]*models.FAQItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.FAQItem, len(r.items))
	copy(out, r.items)
	return out, nil
}

func (r *memoryFAQRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, item := range r.items {
		if item.ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return services.ErrFAQItemNotFound
}

func (r *memoryFAQRepo) DeleteAll(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = nil
	return nil
}

type memoryQuizRepo struct {
	mu        sync.Mutex
	quizzes   []*models.Quiz
	questions []*models.QuizQuestion
}

func (r *memoryQuizRepo) CreateQuiz(_ context.Context, quiz *models.Quiz) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.quizzes = append(r.quizzes, quiz)
	return nil
}

func (r *memoryQuizRepo) CreateQuestion(_ context.Context, question *models.QuizQuestion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.questions = append(r.questions, question)
	return nil
}

func (r *memoryQuizRepo) GetAllQuestions(context.Context) ([]*models.QuizQuestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.QuizQuestion, len(r.questions))
	copy(out, r.questions)
	return out, nil
}

func (r *memoryQuizRepo) GetQuestionsByTopic(_ context.Context, topic string) ([]*models.QuizQuestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *models.Quiz
	for _, quiz := range r.quizzes {
		if quiz.Topic == topic && (latest == nil || quiz.CreatedAt.After(latest.CreatedAt)) {
			latest = quiz
		}
	}
	if latest == nil {
		return nil, nil
	}
	var out []*models.QuizQuestion
	for _, question := range r.questions {
		if question.QuizID == latest.ID {
			out = append(out, question)
		}
	}
	return out, nil
}

func (r *memoryQuizRepo) GetQuestionByID(_ context.Context, id uuid.UUID) (*models.QuizQuestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, question := range r.questions {
		if question.ID == id {
			return question, nil
		}
	}
	return nil, services.ErrQuizQuestionNotFound
}

type stubIndex struct {
	rebuildErr error
	rebuilds   int
	refreshes  int
}

func (s *stubIndex) Rebuild(context.Context) error {
	s.rebuilds++
	return s.rebuildErr
}

func (s *stubIndex) RefreshIfStale(context.Context) error {
	s.refreshes++
	return s.rebuildErr
}

var errProviderDown = errors.New("provider down")

func newQAService(retriever qa.ContextRetriever, provider providers.CompletionProvider) (*qa.Service, *memoryChatRepo, *memoryUsageRepo) {
	chatRepo := newMemoryChatRepo()
	usageRepo := &memoryUsageRepo{}
	return qa.NewService(retriever, provider, chatRepo, usageRepo, 3, zap.NewNop()), chatRepo, usageRepo
}
