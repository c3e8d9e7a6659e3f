package qa

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/provaia/knowledge-backend/models"
	"github.com/provaia/knowledge-backend/services/providers"
)

// MockChatRepository is a mock implementation of repositories.ChatRepository
type MockChatRepository struct {
	mock.Mock
	mu       sync.Mutex
	messages []*models.ChatMessage
}

func (m *MockChatRepository) CreateSession(ctx context.Context, session *models.ChatSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockChatRepository) GetSessionBySessionID(ctx context.Context, sessionID string) (*models.ChatSession, error) {
	args := m.Called(ctx, sessionID)
	if session := args.Get(0); session != nil {
		return session.(*models.ChatSession), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockChatRepository) TouchSession(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *MockChatRepository) CreateMessage(ctx context.Context, message *models.ChatMessage) error {
	m.mu.Lock()
	m.messages = append(m.messages, message)
	m.mu.Unlock()

	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockChatRepository) GetMessagesBySessionID(ctx context.Context, sessionID string) ([]*models.ChatMessage, error) {
	args := m.Called(ctx, sessionID)
	if messages := args.Get(0); messages != nil {
		return messages.([]*models.ChatMessage), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockChatRepository) savedMessages() []*models.ChatMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.ChatMessage, len(m.messages))
	copy(out, m.messages)
	return out
}

// MockUsageRepository is a mock implementation of repositories.UsageRepository
type MockUsageRepository struct {
	mock.Mock
	mu   sync.Mutex
	logs []*models.UsageLog
}

func (m *MockUsageRepository) Create(ctx context.Context, log *models.UsageLog) error {
	m.mu.Lock()
	m.logs = append(m.logs, log)
	m.mu.Unlock()

	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockUsageRepository) GetStats(ctx context.Context) (*models.UsageStats, error) {
	args := m.Called(ctx)
	if stats := args.Get(0); stats != nil {
		return stats.(*models.UsageStats), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsageRepository) savedLogs() []*models.UsageLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.UsageLog, len(m.logs))
	copy(out, m.logs)
	return out
}

// stubRetriever returns fixed fragments
type stubRetriever struct {
	fragments []string
	err       error
}

func (s *stubRetriever) RelevantContext(context.Context, string, int) ([]string, error) {
	return s.fragments, s.err
}

// stubProvider is a scriptable completion provider
type stubProvider struct {
	completion   *providers.Completion
	completeErr  error
	chunks       []providers.StreamChunk
	streamErr    error
	lastPrompt   string
	mu           sync.Mutex
}

func (s *stubProvider) Name() string  { return "stub" }
func (s *stubProvider) Model() string { return "stub-model" }

func (s *stubProvider) Complete(_ context.Context, prompt string) (*providers.Completion, error) {
	s.mu.Lock()
	s.lastPrompt = prompt
	s.mu.Unlock()
	return s.completion, s.completeErr
}

func (s *stubProvider) Stream(_ context.Context, prompt string) (<-chan providers.StreamChunk, error) {
	s.mu.Lock()
	s.lastPrompt = prompt
	s.mu.Unlock()

	if s.streamErr != nil {
		return nil, s.streamErr
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

func (s *stubProvider) prompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPrompt
}
