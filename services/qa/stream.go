package qa

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/provaia/knowledge-backend/models"
	"github.com/provaia/knowledge-backend/services/retrieval"
)

// EventType tags the events a streamed answer produces.
type EventType string

const (
	EventHeartbeat EventType = "heartbeat"
	EventContent   EventType = "content"
	EventError     EventType = "error"
	EventComplete  EventType = "complete"
	EventClose     EventType = "close"
)

// Event is one item of a streamed answer. Every stream ends with exactly one
// Complete followed by Close; Failed is set on the Complete of a stream that
// died on a provider failure.
type Event struct {
	Type      EventType
	Content   string
	ErrMsg    string
	SessionID string
	Failed    bool
}

// StreamAnswer answers a question as an ordered event stream: one heartbeat,
// the provider's content chunks in arrival order, then the terminal events.
// The returned channel is closed after the Close event. A cancelled ctx stops
// the provider stream; the partial answer is still persisted best-effort.
func (s *Service) StreamAnswer(ctx context.Context, question string) <-chan Event {
	events := make(chan Event, 8)

	go s.run(ctx, strings.TrimSpace(question), events)

	return events
}

// run drives one stream from session creation to the Close event.
func (s *Service) run(ctx context.Context, question string, events chan<- Event) {
	defer close(events)

	session := models.NewChatSession()
	logger := s.logger.With(zap.String("session_id", session.SessionID))

	if question == "" {
		s.emit(ctx, events, Event{Type: EventError, ErrMsg: "question cannot be empty"})
		s.finish(ctx, events, session.SessionID, true)
		return
	}

	if err := s.chatRepo.CreateSession(ctx, session); err != nil {
		logger.Warn("failed to persist chat session", zap.Error(err))
	} else if err := s.chatRepo.CreateMessage(ctx, models.NewUserMessage(session.SessionID, question)); err != nil {
		logger.Warn("failed to persist user message", zap.Error(err))
	}

	// Heartbeat first so the client sees the stream is alive before any
	// provider latency.
	s.emit(ctx, events, Event{Type: EventHeartbeat})

	fragments, err := s.retriever.RelevantContext(ctx, question, s.topK)
	if err != nil {
		logger.Error("retrieval failed", zap.Error(err))
		s.emit(ctx, events, Event{Type: EventError, ErrMsg: "failed to retrieve context"})
		s.finish(ctx, events, session.SessionID, true)
		return
	}

	prompt := retrieval.BuildPrompt(question, fragments)

	chunks, err := s.provider.Stream(ctx, prompt)
	if err != nil {
		logger.Error("stream setup failed", zap.Error(err))
		s.emit(ctx, events, Event{Type: EventError, ErrMsg: "failed to start generation"})
		s.finish(ctx, events, session.SessionID, true)
		return
	}

	var accumulator strings.Builder
	var tokens int
	failed := false

	for chunk := range chunks {
		if chunk.Err != nil {
			logger.Error("stream failed mid-generation", zap.Error(chunk.Err))
			s.emit(ctx, events, Event{Type: EventError, ErrMsg: "generation interrupted"})
			failed = true
			break
		}
		if chunk.TokensUsed > 0 {
			tokens = chunk.TokensUsed
		}
		if chunk.Content == "" {
			continue
		}
		accumulator.WriteString(chunk.Content)
		s.emit(ctx, events, Event{Type: EventContent, Content: chunk.Content})
	}

	if ctx.Err() != nil && !failed {
		logger.Warn("client disconnected mid-stream")
	}

	// Persist whatever was generated, including a partial answer after a
	// disconnect or failure. A detached context keeps the write alive past
	// cancellation.
	if accumulator.Len() > 0 {
		persistCtx := context.WithoutCancel(ctx)
		msg := models.NewAssistantMessage(session.SessionID, accumulator.String(), fragments, tokens)
		if err := s.chatRepo.CreateMessage(persistCtx, msg); err != nil {
			logger.Warn("failed to persist assistant message", zap.Error(err))
		}
		s.logUsage(persistCtx, prompt, accumulator.String(), tokens, fragments)
	}

	s.finish(ctx, events, session.SessionID, failed)
}

// finish emits the single terminal Complete followed by Close.
func (s *Service) finish(ctx context.Context, events chan<- Event, sessionID string, failed bool) {
	s.emit(ctx, events, Event{Type: EventComplete, SessionID: sessionID, Failed: failed})
	s.emit(ctx, events, Event{Type: EventClose})
}

// emit delivers an event, dropping it when the consumer is gone so the
// producer never leaks.
func (s *Service) emit(ctx context.Context, events chan<- Event, ev Event) {
	select {
	case events <- ev:
	case <-ctx.Done():
		select {
		case events <- ev:
		default:
		}
	}
}
