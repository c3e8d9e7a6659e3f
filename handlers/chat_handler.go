package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/provaia/knowledge-backend/models"
	"github.com/provaia/knowledge-backend/services/qa"
	"github.com/provaia/knowledge-backend/utils"
)

// ChatRequest is the body of the chat message endpoints
type ChatRequest struct {
	Message string `json:"message" validate:"required,min=1,max=2000"`
}

// ChatResponse is the body of a blocking chat turn
type ChatResponse struct {
	SessionID   string   `json:"session_id"`
	Answer      string   `json:"answer"`
	ContextUsed []string `json:"context_used"`
	TokensUsed  int      `json:"tokens_used"`
}

// HistoryMessage is one message in a history response
type HistoryMessage struct {
	Role        string    `json:"role"`
	Content     string    `json:"content"`
	ContextUsed []string  `json:"context_used,omitempty"`
	TokensUsed  int       `json:"tokens_used,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// HistoryResponse is the body of GET /api/chat/history/{session_id}
type HistoryResponse struct {
	SessionID string           `json:"session_id"`
	Messages  []HistoryMessage `json:"messages"`
}

// ChatHandler handles chat endpoints, blocking and streaming
type ChatHandler struct {
	qa     *qa.Service
	logger *zap.Logger
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(qaService *qa.Service, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		qa:     qaService,
		logger: logger,
	}
}

// HandleMessage handles POST /api/chat/message
func (h *ChatHandler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), validationDetails(err))
		return
	}

	result, err := h.qa.ChatAnswer(r.Context(), req.Message)
	if err != nil {
		h.logger.Error("chat turn failed", zap.Error(err))
		_ = utils.WriteDomainError(w, err)
		return
	}

	_ = utils.WriteOK(w, ChatResponse{
		SessionID:   result.SessionID,
		Answer:      result.Answer.Text,
		ContextUsed: contextOrEmpty(result.Answer.Context),
		TokensUsed:  result.Answer.Tokens,
	})
}

// HandleStream handles POST /api/chat/message/stream. The answer goes out as
// server-sent events, one JSON object per data line.
func (h *ChatHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), validationDetails(err))
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		_ = utils.WriteInternalServerError(w, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for event := range h.qa.StreamAnswer(r.Context(), req.Message) {
		payload, err := json.Marshal(wireEvent(event))
		if err != nil {
			h.logger.Error("failed to marshal stream event", zap.Error(err))
			continue
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
			// Client gone; keep draining so the producer can finish.
			continue
		}
		flusher.Flush()
	}
}

// HandleHistory handles GET /api/chat/history/{session_id}
func (h *ChatHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session_id")

	messages, err := h.qa.History(r.Context(), sessionID)
	if err != nil {
		_ = utils.WriteDomainError(w, err)
		return
	}

	history := make([]HistoryMessage, 0, len(messages))
	for _, msg := range messages {
		item := HistoryMessage{
			Role:      string(msg.Role),
			Content:   msg.Content,
			Timestamp: msg.Timestamp,
		}
		if msg.Role == models.RoleAssistant {
			item.ContextUsed = msg.ContextUsed
			item.TokensUsed = msg.TokensUsed
		}
		history = append(history, item)
	}

	_ = utils.WriteOK(w, HistoryResponse{
		SessionID: sessionID,
		Messages:  history,
	})
}

// wireEvent converts a stream event into its wire shape.
func wireEvent(event qa.Event) map[string]interface{} {
	switch event.Type {
	case qa.EventHeartbeat:
		return map[string]interface{}{"type": "heartbeat"}
	case qa.EventContent:
		return map[string]interface{}{"type": "content", "content": event.Content}
	case qa.EventError:
		return map[string]interface{}{"type": "error", "error": event.ErrMsg}
	case qa.EventComplete:
		payload := map[string]interface{}{
			"type":       "complete",
			"done":       true,
			"session_id": event.SessionID,
		}
		if event.Failed {
			payload["error"] = true
		}
		return payload
	default:
		return map[string]interface{}{"type": "close"}
	}
}
