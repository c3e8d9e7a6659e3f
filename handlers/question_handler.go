package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/provaia/knowledge-backend/services/qa"
	"github.com/provaia/knowledge-backend/utils"
)

// Rebuilder is the index surface the HTTP layer needs.
type Rebuilder interface {
	Rebuild(ctx context.Context) error
	RefreshIfStale(ctx context.Context) error
}

// QuestionRequest is the body of POST /question
type QuestionRequest struct {
	Question string `json:"question" validate:"required,min=1,max=2000"`
}

// QuestionResponse is the body of a successful answer
type QuestionResponse struct {
	Answer      string   `json:"answer"`
	ContextUsed []string `json:"context_used"`
	TokensUsed  int      `json:"tokens_used"`
}

// QuestionHandler handles the stateless question endpoint and index refresh
type QuestionHandler struct {
	qa     *qa.Service
	index  Rebuilder
	logger *zap.Logger
}

// NewQuestionHandler creates a new QuestionHandler
func NewQuestionHandler(qaService *qa.Service, index Rebuilder, logger *zap.Logger) *QuestionHandler {
	return &QuestionHandler{
		qa:     qaService,
		index:  index,
		logger: logger,
	}
}

// HandleQuestion handles POST /question
func (h *QuestionHandler) HandleQuestion(w http.ResponseWriter, r *http.Request) {
	var req QuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), validationDetails(err))
		return
	}

	answer, err := h.qa.Answer(r.Context(), req.Question)
	if err != nil {
		h.logger.Error("question answering failed", zap.Error(err))
		_ = utils.WriteDomainError(w, err)
		return
	}

	_ = utils.WriteOK(w, QuestionResponse{
		Answer:      answer.Text,
		ContextUsed: contextOrEmpty(answer.Context),
		TokensUsed:  answer.Tokens,
	})
}

// HandleRefreshKnowledge handles GET /refresh-knowledge
func (h *QuestionHandler) HandleRefreshKnowledge(w http.ResponseWriter, r *http.Request) {
	if err := h.index.Rebuild(r.Context()); err != nil {
		h.logger.Error("index rebuild failed", zap.Error(err))
		_ = utils.WriteDomainError(w, err)
		return
	}

	_ = utils.WriteOK(w, map[string]string{"status": "ok"})
}

// contextOrEmpty keeps context_used a JSON array rather than null.
func contextOrEmpty(fragments []string) []string {
	if fragments == nil {
		return []string{}
	}
	return fragments
}

func validationDetails(err error) map[string]interface{} {
	if vErr, ok := err.(*utils.ValidationError); ok {
		return vErr.Details()
	}
	return nil
}
