package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/provaia/knowledge-backend/models"
	"github.com/provaia/knowledge-backend/services/faq"
	"github.com/provaia/knowledge-backend/utils"
)

// FAQGenerateRequest is the body of POST /api/faq
type FAQGenerateRequest struct {
	Topic    string `json:"topic" validate:"required,min=1,max=255"`
	NumItems int    `json:"num_items" validate:"gte=0,lte=20"`
}

// FAQListResponse is the body of FAQ list/generate responses
type FAQListResponse struct {
	Items []*models.FAQItem `json:"items"`
	Count int               `json:"count"`
}

// FAQHandler handles FAQ generation and management
type FAQHandler struct {
	faq    *faq.Service
	logger *zap.Logger
}

// NewFAQHandler creates a new FAQHandler
func NewFAQHandler(faqService *faq.Service, logger *zap.Logger) *FAQHandler {
	return &FAQHandler{
		faq:    faqService,
		logger: logger,
	}
}

// HandleGenerate handles POST /api/faq
func (h *FAQHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var req FAQGenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), validationDetails(err))
		return
	}

	items, err := h.faq.Generate(r.Context(), req.Topic, req.NumItems)
	if err != nil {
		h.logger.Error("faq generation failed",
			zap.String("topic", req.Topic),
			zap.Error(err))
		_ = utils.WriteDomainError(w, err)
		return
	}

	_ = utils.WriteCreated(w, FAQListResponse{Items: items, Count: len(items)})
}

// HandleList handles GET /api/faq
func (h *FAQHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	items, err := h.faq.GetAll(r.Context())
	if err != nil {
		_ = utils.WriteDomainError(w, err)
		return
	}
	if items == nil {
		items = []*models.FAQItem{}
	}

	_ = utils.WriteOK(w, FAQListResponse{Items: items, Count: len(items)})
}

// HandleDelete handles DELETE /api/faq/{id}
func (h *FAQHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "invalid faq item id", nil)
		return
	}

	if err := h.faq.Delete(r.Context(), id); err != nil {
		_ = utils.WriteDomainError(w, err)
		return
	}

	_ = utils.WriteOK(w, map[string]string{"status": "ok"})
}

// HandleDeleteAll handles DELETE /api/faq
func (h *FAQHandler) HandleDeleteAll(w http.ResponseWriter, r *http.Request) {
	if err := h.faq.DeleteAll(r.Context()); err != nil {
		_ = utils.WriteDomainError(w, err)
		return
	}

	_ = utils.WriteOK(w, map[string]string{"status": "ok"})
}
