package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/provaia/knowledge-backend/services/docstore"
	"github.com/provaia/knowledge-backend/utils"
)

// DocumentRequest is the body of POST /documents
type DocumentRequest struct {
	Filename string `json:"filename" validate:"required,min=1,max=255"`
	Content  string `json:"content" validate:"required,min=1"`
}

// DocumentListResponse is the body of GET /documents
type DocumentListResponse struct {
	Documents []docstore.Document `json:"documents"`
	Count     int                 `json:"count"`
}

// DocumentHandler handles knowledge-base document management
type DocumentHandler struct {
	store  *docstore.Store
	index  Rebuilder
	logger *zap.Logger
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(store *docstore.Store, index Rebuilder, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{
		store:  store,
		index:  index,
		logger: logger,
	}
}

// HandleList handles GET /documents
func (h *DocumentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	docs, err := h.store.ListDocuments(r.Context())
	if err != nil {
		h.logger.Error("failed to list documents", zap.Error(err))
		_ = utils.WriteDomainError(w, err)
		return
	}

	_ = utils.WriteOK(w, DocumentListResponse{
		Documents: docs,
		Count:     len(docs),
	})
}

// HandleCreate handles POST /documents
func (h *DocumentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req DocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), validationDetails(err))
		return
	}

	if err := h.store.Put(r.Context(), req.Filename, req.Content); err != nil {
		_ = utils.WriteDomainError(w, err)
		return
	}

	h.refreshIndex(r)

	_ = utils.WriteCreated(w, map[string]string{
		"status":   "ok",
		"filename": req.Filename,
	})
}

// HandleDelete handles DELETE /documents/{filename}
func (h *DocumentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")

	if err := h.store.Delete(r.Context(), filename); err != nil {
		_ = utils.WriteDomainError(w, err)
		return
	}

	h.refreshIndex(r)

	_ = utils.WriteOK(w, map[string]string{
		"status":   "ok",
		"filename": filename,
	})
}

// refreshIndex refreshes the index after a document mutation. Failures are
// logged; the mutation itself already succeeded.
func (h *DocumentHandler) refreshIndex(r *http.Request) {
	if err := h.index.RefreshIfStale(r.Context()); err != nil {
		h.logger.Warn("index refresh after document change failed", zap.Error(err))
	}
}
