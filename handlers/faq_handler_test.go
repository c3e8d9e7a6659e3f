package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/provaia/knowledge-backend/services/faq"
)

func newFAQHandler(provider *stubProvider) (*FAQHandler, *memoryFAQRepo) {
	repo := &memoryFAQRepo{}
	svc := faq.NewService(&stubRetriever{}, provider, repo, 3, zap.NewNop())
	return NewFAQHandler(svc, zap.NewNop()), repo
}

func TestFAQHandler_HandleGenerate(t *testing.T) {
	provider := &stubProvider{text: `[{"question": "Quando o SENAI foi criado?", "answer": "Em 1942."}]`}
	handler, repo := newFAQHandler(provider)

	req := httptest.NewRequest(http.MethodPost, "/api/faq", strings.NewReader(`{"topic": "historia", "num_items": 1}`))
	w := httptest.NewRecorder()
	handler.HandleGenerate(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var resp FAQListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "Quando o SENAI foi criado?", resp.Items[0].Question)
	assert.Len(t, repo.items, 1)
}

func TestFAQHandler_HandleGenerate_MalformedOutput(t *testing.T) {
	provider := &stubProvider{text: "nao consegui gerar"}
	handler, _ := newFAQHandler(provider)

	req := httptest.NewRequest(http.MethodPost, "/api/faq", strings.NewReader(`{"topic": "historia"}`))
	w := httptest.NewRecorder()
	handler.HandleGenerate(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestFAQHandler_HandleGenerate_MissingTopic(t *testing.T) {
	handler, _ := newFAQHandler(&stubProvider{})

	req := httptest.NewRequest(http.MethodPost, "/api/faq", strings.NewReader(`{"num_items": 2}`))
	w := httptest.NewRecorder()
	handler.HandleGenerate(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFAQHandler_HandleDelete_NotFound(t *testing.T) {
	handler, _ := newFAQHandler(&stubProvider{})

	router := chi.NewRouter()
	router.Delete("/api/faq/{id}", handler.HandleDelete)

	req := httptest.NewRequest(http.MethodDelete, "/api/faq/"+uuid.NewString(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFAQHandler_HandleDelete_InvalidID(t *testing.T) {
	handler, _ := newFAQHandler(&stubProvider{})

	router := chi.NewRouter()
	router.Delete("/api/faq/{id}", handler.HandleDelete)

	req := httptest.NewRequest(http.MethodDelete, "/api/faq/nao-e-uuid", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFAQHandler_HandleList_Empty(t *testing.T) {
	handler, _ := newFAQHandler(&stubProvider{})

	req := httptest.NewRequest(http.MethodGet, "/api/faq", nil)
	w := httptest.NewRecorder()
	handler.HandleList(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"items": [], "count": 0}`, w.Body.String())
}
