package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/provaia/knowledge-backend/repositories"
	"github.com/provaia/knowledge-backend/utils"
)

// UsageHandler exposes aggregated generation usage
type UsageHandler struct {
	usage  repositories.UsageRepository
	logger *zap.Logger
}

// NewUsageHandler creates a new UsageHandler
func NewUsageHandler(usage repositories.UsageRepository, logger *zap.Logger) *UsageHandler {
	return &UsageHandler{
		usage:  usage,
		logger: logger,
	}
}

// HandleStats handles GET /api/usage/stats
func (h *UsageHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.usage.GetStats(r.Context())
	if err != nil {
		h.logger.Error("failed to aggregate usage stats", zap.Error(err))
		_ = utils.WriteDomainError(w, err)
		return
	}

	_ = utils.WriteOK(w, stats)
}
