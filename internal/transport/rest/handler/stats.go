package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"surveyservice/internal/apperr"
	"surveyservice/internal/cache"
)

// StatsHandler serves per-cycle response counters
type StatsHandler struct {
	stats  cache.StatsCache
	logger *zap.Logger
}

// NewStatsHandler creates a new stats handler. A nil cache disables the endpoint.
func NewStatsHandler(stats cache.StatsCache, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{stats: stats, logger: orNop(logger)}
}

// CycleStats handles GET /v1/cycles/{cycleId}/stats
func (h *StatsHandler) CycleStats(w http.ResponseWriter, r *http.Request) {
	if h.stats == nil {
		writeError(w, http.StatusServiceUnavailable, apperr.EInternal, "statistics are disabled")
		return
	}

	stats, err := h.stats.CycleStats(r.Context(), mux.Vars(r)["cycleId"])
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
