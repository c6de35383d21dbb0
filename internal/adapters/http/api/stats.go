package api

import (
	"context"
	"net/http"

	"github.com/okian/teammate/internal/domain/types"
)

// StatsProvider reports service statistics and the strategy in use.
type StatsProvider interface {
	GetStats(ctx context.Context) types.Stats
	StrategyInfo() types.StrategyInfo
}

// StatsHandler handles stats requests.
type StatsHandler struct {
	statsProvider StatsProvider
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(statsProvider StatsProvider) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider}
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.statsProvider.GetStats(r.Context()))
}

// HandleStrategy handles GET /strategy requests.
func (h *StatsHandler) HandleStrategy(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.statsProvider.StrategyInfo())
}
