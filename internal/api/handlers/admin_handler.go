package handlers

import (
	"context"
	"net/http"

	"github.com/wahealth/sca-simulator/internal/domain/repositories"
)

// StatsProvider returns dashboard counters
type StatsProvider interface {
	Stats(ctx context.Context) (*repositories.Stats, error)
}

// EvaluatorProbe checks evaluator connectivity
type EvaluatorProbe interface {
	ListModels(ctx context.Context) error
	Model() string
}

// CallProbe checks voice-provider connectivity
type CallProbe interface {
	Healthy(ctx context.Context) error
}

// AdminHandler handles admin dashboard requests
type AdminHandler struct {
	stats     StatsProvider
	evaluator EvaluatorProbe
	calls     CallProbe
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(stats StatsProvider, evaluator EvaluatorProbe, calls CallProbe) *AdminHandler {
	return &AdminHandler{
		stats:     stats,
		evaluator: evaluator,
		calls:     calls,
	}
}

// GetStats handles GET /api/admin/stats
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Stats(r.Context())
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, stats)
}

// TestOpenAI handles GET /api/admin/test-openai
func (h *AdminHandler) TestOpenAI(w http.ResponseWriter, r *http.Request) {
	if h.evaluator == nil {
		respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"configured": false,
			"status":     "not configured",
		})
		return
	}

	if err := h.evaluator.ListModels(r.Context()); err != nil {
		respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"configured": true,
			"status":     "unreachable",
			"error":      err.Error(),
		})
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"configured": true,
		"status":     "ok",
		"model":      h.evaluator.Model(),
	})
}

// TestVapi handles GET /api/admin/test-vapi
func (h *AdminHandler) TestVapi(w http.ResponseWriter, r *http.Request) {
	if h.calls == nil {
		respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"configured": false,
			"status":     "not configured",
		})
		return
	}

	if err := h.calls.Healthy(r.Context()); err != nil {
		respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"configured": true,
			"status":     "unreachable",
			"error":      err.Error(),
		})
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"configured": true,
		"status":     "ok",
	})
}
