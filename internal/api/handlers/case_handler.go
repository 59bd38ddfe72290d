package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/wahealth/sca-simulator/internal/domain/entities"
	"github.com/wahealth/sca-simulator/internal/domain/repositories"
)

// CaseReader is the subset of case operations the handler needs
type CaseReader interface {
	Create(ctx context.Context, c *entities.Case) error
	GetByID(ctx context.Context, id string) (*entities.Case, error)
	List(ctx context.Context, filter repositories.CaseFilter) ([]entities.CaseSummary, error)
	GetDoctorInfo(ctx context.Context, caseID string) (*entities.DoctorInfo, error)
	UpsertDoctorInfo(ctx context.Context, info *entities.DoctorInfo) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, query string, limit int) ([]entities.CaseSummary, error)
	Generate(ctx context.Context) (*entities.Case, error)
}

// CaseHandler handles case-related HTTP requests
type CaseHandler struct {
	service       CaseReader
	searchEnabled bool
}

// NewCaseHandler creates a new case handler
func NewCaseHandler(service CaseReader, searchEnabled bool) *CaseHandler {
	return &CaseHandler{
		service:       service,
		searchEnabled: searchEnabled,
	}
}

// CreateCase handles POST /api/cases
func (h *CaseHandler) CreateCase(w http.ResponseWriter, r *http.Request) {
	var c entities.Case
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.Create(r.Context(), &c); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, c)
}

// ListCases handles GET /api/cases
func (h *CaseHandler) ListCases(w http.ResponseWriter, r *http.Request) {
	filter := repositories.CaseFilter{
		Limit:  parseIntParam(r, "limit", 100),
		Offset: parseIntParam(r, "offset", 0),
	}

	cases, err := h.service.List(r.Context(), filter)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"cases": cases,
		"count": len(cases),
	})
}

// GetCase handles GET /api/cases/{id}
func (h *CaseHandler) GetCase(w http.ResponseWriter, r *http.Request) {
	caseID := r.PathValue("id")
	if caseID == "" {
		respondWithError(w, http.StatusBadRequest, "case ID is required")
		return
	}

	c, err := h.service.GetByID(r.Context(), caseID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, c)
}

// GetDoctorInfo handles GET /api/cases/{id}/doctor_info
func (h *CaseHandler) GetDoctorInfo(w http.ResponseWriter, r *http.Request) {
	caseID := r.PathValue("id")
	if caseID == "" {
		respondWithError(w, http.StatusBadRequest, "case ID is required")
		return
	}

	info, err := h.service.GetDoctorInfo(r.Context(), caseID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, info)
}

// UpsertDoctorInfo handles PUT /api/cases/{id}/doctor_info
func (h *CaseHandler) UpsertDoctorInfo(w http.ResponseWriter, r *http.Request) {
	caseID := r.PathValue("id")
	if caseID == "" {
		respondWithError(w, http.StatusBadRequest, "case ID is required")
		return
	}

	var info entities.DoctorInfo
	if err := json.NewDecoder(r.Body).Decode(&info); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	info.CaseID = caseID

	if err := h.service.UpsertDoctorInfo(r.Context(), &info); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, info)
}

// DeleteCase handles DELETE /api/cases/{id}
func (h *CaseHandler) DeleteCase(w http.ResponseWriter, r *http.Request) {
	caseID := r.PathValue("id")
	if caseID == "" {
		respondWithError(w, http.StatusBadRequest, "case ID is required")
		return
	}

	if err := h.service.Delete(r.Context(), caseID); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// SearchCases handles GET /api/cases/search
func (h *CaseHandler) SearchCases(w http.ResponseWriter, r *http.Request) {
	if !h.searchEnabled {
		respondWithError(w, http.StatusServiceUnavailable, "case search is not available")
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		respondWithError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}

	results, err := h.service.Search(r.Context(), query, parseIntParam(r, "limit", 20))
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"cases": results,
		"count": len(results),
	})
}

// GenerateCase handles POST /api/cases/generate
func (h *CaseHandler) GenerateCase(w http.ResponseWriter, r *http.Request) {
	generated, err := h.service.Generate(r.Context())
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, generated)
}

func parseIntParam(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
