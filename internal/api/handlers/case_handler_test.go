package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wahealth/sca-simulator/internal/domain/entities"
	"github.com/wahealth/sca-simulator/internal/domain/repositories"
	apperrors "github.com/wahealth/sca-simulator/pkg/errors"
)

type stubCaseService struct {
	createErr error
	cases     map[string]*entities.Case
	summaries []entities.CaseSummary
	generated *entities.Case
}

func (s *stubCaseService) Create(ctx context.Context, c *entities.Case) error {
	if s.createErr != nil {
		return s.createErr
	}
	c.ID = "case-1"
	return nil
}

func (s *stubCaseService) GetByID(ctx context.Context, id string) (*entities.Case, error) {
	if c, ok := s.cases[id]; ok {
		return c, nil
	}
	return nil, apperrors.NewNotFoundError("case not found")
}

func (s *stubCaseService) List(ctx context.Context, filter repositories.CaseFilter) ([]entities.CaseSummary, error) {
	return s.summaries, nil
}

func (s *stubCaseService) GetDoctorInfo(ctx context.Context, caseID string) (*entities.DoctorInfo, error) {
	return nil, apperrors.NewNotFoundError("doctor info not found")
}

func (s *stubCaseService) UpsertDoctorInfo(ctx context.Context, info *entities.DoctorInfo) error {
	return nil
}

func (s *stubCaseService) Delete(ctx context.Context, id string) error { return nil }

func (s *stubCaseService) Search(ctx context.Context, query string, limit int) ([]entities.CaseSummary, error) {
	return s.summaries, nil
}

func (s *stubCaseService) Generate(ctx context.Context) (*entities.Case, error) {
	return s.generated, nil
}

func newCaseMux(h *CaseHandler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/cases", h.CreateCase)
	mux.HandleFunc("GET /api/cases", h.ListCases)
	mux.HandleFunc("GET /api/cases/search", h.SearchCases)
	mux.HandleFunc("POST /api/cases/generate", h.GenerateCase)
	mux.HandleFunc("GET /api/cases/{id}", h.GetCase)
	return mux
}

func TestCreateCase(t *testing.T) {
	t.Run("returns 201 with the created case", func(t *testing.T) {
		handler := NewCaseHandler(&stubCaseService{}, false)
		mux := newCaseMux(handler)

		body := `{"case_number": "SCA-001", "presenting_complaint": "Chest pain"}`
		req := httptest.NewRequest(http.MethodPost, "/api/cases", strings.NewReader(body))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		var c entities.Case
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))
		assert.Equal(t, "case-1", c.ID)
	})

	t.Run("maps duplicate case numbers to 409", func(t *testing.T) {
		handler := NewCaseHandler(&stubCaseService{createErr: apperrors.NewConflictError("case number SCA-001 already exists")}, false)
		mux := newCaseMux(handler)

		req := httptest.NewRequest(http.MethodPost, "/api/cases", strings.NewReader(`{"case_number": "SCA-001"}`))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("rejects malformed bodies with 400", func(t *testing.T) {
		handler := NewCaseHandler(&stubCaseService{}, false)
		mux := newCaseMux(handler)

		req := httptest.NewRequest(http.MethodPost, "/api/cases", strings.NewReader(`{not json`))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetCase(t *testing.T) {
	handler := NewCaseHandler(&stubCaseService{
		cases: map[string]*entities.Case{
			"case-1": {ID: "case-1", CaseNumber: "SCA-001", PresentingComplaint: "Chest pain"},
		},
	}, false)
	mux := newCaseMux(handler)

	t.Run("returns the case", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/cases/case-1", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("returns 404 for an unknown id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/cases/missing", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestSearchCases(t *testing.T) {
	t.Run("returns 503 when search is not configured", func(t *testing.T) {
		handler := NewCaseHandler(&stubCaseService{}, false)
		mux := newCaseMux(handler)

		req := httptest.NewRequest(http.MethodGet, "/api/cases/search?q=chest", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("returns matches when enabled", func(t *testing.T) {
		handler := NewCaseHandler(&stubCaseService{
			summaries: []entities.CaseSummary{{ID: "case-1", CaseNumber: "SCA-001"}},
		}, true)
		mux := newCaseMux(handler)

		req := httptest.NewRequest(http.MethodGet, "/api/cases/search?q=chest", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "SCA-001")
	})
}

func TestGenerateCase(t *testing.T) {
	handler := NewCaseHandler(&stubCaseService{
		generated: &entities.Case{
			ID:                  "case-9",
			CaseNumber:          "GEN-1A2B3C4D",
			PatientName:         "James",
			PresentingComplaint: "back pain",
		},
	}, false)
	mux := newCaseMux(handler)

	req := httptest.NewRequest(http.MethodPost, "/api/cases/generate", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	var generated entities.Case
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &generated))
	assert.Equal(t, "James", generated.PatientName)
	assert.Equal(t, "GEN-1A2B3C4D", generated.CaseNumber)
}
