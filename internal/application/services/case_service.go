package services

import (
	"context"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/wahealth/sca-simulator/internal/domain/entities"
	"github.com/wahealth/sca-simulator/internal/domain/providers"
	"github.com/wahealth/sca-simulator/internal/domain/repositories"
	apperrors "github.com/wahealth/sca-simulator/pkg/errors"
)

// fallbackGeneratedCase is returned when the case generator is unavailable
// or produces an unusable payload, so the endpoint always yields a case.
var fallbackGeneratedCase = entities.GeneratedCase{
	Name:       "James",
	Age:        45,
	Presenting: "Persistent lower back pain for the last three weeks",
	Context:    "Office worker, no previous episodes, worried about needing time off work.",
}

// CaseService handles business logic for patient cases
type CaseService struct {
	repo       repositories.CaseRepository
	searchRepo repositories.CaseSearchRepository
	generator  providers.CaseGenerator
}

// NewCaseService creates a new case service
func NewCaseService(repo repositories.CaseRepository, searchRepo repositories.CaseSearchRepository, generator providers.CaseGenerator) *CaseService {
	return &CaseService{
		repo:       repo,
		searchRepo: searchRepo,
		generator:  generator,
	}
}

// Create validates and creates a case with all its child records, then
// indexes it for search
func (s *CaseService) Create(ctx context.Context, c *entities.Case) error {
	if err := validateCase(c); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return err
	}

	if s.searchRepo != nil {
		if err := s.searchRepo.Index(ctx, c); err != nil {
			// Log error but don't fail the request (eventual consistency)
			log.Printf("Warning: Failed to index case %s: %v", c.ID, err)
		}
	}

	return nil
}

// GetByID retrieves a case with all children populated
func (s *CaseService) GetByID(ctx context.Context, id string) (*entities.Case, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByCaseNumber retrieves a case by its exact case number
func (s *CaseService) GetByCaseNumber(ctx context.Context, caseNumber string) (*entities.Case, error) {
	return s.repo.GetByCaseNumber(ctx, caseNumber)
}

// List retrieves case summaries, newest first
func (s *CaseService) List(ctx context.Context, filter repositories.CaseFilter) ([]entities.CaseSummary, error) {
	return s.repo.List(ctx, filter)
}

// GetDoctorInfo retrieves the trainee briefing for a case
func (s *CaseService) GetDoctorInfo(ctx context.Context, caseID string) (*entities.DoctorInfo, error) {
	return s.repo.GetDoctorInfo(ctx, caseID)
}

// UpsertDoctorInfo attaches or replaces the trainee briefing on a case
func (s *CaseService) UpsertDoctorInfo(ctx context.Context, info *entities.DoctorInfo) error {
	if strings.TrimSpace(info.CaseID) == "" {
		return apperrors.NewValidationError("case_id is required")
	}
	if strings.TrimSpace(info.Name) == "" {
		return apperrors.NewValidationError("name is required")
	}
	return s.repo.UpsertDoctorInfo(ctx, info)
}

// Delete removes a case, its child rows and its search document
func (s *CaseService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if s.searchRepo != nil {
		if err := s.searchRepo.Delete(ctx, id); err != nil {
			log.Printf("Warning: Failed to delete case from index %s: %v", id, err)
		}
	}

	return nil
}

// Search finds cases matching the query. Requires the search backend; callers
// get a validation error when it is not configured.
func (s *CaseService) Search(ctx context.Context, query string, limit int) ([]entities.CaseSummary, error) {
	if strings.TrimSpace(query) == "" {
		return nil, apperrors.NewValidationError("query is required")
	}
	if s.searchRepo == nil {
		return nil, apperrors.NewValidationError("case search is not available")
	}
	return s.searchRepo.Search(ctx, query, limit)
}

// Generate synthesizes a new case outline, persists it under a generated case
// number with a trainee briefing, and returns the stored case. Generator
// failures fall back to a fixed placeholder outline rather than surfacing an
// error; only persistence failures do.
func (s *CaseService) Generate(ctx context.Context) (*entities.Case, error) {
	outline := fallbackGeneratedCase
	if s.generator != nil {
		generated, err := s.generator.GenerateCase(ctx)
		if err != nil {
			log.Printf("Warning: case generation failed, using fallback: %v", err)
		} else {
			outline = *generated
		}
	}

	age := outline.Age
	c := &entities.Case{
		CaseNumber:          generatedCaseNumber(),
		PatientName:         outline.Name,
		PatientAge:          &age,
		PresentingComplaint: outline.Presenting,
		Notes:               outline.Context,
		DoctorInfo: &entities.DoctorInfo{
			Name:    outline.Name,
			Age:     &age,
			Context: outline.Context,
		},
	}
	if err := s.Create(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func generatedCaseNumber() string {
	return "GEN-" + strings.ToUpper(uuid.NewString()[:8])
}

func validateCase(c *entities.Case) error {
	if strings.TrimSpace(c.CaseNumber) == "" {
		return apperrors.NewValidationError("case_number is required")
	}
	if strings.TrimSpace(c.PresentingComplaint) == "" {
		return apperrors.NewValidationError("presenting_complaint is required")
	}
	if c.PatientGender != "" && !c.PatientGender.Valid() {
		return apperrors.NewValidationError("patient_gender must be MALE, FEMALE or OTHER")
	}

	for _, entry := range c.ICEEntries {
		if !entry.ICEType.Valid() {
			return apperrors.NewValidationError("ice_type must be IDEA, CONCERN, EXPECTATION or MIXED")
		}
		if strings.TrimSpace(entry.Description) == "" {
			return apperrors.NewValidationError("ice entry description is required")
		}
	}
	for _, detail := range c.BackgroundDetails {
		if strings.TrimSpace(detail.Detail) == "" {
			return apperrors.NewValidationError("background detail is required")
		}
	}
	for _, info := range c.InformationDivulged {
		if !info.DivulgenceType.Valid() {
			return apperrors.NewValidationError("divulgence_type must be FREELY_DIVULGED or SPECIFICALLY_ASKED")
		}
		if strings.TrimSpace(info.Description) == "" {
			return apperrors.NewValidationError("divulged information description is required")
		}
	}
	if c.DoctorInfo != nil && strings.TrimSpace(c.DoctorInfo.Name) == "" {
		return apperrors.NewValidationError("doctor info name is required")
	}

	return nil
}
