package services

import (
	"context"
	"strings"

	"github.com/wahealth/sca-simulator/internal/domain/entities"
	"github.com/wahealth/sca-simulator/internal/domain/providers"
	"github.com/wahealth/sca-simulator/internal/domain/repositories"
	apperrors "github.com/wahealth/sca-simulator/pkg/errors"
)

// ScoreRequest is the input to the scoring workflow. CaseDetails seeds a new
// case when no case with the given number exists yet.
type ScoreRequest struct {
	UserID      string
	CaseNumber  string
	Transcript  string
	CaseDetails *entities.Case
}

// ScoreResponse is the scoring result together with the persisted
// consultation's id, so a caller can subsequently attach an audio recording.
type ScoreResponse struct {
	ConsultationID string                  `json:"consultation_id"`
	Result         *entities.ScoringResult `json:"result"`
}

// ScoringService orchestrates the consultation scoring workflow
type ScoringService struct {
	caseRepo         repositories.CaseRepository
	consultationRepo repositories.ConsultationRepository
	scorer           providers.ConsultationScorer
}

// NewScoringService creates a new scoring service
func NewScoringService(
	caseRepo repositories.CaseRepository,
	consultationRepo repositories.ConsultationRepository,
	scorer providers.ConsultationScorer,
) *ScoringService {
	return &ScoringService{
		caseRepo:         caseRepo,
		consultationRepo: consultationRepo,
		scorer:           scorer,
	}
}

// Score resolves the case, evaluates the transcript and appends a new
// consultation row. Re-scoring the same transcript always appends; existing
// rows are never overwritten.
func (s *ScoringService) Score(ctx context.Context, req ScoreRequest) (*ScoreResponse, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return nil, apperrors.NewValidationError("user_id is required")
	}
	if strings.TrimSpace(req.CaseNumber) == "" {
		return nil, apperrors.NewValidationError("case_number is required")
	}
	if strings.TrimSpace(req.Transcript) == "" {
		return nil, apperrors.NewValidationError("transcript is required")
	}
	if s.scorer == nil {
		return nil, apperrors.NewExternalError("scoring is not available", nil)
	}

	c, err := s.findOrCreateCase(ctx, req)
	if err != nil {
		return nil, err
	}

	result, err := s.scorer.ScoreConsultation(ctx, req.Transcript, c)
	if err != nil {
		return nil, err
	}

	consultation := &entities.Consultation{
		UserID:           req.UserID,
		CaseID:           c.ID,
		Transcript:       req.Transcript,
		OverallScore:     result.OverallScore,
		Feedback:         result.Feedback,
		IsShared:         false,
		DomainScores:     result.Scores,
		CoverageAnalysis: result.CoverageAnalysis,
	}
	if err := s.consultationRepo.Create(ctx, consultation); err != nil {
		return nil, err
	}

	return &ScoreResponse{
		ConsultationID: consultation.ID,
		Result:         result,
	}, nil
}

// findOrCreateCase resolves the case by exact case number, creating it from
// the inline details when absent.
func (s *ScoringService) findOrCreateCase(ctx context.Context, req ScoreRequest) (*entities.Case, error) {
	c, err := s.caseRepo.GetByCaseNumber(ctx, req.CaseNumber)
	if err == nil {
		return c, nil
	}

	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Type != apperrors.ErrorTypeNotFound {
		return nil, err
	}

	if req.CaseDetails == nil {
		return nil, apperrors.NewNotFoundError("case not found and no case details provided")
	}

	newCase := *req.CaseDetails
	newCase.CaseNumber = req.CaseNumber
	if err := validateCase(&newCase); err != nil {
		return nil, err
	}
	if err := s.caseRepo.Create(ctx, &newCase); err != nil {
		// A concurrent scorer may have created the case in the meantime.
		if appErr, ok := apperrors.AsAppError(err); ok && appErr.Type == apperrors.ErrorTypeConflict {
			return s.caseRepo.GetByCaseNumber(ctx, req.CaseNumber)
		}
		return nil, err
	}

	return &newCase, nil
}
