package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wahealth/sca-simulator/internal/domain/entities"
	"github.com/wahealth/sca-simulator/internal/domain/repositories"
	apperrors "github.com/wahealth/sca-simulator/pkg/errors"
)

type fakeCaseRepo struct {
	byNumber map[string]*entities.Case
	created  []*entities.Case
}

func newFakeCaseRepo() *fakeCaseRepo {
	return &fakeCaseRepo{byNumber: map[string]*entities.Case{}}
}

func (r *fakeCaseRepo) Create(ctx context.Context, c *entities.Case) error {
	if _, ok := r.byNumber[c.CaseNumber]; ok {
		return apperrors.NewConflictError("duplicate case number")
	}
	if c.ID == "" {
		c.ID = "case-" + c.CaseNumber
	}
	r.byNumber[c.CaseNumber] = c
	r.created = append(r.created, c)
	return nil
}

func (r *fakeCaseRepo) GetByID(ctx context.Context, id string) (*entities.Case, error) {
	for _, c := range r.byNumber {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, apperrors.NewNotFoundError("case not found")
}

func (r *fakeCaseRepo) GetByCaseNumber(ctx context.Context, caseNumber string) (*entities.Case, error) {
	if c, ok := r.byNumber[caseNumber]; ok {
		return c, nil
	}
	return nil, apperrors.NewNotFoundError("case not found")
}

func (r *fakeCaseRepo) List(ctx context.Context, filter repositories.CaseFilter) ([]entities.CaseSummary, error) {
	return nil, nil
}

func (r *fakeCaseRepo) GetDoctorInfo(ctx context.Context, caseID string) (*entities.DoctorInfo, error) {
	return nil, apperrors.NewNotFoundError("doctor info not found")
}

func (r *fakeCaseRepo) UpsertDoctorInfo(ctx context.Context, info *entities.DoctorInfo) error {
	return nil
}

func (r *fakeCaseRepo) Delete(ctx context.Context, id string) error { return nil }

type fakeConsultationRepo struct {
	created []*entities.Consultation
	shared  map[string]bool
}

func newFakeConsultationRepo() *fakeConsultationRepo {
	return &fakeConsultationRepo{shared: map[string]bool{}}
}

func (r *fakeConsultationRepo) Create(ctx context.Context, consultation *entities.Consultation) error {
	if consultation.ID == "" {
		consultation.ID = fmt.Sprintf("consult-%d", len(r.created)+1)
	}
	r.created = append(r.created, consultation)
	return nil
}

func (r *fakeConsultationRepo) GetByID(ctx context.Context, id string) (*entities.Consultation, error) {
	for _, c := range r.created {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, apperrors.NewNotFoundError("consultation not found")
}

func (r *fakeConsultationRepo) SetShared(ctx context.Context, id string, shared bool) error {
	found := false
	for _, c := range r.created {
		if c.ID == id {
			c.IsShared = shared
			found = true
		}
	}
	if !found {
		return apperrors.NewNotFoundError("consultation not found")
	}
	r.shared[id] = shared
	return nil
}

func (r *fakeConsultationRepo) SetRecording(ctx context.Context, id string, audioRecording string, durationSeconds int) error {
	for _, c := range r.created {
		if c.ID == id {
			c.AudioRecording = &audioRecording
			c.DurationSeconds = &durationSeconds
			return nil
		}
	}
	return apperrors.NewNotFoundError("consultation not found")
}

func (r *fakeConsultationRepo) ListByUser(ctx context.Context, userID string) ([]entities.ConsultationSummary, error) {
	return []entities.ConsultationSummary{}, nil
}

func (r *fakeConsultationRepo) ListShared(ctx context.Context) ([]entities.ConsultationSummary, error) {
	summaries := []entities.ConsultationSummary{}
	for _, c := range r.created {
		if c.IsShared {
			summaries = append(summaries, entities.ConsultationSummary{ID: c.ID, IsShared: true})
		}
	}
	return summaries, nil
}

type fakeScorer struct {
	result *entities.ScoringResult
	err    error
	calls  int
}

func (s *fakeScorer) ScoreConsultation(ctx context.Context, transcript string, c *entities.Case) (*entities.ScoringResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func validResult() *entities.ScoringResult {
	return &entities.ScoringResult{
		Scores: entities.DomainScores{
			DataGathering:       entities.DomainScore{Score: 4},
			ClinicalManagement:  entities.DomainScore{Score: 3},
			InterpersonalSkills: entities.DomainScore{Score: 5},
		},
		OverallScore: 4.0,
		Feedback:     "Good consultation",
		Timestamp:    time.Now(),
	}
}

func TestScoringService_Score(t *testing.T) {
	ctx := context.Background()

	t.Run("scores against an existing case and appends a consultation", func(t *testing.T) {
		caseRepo := newFakeCaseRepo()
		require.NoError(t, caseRepo.Create(ctx, &entities.Case{CaseNumber: "SCA-001", PresentingComplaint: "cough"}))

		consultationRepo := newFakeConsultationRepo()
		scorer := &fakeScorer{result: validResult()}
		service := NewScoringService(caseRepo, consultationRepo, scorer)

		resp, err := service.Score(ctx, ScoreRequest{
			UserID:     "user-1",
			CaseNumber: "SCA-001",
			Transcript: "Doctor: hello",
		})

		require.NoError(t, err)
		assert.NotEmpty(t, resp.ConsultationID)
		assert.Equal(t, 4.0, resp.Result.OverallScore)
		require.Len(t, consultationRepo.created, 1)
		assert.Equal(t, "user-1", consultationRepo.created[0].UserID)
		assert.False(t, consultationRepo.created[0].IsShared)
	})

	t.Run("creates the case from inline details when absent", func(t *testing.T) {
		caseRepo := newFakeCaseRepo()
		consultationRepo := newFakeConsultationRepo()
		scorer := &fakeScorer{result: validResult()}
		service := NewScoringService(caseRepo, consultationRepo, scorer)

		_, err := service.Score(ctx, ScoreRequest{
			UserID:     "user-1",
			CaseNumber: "SCA-NEW",
			Transcript: "Doctor: hello",
			CaseDetails: &entities.Case{
				PresentingComplaint: "headache",
			},
		})

		require.NoError(t, err)
		require.Len(t, caseRepo.created, 1)
		assert.Equal(t, "SCA-NEW", caseRepo.created[0].CaseNumber)
	})

	t.Run("fails when the case is unknown and no details are given", func(t *testing.T) {
		service := NewScoringService(newFakeCaseRepo(), newFakeConsultationRepo(), &fakeScorer{result: validResult()})

		_, err := service.Score(ctx, ScoreRequest{
			UserID:     "user-1",
			CaseNumber: "SCA-MISSING",
			Transcript: "Doctor: hello",
		})

		require.Error(t, err)
		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrorTypeNotFound, appErr.Type)
	})

	t.Run("does not persist a consultation when scoring fails", func(t *testing.T) {
		caseRepo := newFakeCaseRepo()
		require.NoError(t, caseRepo.Create(ctx, &entities.Case{CaseNumber: "SCA-001", PresentingComplaint: "cough"}))

		consultationRepo := newFakeConsultationRepo()
		scorer := &fakeScorer{err: apperrors.NewExternalError("evaluator unavailable", nil)}
		service := NewScoringService(caseRepo, consultationRepo, scorer)

		_, err := service.Score(ctx, ScoreRequest{
			UserID:     "user-1",
			CaseNumber: "SCA-001",
			Transcript: "Doctor: hello",
		})

		require.Error(t, err)
		assert.Empty(t, consultationRepo.created)
	})

	t.Run("re-scoring appends a second row", func(t *testing.T) {
		caseRepo := newFakeCaseRepo()
		require.NoError(t, caseRepo.Create(ctx, &entities.Case{CaseNumber: "SCA-001", PresentingComplaint: "cough"}))

		consultationRepo := newFakeConsultationRepo()
		scorer := &fakeScorer{result: validResult()}
		service := NewScoringService(caseRepo, consultationRepo, scorer)

		req := ScoreRequest{UserID: "user-1", CaseNumber: "SCA-001", Transcript: "Doctor: hello"}
		first, err := service.Score(ctx, req)
		require.NoError(t, err)

		second, err := service.Score(ctx, req)
		require.NoError(t, err)

		assert.Len(t, consultationRepo.created, 2)
		assert.NotEqual(t, first.ConsultationID, second.ConsultationID)
	})

	t.Run("rejects a blank transcript without calling the evaluator", func(t *testing.T) {
		scorer := &fakeScorer{result: validResult()}
		service := NewScoringService(newFakeCaseRepo(), newFakeConsultationRepo(), scorer)

		_, err := service.Score(ctx, ScoreRequest{UserID: "user-1", CaseNumber: "SCA-001", Transcript: "   "})

		require.Error(t, err)
		assert.Zero(t, scorer.calls)
	})
}
