package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wahealth/sca-simulator/internal/domain/entities"
	apperrors "github.com/wahealth/sca-simulator/pkg/errors"
)

type fakeGenerator struct {
	generated *entities.GeneratedCase
	err       error
}

func (g *fakeGenerator) GenerateCase(ctx context.Context) (*entities.GeneratedCase, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.generated, nil
}

func TestCaseService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a valid case", func(t *testing.T) {
		repo := newFakeCaseRepo()
		service := NewCaseService(repo, nil, nil)

		err := service.Create(ctx, &entities.Case{
			CaseNumber:          "SCA-001",
			PresentingComplaint: "Chest pain",
			ICEEntries: []entities.ICEEntry{
				{ICEType: entities.ICETypeConcern, Description: "worried about heart"},
			},
		})

		require.NoError(t, err)
		assert.Len(t, repo.created, 1)
	})

	t.Run("rejects a missing case number", func(t *testing.T) {
		service := NewCaseService(newFakeCaseRepo(), nil, nil)

		err := service.Create(ctx, &entities.Case{PresentingComplaint: "Chest pain"})

		require.Error(t, err)
		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)
	})

	t.Run("rejects an unknown ice type", func(t *testing.T) {
		service := NewCaseService(newFakeCaseRepo(), nil, nil)

		err := service.Create(ctx, &entities.Case{
			CaseNumber:          "SCA-001",
			PresentingComplaint: "Chest pain",
			ICEEntries: []entities.ICEEntry{
				{ICEType: "WORRY", Description: "x"},
			},
		})

		require.Error(t, err)
	})

	t.Run("surfaces duplicate case numbers as conflicts", func(t *testing.T) {
		repo := newFakeCaseRepo()
		service := NewCaseService(repo, nil, nil)

		c := entities.Case{CaseNumber: "SCA-001", PresentingComplaint: "Chest pain"}
		require.NoError(t, service.Create(ctx, &c))

		dup := entities.Case{CaseNumber: "SCA-001", PresentingComplaint: "Chest pain"}
		err := service.Create(ctx, &dup)
		require.Error(t, err)
		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrorTypeConflict, appErr.Type)
	})
}

func TestCaseService_Generate(t *testing.T) {
	ctx := context.Background()

	t.Run("persists and returns the generated case", func(t *testing.T) {
		repo := newFakeCaseRepo()
		service := NewCaseService(repo, nil, &fakeGenerator{
			generated: &entities.GeneratedCase{Name: "Amara", Age: 33, Presenting: "fatigue", Context: "new mother"},
		})

		generated, err := service.Generate(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Amara", generated.PatientName)
		assert.Equal(t, "fatigue", generated.PresentingComplaint)
		assert.NotEmpty(t, generated.CaseNumber)
		require.NotNil(t, generated.DoctorInfo)
		assert.Equal(t, "Amara", generated.DoctorInfo.Name)
		assert.Len(t, repo.created, 1)
	})

	t.Run("falls back when the generator fails", func(t *testing.T) {
		repo := newFakeCaseRepo()
		service := NewCaseService(repo, nil, &fakeGenerator{
			err: apperrors.NewExternalError("generator unavailable", nil),
		})

		generated, err := service.Generate(ctx)
		require.NoError(t, err)
		assert.Equal(t, "James", generated.PatientName)
		require.NotNil(t, generated.PatientAge)
		assert.Equal(t, 45, *generated.PatientAge)
		assert.Len(t, repo.created, 1)
	})

	t.Run("falls back when no generator is configured", func(t *testing.T) {
		service := NewCaseService(newFakeCaseRepo(), nil, nil)

		generated, err := service.Generate(ctx)
		require.NoError(t, err)
		assert.Equal(t, "James", generated.PatientName)
	})

	t.Run("generated case numbers do not collide", func(t *testing.T) {
		repo := newFakeCaseRepo()
		service := NewCaseService(repo, nil, nil)

		first, err := service.Generate(ctx)
		require.NoError(t, err)
		second, err := service.Generate(ctx)
		require.NoError(t, err)
		assert.NotEqual(t, first.CaseNumber, second.CaseNumber)
	})
}

func TestCaseService_Search(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects a blank query", func(t *testing.T) {
		service := NewCaseService(newFakeCaseRepo(), nil, nil)
		_, err := service.Search(ctx, "  ", 10)
		require.Error(t, err)
	})

	t.Run("errors when search is not configured", func(t *testing.T) {
		service := NewCaseService(newFakeCaseRepo(), nil, nil)
		_, err := service.Search(ctx, "chest pain", 10)
		require.Error(t, err)
	})
}
