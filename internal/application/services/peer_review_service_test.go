package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wahealth/sca-simulator/internal/domain/entities"
	"github.com/wahealth/sca-simulator/internal/infrastructure/observability"
	apperrors "github.com/wahealth/sca-simulator/pkg/errors"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

type fakeCommentRepo struct {
	comments  map[string][]entities.CommentView
	sharedRef *fakeConsultationRepo
}

func newFakeCommentRepo(consultations *fakeConsultationRepo) *fakeCommentRepo {
	return &fakeCommentRepo{
		comments:  map[string][]entities.CommentView{},
		sharedRef: consultations,
	}
}

func (r *fakeCommentRepo) Create(ctx context.Context, comment *entities.PeerComment) error {
	target, err := r.sharedRef.GetByID(context.Background(), comment.ConsultationID)
	if err != nil {
		return err
	}
	if !target.IsShared {
		return apperrors.NewForbiddenError("consultation is not shared")
	}
	comment.ID = fmt.Sprintf("comment-%d", len(r.comments[comment.ConsultationID])+1)
	r.comments[comment.ConsultationID] = append(r.comments[comment.ConsultationID], entities.CommentView{
		ID:       comment.ID,
		UserID:   comment.UserID,
		Username: "Test User",
		Comment:  comment.Comment,
	})
	return nil
}

func (r *fakeCommentRepo) ListByConsultation(ctx context.Context, consultationID string) ([]entities.CommentView, error) {
	return r.comments[consultationID], nil
}

func (r *fakeCommentRepo) CountByConsultation(ctx context.Context, consultationID string) (int, error) {
	return len(r.comments[consultationID]), nil
}

type fakeCache struct {
	store   map[string][]byte
	deletes []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: map[string][]byte{}}
}

func (c *fakeCache) Get(ctx context.Context, key string) ([]byte, error) {
	if v, ok := c.store[key]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("key not found: %s", key)
}

func (c *fakeCache) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	c.store[key] = value
	return nil
}

func (c *fakeCache) Delete(ctx context.Context, key string) error {
	delete(c.store, key)
	c.deletes = append(c.deletes, key)
	return nil
}

func seedConsultation(t *testing.T, repo *fakeConsultationRepo, id string, shared bool) {
	t.Helper()
	consultation := &entities.Consultation{ID: id, UserID: "user-1", CaseID: "case-1", IsShared: shared}
	require.NoError(t, repo.Create(context.Background(), consultation))
}

func TestPeerReviewService_SetShared(t *testing.T) {
	ctx := context.Background()

	t.Run("share and unshare are idempotent", func(t *testing.T) {
		consultations := newFakeConsultationRepo()
		seedConsultation(t, consultations, "consult-1", false)
		service := NewPeerReviewService(consultations, newFakeCommentRepo(consultations), newFakeCache(), nil)

		require.NoError(t, service.SetShared(ctx, "consult-1", true))
		require.NoError(t, service.SetShared(ctx, "consult-1", true))
		assert.True(t, consultations.created[0].IsShared)

		require.NoError(t, service.SetShared(ctx, "consult-1", false))
		assert.False(t, consultations.created[0].IsShared)
	})

	t.Run("unknown consultation is not found", func(t *testing.T) {
		consultations := newFakeConsultationRepo()
		service := NewPeerReviewService(consultations, newFakeCommentRepo(consultations), newFakeCache(), nil)

		err := service.SetShared(ctx, "missing", true)
		require.Error(t, err)
		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrorTypeNotFound, appErr.Type)
	})

	t.Run("sharing invalidates the cached shared list", func(t *testing.T) {
		consultations := newFakeConsultationRepo()
		seedConsultation(t, consultations, "consult-1", false)
		cache := newFakeCache()
		service := NewPeerReviewService(consultations, newFakeCommentRepo(consultations), cache, nil)

		_, err := service.ListShared(ctx)
		require.NoError(t, err)
		require.Contains(t, cache.store, "consultations:shared")

		require.NoError(t, service.SetShared(ctx, "consult-1", true))
		assert.NotContains(t, cache.store, "consultations:shared")
	})
}

func TestPeerReviewService_AddComment(t *testing.T) {
	ctx := context.Background()

	t.Run("adds a comment to a shared consultation", func(t *testing.T) {
		consultations := newFakeConsultationRepo()
		seedConsultation(t, consultations, "consult-1", true)
		comments := newFakeCommentRepo(consultations)
		service := NewPeerReviewService(consultations, comments, newFakeCache(), nil)

		err := service.AddComment(ctx, &entities.PeerComment{
			ConsultationID: "consult-1",
			UserID:         "user-2",
			Comment:        "  Great safety-netting  ",
		})

		require.NoError(t, err)
		listed, err := service.ListComments(ctx, "consult-1")
		require.NoError(t, err)
		require.Len(t, listed, 1)
		assert.Equal(t, "Great safety-netting", listed[0].Comment)
	})

	t.Run("rejects comments on an unshared consultation", func(t *testing.T) {
		consultations := newFakeConsultationRepo()
		seedConsultation(t, consultations, "consult-1", false)
		service := NewPeerReviewService(consultations, newFakeCommentRepo(consultations), newFakeCache(), nil)

		err := service.AddComment(ctx, &entities.PeerComment{
			ConsultationID: "consult-1",
			UserID:         "user-2",
			Comment:        "hello",
		})

		require.Error(t, err)
		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrorTypeForbidden, appErr.Type)
	})

	t.Run("rejects over-length comments", func(t *testing.T) {
		consultations := newFakeConsultationRepo()
		seedConsultation(t, consultations, "consult-1", true)
		service := NewPeerReviewService(consultations, newFakeCommentRepo(consultations), newFakeCache(), nil)

		err := service.AddComment(ctx, &entities.PeerComment{
			ConsultationID: "consult-1",
			UserID:         "user-2",
			Comment:        strings.Repeat("x", entities.MaxCommentLength+1),
		})

		require.Error(t, err)
		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)
	})

	t.Run("comments survive unsharing", func(t *testing.T) {
		consultations := newFakeConsultationRepo()
		seedConsultation(t, consultations, "consult-1", true)
		comments := newFakeCommentRepo(consultations)
		service := NewPeerReviewService(consultations, comments, newFakeCache(), nil)

		require.NoError(t, service.AddComment(ctx, &entities.PeerComment{
			ConsultationID: "consult-1",
			UserID:         "user-2",
			Comment:        "before unshare",
		}))
		require.NoError(t, service.SetShared(ctx, "consult-1", false))

		listed, err := service.ListComments(ctx, "consult-1")
		require.NoError(t, err)
		assert.Len(t, listed, 1)
	})
}

func TestPeerReviewService_GetConsultation(t *testing.T) {
	ctx := context.Background()

	consultations := newFakeConsultationRepo()
	seedConsultation(t, consultations, "consult-1", true)
	comments := newFakeCommentRepo(consultations)
	service := NewPeerReviewService(consultations, comments, newFakeCache(), nil)

	require.NoError(t, service.AddComment(ctx, &entities.PeerComment{
		ConsultationID: "consult-1",
		UserID:         "user-2",
		Comment:        "good opening",
	}))
	require.NoError(t, service.AddComment(ctx, &entities.PeerComment{
		ConsultationID: "consult-1",
		UserID:         "user-3",
		Comment:        "missed a cue",
	}))

	consultation, err := service.GetConsultation(ctx, "consult-1")
	require.NoError(t, err)
	assert.Equal(t, 2, consultation.CommentCount)
}

func TestPeerReviewService_ListSharedCacheMetrics(t *testing.T) {
	ctx := context.Background()

	reader := sdkmetric.NewManualReader()
	prev := otel.GetMeterProvider()
	otel.SetMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))
	t.Cleanup(func() { otel.SetMeterProvider(prev) })

	metrics, err := observability.InitMetrics()
	require.NoError(t, err)

	consultations := newFakeConsultationRepo()
	seedConsultation(t, consultations, "consult-1", true)
	service := NewPeerReviewService(consultations, newFakeCommentRepo(consultations), newFakeCache(), metrics)

	_, err = service.ListShared(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), collectCounter(t, reader, "cache.miss.count"))

	_, err = service.ListShared(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), collectCounter(t, reader, "cache.hit.count"))
}

func TestPeerReviewService_AttachRecording(t *testing.T) {
	ctx := context.Background()

	consultations := newFakeConsultationRepo()
	seedConsultation(t, consultations, "consult-1", false)
	service := NewPeerReviewService(consultations, newFakeCommentRepo(consultations), newFakeCache(), nil)

	require.NoError(t, service.AttachRecording(ctx, "consult-1", "https://cdn.example/rec.mp3", 540))

	consultation, err := service.GetConsultation(ctx, "consult-1")
	require.NoError(t, err)
	require.NotNil(t, consultation.AudioRecording)
	assert.Equal(t, "https://cdn.example/rec.mp3", *consultation.AudioRecording)
	require.NotNil(t, consultation.DurationSeconds)
	assert.Equal(t, 540, *consultation.DurationSeconds)

	err = service.AttachRecording(ctx, "consult-1", "", 10)
	require.Error(t, err)
}
