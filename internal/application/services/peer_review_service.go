package services

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"github.com/wahealth/sca-simulator/internal/domain/entities"
	"github.com/wahealth/sca-simulator/internal/domain/providers"
	"github.com/wahealth/sca-simulator/internal/domain/repositories"
	"github.com/wahealth/sca-simulator/internal/infrastructure/observability"
	apperrors "github.com/wahealth/sca-simulator/pkg/errors"
)

const (
	sharedListCacheKey = "consultations:shared"
	sharedListCacheTTL = 60 // seconds
)

// PeerReviewService handles sharing consultations and peer comments
type PeerReviewService struct {
	consultationRepo repositories.ConsultationRepository
	commentRepo      repositories.PeerCommentRepository
	cache            providers.CacheProvider
	metrics          *observability.Metrics
}

// NewPeerReviewService creates a new peer review service
func NewPeerReviewService(
	consultationRepo repositories.ConsultationRepository,
	commentRepo repositories.PeerCommentRepository,
	cache providers.CacheProvider,
	metrics *observability.Metrics,
) *PeerReviewService {
	return &PeerReviewService{
		consultationRepo: consultationRepo,
		commentRepo:      commentRepo,
		cache:            cache,
		metrics:          metrics,
	}
}

// SetShared shares or unshares a consultation. Idempotent. Unsharing leaves
// existing comments in place.
func (s *PeerReviewService) SetShared(ctx context.Context, consultationID string, shared bool) error {
	if err := s.consultationRepo.SetShared(ctx, consultationID, shared); err != nil {
		return err
	}
	s.invalidateSharedList(ctx)
	return nil
}

// ListShared returns all shared consultations, newest first, via cache
func (s *PeerReviewService) ListShared(ctx context.Context) ([]entities.ConsultationSummary, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, sharedListCacheKey); err == nil {
			var summaries []entities.ConsultationSummary
			if err := json.Unmarshal(cached, &summaries); err == nil {
				if s.metrics != nil {
					observability.RecordCacheHit(ctx, s.metrics, sharedListCacheKey)
				}
				return summaries, nil
			}
		}
		if s.metrics != nil {
			observability.RecordCacheMiss(ctx, s.metrics, sharedListCacheKey)
		}
	}

	summaries, err := s.consultationRepo.ListShared(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(summaries); err == nil {
			if err := s.cache.Set(ctx, sharedListCacheKey, data, sharedListCacheTTL); err != nil {
				log.Printf("Warning: Failed to cache shared consultations: %v", err)
			}
		}
	}

	return summaries, nil
}

// History returns a user's consultations, newest first
func (s *PeerReviewService) History(ctx context.Context, userID string) ([]entities.ConsultationSummary, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperrors.NewValidationError("user_id is required")
	}
	return s.consultationRepo.ListByUser(ctx, userID)
}

// GetConsultation retrieves one consultation by id, annotated with its
// comment count
func (s *PeerReviewService) GetConsultation(ctx context.Context, id string) (*entities.Consultation, error) {
	consultation, err := s.consultationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	count, err := s.commentRepo.CountByConsultation(ctx, id)
	if err != nil {
		return nil, err
	}
	consultation.CommentCount = count

	return consultation, nil
}

// AddComment appends a comment to a shared consultation
func (s *PeerReviewService) AddComment(ctx context.Context, comment *entities.PeerComment) error {
	if strings.TrimSpace(comment.UserID) == "" {
		return apperrors.NewValidationError("user_id is required")
	}
	body := strings.TrimSpace(comment.Comment)
	if body == "" {
		return apperrors.NewValidationError("comment is required")
	}
	if len(body) > entities.MaxCommentLength {
		return apperrors.NewValidationError("comment exceeds 300 characters")
	}
	comment.Comment = body

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return err
	}

	// Comment counts are baked into the cached shared list.
	s.invalidateSharedList(ctx)
	return nil
}

// ListComments returns a shared consultation's comments in creation order.
// The consultation must exist; comments on an unshared consultation remain
// readable.
func (s *PeerReviewService) ListComments(ctx context.Context, consultationID string) ([]entities.CommentView, error) {
	if _, err := s.consultationRepo.GetByID(ctx, consultationID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByConsultation(ctx, consultationID)
}

// AttachRecording sets the audio recording reference and duration on an
// existing consultation
func (s *PeerReviewService) AttachRecording(ctx context.Context, consultationID, audioRecording string, durationSeconds int) error {
	if strings.TrimSpace(audioRecording) == "" {
		return apperrors.NewValidationError("audio_recording is required")
	}
	if durationSeconds < 0 {
		return apperrors.NewValidationError("duration_seconds must not be negative")
	}

	if err := s.consultationRepo.SetRecording(ctx, consultationID, audioRecording, durationSeconds); err != nil {
		return err
	}
	s.invalidateSharedList(ctx)
	return nil
}

func (s *PeerReviewService) invalidateSharedList(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, sharedListCacheKey); err != nil {
		log.Printf("Warning: Failed to invalidate shared consultations cache: %v", err)
	}
}
