package repositories

import (
	"context"

	"github.com/wahealth/sca-simulator/internal/domain/entities"
)

// ConsultationRepository defines the interface for consultation data operations
type ConsultationRepository interface {
	// Create appends a new consultation row
	Create(ctx context.Context, consultation *entities.Consultation) error

	// GetByID retrieves a consultation by ID
	GetByID(ctx context.Context, id string) (*entities.Consultation, error)

	// SetShared sets the shared flag. Idempotent; last writer wins under
	// concurrency.
	SetShared(ctx context.Context, id string, shared bool) error

	// SetRecording attaches an audio recording reference and duration
	SetRecording(ctx context.Context, id string, audioRecording string, durationSeconds int) error

	// ListByUser returns a user's consultations annotated with case summary
	// and comment count, newest first
	ListByUser(ctx context.Context, userID string) ([]entities.ConsultationSummary, error)

	// ListShared returns all shared consultations annotated the same way,
	// newest first
	ListShared(ctx context.Context) ([]entities.ConsultationSummary, error)
}

// PeerCommentRepository defines the interface for peer comment operations
type PeerCommentRepository interface {
	// Create appends a comment. The shared-flag gate is enforced inside the
	// insert so a concurrent unshare cannot race the check; a forbidden
	// error is returned when the parent is not shared.
	Create(ctx context.Context, comment *entities.PeerComment) error

	// ListByConsultation returns comments in creation order with commenter
	// display names resolved ("Anonymous" when the user is unknown)
	ListByConsultation(ctx context.Context, consultationID string) ([]entities.CommentView, error)

	// CountByConsultation returns the number of comments on a consultation
	CountByConsultation(ctx context.Context, consultationID string) (int, error)
}
