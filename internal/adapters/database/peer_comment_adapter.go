package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/wahealth/sca-simulator/internal/domain/entities"
	"github.com/wahealth/sca-simulator/internal/domain/repositories"
	"github.com/wahealth/sca-simulator/internal/infrastructure/clients/postgres"
	apperrors "github.com/wahealth/sca-simulator/pkg/errors"
)

// PeerCommentAdapter implements the PeerCommentRepository interface
type PeerCommentAdapter struct {
	client *postgres.Client
}

// NewPeerCommentAdapter creates a new peer comment adapter
func NewPeerCommentAdapter(client *postgres.Client) repositories.PeerCommentRepository {
	return &PeerCommentAdapter{client: client}
}

// Create appends a comment. The INSERT selects its values through the parent
// consultation row filtered on is_shared, so the share gate and the insert
// are a single statement and a concurrent unshare cannot slip between them.
func (a *PeerCommentAdapter) Create(ctx context.Context, comment *entities.PeerComment) error {
	now := time.Now()
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	comment.CreatedAt = now
	comment.UpdatedAt = now

	result, err := a.client.DB().ExecContext(ctx, `
		INSERT INTO peer_comments (id, consultation_id, user_id, comment, created_at, updated_at)
		SELECT $1, c.id, $3, $4, $5, $6
		FROM consultations c
		WHERE c.id = $2 AND c.is_shared = true
	`,
		comment.ID,
		comment.ConsultationID,
		comment.UserID,
		comment.Comment,
		comment.CreatedAt,
		comment.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			if pqErr.Constraint == "peer_comments_user_id_fkey" {
				return apperrors.NewNotFoundError(fmt.Sprintf("user with id %s not found", comment.UserID))
			}
			return apperrors.NewNotFoundError(fmt.Sprintf("consultation with id %s not found", comment.ConsultationID))
		}
		return apperrors.NewInternalError("failed to create comment", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to check insert result", err)
	}
	if affected == 0 {
		// Distinguish a missing consultation from an unshared one.
		var exists bool
		err := a.client.DB().QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM consultations WHERE id = $1)`,
			comment.ConsultationID,
		).Scan(&exists)
		if err != nil {
			return apperrors.NewInternalError("failed to check consultation", err)
		}
		if !exists {
			return apperrors.NewNotFoundError(fmt.Sprintf("consultation with id %s not found", comment.ConsultationID))
		}
		return apperrors.NewForbiddenError("consultation is not shared")
	}

	return nil
}

// ListByConsultation returns comments in creation order with display names
// resolved. Comments from unknown users fall back to "Anonymous".
func (a *PeerCommentAdapter) ListByConsultation(ctx context.Context, consultationID string) ([]entities.CommentView, error) {
	rows, err := a.client.DB().QueryContext(ctx, `
		SELECT pc.id, pc.user_id, u.first_name, u.last_name, pc.comment, pc.created_at
		FROM peer_comments pc
		LEFT JOIN users u ON u.id = pc.user_id
		WHERE pc.consultation_id = $1
		ORDER BY pc.created_at
	`, consultationID)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list comments", err)
	}
	defer rows.Close()

	comments := []entities.CommentView{}
	for rows.Next() {
		var view entities.CommentView
		var firstName, lastName sql.NullString

		if err := rows.Scan(&view.ID, &view.UserID, &firstName, &lastName, &view.Comment, &view.CreatedAt); err != nil {
			return nil, apperrors.NewInternalError("failed to scan comment", err)
		}

		view.Username = displayName(firstName.String, lastName.String)
		comments = append(comments, view)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate comments", err)
	}

	return comments, nil
}

// CountByConsultation returns the number of comments on a consultation
func (a *PeerCommentAdapter) CountByConsultation(ctx context.Context, consultationID string) (int, error) {
	var count int
	err := a.client.DB().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM peer_comments WHERE consultation_id = $1`,
		consultationID,
	).Scan(&count)
	if err != nil {
		return 0, apperrors.NewInternalError("failed to count comments", err)
	}
	return count, nil
}

func displayName(firstName, lastName string) string {
	switch {
	case firstName != "" && lastName != "":
		return firstName + " " + lastName
	case firstName != "":
		return firstName
	case lastName != "":
		return lastName
	default:
		return "Anonymous"
	}
}
