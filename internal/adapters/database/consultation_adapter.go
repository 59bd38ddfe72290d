package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/wahealth/sca-simulator/internal/domain/entities"
	"github.com/wahealth/sca-simulator/internal/domain/repositories"
	"github.com/wahealth/sca-simulator/internal/infrastructure/clients/postgres"
	apperrors "github.com/wahealth/sca-simulator/pkg/errors"
)

// ConsultationAdapter implements the ConsultationRepository interface. Domain
// scores and coverage analysis are stored as JSONB documents alongside the
// scalar columns used for listing and sorting.
type ConsultationAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewConsultationAdapter creates a new consultation adapter
func NewConsultationAdapter(client *postgres.Client) repositories.ConsultationRepository {
	return &ConsultationAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create appends a new consultation row
func (a *ConsultationAdapter) Create(ctx context.Context, consultation *entities.Consultation) error {
	now := time.Now()
	if consultation.ID == "" {
		consultation.ID = uuid.NewString()
	}
	consultation.CreatedAt = now
	consultation.UpdatedAt = now

	scoresJSON, err := json.Marshal(consultation.DomainScores)
	if err != nil {
		return apperrors.NewInternalError("failed to encode domain scores", err)
	}
	coverageJSON, err := json.Marshal(consultation.CoverageAnalysis)
	if err != nil {
		return apperrors.NewInternalError("failed to encode coverage analysis", err)
	}

	record := goqu.Record{
		"id":                consultation.ID,
		"user_id":           consultation.UserID,
		"case_id":           consultation.CaseID,
		"transcript":        consultation.Transcript,
		"overall_score":     consultation.OverallScore,
		"feedback":          consultation.Feedback,
		"is_shared":         consultation.IsShared,
		"domain_scores":     string(scoresJSON),
		"coverage_analysis": string(coverageJSON),
		"audio_recording":   consultation.AudioRecording,
		"duration_seconds":  consultation.DurationSeconds,
		"created_at":        consultation.CreatedAt,
		"updated_at":        consultation.UpdatedAt,
	}

	query, args, err := a.db.Insert("consultations").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			if pqErr.Constraint == "consultations_user_id_fkey" {
				return apperrors.NewNotFoundError(fmt.Sprintf("user with id %s not found", consultation.UserID))
			}
			return apperrors.NewNotFoundError(fmt.Sprintf("case with id %s not found", consultation.CaseID))
		}
		return apperrors.NewInternalError("failed to create consultation", err)
	}

	return nil
}

// GetByID retrieves a consultation by ID
func (a *ConsultationAdapter) GetByID(ctx context.Context, id string) (*entities.Consultation, error) {
	consultation := &entities.Consultation{}
	var scoresJSON, coverageJSON []byte
	var audioRecording sql.NullString
	var durationSeconds sql.NullInt64

	err := a.client.DB().QueryRowContext(ctx, `
		SELECT id, user_id, case_id, transcript, overall_score, feedback, is_shared,
		       domain_scores, coverage_analysis, audio_recording, duration_seconds,
		       created_at, updated_at
		FROM consultations
		WHERE id = $1
	`, id).Scan(
		&consultation.ID,
		&consultation.UserID,
		&consultation.CaseID,
		&consultation.Transcript,
		&consultation.OverallScore,
		&consultation.Feedback,
		&consultation.IsShared,
		&scoresJSON,
		&coverageJSON,
		&audioRecording,
		&durationSeconds,
		&consultation.CreatedAt,
		&consultation.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("consultation with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get consultation", err)
	}

	if err := json.Unmarshal(scoresJSON, &consultation.DomainScores); err != nil {
		return nil, apperrors.NewInternalError("failed to decode domain scores", err)
	}
	if err := json.Unmarshal(coverageJSON, &consultation.CoverageAnalysis); err != nil {
		return nil, apperrors.NewInternalError("failed to decode coverage analysis", err)
	}

	if audioRecording.Valid {
		consultation.AudioRecording = &audioRecording.String
	}
	if durationSeconds.Valid {
		v := int(durationSeconds.Int64)
		consultation.DurationSeconds = &v
	}

	return consultation, nil
}

// SetShared sets the shared flag
func (a *ConsultationAdapter) SetShared(ctx context.Context, id string, shared bool) error {
	result, err := a.client.DB().ExecContext(ctx, `
		UPDATE consultations SET is_shared = $2, updated_at = $3 WHERE id = $1
	`, id, shared, time.Now())
	if err != nil {
		return apperrors.NewInternalError("failed to update shared flag", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to check update result", err)
	}
	if affected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("consultation with id %s not found", id))
	}

	return nil
}

// SetRecording attaches an audio recording reference and duration
func (a *ConsultationAdapter) SetRecording(ctx context.Context, id string, audioRecording string, durationSeconds int) error {
	result, err := a.client.DB().ExecContext(ctx, `
		UPDATE consultations SET audio_recording = $2, duration_seconds = $3, updated_at = $4 WHERE id = $1
	`, id, audioRecording, durationSeconds, time.Now())
	if err != nil {
		return apperrors.NewInternalError("failed to attach recording", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to check update result", err)
	}
	if affected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("consultation with id %s not found", id))
	}

	return nil
}

const consultationSummaryQuery = `
	SELECT c.id, c.created_at, c.overall_score, c.feedback, c.is_shared,
	       c.domain_scores, c.audio_recording, c.duration_seconds,
	       cs.id, cs.case_number, cs.patient_name, cs.patient_age, cs.presenting_complaint, cs.notes, cs.created_at,
	       COUNT(pc.id) AS comment_count
	FROM consultations c
	JOIN cases cs ON cs.id = c.case_id
	LEFT JOIN peer_comments pc ON pc.consultation_id = c.id
`

// ListByUser returns a user's consultations annotated with case summary and
// comment count, newest first
func (a *ConsultationAdapter) ListByUser(ctx context.Context, userID string) ([]entities.ConsultationSummary, error) {
	query := consultationSummaryQuery + `
		WHERE c.user_id = $1
		GROUP BY c.id, cs.id
		ORDER BY c.created_at DESC
	`
	rows, err := a.client.DB().QueryContext(ctx, query, userID)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list consultations", err)
	}
	defer rows.Close()

	return scanSummaries(rows)
}

// ListShared returns all shared consultations, newest first
func (a *ConsultationAdapter) ListShared(ctx context.Context) ([]entities.ConsultationSummary, error) {
	query := consultationSummaryQuery + `
		WHERE c.is_shared = true
		GROUP BY c.id, cs.id
		ORDER BY c.created_at DESC
	`
	rows, err := a.client.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list shared consultations", err)
	}
	defer rows.Close()

	return scanSummaries(rows)
}

func scanSummaries(rows *sql.Rows) ([]entities.ConsultationSummary, error) {
	summaries := []entities.ConsultationSummary{}

	for rows.Next() {
		var summary entities.ConsultationSummary
		var scoresJSON []byte
		var audioRecording, patientName, notes sql.NullString
		var durationSeconds, patientAge sql.NullInt64

		err := rows.Scan(
			&summary.ID,
			&summary.Timestamp,
			&summary.OverallScore,
			&summary.Feedback,
			&summary.IsShared,
			&scoresJSON,
			&audioRecording,
			&durationSeconds,
			&summary.CaseDetails.ID,
			&summary.CaseDetails.CaseNumber,
			&patientName,
			&patientAge,
			&summary.CaseDetails.PresentingComplaint,
			&notes,
			&summary.CaseDetails.CreatedAt,
			&summary.CommentCount,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan consultation summary", err)
		}

		if err := json.Unmarshal(scoresJSON, &summary.Scores); err != nil {
			return nil, apperrors.NewInternalError("failed to decode domain scores", err)
		}

		summary.HasRecording = audioRecording.Valid && audioRecording.String != ""
		if durationSeconds.Valid {
			v := int(durationSeconds.Int64)
			summary.DurationSeconds = &v
		}
		summary.CaseDetails.PatientName = patientName.String
		summary.CaseDetails.Notes = notes.String
		if patientAge.Valid {
			age := int(patientAge.Int64)
			summary.CaseDetails.PatientAge = &age
		}

		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate consultation summaries", err)
	}

	return summaries, nil
}
