package database

import (
	"context"
	"database/sql"
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

// CaseAdapter implements the CaseRepository interface
type CaseAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewCaseAdapter creates a new case adapter
func NewCaseAdapter(client *postgres.Client) repositories.CaseRepository {
	return &CaseAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts a case and all its child rows in a single transaction. A
// duplicate case number maps to a conflict error.
func (a *CaseAdapter) Create(ctx context.Context, c *entities.Case) error {
	now := time.Now()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = now
	c.UpdatedAt = now

	tx, err := a.client.BeginTx(ctx)
	if err != nil {
		return apperrors.NewInternalError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	caseRecord := goqu.Record{
		"id":                   c.ID,
		"case_number":          c.CaseNumber,
		"patient_name":         nullableString(c.PatientName),
		"patient_age":          c.PatientAge,
		"patient_gender":       nullableString(string(c.PatientGender)),
		"presenting_complaint": c.PresentingComplaint,
		"notes":                nullableString(c.Notes),
		"created_at":           c.CreatedAt,
		"updated_at":           c.UpdatedAt,
	}

	query, args, err := a.db.Insert("cases").Rows(caseRecord).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return apperrors.NewConflictError(fmt.Sprintf("case number %s already exists", c.CaseNumber))
		}
		return apperrors.NewInternalError("failed to create case", err)
	}

	for i := range c.ICEEntries {
		entry := &c.ICEEntries[i]
		if entry.ID == "" {
			entry.ID = uuid.NewString()
		}
		entry.CaseID = c.ID
		entry.CreatedAt = now
		entry.UpdatedAt = now

		query, args, err := a.db.Insert("ice_entries").Rows(goqu.Record{
			"id":          entry.ID,
			"case_id":     entry.CaseID,
			"ice_type":    string(entry.ICEType),
			"description": entry.Description,
			"created_at":  entry.CreatedAt,
			"updated_at":  entry.UpdatedAt,
		}).ToSQL()
		if err != nil {
			return apperrors.NewInternalError("failed to build insert query", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return apperrors.NewInternalError("failed to create ice entry", err)
		}
	}

	for i := range c.BackgroundDetails {
		detail := &c.BackgroundDetails[i]
		if detail.ID == "" {
			detail.ID = uuid.NewString()
		}
		detail.CaseID = c.ID
		detail.CreatedAt = now
		detail.UpdatedAt = now

		query, args, err := a.db.Insert("background_details").Rows(goqu.Record{
			"id":         detail.ID,
			"case_id":    detail.CaseID,
			"detail":     detail.Detail,
			"created_at": detail.CreatedAt,
			"updated_at": detail.UpdatedAt,
		}).ToSQL()
		if err != nil {
			return apperrors.NewInternalError("failed to build insert query", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return apperrors.NewInternalError("failed to create background detail", err)
		}
	}

	for i := range c.InformationDivulged {
		info := &c.InformationDivulged[i]
		if info.ID == "" {
			info.ID = uuid.NewString()
		}
		info.CaseID = c.ID
		info.CreatedAt = now
		info.UpdatedAt = now

		query, args, err := a.db.Insert("information_divulged").Rows(goqu.Record{
			"id":              info.ID,
			"case_id":         info.CaseID,
			"divulgence_type": string(info.DivulgenceType),
			"description":     info.Description,
			"created_at":      info.CreatedAt,
			"updated_at":      info.UpdatedAt,
		}).ToSQL()
		if err != nil {
			return apperrors.NewInternalError("failed to build insert query", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return apperrors.NewInternalError("failed to create divulged information", err)
		}
	}

	if c.DoctorInfo != nil {
		info := c.DoctorInfo
		if info.ID == "" {
			info.ID = uuid.NewString()
		}
		info.CaseID = c.ID
		info.CreatedAt = now
		info.UpdatedAt = now

		query, args, err := a.db.Insert("doctor_info").Rows(doctorInfoRecord(info)).ToSQL()
		if err != nil {
			return apperrors.NewInternalError("failed to build insert query", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return apperrors.NewInternalError("failed to create doctor info", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewInternalError("failed to commit case", err)
	}

	return nil
}

// GetByID retrieves a case with all children populated
func (a *CaseAdapter) GetByID(ctx context.Context, id string) (*entities.Case, error) {
	return a.getOne(ctx, "id", id)
}

// GetByCaseNumber retrieves a case by its exact case number
func (a *CaseAdapter) GetByCaseNumber(ctx context.Context, caseNumber string) (*entities.Case, error) {
	return a.getOne(ctx, "case_number", caseNumber)
}

func (a *CaseAdapter) getOne(ctx context.Context, column, value string) (*entities.Case, error) {
	query := fmt.Sprintf(`
		SELECT id, case_number, patient_name, patient_age, patient_gender,
		       presenting_complaint, notes, created_at, updated_at
		FROM cases
		WHERE %s = $1
	`, column)

	c := &entities.Case{}
	var patientName, patientGender, notes sql.NullString
	var patientAge sql.NullInt64

	err := a.client.DB().QueryRowContext(ctx, query, value).Scan(
		&c.ID,
		&c.CaseNumber,
		&patientName,
		&patientAge,
		&patientGender,
		&c.PresentingComplaint,
		&notes,
		&c.CreatedAt,
		&c.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("case with %s %s not found", column, value))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get case", err)
	}

	c.PatientName = patientName.String
	c.PatientGender = entities.Gender(patientGender.String)
	c.Notes = notes.String
	if patientAge.Valid {
		age := int(patientAge.Int64)
		c.PatientAge = &age
	}

	if err := a.loadChildren(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (a *CaseAdapter) loadChildren(ctx context.Context, c *entities.Case) error {
	iceRows, err := a.client.DB().QueryContext(ctx, `
		SELECT id, case_id, ice_type, description, created_at, updated_at
		FROM ice_entries
		WHERE case_id = $1
		ORDER BY created_at
	`, c.ID)
	if err != nil {
		return apperrors.NewInternalError("failed to load ice entries", err)
	}
	defer iceRows.Close()

	for iceRows.Next() {
		var entry entities.ICEEntry
		if err := iceRows.Scan(&entry.ID, &entry.CaseID, &entry.ICEType, &entry.Description, &entry.CreatedAt, &entry.UpdatedAt); err != nil {
			return apperrors.NewInternalError("failed to scan ice entry", err)
		}
		c.ICEEntries = append(c.ICEEntries, entry)
	}
	if err := iceRows.Err(); err != nil {
		return apperrors.NewInternalError("failed to iterate ice entries", err)
	}

	bgRows, err := a.client.DB().QueryContext(ctx, `
		SELECT id, case_id, detail, created_at, updated_at
		FROM background_details
		WHERE case_id = $1
		ORDER BY created_at
	`, c.ID)
	if err != nil {
		return apperrors.NewInternalError("failed to load background details", err)
	}
	defer bgRows.Close()

	for bgRows.Next() {
		var detail entities.BackgroundDetail
		if err := bgRows.Scan(&detail.ID, &detail.CaseID, &detail.Detail, &detail.CreatedAt, &detail.UpdatedAt); err != nil {
			return apperrors.NewInternalError("failed to scan background detail", err)
		}
		c.BackgroundDetails = append(c.BackgroundDetails, detail)
	}
	if err := bgRows.Err(); err != nil {
		return apperrors.NewInternalError("failed to iterate background details", err)
	}

	infoRows, err := a.client.DB().QueryContext(ctx, `
		SELECT id, case_id, divulgence_type, description, created_at, updated_at
		FROM information_divulged
		WHERE case_id = $1
		ORDER BY created_at
	`, c.ID)
	if err != nil {
		return apperrors.NewInternalError("failed to load divulged information", err)
	}
	defer infoRows.Close()

	for infoRows.Next() {
		var info entities.InformationDivulged
		if err := infoRows.Scan(&info.ID, &info.CaseID, &info.DivulgenceType, &info.Description, &info.CreatedAt, &info.UpdatedAt); err != nil {
			return apperrors.NewInternalError("failed to scan divulged information", err)
		}
		c.InformationDivulged = append(c.InformationDivulged, info)
	}
	if err := infoRows.Err(); err != nil {
		return apperrors.NewInternalError("failed to iterate divulged information", err)
	}

	doctorInfo, err := a.GetDoctorInfo(ctx, c.ID)
	if err != nil {
		if appErr, ok := apperrors.AsAppError(err); ok && appErr.Type == apperrors.ErrorTypeNotFound {
			return nil
		}
		return err
	}
	c.DoctorInfo = doctorInfo

	return nil
}

// List retrieves case summaries, newest first
func (a *CaseAdapter) List(ctx context.Context, filter repositories.CaseFilter) ([]entities.CaseSummary, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	rows, err := a.client.DB().QueryContext(ctx, `
		SELECT id, case_number, patient_name, patient_age, presenting_complaint, notes, created_at
		FROM cases
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, filter.Offset)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list cases", err)
	}
	defer rows.Close()

	summaries := []entities.CaseSummary{}
	for rows.Next() {
		var summary entities.CaseSummary
		var patientName, notes sql.NullString
		var patientAge sql.NullInt64

		if err := rows.Scan(&summary.ID, &summary.CaseNumber, &patientName, &patientAge, &summary.PresentingComplaint, &notes, &summary.CreatedAt); err != nil {
			return nil, apperrors.NewInternalError("failed to scan case summary", err)
		}

		summary.PatientName = patientName.String
		summary.Notes = notes.String
		if patientAge.Valid {
			age := int(patientAge.Int64)
			summary.PatientAge = &age
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate cases", err)
	}

	return summaries, nil
}

// GetDoctorInfo retrieves the doctor-info record for a case
func (a *CaseAdapter) GetDoctorInfo(ctx context.Context, caseID string) (*entities.DoctorInfo, error) {
	info := &entities.DoctorInfo{}
	var age sql.NullInt64
	var pmh, medication, infoContext sql.NullString

	err := a.client.DB().QueryRowContext(ctx, `
		SELECT id, case_id, name, age, past_medical_history, current_medication, context, created_at, updated_at
		FROM doctor_info
		WHERE case_id = $1
	`, caseID).Scan(
		&info.ID,
		&info.CaseID,
		&info.Name,
		&age,
		&pmh,
		&medication,
		&infoContext,
		&info.CreatedAt,
		&info.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("doctor info for case %s not found", caseID))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get doctor info", err)
	}

	if age.Valid {
		v := int(age.Int64)
		info.Age = &v
	}
	info.PastMedicalHistory = pmh.String
	info.CurrentMedication = medication.String
	info.Context = infoContext.String

	return info, nil
}

// UpsertDoctorInfo attaches doctor info to a case, replacing any existing record
func (a *CaseAdapter) UpsertDoctorInfo(ctx context.Context, info *entities.DoctorInfo) error {
	now := time.Now()
	if info.ID == "" {
		info.ID = uuid.NewString()
	}
	info.CreatedAt = now
	info.UpdatedAt = now

	_, err := a.client.DB().ExecContext(ctx, `
		INSERT INTO doctor_info (id, case_id, name, age, past_medical_history, current_medication, context, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (case_id) DO UPDATE SET
			name = EXCLUDED.name,
			age = EXCLUDED.age,
			past_medical_history = EXCLUDED.past_medical_history,
			current_medication = EXCLUDED.current_medication,
			context = EXCLUDED.context,
			updated_at = EXCLUDED.updated_at
	`,
		info.ID,
		info.CaseID,
		info.Name,
		info.Age,
		nullableString(info.PastMedicalHistory),
		nullableString(info.CurrentMedication),
		nullableString(info.Context),
		info.CreatedAt,
		info.UpdatedAt,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return apperrors.NewNotFoundError(fmt.Sprintf("case %s not found", info.CaseID))
		}
		return apperrors.NewInternalError("failed to upsert doctor info", err)
	}

	return nil
}

// Delete removes a case; child rows cascade via foreign keys
func (a *CaseAdapter) Delete(ctx context.Context, id string) error {
	result, err := a.client.DB().ExecContext(ctx, `DELETE FROM cases WHERE id = $1`, id)
	if err != nil {
		return apperrors.NewInternalError("failed to delete case", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to check delete result", err)
	}
	if affected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("case with id %s not found", id))
	}

	return nil
}

func doctorInfoRecord(info *entities.DoctorInfo) goqu.Record {
	return goqu.Record{
		"id":                   info.ID,
		"case_id":              info.CaseID,
		"name":                 info.Name,
		"age":                  info.Age,
		"past_medical_history": nullableString(info.PastMedicalHistory),
		"current_medication":   nullableString(info.CurrentMedication),
		"context":              nullableString(info.Context),
		"created_at":           info.CreatedAt,
		"updated_at":           info.UpdatedAt,
	}
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
