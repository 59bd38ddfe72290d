package repositories

import (
	"context"

	"github.com/wahealth/sca-simulator/internal/domain/entities"
)

// CaseRepository defines the interface for case data operations
type CaseRepository interface {
	// Create inserts a case together with all its child rows in one
	// transaction. Returns a conflict error when the case number is taken.
	Create(ctx context.Context, c *entities.Case) error

	// GetByID retrieves a case with all children populated
	GetByID(ctx context.Context, id string) (*entities.Case, error)

	// GetByCaseNumber retrieves a case by its exact case number, children
	// populated
	GetByCaseNumber(ctx context.Context, caseNumber string) (*entities.Case, error)

	// List retrieves case summaries, newest first
	List(ctx context.Context, filter CaseFilter) ([]entities.CaseSummary, error)

	// GetDoctorInfo retrieves the doctor-info record for a case
	GetDoctorInfo(ctx context.Context, caseID string) (*entities.DoctorInfo, error)

	// UpsertDoctorInfo attaches doctor info to a case, replacing any
	// existing record rather than duplicating it
	UpsertDoctorInfo(ctx context.Context, info *entities.DoctorInfo) error

	// Delete removes a case and cascades to all owned child rows
	Delete(ctx context.Context, id string) error
}

// CaseFilter defines filters for listing cases
type CaseFilter struct {
	Limit  int
	Offset int
}

// CaseSearchRepository defines the interface for case search operations
// (e.g. Typesense). Optional at runtime.
type CaseSearchRepository interface {
	// InitSchema ensures the search collection exists
	InitSchema(ctx context.Context) error

	// Index indexes a case document
	Index(ctx context.Context, c *entities.Case) error

	// Search finds cases matching the query across case number, presenting
	// complaint and patient name
	Search(ctx context.Context, query string, limit int) ([]entities.CaseSummary, error)

	// Delete removes a case from the index
	Delete(ctx context.Context, id string) error
}
