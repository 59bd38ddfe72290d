package repositories

import (
	"context"

	"github.com/wahealth/sca-simulator/internal/domain/entities"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	// Create inserts a user row with an externally issued identifier
	Create(ctx context.Context, user *entities.User) error

	// Upsert inserts or updates a user row keyed on its identifier
	Upsert(ctx context.Context, user *entities.User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id string) (*entities.User, error)
}

// StatsRepository exposes row counts for the admin dashboard
type StatsRepository interface {
	Counts(ctx context.Context) (*Stats, error)
}

// Stats holds the admin dashboard counters
type Stats struct {
	UserCount         int `json:"user_count"`
	CaseCount         int `json:"case_count"`
	ConsultationCount int `json:"consultation_count"`
}
