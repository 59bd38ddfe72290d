package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/wahealth/sca-simulator/internal/domain/entities"
	"github.com/wahealth/sca-simulator/internal/domain/repositories"
	"github.com/wahealth/sca-simulator/internal/infrastructure/clients/postgres"
	apperrors "github.com/wahealth/sca-simulator/pkg/errors"
)

// UserAdapter implements the UserRepository interface. User identifiers are
// issued by the external auth provider, never generated locally.
type UserAdapter struct {
	client *postgres.Client
}

// NewUserAdapter creates a new user adapter
func NewUserAdapter(client *postgres.Client) repositories.UserRepository {
	return &UserAdapter{client: client}
}

// Create inserts a user row
func (a *UserAdapter) Create(ctx context.Context, user *entities.User) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := a.client.DB().ExecContext(ctx, `
		INSERT INTO users (id, first_name, last_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, user.ID, user.FirstName, user.LastName, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return apperrors.NewConflictError(fmt.Sprintf("user with id %s already exists", user.ID))
		}
		return apperrors.NewInternalError("failed to create user", err)
	}

	return nil
}

// Upsert inserts or updates a user row keyed on its identifier
func (a *UserAdapter) Upsert(ctx context.Context, user *entities.User) error {
	now := time.Now()
	user.UpdatedAt = now

	_, err := a.client.DB().ExecContext(ctx, `
		INSERT INTO users (id, first_name, last_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			updated_at = EXCLUDED.updated_at
	`, user.ID, user.FirstName, user.LastName, now)
	if err != nil {
		return apperrors.NewInternalError("failed to upsert user", err)
	}

	return nil
}

// GetByID retrieves a user by ID
func (a *UserAdapter) GetByID(ctx context.Context, id string) (*entities.User, error) {
	user := &entities.User{}

	err := a.client.DB().QueryRowContext(ctx, `
		SELECT id, first_name, last_name, created_at, updated_at
		FROM users
		WHERE id = $1
	`, id).Scan(&user.ID, &user.FirstName, &user.LastName, &user.CreatedAt, &user.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("user with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get user", err)
	}

	return user, nil
}
