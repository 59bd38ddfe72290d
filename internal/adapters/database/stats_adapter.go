package database

import (
	"context"

	"github.com/wahealth/sca-simulator/internal/domain/repositories"
	"github.com/wahealth/sca-simulator/internal/infrastructure/clients/postgres"
	apperrors "github.com/wahealth/sca-simulator/pkg/errors"
)

// StatsAdapter implements the StatsRepository interface
type StatsAdapter struct {
	client *postgres.Client
}

// NewStatsAdapter creates a new stats adapter
func NewStatsAdapter(client *postgres.Client) repositories.StatsRepository {
	return &StatsAdapter{client: client}
}

// Counts returns the admin dashboard row counts in one round trip
func (a *StatsAdapter) Counts(ctx context.Context) (*repositories.Stats, error) {
	stats := &repositories.Stats{}

	err := a.client.DB().QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM cases),
			(SELECT COUNT(*) FROM consultations)
	`).Scan(&stats.UserCount, &stats.CaseCount, &stats.ConsultationCount)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load stats", err)
	}

	return stats, nil
}
