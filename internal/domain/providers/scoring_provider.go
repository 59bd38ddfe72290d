package providers

import (
	"context"

	"github.com/wahealth/sca-simulator/internal/domain/entities"
)

// ConsultationScorer evaluates a consultation transcript against a case.
// Implementations must return a fully validated result; schema violations
// from the underlying model are errors, never partially parsed results.
type ConsultationScorer interface {
	ScoreConsultation(ctx context.Context, transcript string, c *entities.Case) (*entities.ScoringResult, error)
}

// CaseGenerator synthesizes a new patient case. Unlike the scorer, generation
// failure is recoverable: callers fall back to a fixed placeholder case.
type CaseGenerator interface {
	GenerateCase(ctx context.Context) (*entities.GeneratedCase, error)
}
