package providers

import (
	"context"

	"github.com/wahealth/sca-simulator/internal/domain/entities"
)

// CallProvider fetches call records from the external voice-call provider.
// Non-success provider responses surface as upstream errors carrying the
// provider's status and body.
type CallProvider interface {
	GetCall(ctx context.Context, callID string) (*entities.CallDetails, error)

	// Healthy reports whether the provider is configured and reachable
	Healthy(ctx context.Context) error
}
