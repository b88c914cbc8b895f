package charge

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/iho/blazeledger/internal/domain"
	"github.com/iho/blazeledger/internal/usecase"
)

// StaticGateway approves every charge except those of declined customers.
// It stands in for the charge API in local and test environments and
// returns the same charge id for a repeated idempotency key.
type StaticGateway struct {
	mu       sync.Mutex
	declined map[string]bool
	charges  map[string]string
}

// NewStaticGateway creates a gateway that declines the given customers.
func NewStaticGateway(declinedCustomers ...string) *StaticGateway {
	declined := make(map[string]bool, len(declinedCustomers))
	for _, c := range declinedCustomers {
		declined[c] = true
	}
	return &StaticGateway{declined: declined, charges: map[string]string{}}
}

// Charge approves req with a synthetic charge id.
func (g *StaticGateway) Charge(_ context.Context, req usecase.ChargeRequest) (string, error) {
	if g.declined[req.CustomerRef] {
		return "", fmt.Errorf("%w: card_declined", domain.ErrChargeDeclined)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if id, ok := g.charges[req.IdempotencyKey]; ok {
		return id, nil
	}
	id := "ch_" + uuid.NewString()
	g.charges[req.IdempotencyKey] = id
	return id, nil
}
