package postgres

import (
	"context"
	"fmt"

	"github.com/iho/blazeledger/internal/domain"
	"github.com/iho/blazeledger/internal/infrastructure/postgres/generated"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	queries *generated.Queries
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(db generated.DBTX) *LedgerRepository {
	return &LedgerRepository{queries: generated.New(db)}
}

// Totals returns the money held on accounts (balances plus fee accruals)
// and the net amount that entered through deposits, in one currency.
// Deposits count once they have a completed receipt and stop counting once
// they have a refunded one.
func (r *LedgerRepository) Totals(ctx context.Context, currency domain.Currency) (held, funded int64, err error) {
	held, err = r.queries.GetHeldTotal(ctx, string(currency))
	if err != nil {
		return 0, 0, fmt.Errorf("held total: %w", err)
	}

	funded, err = r.queries.GetFundedTotal(ctx, string(currency))
	if err != nil {
		return 0, 0, fmt.Errorf("funded total: %w", err)
	}

	return held, funded, nil
}
