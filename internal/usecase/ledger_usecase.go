package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iho/blazeledger/internal/domain"
)

var (
	// ErrInconsistentLedger is returned when held money does not match net funding.
	ErrInconsistentLedger = errors.New("ledger is inconsistent: held funds do not match net deposits")
)

// LedgerUseCase handles ledger-wide operations.
type LedgerUseCase struct {
	ledgerRepo LedgerRepository
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(ledgerRepo LedgerRepository) *LedgerUseCase {
	return &LedgerUseCase{
		ledgerRepo: ledgerRepo,
	}
}

// CurrencyTotals is the consistency result for one currency.
type CurrencyTotals struct {
	Currency   domain.Currency
	Held       int64
	Funded     int64
	Difference int64
}

// ConsistencyReport summarizes a ledger-wide check.
type ConsistencyReport struct {
	Totals     []CurrencyTotals
	Consistent bool
	CheckedAt  time.Time
}

// CheckConsistency verifies that, per currency, money held on accounts plus
// accrued fees equals money that entered through deposits. Transfers,
// purchases and refunds only move money between those buckets.
func (uc *LedgerUseCase) CheckConsistency(ctx context.Context) (*ConsistencyReport, error) {
	report := &ConsistencyReport{Consistent: true, CheckedAt: time.Now().UTC()}

	for _, currency := range domain.SupportedCurrencies {
		held, funded, err := uc.ledgerRepo.Totals(ctx, currency)
		if err != nil {
			return nil, fmt.Errorf("totals for %s: %w", currency, err)
		}

		t := CurrencyTotals{Currency: currency, Held: held, Funded: funded, Difference: held - funded}
		if t.Difference != 0 {
			report.Consistent = false
		}
		report.Totals = append(report.Totals, t)
	}

	if !report.Consistent {
		return report, ErrInconsistentLedger
	}

	return report, nil
}
