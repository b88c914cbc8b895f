package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/iho/blazeledger/internal/domain"
)

// ReceiptRecorder writes the per-account audit snapshots of a transaction.
type ReceiptRecorder struct {
	receiptRepo ReceiptRepository
	idGen       IDGenerator
	metrics     ProcessingMetrics
}

// NewReceiptRecorder creates a new ReceiptRecorder.
func NewReceiptRecorder(receiptRepo ReceiptRepository, idGen IDGenerator, metrics ProcessingMetrics) *ReceiptRecorder {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &ReceiptRecorder{
		receiptRepo: receiptRepo,
		idGen:       idGen,
		metrics:     metrics,
	}
}

// Record snapshots txn for every affected account inside tx.
func (r *ReceiptRecorder) Record(ctx context.Context, tx Transaction, txn *domain.LedgerTransaction) error {
	now := time.Now().UTC()
	owners := txn.ReceiptOwners()

	for _, accountID := range owners {
		receipt := domain.NewAuditReceipt(r.idGen.Generate(), accountID, txn, now)
		if err := r.receiptRepo.Create(ctx, tx, receipt); err != nil {
			return fmt.Errorf("record receipt for %s: %w", accountID, err)
		}
	}

	r.metrics.ObserveReceipts(len(owners))
	return nil
}

// ListByAccount returns the receipt history of an account, newest first.
func (r *ReceiptRecorder) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.AuditReceipt, error) {
	page := domain.NewPage(limit, offset, domain.DefaultPageSize, domain.MaxPageSize)
	return r.receiptRepo.ListByAccount(ctx, accountID, page.Limit, page.Offset)
}
