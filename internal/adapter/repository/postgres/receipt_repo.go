package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/iho/blazeledger/internal/domain"
	"github.com/iho/blazeledger/internal/infrastructure/postgres/generated"
	"github.com/iho/blazeledger/internal/usecase"
)

// ReceiptRepository implements usecase.ReceiptRepository.
type ReceiptRepository struct {
	queries *generated.Queries
}

// NewReceiptRepository creates a new ReceiptRepository.
func NewReceiptRepository(db generated.DBTX) *ReceiptRepository {
	return &ReceiptRepository{queries: generated.New(db)}
}

// Create stores a receipt within tx. A receipt for the same account,
// transaction and status is kept as is.
func (r *ReceiptRepository) Create(ctx context.Context, tx usecase.Transaction, receipt *domain.AuditReceipt) error {
	queries, err := txQueries(tx)
	if err != nil {
		return err
	}

	snapshot, err := json.Marshal(receipt.Snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	return queries.CreateAuditReceipt(ctx, generated.CreateAuditReceiptParams{
		ID:            receipt.ID,
		AccountID:     receipt.AccountID,
		TransactionID: receipt.TransactionID,
		Status:        string(receipt.Status),
		Snapshot:      snapshot,
		CreatedAt:     timeToPgTimestamptz(receipt.CreatedAt),
	})
}

// ListByAccount returns the receipts of an account, newest first.
func (r *ReceiptRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.AuditReceipt, error) {
	rows, err := r.queries.ListAuditReceiptsByAccount(ctx, generated.ListAuditReceiptsByAccountParams{
		AccountID: accountID,
		Limit:     int32(limit),
		Offset:    int32(offset),
	})
	if err != nil {
		return nil, err
	}

	receipts := make([]*domain.AuditReceipt, 0, len(rows))
	for _, row := range rows {
		var snapshot domain.JSON
		if len(row.Snapshot) > 0 {
			if err := json.Unmarshal(row.Snapshot, &snapshot); err != nil {
				return nil, fmt.Errorf("decode snapshot of receipt %s: %w", row.ID, err)
			}
		}
		receipts = append(receipts, &domain.AuditReceipt{
			ID:            row.ID,
			AccountID:     row.AccountID,
			TransactionID: row.TransactionID,
			Status:        domain.TransactionStatus(row.Status),
			Snapshot:      snapshot,
			CreatedAt:     row.CreatedAt.Time,
		})
	}

	return receipts, nil
}
