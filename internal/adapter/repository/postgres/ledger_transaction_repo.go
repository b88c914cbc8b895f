package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/iho/blazeledger/internal/domain"
	"github.com/iho/blazeledger/internal/infrastructure/postgres/generated"
	"github.com/iho/blazeledger/internal/usecase"
)

// LedgerTransactionRepository implements usecase.LedgerTransactionRepository.
type LedgerTransactionRepository struct {
	queries *generated.Queries
}

// NewLedgerTransactionRepository creates a new LedgerTransactionRepository.
func NewLedgerTransactionRepository(db generated.DBTX) *LedgerTransactionRepository {
	return &LedgerTransactionRepository{
		queries: generated.New(db),
	}
}

// Create inserts a transaction within tx.
func (r *LedgerTransactionRepository) Create(ctx context.Context, tx usecase.Transaction, txn *domain.LedgerTransaction) error {
	queries, err := txQueries(tx)
	if err != nil {
		return err
	}

	return queries.CreateLedgerTransaction(ctx, generated.CreateLedgerTransactionParams{
		ID:                  txn.ID,
		Uuid:                txn.UUID,
		Type:                string(txn.Type),
		Status:              string(txn.Status),
		Currency:            string(txn.Currency),
		Amount:              txn.Amount,
		TipAmount:           txn.TipAmount,
		Fees:                txn.Fees,
		TotalAmount:         txn.TotalAmount,
		SenderID:            txn.SenderID,
		RecipientID:         txn.RecipientID,
		VerifierID:          txn.VerifierID,
		FundingInstrumentID: txn.FundingInstrumentID,
		ChargeID:            txn.ChargeID,
		ProcessingDeadline:  optionalTimestamptz(txn.ProcessingDeadline),
		CreatedAt:           timeToPgTimestamptz(txn.CreatedAt),
		ModifiedAt:          timeToPgTimestamptz(txn.ModifiedAt),
		VerifiedAt:          optionalTimestamptz(txn.VerifiedAt),
	})
}

// GetByID retrieves a transaction by ID.
func (r *LedgerTransactionRepository) GetByID(ctx context.Context, id string) (*domain.LedgerTransaction, error) {
	row, err := r.queries.GetLedgerTransactionByID(ctx, id)
	return toLedgerTransaction(row, err)
}

// GetByUUID retrieves a transaction by its correlation UUID.
func (r *LedgerTransactionRepository) GetByUUID(ctx context.Context, uuid string) (*domain.LedgerTransaction, error) {
	row, err := r.queries.GetLedgerTransactionByUUID(ctx, uuid)
	return toLedgerTransaction(row, err)
}

// GetByIDForUpdate retrieves a transaction with a FOR UPDATE lock.
func (r *LedgerTransactionRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.LedgerTransaction, error) {
	queries, err := txQueries(tx)
	if err != nil {
		return nil, err
	}

	row, err := queries.GetLedgerTransactionByIDForUpdate(ctx, id)
	return toLedgerTransaction(row, err)
}

// Update writes the mutable columns of txn.
func (r *LedgerTransactionRepository) Update(ctx context.Context, tx usecase.Transaction, txn *domain.LedgerTransaction) error {
	queries, err := txQueries(tx)
	if err != nil {
		return err
	}

	return queries.UpdateLedgerTransaction(ctx, generated.UpdateLedgerTransactionParams{
		ID:                 txn.ID,
		Status:             string(txn.Status),
		Fees:               txn.Fees,
		TotalAmount:        txn.TotalAmount,
		VerifierID:         txn.VerifierID,
		ChargeID:           txn.ChargeID,
		ProcessingDeadline: optionalTimestamptz(txn.ProcessingDeadline),
		ModifiedAt:         timeToPgTimestamptz(txn.ModifiedAt),
		VerifiedAt:         optionalTimestamptz(txn.VerifiedAt),
	})
}

// ListStuck returns queued transactions last modified before staleBefore
// and in-flight transactions whose lease ended before now.
func (r *LedgerTransactionRepository) ListStuck(ctx context.Context, staleBefore, now time.Time, limit int) ([]*domain.LedgerTransaction, error) {
	rows, err := r.queries.ListStuckLedgerTransactions(ctx, generated.ListStuckLedgerTransactionsParams{
		StaleBefore: timeToPgTimestamptz(staleBefore),
		Now:         timeToPgTimestamptz(now),
		Limit:       int32(limit),
	})
	if err != nil {
		return nil, err
	}

	txns := make([]*domain.LedgerTransaction, 0, len(rows))
	for _, row := range rows {
		txns = append(txns, rowToLedgerTransaction(row))
	}

	return txns, nil
}

func toLedgerTransaction(row generated.LedgerTransaction, err error) (*domain.LedgerTransaction, error) {
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return rowToLedgerTransaction(row), nil
}

func rowToLedgerTransaction(row generated.LedgerTransaction) *domain.LedgerTransaction {
	return &domain.LedgerTransaction{
		ID:                  row.ID,
		UUID:                row.Uuid,
		Type:                domain.TransactionType(row.Type),
		Status:              domain.TransactionStatus(row.Status),
		Currency:            domain.Currency(row.Currency),
		Amount:              row.Amount,
		TipAmount:           row.TipAmount,
		Fees:                row.Fees,
		TotalAmount:         row.TotalAmount,
		SenderID:            row.SenderID,
		RecipientID:         row.RecipientID,
		VerifierID:          row.VerifierID,
		FundingInstrumentID: row.FundingInstrumentID,
		ChargeID:            row.ChargeID,
		ProcessingDeadline:  timestamptzPtr(row.ProcessingDeadline),
		CreatedAt:           row.CreatedAt.Time,
		ModifiedAt:          row.ModifiedAt.Time,
		VerifiedAt:          timestamptzPtr(row.VerifiedAt),
	}
}
