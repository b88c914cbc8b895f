package usecase

import (
	"context"
	"time"

	"github.com/iho/blazeledger/internal/domain"
)

// CancelUseCase ends transactions as Cancelled and records their receipts.
type CancelUseCase struct {
	txManager TransactionManager
	txnRepo   LedgerTransactionRepository
	receipts  *ReceiptRecorder
	retrier   Retrier
}

// NewCancelUseCase creates a new CancelUseCase.
func NewCancelUseCase(
	txManager TransactionManager,
	txnRepo LedgerTransactionRepository,
	receipts *ReceiptRecorder,
	retrier Retrier,
) *CancelUseCase {
	return &CancelUseCase{
		txManager: txManager,
		txnRepo:   txnRepo,
		receipts:  receipts,
		retrier:   retrier,
	}
}

// Cancel moves the transaction to Cancelled together with its receipts in
// one storage transaction. Calling it from any status other than Pending,
// Processing or Refunding returns domain.ErrInvalidCancel.
func (uc *CancelUseCase) Cancel(ctx context.Context, txnID string) (*domain.LedgerTransaction, error) {
	var cancelled *domain.LedgerTransaction

	err := uc.retrier.Retry(ctx, func() error {
		txn, err := uc.cancelOnce(ctx, txnID)
		if err != nil {
			return err
		}
		cancelled = txn
		return nil
	})
	if err != nil {
		return nil, err
	}

	return cancelled, nil
}

func (uc *CancelUseCase) cancelOnce(ctx context.Context, txnID string) (*domain.LedgerTransaction, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	txn, err := uc.txnRepo.GetByIDForUpdate(ctx, tx, txnID)
	if err != nil {
		return nil, err
	}

	if err := txn.Cancel(time.Now().UTC()); err != nil {
		return nil, err
	}

	if err := uc.txnRepo.Update(ctx, tx, txn); err != nil {
		return nil, err
	}

	if err := uc.receipts.Record(ctx, tx, txn); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return txn, nil
}
