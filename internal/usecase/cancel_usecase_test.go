package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/iho/blazeledger/internal/domain"
	"github.com/iho/blazeledger/internal/usecase"
	"github.com/iho/blazeledger/internal/usecase/mocks"
)

func TestCancelUseCase_Cancel(t *testing.T) {
	tests := []struct {
		name        string
		status      domain.TransactionStatus
		expectedErr error
	}{
		{name: "pending", status: domain.StatusPending},
		{name: "processing", status: domain.StatusProcessing},
		{name: "refunding", status: domain.StatusRefunding},
		{name: "completed", status: domain.StatusCompleted, expectedErr: domain.ErrInvalidCancel},
		{name: "refund pending", status: domain.StatusRefundPending, expectedErr: domain.ErrInvalidCancel},
		{name: "cancelled", status: domain.StatusCancelled, expectedErr: domain.ErrInvalidCancel},
		{name: "refunded", status: domain.StatusRefunded, expectedErr: domain.ErrInvalidCancel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn := pendingTxn("txn-1", domain.TransactionTypeTransfer, "acc-a", "acc-b", 10, 0)
			txn.Status = tt.status
			txns := mocks.NewMockLedgerTransactionRepository(txn)
			receipts := mocks.NewMockReceiptRepository()
			recorder := usecase.NewReceiptRecorder(receipts, mocks.NewMockIDGenerator(), nil)
			uc := usecase.NewCancelUseCase(mocks.NewMockTransactionManager(), txns, recorder, mocks.NewMockRetrier())

			_, err := uc.Cancel(context.Background(), "txn-1")

			if tt.expectedErr != nil {
				if !errors.Is(err, tt.expectedErr) {
					t.Fatalf("expected error %v, got %v", tt.expectedErr, err)
				}
				if got := txns.Get("txn-1").Status; got != tt.status {
					t.Fatalf("status changed to %s", got)
				}
				if len(receipts.All()) != 0 {
					t.Fatalf("no receipts on invalid cancel")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := txns.Get("txn-1").Status; got != domain.StatusCancelled {
				t.Fatalf("expected cancelled, got %s", got)
			}
			if got := len(receipts.ForTransaction("txn-1")); got != 2 {
				t.Fatalf("expected 2 receipts, got %d", got)
			}
		})
	}
}

func TestCancelUseCase_ReceiptFailureRollsBack(t *testing.T) {
	txns := mocks.NewMockLedgerTransactionRepository(pendingTxn("txn-1", domain.TransactionTypeTransfer, "acc-a", "acc-b", 10, 0))
	receipts := mocks.NewMockReceiptRepository()
	receipts.CreateFunc = func(ctx context.Context, tx usecase.Transaction, receipt *domain.AuditReceipt) error {
		return errors.New("disk full")
	}
	recorder := usecase.NewReceiptRecorder(receipts, mocks.NewMockIDGenerator(), nil)
	uc := usecase.NewCancelUseCase(mocks.NewMockTransactionManager(), txns, recorder, mocks.NewMockRetrier())

	if _, err := uc.Cancel(context.Background(), "txn-1"); err == nil {
		t.Fatalf("expected error")
	}
	if got := txns.Get("txn-1").Status; got != domain.StatusPending {
		t.Fatalf("status must roll back with receipts, got %s", got)
	}
}
