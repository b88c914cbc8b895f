package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/blazeledger/internal/domain"
)

// RefundUseCase moves completed transactions onto the refund path.
type RefundUseCase struct {
	txManager   TransactionManager
	txnRepo     LedgerTransactionRepository
	accountRepo AccountRepository
	locker      Locker
	queue       TaskQueue
	retrier     Retrier
	logger      zerolog.Logger
}

// NewRefundUseCase creates a new RefundUseCase.
func NewRefundUseCase(
	txManager TransactionManager,
	txnRepo LedgerTransactionRepository,
	accountRepo AccountRepository,
	locker Locker,
	queue TaskQueue,
	retrier Retrier,
	logger zerolog.Logger,
) *RefundUseCase {
	return &RefundUseCase{
		txManager:   txManager,
		txnRepo:     txnRepo,
		accountRepo: accountRepo,
		locker:      locker,
		queue:       queue,
		retrier:     retrier,
		logger:      logger,
	}
}

// RequestRefund lets a staff member of the merchant refund a completed
// purchase. The merchant must still hold what it received.
func (uc *RefundUseCase) RequestRefund(ctx context.Context, txnID, staffID string) (*domain.LedgerTransaction, error) {
	return uc.request(ctx, txnID, staffID, func(txn *domain.LedgerTransaction, actor *domain.Account, recipient *domain.Account) error {
		if txn.Type != domain.TransactionTypePurchase {
			return domain.ErrNotRefundable
		}
		if !actor.CanActFor(txn.RecipientID) {
			return domain.ErrNotAuthorizedStaff
		}
		return recipient.ValidateDebit(txn.Currency, txn.MerchantCredit())
	})
}

// RequestCashDepositRefund lets a privileged account reverse a cash deposit.
func (uc *RefundUseCase) RequestCashDepositRefund(ctx context.Context, txnID, actorID string) (*domain.LedgerTransaction, error) {
	return uc.request(ctx, txnID, actorID, func(txn *domain.LedgerTransaction, actor *domain.Account, recipient *domain.Account) error {
		if !txn.IsCashDeposit() {
			return domain.ErrNotRefundable
		}
		if !actor.HasCapability(domain.CapabilityRefundCashDeposit) {
			return domain.ErrUnauthorizedDeposit
		}
		return recipient.ValidateDebit(txn.Currency, txn.Amount)
	})
}

type refundCheck func(txn *domain.LedgerTransaction, actor, recipient *domain.Account) error

func (uc *RefundUseCase) request(ctx context.Context, txnID, actorID string, check refundCheck) (*domain.LedgerTransaction, error) {
	lease, err := uc.locker.Acquire(ctx, TransactionLockKey(txnID), LockOptions{MaxAttempts: DefaultAccountLockAttempts})
	if err != nil {
		return nil, err
	}
	defer lease.Release(ctx)

	var requested *domain.LedgerTransaction
	err = uc.retrier.Retry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		txn, err := uc.txnRepo.GetByIDForUpdate(ctx, tx, txnID)
		if err != nil {
			return err
		}
		if txn.Status != domain.StatusCompleted {
			return domain.ErrNotRefundable
		}

		actor, err := uc.accountRepo.GetByID(ctx, actorID)
		if err != nil {
			return err
		}
		recipient, err := uc.accountRepo.GetByID(ctx, txn.RecipientID)
		if err != nil {
			return fmt.Errorf("load recipient: %w", err)
		}

		if err := check(txn, actor, recipient); err != nil {
			return err
		}

		if err := txn.RequestRefund(time.Now().UTC()); err != nil {
			return err
		}
		if err := uc.txnRepo.Update(ctx, tx, txn); err != nil {
			return err
		}
		if err := tx.Commit(ctx); err != nil {
			return err
		}

		requested = txn
		return nil
	})
	if err != nil {
		return nil, err
	}

	// The sweeper picks the transaction up if this enqueue is lost.
	if err := uc.queue.Enqueue(ctx, txnID); err != nil {
		uc.logger.Warn().Err(err).Str("txn_id", txnID).Msg("failed to enqueue refund")
	}

	uc.logger.Info().Str("txn_id", txnID).Str("actor_id", actorID).Msg("refund requested")
	return requested, nil
}
