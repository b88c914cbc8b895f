package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/blazeledger/internal/domain"
)

// VerificationUseCase lets merchant staff confirm a completed purchase and
// collect its tip.
type VerificationUseCase struct {
	txManager   TransactionManager
	txnRepo     LedgerTransactionRepository
	accountRepo AccountRepository
	locker      Locker
	retrier     Retrier
	logger      zerolog.Logger
}

// NewVerificationUseCase creates a new VerificationUseCase.
func NewVerificationUseCase(
	txManager TransactionManager,
	txnRepo LedgerTransactionRepository,
	accountRepo AccountRepository,
	locker Locker,
	retrier Retrier,
	logger zerolog.Logger,
) *VerificationUseCase {
	return &VerificationUseCase{
		txManager:   txManager,
		txnRepo:     txnRepo,
		accountRepo: accountRepo,
		locker:      locker,
		retrier:     retrier,
		logger:      logger,
	}
}

// Verify attaches staffID as verifier of a completed purchase and settles the
// tip on the staff account, atomically. A purchase can be verified once.
func (uc *VerificationUseCase) Verify(ctx context.Context, txnID, staffID string) (*domain.LedgerTransaction, error) {
	lease, err := uc.locker.Acquire(ctx, TransactionLockKey(txnID), LockOptions{MaxAttempts: DefaultAccountLockAttempts})
	if err != nil {
		return nil, err
	}
	defer lease.Release(ctx)

	locks, err := AcquireAccounts(ctx, uc.locker, []string{staffID}, LockOptions{MaxAttempts: DefaultAccountLockAttempts})
	if err != nil {
		return nil, err
	}
	defer locks.Release(ctx)

	var verified *domain.LedgerTransaction
	err = uc.retrier.Retry(ctx, func() error {
		txn, err := uc.verifyOnce(ctx, txnID, staffID)
		if err != nil {
			return err
		}
		verified = txn
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info().
		Str("txn_id", txnID).
		Str("verifier_id", staffID).
		Int64("tip_amount", verified.TipAmount).
		Str("currency", string(verified.Currency)).
		Msg("purchase verified")

	return verified, nil
}

func (uc *VerificationUseCase) verifyOnce(ctx context.Context, txnID, staffID string) (*domain.LedgerTransaction, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	txn, err := uc.txnRepo.GetByIDForUpdate(ctx, tx, txnID)
	if err != nil {
		return nil, err
	}

	if txn.VerifierID != "" {
		return nil, domain.ErrAlreadyVerified
	}
	if txn.Type != domain.TransactionTypePurchase || txn.Status != domain.StatusCompleted {
		return nil, domain.ErrNotVerifiable
	}

	accounts, err := uc.accountRepo.GetByIDsForUpdate(ctx, tx, []string{staffID})
	if err != nil {
		return nil, err
	}
	if len(accounts) != 1 {
		return nil, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, staffID)
	}
	staff := accounts[0]

	if !staff.CanActFor(txn.RecipientID) {
		return nil, domain.ErrNotAuthorizedStaff
	}

	now := time.Now().UTC()
	if err := txn.Verify(staffID, now); err != nil {
		return nil, err
	}
	staff.CreditTip(txn.Currency, txn.TipAmount)
	staff.UpdatedAt = now

	if err := uc.accountRepo.UpdateBalances(ctx, tx, staff); err != nil {
		return nil, err
	}
	if err := uc.txnRepo.Update(ctx, tx, txn); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return txn, nil
}
