package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/blazeledger/internal/domain"
)

// ProcessorConfig tunes the task processor.
type ProcessorConfig struct {
	TxnLockAttempts     int
	AccountLockAttempts int
	ProcessingDeadline  time.Duration
	// AnalyticsEnabled is false in test and local environments.
	AnalyticsEnabled bool
}

// ProcessorUseCase consumes "process transaction id" work items. Delivery is
// at-least-once; the transaction status and its lease are the only
// ownership record, so a repeated item is a logged no-op.
type ProcessorUseCase struct {
	txManager      TransactionManager
	txnRepo        LedgerTransactionRepository
	accountRepo    AccountRepository
	instrumentRepo FundingInstrumentRepository
	locker         Locker
	transfer       *TransferUseCase
	cancel         *CancelUseCase
	charges        ChargeGateway
	notifier       Notifier
	analytics      AnalyticsSink
	queue          TaskQueue
	retrier        Retrier
	metrics        ProcessingMetrics
	logger         zerolog.Logger
	cfg            ProcessorConfig
	now            func() time.Time
}

// ProcessorDeps groups the collaborators of ProcessorUseCase.
type ProcessorDeps struct {
	TxManager      TransactionManager
	TxnRepo        LedgerTransactionRepository
	AccountRepo    AccountRepository
	InstrumentRepo FundingInstrumentRepository
	Locker         Locker
	Transfer       *TransferUseCase
	Cancel         *CancelUseCase
	Charges        ChargeGateway
	Notifier       Notifier
	Analytics      AnalyticsSink
	Queue          TaskQueue
	Retrier        Retrier
	Metrics        ProcessingMetrics
	Logger         zerolog.Logger
}

// NewProcessorUseCase creates a new ProcessorUseCase.
func NewProcessorUseCase(deps ProcessorDeps, cfg ProcessorConfig) *ProcessorUseCase {
	if cfg.TxnLockAttempts <= 0 {
		cfg.TxnLockAttempts = DefaultTxnLockAttempts
	}
	if cfg.AccountLockAttempts <= 0 {
		cfg.AccountLockAttempts = DefaultAccountLockAttempts
	}
	if cfg.ProcessingDeadline <= 0 {
		cfg.ProcessingDeadline = DefaultProcessingDeadline
	}
	if deps.Metrics == nil {
		deps.Metrics = NopMetrics{}
	}

	return &ProcessorUseCase{
		txManager:      deps.TxManager,
		txnRepo:        deps.TxnRepo,
		accountRepo:    deps.AccountRepo,
		instrumentRepo: deps.InstrumentRepo,
		locker:         deps.Locker,
		transfer:       deps.Transfer,
		cancel:         deps.Cancel,
		charges:        deps.Charges,
		notifier:       deps.Notifier,
		analytics:      deps.Analytics,
		queue:          deps.Queue,
		retrier:        deps.Retrier,
		metrics:        deps.Metrics,
		logger:         deps.Logger,
		cfg:            cfg,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// EnqueueProcessing schedules txnID for processing.
func (uc *ProcessorUseCase) EnqueueProcessing(ctx context.Context, txnID string) error {
	return uc.queue.Enqueue(ctx, txnID)
}

// Process handles one delivery of a work item. A nil return means the item
// is done, whether or not it changed anything. A non-nil return means the
// item must be redelivered; see IsRetryable.
func (uc *ProcessorUseCase) Process(ctx context.Context, txnID string) (err error) {
	start := time.Now()
	outcome := OutcomeSkipped
	defer func() {
		if err != nil {
			outcome = OutcomeRetry
			if !IsRetryable(err) {
				outcome = OutcomeFailed
			}
		}
		uc.metrics.ObserveProcessed(outcome, time.Since(start))
	}()

	log := uc.logger.With().Str("txn_id", txnID).Logger()

	lease, err := uc.locker.Acquire(ctx, TransactionLockKey(txnID), LockOptions{MaxAttempts: uc.cfg.TxnLockAttempts})
	if err != nil {
		if errors.Is(err, ErrLockContention) {
			uc.metrics.ObserveLockContention("transaction")
			log.Info().Msg("transaction locked by another worker")
		}
		return err
	}
	defer func() {
		if relErr := lease.Release(ctx); relErr != nil {
			log.Warn().Err(relErr).Msg("failed to release transaction lock")
		}
	}()

	txn, err := uc.txnRepo.GetByID(ctx, txnID)
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			log.Warn().Msg("transaction not found, dropping work item")
			return nil
		}
		return err
	}

	if !txn.Claimable(uc.now()) {
		log.Info().Str("status", string(txn.Status)).Msg("transaction not awaiting processing")
		return nil
	}

	txn, err = uc.claim(ctx, txnID)
	if err != nil {
		if errors.Is(err, domain.ErrNotClaimable) {
			log.Info().Err(err).Msg("transaction claimed elsewhere")
			return nil
		}
		return err
	}

	log = log.With().
		Str("type", string(txn.Type)).
		Str("status", string(txn.Status)).
		Int64("amount", txn.Amount).
		Str("currency", string(txn.Currency)).
		Logger()

	final, err := uc.run(ctx, txn, log)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCancel) {
			log.Error().Err(err).Msg("invalid cancel while processing")
			return err
		}
		return uc.abandon(ctx, txnID, err, log)
	}

	outcome = string(final.Status)
	uc.afterProcessing(ctx, final, log)
	return nil
}

// run performs validation, the optional card charge and the transfer.
func (uc *ProcessorUseCase) run(ctx context.Context, txn *domain.LedgerTransaction, log zerolog.Logger) (*domain.LedgerTransaction, error) {
	if err := uc.validate(ctx, txn); err != nil {
		if domain.IsCancellation(err) {
			log.Warn().Err(err).Msg("transaction rejected")
			return uc.cancel.Cancel(ctx, txn.ID)
		}
		return nil, err
	}

	charged := false
	if txn.IsCardDeposit() && !txn.IsRefund() {
		if txn.ChargeID == "" {
			chargeID, err := uc.charge(ctx, txn)
			if err != nil {
				if errors.Is(err, domain.ErrChargeUnavailable) {
					uc.metrics.ObserveCharge("unavailable")
					return nil, err
				}
				uc.metrics.ObserveCharge("declined")
				log.Warn().Err(err).Msg("card charge failed")
				return uc.cancel.Cancel(ctx, txn.ID)
			}
			uc.metrics.ObserveCharge("succeeded")
			if err := uc.recordCharge(ctx, txn.ID, chargeID); err != nil {
				log.Error().Err(err).Str("charge_id", chargeID).Msg("failed to record charge")
				return nil, err
			}
			txn.ChargeID = chargeID
		}
		charged = true
	}

	opts := LockOptions{MaxAttempts: uc.cfg.AccountLockAttempts, Unbounded: charged}
	locks, err := AcquireAccounts(ctx, uc.locker, participants(txn), opts)
	if err != nil {
		if errors.Is(err, ErrLockContention) {
			uc.metrics.ObserveLockContention("account")
		}
		return nil, err
	}
	defer func() {
		if relErr := locks.Release(ctx); relErr != nil {
			log.Warn().Err(relErr).Msg("failed to release account locks")
		}
	}()

	return uc.transfer.TransferFunds(ctx, txn.ID, charged)
}

// claim flips the transaction into Processing or Refunding with a fresh
// lease and prices it on first entry. It is committed before any money moves.
func (uc *ProcessorUseCase) claim(ctx context.Context, txnID string) (*domain.LedgerTransaction, error) {
	var claimed *domain.LedgerTransaction

	err := uc.retrier.Retry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		txn, err := uc.txnRepo.GetByIDForUpdate(ctx, tx, txnID)
		if err != nil {
			return err
		}

		now := uc.now()
		fresh, err := txn.Claim(now, now.Add(uc.cfg.ProcessingDeadline))
		if err != nil {
			return err
		}

		if fresh && txn.Status == domain.StatusProcessing {
			pct, err := uc.feePercentage(ctx, txn)
			if err != nil {
				return fmt.Errorf("load fee percentage: %w", err)
			}
			txn.Price(pct)
		}

		if err := uc.txnRepo.Update(ctx, tx, txn); err != nil {
			return err
		}
		if err := tx.Commit(ctx); err != nil {
			return err
		}

		claimed = txn
		return nil
	})
	if err != nil {
		return nil, err
	}

	return claimed, nil
}

// feePercentage is zero for anything but a purchase into a merchant. A
// missing recipient prices at zero and is rejected by validation later. Any
// other lookup failure is returned and fails the claim.
func (uc *ProcessorUseCase) feePercentage(ctx context.Context, txn *domain.LedgerTransaction) (decimal.Decimal, error) {
	if txn.Type != domain.TransactionTypePurchase {
		return decimal.Zero, nil
	}
	recipient, err := uc.accountRepo.GetByID(ctx, txn.RecipientID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	if !recipient.IsMerchant() {
		return decimal.Zero, nil
	}
	return recipient.FeePercentage, nil
}

func (uc *ProcessorUseCase) validate(ctx context.Context, txn *domain.LedgerTransaction) error {
	if err := txn.Validate(); err != nil {
		return err
	}

	if txn.IsCashDeposit() && !txn.IsRefund() {
		sender, err := uc.accountRepo.GetByID(ctx, txn.SenderID)
		if err != nil {
			return err
		}
		if !sender.HasCapability(domain.CapabilityCashDeposit) {
			return domain.ErrUnauthorizedDeposit
		}
	}

	if txn.IsCardDeposit() && !txn.IsRefund() && txn.ChargeID == "" {
		instrument, err := uc.instrumentRepo.GetByID(ctx, txn.FundingInstrumentID)
		if err != nil {
			return err
		}
		if !instrument.Usable() {
			return domain.ErrFundingInstrumentUnusable
		}
	}

	return nil
}

func (uc *ProcessorUseCase) charge(ctx context.Context, txn *domain.LedgerTransaction) (string, error) {
	instrument, err := uc.instrumentRepo.GetByID(ctx, txn.FundingInstrumentID)
	if err != nil {
		return "", err
	}

	return uc.charges.Charge(ctx, ChargeRequest{
		IdempotencyKey: txn.UUID,
		CustomerRef:    instrument.CustomerRef,
		Amount:         txn.Amount,
		Currency:       txn.Currency,
		Description:    fmt.Sprintf("deposit %s", txn.UUID),
	})
}

func (uc *ProcessorUseCase) recordCharge(ctx context.Context, txnID, chargeID string) error {
	return uc.retrier.Retry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		txn, err := uc.txnRepo.GetByIDForUpdate(ctx, tx, txnID)
		if err != nil {
			return err
		}
		txn.ChargeID = chargeID
		txn.ModifiedAt = uc.now()

		if err := uc.txnRepo.Update(ctx, tx, txn); err != nil {
			return err
		}
		return tx.Commit(ctx)
	})
}

// abandon releases the lease so a redelivery can reclaim the transaction
// right away, and hands cause back to the caller.
func (uc *ProcessorUseCase) abandon(ctx context.Context, txnID string, cause error, log zerolog.Logger) error {
	log.Warn().Err(cause).Msg("abandoning transaction for redelivery")

	err := uc.retrier.Retry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		txn, err := uc.txnRepo.GetByIDForUpdate(ctx, tx, txnID)
		if err != nil {
			return err
		}
		if txn.Status != domain.StatusProcessing && txn.Status != domain.StatusRefunding {
			return nil
		}

		txn.ReleaseLease(uc.now())
		if err := uc.txnRepo.Update(ctx, tx, txn); err != nil {
			return err
		}
		return tx.Commit(ctx)
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to release processing lease")
	}

	return fmt.Errorf("%w: %w", ErrInFlight, cause)
}

// afterProcessing emits notifications and the analytics event. Neither may
// fail the work item.
func (uc *ProcessorUseCase) afterProcessing(ctx context.Context, txn *domain.LedgerTransaction, log zerolog.Logger) {
	log.Info().Str("final_status", string(txn.Status)).Int64("fees", txn.Fees).Msg("transaction processed")

	if n, ok := uc.notification(ctx, txn); ok {
		if err := uc.notifier.Notify(ctx, n); err != nil {
			log.Warn().Err(err).Msg("failed to send notification")
		}
	}

	if uc.cfg.AnalyticsEnabled && uc.analytics != nil {
		if err := uc.analytics.Record(ctx, txn.ID, domain.NewTransactionAnalyticsEvent(txn)); err != nil {
			log.Warn().Err(err).Msg("failed to record analytics event")
		}
	}
}

// notification picks the natural money recipient of txn, if any.
func (uc *ProcessorUseCase) notification(ctx context.Context, txn *domain.LedgerTransaction) (domain.Notification, bool) {
	n := domain.Notification{
		TransactionID: txn.ID,
		Amount:        txn.Amount,
		Currency:      txn.Currency,
	}

	switch {
	case txn.Status == domain.StatusCompleted && txn.Type == domain.TransactionTypeTransfer:
		n.Kind, n.AccountID = domain.NotificationTransferReceived, txn.RecipientID
	case txn.Status == domain.StatusCompleted && txn.Type == domain.TransactionTypeDeposit:
		n.Kind, n.AccountID = domain.NotificationDepositReceived, txn.RecipientID
	case txn.Status == domain.StatusCompleted && txn.Type == domain.TransactionTypePurchase:
		n.Kind, n.AccountID = domain.NotificationPurchaseReceipt, txn.SenderID
		n.Amount = txn.Gross()
	case txn.Status == domain.StatusRefunded && txn.Type == domain.TransactionTypePurchase:
		n.Kind, n.AccountID = domain.NotificationPurchaseRefund, txn.SenderID
		n.Amount = txn.Gross()
	default:
		return domain.Notification{}, false
	}

	if acc, err := uc.accountRepo.GetByID(ctx, n.AccountID); err == nil {
		n.Destination = acc.Email
	}

	return n, true
}
