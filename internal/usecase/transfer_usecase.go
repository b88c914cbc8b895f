package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/blazeledger/internal/domain"
)

// TransferUseCase applies the monetary effect of an in-flight transaction.
type TransferUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	txnRepo     LedgerTransactionRepository
	receipts    *ReceiptRecorder
	cancel      *CancelUseCase
	retrier     Retrier
	logger      zerolog.Logger
}

// NewTransferUseCase creates a new TransferUseCase.
func NewTransferUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	txnRepo LedgerTransactionRepository,
	receipts *ReceiptRecorder,
	cancel *CancelUseCase,
	retrier Retrier,
	logger zerolog.Logger,
) *TransferUseCase {
	return &TransferUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		txnRepo:     txnRepo,
		receipts:    receipts,
		cancel:      cancel,
		retrier:     retrier,
		logger:      logger,
	}
}

// TransferFunds moves money for a transaction in Processing or Refunding and
// finishes it. Every balance, the transaction record and its receipts are
// written in one storage transaction, so the effect lands entirely or not at
// all. When the effect fails the transaction is cancelled instead; an error
// is returned when that cancellation could not be written either.
//
// A transaction whose card charge already succeeded is never cancelled: the
// caller passes charged when it knows, and the stored charge id is checked
// otherwise. If the transaction cannot be reloaded to make that check, the
// failure is returned rather than cancelling blind.
// The caller must hold the account locks.
func (uc *TransferUseCase) TransferFunds(ctx context.Context, txnID string, charged bool) (*domain.LedgerTransaction, error) {
	var settled *domain.LedgerTransaction

	err := uc.retrier.Retry(ctx, func() error {
		txn, err := uc.apply(ctx, txnID)
		if err != nil {
			return err
		}
		settled = txn
		return nil
	})
	if err == nil {
		return settled, nil
	}

	txn, loadErr := uc.txnRepo.GetByID(ctx, txnID)
	uc.logFailure(txnID, txn, loadErr, err)

	if charged || (loadErr == nil && txn.IsCardDeposit() && txn.ChargeID != "") {
		return nil, fmt.Errorf("credit charged deposit %s: %w", txnID, err)
	}
	if loadErr != nil {
		return nil, fmt.Errorf("transfer %s: %w", txnID, err)
	}

	cancelled, cancelErr := uc.cancel.Cancel(ctx, txnID)
	if cancelErr != nil {
		return nil, fmt.Errorf("cancel transaction %s after transfer error (%v): %w", txnID, err, cancelErr)
	}

	return cancelled, nil
}

func (uc *TransferUseCase) logFailure(txnID string, txn *domain.LedgerTransaction, loadErr, cause error) {
	event := uc.logger.Error()
	if domain.IsCancellation(cause) {
		event = uc.logger.Warn()
	}

	event = event.Err(cause).Str("txn_id", txnID)
	if loadErr == nil {
		event = event.
			Str("type", string(txn.Type)).
			Int64("amount", txn.Amount).
			Int64("tip_amount", txn.TipAmount).
			Str("currency", string(txn.Currency)).
			Str("sender_id", txn.SenderID).
			Str("recipient_id", txn.RecipientID).
			Str("verifier_id", txn.VerifierID)
	}

	event.Msg("transfer failed")
}

func (uc *TransferUseCase) apply(ctx context.Context, txnID string) (*domain.LedgerTransaction, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	txn, err := uc.txnRepo.GetByIDForUpdate(ctx, tx, txnID)
	if err != nil {
		return nil, err
	}

	// Settled by an earlier delivery.
	if txn.Status != domain.StatusProcessing && txn.Status != domain.StatusRefunding {
		return txn, nil
	}

	ids := canonicalIDs(participants(txn))
	accounts, err := uc.accountRepo.GetByIDsForUpdate(ctx, tx, ids)
	if err != nil {
		return nil, err
	}

	accountMap := make(map[string]*domain.Account, len(accounts))
	for _, acc := range accounts {
		accountMap[acc.ID] = acc
	}
	for _, id := range ids {
		if accountMap[id] == nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, id)
		}
	}

	if err := applyEffect(txn, accountMap); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := txn.Finish(now); err != nil {
		return nil, err
	}

	for _, id := range ids {
		acc := accountMap[id]
		acc.UpdatedAt = now
		if err := uc.accountRepo.UpdateBalances(ctx, tx, acc); err != nil {
			return nil, err
		}
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

// participants lists the accounts a transaction's effect touches.
func participants(txn *domain.LedgerTransaction) []string {
	if txn.IsCardDeposit() {
		return []string{txn.RecipientID}
	}

	ids := []string{txn.SenderID, txn.RecipientID}
	if txn.IsRefund() && txn.VerifierID != "" {
		ids = append(ids, txn.VerifierID)
	}
	return ids
}

func applyEffect(txn *domain.LedgerTransaction, accounts map[string]*domain.Account) error {
	refund := txn.Status == domain.StatusRefunding
	currency := txn.Currency
	recipient := accounts[txn.RecipientID]

	switch {
	case txn.IsCardDeposit():
		if refund {
			return domain.ErrNotRefundable
		}
		recipient.ApplyCredit(currency, txn.Amount)

	case txn.IsCashDeposit():
		if refund {
			if err := recipient.ValidateDebit(currency, txn.Amount); err != nil {
				return err
			}
			recipient.ApplyDebit(currency, txn.Amount)
			return nil
		}
		if !accounts[txn.SenderID].HasCapability(domain.CapabilityCashDeposit) {
			return domain.ErrUnauthorizedDeposit
		}
		recipient.ApplyCredit(currency, txn.Amount)

	case txn.Type == domain.TransactionTypeTransfer, txn.Type == domain.TransactionTypePurchase:
		sender := accounts[txn.SenderID]
		if refund {
			return reverseTransfer(txn, sender, recipient, accounts[txn.VerifierID])
		}
		if err := sender.ValidateDebit(currency, txn.Gross()); err != nil {
			return err
		}
		sender.ApplyDebit(currency, txn.Gross())
		recipient.ApplyCredit(currency, txn.MerchantCredit())
		if txn.Fees != 0 {
			recipient.AccrueFees(currency, txn.Fees)
		}

	default:
		return fmt.Errorf("%w: %s", domain.ErrInvalidTransferType, txn.Type)
	}

	return nil
}

// reverseTransfer undoes every increment of the forward effect, including
// the tip settled on the verifier.
func reverseTransfer(txn *domain.LedgerTransaction, sender, recipient, verifier *domain.Account) error {
	currency := txn.Currency

	if err := recipient.ValidateDebit(currency, txn.MerchantCredit()); err != nil {
		return err
	}

	recipient.ApplyDebit(currency, txn.MerchantCredit())
	if txn.Fees != 0 {
		recipient.ReverseFees(currency, txn.Fees)
	}
	sender.ApplyCredit(currency, txn.Gross())

	if verifier != nil && txn.TipAmount != 0 {
		verifier.DebitTip(currency, txn.TipAmount)
	}

	return nil
}
