package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/iho/blazeledger/internal/domain"
)

// TransactionUseCase creates ledger transactions and answers status queries.
type TransactionUseCase struct {
	txManager TransactionManager
	txnRepo   LedgerTransactionRepository
	queue     TaskQueue
	idGen     IDGenerator
	cache     StatusCache
	logger    zerolog.Logger
}

// NewTransactionUseCase creates a new TransactionUseCase.
func NewTransactionUseCase(
	txManager TransactionManager,
	txnRepo LedgerTransactionRepository,
	queue TaskQueue,
	idGen IDGenerator,
	logger zerolog.Logger,
) *TransactionUseCase {
	return &TransactionUseCase{
		txManager: txManager,
		txnRepo:   txnRepo,
		queue:     queue,
		idGen:     idGen,
		logger:    logger,
	}
}

// WithStatusCache makes RefreshStatus serve final statuses from cache.
func (uc *TransactionUseCase) WithStatusCache(cache StatusCache) *TransactionUseCase {
	uc.cache = cache
	return uc
}

// CreateTransactionInput represents input for creating a transaction.
type CreateTransactionInput struct {
	Type                domain.TransactionType
	Currency            string
	Amount              int64
	TipAmount           int64
	SenderID            string
	RecipientID         string
	FundingInstrumentID string
}

// CreateTransaction stores a Pending transaction and enqueues it.
func (uc *TransactionUseCase) CreateTransaction(ctx context.Context, input CreateTransactionInput) (*domain.LedgerTransaction, error) {
	currency, err := domain.ParseCurrency(input.Currency)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}
	if err := domain.ValidateAmount(input.TipAmount); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	txn := &domain.LedgerTransaction{
		ID:                  uc.idGen.Generate(),
		UUID:                uuid.NewString(),
		Type:                input.Type,
		Status:              domain.StatusPending,
		Currency:            currency,
		Amount:              input.Amount,
		TipAmount:           input.TipAmount,
		TotalAmount:         input.Amount,
		SenderID:            input.SenderID,
		RecipientID:         input.RecipientID,
		FundingInstrumentID: input.FundingInstrumentID,
		CreatedAt:           now,
		ModifiedAt:          now,
	}

	if err := txn.Validate(); err != nil {
		return nil, err
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := uc.txnRepo.Create(ctx, tx, txn); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if err := uc.queue.Enqueue(ctx, txn.ID); err != nil {
		uc.logger.Warn().Err(err).Str("txn_id", txn.ID).Msg("failed to enqueue new transaction")
	}

	return txn, nil
}

// GetTransaction retrieves a transaction by ID.
func (uc *TransactionUseCase) GetTransaction(ctx context.Context, id string) (*domain.LedgerTransaction, error) {
	return uc.txnRepo.GetByID(ctx, id)
}

// GetStatus retrieves a transaction by its external correlation UUID.
func (uc *TransactionUseCase) GetStatus(ctx context.Context, uuid string) (*domain.LedgerTransaction, error) {
	return uc.txnRepo.GetByUUID(ctx, uuid)
}

// RefreshStatus returns the current status of the transaction with the
// given correlation UUID. Cancelled and refunded statuses are final and
// are cached.
func (uc *TransactionUseCase) RefreshStatus(ctx context.Context, uuid string) (domain.TransactionStatus, error) {
	if uc.cache != nil {
		status, ok, err := uc.cache.GetStatus(ctx, uuid)
		if err != nil {
			uc.logger.Warn().Err(err).Str("uuid", uuid).Msg("status cache read failed")
		} else if ok {
			return status, nil
		}
	}

	txn, err := uc.txnRepo.GetByUUID(ctx, uuid)
	if err != nil {
		return "", err
	}

	if uc.cache != nil && isFinal(txn.Status) {
		if err := uc.cache.SetStatus(ctx, uuid, txn.Status); err != nil {
			uc.logger.Warn().Err(err).Str("uuid", uuid).Msg("status cache write failed")
		}
	}

	return txn.Status, nil
}

func isFinal(status domain.TransactionStatus) bool {
	return status == domain.StatusCancelled || status == domain.StatusRefunded
}
