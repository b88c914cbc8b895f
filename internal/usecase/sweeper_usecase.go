package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// SweeperUseCase re-enqueues transactions whose work item was lost or whose
// worker died mid-flight.
type SweeperUseCase struct {
	txnRepo   LedgerTransactionRepository
	queue     TaskQueue
	metrics   ProcessingMetrics
	logger    zerolog.Logger
	deadline  time.Duration
	interval  time.Duration
	batchSize int
	now       func() time.Time
}

// SweeperConfig for SweeperUseCase.
type SweeperConfig struct {
	ProcessingDeadline time.Duration
	Interval           time.Duration
	BatchSize          int
}

// NewSweeperUseCase creates a new SweeperUseCase.
func NewSweeperUseCase(txnRepo LedgerTransactionRepository, queue TaskQueue, metrics ProcessingMetrics, logger zerolog.Logger, cfg SweeperConfig) *SweeperUseCase {
	if cfg.ProcessingDeadline <= 0 {
		cfg.ProcessingDeadline = DefaultProcessingDeadline
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if metrics == nil {
		metrics = NopMetrics{}
	}

	return &SweeperUseCase{
		txnRepo:   txnRepo,
		queue:     queue,
		metrics:   metrics,
		logger:    logger,
		deadline:  cfg.ProcessingDeadline,
		interval:  cfg.Interval,
		batchSize: cfg.BatchSize,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Sweep enqueues one batch of stuck transactions and returns how many were
// re-queued.
func (uc *SweeperUseCase) Sweep(ctx context.Context) (int, error) {
	now := uc.now()

	stuck, err := uc.txnRepo.ListStuck(ctx, now.Add(-uc.deadline), now, uc.batchSize)
	if err != nil {
		return 0, err
	}

	requeued := 0
	for _, txn := range stuck {
		if err := uc.queue.Enqueue(ctx, txn.ID); err != nil {
			uc.logger.Error().Err(err).Str("txn_id", txn.ID).Msg("failed to re-enqueue stuck transaction")
			continue
		}
		requeued++
		uc.logger.Info().
			Str("txn_id", txn.ID).
			Str("status", string(txn.Status)).
			Time("modified_at", txn.ModifiedAt).
			Msg("re-enqueued stuck transaction")
	}

	uc.metrics.ObserveSwept(requeued)
	return requeued, nil
}

// Run sweeps on every tick until ctx is cancelled.
func (uc *SweeperUseCase) Run(ctx context.Context) error {
	uc.logger.Info().Dur("interval", uc.interval).Dur("deadline", uc.deadline).Msg("sweeper started")

	ticker := time.NewTicker(uc.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			uc.logger.Info().Msg("sweeper shutting down")
			return ctx.Err()
		case <-ticker.C:
			if _, err := uc.Sweep(ctx); err != nil {
				uc.logger.Error().Err(err).Msg("sweep failed")
			}
		}
	}
}
