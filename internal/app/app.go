// Package app wires the ledger's infrastructure and use cases. The server,
// the worker and the CLI share one graph built here.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iho/blazeledger/internal/adapter/charge"
	"github.com/iho/blazeledger/internal/adapter/notifier"
	"github.com/iho/blazeledger/internal/adapter/queue"
	postgresRepo "github.com/iho/blazeledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/blazeledger/internal/adapter/repository/redis"
	"github.com/iho/blazeledger/internal/infrastructure/config"
	"github.com/iho/blazeledger/internal/infrastructure/metrics"
	"github.com/iho/blazeledger/internal/infrastructure/postgres"
	"github.com/iho/blazeledger/internal/infrastructure/redis"
	"github.com/iho/blazeledger/internal/usecase"
)

const (
	chargeBreakerFailures = 5
	chargeBreakerOpen     = 30 * time.Second
	poolStatsInterval     = 15 * time.Second
)

// Infra holds the external connections of a process.
type Infra struct {
	Pool   *pgxpool.Pool
	Redis  *goredis.Client
	Broker *amqp.Connection

	logger zerolog.Logger
}

// Connect opens Postgres, Redis and the broker. Everything opened so far is
// closed again when a later step fails.
func Connect(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Infra, error) {
	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	logger.Info().Msg("connected to postgres")

	redisClient, err := redis.NewClient(ctx, redis.ClientConfig{
		URL:            cfg.RedisURL,
		PoolSize:       cfg.RedisPoolSize,
		ConnectTimeout: cfg.RedisConnectTimeout,
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	logger.Info().Msg("connected to redis")

	broker, err := queue.Dial(ctx, cfg.AMQPURL, cfg.BrokerDialTimeout, logger)
	if err != nil {
		redisClient.Close()
		pool.Close()
		return nil, fmt.Errorf("connect broker: %w", err)
	}
	logger.Info().Msg("connected to broker")

	return &Infra{Pool: pool, Redis: redisClient, Broker: broker, logger: logger}, nil
}

// TaskPublisher opens a confirm-mode channel, declares the task queue
// topology on it and returns a publisher for work items.
func (i *Infra) TaskPublisher(cfg *config.Config) (*queue.Publisher, error) {
	ch, err := i.Broker.Channel()
	if err != nil {
		return nil, fmt.Errorf("open publish channel: %w", err)
	}
	if err := queue.DeclareTaskQueue(ch, cfg.TaskQueue); err != nil {
		ch.Close()
		return nil, err
	}
	return queue.NewPublisher(ch, cfg.TaskQueue, cfg.BrokerConfirmTimeout)
}

// Close releases every connection. Errors are logged.
func (i *Infra) Close() {
	if i.Broker != nil {
		if err := i.Broker.Close(); err != nil {
			i.logger.Warn().Err(err).Msg("close broker")
		}
	}
	if i.Redis != nil {
		if err := i.Redis.Close(); err != nil {
			i.logger.Warn().Err(err).Msg("close redis")
		}
	}
	if i.Pool != nil {
		i.Pool.Close()
	}
}

// Deps are the collaborators NewServices builds on.
type Deps struct {
	Pool    *pgxpool.Pool
	Redis   *goredis.Client
	Queue   usecase.TaskQueue
	Charges usecase.ChargeGateway
	Metrics usecase.ProcessingMetrics
	Logger  zerolog.Logger
}

// Services is the wired use case graph.
type Services struct {
	Accounts     *usecase.AccountUseCase
	Transactions *usecase.TransactionUseCase
	Receipts     *usecase.ReceiptRecorder
	Verification *usecase.VerificationUseCase
	Refunds      *usecase.RefundUseCase
	Processor    *usecase.ProcessorUseCase
	Sweeper      *usecase.SweeperUseCase
	Ledger       *usecase.LedgerUseCase

	Outbox      usecase.OutboxRepository
	Idempotency *redisRepo.IdempotencyStore
}

// NewServices builds repositories, the lock manager and all use cases.
func NewServices(cfg *config.Config, deps Deps) *Services {
	if deps.Metrics == nil {
		deps.Metrics = usecase.NopMetrics{}
	}

	txManager := postgresRepo.NewTxManager(deps.Pool)
	accountRepo := postgresRepo.NewAccountRepository(deps.Pool)
	txnRepo := postgresRepo.NewLedgerTransactionRepository(deps.Pool)
	instrumentRepo := postgresRepo.NewFundingInstrumentRepository(deps.Pool)
	receiptRepo := postgresRepo.NewReceiptRepository(deps.Pool)
	ledgerRepo := postgresRepo.NewLedgerRepository(deps.Pool)
	outboxRepo := postgresRepo.NewOutboxRepository(deps.Pool)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier(deps.Logger)

	locker := redisRepo.NewLocker(deps.Redis, redisRepo.LockerConfig{
		Expiry:     cfg.LockExpiry,
		RetryDelay: cfg.LockRetryDelay,
	})
	statusCache := redisRepo.NewStatusCache(deps.Redis, cfg.StatusCacheTTL)

	receipts := usecase.NewReceiptRecorder(receiptRepo, idGen, deps.Metrics)
	cancel := usecase.NewCancelUseCase(txManager, txnRepo, receipts, retrier)
	transfer := usecase.NewTransferUseCase(txManager, accountRepo, txnRepo, receipts, cancel, retrier, deps.Logger)

	processor := usecase.NewProcessorUseCase(usecase.ProcessorDeps{
		TxManager:      txManager,
		TxnRepo:        txnRepo,
		AccountRepo:    accountRepo,
		InstrumentRepo: instrumentRepo,
		Locker:         locker,
		Transfer:       transfer,
		Cancel:         cancel,
		Charges:        deps.Charges,
		Notifier:       notifier.NewLoggerNotifier(deps.Logger),
		Analytics:      postgresRepo.NewOutboxAnalyticsSink(outboxRepo),
		Queue:          deps.Queue,
		Retrier:        retrier,
		Metrics:        deps.Metrics,
		Logger:         deps.Logger,
	}, usecase.ProcessorConfig{
		TxnLockAttempts:     cfg.TxnLockAttempts,
		AccountLockAttempts: cfg.AccountLockAttempts,
		ProcessingDeadline:  cfg.ProcessingDeadline,
		AnalyticsEnabled:    cfg.AnalyticsEnabled(),
	})

	return &Services{
		Accounts: usecase.NewAccountUseCase(accountRepo, idGen),
		Transactions: usecase.NewTransactionUseCase(txManager, txnRepo, deps.Queue, idGen, deps.Logger).
			WithStatusCache(statusCache),
		Receipts:     receipts,
		Verification: usecase.NewVerificationUseCase(txManager, txnRepo, accountRepo, locker, retrier, deps.Logger),
		Refunds:      usecase.NewRefundUseCase(txManager, txnRepo, accountRepo, locker, deps.Queue, retrier, deps.Logger),
		Processor:    processor,
		Sweeper: usecase.NewSweeperUseCase(txnRepo, deps.Queue, deps.Metrics, deps.Logger, usecase.SweeperConfig{
			ProcessingDeadline: cfg.ProcessingDeadline,
			Interval:           cfg.SweepInterval,
			BatchSize:          cfg.SweepBatchSize,
		}),
		Ledger:      usecase.NewLedgerUseCase(ledgerRepo),
		Outbox:      outboxRepo,
		Idempotency: redisRepo.NewIdempotencyStore(deps.Redis),
	}
}

// NewChargeGateway returns the HTTP charge client, or the static gateway
// when no charge API is configured.
func NewChargeGateway(cfg *config.Config, logger zerolog.Logger) usecase.ChargeGateway {
	if cfg.ChargeAPIURL == "" {
		logger.Warn().Msg("CHARGE_API_URL not set, using static charge gateway")
		return charge.NewStaticGateway()
	}
	return charge.NewClient(charge.Config{
		BaseURL:             cfg.ChargeAPIURL,
		APIKey:              cfg.ChargeAPIKey,
		Timeout:             cfg.ChargeTimeout,
		ConsecutiveFailures: chargeBreakerFailures,
		OpenTimeout:         chargeBreakerOpen,
	}, logger)
}

// PoolGauge receives pool usage samples.
type PoolGauge interface {
	SetDBConnections(n int32)
}

var _ PoolGauge = (*metrics.Metrics)(nil)

// WatchPool samples acquired connections into gauge until ctx is done.
func WatchPool(ctx context.Context, acquired func() int32, gauge PoolGauge, interval time.Duration) {
	if interval <= 0 {
		interval = poolStatsInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	gauge.SetDBConnections(acquired())
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			gauge.SetDBConnections(acquired())
		}
	}
}

// AcquiredConns reads the pool's acquired connection count.
func AcquiredConns(pool *pgxpool.Pool) func() int32 {
	return func() int32 { return pool.Stat().AcquiredConns() }
}
