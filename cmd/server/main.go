package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/blazeledger/internal/adapter/http"
	"github.com/iho/blazeledger/internal/adapter/http/handler"
	"github.com/iho/blazeledger/internal/adapter/http/middleware"
	"github.com/iho/blazeledger/internal/app"
	"github.com/iho/blazeledger/internal/infrastructure/config"
	"github.com/iho/blazeledger/internal/infrastructure/logger"
	"github.com/iho/blazeledger/internal/infrastructure/metrics"
)

const limiterIdleTimeout = 10 * time.Minute

var errBrokerClosed = errors.New("broker connection closed")

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	l := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: "blazeledger-api"})
	logger.SetGlobal(l)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	infra, err := app.Connect(ctx, cfg, l)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect")
	}
	defer infra.Close()

	publisher, err := infra.TaskPublisher(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up task publisher")
	}

	m := metrics.New()
	go app.WatchPool(ctx, app.AcquiredConns(infra.Pool), m, 0)

	svc := app.NewServices(cfg, app.Deps{
		Pool:    infra.Pool,
		Redis:   infra.Redis,
		Queue:   publisher,
		Charges: app.NewChargeGateway(cfg, l),
		Metrics: m,
		Logger:  l,
	})

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go cleanupLimiters(ctx, rateLimiter, time.Minute)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:     handler.NewAccountHandler(svc.Accounts, svc.Receipts),
		TransactionHandler: handler.NewTransactionHandler(svc.Transactions, svc.Verification, svc.Refunds, svc.Processor),
		TaskHandler:        handler.NewTaskHandler(svc.Processor, l),
		LedgerHandler:      handler.NewLedgerHandler(svc.Ledger),
		HealthHandler:      handler.NewHealthHandler(readinessChecks(infra)...),
		IdempotencyStore:   svc.Idempotency,
		IdempotencyTTL:     cfg.IdempotencyTTL,
		RateLimiter:        rateLimiter,
		Logger:             l,
	})

	server := newHTTPServer(cfg, router)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down server...")
	case err := <-errCh:
		log.Fatal().Err(err).Msg("server failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func newHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      h,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}
}

// cleanupLimiters drops idle per-client limiters until ctx is done.
func cleanupLimiters(ctx context.Context, rl *middleware.RateLimiter, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := rl.CleanupLimiters(limiterIdleTimeout); n > 0 {
				log.Debug().Int("removed", n).Msg("cleaned up idle rate limiters")
			}
		}
	}
}

func readinessChecks(infra *app.Infra) []handler.Check {
	return []handler.Check{
		{Name: "postgres", Pinger: handler.PingFunc(infra.Pool.Ping)},
		{Name: "redis", Pinger: handler.PingFunc(func(ctx context.Context) error {
			return infra.Redis.Ping(ctx).Err()
		})},
		{Name: "amqp", Pinger: handler.PingFunc(func(context.Context) error {
			if infra.Broker.IsClosed() {
				return errBrokerClosed
			}
			return nil
		})},
	}
}
