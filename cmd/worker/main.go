package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/iho/blazeledger/internal/adapter/queue"
	"github.com/iho/blazeledger/internal/app"
	"github.com/iho/blazeledger/internal/infrastructure/config"
	"github.com/iho/blazeledger/internal/infrastructure/eventpublisher"
	"github.com/iho/blazeledger/internal/infrastructure/logger"
	"github.com/iho/blazeledger/internal/infrastructure/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	l := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: "blazeledger-worker"})
	logger.SetGlobal(l)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, l); err != nil {
		log.Fatal().Err(err).Msg("worker failed")
	}
	log.Info().Msg("worker stopped")
}

func run(ctx context.Context, cfg *config.Config, l zerolog.Logger) error {
	infra, err := app.Connect(ctx, cfg, l)
	if err != nil {
		return err
	}
	defer infra.Close()

	publisher, err := infra.TaskPublisher(cfg)
	if err != nil {
		return err
	}

	m := metrics.New()
	svc := app.NewServices(cfg, app.Deps{
		Pool:    infra.Pool,
		Redis:   infra.Redis,
		Queue:   publisher,
		Charges: app.NewChargeGateway(cfg, l),
		Metrics: m,
		Logger:  l,
	})

	consumeCh, err := infra.Broker.Channel()
	if err != nil {
		return fmt.Errorf("open consume channel: %w", err)
	}
	consumer := queue.NewConsumer(consumeCh, svc.Processor.Process, queue.ConsumerConfig{
		Queue:       cfg.TaskQueue,
		Tag:         "blazeledger-worker",
		Concurrency: cfg.WorkerConcurrency,
		Observer:    m,
		Logger:      l,
	})

	events, err := newOutboxPublisher(cfg, infra, l)
	if err != nil {
		return err
	}
	outbox := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: svc.Outbox,
		Publisher:  events,
		Observer:   m,
		Logger:     l,
		Interval:   cfg.OutboxInterval,
		Retention:  cfg.OutboxRetention,
	})

	metricsServer := newMetricsServer(cfg.WorkerMetricsPort, promhttp.Handler())

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return ignoreCanceled(consumer.Run(ctx)) })
	g.Go(func() error { return ignoreCanceled(svc.Sweeper.Run(ctx)) })
	g.Go(func() error { return ignoreCanceled(outbox.Start(ctx)) })
	g.Go(func() error {
		app.WatchPool(ctx, app.AcquiredConns(infra.Pool), m, 0)
		return nil
	})
	g.Go(func() error {
		l.Info().Str("port", cfg.WorkerMetricsPort).Msg("serving worker metrics")
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
		defer cancel()
		return metricsServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// newOutboxPublisher publishes analytics events to the broker when analytics
// are enabled and only logs them otherwise.
func newOutboxPublisher(cfg *config.Config, infra *app.Infra, l zerolog.Logger) (eventpublisher.Publisher, error) {
	if !cfg.AnalyticsEnabled() {
		return eventpublisher.NewLogPublisher(l), nil
	}

	ch, err := infra.Broker.Channel()
	if err != nil {
		return nil, fmt.Errorf("open analytics channel: %w", err)
	}
	if err := queue.DeclareAnalyticsExchange(ch, cfg.AnalyticsExchange); err != nil {
		return nil, err
	}
	return queue.NewEventPublisher(ch, cfg.AnalyticsExchange, cfg.BrokerConfirmTimeout)
}

func newMetricsServer(port string, h http.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", h)
	return &http.Server{Addr: ":" + port, Handler: mux}
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
