package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/iho/blazeledger/internal/usecase"
)

// ConsumeChannel is the part of an AMQP channel used to consume.
type ConsumeChannel interface {
	Qos(prefetchCount, prefetchSize int, global bool) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

// Handler processes one work item.
type Handler func(ctx context.Context, txnID string) error

// DeliveryObserver is told whether each delivery was acked.
type DeliveryObserver interface {
	ObserveDelivery(acked bool)
}

// ConsumerConfig configures a Consumer.
type ConsumerConfig struct {
	Queue       string
	Tag         string
	Concurrency int
	// RequeueDelay is waited before a failed item is handed back.
	RequeueDelay time.Duration
	Observer     DeliveryObserver
	Logger       zerolog.Logger
}

// Consumer feeds task queue deliveries to a Handler with a fixed number
// of workers. Items are acked on success and nacked with requeue when the
// handler reports a retryable error.
type Consumer struct {
	ch      ConsumeChannel
	handler Handler
	cfg     ConsumerConfig
	logger  zerolog.Logger
}

// NewConsumer creates a new Consumer.
func NewConsumer(ch ConsumeChannel, handler Handler, cfg ConsumerConfig) *Consumer {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.RequeueDelay <= 0 {
		cfg.RequeueDelay = 250 * time.Millisecond
	}

	return &Consumer{
		ch:      ch,
		handler: handler,
		cfg:     cfg,
		logger:  cfg.Logger.With().Str("component", "consumer").Str("queue", cfg.Queue).Logger(),
	}
}

// Run consumes until ctx is done or the delivery channel closes.
func (c *Consumer) Run(ctx context.Context) error {
	if err := c.ch.Qos(c.cfg.Concurrency, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}

	deliveries, err := c.ch.Consume(c.cfg.Queue, c.cfg.Tag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.cfg.Queue, err)
	}

	c.logger.Info().Int("concurrency", c.cfg.Concurrency).Msg("consumer started")

	var wg sync.WaitGroup
	for i := 0; i < c.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.work(ctx, deliveries)
		}()
	}
	wg.Wait()

	if ctx.Err() != nil {
		c.logger.Info().Msg("consumer shutting down")
		return ctx.Err()
	}

	return errors.New("delivery channel closed")
}

func (c *Consumer) work(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			c.handle(ctx, d)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	var msg TaskMessage
	if err := json.Unmarshal(d.Body, &msg); err != nil || msg.TransactionID == "" {
		c.logger.Error().Err(err).Str("message_id", d.MessageId).Msg("dropping malformed work item")
		c.settle(d.Reject(false), false)
		return
	}

	log := c.logger.With().Str("txn_id", msg.TransactionID).Bool("redelivered", d.Redelivered).Logger()

	err := c.handler(ctx, msg.TransactionID)
	if err == nil {
		c.settle(d.Ack(false), true)
		return
	}

	if !usecase.IsRetryable(err) {
		log.Warn().Err(err).Msg("work item failed permanently")
		c.settle(d.Ack(false), true)
		return
	}

	log.Info().Err(err).Msg("work item will be redelivered")
	select {
	case <-ctx.Done():
	case <-time.After(c.cfg.RequeueDelay):
	}
	c.settle(d.Nack(false, true), false)
}

func (c *Consumer) settle(err error, acked bool) {
	if err != nil {
		c.logger.Error().Err(err).Msg("failed to settle delivery")
	}
	if c.cfg.Observer != nil {
		c.cfg.Observer.ObserveDelivery(acked)
	}
}
