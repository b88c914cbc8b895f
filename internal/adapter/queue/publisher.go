package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iho/blazeledger/internal/domain"
)

var (
	// ErrPublishNacked is returned when the broker refuses a message.
	ErrPublishNacked = errors.New("publish nacked by broker")
	// ErrConfirmTimeout is returned when no confirmation arrives in time.
	ErrConfirmTimeout = errors.New("publish confirmation timed out")
	// ErrPublisherClosed is returned once the confirmation stream ends.
	ErrPublisherClosed = errors.New("publisher closed")
)

// ConfirmableChannel is an AMQP channel in confirm mode.
type ConfirmableChannel interface {
	Confirm(noWait bool) error
	NotifyPublish(confirm chan amqp.Confirmation) chan amqp.Confirmation
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// TaskMessage is the body of a work item.
type TaskMessage struct {
	TransactionID string `json:"transaction_id"`
}

// confirmPublisher serializes publishes so each one waits for its own
// confirmation.
type confirmPublisher struct {
	mu       sync.Mutex
	ch       ConfirmableChannel
	confirms chan amqp.Confirmation
	timeout  time.Duration
}

func newConfirmPublisher(ch ConfirmableChannel, timeout time.Duration) (*confirmPublisher, error) {
	if err := ch.Confirm(false); err != nil {
		return nil, fmt.Errorf("enable publisher confirms: %w", err)
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &confirmPublisher{
		ch:       ch,
		confirms: ch.NotifyPublish(make(chan amqp.Confirmation, 1)),
		timeout:  timeout,
	}, nil
}

func (p *confirmPublisher) publish(ctx context.Context, exchange, key string, msg amqp.Publishing) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ch.PublishWithContext(ctx, exchange, key, false, false, msg); err != nil {
		return fmt.Errorf("publish: %w", err)
	}

	timer := time.NewTimer(p.timeout)
	defer timer.Stop()

	select {
	case confirmed, ok := <-p.confirms:
		if !ok {
			return ErrPublisherClosed
		}
		if !confirmed.Ack {
			return fmt.Errorf("%w: delivery_tag=%d", ErrPublishNacked, confirmed.DeliveryTag)
		}
		return nil
	case <-timer.C:
		return ErrConfirmTimeout
	case <-ctx.Done():
		return fmt.Errorf("context cancelled: %w", ctx.Err())
	}
}

// Publisher implements usecase.TaskQueue on a RabbitMQ queue.
type Publisher struct {
	confirm *confirmPublisher
	queue   string
}

// NewPublisher puts ch in confirm mode and publishes work items to queue.
func NewPublisher(ch ConfirmableChannel, queue string, confirmTimeout time.Duration) (*Publisher, error) {
	cp, err := newConfirmPublisher(ch, confirmTimeout)
	if err != nil {
		return nil, err
	}
	return &Publisher{confirm: cp, queue: queue}, nil
}

// Enqueue publishes a persistent "process transaction txnID" item.
func (p *Publisher) Enqueue(ctx context.Context, txnID string) error {
	body, err := json.Marshal(TaskMessage{TransactionID: txnID})
	if err != nil {
		return err
	}

	return p.confirm.publish(ctx, "", p.queue, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    txnID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
}

// EventPublisher publishes outbox events to a fanout exchange.
type EventPublisher struct {
	confirm  *confirmPublisher
	exchange string
}

// NewEventPublisher puts ch in confirm mode and publishes to exchange.
func NewEventPublisher(ch ConfirmableChannel, exchange string, confirmTimeout time.Duration) (*EventPublisher, error) {
	cp, err := newConfirmPublisher(ch, confirmTimeout)
	if err != nil {
		return nil, err
	}
	return &EventPublisher{confirm: cp, exchange: exchange}, nil
}

// Publish sends the event payload; the outbox id becomes the message id
// so consumers can drop duplicates.
func (p *EventPublisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	body, err := json.Marshal(event.Payload)
	if err != nil {
		return err
	}

	return p.confirm.publish(ctx, p.exchange, event.EventType, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID,
		Type:         event.EventType,
		Timestamp:    event.CreatedAt,
		Body:         body,
	})
}
