package queue

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// TopologyChannel is the part of an AMQP channel used to declare queues.
type TopologyChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
}

// DeadLetterExchange names the exchange rejected items of queue go to.
func DeadLetterExchange(queue string) string {
	return queue + ".dlx"
}

// DeadLetterQueue names the queue collecting rejected items of queue.
func DeadLetterQueue(queue string) string {
	return queue + ".dlq"
}

// DeclareTaskQueue declares the durable work queue together with its
// dead-letter exchange and queue. Malformed items end up in the DLQ.
func DeclareTaskQueue(ch TopologyChannel, queue string) error {
	dlx := DeadLetterExchange(queue)
	dlq := DeadLetterQueue(queue)

	if err := ch.ExchangeDeclare(dlx, amqp.ExchangeDirect, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare dlx exchange: %w", err)
	}

	if _, err := ch.QueueDeclare(dlq, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare dlq queue: %w", err)
	}

	if err := ch.QueueBind(dlq, queue, dlx, false, nil); err != nil {
		return fmt.Errorf("bind dlq to dlx: %w", err)
	}

	args := amqp.Table{
		"x-dead-letter-exchange":    dlx,
		"x-dead-letter-routing-key": queue,
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, args); err != nil {
		return fmt.Errorf("declare task queue: %w", err)
	}

	return nil
}

// DeclareAnalyticsExchange declares the fanout exchange analytics events
// are published to.
func DeclareAnalyticsExchange(ch TopologyChannel, exchange string) error {
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeFanout, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare analytics exchange: %w", err)
	}
	return nil
}
