package queue

import (
	"context"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

// fakeChannel records declarations and publishes and confirms each
// publish with ack unless nack is set.
type fakeChannel struct {
	mu         sync.Mutex
	confirmed  bool
	confirms   chan amqp.Confirmation
	published  []published
	nack       bool
	silent     bool
	publishErr error

	exchanges map[string]string
	queues    map[string]amqp.Table
	bindings  []string

	qos        int
	deliveries chan amqp.Delivery
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{
		exchanges:  map[string]string{},
		queues:     map[string]amqp.Table{},
		deliveries: make(chan amqp.Delivery, 16),
	}
}

func (f *fakeChannel) Confirm(noWait bool) error {
	f.confirmed = true
	return nil
}

func (f *fakeChannel) NotifyPublish(c chan amqp.Confirmation) chan amqp.Confirmation {
	f.confirms = c
	return c
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, published{exchange: exchange, key: key, msg: msg})
	if !f.silent {
		f.confirms <- amqp.Confirmation{DeliveryTag: uint64(len(f.published)), Ack: !f.nack}
	}
	return nil
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	f.exchanges[name] = kind
	return nil
}

func (f *fakeChannel) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error) {
	f.queues[name] = args
	return amqp.Queue{Name: name}, nil
}

func (f *fakeChannel) QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error {
	f.bindings = append(f.bindings, exchange+"->"+name+":"+key)
	return nil
}

func (f *fakeChannel) Qos(prefetchCount, prefetchSize int, global bool) error {
	f.qos = prefetchCount
	return nil
}

func (f *fakeChannel) Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error) {
	return f.deliveries, nil
}

type settlement struct {
	tag     uint64
	kind    string
	requeue bool
}

type fakeAcknowledger struct {
	mu   sync.Mutex
	log  []settlement
	done chan struct{}
}

func newFakeAcknowledger() *fakeAcknowledger {
	return &fakeAcknowledger{done: make(chan struct{}, 64)}
}

func (a *fakeAcknowledger) record(s settlement) error {
	a.mu.Lock()
	a.log = append(a.log, s)
	a.mu.Unlock()
	a.done <- struct{}{}
	return nil
}

func (a *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	return a.record(settlement{tag: tag, kind: "ack"})
}

func (a *fakeAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	return a.record(settlement{tag: tag, kind: "nack", requeue: requeue})
}

func (a *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	return a.record(settlement{tag: tag, kind: "reject", requeue: requeue})
}

func (a *fakeAcknowledger) settlements() map[uint64]settlement {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make(map[uint64]settlement, len(a.log))
	for _, s := range a.log {
		out[s.tag] = s
	}
	return out
}
