package postgres

import (
	"context"
	"time"

	"github.com/iho/blazeledger/internal/domain"
	"github.com/iho/blazeledger/internal/usecase"
)

// OutboxAnalyticsSink implements usecase.AnalyticsSink on top of the outbox.
// The event publisher drains the rows to the analytics destination.
type OutboxAnalyticsSink struct {
	outbox usecase.OutboxRepository
	now    func() time.Time
}

// NewOutboxAnalyticsSink creates a new OutboxAnalyticsSink.
func NewOutboxAnalyticsSink(outbox usecase.OutboxRepository) *OutboxAnalyticsSink {
	return &OutboxAnalyticsSink{outbox: outbox, now: time.Now}
}

// Record stores event under key. Recording the same key and status twice
// keeps the first row.
func (s *OutboxAnalyticsSink) Record(ctx context.Context, key string, event domain.TransactionAnalyticsEvent) error {
	eventType := domain.EventTypeTransactionProcessed
	if event.Status == string(domain.StatusRefunded) {
		eventType = domain.EventTypeTransactionRefunded
	}

	_, err := s.outbox.CreateIfAbsent(ctx, &domain.OutboxEvent{
		ID:            key + ":" + event.Status,
		AggregateID:   key,
		AggregateType: domain.AggregateTypeTransaction,
		EventType:     eventType,
		Payload:       domain.MarshalState(event),
		CreatedAt:     s.now().UTC(),
	})

	return err
}
