package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/iho/blazeledger/internal/domain"
	"github.com/iho/blazeledger/internal/infrastructure/postgres/generated"
)

// OutboxRepository implements usecase.OutboxRepository.
type OutboxRepository struct {
	queries *generated.Queries
}

// NewOutboxRepository creates a new OutboxRepository.
func NewOutboxRepository(db generated.DBTX) *OutboxRepository {
	return &OutboxRepository{
		queries: generated.New(db),
	}
}

// CreateIfAbsent inserts event and reports whether a row was written. The
// event id is the dedup key, so a replayed analytics record is a no-op.
func (r *OutboxRepository) CreateIfAbsent(ctx context.Context, event *domain.OutboxEvent) (bool, error) {
	params, err := outboxEventParams(event)
	if err != nil {
		return false, err
	}

	rows, err := r.queries.CreateOutboxEventIfAbsent(ctx, params)
	if err != nil {
		return false, fmt.Errorf("insert outbox event %s: %w", event.ID, err)
	}

	return rows > 0, nil
}

// GetUnpublished retrieves unpublished events, oldest first.
func (r *OutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	rows, err := r.queries.GetUnpublishedEvents(ctx, int32(limit))
	if err != nil {
		return nil, err
	}

	events := make([]*domain.OutboxEvent, 0, len(rows))
	for _, row := range rows {
		events = append(events, outboxEventFromRow(row))
	}

	return events, nil
}

// MarkPublished marks an event as published.
func (r *OutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	return r.queries.MarkEventPublished(ctx, generated.MarkEventPublishedParams{
		ID:          id,
		PublishedAt: timeToPgTimestamptz(publishedAt),
	})
}

// DeletePublished deletes published events older than the given time.
func (r *OutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	return r.queries.DeletePublishedEvents(ctx, timeToPgTimestamptz(before))
}

func outboxEventParams(event *domain.OutboxEvent) (generated.CreateOutboxEventIfAbsentParams, error) {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return generated.CreateOutboxEventIfAbsentParams{}, fmt.Errorf("marshal payload: %w", err)
	}

	return generated.CreateOutboxEventIfAbsentParams{
		ID:            event.ID,
		AggregateID:   event.AggregateID,
		AggregateType: event.AggregateType,
		EventType:     event.EventType,
		Payload:       payload,
		CreatedAt:     timeToPgTimestamptz(event.CreatedAt),
		Published:     event.Published,
	}, nil
}

// rawPayloadKey holds a stored payload that is not a JSON object.
const rawPayloadKey = "raw"

func outboxEventFromRow(row generated.OutboxEvent) *domain.OutboxEvent {
	return &domain.OutboxEvent{
		ID:            row.ID,
		AggregateID:   row.AggregateID,
		AggregateType: row.AggregateType,
		EventType:     row.EventType,
		Payload:       decodePayload(row.Payload),
		CreatedAt:     row.CreatedAt.Time,
		PublishedAt:   timestamptzPtr(row.PublishedAt),
		Published:     row.Published,
	}
}

// decodePayload keeps an undecodable payload publishable as a string.
func decodePayload(raw []byte) map[string]any {
	if len(raw) == 0 {
		return nil
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return map[string]any{rawPayloadKey: string(raw)}
	}
	return payload
}
