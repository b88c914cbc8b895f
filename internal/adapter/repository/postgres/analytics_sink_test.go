package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/iho/blazeledger/internal/domain"
	"github.com/iho/blazeledger/internal/usecase/mocks"
)

func TestOutboxAnalyticsSinkRecord(t *testing.T) {
	outbox := mocks.NewMockOutboxRepository()
	sink := NewOutboxAnalyticsSink(outbox)
	sink.now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }

	completed := domain.TransactionAnalyticsEvent{UUID: "uuid-1", Status: "completed", Amount: 2000}
	refunded := domain.TransactionAnalyticsEvent{UUID: "uuid-1", Status: "refunded", Amount: 2000}

	for _, ev := range []domain.TransactionAnalyticsEvent{completed, completed, refunded} {
		if err := sink.Record(context.Background(), "txn-1", ev); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	events := outbox.Events()
	if len(events) != 2 {
		t.Fatalf("expected 2 outbox events, got %d", len(events))
	}

	types := map[string]string{}
	for _, e := range events {
		types[e.ID] = e.EventType
		if e.AggregateID != "txn-1" {
			t.Fatalf("aggregate id = %s", e.AggregateID)
		}
	}
	if types["txn-1:completed"] != domain.EventTypeTransactionProcessed {
		t.Fatalf("completed event type = %q", types["txn-1:completed"])
	}
	if types["txn-1:refunded"] != domain.EventTypeTransactionRefunded {
		t.Fatalf("refunded event type = %q", types["txn-1:refunded"])
	}
}
