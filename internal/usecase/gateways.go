package usecase

//go:generate mockgen -source=gateways.go -destination=mocks/mock_gateways.go -package=mocks

import (
	"context"
	"time"

	"github.com/iho/blazeledger/internal/domain"
)

// ChargeRequest describes a card charge for a deposit.
type ChargeRequest struct {
	// IdempotencyKey makes repeated charges for one deposit collapse into one.
	IdempotencyKey string
	CustomerRef    string
	Amount         int64
	Currency       domain.Currency
	Description    string
}

// ChargeGateway is the boundary to the external card network.
type ChargeGateway interface {
	// Charge returns domain.ErrChargeDeclined for declines and
	// domain.ErrChargeUnavailable for connection-level failures.
	Charge(ctx context.Context, req ChargeRequest) (string, error)
}

// Notifier dispatches outbound notifications.
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification) error
}

// AnalyticsSink records fire-and-forget analytics events keyed for dedup.
type AnalyticsSink interface {
	Record(ctx context.Context, key string, event domain.TransactionAnalyticsEvent) error
}

// TaskQueue accepts "process transaction id" work items.
type TaskQueue interface {
	Enqueue(ctx context.Context, txnID string) error
}

// ProcessingMetrics observes processor outcomes.
type ProcessingMetrics interface {
	ObserveProcessed(outcome string, duration time.Duration)
	ObserveLockContention(scope string)
	ObserveCharge(result string)
	ObserveSwept(count int)
	ObserveReceipts(count int)
}

// NopMetrics discards every observation.
type NopMetrics struct{}

func (NopMetrics) ObserveProcessed(string, time.Duration) {}
func (NopMetrics) ObserveLockContention(string)           {}
func (NopMetrics) ObserveCharge(string)                   {}
func (NopMetrics) ObserveSwept(int)                       {}
func (NopMetrics) ObserveReceipts(int)                    {}
