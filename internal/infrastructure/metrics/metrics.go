package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics. It implements
// usecase.ProcessingMetrics.
type Metrics struct {
	// Processing metrics
	TransactionsProcessed *prometheus.CounterVec
	ProcessingDuration    *prometheus.HistogramVec
	LockContention        *prometheus.CounterVec
	ChargeOutcomes        *prometheus.CounterVec
	TransactionsSwept     prometheus.Counter
	ReceiptsWritten       prometheus.Counter

	// Queue metrics
	DeliveriesHandled *prometheus.CounterVec
	EventsPublished   *prometheus.CounterVec

	// Database metrics
	DBConnections prometheus.Gauge
}

// New creates all metrics and registers them with the default registerer.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates all metrics and registers them with reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		TransactionsProcessed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blazeledger_transactions_processed_total",
				Help: "Total processed work items by outcome",
			},
			[]string{"outcome"},
		),
		ProcessingDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "blazeledger_processing_duration_seconds",
				Help:    "Duration of work item processing",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
		LockContention: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blazeledger_lock_contention_total",
				Help: "Lock acquisitions that ran out of attempts",
			},
			[]string{"scope"},
		),
		ChargeOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blazeledger_charges_total",
				Help: "Card charge attempts by result",
			},
			[]string{"result"},
		),
		TransactionsSwept: factory.NewCounter(prometheus.CounterOpts{
			Name: "blazeledger_transactions_swept_total",
			Help: "Stuck transactions re-enqueued by the sweeper",
		}),
		ReceiptsWritten: factory.NewCounter(prometheus.CounterOpts{
			Name: "blazeledger_receipts_written_total",
			Help: "Audit receipts written",
		}),
		DeliveriesHandled: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blazeledger_queue_deliveries_total",
				Help: "Task queue deliveries by acknowledgement",
			},
			[]string{"ack"},
		),
		EventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blazeledger_outbox_events_total",
				Help: "Outbox events handed to the publisher by result",
			},
			[]string{"result"},
		),
		DBConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name: "blazeledger_db_connections",
			Help: "Current number of acquired database connections",
		}),
	}
}

func (m *Metrics) ObserveProcessed(outcome string, duration time.Duration) {
	m.TransactionsProcessed.WithLabelValues(outcome).Inc()
	m.ProcessingDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

func (m *Metrics) ObserveLockContention(scope string) {
	m.LockContention.WithLabelValues(scope).Inc()
}

func (m *Metrics) ObserveCharge(result string) {
	m.ChargeOutcomes.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveSwept(count int) {
	m.TransactionsSwept.Add(float64(count))
}

func (m *Metrics) ObserveReceipts(count int) {
	m.ReceiptsWritten.Add(float64(count))
}

// ObserveDelivery counts a queue delivery as acked or nacked.
func (m *Metrics) ObserveDelivery(acked bool) {
	label := "nack"
	if acked {
		label = "ack"
	}
	m.DeliveriesHandled.WithLabelValues(label).Inc()
}

// ObservePublished counts an outbox publish attempt.
func (m *Metrics) ObservePublished(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.EventsPublished.WithLabelValues(result).Inc()
}

// SetDBConnections records the number of acquired pool connections.
func (m *Metrics) SetDBConnections(n int32) {
	m.DBConnections.Set(float64(n))
}
