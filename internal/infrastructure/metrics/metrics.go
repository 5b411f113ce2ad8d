package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"

	"github.com/iho/assetvault/internal/domain"
)

// Metrics holds all Prometheus metrics and implements usecase.MetricsRecorder.
// Amounts are exported in whole units (canonical / 10^6).
type Metrics struct {
	// Ledger metrics
	Deposits           *prometheus.CounterVec
	Withdrawals        *prometheus.CounterVec
	DepositedUSD       prometheus.Counter
	WithdrawnUSD       prometheus.Counter
	Rejections         *prometheus.CounterVec
	TotalValueLocked   prometheus.Gauge
	AssetTotal         *prometheus.GaugeVec
	PriceFailures      *prometheus.CounterVec
	ReconciliationDiff prometheus.Gauge

	// Event metrics
	EventsPublished *prometheus.CounterVec
	StreamClients   prometheus.Gauge

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

// New creates all metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Deposits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assetvault_deposits_total",
				Help: "Committed deposits by asset",
			},
			[]string{"asset_id"},
		),
		Withdrawals: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assetvault_withdrawals_total",
				Help: "Committed withdrawals by asset",
			},
			[]string{"asset_id"},
		),
		DepositedUSD: factory.NewCounter(prometheus.CounterOpts{
			Name: "assetvault_deposited_usd_total",
			Help: "USD value credited by deposits",
		}),
		WithdrawnUSD: factory.NewCounter(prometheus.CounterOpts{
			Name: "assetvault_withdrawn_usd_total",
			Help: "USD value debited by withdrawals",
		}),
		Rejections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assetvault_rejections_total",
				Help: "Rejected ledger operations by error code",
			},
			[]string{"operation", "code"},
		),
		TotalValueLocked: factory.NewGauge(prometheus.GaugeOpts{
			Name: "assetvault_total_value_locked_usd",
			Help: "Aggregate USD value held by the ledger",
		}),
		AssetTotal: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "assetvault_asset_total_deposited",
				Help: "Sum of user balances per asset",
			},
			[]string{"asset_id"},
		),
		PriceFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assetvault_price_validation_failures_total",
				Help: "Rejected oracle answers by reason",
			},
			[]string{"asset_id", "reason"},
		),
		ReconciliationDiff: factory.NewGauge(prometheus.GaugeOpts{
			Name: "assetvault_reconciliation_discrepancies",
			Help: "Invariant violations found by the last reconciliation",
		}),

		EventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assetvault_events_published_total",
				Help: "Outbox events published by type",
			},
			[]string{"event_type"},
		),
		StreamClients: factory.NewGauge(prometheus.GaugeOpts{
			Name: "assetvault_stream_clients",
			Help: "Connected websocket stream clients",
		}),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assetvault_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "assetvault_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		RateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assetvault_rate_limit_hits_total",
				Help: "Total rate limit hits",
			},
			[]string{"client"},
		),
	}
}

func units(canonical decimal.Decimal) float64 {
	return canonical.Shift(-int32(domain.CanonicalDecimals)).InexactFloat64()
}

func (m *Metrics) ObserveDeposit(assetID string, canonicalAmount, valueUSD decimal.Decimal) {
	m.Deposits.WithLabelValues(assetID).Inc()
	m.DepositedUSD.Add(units(valueUSD))
}

func (m *Metrics) ObserveWithdrawal(assetID string, canonicalAmount, valueUSD decimal.Decimal) {
	m.Withdrawals.WithLabelValues(assetID).Inc()
	m.WithdrawnUSD.Add(units(valueUSD))
}

func (m *Metrics) ObserveRejection(operation string, err error) {
	m.Rejections.WithLabelValues(operation, domain.ErrorCode(err)).Inc()
}

func (m *Metrics) ObservePriceFailure(assetID string, err error) {
	m.PriceFailures.WithLabelValues(assetID, domain.ErrorCode(err)).Inc()
}

func (m *Metrics) SetTotalValueLocked(valueUSD decimal.Decimal) {
	m.TotalValueLocked.Set(units(valueUSD))
}

func (m *Metrics) SetAssetTotal(assetID string, total decimal.Decimal) {
	m.AssetTotal.WithLabelValues(assetID).Set(units(total))
}

func (m *Metrics) SetReconciliationDiscrepancies(count int) {
	m.ReconciliationDiff.Set(float64(count))
}

// ObserveEventPublished counts one delivered outbox event.
func (m *Metrics) ObserveEventPublished(eventType string) {
	m.EventsPublished.WithLabelValues(eventType).Inc()
}

// SetStreamClients reports the number of connected stream clients.
func (m *Metrics) SetStreamClients(n int) {
	m.StreamClients.Set(float64(n))
}
