// Package metrics exposes the ledger and HTTP Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/iho/cashledger/internal/domain"
)

const namespace = "cashledger"

// Metrics holds all Prometheus metrics. It implements usecase.MetricsRecorder.
type Metrics struct {
	// Ledger metrics
	TransactionsRecordedTotal *prometheus.CounterVec
	TransactionsUpdatedTotal  prometheus.Counter
	TransactionsDeletedTotal  prometheus.Counter

	// Vault metrics
	VaultNotes      *prometheus.GaugeVec
	VaultCashTotal  prometheus.Gauge
	VaultUPIBalance prometheus.Gauge

	// Import metrics
	Imports         *prometheus.CounterVec
	ImportedRecords prometheus.Counter

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInFlight prometheus.Gauge

	// Rate limiting metrics
	RateLimitHits prometheus.Counter
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		TransactionsRecordedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transactions_recorded_total",
				Help:      "Total number of transactions recorded by type",
			},
			[]string{"type"},
		),
		TransactionsUpdatedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_updated_total",
			Help:      "Total number of transactions edited",
		}),
		TransactionsDeletedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_deleted_total",
			Help:      "Total number of transactions deleted",
		}),

		VaultNotes: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "vault_notes",
				Help:      "Notes held in the vault by denomination",
			},
			[]string{"denomination"},
		),
		VaultCashTotal: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "vault_cash_total",
			Help:      "Value of all notes in the vault",
		}),
		VaultUPIBalance: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "vault_upi_balance",
			Help:      "UPI balance of the vault",
		}),

		Imports: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "imports_total",
				Help:      "Total number of imports by result",
			},
			[]string{"result"},
		),
		ImportedRecords: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imported_records_total",
			Help:      "Total number of records appended by imports",
		}),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		}),

		RateLimitHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_hits_total",
			Help:      "Requests rejected by the rate limiter",
		}),
	}
}

// TransactionRecorded counts a new transaction.
func (m *Metrics) TransactionRecorded(t domain.TransactionType) {
	m.TransactionsRecordedTotal.WithLabelValues(string(t)).Inc()
}

// TransactionsUpdated counts edited transactions.
func (m *Metrics) TransactionsUpdated(n int) {
	m.TransactionsUpdatedTotal.Add(float64(n))
}

// TransactionsDeleted counts removed transactions.
func (m *Metrics) TransactionsDeleted(n int) {
	m.TransactionsDeletedTotal.Add(float64(n))
}

// VaultChanged publishes the current vault.
func (m *Metrics) VaultChanged(v domain.Vault) {
	for _, info := range domain.Denominations {
		m.VaultNotes.WithLabelValues(info.Value.Key()).Set(float64(v.Denominations.Count(info.Value)))
	}
	m.VaultCashTotal.Set(v.CashTotal().InexactFloat64())
	m.VaultUPIBalance.Set(v.UPIBalance.InexactFloat64())
}

// ImportFinished counts an import attempt.
func (m *Metrics) ImportFinished(records int, err error) {
	if err != nil {
		m.Imports.WithLabelValues("failed").Inc()
		return
	}
	m.Imports.WithLabelValues("succeeded").Inc()
	m.ImportedRecords.Add(float64(records))
}
