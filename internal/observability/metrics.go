// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Engine operations
	TokensCreated   prometheus.Counter
	StealsProcessed prometheus.Counter
	Transfers       prometheus.Counter
	FailedOps       *prometheus.CounterVec // by operation and reason

	// Economics
	FeesDistributed *prometheus.CounterVec // lamports by recipient role
	RefundsIssued   prometheus.Counter     // lamports

	// Latency
	OperationDuration *prometheus.HistogramVec // by operation

	// Event stream
	EventSubscribers prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "fool_fun"
	}

	return &Metrics{
		TokensCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_created_total",
			Help:      "Number of tokens initialized",
		}),
		StealsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "steals_processed_total",
			Help:      "Number of successful steals",
		}),
		Transfers: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfers_total",
			Help:      "Number of no-payment custody transfers",
		}),
		FailedOps: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failed_operations_total",
			Help:      "Failed operations by operation and reason",
		}, []string{"operation", "reason"}),

		FeesDistributed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fees_distributed_lamports_total",
			Help:      "Lamports distributed by recipient role",
		}, []string{"role"}),
		RefundsIssued: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refunds_issued_lamports_total",
			Help:      "Lamports refunded to stealers for overpayment",
		}),

		OperationDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of engine operations",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),

		EventSubscribers: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "event_subscribers",
			Help:      "Connected WebSocket event subscribers",
		}),
	}
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
