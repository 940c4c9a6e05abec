package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type PrometheusMetrics struct {
	transactionsIngested   *prometheus.CounterVec
	transactionsReviewed   *prometheus.CounterVec
	rulesSkipped           prometheus.Counter
	ruleEvaluationDuration prometheus.Histogram
	reviewQueueDepth       prometheus.Gauge
	suggestionRequests     *prometheus.CounterVec
	suggestionDuration     prometheus.Histogram
	suggestionBatchItems   *prometheus.CounterVec
	circuitBreakerState    *prometheus.GaugeVec
	credentialChanges      *prometheus.CounterVec
}

// NewPrometheusMetrics registers the ledger collectors with reg. A nil reg
// uses the default registerer.
func NewPrometheusMetrics(reg prometheus.Registerer) MetricsRecorderInterface {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		transactionsIngested: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_transactions_ingested_total",
				Help: "Total number of transactions created, by initial status",
			},
			[]string{"status"},
		),
		transactionsReviewed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_review_decisions_total",
				Help: "Total number of manual review decisions",
			},
			[]string{"action"},
		),
		rulesSkipped: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "ledger_rules_skipped_total",
				Help: "Total number of rule evaluations skipped because the pattern did not compile",
			},
		),
		ruleEvaluationDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ledger_rule_evaluation_duration_milliseconds",
				Help:    "Time to load and evaluate the enabled rules for one description",
				Buckets: prometheus.ExponentialBuckets(0.25, 2, 12),
			},
		),
		reviewQueueDepth: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "ledger_review_queue_depth",
				Help: "Number of uncategorized transactions at the last count",
			},
		),
		suggestionRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_suggestion_requests_total",
				Help: "Total number of suggestion provider calls",
			},
			[]string{"provider", "status"},
		),
		suggestionDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ledger_suggestion_duration_seconds",
				Help:    "Suggestion provider call duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		suggestionBatchItems: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_suggestion_batch_items_total",
				Help: "Total number of batch items processed, by outcome",
			},
			[]string{"status"},
		),
		circuitBreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ledger_circuit_breaker_state",
				Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
			},
			[]string{"service"},
		),
		credentialChanges: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_credential_changes_total",
				Help: "Total number of credential store and delete operations",
			},
			[]string{"action"},
		),
	}
}

func (m *PrometheusMetrics) IncrementCounter(name string, tags map[string]string) {
	status := tags["status"]

	switch name {
	case "transaction.ingested":
		m.transactionsIngested.WithLabelValues(status).Inc()
	case "review.decision":
		if action := tags["action"]; action != "" {
			m.transactionsReviewed.WithLabelValues(action).Inc()
		}
	case "rule.skipped":
		m.rulesSkipped.Inc()
	case "suggestion.request":
		m.suggestionRequests.WithLabelValues(tags["provider"], status).Inc()
	case "suggestion.batch_item":
		m.suggestionBatchItems.WithLabelValues(status).Inc()
	case "credential.changed":
		if action := tags["action"]; action != "" {
			m.credentialChanges.WithLabelValues(action).Inc()
		}
	}
}

func (m *PrometheusMetrics) RecordProcessingTime(name string, duration time.Duration) {
	switch name {
	case "rule.evaluation":
		m.ruleEvaluationDuration.Observe(float64(duration.Microseconds()) / 1000)
	case "suggestion.request":
		m.suggestionDuration.Observe(duration.Seconds())
	}
}

func (m *PrometheusMetrics) RecordGauge(name string, value float64, tags map[string]string) {
	switch name {
	case "review.queue_depth":
		m.reviewQueueDepth.Set(value)
	case "circuit_breaker.state":
		m.circuitBreakerState.WithLabelValues(tags["service"]).Set(value)
	}
}
