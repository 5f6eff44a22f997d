// Package metrics exposes prometheus metrics for fact evaluation.
//
// Metrics:
//   - tulpa_evaluations_total: evaluations by entity and decision
//   - tulpa_evaluation_duration_seconds: evaluation duration
//   - tulpa_directive_fires_total: directive activations by kind
//   - tulpa_regex_rejections_total: validator rejections by category
//   - tulpa_expression_errors_total: isolated expression errors by kind
//   - tulpa_retries_scheduled_total: $retry directives honored
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"anima-hq/tulpa/pkg/config"
)

// Collector tracks evaluation metrics. It implements facts.Observer.
type Collector struct {
	evaluationsTotal   *prometheus.CounterVec
	evaluationDuration prometheus.Histogram
	directiveFires     *prometheus.CounterVec
	regexRejections    *prometheus.CounterVec
	expressionErrors   *prometheus.CounterVec
	retriesScheduled   prometheus.Counter
}

// NewCollector creates and registers the evaluation metrics with the
// provided registry.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	c := &Collector{
		evaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "evaluations_total",
				Help:      "Total number of fact evaluations",
			},
			[]string{"entity", "decision"},
		),

		evaluationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "evaluation_duration_seconds",
				Help:      "Duration of fact evaluation in seconds",
				// Evaluation is purely computational and should sit
				// well under a millisecond.
				Buckets: prometheus.ExponentialBuckets(0.000001, 2, 15), // 1µs to 16ms
			},
		),

		directiveFires: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "directive_fires_total",
				Help:      "Total number of directive activations",
			},
			[]string{"directive"},
		),

		regexRejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "regex_rejections_total",
				Help:      "Patterns rejected by the safety validator, by category",
			},
			[]string{"category"},
		),

		expressionErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "expression_errors_total",
				Help:      "Isolated expression errors during evaluation, by kind",
			},
			[]string{"kind"},
		),

		retriesScheduled: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "retries_scheduled_total",
				Help:      "Total number of $retry directives honored",
			},
		),
	}

	registry.MustRegister(
		c.evaluationsTotal,
		c.evaluationDuration,
		c.directiveFires,
		c.regexRejections,
		c.expressionErrors,
		c.retriesScheduled,
	)
	return c
}

// RecordEvaluation records one completed evaluation.
func (c *Collector) RecordEvaluation(entity, decision string, d time.Duration) {
	c.evaluationsTotal.WithLabelValues(entity, decision).Inc()
	c.evaluationDuration.Observe(d.Seconds())
}

// RecordDirectiveFire records a directive activation.
func (c *Collector) RecordDirectiveFire(directive string) {
	c.directiveFires.WithLabelValues(directive).Inc()
}

// RecordRegexRejection records a validator rejection.
func (c *Collector) RecordRegexRejection(category string) {
	c.regexRejections.WithLabelValues(category).Inc()
}

// RecordExpressionError records an isolated expression error.
func (c *Collector) RecordExpressionError(kind string) {
	c.expressionErrors.WithLabelValues(kind).Inc()
}

// RecordRetryScheduled records a honored $retry directive.
func (c *Collector) RecordRetryScheduled() {
	c.retriesScheduled.Inc()
}
