/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package middleware

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/acronis/go-ratelimit/fixedwindow"
)

const (
	metricsLabelOperation = "operation"
	metricsLabelDryRun    = "dry_run"
)

const (
	metricsValYes = "yes"
	metricsValNo  = "no"
)

// MetricsCollector represents a collector of metrics for rate limiting rejects.
type MetricsCollector interface {
	// IncRateLimitRejects increments the total number of rejected requests.
	// In the dry-run mode rejected requests are counted but still served.
	IncRateLimitRejects(op fixedwindow.Operation, dryRun bool)
}

// PrometheusMetricsOpts represents options for PrometheusMetrics.
type PrometheusMetricsOpts struct {
	// Namespace is a namespace for metrics. It will be prepended to all metric names.
	Namespace string

	// ConstLabels is a set of labels that will be applied to all metrics.
	ConstLabels prometheus.Labels
}

// PrometheusMetrics represents Prometheus metrics for the rate limiting middleware.
type PrometheusMetrics struct {
	RejectsTotal *prometheus.CounterVec
}

// NewPrometheusMetrics creates a new instance of PrometheusMetrics with default options.
func NewPrometheusMetrics() *PrometheusMetrics {
	return NewPrometheusMetricsWithOpts(PrometheusMetricsOpts{})
}

// NewPrometheusMetricsWithOpts creates a new instance of PrometheusMetrics with the provided options.
func NewPrometheusMetricsWithOpts(opts PrometheusMetricsOpts) *PrometheusMetrics {
	rejectsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   opts.Namespace,
			Name:        "rate_limit_rejects_total",
			Help:        "Number of rejected requests due to rate limit exceeded.",
			ConstLabels: opts.ConstLabels,
		},
		[]string{metricsLabelOperation, metricsLabelDryRun},
	)
	return &PrometheusMetrics{RejectsTotal: rejectsTotal}
}

// MustCurryWith curries the metrics collector with the provided labels.
func (pm *PrometheusMetrics) MustCurryWith(labels prometheus.Labels) *PrometheusMetrics {
	return &PrometheusMetrics{RejectsTotal: pm.RejectsTotal.MustCurryWith(labels)}
}

// MustRegister does registration of metrics collector in Prometheus and panics if any error occurs.
func (pm *PrometheusMetrics) MustRegister() {
	prometheus.MustRegister(pm.RejectsTotal)
}

// Unregister cancels registration of metrics collector in Prometheus.
func (pm *PrometheusMetrics) Unregister() {
	prometheus.Unregister(pm.RejectsTotal)
}

// IncRateLimitRejects increments the total number of rejected requests.
func (pm *PrometheusMetrics) IncRateLimitRejects(op fixedwindow.Operation, dryRun bool) {
	dryRunVal := metricsValNo
	if dryRun {
		dryRunVal = metricsValYes
	}
	pm.RejectsTotal.With(prometheus.Labels{
		metricsLabelOperation: string(op),
		metricsLabelDryRun:    dryRunVal,
	}).Inc()
}

type disabledMetrics struct{}

func (disabledMetrics) IncRateLimitRejects(fixedwindow.Operation, bool) {}

var disabledMetricsCollector = disabledMetrics{}
