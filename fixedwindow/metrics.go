/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package fixedwindow

import "github.com/prometheus/client_golang/prometheus"

const metricsLabelOperation = "operation"

// MetricsCollector represents a collector of metrics to analyze how the limiter budgets are consumed.
type MetricsCollector interface {
	// IncAllowed increments the total number of granted acquisitions for the operation.
	IncAllowed(op Operation)

	// IncDenied increments the total number of denied acquisitions for the operation.
	IncDenied(op Operation)

	// IncWindowRollovers increments the total number of window rollovers.
	IncWindowRollovers()
}

// PrometheusMetricsOpts represents options for PrometheusMetrics.
type PrometheusMetricsOpts struct {
	// Namespace is a namespace for metrics. It will be prepended to all metric names.
	Namespace string

	// ConstLabels is a set of labels that will be applied to all metrics.
	ConstLabels prometheus.Labels

	// CurriedLabelNames is a list of label names that will be curried with the provided labels.
	// See PrometheusMetrics.MustCurryWith method for more details.
	// Keep in mind that if this list is not empty,
	// PrometheusMetrics.MustCurryWith method must be called further with the same labels.
	// Otherwise, the collector will panic.
	CurriedLabelNames []string
}

// PrometheusMetrics represents Prometheus metrics for the limiter.
type PrometheusMetrics struct {
	AllowedTotal         *prometheus.CounterVec
	DeniedTotal          *prometheus.CounterVec
	WindowRolloversTotal *prometheus.CounterVec
}

// NewPrometheusMetrics creates a new instance of PrometheusMetrics with default options.
func NewPrometheusMetrics() *PrometheusMetrics {
	return NewPrometheusMetricsWithOpts(PrometheusMetricsOpts{})
}

// NewPrometheusMetricsWithOpts creates a new instance of PrometheusMetrics with the provided options.
func NewPrometheusMetricsWithOpts(opts PrometheusMetricsOpts) *PrometheusMetrics {
	allowedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   opts.Namespace,
			Name:        "rate_limit_acquisitions_allowed_total",
			Help:        "Number of granted acquisitions against the rate limiter budgets.",
			ConstLabels: opts.ConstLabels,
		},
		append([]string{metricsLabelOperation}, opts.CurriedLabelNames...),
	)

	deniedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   opts.Namespace,
			Name:        "rate_limit_acquisitions_denied_total",
			Help:        "Number of denied acquisitions against the rate limiter budgets.",
			ConstLabels: opts.ConstLabels,
		},
		append([]string{metricsLabelOperation}, opts.CurriedLabelNames...),
	)

	windowRolloversTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   opts.Namespace,
			Name:        "rate_limit_window_rollovers_total",
			Help:        "Number of times the limiter window expired and was reset.",
			ConstLabels: opts.ConstLabels,
		},
		opts.CurriedLabelNames,
	)

	return &PrometheusMetrics{
		AllowedTotal:         allowedTotal,
		DeniedTotal:          deniedTotal,
		WindowRolloversTotal: windowRolloversTotal,
	}
}

// MustCurryWith curries the metrics collector with the provided labels.
func (pm *PrometheusMetrics) MustCurryWith(labels prometheus.Labels) *PrometheusMetrics {
	return &PrometheusMetrics{
		AllowedTotal:         pm.AllowedTotal.MustCurryWith(labels),
		DeniedTotal:          pm.DeniedTotal.MustCurryWith(labels),
		WindowRolloversTotal: pm.WindowRolloversTotal.MustCurryWith(labels),
	}
}

// MustRegister does registration of metrics collector in Prometheus and panics if any error occurs.
func (pm *PrometheusMetrics) MustRegister() {
	prometheus.MustRegister(
		pm.AllowedTotal,
		pm.DeniedTotal,
		pm.WindowRolloversTotal,
	)
}

// Unregister cancels registration of metrics collector in Prometheus.
func (pm *PrometheusMetrics) Unregister() {
	prometheus.Unregister(pm.AllowedTotal)
	prometheus.Unregister(pm.DeniedTotal)
	prometheus.Unregister(pm.WindowRolloversTotal)
}

// IncAllowed increments the total number of granted acquisitions for the operation.
func (pm *PrometheusMetrics) IncAllowed(op Operation) {
	pm.AllowedTotal.With(prometheus.Labels{metricsLabelOperation: string(op)}).Inc()
}

// IncDenied increments the total number of denied acquisitions for the operation.
func (pm *PrometheusMetrics) IncDenied(op Operation) {
	pm.DeniedTotal.With(prometheus.Labels{metricsLabelOperation: string(op)}).Inc()
}

// IncWindowRollovers increments the total number of window rollovers.
func (pm *PrometheusMetrics) IncWindowRollovers() {
	pm.WindowRolloversTotal.With(nil).Inc()
}

type disabledMetrics struct{}

func (disabledMetrics) IncAllowed(Operation) {}
func (disabledMetrics) IncDenied(Operation)  {}
func (disabledMetrics) IncWindowRollovers()  {}

var disabledMetricsCollector = disabledMetrics{}
