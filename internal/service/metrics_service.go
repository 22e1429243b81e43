package service

import (
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the validation
// engine.
type MetricsService struct {
	registry      *prometheus.Registry
	handler       http.Handler
	checksTotal   prometheus.Counter
	rejections    *prometheus.CounterVec
	violations    *prometheus.GaugeVec
	cacheHitRatio prometheus.Gauge
	auditDuration prometheus.Histogram
	dbDuration    *prometheus.HistogramVec
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	checksTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "placement_checks_total",
		Help: "Total number of pre-placement constraint checks",
	})

	rejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "placement_rejections_total",
		Help: "Placement rejections by constraint",
	}, []string{"constraint"})

	violations := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "audit_violations",
		Help: "Violations found by the last full audit, by constraint",
	}, []string{"constraint"})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "validator_cache_hit_ratio",
		Help: "Ratio of validator cache hits to total lookups",
	})

	auditDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "audit_duration_seconds",
		Help:    "Duration of full schedule audits",
		Buckets: prometheus.DefBuckets,
	})

	dbDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of reference-data queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(checksTotal, rejections, violations, cacheHitRatio, auditDuration, dbDuration, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:      registry,
		handler:       handler,
		checksTotal:   checksTotal,
		rejections:    rejections,
		violations:    violations,
		cacheHitRatio: cacheHitRatio,
		auditDuration: auditDuration,
		dbDuration:    dbDuration,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveCheck records one placement probe and its outcome. The constraint
// label is empty when the placement was allowed.
func (m *MetricsService) ObserveCheck(rejectedBy string) {
	if m == nil {
		return
	}
	m.checksTotal.Inc()
	if rejectedBy != "" {
		m.rejections.WithLabelValues(rejectedBy).Inc()
	}
}

// ObserveAudit records one full audit: its duration and per-constraint
// violation counts.
func (m *MetricsService) ObserveAudit(duration time.Duration, violationsByConstraint map[string]int) {
	if m == nil {
		return
	}
	m.auditDuration.Observe(duration.Seconds())
	for constraint, count := range violationsByConstraint {
		m.violations.WithLabelValues(constraint).Set(float64(count))
	}
}

// SetCacheHitRatio publishes the validator cache hit ratio.
func (m *MetricsService) SetCacheHitRatio(ratio float64) {
	if m == nil {
		return
	}
	m.cacheHitRatio.Set(ratio)
}

// ObserveDBQuery records reference-data query timing.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbDuration.WithLabelValues(label).Observe(duration.Seconds())
}
