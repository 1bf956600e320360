package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// RendersTotal counts report renders by layout and result.
	RendersTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rating_report",
		Subsystem: "report",
		Name:      "renders_total",
		Help:      "Total number of rating reports rendered, labeled by layout and result.",
	}, []string{"layout", "result"})

	// RenderDurationSeconds is the time from loading settings to final markup.
	RenderDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "rating_report",
		Subsystem: "report",
		Name:      "render_duration_seconds",
		Help:      "Time to load, aggregate and render a rating report.",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"layout"})

	// MigrationPostsTotal counts posts handled by migration steps.
	MigrationPostsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rating_report",
		Subsystem: "migration",
		Name:      "posts_total",
		Help:      "Total number of posts processed by migration steps, labeled by result.",
	}, []string{"result"})

	// MigrationProgressPercent is the percentage reported by the last step.
	MigrationProgressPercent = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "rating_report",
		Subsystem: "migration",
		Name:      "progress_percent",
		Help:      "Progress percentage reported by the most recent migration step.",
	})

	// CacheResultsTotal counts read-through cache lookups by endpoint and outcome.
	CacheResultsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rating_report",
		Subsystem: "cache",
		Name:      "results_total",
		Help:      "Total number of cache lookups, labeled by endpoint and result (hit, miss, error).",
	}, []string{"endpoint", "result"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rating_report",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests, labeled by route and status code.",
	}, []string{"route", "code"})
)

// Register registers the service metrics with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			RendersTotal,
			RenderDurationSeconds,
			MigrationPostsTotal,
			MigrationProgressPercent,
			CacheResultsTotal,
			HTTPRequestsTotal,
		)
	})
}
