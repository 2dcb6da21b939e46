// Package metrics exposes Prometheus collectors for the pipeline.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	fetchesTotal          *prometheus.CounterVec
	robotsDeniedTotal     prometheus.Counter
	rateLimitDelaySeconds prometheus.Histogram
	pipelineStageCount    *prometheus.GaugeVec

	once sync.Once
)

// Init registers the Prometheus collectors. Safe to call more than
// once; observation helpers are no-ops until it runs.
func Init() {
	once.Do(func() {
		fetchesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jobboard_fetches_total",
				Help: "Total HTTP fetches issued by the pipeline, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		robotsDeniedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "jobboard_robots_denied_total",
				Help: "Fetches refused because robots.txt disallows the URL.",
			},
		)

		rateLimitDelaySeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "jobboard_rate_limit_delay_seconds",
				Help:    "Delay introduced by per-host request spacing.",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
			},
		)

		pipelineStageCount = promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "jobboard_pipeline_stage_records",
				Help: "Record counts at each pipeline stage of the latest run.",
			},
			[]string{"stage"},
		)
	})
}

// ObserveFetch records the outcome of one fetch attempt
// (ok, http_error, network_error, robots_denied).
func ObserveFetch(outcome string) {
	if fetchesTotal == nil {
		return
	}
	fetchesTotal.WithLabelValues(outcome).Inc()
	if outcome == "robots_denied" && robotsDeniedTotal != nil {
		robotsDeniedTotal.Inc()
	}
}

// ObserveRateLimitDelay records time spent waiting on per-host spacing.
func ObserveRateLimitDelay(delay time.Duration) {
	if rateLimitDelaySeconds == nil {
		return
	}
	rateLimitDelaySeconds.Observe(delay.Seconds())
}

// SetStageCount records the record count for a pipeline stage
// (raw, deduped, enriched, merged).
func SetStageCount(stage string, count int) {
	if pipelineStageCount == nil {
		return
	}
	pipelineStageCount.WithLabelValues(stage).Set(float64(count))
}

// Handler returns the HTTP handler serving the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
