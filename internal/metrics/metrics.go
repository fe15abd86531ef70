// Package metrics records ingestion results as Prometheus metrics and writes them
// to a node_exporter textfile.
package metrics

import (
	"fmt"
	"time"

	"github.com/huangsam/hubstats/schema"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "hubstats"

// Recorder holds the collectors for one ingestion run.
// Each Recorder owns its registry so repeated runs in one process never collide.
type Recorder struct {
	registry      *prometheus.Registry
	fetchTotal    *prometheus.CounterVec
	counterTotal  *prometheus.GaugeVec
	dailyDelta    *prometheus.GaugeVec
	fetchDuration prometheus.Histogram
	lastIngest    prometheus.Gauge
}

// NewRecorder creates a Recorder with all collectors registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		fetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_total",
			Help:      "Upstream fetches per metric and outcome.",
		}, []string{"metric", "outcome"}),
		counterTotal: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "counter_total",
			Help:      "Last ingested cumulative total per metric.",
		}, []string{"metric"}),
		dailyDelta: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "daily_delta",
			Help:      "Last ingested daily delta per metric.",
		}, []string{"metric"}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Latency of upstream counter fetches.",
			Buckets:   prometheus.DefBuckets,
		}),
		lastIngest: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_ingest_timestamp_seconds",
			Help:      "Unix time the last ingestion run finished.",
		}),
	}
	r.registry.MustRegister(r.fetchTotal, r.counterTotal, r.dailyDelta, r.fetchDuration, r.lastIngest)
	return r
}

// ObserveFetch records the latency of one upstream fetch.
func (r *Recorder) ObserveFetch(elapsed time.Duration) {
	r.fetchDuration.Observe(elapsed.Seconds())
}

// RecordResult records one per-metric outcome.
func (r *Recorder) RecordResult(res schema.MetricResult) {
	r.fetchTotal.WithLabelValues(res.Metric, string(res.Outcome)).Inc()
	if res.Outcome == schema.OutcomeOK {
		r.counterTotal.WithLabelValues(res.Metric).Set(float64(res.CumulativeTotal))
		r.dailyDelta.WithLabelValues(res.Metric).Set(float64(res.DailyDelta))
	}
}

// MarkFinished stamps the end of a run.
func (r *Recorder) MarkFinished(t time.Time) {
	r.lastIngest.Set(float64(t.Unix()))
}

// Gatherer exposes the registry, e.g. for tests or an HTTP handler.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile writes the registry in text exposition format. An empty path is a no-op.
func (r *Recorder) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile %s: %w", path, err)
	}
	return nil
}
