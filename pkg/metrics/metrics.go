package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder exposes Prometheus metrics for the refresh pipeline.
// A nil *Recorder is valid and records nothing, so callers never need
// to branch on whether metrics are enabled.
type Recorder struct {
	refreshTotal    *prometheus.CounterVec
	refreshDuration prometheus.Histogram
	lastRefresh     prometheus.Gauge
	apiRequests     *prometheus.CounterVec
	snapshotRows    *prometheus.GaugeVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		refreshTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "momentum_refresh_total",
				Help: "Total number of snapshot refresh cycles",
			},
			[]string{"status"},
		),
		refreshDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "momentum_refresh_duration_seconds",
				Help:    "Duration of a full fetch-derive cycle in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		lastRefresh: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "momentum_last_refresh_timestamp_seconds",
				Help: "Unix timestamp of the last successful refresh",
			},
		),
		apiRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "momentum_fmp_requests_total",
				Help: "Total number of FMP API requests by endpoint and outcome",
			},
			[]string{"endpoint", "status"},
		),
		snapshotRows: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "momentum_snapshot_rows",
				Help: "Number of records in the latest snapshot per bucket",
			},
			[]string{"bucket"},
		),
	}
}

// RecordRefresh records the outcome and duration of a refresh cycle.
func (r *Recorder) RecordRefresh(status string, seconds float64) {
	if r == nil {
		return
	}
	r.refreshTotal.WithLabelValues(status).Inc()
	r.refreshDuration.Observe(seconds)
}

// RecordLastRefresh records the timestamp of the last successful refresh.
func (r *Recorder) RecordLastRefresh(unix float64) {
	if r == nil {
		return
	}
	r.lastRefresh.Set(unix)
}

// RecordAPIRequest records an FMP API request outcome.
func (r *Recorder) RecordAPIRequest(endpoint, status string) {
	if r == nil {
		return
	}
	r.apiRequests.WithLabelValues(endpoint, status).Inc()
}

// RecordSnapshotRows records bucket sizes for the latest snapshot.
func (r *Recorder) RecordSnapshotRows(bucket string, rows int) {
	if r == nil {
		return
	}
	r.snapshotRows.WithLabelValues(bucket).Set(float64(rows))
}
