package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	fetched     *prometheus.CounterVec
	upserted    *prometheus.CounterVec
	skipped     *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
	jobDuration *prometheus.HistogramVec
	lastSuccess *prometheus.GaugeVec
	cache       *prometheus.CounterVec
}

// New creates a recorder registered on reg; nil means the default registry.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		fetched: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "macropulse_records_fetched_total",
				Help: "Raw records received from the provider",
			},
			[]string{"job"},
		),
		upserted: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "macropulse_records_upserted_total",
				Help: "Rows written to the store",
			},
			[]string{"job"},
		),
		skipped: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "macropulse_records_skipped_total",
				Help: "Raw records dropped before persistence",
			},
			[]string{"job", "reason"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "macropulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		jobDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "macropulse_job_duration_seconds",
				Help:    "Pipeline run duration in seconds",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
			},
			[]string{"job", "result"},
		),
		lastSuccess: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "macropulse_job_last_success_timestamp_seconds",
				Help: "Unix time of the last successful run",
			},
			[]string{"job"},
		),
		cache: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "macropulse_overview_cache_total",
				Help: "Overview cache lookups by result (hit, miss, not_modified)",
			},
			[]string{"result"},
		),
	}
}

func (r *Recorder) RecordFetched(job string, n int) {
	r.fetched.WithLabelValues(job).Add(float64(n))
}

func (r *Recorder) RecordUpserted(job string) {
	r.upserted.WithLabelValues(job).Inc()
}

func (r *Recorder) RecordSkipped(job, reason string) {
	r.skipped.WithLabelValues(job, reason).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordJob records one pipeline run.
func (r *Recorder) RecordJob(job string, ok bool, seconds float64) {
	result := "ok"
	if !ok {
		result = "failed"
	}
	r.jobDuration.WithLabelValues(job, result).Observe(seconds)
	if ok {
		r.lastSuccess.WithLabelValues(job).Set(float64(time.Now().Unix()))
	}
}

func (r *Recorder) RecordCache(result string) {
	r.cache.WithLabelValues(result).Inc()
}
