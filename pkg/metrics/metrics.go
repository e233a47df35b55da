// Package metrics exposes Prometheus instrumentation for pipeline runs.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Stage label values.
const (
	StagePlanning     = "planning"
	StageArchitecture = "architecture"
	StageCoding       = "coding"
)

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Recorder receives pipeline-level measurements. The driver takes this
// interface so tests can run without touching the default registry.
type Recorder interface {
	RunCompleted(outcome string)
	StageDuration(stage string, d time.Duration)
	FileWritten()
	RetryAttempted()
}

var (
	registerOnce sync.Once

	runsTotal     *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	filesWritten  prometheus.Counter
	retriesTotal  prometheus.Counter
)

func register() {
	registerOnce.Do(func() {
		runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "codebuilder_runs_total",
			Help: "Completed pipeline runs by outcome.",
		}, []string{"outcome"})

		stageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "codebuilder_stage_duration_seconds",
			Help:    "Wall-clock duration of each pipeline stage.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}, []string{"stage"})

		filesWritten = promauto.NewCounter(prometheus.CounterOpts{
			Name: "codebuilder_files_written_total",
			Help: "Files written to the workspace across all runs.",
		})

		retriesTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "codebuilder_run_retries_total",
			Help: "Whole-run retries triggered by rate limiting.",
		})
	})
}

// PrometheusRecorder records measurements on the default registry.
type PrometheusRecorder struct{}

// NewPrometheusRecorder creates a recorder backed by the default registry.
func NewPrometheusRecorder() *PrometheusRecorder {
	register()
	return &PrometheusRecorder{}
}

// RunCompleted implements Recorder.
func (*PrometheusRecorder) RunCompleted(outcome string) {
	runsTotal.WithLabelValues(outcome).Inc()
}

// StageDuration implements Recorder.
func (*PrometheusRecorder) StageDuration(stage string, d time.Duration) {
	stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// FileWritten implements Recorder.
func (*PrometheusRecorder) FileWritten() {
	filesWritten.Inc()
}

// RetryAttempted implements Recorder.
func (*PrometheusRecorder) RetryAttempted() {
	retriesTotal.Inc()
}

// NopRecorder discards all measurements.
type NopRecorder struct{}

// RunCompleted implements Recorder.
func (NopRecorder) RunCompleted(string) {}

// StageDuration implements Recorder.
func (NopRecorder) StageDuration(string, time.Duration) {}

// FileWritten implements Recorder.
func (NopRecorder) FileWritten() {}

// RetryAttempted implements Recorder.
func (NopRecorder) RetryAttempted() {}
