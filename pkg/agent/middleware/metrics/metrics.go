// Package metrics provides Prometheus-based metrics recording for LLM operations.
package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"codebuilder/pkg/agent/llm"
	"codebuilder/pkg/agent/llmerrors"
)

// Recorder records metrics for completed LLM requests.
type Recorder interface {
	ObserveRequest(model string, success bool, errorType string, duration time.Duration)
}

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

var (
	promOnce     sync.Once
	promRecorder *PrometheusRecorder
)

// NewPrometheusRecorder returns the process-wide Prometheus recorder.
// Collectors are registered once on the default registry.
func NewPrometheusRecorder() *PrometheusRecorder {
	promOnce.Do(func() {
		promRecorder = &PrometheusRecorder{
			requestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "llm_requests_total",
					Help: "Total number of LLM requests by model, status, and error type",
				},
				[]string{"model", "status", "error_type"},
			),
			requestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "llm_request_duration_seconds",
					Help:    "Duration of LLM requests in seconds",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"model"},
			),
		}
	})
	return promRecorder
}

// ObserveRequest records metrics for a completed LLM request.
func (p *PrometheusRecorder) ObserveRequest(model string, success bool, errorType string, duration time.Duration) {
	status := "success"
	if !success {
		status = "error"
	}
	p.requestsTotal.WithLabelValues(model, status, errorType).Inc()
	p.requestDuration.WithLabelValues(model).Observe(duration.Seconds())
}

// NopRecorder discards all observations. Used in tests.
type NopRecorder struct{}

// ObserveRequest implements Recorder.
func (NopRecorder) ObserveRequest(string, bool, string, time.Duration) {}

// Middleware returns a middleware that records request metrics to the recorder.
func Middleware(recorder Recorder) llm.Middleware {
	return func(next llm.LLMClient) llm.LLMClient {
		return llm.WrapClient(
			func(ctx context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
				start := time.Now()
				resp, err := next.Complete(ctx, req)
				if err != nil {
					recorder.ObserveRequest(next.GetModelName(), false, llmerrors.TypeOf(err).String(), time.Since(start))
					return resp, err
				}
				recorder.ObserveRequest(next.GetModelName(), true, "", time.Since(start))
				return resp, nil
			},
			next.GetModelName,
		)
	}
}
