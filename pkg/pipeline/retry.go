package pipeline

import (
	"context"
	"time"

	"codebuilder/pkg/agent/llmerrors"
	"codebuilder/pkg/config"
	"codebuilder/pkg/logx"
	"codebuilder/pkg/metrics"
)

// Runner is the run entry point the retry wrapper decorates.
type Runner interface {
	Run(ctx context.Context, userPrompt string) (*RunResult, error)
}

// RetryRunner retries a rate-limited run exactly once after a fixed delay.
// The second attempt is a full re-run from scratch, not a resume: files the
// first attempt wrote are overwritten where paths coincide. A rate limit on
// the second attempt propagates to the caller. No other error kind is
// retried.
type RetryRunner struct {
	runner   Runner
	delay    time.Duration
	sleep    func(time.Duration)
	recorder metrics.Recorder
	logger   *logx.Logger
}

// RetryOption configures a RetryRunner.
type RetryOption func(*RetryRunner)

// WithSleeper replaces the delay function, for tests.
func WithSleeper(sleep func(time.Duration)) RetryOption {
	return func(r *RetryRunner) { r.sleep = sleep }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(recorder metrics.Recorder) RetryOption {
	return func(r *RetryRunner) { r.recorder = recorder }
}

// NewRetryRunner wraps a runner with the single-retry rate-limit policy.
// A non-positive delay falls back to the default.
func NewRetryRunner(runner Runner, delay time.Duration, opts ...RetryOption) *RetryRunner {
	if delay <= 0 {
		delay = config.DefaultRetryDelay
	}
	r := &RetryRunner{
		runner:   runner,
		delay:    delay,
		sleep:    time.Sleep,
		recorder: metrics.NopRecorder{},
		logger:   logx.NewLogger("retry"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run implements Runner.
func (r *RetryRunner) Run(ctx context.Context, userPrompt string) (*RunResult, error) {
	result, err := r.runner.Run(ctx, userPrompt)
	if err == nil || !llmerrors.IsRateLimit(err) {
		return result, err
	}

	r.logger.Warn("run rate limited, retrying once in %s", r.delay)
	r.recorder.RetryAttempted()
	r.sleep(r.delay)

	return r.runner.Run(ctx, userPrompt)
}
