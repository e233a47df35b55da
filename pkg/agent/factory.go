// Package agent provides LLM client construction with middleware chain assembly.
package agent

import (
	"fmt"

	"codebuilder/pkg/agent/internal/llmimpl/anthropic"
	"codebuilder/pkg/agent/internal/llmimpl/google"
	"codebuilder/pkg/agent/internal/llmimpl/ollama"
	"codebuilder/pkg/agent/internal/llmimpl/openaiapi"
	"codebuilder/pkg/agent/llm"
	loggingmw "codebuilder/pkg/agent/middleware/logging"
	metricsmw "codebuilder/pkg/agent/middleware/metrics"
	"codebuilder/pkg/config"
	"codebuilder/pkg/logx"
	"codebuilder/pkg/utils"
)

// NewClient creates an LLM client for the configured provider, wrapped with
// the usage-logging and metrics middlewares.
//
// There is deliberately no retry middleware in the chain: the pipeline's
// retry contract is a single whole-run retry on rate limiting, applied above
// the orchestrator, and an inner retry layer would mask that signal.
func NewClient(cfg *config.Config, logger *logx.Logger) (llm.LLMClient, error) {
	raw, err := newRawClient(cfg)
	if err != nil {
		return nil, err
	}

	counter, err := utils.NewTokenCounter(cfg.Model)
	if err != nil {
		logger.Warn("token counter unavailable, falling back to estimates: %v", err)
	}

	return llm.Chain(raw,
		loggingmw.Middleware(logger, counter),
		metricsmw.Middleware(metricsmw.NewPrometheusRecorder()),
	), nil
}

// newRawClient selects the provider implementation from config.
func newRawClient(cfg *config.Config) (llm.LLMClient, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("api key is required for provider %s", cfg.Provider)
		}
		return openaiapi.NewClient(cfg.APIKey, cfg.BaseURL, cfg.Model), nil
	case config.ProviderAnthropic:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("api key is required for provider %s", cfg.Provider)
		}
		return anthropic.NewClaudeClient(cfg.APIKey, cfg.Model), nil
	case config.ProviderOllama:
		return ollama.NewClient(cfg.BaseURL, cfg.Model), nil
	case config.ProviderGoogle:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("api key is required for provider %s", cfg.Provider)
		}
		return google.NewGeminiClient(cfg.APIKey, cfg.Model), nil
	case config.ProviderMock:
		return NewMockLLMClient([]llm.CompletionResponse{{Content: "mock response"}}, nil), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
}
