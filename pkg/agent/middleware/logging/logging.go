// Package logging provides usage-logging middleware for LLM clients.
package logging

import (
	"context"
	"strings"
	"time"

	"codebuilder/pkg/agent/llm"
	"codebuilder/pkg/agent/llmerrors"
	"codebuilder/pkg/logx"
	"codebuilder/pkg/utils"
)

// Middleware returns a middleware that logs each completion call with
// duration and approximate token usage. Token counts come from tiktoken and
// are estimates, good enough for operator visibility.
func Middleware(logger *logx.Logger, counter *utils.TokenCounter) llm.Middleware {
	return func(next llm.LLMClient) llm.LLMClient {
		return llm.WrapClient(
			func(ctx context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
				start := time.Now()

				promptTokens := 0
				for i := range req.Messages {
					promptTokens += counter.CountTokens(req.Messages[i].Content)
				}

				resp, err := next.Complete(ctx, req)
				elapsed := time.Since(start)

				if err != nil {
					logger.Warn("completion failed after %s (model=%s, prompt_tokens≈%d, error_type=%s): %v",
						elapsed.Round(time.Millisecond), next.GetModelName(), promptTokens, llmerrors.TypeOf(err), err)
					return resp, err
				}

				completionTokens := counter.CountTokens(resp.Content)
				logger.Debug("completion ok in %s (model=%s, prompt_tokens≈%d, completion_tokens≈%d, stop=%s)",
					elapsed.Round(time.Millisecond), next.GetModelName(), promptTokens, completionTokens,
					strings.TrimSpace(resp.StopReason))
				return resp, nil
			},
			next.GetModelName,
		)
	}
}
