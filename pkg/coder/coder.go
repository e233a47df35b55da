// Package coder generates the content of individual project files.
package coder

import (
	"context"
	"fmt"
	"strings"

	"codebuilder/pkg/agent/llm"
	"codebuilder/pkg/agent/llmerrors"
	"codebuilder/pkg/architect"
	"codebuilder/pkg/logx"
	"codebuilder/pkg/templates"
)

// Coder drives the coding stage against an LLM client, one file per call.
type Coder struct {
	client   llm.LLMClient
	renderer *templates.Renderer
	logger   *logx.Logger
}

// New creates a coder.
func New(client llm.LLMClient, renderer *templates.Renderer) *Coder {
	return &Coder{
		client:   client,
		renderer: renderer,
		logger:   logx.NewLogger("coder"),
	}
}

// Generate produces the full content for one file spec. The complete layout
// is passed along so each file can reference its siblings consistently.
func (c *Coder) Generate(ctx context.Context, spec architect.FileSpec, layout []architect.FileSpec) (string, error) {
	prompt, err := c.renderer.Render(templates.CodingTemplate, &templates.TemplateData{
		Path:         spec.Path,
		Description:  spec.Description,
		Architecture: architect.Summary(layout),
	})
	if err != nil {
		return "", fmt.Errorf("failed to render coding prompt: %w", err)
	}
	meta, err := c.renderer.Meta(templates.CodingTemplate)
	if err != nil {
		return "", err
	}

	resp, err := c.client.Complete(ctx, llm.CompletionRequest{
		Messages:    []llm.CompletionMessage{llm.NewUserMessage(prompt)},
		MaxTokens:   meta.MaxTokens,
		Temperature: meta.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("coding completion failed for %s: %w", spec.Path, err)
	}

	content := StripFences(resp.Content)
	if strings.TrimSpace(content) == "" {
		return "", llmerrors.NewError(llmerrors.ErrorTypeEmptyResponse,
			fmt.Sprintf("model returned empty content for %s", spec.Path))
	}

	c.logger.Debug("generated %s (%d bytes)", spec.Path, len(content))
	return content, nil
}

// StripFences removes a single markdown code fence wrapping the whole
// response, including an optional language tag. Fences inside the content are
// left alone; only a full-body wrapper is stripped.
func StripFences(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") || !strings.HasSuffix(trimmed, "```") {
		return content
	}

	inner := strings.TrimSuffix(trimmed, "```")
	inner = strings.TrimPrefix(inner, "```")
	// Drop the language tag on the opening fence, if any.
	if idx := strings.Index(inner, "\n"); idx >= 0 {
		first := strings.TrimSpace(inner[:idx])
		if !strings.ContainsAny(first, " \t") {
			inner = inner[idx+1:]
		}
	} else {
		return content
	}
	return strings.TrimSuffix(inner, "\n")
}
