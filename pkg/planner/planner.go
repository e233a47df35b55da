// Package planner turns a natural-language request into an ordered task list.
package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"codebuilder/pkg/agent/llm"
	"codebuilder/pkg/logx"
	"codebuilder/pkg/templates"
)

// PlanningError indicates the model produced no usable task list. The run
// cannot proceed past planning when this is returned.
type PlanningError struct {
	Message string
	Err     error
}

func (e *PlanningError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("planning failed: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("planning failed: %s", e.Message)
}

func (e *PlanningError) Unwrap() error { return e.Err }

// Planner drives the planning stage against an LLM client.
type Planner struct {
	client   llm.LLMClient
	renderer *templates.Renderer
	logger   *logx.Logger
}

// New creates a planner.
func New(client llm.LLMClient, renderer *templates.Renderer) *Planner {
	return &Planner{
		client:   client,
		renderer: renderer,
		logger:   logx.NewLogger("planner"),
	}
}

// Plan decomposes userPrompt into an ordered list of tasks.
func (p *Planner) Plan(ctx context.Context, userPrompt string) ([]string, error) {
	prompt, err := p.renderer.Render(templates.PlanningTemplate, &templates.TemplateData{
		UserPrompt: userPrompt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render planning prompt: %w", err)
	}
	meta, err := p.renderer.Meta(templates.PlanningTemplate)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Complete(ctx, llm.CompletionRequest{
		Messages:    []llm.CompletionMessage{llm.NewUserMessage(prompt)},
		MaxTokens:   meta.MaxTokens,
		Temperature: meta.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("planning completion failed: %w", err)
	}

	tasks, err := ParseTasks(resp.Content)
	if err != nil {
		return nil, err
	}

	p.logger.Info("planned %d tasks", len(tasks))
	for i, task := range tasks {
		p.logger.Debug("task %d: %s", i+1, task)
	}
	return tasks, nil
}

// ParseTasks extracts the JSON task array from a model response. The array is
// located by the first '[' and last ']' so that stray prose around the JSON
// does not break parsing, but the payload itself must be a valid array of
// non-empty strings.
func ParseTasks(content string) ([]string, error) {
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start < 0 || end < start {
		return nil, &PlanningError{Message: "response contains no JSON array"}
	}

	var raw []string
	if err := json.Unmarshal([]byte(content[start:end+1]), &raw); err != nil {
		return nil, &PlanningError{Message: "response is not a JSON array of strings", Err: err}
	}

	tasks := make([]string, 0, len(raw))
	for _, task := range raw {
		if trimmed := strings.TrimSpace(task); trimmed != "" {
			tasks = append(tasks, trimmed)
		}
	}
	if len(tasks) == 0 {
		return nil, &PlanningError{Message: "task list is empty"}
	}
	return tasks, nil
}
