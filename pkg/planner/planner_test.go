package planner

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codebuilder/pkg/agent"
	"codebuilder/pkg/agent/llm"
	"codebuilder/pkg/templates"
)

func newTestPlanner(t *testing.T, mock *agent.MockLLMClient) *Planner {
	t.Helper()
	renderer, err := templates.NewRenderer()
	require.NoError(t, err)
	return New(mock, renderer)
}

func TestPlanHappyPath(t *testing.T) {
	mock := agent.NewMockLLMClient([]llm.CompletionResponse{
		{Content: `["Create the HTML page", "Style the button", "Wire the click handler"]`},
	}, nil)
	p := newTestPlanner(t, mock)

	tasks, err := p.Plan(context.Background(), "build a page with a button")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Create the HTML page",
		"Style the button",
		"Wire the click handler",
	}, tasks)

	calls := mock.Calls()
	require.Len(t, calls, 1)
	assert.InDelta(t, 0.3, calls[0].Temperature, 0.001)
	assert.Contains(t, calls[0].Messages[0].Content, "build a page with a button")
}

func TestPlanToleratesSurroundingProse(t *testing.T) {
	mock := agent.NewMockLLMClient([]llm.CompletionResponse{
		{Content: "Here is the plan:\n[\"Task one\", \"Task two\"]\nGood luck!"},
	}, nil)
	p := newTestPlanner(t, mock)

	tasks, err := p.Plan(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, []string{"Task one", "Task two"}, tasks)
}

func TestPlanNoArray(t *testing.T) {
	mock := agent.NewMockLLMClient([]llm.CompletionResponse{
		{Content: "I cannot help with that."},
	}, nil)
	p := newTestPlanner(t, mock)

	_, err := p.Plan(context.Background(), "anything")
	var perr *PlanningError
	assert.True(t, errors.As(err, &perr))
}

func TestPlanEmptyArray(t *testing.T) {
	mock := agent.NewMockLLMClient([]llm.CompletionResponse{
		{Content: "[]"},
	}, nil)
	p := newTestPlanner(t, mock)

	_, err := p.Plan(context.Background(), "anything")
	var perr *PlanningError
	assert.True(t, errors.As(err, &perr))
}

func TestPlanPropagatesClientError(t *testing.T) {
	boom := errors.New("connection refused")
	mock := agent.NewMockLLMClient(nil, []error{boom})
	p := newTestPlanner(t, mock)

	_, err := p.Plan(context.Background(), "anything")
	assert.ErrorIs(t, err, boom)
}

func TestParseTasksFiltersBlankEntries(t *testing.T) {
	tasks, err := ParseTasks(`["  Task one  ", "", "   ", "Task two"]`)
	require.NoError(t, err)
	assert.Equal(t, []string{"Task one", "Task two"}, tasks)
}

func TestParseTasksRejectsNonStringArray(t *testing.T) {
	_, err := ParseTasks(`[1, 2, 3]`)
	var perr *PlanningError
	assert.True(t, errors.As(err, &perr))
}
