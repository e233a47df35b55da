package agent

import (
	"context"
	"fmt"
	"sync"

	"codebuilder/pkg/agent/llm"
)

// MockLLMClient provides a controllable implementation of llm.LLMClient for testing.
// Responses and errors are consumed in order; an error entry for a given call
// index takes precedence over the response at that index.
type MockLLMClient struct {
	mu        sync.Mutex
	responses []llm.CompletionResponse
	errors    []error
	calls     []llm.CompletionRequest
	index     int
}

// NewMockLLMClient creates a new mock client with predefined responses.
func NewMockLLMClient(responses []llm.CompletionResponse, errors []error) *MockLLMClient {
	return &MockLLMClient{
		responses: responses,
		errors:    errors,
	}
}

// Complete returns the next predefined response or error.
func (m *MockLLMClient) Complete(_ context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, req)
	i := m.index
	m.index++

	if i < len(m.errors) && m.errors[i] != nil {
		return llm.CompletionResponse{}, m.errors[i]
	}
	if i >= len(m.responses) {
		return llm.CompletionResponse{}, fmt.Errorf("mock client: no more responses (call %d)", i+1)
	}
	return m.responses[i], nil
}

// GetModelName returns a fixed mock model name.
func (m *MockLLMClient) GetModelName() string {
	return "mock-model"
}

// Calls returns a copy of all requests received so far.
func (m *MockLLMClient) Calls() []llm.CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]llm.CompletionRequest, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns the number of Complete invocations.
func (m *MockLLMClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
