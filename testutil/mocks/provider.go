// Package mocks provides test doubles for the llm.Provider interface.
//
// Supports fixed responses, scripted response sequences and error
// injection.
package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/BaSui01/userboard/llm"
)

// MockProvider is a configurable llm.Provider for tests.
type MockProvider struct {
	mu sync.RWMutex

	response  string
	responses []string // scripted sequence, consumed per call
	err       error

	promptTokens     int
	completionTokens int

	calls          []MockProviderCall
	completionFunc func(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error)

	delay     time.Duration
	failFirst int // fail the first N calls with err, then succeed
	callCount int
}

// MockProviderCall records a single Completion invocation.
type MockProviderCall struct {
	Request  *llm.ChatRequest
	Response *llm.ChatResponse
	Error    error
}

// NewMockProvider creates a provider that answers "Mock response".
func NewMockProvider() *MockProvider {
	return &MockProvider{
		response:         "Mock response",
		promptTokens:     10,
		completionTokens: 20,
	}
}

// WithResponse sets a fixed response.
func (m *MockProvider) WithResponse(response string) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.response = response
	return m
}

// WithResponses scripts a sequence of responses, one per call. When the
// sequence is exhausted the last entry repeats.
func (m *MockProvider) WithResponses(responses ...string) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = responses
	return m
}

// WithError makes every call fail with err.
func (m *MockProvider) WithError(err error) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithFailFirst makes the first n calls fail with err, then succeed.
func (m *MockProvider) WithFailFirst(n int, err error) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failFirst = n
	m.err = err
	return m
}

// WithTokenUsage sets the usage reported on every response.
func (m *MockProvider) WithTokenUsage(prompt, completion int) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.promptTokens = prompt
	m.completionTokens = completion
	return m
}

// WithDelay simulates provider latency.
func (m *MockProvider) WithDelay(d time.Duration) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
	return m
}

// WithCompletionFunc takes full control of every call.
func (m *MockProvider) WithCompletionFunc(fn func(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error)) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completionFunc = fn
	return m
}

// Name implements llm.Provider.
func (m *MockProvider) Name() string { return "mock" }

// Completion implements llm.Provider.
func (m *MockProvider) Completion(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	m.mu.Lock()
	m.callCount++
	call := m.callCount
	fn := m.completionFunc
	delay := m.delay
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	if fn != nil {
		resp, err := fn(ctx, req)
		m.record(req, resp, err)
		return resp, err
	}

	m.mu.RLock()
	err := m.err
	failFirst := m.failFirst
	content := m.response
	if len(m.responses) > 0 {
		idx := call - 1
		if idx >= len(m.responses) {
			idx = len(m.responses) - 1
		}
		content = m.responses[idx]
	}
	prompt, completion := m.promptTokens, m.completionTokens
	m.mu.RUnlock()

	if err != nil && (failFirst == 0 || call <= failFirst) {
		m.record(req, nil, err)
		return nil, err
	}

	resp := &llm.ChatResponse{
		ID:       "mock-response",
		Provider: "mock",
		Model:    req.Model,
		Choices: []llm.ChatChoice{
			{Message: llm.Message{Role: llm.RoleAssistant, Content: content}},
		},
		Usage: llm.ChatUsage{
			PromptTokens:     prompt,
			CompletionTokens: completion,
			TotalTokens:      prompt + completion,
		},
		CreatedAt: time.Now().UTC(),
	}
	m.record(req, resp, nil)
	return resp, nil
}

func (m *MockProvider) record(req *llm.ChatRequest, resp *llm.ChatResponse, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, MockProviderCall{Request: req, Response: resp, Error: err})
}

// GetCallCount returns how many times Completion ran.
func (m *MockProvider) GetCallCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.callCount
}

// GetCalls returns a copy of the recorded calls.
func (m *MockProvider) GetCalls() []MockProviderCall {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]MockProviderCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// Reset clears recorded calls and the call counter.
func (m *MockProvider) Reset() *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
	m.callCount = 0
	return m
}
