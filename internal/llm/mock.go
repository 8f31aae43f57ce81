package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockResponse is one scripted reply. A non-nil Err is returned instead
// of content.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// MockProvider replays scripted responses in order and records every
// request it receives. Content is returned as scripted without schema
// validation. Requests made after the script runs out fail with
// ErrNoResponse.
type MockProvider struct {
	// Model is reported by ModelID and on responses. Empty means "mock".
	Model string

	// Calls holds every request seen, in order.
	Calls []Request

	mu     sync.Mutex
	script []MockResponse
}

func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{script: responses}
}

func (m *MockProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(m.script) == 0 {
		return nil, &UnavailableError{Provider: "mock", Err: ErrNoResponse}
	}

	next := m.script[0]
	m.script = m.script[1:]
	if next.Err != nil {
		return nil, next.Err
	}
	usage := next.Usage
	if usage.TotalTokens == 0 {
		usage.TotalTokens = usage.InputTokens + usage.OutputTokens
	}
	return &Response{Content: next.Content, Usage: usage, Model: m.modelID(), StopReason: StopEnd}, nil
}

func (m *MockProvider) ModelID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.modelID()
}

func (m *MockProvider) modelID() string {
	if m.Model == "" {
		return "mock"
	}
	return m.Model
}

// AddResponse appends to the script.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, resp)
}

// Pending is the number of scripted responses not yet consumed.
func (m *MockProvider) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.script)
}

func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
