package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockProvider replays queued responses in order. With nothing queued it
// reports the provider as unavailable, which drives callers onto their
// fallback paths.
type MockProvider struct {
	mu        sync.Mutex
	responses []mockResult
	calls     []Request
}

type mockResult struct {
	resp *Response
	err  error
}

// NewMockProvider returns an empty mock.
func NewMockProvider() *MockProvider { return &MockProvider{} }

// AddResponse queues a successful response with the given JSON body.
func (m *MockProvider) AddResponse(content string) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, mockResult{resp: &Response{
		Content:    json.RawMessage(content),
		Model:      ProviderMock,
		StopReason: "end",
	}})
	return m
}

// AddError queues a failure.
func (m *MockProvider) AddError(err error) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, mockResult{err: err})
	return m
}

func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, req)
	if len(m.responses) == 0 {
		return nil, &ErrProviderUnavailable{}
	}
	next := m.responses[0]
	m.responses = m.responses[1:]
	if next.err != nil {
		return nil, next.err
	}
	out := *next.resp
	return finish(req, &out)
}

func (m *MockProvider) ModelID() string { return ProviderMock }

// Calls returns the requests seen so far.
func (m *MockProvider) Calls() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.calls...)
}

// IsMock reports whether p ultimately serves canned data.
func IsMock(p Provider) bool {
	return p != nil && p.ModelID() == ProviderMock
}
