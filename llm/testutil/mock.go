// Package testutil provides test utilities for the llm package.
package testutil

import (
	"context"
	"sync"

	"github.com/tripweave/tripweave/llm"
)

// MockClient is a thread-safe mock LLM client for testing. It returns
// configured responses in sequence and captures the requests it received.
//
// Usage:
//
//	mock := &testutil.MockClient{
//	    Responses: []*llm.Response{
//	        {Content: `{"userMessage": "hi"}`, Model: "test-model"},
//	    },
//	}
type MockClient struct {
	mu            sync.Mutex
	Responses     []*llm.Response // Responses to return in sequence
	Errs          []error         // Per-call errors; nil entries fall through to Responses
	Requests      []llm.Request   // Captured requests, in call order
	responseIndex int
}

// Complete returns the next configured response or error and records the
// request. When the response sequence is exhausted, the last response
// repeats.
func (m *MockClient) Complete(_ context.Context, req llm.Request) (*llm.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.responseIndex
	m.responseIndex++
	m.Requests = append(m.Requests, req)

	if idx < len(m.Errs) && m.Errs[idx] != nil {
		return nil, m.Errs[idx]
	}

	if len(m.Responses) == 0 {
		return &llm.Response{Content: "", Model: "mock"}, nil
	}
	if idx >= len(m.Responses) {
		idx = len(m.Responses) - 1
	}
	return m.Responses[idx], nil
}

// CallCount returns how many times Complete was invoked.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}
