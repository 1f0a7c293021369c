package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/kevin07696/realex-gateway/internal/domain"
)

// TransportCall records one Post
type TransportCall struct {
	Endpoint domain.Endpoint
	Body     []byte
}

// MockTransport is a mock implementation of Transport for testing.
// Replies are returned in the order they were queued.
type MockTransport struct {
	mu sync.Mutex

	replies [][]byte
	errs    []error

	// PostFunc, when set, answers every call instead of the queue
	PostFunc func(ctx context.Context, endpoint domain.Endpoint, body []byte) ([]byte, error)

	Calls []TransportCall
}

// NewMockTransport creates a mock transport that answers with replies in order
func NewMockTransport(replies ...string) *MockTransport {
	m := &MockTransport{}
	for _, r := range replies {
		m.QueueReply(r)
	}
	return m
}

// QueueReply appends a successful reply
func (m *MockTransport) QueueReply(body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, []byte(body))
	m.errs = append(m.errs, nil)
}

// QueueError appends a failed exchange
func (m *MockTransport) QueueError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, nil)
	m.errs = append(m.errs, err)
}

// Post records the call and returns the next queued reply
func (m *MockTransport) Post(ctx context.Context, endpoint domain.Endpoint, body []byte) ([]byte, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, TransportCall{Endpoint: endpoint, Body: append([]byte(nil), body...)})
	postFunc := m.PostFunc
	if postFunc != nil {
		m.mu.Unlock()
		return postFunc(ctx, endpoint, body)
	}
	defer m.mu.Unlock()

	if len(m.replies) == 0 {
		return nil, fmt.Errorf("mock transport: no reply queued for call %d", len(m.Calls))
	}
	reply, err := m.replies[0], m.errs[0]
	m.replies, m.errs = m.replies[1:], m.errs[1:]
	return reply, err
}

// CallCount returns the number of Post calls
func (m *MockTransport) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// LastCall returns the most recent call
func (m *MockTransport) LastCall() TransportCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return TransportCall{}
	}
	return m.Calls[len(m.Calls)-1]
}
