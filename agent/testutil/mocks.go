package testutil

import (
	"context"
	"fmt"
	"sync"
)

// MockAgent satisfies the controller's Agent interface for tests.
type MockAgent struct {
	CreateSessionFunc func(ctx context.Context) (string, error)
	SendQueryFunc     func(ctx context.Context, query, sessionID string) (string, error)

	mu       sync.Mutex
	sessions int
	queries  []Query
}

// Query records one SendQuery call.
type Query struct {
	Text      string
	SessionID string
}

// NewMockAgent returns a mock that hands out "session-1", "session-2", ...
// and echoes every query back as "echo: <query>".
func NewMockAgent() *MockAgent {
	m := &MockAgent{}
	m.CreateSessionFunc = m.defaultCreateSession
	m.SendQueryFunc = m.defaultSendQuery
	return m
}

func (m *MockAgent) defaultCreateSession(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fmt.Sprintf("session-%d", m.sessions), nil
}

func (m *MockAgent) defaultSendQuery(ctx context.Context, query, sessionID string) (string, error) {
	return "echo: " + query, nil
}

func (m *MockAgent) CreateSession(ctx context.Context) (string, error) {
	m.mu.Lock()
	m.sessions++
	m.mu.Unlock()
	return m.CreateSessionFunc(ctx)
}

func (m *MockAgent) SendQuery(ctx context.Context, query, sessionID string) (string, error) {
	m.mu.Lock()
	m.queries = append(m.queries, Query{Text: query, SessionID: sessionID})
	m.mu.Unlock()
	return m.SendQueryFunc(ctx, query, sessionID)
}

// SessionCalls returns how many times CreateSession was called.
func (m *MockAgent) SessionCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions
}

// Queries returns a copy of every SendQuery call in order.
func (m *MockAgent) Queries() []Query {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Query, len(m.queries))
	copy(out, m.queries)
	return out
}
