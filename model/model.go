package model

import (
	"context"
	"time"

	"agentchat/config"
	"agentchat/storage"
)

// Agent is the remote side of a conversation. *agent.Client implements it.
type Agent interface {
	CreateSession(ctx context.Context) (string, error)
	SendQuery(ctx context.Context, query, sessionID string) (string, error)
}

// ExchangeState tracks the single in-flight exchange, if any.
type ExchangeState int

const (
	ExchangeIdle ExchangeState = iota
	ExchangeAwaitingSession
	ExchangeAwaitingResponse
)

func (s ExchangeState) String() string {
	switch s {
	case ExchangeAwaitingSession:
		return "awaiting-session"
	case ExchangeAwaitingResponse:
		return "awaiting-response"
	default:
		return "idle"
	}
}

// Model holds conversation state and the exchange state machine. All methods
// must be called from the bubbletea update loop; network work happens inside
// the returned commands and comes back as messages.
type Model struct {
	Agent   Agent
	Store   *storage.ConversationStore
	Timeout time.Duration

	Exchange ExchangeState
	// PendingConversationID is the conversation awaiting a reply, if any.
	PendingConversationID string

	Initializing bool
	InitErr      error

	// Error is the single user-visible error, empty when there is none.
	Error string

	Version string
}

func NewModel(agent Agent, store *storage.ConversationStore, timeout time.Duration, version string) *Model {
	if store == nil {
		store = storage.NewConversationStore()
	}
	if timeout <= 0 {
		timeout = config.DefaultTimeout
	}
	return &Model{
		Agent:   agent,
		Store:   store,
		Timeout: timeout,
		Version: version,
	}
}

// Loading reports whether an exchange is in flight. While true, SendMessage
// does nothing.
func (m *Model) Loading() bool {
	return m.Exchange != ExchangeIdle
}

// CanSendMessage reports whether the input should accept a message and,
// if not, why.
func (m *Model) CanSendMessage() (bool, string) {
	if m.Initializing {
		return false, "Initializing..."
	}
	if m.Loading() {
		return false, "Waiting for the agent..."
	}
	return true, ""
}
