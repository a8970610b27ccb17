package model

import "agentchat/storage"

// SessionPurpose says why a session was requested, which decides what
// happens once it arrives.
type SessionPurpose int

const (
	PurposeStartup SessionPurpose = iota
	PurposeNewChat
	PurposeSend
)

type SessionCreatedMsg struct {
	Purpose   SessionPurpose
	SessionID string
	// Pending is the message text waiting on this session (PurposeSend only).
	Pending string
	Err     error
}

type QueryResultMsg struct {
	ConversationID string
	UserMessage    storage.Message
	Response       string
	Err            error
}

func (p SessionPurpose) String() string {
	switch p {
	case PurposeStartup:
		return "startup"
	case PurposeNewChat:
		return "new-chat"
	case PurposeSend:
		return "send"
	default:
		return "unknown"
	}
}
