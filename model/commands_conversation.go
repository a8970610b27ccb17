package model

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"agentchat/config"
	"agentchat/storage"
)

// Initialize creates the startup conversation.
func (m *Model) Initialize() tea.Cmd {
	m.Initializing = true
	m.InitErr = nil
	return m.createSessionCmd(PurposeStartup, "")
}

// NewConversation starts a fresh conversation with its own session.
func (m *Model) NewConversation() tea.Cmd {
	m.Error = ""
	return m.createSessionCmd(PurposeNewChat, "")
}

// SendMessage sends text in the current conversation, creating one first if
// none is selected. It does nothing while another exchange is in flight.
func (m *Model) SendMessage(text string) tea.Cmd {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if ok, reason := m.CanSendMessage(); !ok {
		if config.DebugLog != nil {
			config.DebugLog.WithField("reason", reason).Debug("[Model] SendMessage ignored")
		}
		return nil
	}

	conv, ok := m.Store.Current()
	if !ok {
		m.Exchange = ExchangeAwaitingSession
		m.Error = ""
		return m.createSessionCmd(PurposeSend, text)
	}

	return m.beginExchange(conv, text)
}

// beginExchange appends the user message optimistically and returns the
// query command. The command captures the conversation id, so a reply lands
// in the conversation it was asked in even if the selection changes.
func (m *Model) beginExchange(conv storage.Conversation, text string) tea.Cmd {
	user := storage.NewMessage(text, true)
	if err := m.Store.AppendUserMessage(conv.ID, user); err != nil {
		m.Exchange = ExchangeIdle
		m.Error = ErrTextSendMessage
		if config.DebugLog != nil {
			config.DebugLog.WithError(err).WithField("conversation", conv.ID).Error("[Model] optimistic append failed")
		}
		return nil
	}

	m.Exchange = ExchangeAwaitingResponse
	m.PendingConversationID = conv.ID
	m.Error = ""

	agent := m.Agent
	timeout := m.Timeout
	conversationID := conv.ID
	sessionID := conv.SessionID

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		start := time.Now()
		response, err := agent.SendQuery(ctx, text, sessionID)
		if config.DebugLog != nil {
			entry := config.DebugLog.WithFields(logrus.Fields{
				"conversation": conversationID,
				"session":      sessionID,
				"elapsed":      time.Since(start),
			})
			if err != nil {
				entry.WithError(err).Error("[Model] query failed")
			} else {
				entry.WithField("chars", len(response)).Debug("[Model] query answered")
			}
		}

		return QueryResultMsg{
			ConversationID: conversationID,
			UserMessage:    user,
			Response:       response,
			Err:            err,
		}
	}
}

func (m *Model) createSessionCmd(purpose SessionPurpose, pending string) tea.Cmd {
	agent := m.Agent
	timeout := m.Timeout

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		sessionID, err := agent.CreateSession(ctx)
		if err != nil && config.DebugLog != nil {
			config.DebugLog.WithError(err).WithField("purpose", purpose).Error("[Model] create session failed")
		}

		return SessionCreatedMsg{
			Purpose:   purpose,
			SessionID: sessionID,
			Pending:   pending,
			Err:       err,
		}
	}
}

// HandleSessionCreated applies a finished session request. For a send that
// was waiting on it, the returned command carries the query.
func (m *Model) HandleSessionCreated(msg SessionCreatedMsg) tea.Cmd {
	switch msg.Purpose {
	case PurposeStartup:
		m.Initializing = false
	case PurposeSend:
		m.Exchange = ExchangeIdle
	}

	if msg.Err != nil {
		m.sessionFailed(msg.Purpose, msg.Err)
		return nil
	}

	conv, err := m.Store.CreateConversation(msg.SessionID)
	if err != nil {
		m.sessionFailed(msg.Purpose, err)
		return nil
	}

	if config.DebugLog != nil {
		config.DebugLog.WithFields(logrus.Fields{
			"conversation": conv.ID,
			"session":      conv.SessionID,
		}).Debug("[Model] conversation created")
	}

	switch msg.Purpose {
	case PurposeStartup:
		m.Error = ""
	case PurposeSend:
		return m.beginExchange(conv, msg.Pending)
	}
	return nil
}

func (m *Model) sessionFailed(purpose SessionPurpose, err error) {
	switch purpose {
	case PurposeStartup:
		m.InitErr = &InitializationError{Err: err}
		m.Error = ErrTextInitialize
	case PurposeNewChat:
		m.Error = ErrTextNewChat
	case PurposeSend:
		m.Error = ErrTextCreateConversation
	}
}

// HandleQueryResult applies a finished query. On failure the user message
// stays in the conversation and only the error text is set.
func (m *Model) HandleQueryResult(msg QueryResultMsg) {
	defer func() {
		m.Exchange = ExchangeIdle
		m.PendingConversationID = ""
	}()

	if msg.Err != nil {
		m.Error = ErrTextSendMessage
		return
	}

	reply := storage.NewMessage(msg.Response, false)
	if err := m.Store.AppendAgentMessage(msg.ConversationID, msg.UserMessage, reply); err != nil {
		// conversation was deleted while the query was in flight
		if config.DebugLog != nil {
			config.DebugLog.WithError(err).WithField("conversation", msg.ConversationID).Warn("[Model] dropping reply")
		}
	}
}

func (m *Model) SelectConversation(id string) {
	if err := m.Store.SelectConversation(id); err != nil && config.DebugLog != nil {
		config.DebugLog.WithError(err).WithField("conversation", id).Debug("[Model] select ignored")
	}
	m.Error = ""
}

func (m *Model) DeleteConversation(id string) {
	if err := m.Store.DeleteConversation(id); err != nil && config.DebugLog != nil {
		config.DebugLog.WithError(err).WithField("conversation", id).Debug("[Model] delete ignored")
	}
}

func (m *Model) RenameConversation(id, title string) {
	if err := m.Store.RenameConversation(id, title); err != nil && config.DebugLog != nil {
		config.DebugLog.WithError(err).WithField("conversation", id).Debug("[Model] rename ignored")
	}
}

func (m *Model) DismissError() {
	m.Error = ""
}
