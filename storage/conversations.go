package storage

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultTitle = "New chat"

	titleWordLimit = 6
	titleEllipsis  = "..."
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrNoSession            = errors.New("conversation requires a session id")
	ErrEmptyTitle           = errors.New("title cannot be empty")
)

// Message is a single chat entry. Messages are never modified after creation.
type Message struct {
	ID        string
	Content   string
	IsUser    bool
	Timestamp time.Time
}

// Conversation is one chat thread bound to a single agent session.
type Conversation struct {
	ID        string
	Title     string
	Messages  []Message
	SessionID string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ConversationStore keeps conversations in memory, most recent first, and
// tracks which one is current. It is owned by the UI update loop and is not
// safe for concurrent use.
type ConversationStore struct {
	conversations []*Conversation
	currentID     string
	now           func() time.Time
}

func NewConversationStore() *ConversationStore {
	return &ConversationStore{now: time.Now}
}

// NewMessage builds a message with a time-ordered id.
func NewMessage(content string, isUser bool) Message {
	return Message{
		ID:        newID(),
		Content:   content,
		IsUser:    isUser,
		Timestamp: time.Now(),
	}
}

// newID returns a UUIDv7 so that ids sort in generation order.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// CreateConversation inserts an empty conversation at the front of the list
// and makes it current.
func (s *ConversationStore) CreateConversation(sessionID string) (Conversation, error) {
	if sessionID == "" {
		return Conversation{}, ErrNoSession
	}

	now := s.now()
	c := &Conversation{
		ID:        newID(),
		Title:     DefaultTitle,
		SessionID: sessionID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.conversations = append([]*Conversation{c}, s.conversations...)
	s.currentID = c.ID

	return c.clone(), nil
}

// SelectConversation makes id current. Unknown ids leave the selection as is.
func (s *ConversationStore) SelectConversation(id string) error {
	if s.find(id) < 0 {
		return ErrConversationNotFound
	}
	s.currentID = id
	return nil
}

// DeleteConversation removes id. If it was current, the first remaining
// conversation becomes current, or none if the list is now empty.
func (s *ConversationStore) DeleteConversation(id string) error {
	idx := s.find(id)
	if idx < 0 {
		return ErrConversationNotFound
	}

	s.conversations = append(s.conversations[:idx:idx], s.conversations[idx+1:]...)

	if s.currentID == id {
		s.currentID = ""
		if len(s.conversations) > 0 {
			s.currentID = s.conversations[0].ID
		}
	}
	return nil
}

func (s *ConversationStore) RenameConversation(id, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}

	c := s.get(id)
	if c == nil {
		return ErrConversationNotFound
	}

	c.Title = title
	c.UpdatedAt = s.now()
	return nil
}

// AppendUserMessage adds msg to the end of the conversation. The first
// message of a conversation also sets its title.
func (s *ConversationStore) AppendUserMessage(id string, msg Message) error {
	c := s.get(id)
	if c == nil {
		return ErrConversationNotFound
	}

	if len(c.Messages) == 0 {
		c.Title = GenerateTitle(msg.Content)
	}
	c.Messages = append(c.Messages, msg)
	c.UpdatedAt = s.now()
	return nil
}

// AppendAgentMessage rebuilds the message list as every earlier message
// except ones sharing user's id, then user, then agent. Applying it after
// AppendUserMessage with the same user message never duplicates it.
func (s *ConversationStore) AppendAgentMessage(id string, user, agent Message) error {
	c := s.get(id)
	if c == nil {
		return ErrConversationNotFound
	}

	messages := make([]Message, 0, len(c.Messages)+2)
	for _, m := range c.Messages {
		if m.ID != user.ID {
			messages = append(messages, m)
		}
	}
	messages = append(messages, user, agent)

	c.Messages = messages
	c.UpdatedAt = s.now()
	return nil
}

func (s *ConversationStore) Get(id string) (Conversation, bool) {
	c := s.get(id)
	if c == nil {
		return Conversation{}, false
	}
	return c.clone(), true
}

func (s *ConversationStore) Current() (Conversation, bool) {
	if s.currentID == "" {
		return Conversation{}, false
	}
	return s.Get(s.currentID)
}

func (s *ConversationStore) CurrentID() string {
	return s.currentID
}

// List returns copies of all conversations, most recent first.
func (s *ConversationStore) List() []Conversation {
	out := make([]Conversation, len(s.conversations))
	for i, c := range s.conversations {
		out[i] = c.clone()
	}
	return out
}

func (s *ConversationStore) Len() int {
	return len(s.conversations)
}

func (s *ConversationStore) find(id string) int {
	for i, c := range s.conversations {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (s *ConversationStore) get(id string) *Conversation {
	if i := s.find(id); i >= 0 {
		return s.conversations[i]
	}
	return nil
}

func (c *Conversation) clone() Conversation {
	out := *c
	out.Messages = make([]Message, len(c.Messages))
	copy(out.Messages, c.Messages)
	return out
}

// GenerateTitle derives a conversation title from its first message: the
// first six whitespace-separated words, with "..." appended when the
// message had more.
func GenerateTitle(firstMessage string) string {
	words := strings.Fields(firstMessage)
	if len(words) == 0 {
		return DefaultTitle
	}
	if len(words) <= titleWordLimit {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:titleWordLimit], " ") + titleEllipsis
}
