package storage

import (
	"strings"
	"time"
)

const previewLength = 100

// MessageMatch is a search hit inside one conversation.
type MessageMatch struct {
	MessageIndex int
	MessageID    string
	IsUser       bool
	Content      string
	Preview      string
	Timestamp    time.Time
}

// ConversationMessageMatch is a search hit across all conversations.
type ConversationMessageMatch struct {
	ConversationID    string
	ConversationTitle string
	MessageMatch
}

// SearchMessages returns messages containing query, case-insensitively, in
// conversation order.
func SearchMessages(messages []Message, query string) []MessageMatch {
	if strings.TrimSpace(query) == "" {
		return []MessageMatch{}
	}

	queryLower := strings.ToLower(query)
	matches := []MessageMatch{}

	for i, msg := range messages {
		if !strings.Contains(strings.ToLower(msg.Content), queryLower) {
			continue
		}
		matches = append(matches, MessageMatch{
			MessageIndex: i,
			MessageID:    msg.ID,
			IsUser:       msg.IsUser,
			Content:      msg.Content,
			Preview:      preview(msg.Content),
			Timestamp:    msg.Timestamp,
		})
	}

	return matches
}

// SearchAll runs SearchMessages over every conversation in list order.
func (s *ConversationStore) SearchAll(query string) []ConversationMessageMatch {
	matches := []ConversationMessageMatch{}
	if strings.TrimSpace(query) == "" {
		return matches
	}

	for _, c := range s.conversations {
		for _, m := range SearchMessages(c.Messages, query) {
			matches = append(matches, ConversationMessageMatch{
				ConversationID:    c.ID,
				ConversationTitle: c.Title,
				MessageMatch:      m,
			})
		}
	}
	return matches
}

func preview(content string) string {
	content = strings.Join(strings.Fields(content), " ")
	runes := []rune(content)
	if len(runes) > previewLength {
		return string(runes[:previewLength]) + "..."
	}
	return content
}
