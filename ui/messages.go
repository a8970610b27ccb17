package ui

import "agentchat/model"

type sessionCreatedMsg = model.SessionCreatedMsg
type queryResultMsg = model.QueryResultMsg

// markdownRenderedMsg carries a rendered agent reply back to the update loop.
// Width is the wrap width it was rendered for; stale widths are discarded.
type markdownRenderedMsg struct {
	MessageID string
	Width     int
	Rendered  string
}

// noticeExpiredMsg clears a transient status line notice.
type noticeExpiredMsg struct {
	seq int
}

type focusArea int

const (
	focusInput focusArea = iota
	focusSidebar
)
