package ui

import (
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"agentchat/config"
)

const noticeDuration = 2 * time.Second

func (a AppView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		// stop ticking once nothing is in flight
		if !a.busy() {
			return a, nil
		}
		var cmd tea.Cmd
		a.loadingSpinner, cmd = a.loadingSpinner.Update(msg)
		a.updateViewportContent(false)
		return a, cmd

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.layout()
		a.updateViewportContent(true)
		cmd := a.renderPendingMarkdown()
		return a, cmd

	case sessionCreatedMsg:
		next := a.dataModel.HandleSessionCreated(msg)
		cmd := a.afterExchange(next)
		return a, cmd

	case queryResultMsg:
		a.dataModel.HandleQueryResult(msg)
		cmd := a.afterExchange(nil)
		return a, cmd

	case markdownRenderedMsg:
		if msg.Width != a.renderedWidth {
			return a, nil
		}
		a.rendered[msg.MessageID] = msg.Rendered
		a.updateViewportContent(a.viewport.AtBottom())
		return a, nil

	case noticeExpiredMsg:
		if msg.seq == a.noticeSeq {
			a.notice = ""
		}
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	var cmd tea.Cmd
	a.viewport, cmd = a.viewport.Update(msg)
	return a, cmd
}

// afterExchange refreshes the view once the model has applied a network
// result. next is any follow-up command the model returned.
func (a *AppView) afterExchange(next tea.Cmd) tea.Cmd {
	a.syncSidebarToCurrent()
	if a.sidebar.filterMode {
		a.applySidebarFilter()
	}
	refresh := a.refreshConversation(true)
	if next == nil {
		return refresh
	}
	return tea.Batch(next, refresh, a.loadingSpinner.Tick)
}

// refreshConversation redraws the transcript and renders any new replies.
func (a *AppView) refreshConversation(gotoBottom bool) tea.Cmd {
	a.updateViewportContent(gotoBottom)
	return a.renderPendingMarkdown()
}

func (a AppView) busy() bool {
	return a.dataModel.Initializing || a.dataModel.Loading()
}

func (a AppView) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	kb := a.keys

	// Always-global shortcuts
	switch msg.String() {
	case "ctrl+c", kb.GetActionKey(config.ActionQuit):
		if config.DebugLog != nil {
			config.DebugLog.Debug("[UI] quit requested")
		}
		return a, tea.Quit
	case kb.GetActionKey(config.ActionHelp):
		a.showHelp = !a.showHelp
		return a, nil
	}

	if a.showHelp {
		if msg.String() == "esc" {
			a.showHelp = false
		}
		return a, nil
	}

	if kb.Matches(msg.String(), config.ActionAbout) {
		a.showAbout = !a.showAbout
		return a, nil
	}
	if a.showAbout {
		if msg.String() == "esc" {
			a.showAbout = false
		}
		return a, nil
	}

	if a.sidebar.confirmDelete != nil {
		return a.handleConfirmDeleteKey(msg)
	}

	if a.showSearch {
		return a.handleSearchKey(msg)
	}

	// nothing to interact with until startup finishes
	if a.dataModel.Initializing {
		return a, nil
	}

	switch msg.String() {
	case kb.GetActionKey(config.ActionNewChat):
		a.closeAllModals()
		a.focusChat()
		return a, a.dataModel.NewConversation()

	case kb.GetActionKey(config.ActionSearchAll):
		a.closeAllModals()
		a.openSearch()
		cmd := a.searchInput.Focus()
		return a, cmd

	case kb.GetActionKey(config.ActionDismissError):
		a.dataModel.DismissError()
		return a, nil

	case kb.GetActionKey(config.ActionYankLastReply):
		cmd := a.copyLastReply()
		return a, cmd

	case "tab":
		if a.focus == focusSidebar && !a.sidebar.renameMode && !a.sidebar.filterMode {
			a.focusChat()
			return a, nil
		}
		if a.focus == focusInput {
			a.focusSidebarPane()
			return a, nil
		}
	}

	if a.focus == focusSidebar {
		return a.handleSidebarKey(msg)
	}

	return a.handleInputKey(msg)
}

func (a AppView) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	kb := a.keys

	switch msg.String() {
	case "enter":
		return a.submitInput()

	case "pgup":
		a.viewport.ViewUp()
		return a, nil

	case "pgdown":
		a.viewport.ViewDown()
		return a, nil

	case kb.GetActionKey(config.ActionScrollUp):
		a.viewport.HalfViewUp()
		return a, nil

	case kb.GetActionKey(config.ActionScrollDown):
		a.viewport.HalfViewDown()
		return a, nil

	case kb.GetActionKey(config.ActionScrollToTop):
		a.viewport.GotoTop()
		return a, nil

	case kb.GetActionKey(config.ActionScrollToBottom):
		a.viewport.GotoBottom()
		return a, nil
	}

	var cmd tea.Cmd
	a.textarea, cmd = a.textarea.Update(msg)
	return a, cmd
}

// submitInput sends the textarea contents. While the model refuses to send,
// the text stays in the input.
func (a AppView) submitInput() (tea.Model, tea.Cmd) {
	text := a.textarea.Value()
	if strings.TrimSpace(text) == "" {
		return a, nil
	}

	if ok, reason := a.dataModel.CanSendMessage(); !ok {
		cmd := a.setNotice(reason)
		return a, cmd
	}

	cmd := a.dataModel.SendMessage(text)
	if cmd == nil {
		// the optimistic append failed and the model set an error
		return a, nil
	}

	a.textarea.Reset()
	a.highlightMessageID = ""
	a.syncSidebarToCurrent()
	a.updateViewportContent(true)

	return a, tea.Batch(cmd, a.loadingSpinner.Tick)
}

func (a *AppView) copyLastReply() tea.Cmd {
	conv, ok := a.dataModel.Store.Current()
	if !ok {
		return nil
	}

	for i := len(conv.Messages) - 1; i >= 0; i-- {
		if conv.Messages[i].IsUser {
			continue
		}
		if err := clipboard.WriteAll(conv.Messages[i].Content); err != nil {
			if config.DebugLog != nil {
				config.DebugLog.WithError(err).Warn("[UI] clipboard write failed")
			}
			return a.setNotice("Clipboard unavailable")
		}
		return a.setNotice("Copied last reply to clipboard")
	}

	return a.setNotice("No reply to copy yet")
}

// setNotice shows text in the banner line until it expires or is replaced.
func (a *AppView) setNotice(text string) tea.Cmd {
	a.notice = text
	a.noticeSeq++
	seq := a.noticeSeq
	return tea.Tick(noticeDuration, func(time.Time) tea.Msg {
		return noticeExpiredMsg{seq: seq}
	})
}
