package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"

	"agentchat/config"
	"agentchat/storage"
)

// sidebarState is the conversation list UI: selection, inline rename,
// fuzzy filter and delete confirmation.
type sidebarState struct {
	selectedIdx int

	filterMode  bool
	filterInput textinput.Model
	filtered    []storage.Conversation

	renameMode  bool
	renameInput textinput.Model
	renameID    string

	confirmDelete *storage.Conversation
}

func newSidebarState() sidebarState {
	filterInput := textinput.New()
	filterInput.Prompt = "/ "
	filterInput.CharLimit = 64

	renameInput := textinput.New()
	renameInput.Prompt = ""
	renameInput.CharLimit = 120

	return sidebarState{
		filterInput: filterInput,
		renameInput: renameInput,
	}
}

// visibleConversations returns the filtered list while filtering, otherwise
// every conversation.
func (a AppView) visibleConversations() []storage.Conversation {
	if a.sidebar.filterMode && a.sidebar.filterInput.Value() != "" {
		return a.sidebar.filtered
	}
	return a.dataModel.Store.List()
}

func (a *AppView) applySidebarFilter() {
	all := a.dataModel.Store.List()
	value := a.sidebar.filterInput.Value()
	if value == "" {
		a.sidebar.filtered = all
	} else {
		targets := make([]string, len(all))
		for i, c := range all {
			targets[i] = c.Title
		}

		matches := fuzzy.Find(value, targets)
		a.sidebar.filtered = make([]storage.Conversation, len(matches))
		for i, match := range matches {
			a.sidebar.filtered[i] = all[match.Index]
		}
	}
	a.clampSidebarSelection()
}

func (a *AppView) clampSidebarSelection() {
	n := len(a.visibleConversations())
	if a.sidebar.selectedIdx >= n {
		a.sidebar.selectedIdx = n - 1
	}
	if a.sidebar.selectedIdx < 0 {
		a.sidebar.selectedIdx = 0
	}
}

// syncSidebarToCurrent moves the sidebar cursor onto the current conversation.
func (a *AppView) syncSidebarToCurrent() {
	currentID := a.dataModel.Store.CurrentID()
	for i, c := range a.visibleConversations() {
		if c.ID == currentID {
			a.sidebar.selectedIdx = i
			return
		}
	}
	a.clampSidebarSelection()
}

func (a AppView) selectedConversation() (storage.Conversation, bool) {
	list := a.visibleConversations()
	if a.sidebar.selectedIdx < 0 || a.sidebar.selectedIdx >= len(list) {
		return storage.Conversation{}, false
	}
	return list[a.sidebar.selectedIdx], true
}

func (a AppView) handleSidebarKey(msg tea.KeyMsg) (AppView, tea.Cmd) {
	if a.sidebar.renameMode {
		return a.handleSidebarRename(msg)
	}
	if a.sidebar.filterMode {
		return a.handleSidebarFilter(msg)
	}

	list := a.visibleConversations()

	switch msg.String() {
	case "j", "down":
		if a.sidebar.selectedIdx < len(list)-1 {
			a.sidebar.selectedIdx++
		}
	case "k", "up":
		if a.sidebar.selectedIdx > 0 {
			a.sidebar.selectedIdx--
		}
	case "g", "home":
		a.sidebar.selectedIdx = 0
	case "G", "end":
		if len(list) > 0 {
			a.sidebar.selectedIdx = len(list) - 1
		}
	case "enter":
		if conv, ok := a.selectedConversation(); ok {
			a.dataModel.SelectConversation(conv.ID)
			a.focusChat()
			cmd := a.refreshConversation(true)
			return a, cmd
		}
	case "r":
		if conv, ok := a.selectedConversation(); ok {
			a.sidebar.renameMode = true
			a.sidebar.renameID = conv.ID
			a.sidebar.renameInput.SetValue(conv.Title)
			a.sidebar.renameInput.CursorEnd()
			cmd := a.sidebar.renameInput.Focus()
			return a, cmd
		}
	case "d":
		if conv, ok := a.selectedConversation(); ok {
			a.sidebar.confirmDelete = &conv
		}
	case "/":
		a.sidebar.filterMode = true
		a.sidebar.filterInput.SetValue("")
		a.applySidebarFilter()
		cmd := a.sidebar.filterInput.Focus()
		return a, cmd
	case "esc":
		a.focusChat()
	}

	return a, nil
}

func (a AppView) handleSidebarRename(msg tea.KeyMsg) (AppView, tea.Cmd) {
	switch msg.String() {
	case "enter":
		// blank titles are rejected by the store and logged
		a.dataModel.RenameConversation(a.sidebar.renameID, a.sidebar.renameInput.Value())
		a.endRename()
		a.applySidebarFilter()
		return a, nil
	case "esc":
		a.endRename()
		return a, nil
	case a.keys.GetActionKey(config.ActionClearInput):
		a.sidebar.renameInput.SetValue("")
		return a, nil
	}

	var cmd tea.Cmd
	a.sidebar.renameInput, cmd = a.sidebar.renameInput.Update(msg)
	return a, cmd
}

func (a *AppView) endRename() {
	a.sidebar.renameMode = false
	a.sidebar.renameID = ""
	a.sidebar.renameInput.SetValue("")
	a.sidebar.renameInput.Blur()
}

func (a AppView) handleSidebarFilter(msg tea.KeyMsg) (AppView, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.closeSidebarFilter()
		a.syncSidebarToCurrent()
		return a, nil
	case "enter":
		conv, ok := a.selectedConversation()
		a.closeSidebarFilter()
		if ok {
			a.dataModel.SelectConversation(conv.ID)
			a.syncSidebarToCurrent()
			a.focusChat()
			cmd := a.refreshConversation(true)
			return a, cmd
		}
		return a, nil
	case a.keys.GetActionKey(config.ActionListDown), "down":
		if a.sidebar.selectedIdx < len(a.visibleConversations())-1 {
			a.sidebar.selectedIdx++
		}
		return a, nil
	case a.keys.GetActionKey(config.ActionListUp), "up":
		if a.sidebar.selectedIdx > 0 {
			a.sidebar.selectedIdx--
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.sidebar.filterInput, cmd = a.sidebar.filterInput.Update(msg)
	a.applySidebarFilter()
	return a, cmd
}

func (a *AppView) closeSidebarFilter() {
	a.sidebar.filterMode = false
	a.sidebar.filterInput.SetValue("")
	a.sidebar.filterInput.Blur()
	a.sidebar.filtered = nil
}

func (a AppView) handleConfirmDeleteKey(msg tea.KeyMsg) (AppView, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		id := a.sidebar.confirmDelete.ID
		a.sidebar.confirmDelete = nil
		a.dataModel.DeleteConversation(id)
		if config.DebugLog != nil {
			config.DebugLog.WithField("conversation", id).Debug("[UI] conversation deleted")
		}
		if a.sidebar.filterMode {
			a.applySidebarFilter()
		}
		a.syncSidebarToCurrent()
		cmd := a.refreshConversation(true)
		return a, cmd
	case "n", "N", "esc":
		a.sidebar.confirmDelete = nil
	}
	return a, nil
}

func renderSidebar(convs []storage.Conversation, state sidebarState, total int, currentID string, focused bool, now time.Time, width, height int) string {
	// one column is taken by the right border
	contentWidth := width - 1
	if contentWidth < 4 {
		contentWidth = 4
	}

	title := TitleStyle.Render(truncate("Conversations", contentWidth))

	var header string
	if state.filterMode {
		header = state.filterInput.View()
	} else if len(convs) == total {
		header = DimStyle.Render(pluralize(total, "chat", "chats"))
	} else {
		header = DimStyle.Render(fmt.Sprintf("%d of %d chats", len(convs), total))
	}

	lines := []string{title, header, ""}

	// each entry takes a title line and a date line
	maxEntries := (height - len(lines)) / 2
	if maxEntries < 1 {
		maxEntries = 1
	}

	if len(convs) == 0 {
		empty := "No conversations"
		if state.filterMode {
			empty = "No matches found"
		}
		lines = append(lines, DimStyle.Italic(true).Render(truncate(empty, contentWidth)))
	} else {
		startIdx, endIdx := scrollWindow(len(convs), state.selectedIdx, maxEntries)

		for i := startIdx; i < endIdx; i++ {
			c := convs[i]
			selected := focused && i == state.selectedIdx

			indicator := "  "
			if selected {
				indicator = "▶ "
			}

			var name string
			if state.renameMode && c.ID == state.renameID {
				name = lipgloss.NewStyle().Foreground(accentColor).Bold(true).Render(state.renameInput.View())
			} else {
				name = truncate(c.Title, contentWidth-runewidth.StringWidth(indicator))
				switch {
				case selected:
					name = lipgloss.NewStyle().Foreground(successColor).Bold(true).Render(name)
				case c.ID == currentID:
					name = lipgloss.NewStyle().Foreground(accentColor).Bold(true).Render(name)
				}
			}

			date := "  " + formatRelativeDate(c.UpdatedAt, now)
			if n := len(c.Messages); n > 0 {
				date += " · " + pluralize(n, "msg", "msgs")
			}

			lines = append(lines, indicator+name, DimStyle.Render(truncate(date, contentWidth)))
		}
	}

	style := SidebarStyle
	if focused {
		style = SidebarFocusedStyle
	}

	return style.
		Width(contentWidth).
		Height(height).
		MaxHeight(height).
		Render(strings.Join(lines, "\n"))
}

// scrollWindow returns the [start, end) range of n items that keeps selected
// roughly centred in a window of size max.
func scrollWindow(n, selected, max int) (int, int) {
	if n <= max {
		return 0, n
	}
	switch {
	case selected < max/2:
		return 0, max
	case selected >= n-max/2:
		return n - max, n
	default:
		start := selected - max/2
		return start, start + max
	}
}

// formatRelativeDate labels a conversation's last activity: "Today" and
// "Yesterday" within 24 and 48 hours, "N days ago" within a week, otherwise
// the calendar date.
func formatRelativeDate(t, now time.Time) string {
	d := now.Sub(t)

	switch {
	case d < 24*time.Hour:
		return "Today"
	case d < 48*time.Hour:
		return "Yesterday"
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%d days ago", int(d.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}

// truncate shortens s to width display cells, ending with "..." when cut.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	if width <= 3 {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width, "...")
}

func pluralize(n int, singular, plural string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", singular)
	}
	return fmt.Sprintf("%d %s", n, plural)
}
