package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"agentchat/config"
	"agentchat/storage"
)

// Search result rows use a conservative height so wrapped previews still fit.
const searchLinesPerResult = 6

func (a *AppView) openSearch() {
	a.showSearch = true
	a.searchInput.SetValue("")
	a.searchResults = nil
	a.selectedSearchIdx = 0
	a.searchScrollIdx = 0
	a.textarea.Blur()
}

func (a *AppView) closeSearch() {
	a.showSearch = false
	a.searchInput.Blur()
	if a.focus == focusInput {
		a.textarea.Focus()
	}
}

func (a AppView) handleSearchKey(msg tea.KeyMsg) (AppView, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.closeSearch()
		return a, nil

	case "enter":
		if a.selectedSearchIdx >= len(a.searchResults) {
			return a, nil
		}
		match := a.searchResults[a.selectedSearchIdx]
		a.closeSearch()
		cmd := a.jumpToMessage(match.ConversationID, match.MessageID)
		return a, cmd

	case a.keys.GetActionKey(config.ActionListDown), "down":
		if a.selectedSearchIdx < len(a.searchResults)-1 {
			a.selectedSearchIdx++
			a.adjustSearchScroll()
		}
		return a, nil

	case a.keys.GetActionKey(config.ActionListUp), "up":
		if a.selectedSearchIdx > 0 {
			a.selectedSearchIdx--
			a.adjustSearchScroll()
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.searchInput, cmd = a.searchInput.Update(msg)

	a.searchResults = a.dataModel.Store.SearchAll(a.searchInput.Value())
	a.selectedSearchIdx = 0
	a.searchScrollIdx = 0

	return a, cmd
}

func (a *AppView) adjustSearchScroll() {
	visible := maxVisibleSearchResults(a.height)
	if a.selectedSearchIdx < a.searchScrollIdx {
		a.searchScrollIdx = a.selectedSearchIdx
	}
	if a.selectedSearchIdx >= a.searchScrollIdx+visible {
		a.searchScrollIdx = a.selectedSearchIdx - visible + 1
	}
}

// jumpToMessage opens the conversation holding the match and scrolls the
// transcript to it.
func (a *AppView) jumpToMessage(conversationID, messageID string) tea.Cmd {
	a.dataModel.SelectConversation(conversationID)
	a.syncSidebarToCurrent()
	a.highlightMessageID = messageID

	cmd := a.refreshConversation(false)
	if line, ok := a.messageLines[messageID]; ok {
		a.viewport.SetYOffset(line)
	}
	return cmd
}

func maxVisibleSearchResults(height int) int {
	// Border(2) + Padding(2) + Title(1) + Blank(1) + SearchInput(1) + Blank(1) +
	// "Found X matches:"(1) + Blank(1) + Footer(1) + Blank(1) = 12 lines,
	// plus 4 for the scroll indicators
	available := height - 16
	if available < 3 {
		available = 3
	}
	n := available / searchLinesPerResult
	if n < 1 {
		n = 1
	}
	return n
}

func renderGlobalSearch(kb *config.KeyBindingsConfig, searchInput textinput.Model, results []storage.ConversationMessageMatch, selectedIdx, scrollIdx, width, height int) string {
	modalWidth := width - 4
	if modalWidth > 100 {
		modalWidth = 100
	}

	modalStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(dimColor).
		Padding(1, 2)

	title := TitleStyle.Render("Search All Conversations")
	searchView := searchInput.View()

	resultsView := ""
	if len(results) == 0 {
		if searchInput.Value() == "" {
			resultsView = DimStyle.Render("Type to search across all conversations...")
		} else {
			resultsView = DimStyle.Render("No matches found")
		}
	} else {
		startIdx := scrollIdx
		endIdx := scrollIdx + maxVisibleSearchResults(height)
		if endIdx > len(results) {
			endIdx = len(results)
		}

		resultsView = fmt.Sprintf("Found %d matches:\n\n", len(results))

		if startIdx > 0 {
			resultsView += DimStyle.Render(fmt.Sprintf("↑ %d more above\n\n", startIdx))
		}

		for i := startIdx; i < endIdx; i++ {
			match := results[i]

			author := "you"
			titleStyle := UserStyle
			if !match.IsUser {
				author = "agent"
				titleStyle = AgentStyle
			}

			matchText := fmt.Sprintf("%s [%s] %s\n  %s",
				titleStyle.Render(truncate(match.ConversationTitle, modalWidth-30)),
				match.Timestamp.Format("Jan 2, 3:04 PM"),
				DimStyle.Render(author),
				match.Preview,
			)

			if i == selectedIdx {
				matchText = SelectedStyle.Render("> " + matchText)
			} else {
				matchText = "  " + matchText
			}

			resultsView += matchText + "\n\n"
		}

		if endIdx < len(results) {
			resultsView += DimStyle.Render(fmt.Sprintf("↓ %d more below", len(results)-endIdx))
		}
	}

	footer := FormatFooter("Type", "to search", kb.PrimaryDisplay()+"+J/K", "Navigate", "Enter", "Open", "Esc", "Close")

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		"",
		searchView,
		"",
		resultsView,
		"",
		footer,
	)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		modalStyle.Width(modalWidth).Render(content))
}
