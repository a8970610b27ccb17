package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"agentchat/config"
)

func renderHelpModal(kb *config.KeyBindingsConfig, width, height int) string {
	green := lipgloss.NewStyle().
		Bold(true).
		Foreground(successColor)

	title := green.Render("agentchat - Keyboard Shortcuts")

	blue := lipgloss.NewStyle().Foreground(accentColor)

	row := func(keys, desc string) string {
		return fmt.Sprintf("• %-13s %s", keys, desc)
	}

	globalActions := lipgloss.JoinVertical(
		lipgloss.Left,
		blue.Render("## Global Actions"),
		row(kb.DisplayActionKey(config.ActionNewChat), "New chat"),
		row("Tab", "Toggle chat list"),
		row(kb.DisplayActionKey(config.ActionSearchAll), "Search all chats"),
		row(kb.DisplayActionKey(config.ActionDismissError), "Dismiss error"),
		row(kb.DisplayActionKey(config.ActionAbout), "About"),
		row(kb.DisplayActionKey(config.ActionHelp), "Toggle this help"),
		row(kb.DisplayActionKey(config.ActionQuit), "Quit"),
	)

	chatActions := lipgloss.JoinVertical(
		lipgloss.Left,
		blue.Render("## Chat"),
		row("Enter", "Send message"),
		row(kb.DisplayActionKey(config.ActionNewLine), "New line"),
		row(kb.DisplayActionKey(config.ActionYankLastReply), "Copy last reply"),
		row("PgUp/PgDn", "Scroll page"),
		row(kb.DisplayActionKey(config.ActionScrollUp), "Scroll up"),
		row(kb.DisplayActionKey(config.ActionScrollDown), "Scroll down"),
		row(kb.DisplayActionKey(config.ActionScrollToTop), "Jump to top"),
		row(kb.DisplayActionKey(config.ActionScrollToBottom), "Jump to bottom"),
	)

	listActions := lipgloss.JoinVertical(
		lipgloss.Left,
		blue.Render("## Chat List"),
		row("j/k", "Navigate"),
		row("Enter", "Open chat"),
		row("r", "Rename"),
		row("d", "Delete"),
		row("/", "Filter"),
	)

	column1 := lipgloss.JoinVertical(
		lipgloss.Left,
		globalActions,
		"",
		listActions,
	)

	columnStyle := lipgloss.NewStyle().Width(38).PaddingLeft(4)

	twoColumns := lipgloss.JoinHorizontal(
		lipgloss.Top,
		columnStyle.Render(column1),
		"  ",
		columnStyle.Render(chatActions),
	)

	footer := lipgloss.NewStyle().
		Foreground(dimColor).
		Render(fmt.Sprintf("Press %s or Esc to close this help", kb.DisplayActionKey(config.ActionHelp)))

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		title,
		"",
		twoColumns,
		"",
		footer,
	)

	helpBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(1, 2).
		Width(86)

	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		helpBox.Render(content),
	)
}
