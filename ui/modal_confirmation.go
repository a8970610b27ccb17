package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type ConfirmationState struct {
	Title   string
	Message string
	// ConfirmLabel describes the y key, "Yes" when empty
	ConfirmLabel string
}

func RenderConfirmationModal(state ConfirmationState, width, height int) string {
	modalWidth := 60
	if width < modalWidth+10 {
		modalWidth = width - 10
	}

	titleSection := lipgloss.NewStyle().
		Bold(true).
		Foreground(warningColor).
		Align(lipgloss.Center).
		Width(modalWidth).
		Render(state.Title)

	messageStyle := lipgloss.NewStyle().
		Width(modalWidth).
		Align(lipgloss.Center)

	blank := strings.Repeat(" ", modalWidth)
	messageLines := []string{blank}
	for _, line := range strings.Split(state.Message, "\n") {
		messageLines = append(messageLines, messageStyle.Render(line))
	}
	messageLines = append(messageLines, blank)

	divider := lipgloss.NewStyle().
		Width(modalWidth).
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor)

	messageSection := divider.Render(strings.Join(messageLines, "\n"))

	confirm := state.ConfirmLabel
	if confirm == "" {
		confirm = "Yes"
	}
	footerSection := divider.
		Foreground(dimColor).
		Align(lipgloss.Center).
		Render(FormatFooter("y", confirm, "n", "No"))

	content := strings.Join([]string{titleSection, messageSection, footerSection}, "\n")

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
