package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"agentchat/config"
)

func renderAboutModal(cfg *config.Config, kb *config.KeyBindingsConfig, version string, width, height int) string {
	var sb strings.Builder

	sb.WriteString(lipgloss.NewStyle().Foreground(successColor).Bold(true).Render("agentchat"))
	sb.WriteString("\n")
	sb.WriteString(DimStyle.Render("Terminal chat client for a remote agent"))
	sb.WriteString("\n\n")

	labelStyle := lipgloss.NewStyle().
		Foreground(accentColor).
		Bold(true)

	rows := [][2]string{{"Version", version}}
	if cfg != nil {
		debug := "off"
		if cfg.Debug {
			debug = "on"
		}
		rows = append(rows,
			[2]string{"Agent", cfg.BaseURL},
			[2]string{"Timeout", cfg.Timeout.String()},
			[2]string{"Config", cfg.ConfigPath},
			[2]string{"Debug log", debug},
		)
	}

	for _, row := range rows {
		sb.WriteString(labelStyle.Render(row[0] + ": "))
		sb.WriteString(DimStyle.Render(row[1]))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(DimStyle.Render(fmt.Sprintf("Press Esc or %s to close", kb.DisplayActionKey(config.ActionAbout))))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(1, 2)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, boxStyle.Render(sb.String()))
}
