package ui

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	markdown "github.com/MichaelMure/go-term-markdown"
	tea "github.com/charmbracelet/bubbletea"
	gomarkdown "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/parser"
	"github.com/sirupsen/logrus"

	"agentchat/config"
)

const (
	emptyConversationText = "No messages yet. Start chatting!"
	noConversationFormat  = "No conversation selected. Press %s for a new chat or just start typing."
	typingText            = "Thinking..."
)

var (
	inlineCodeRegex = regexp.MustCompile(`(?s)\x1b\[44;3m(.*?)\x1b\[0m`)
	mdLinkRegex     = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^\)]+)\)`)
	urlRegex        = regexp.MustCompile(`(https?://[^\s]+)`)
)

// updateViewportContent rebuilds the chat transcript for the current
// conversation.
func (a AppView) noConversationText() string {
	return fmt.Sprintf(noConversationFormat, a.keys.DisplayActionKey(config.ActionNewChat))
}

func (a *AppView) updateViewportContent(gotoBottom bool) {
	conv, ok := a.dataModel.Store.Current()
	if !ok {
		a.viewport.SetContent(DimStyle.Render(a.noConversationText()))
		return
	}

	// the single in-flight exchange may belong to another conversation
	pending := a.dataModel.PendingConversationID == conv.ID
	if len(conv.Messages) == 0 && !pending {
		a.viewport.SetContent(DimStyle.Render(emptyConversationText))
		return
	}

	var content strings.Builder
	a.messageLines = make(map[string]int, len(conv.Messages))

	for _, msg := range conv.Messages {
		a.messageLines[msg.ID] = strings.Count(content.String(), "\n")

		highlightPrefix := ""
		if msg.ID == a.highlightMessageID {
			highlightPrefix = HighlightStyle.Render(">>> ")
		}

		timestamp := DimStyle.Render(msg.Timestamp.Format("[15:04]"))

		if msg.IsUser {
			content.WriteString(formatUserMessage(highlightPrefix, timestamp, UserStyle.Render("You"), msg.Content))
			continue
		}

		body := msg.Content
		if r, ok := a.rendered[msg.ID]; ok {
			body = r
		}
		content.WriteString(fmt.Sprintf("%s%s %s\n%s\n\n", highlightPrefix, timestamp, AgentStyle.Render("Agent"), body))
	}

	if pending {
		timestamp := DimStyle.Render(time.Now().Format("[15:04]"))
		content.WriteString(fmt.Sprintf("%s %s\n%s %s\n\n", timestamp, AgentStyle.Render("Agent"), a.loadingSpinner.View(), DimStyle.Render(typingText)))
	}

	a.viewport.SetContent(content.String())
	if gotoBottom {
		a.viewport.GotoBottom()
	}
}

func formatUserMessage(highlightPrefix, timestamp, role, content string) string {
	bar := UserStyle.Render("┃")

	var result strings.Builder
	result.WriteString(fmt.Sprintf("%s%s %s %s\n", highlightPrefix, bar, timestamp, role))

	for _, line := range strings.Split(content, "\n") {
		result.WriteString(fmt.Sprintf("%s %s\n", bar, line))
	}

	result.WriteString("\n")

	return result.String()
}

// renderPendingMarkdown starts a render for every agent reply in the current
// conversation that has no cached rendering at the current width.
func (a *AppView) renderPendingMarkdown() tea.Cmd {
	if !a.renderMarkdown || !a.ready {
		return nil
	}

	width := a.markdownWidth()
	if width != a.renderedWidth {
		a.rendered = make(map[string]string)
		a.renderedWidth = width
	}

	conv, ok := a.dataModel.Store.Current()
	if !ok {
		return nil
	}

	var cmds []tea.Cmd
	for _, msg := range conv.Messages {
		if msg.IsUser {
			continue
		}
		if _, done := a.rendered[msg.ID]; done {
			continue
		}
		cmds = append(cmds, renderMarkdownAsync(msg.ID, msg.Content, width))
	}
	return tea.Batch(cmds...)
}

func (a AppView) markdownWidth() int {
	w := a.chatWidth() - 4
	if w < 10 {
		w = 10
	}
	return w
}

func renderMarkdownAsync(messageID, content string, width int) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		rendered := renderMarkdown(content, width)

		if config.DebugLog != nil {
			config.DebugLog.WithFields(logrus.Fields{
				"message": messageID,
				"chars":   len(content),
				"elapsed": time.Since(start),
			}).Debug("[UI] markdown rendered")
		}

		return markdownRenderedMsg{
			MessageID: messageID,
			Width:     width,
			Rendered:  rendered,
		}
	}
}

// renderMarkdown renders content for a terminal of the given width with
// autolinking off, so URLs stay plain text the terminal can detect.
func renderMarkdown(content string, width int) string {
	content = preprocessLinks(content)

	ext := markdown.Extensions() &^ parser.Autolink
	p := parser.NewWithExtensions(ext)
	r := markdown.NewRenderer(width, 0)
	doc := p.Parse([]byte(content))
	rendered := gomarkdown.Render(doc, r)

	return strings.TrimRight(postProcessMarkdown(string(rendered), width), "\n")
}

func postProcessMarkdown(rendered string, width int) string {
	rendered = fixInlineCode(rendered)
	rendered = fixMarkdownLinks(rendered)
	return frameCodeBlocks(rendered, width)
}

// preprocessLinks reduces [text](url) to the bare url.
func preprocessLinks(content string) string {
	return mdLinkRegex.ReplaceAllString(content, "$2")
}

// fixInlineCode swaps the renderer's blue background inline code for red text.
func fixInlineCode(s string) string {
	return inlineCodeRegex.ReplaceAllString(s, "\x1b[31m$1\x1b[0m")
}

func fixMarkdownLinks(s string) string {
	redColor := "\x1b[31m"
	reset := "\x1b[0m"

	lines := strings.Split(s, "\n")

	for i, line := range lines {
		// code block lines carry the ┃ gutter
		if !strings.Contains(line, "┃") {
			lines[i] = urlRegex.ReplaceAllString(line, redColor+"$1"+reset)
		}
	}

	return strings.Join(lines, "\n")
}

// frameCodeBlocks replaces the renderer's ┃ gutter on code blocks with a
// horizontal frame labelled [code].
func frameCodeBlocks(s string, width int) string {
	lines := strings.Split(s, "\n")
	var result []string
	var codeBlockLines []string
	inCodeBlock := false

	darkGray := "\x1b[90m"
	reset := "\x1b[0m"

	ruleWidth := width - 4
	if ruleWidth < 8 {
		ruleWidth = 8
	}

	closeBlock := func() {
		result = append(result, codeBlockLines...)
		result = append(result, "")
		result = append(result, darkGray+strings.Repeat("━", ruleWidth)+reset)
		result = append(result, "")
	}

	for _, line := range lines {
		if strings.Contains(line, "┃") {
			if !inCodeBlock {
				inCodeBlock = true
				codeBlockLines = []string{}
				result = append(result, "")

				label := "[code]"
				leftLen := (ruleWidth - len(label)) / 2
				rightLen := ruleWidth - len(label) - leftLen
				border := darkGray + strings.Repeat("━", leftLen) + reset + label + darkGray + strings.Repeat("━", rightLen) + reset

				result = append(result, border, "")
			}

			codeBlockLines = append(codeBlockLines, stripCodeBlockPrefix(line))
			continue
		}

		if inCodeBlock {
			closeBlock()
			codeBlockLines = nil
			inCodeBlock = false
		}
		result = append(result, line)
	}

	if inCodeBlock && len(codeBlockLines) > 0 {
		closeBlock()
	}

	return strings.Join(result, "\n")
}

func stripCodeBlockPrefix(line string) string {
	idx := strings.Index(line, "┃")
	if idx < 0 {
		return line
	}
	after := idx + len("┃")
	if after < len(line) && line[after] == ' ' {
		after++
	}
	if after < len(line) {
		return line[after:]
	}
	return ""
}
