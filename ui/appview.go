package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"agentchat/config"
	appmodel "agentchat/model"
	"agentchat/storage"
)

const (
	// title line + banner line + textarea + status bar
	chromeHeight  = 6
	textareaLines = 3
	minChatWidth  = 20
)

type AppView struct {
	// Reference to core data model
	dataModel *appmodel.Model
	cfg       *config.Config
	keys      *config.KeyBindingsConfig

	sidebarWidth   int
	renderMarkdown bool

	// UI Components
	viewport       viewport.Model
	textarea       textarea.Model
	loadingSpinner spinner.Model

	// Window state
	width  int
	height int
	ready  bool

	focus     focusArea
	showHelp  bool
	showAbout bool

	sidebar sidebarState

	showSearch        bool
	searchInput       textinput.Model
	searchResults     []storage.ConversationMessageMatch
	selectedSearchIdx int
	searchScrollIdx   int

	// Message highlighted after jumping to it from search
	highlightMessageID string
	// Transcript line of each message in the current viewport content
	messageLines map[string]int

	// Rendered agent replies keyed by message id, valid for renderedWidth
	rendered      map[string]string
	renderedWidth int

	// Transient status line text such as "Copied"
	notice    string
	noticeSeq int

	// now is swapped in tests
	now func() time.Time
}

func NewAppView(cfg *config.Config, dataModel *appmodel.Model) AppView {
	sidebarWidth := config.DefaultSidebarWidth
	renderMarkdown := true
	keys := config.DefaultKeybindings()
	if cfg != nil {
		sidebarWidth = cfg.SidebarWidth
		renderMarkdown = cfg.RenderMarkdown
		keys = cfg.Keybindings
	}

	ta := textarea.New()
	ta.Placeholder = "Type your message here..."
	ta.Focus()
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.SetHeight(textareaLines)
	ta.SetWidth(80)

	// Enter alone is handled as send
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys(keys.GetActionKey(config.ActionNewLine)))

	ta.SetPromptFunc(2, func(lineIdx int) string {
		if lineIdx == 0 {
			return "> "
		}
		return "| "
	})

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = AgentStyle

	searchInput := textinput.New()
	searchInput.Prompt = "Search all: "
	searchInput.CharLimit = 100

	return AppView{
		dataModel:      dataModel,
		cfg:            cfg,
		keys:           &keys,
		sidebarWidth:   sidebarWidth,
		renderMarkdown: renderMarkdown,
		viewport:       viewport.New(0, 0),
		textarea:       ta,
		loadingSpinner: sp,
		sidebar:        newSidebarState(),
		searchInput:    searchInput,
		rendered:       make(map[string]string),
		now:            time.Now,
	}
}

func (a AppView) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		a.loadingSpinner.Tick,
		a.dataModel.Initialize(),
	)
}

func (a AppView) View() string {
	if !a.ready {
		return "Starting agentchat..."
	}

	// Modal layers, top first
	if a.showHelp {
		return renderHelpModal(a.keys, a.width, a.height)
	}

	if a.showAbout {
		return renderAboutModal(a.cfg, a.keys, a.dataModel.Version, a.width, a.height)
	}

	if a.sidebar.confirmDelete != nil {
		warningText := lipgloss.NewStyle().Foreground(dangerColor).Render("This action cannot be undone.")
		return RenderConfirmationModal(ConfirmationState{
			Title:        "⚠ Delete Conversation",
			Message:      fmt.Sprintf("Are you sure you want to delete:\n\n\"%s\"\n\n%s", a.sidebar.confirmDelete.Title, warningText),
			ConfirmLabel: "Delete",
		}, a.width, a.height)
	}

	if a.showSearch {
		return renderGlobalSearch(a.keys, a.searchInput, a.searchResults, a.selectedSearchIdx, a.searchScrollIdx, a.width, a.height)
	}

	if a.dataModel.Initializing {
		return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center,
			fmt.Sprintf("%s Initializing chat...", a.loadingSpinner.View()))
	}

	bodyHeight := a.height - 1
	sidebar := renderSidebar(
		a.visibleConversations(),
		a.sidebar,
		a.dataModel.Store.Len(),
		a.dataModel.Store.CurrentID(),
		a.focus == focusSidebar,
		a.now(),
		a.currentSidebarWidth(),
		bodyHeight,
	)

	chat := lipgloss.JoinVertical(
		lipgloss.Left,
		a.renderTitle(),
		a.renderBanner(),
		a.viewport.View(),
		a.textarea.View(),
	)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, sidebar, chat),
		a.renderStatusBar(),
	)
}

func (a AppView) renderTitle() string {
	appText := AgentStyle.Render("agentchat")

	title := storage.DefaultTitle
	if conv, ok := a.dataModel.Store.Current(); ok {
		title = conv.Title
	}

	// " - " separator plus app name
	room := a.chatWidth() - lipgloss.Width("agentchat") - 3
	titleText := UserStyle.Render(" - " + truncate(title, room))

	if a.dataModel.Loading() {
		return appText + titleText + DimStyle.Render(" | ") + a.loadingSpinner.View()
	}
	return appText + titleText
}

func (a AppView) renderBanner() string {
	width := a.chatWidth()
	if a.dataModel.Error != "" {
		hint := fmt.Sprintf(" (%s to dismiss)", a.keys.DisplayActionKey(config.ActionDismissError))
		return ErrorStyle.Render("✗ "+truncate(a.dataModel.Error, width-lipgloss.Width(hint)-2)) + DimStyle.Render(hint)
	}
	if a.notice != "" {
		return DimStyle.Render(truncate(a.notice, width))
	}
	return ""
}

func (a AppView) renderStatusBar() string {
	if a.focus == focusSidebar {
		var footer string
		switch {
		case a.sidebar.renameMode:
			footer = FormatFooter(a.keys.DisplayActionKey(config.ActionClearInput), "Clear", "Enter", "Save", "Esc", "Cancel")
		case a.sidebar.filterMode:
			footer = FormatFooter("Type", "to filter", a.formatKeyDisplay("J/K"), "Navigate", "Enter", "Open", "Esc", "Cancel")
		default:
			footer = FormatFooter("j/k", "Navigate", "Enter", "Open", "r", "Rename", "d", "Delete", "/", "Filter", "Tab", "Chat")
		}
		return StatusStyle.Render(footer)
	}

	// main chat uses user green
	descStyle := lipgloss.NewStyle().Foreground(successColor).Bold(true)
	kb := a.keys
	statusBar := fmt.Sprintf("%s %s  %s %s  Tab %s  %s %s  %s %s  Enter %s  %s %s  %s %s",
		kb.DisplayActionKey(config.ActionQuit), descStyle.Render("Quit"),
		kb.DisplayActionKey(config.ActionNewChat), descStyle.Render("New chat"),
		descStyle.Render("Chats"),
		kb.DisplayActionKey(config.ActionSearchAll), descStyle.Render("Search"),
		kb.DisplayActionKey(config.ActionNewLine), descStyle.Render("New Line"),
		descStyle.Render("Send"),
		kb.DisplayActionKey(config.ActionYankLastReply), descStyle.Render("Copy"),
		kb.DisplayActionKey(config.ActionHelp), descStyle.Render("Help"),
	)
	return StatusStyle.Render(statusBar)
}

// formatKeyDisplay prefixes a key hint with the primary modifier: "J/K" -> "Alt+J/K".
func (a AppView) formatKeyDisplay(key string) string {
	return a.keys.PrimaryDisplay() + "+" + key
}

// currentSidebarWidth caps the configured width so the chat column keeps
// at least minChatWidth cells.
func (a AppView) currentSidebarWidth() int {
	w := a.sidebarWidth
	if max := a.width - minChatWidth; w > max {
		w = max
	}
	if w < 0 {
		w = 0
	}
	return w
}

func (a AppView) chatWidth() int {
	w := a.width - a.currentSidebarWidth()
	if w < 1 {
		w = 1
	}
	return w
}

// layout sizes the viewport and textarea to the current window.
func (a *AppView) layout() {
	chatWidth := a.chatWidth()
	viewportHeight := a.height - chromeHeight
	if viewportHeight < 1 {
		viewportHeight = 1
	}
	a.viewport.Width = chatWidth
	a.viewport.Height = viewportHeight
	a.textarea.SetWidth(chatWidth)
}

func (a *AppView) focusChat() {
	a.focus = focusInput
	a.textarea.Focus()
}

func (a *AppView) focusSidebarPane() {
	a.focus = focusSidebar
	a.textarea.Blur()
	a.syncSidebarToCurrent()
}

func (a *AppView) closeAllModals() {
	a.showHelp = false
	a.showAbout = false
	a.showSearch = false
	a.sidebar.confirmDelete = nil

	if a.searchInput.Focused() {
		a.searchInput.Blur()
	}
	if a.sidebar.renameMode {
		a.endRename()
	}
	if a.sidebar.filterMode {
		a.closeSidebarFilter()
	}
}
