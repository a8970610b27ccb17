package ui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentchat/agent/testutil"
	"agentchat/config"
	appmodel "agentchat/model"
	"agentchat/storage"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestAppView(t *testing.T) (AppView, *testutil.MockAgent) {
	t.Helper()
	mock := testutil.NewMockAgent()
	dataModel := appmodel.NewModel(mock, storage.NewConversationStore(), time.Second, "test")
	cfg := &config.Config{
		BaseURL:      config.DefaultBaseURL,
		Timeout:      config.DefaultTimeout,
		SidebarWidth: 28,
	}

	a := NewAppView(cfg, dataModel)
	a.now = func() time.Time { return testNow }
	a, _ = update(t, a, tea.WindowSizeMsg{Width: 120, Height: 40})
	return a, mock
}

// startedAppView returns a view whose startup conversation exists.
func startedAppView(t *testing.T) (AppView, *testutil.MockAgent) {
	t.Helper()
	a, mock := newTestAppView(t)
	a = drain(t, a, a.dataModel.Initialize())
	require.False(t, a.dataModel.Initializing)
	return a, mock
}

func update(t *testing.T, a AppView, msg tea.Msg) (AppView, tea.Cmd) {
	t.Helper()
	m, cmd := a.Update(msg)
	view, ok := m.(AppView)
	require.True(t, ok)
	return view, cmd
}

// drain runs cmd and feeds back every network and render result, the way
// the bubbletea runtime would. Timers and blinks are skipped.
func drain(t *testing.T, a AppView, cmd tea.Cmd) AppView {
	t.Helper()
	if cmd == nil {
		return a
	}

	switch msg := execCmd(cmd).(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			a = drain(t, a, c)
		}
	case appmodel.SessionCreatedMsg, appmodel.QueryResultMsg, markdownRenderedMsg:
		var next tea.Cmd
		a, next = update(t, a, msg)
		a = drain(t, a, next)
	}
	return a
}

func execCmd(cmd tea.Cmd) tea.Msg {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(100 * time.Millisecond):
		return nil
	}
}

func press(t *testing.T, a AppView, key tea.KeyMsg) AppView {
	t.Helper()
	a, cmd := update(t, a, key)
	return drain(t, a, cmd)
}

func typeText(t *testing.T, a AppView, s string) AppView {
	t.Helper()
	for _, r := range s {
		a, _ = update(t, a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return a
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func altKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}, Alt: true}
}

var (
	enterKey = tea.KeyMsg{Type: tea.KeyEnter}
	tabKey   = tea.KeyMsg{Type: tea.KeyTab}
	escKey   = tea.KeyMsg{Type: tea.KeyEscape}
)

func sendMessage(t *testing.T, a AppView, text string) AppView {
	t.Helper()
	a.textarea.SetValue(text)
	return press(t, a, enterKey)
}

func TestInitializingScreen(t *testing.T) {
	a, _ := newTestAppView(t)
	a.dataModel.Initialize()

	assert.Contains(t, a.View(), "Initializing chat...")

	a, _ = update(t, a, enterKey)
	assert.Zero(t, a.dataModel.Store.Len())
}

func TestStartupShowsEmptyConversation(t *testing.T) {
	a, _ := startedAppView(t)

	assert.Equal(t, 1, a.dataModel.Store.Len())
	view := a.View()
	assert.Contains(t, view, storage.DefaultTitle)
	assert.Contains(t, view, emptyConversationText)
	assert.Contains(t, view, "Today")
}

func TestStartupFailureShowsBanner(t *testing.T) {
	a, mock := newTestAppView(t)
	mock.CreateSessionFunc = func(ctx context.Context) (string, error) {
		return "", errors.New("connection refused")
	}

	a = drain(t, a, a.dataModel.Initialize())

	view := a.View()
	assert.Contains(t, view, appmodel.ErrTextInitialize)
	assert.Contains(t, view, a.noConversationText())
	assert.NotContains(t, view, "connection refused")
}

func TestSendMessageFlow(t *testing.T) {
	a, mock := startedAppView(t)

	a = sendMessage(t, a, "Hello world")

	conv, ok := a.dataModel.Store.Current()
	require.True(t, ok)
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, "Hello world", conv.Title)
	assert.Empty(t, a.textarea.Value())
	assert.False(t, a.dataModel.Loading())
	assert.Len(t, mock.Queries(), 1)

	view := a.View()
	assert.Contains(t, view, "echo: Hello world")
	assert.Contains(t, view, "Hello world")
}

func TestSendShowsTypingIndicator(t *testing.T) {
	a, _ := startedAppView(t)
	a.textarea.SetValue("question")

	// the query command is never run, so the exchange stays in flight
	a, cmd := update(t, a, enterKey)
	require.NotNil(t, cmd)

	assert.True(t, a.dataModel.Loading())
	assert.Contains(t, a.viewport.View(), typingText)
}

func TestEnterIgnoredWhileLoading(t *testing.T) {
	a, mock := startedAppView(t)
	a.textarea.SetValue("first")
	a, _ = update(t, a, enterKey)
	require.True(t, a.dataModel.Loading())

	a.textarea.SetValue("second")
	a, _ = update(t, a, enterKey)

	assert.Equal(t, "second", a.textarea.Value(), "text stays in the input")
	assert.Equal(t, "Waiting for the agent...", a.notice)
	conv, _ := a.dataModel.Store.Current()
	assert.Len(t, conv.Messages, 1)
	assert.Empty(t, mock.Queries())
}

func TestBlankInputNotSent(t *testing.T) {
	a, mock := startedAppView(t)
	a.textarea.SetValue("   ")
	a = press(t, a, enterKey)

	assert.False(t, a.dataModel.Loading())
	assert.Empty(t, mock.Queries())
}

func TestAltEnterInsertsNewline(t *testing.T) {
	a, mock := startedAppView(t)
	a.textarea.SetValue("line one")

	a, _ = update(t, a, tea.KeyMsg{Type: tea.KeyEnter, Alt: true})

	assert.Equal(t, "line one\n", a.textarea.Value())
	assert.Empty(t, mock.Queries())
}

func TestQueryFailureBannerAndDismiss(t *testing.T) {
	a, mock := startedAppView(t)
	mock.SendQueryFunc = func(ctx context.Context, query, sessionID string) (string, error) {
		return "", errors.New("boom")
	}

	a = sendMessage(t, a, "will fail")
	assert.Contains(t, a.View(), appmodel.ErrTextSendMessage)
	assert.Contains(t, a.View(), "Alt+X to dismiss")

	a = press(t, a, altKey('x'))
	assert.NotContains(t, a.View(), appmodel.ErrTextSendMessage)

	conv, _ := a.dataModel.Store.Current()
	require.Len(t, conv.Messages, 1)
	assert.True(t, conv.Messages[0].IsUser)
}

func TestNewChatAndSidebarSelect(t *testing.T) {
	a, _ := startedAppView(t)
	a = sendMessage(t, a, "first topic")
	first := a.dataModel.Store.CurrentID()

	a = press(t, a, altKey('n'))
	require.Equal(t, 2, a.dataModel.Store.Len())
	assert.NotEqual(t, first, a.dataModel.Store.CurrentID())
	assert.Contains(t, a.View(), emptyConversationText)

	a = press(t, a, tabKey)
	require.Equal(t, focusSidebar, a.focus)
	assert.Equal(t, 0, a.sidebar.selectedIdx, "cursor starts on the current conversation")

	a = press(t, a, runeKey('j'))
	a = press(t, a, enterKey)

	assert.Equal(t, first, a.dataModel.Store.CurrentID())
	assert.Equal(t, focusInput, a.focus)
	assert.Contains(t, a.View(), "echo: first topic")
}

func TestSidebarRename(t *testing.T) {
	a, _ := startedAppView(t)
	id := a.dataModel.Store.CurrentID()

	a = press(t, a, tabKey)
	a = press(t, a, runeKey('r'))
	require.True(t, a.sidebar.renameMode)
	assert.Equal(t, storage.DefaultTitle, a.sidebar.renameInput.Value())

	a = press(t, a, altKey('u'))
	a = typeText(t, a, "Trip planning")
	a = press(t, a, enterKey)

	assert.False(t, a.sidebar.renameMode)
	conv, _ := a.dataModel.Store.Get(id)
	assert.Equal(t, "Trip planning", conv.Title)
}

func TestSidebarRenameBlankIgnored(t *testing.T) {
	a, _ := startedAppView(t)
	id := a.dataModel.Store.CurrentID()

	a = press(t, a, tabKey)
	a = press(t, a, runeKey('r'))
	a = press(t, a, altKey('u'))
	a = press(t, a, enterKey)

	conv, _ := a.dataModel.Store.Get(id)
	assert.Equal(t, storage.DefaultTitle, conv.Title)
}

func TestSidebarDeleteWithConfirmation(t *testing.T) {
	a, _ := startedAppView(t)
	a = press(t, a, altKey('n'))
	require.Equal(t, 2, a.dataModel.Store.Len())

	a = press(t, a, tabKey)
	a = press(t, a, runeKey('d'))
	assert.Contains(t, a.View(), "Delete Conversation")

	a = press(t, a, runeKey('n'))
	assert.Equal(t, 2, a.dataModel.Store.Len())

	a = press(t, a, runeKey('d'))
	a = press(t, a, runeKey('y'))
	assert.Equal(t, 1, a.dataModel.Store.Len())
	assert.NotEmpty(t, a.dataModel.Store.CurrentID())
}

func TestDeleteLastThenTypeCreatesConversation(t *testing.T) {
	a, mock := startedAppView(t)

	a = press(t, a, tabKey)
	a = press(t, a, runeKey('d'))
	a = press(t, a, runeKey('y'))
	require.Zero(t, a.dataModel.Store.Len())
	assert.Contains(t, a.View(), a.noConversationText())

	a = press(t, a, tabKey)
	a = sendMessage(t, a, "start over")

	require.Equal(t, 1, a.dataModel.Store.Len())
	conv, _ := a.dataModel.Store.Current()
	assert.Equal(t, "start over", conv.Title)
	assert.Len(t, conv.Messages, 2)
	assert.Equal(t, 2, mock.SessionCalls())
}

func TestSidebarFuzzyFilter(t *testing.T) {
	a, _ := startedAppView(t)
	a = sendMessage(t, a, "deploy the service")
	a = press(t, a, altKey('n'))
	a = sendMessage(t, a, "lunch plans")
	a = press(t, a, altKey('n'))

	a = press(t, a, tabKey)
	a = press(t, a, runeKey('/'))
	a = typeText(t, a, "dply")

	visible := a.visibleConversations()
	require.Len(t, visible, 1)
	assert.Equal(t, "deploy the service", visible[0].Title)

	a = press(t, a, enterKey)
	conv, _ := a.dataModel.Store.Current()
	assert.Equal(t, "deploy the service", conv.Title)
	assert.False(t, a.sidebar.filterMode)
}

func TestSearchJumpsToConversation(t *testing.T) {
	a, _ := startedAppView(t)
	a = sendMessage(t, a, "where is the needle")
	target := a.dataModel.Store.CurrentID()
	a = press(t, a, altKey('n'))

	a = press(t, a, altKey('f'))
	require.True(t, a.showSearch)
	a = typeText(t, a, "needle")
	require.Len(t, a.searchResults, 1)
	assert.Contains(t, a.View(), "Found 1 matches")

	a = press(t, a, enterKey)
	assert.False(t, a.showSearch)
	assert.Equal(t, target, a.dataModel.Store.CurrentID())
	assert.Equal(t, a.searchResults[0].MessageID, a.highlightMessageID)
}

func TestReplyRenderedAsMarkdown(t *testing.T) {
	a, mock := startedAppView(t)
	a.renderMarkdown = true
	mock.SendQueryFunc = func(ctx context.Context, query, sessionID string) (string, error) {
		return "# Heading\n\nsome **bold** text", nil
	}

	a = sendMessage(t, a, "format please")

	conv, _ := a.dataModel.Store.Current()
	require.Len(t, conv.Messages, 2)
	rendered, ok := a.rendered[conv.Messages[1].ID]
	require.True(t, ok)
	assert.NotContains(t, rendered, "**bold**")
}

func TestStaleMarkdownDiscarded(t *testing.T) {
	a, _ := startedAppView(t)
	a.renderedWidth = 50

	a, _ = update(t, a, markdownRenderedMsg{MessageID: "m", Width: 40, Rendered: "x"})
	_, ok := a.rendered["m"]
	assert.False(t, ok)
}

func TestHelpAndAboutToggle(t *testing.T) {
	a, _ := startedAppView(t)

	a = press(t, a, altKey('h'))
	assert.Contains(t, a.View(), "Keyboard Shortcuts")
	a = press(t, a, escKey)
	assert.False(t, a.showHelp)

	a = press(t, a, altKey('a'))
	view := a.View()
	assert.Contains(t, view, config.DefaultBaseURL)
	assert.Contains(t, view, "test")
	a = press(t, a, altKey('a'))
	assert.False(t, a.showAbout)
}

func TestQuitKeys(t *testing.T) {
	a, _ := startedAppView(t)

	for _, key := range []tea.KeyMsg{{Type: tea.KeyCtrlC}, altKey('q')} {
		_, cmd := update(t, a, key)
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
	}
}

func TestCustomModifierRoutesShortcuts(t *testing.T) {
	mock := testutil.NewMockAgent()
	dataModel := appmodel.NewModel(mock, storage.NewConversationStore(), time.Second, "test")
	cfg := &config.Config{
		SidebarWidth: 28,
		Keybindings:  config.KeyBindingsConfig{Primary: "ctrl", Secondary: "ctrl+shift"},
	}

	a := NewAppView(cfg, dataModel)
	a.now = func() time.Time { return testNow }
	a, _ = update(t, a, tea.WindowSizeMsg{Width: 120, Height: 40})
	a = drain(t, a, a.dataModel.Initialize())
	require.Equal(t, 1, a.dataModel.Store.Len())

	a = press(t, a, altKey('n'))
	assert.Equal(t, 1, a.dataModel.Store.Len(), "alt is not the modifier")

	a = press(t, a, tea.KeyMsg{Type: tea.KeyCtrlN})
	assert.Equal(t, 2, a.dataModel.Store.Len())

	view := a.View()
	assert.Contains(t, view, "Ctrl+Q")
	assert.NotContains(t, view, "Alt+Q")

	a = press(t, a, tea.KeyMsg{Type: tea.KeyCtrlH})
	require.True(t, a.showHelp)
	assert.Contains(t, a.View(), "Ctrl+N")
	a = press(t, a, escKey)

	_, cmd := update(t, a, tea.KeyMsg{Type: tea.KeyCtrlQ})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
