package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("AGENTCHAT_BASE_URL", "")
	t.Setenv("AGENTCHAT_TIMEOUT", "")
	t.Setenv("AGENTCHAT_CONFIG_DIR", "")
	t.Setenv("AGENTCHAT_DEBUG", "")
}

func TestLoadCreatesDefaultConfig(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(Overrides{})
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, DefaultSidebarWidth, cfg.SidebarWidth)
	assert.True(t, cfg.RenderMarkdown)
	assert.Equal(t, GetConfigFilePath(), cfg.ConfigPath)
	assert.FileExists(t, cfg.ConfigPath)

	info, err := os.Stat(cfg.ConfigPath)
	require.NoError(t, err)
	if os.PathSeparator == '/' {
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}
}

func TestLoadReadsFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[agent]
base_url = "http://agent.internal:9000"
timeout_seconds = 30

[ui]
sidebar_width = 40
render_markdown = false
`), 0600))

	cfg, err := Load(Overrides{ConfigPath: path})
	require.NoError(t, err)

	assert.Equal(t, "http://agent.internal:9000", cfg.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 40, cfg.SidebarWidth)
	assert.False(t, cfg.RenderMarkdown)
}

func TestLoadPrecedence(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[agent]
base_url = "http://from-file:1"
timeout_seconds = 10
`), 0600))

	t.Setenv("AGENTCHAT_BASE_URL", "http://from-env:2")
	t.Setenv("AGENTCHAT_TIMEOUT", "45")

	cfg, err := Load(Overrides{ConfigPath: path})
	require.NoError(t, err)
	assert.Equal(t, "http://from-env:2", cfg.BaseURL)
	assert.Equal(t, 45*time.Second, cfg.Timeout)

	cfg, err = Load(Overrides{ConfigPath: path, BaseURL: "http://from-flag:3", Timeout: time.Minute, Debug: true})
	require.NoError(t, err)
	assert.Equal(t, "http://from-flag:3", cfg.BaseURL)
	assert.Equal(t, time.Minute, cfg.Timeout)
	assert.True(t, cfg.Debug)
}

func TestLoadConfigDirFromEnv(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	t.Setenv("AGENTCHAT_CONFIG_DIR", dir)

	cfg, err := Load(Overrides{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, configFileName), cfg.ConfigPath)
	assert.FileExists(t, cfg.ConfigPath)
}

func TestLoadNormalizesInvalidValues(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[agent]
base_url = ""
timeout_seconds = -5

[ui]
sidebar_width = 3
`), 0600))

	cfg, err := Load(Overrides{ConfigPath: path})
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, DefaultSidebarWidth, cfg.SidebarWidth)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[agent\nbase_url = "), 0600))

	_, err := Load(Overrides{ConfigPath: path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse user config")
}

func TestExpandPath(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	t.Setenv("AGENTCHAT_TEST_DIR", "/srv/data")

	assert.Equal(t, "", ExpandPath(""))
	assert.Equal(t, filepath.Clean("/home/tester/.config/x"), ExpandPath("~/.config/x"))
	assert.Equal(t, filepath.Clean("/srv/data/sub"), ExpandPath("$AGENTCHAT_TEST_DIR/sub"))
}

func TestInitDebugLogDisabled(t *testing.T) {
	DebugLog = nil
	InitDebugLog(false)
	assert.Nil(t, DebugLog)
}

func TestLoadTimeoutFromEnvIsSeconds(t *testing.T) {
	clearEnv(t)
	t.Setenv("AGENTCHAT_TIMEOUT", "120")

	cfg, err := Load(Overrides{ConfigPath: filepath.Join(t.TempDir(), "config.toml")})
	require.NoError(t, err)
	assert.Equal(t, 120*time.Second, cfg.Timeout)
}

func TestLoadKeybindings(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[keybindings]
primary = "ctrl"
secondary = "ctrl+shift"

[keybindings.actions]
new_chat = "ctrl+t"
`), 0600))

	cfg, err := Load(Overrides{ConfigPath: path})
	require.NoError(t, err)

	kb := cfg.Keybindings
	assert.Equal(t, "ctrl+q", kb.GetActionKey(ActionQuit))
	assert.Equal(t, "ctrl+t", kb.GetActionKey(ActionNewChat))
	assert.Equal(t, "ctrl+G", kb.GetActionKey(ActionScrollToBottom))
	assert.Equal(t, "Ctrl+F", kb.DisplayActionKey(ActionSearchAll))
}

func TestLoadDefaultKeybindings(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(Overrides{})
	require.NoError(t, err)
	assert.Equal(t, "alt+n", cfg.Keybindings.GetActionKey(ActionNewChat))
	assert.Equal(t, "alt+enter", cfg.Keybindings.GetActionKey(ActionNewLine))
}

func TestLoadRejectsInvalidKeybindings(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"shift modifier", "[keybindings]\nprimary = \"shift\"\n", "conflicts with typing"},
		{"unknown action", "[keybindings.actions]\nlaunch = \"alt+l\"\n", "unknown action"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0600))

			_, err := Load(Overrides{ConfigPath: path})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
