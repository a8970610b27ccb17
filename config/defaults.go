package config

func DefaultUserConfig() *UserConfig {
	return &UserConfig{
		Agent: AgentConfig{
			BaseURL:        DefaultBaseURL,
			TimeoutSeconds: int(DefaultTimeout.Seconds()),
		},
		UI: UIConfig{
			SidebarWidth:   DefaultSidebarWidth,
			RenderMarkdown: true,
		},
		Keybindings: DefaultKeybindings(),
	}
}

func GenerateUserConfigTemplate() string {
	return `# agentchat configuration
# Location: ~/.config/agentchat/config.toml
# This file uses TOML format: https://toml.io

[agent]
# Base URL of the agent service
base_url = "http://localhost:8000"

# Per-request timeout in seconds (session creation and queries)
timeout_seconds = 120

[ui]
# Width of the conversation sidebar in columns
sidebar_width = 32

# Render agent replies as terminal markdown
render_markdown = true

[keybindings]
# Modifiers every shortcut is built from. Change them if Alt clashes with
# your terminal or window manager, e.g. primary = "ctrl".
primary = "alt"
secondary = "alt+shift"

# Per-action overrides (uncomment to use). Actions: quit, help, about,
# new_chat, search_all, dismiss_error, yank_last_reply, new_line,
# clear_input, scroll_up, scroll_down, scroll_to_top, scroll_to_bottom,
# list_down, list_up.
# [keybindings.actions]
# new_chat = "ctrl+t"
`
}
