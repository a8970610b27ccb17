package config

import (
	"fmt"
	"strings"
)

// Action names usable in [keybindings.actions].
const (
	ActionQuit           = "quit"
	ActionHelp           = "help"
	ActionAbout          = "about"
	ActionNewChat        = "new_chat"
	ActionSearchAll      = "search_all"
	ActionDismissError   = "dismiss_error"
	ActionYankLastReply  = "yank_last_reply"
	ActionNewLine        = "new_line"
	ActionClearInput     = "clear_input"
	ActionScrollUp       = "scroll_up"
	ActionScrollDown     = "scroll_down"
	ActionScrollToTop    = "scroll_to_top"
	ActionScrollToBottom = "scroll_to_bottom"
	ActionListDown       = "list_down"
	ActionListUp         = "list_up"
)

const (
	defaultPrimary   = "alt"
	defaultSecondary = "alt+shift"
)

// KeyBindingsConfig is the [keybindings] section: the two modifiers every
// shortcut is built from, plus optional per-action overrides.
type KeyBindingsConfig struct {
	Primary   string            `toml:"primary"`
	Secondary string            `toml:"secondary"`
	Actions   map[string]string `toml:"actions"`
}

type actionDef struct {
	modifier string // "primary", "secondary" or "none"
	key      string
}

var actionRegistry = map[string]actionDef{
	ActionQuit:           {"primary", "q"},
	ActionHelp:           {"primary", "h"},
	ActionAbout:          {"primary", "a"},
	ActionNewChat:        {"primary", "n"},
	ActionSearchAll:      {"primary", "f"},
	ActionDismissError:   {"primary", "x"},
	ActionYankLastReply:  {"primary", "y"},
	ActionNewLine:        {"primary", "enter"},
	ActionClearInput:     {"primary", "u"},
	ActionScrollUp:       {"primary", "up"},
	ActionScrollDown:     {"primary", "down"},
	ActionScrollToTop:    {"primary", "g"},
	ActionScrollToBottom: {"secondary", "g"},

	// filter and search lists, where bare letters are typed into the input
	ActionListDown: {"primary", "j"},
	ActionListUp:   {"primary", "k"},
}

func DefaultKeybindings() KeyBindingsConfig {
	return KeyBindingsConfig{
		Primary:   defaultPrimary,
		Secondary: defaultSecondary,
	}
}

// PrimaryModifier returns the primary modifier, "alt" when unset.
func (kb *KeyBindingsConfig) PrimaryModifier() string {
	if kb.Primary == "" {
		return defaultPrimary
	}
	return strings.ToLower(kb.Primary)
}

// SecondaryModifier returns the secondary modifier, "alt+shift" when unset.
func (kb *KeyBindingsConfig) SecondaryModifier() string {
	if kb.Secondary == "" {
		return defaultSecondary
	}
	return strings.ToLower(kb.Secondary)
}

// PrimaryKey builds a binding with the primary modifier: "n" -> "alt+n".
func (kb *KeyBindingsConfig) PrimaryKey(key string) string {
	return kb.PrimaryModifier() + "+" + key
}

// SecondaryKey builds a binding with the secondary modifier. A shifted
// single letter is reported by the terminal as the uppercase letter, so
// "g" with "alt+shift" becomes "alt+G".
func (kb *KeyBindingsConfig) SecondaryKey(key string) string {
	secondary := kb.SecondaryModifier()

	if strings.Contains(secondary, "shift") && len(key) == 1 && key[0] >= 'a' && key[0] <= 'z' {
		var mods []string
		for _, part := range strings.Split(secondary, "+") {
			if part != "shift" {
				mods = append(mods, part)
			}
		}
		if len(mods) > 0 {
			return strings.Join(mods, "+") + "+" + strings.ToUpper(key)
		}
		return strings.ToUpper(key)
	}

	return secondary + "+" + key
}

// GetActionKey returns the binding for action, preferring a user override.
// Unknown actions return "".
func (kb *KeyBindingsConfig) GetActionKey(action string) string {
	if override, ok := kb.Actions[action]; ok && override != "" {
		return override
	}

	def, ok := actionRegistry[action]
	if !ok {
		return ""
	}
	switch def.modifier {
	case "primary":
		return kb.PrimaryKey(def.key)
	case "secondary":
		return kb.SecondaryKey(def.key)
	default:
		return def.key
	}
}

// Matches reports whether a key press string triggers action.
func (kb *KeyBindingsConfig) Matches(pressed, action string) bool {
	key := kb.GetActionKey(action)
	return key != "" && pressed == key
}

// DisplayActionKey formats an action's binding for hints: "alt+G" -> "Alt+Shift+G".
func (kb *KeyBindingsConfig) DisplayActionKey(action string) string {
	key := kb.GetActionKey(action)
	if key == "" {
		return ""
	}
	return capitalizeKeybinding(key)
}

// PrimaryDisplay returns the primary modifier for hints, e.g. "Ctrl".
func (kb *KeyBindingsConfig) PrimaryDisplay() string {
	return capitalizeKeybinding(kb.PrimaryModifier())
}

func capitalizeKeybinding(key string) string {
	parts := strings.Split(key, "+")
	hasShift := false
	for _, p := range parts {
		if strings.ToLower(p) == "shift" {
			hasShift = true
		}
	}

	var result []string
	for i, part := range parts {
		if part == "" {
			continue
		}
		if len(part) == 1 && part[0] >= 'A' && part[0] <= 'Z' {
			if !hasShift && i > 0 {
				result = append(result, "Shift")
			}
			result = append(result, part)
			continue
		}
		result = append(result, strings.ToUpper(part[:1])+part[1:])
	}

	return strings.Join(result, "+")
}

// Validate rejects modifiers that would swallow ordinary typing and
// overrides for unknown actions.
func (kb *KeyBindingsConfig) Validate() error {
	for _, mod := range []string{kb.PrimaryModifier(), kb.SecondaryModifier()} {
		if mod == "shift" {
			return fmt.Errorf("modifier %q conflicts with typing", mod)
		}
	}
	for action := range kb.Actions {
		if _, ok := actionRegistry[action]; !ok {
			return fmt.Errorf("unknown action %q", action)
		}
	}
	return nil
}
