package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

const (
	DefaultBaseURL      = "http://localhost:8000"
	DefaultTimeout      = 120 * time.Second
	DefaultSidebarWidth = 32
	minSidebarWidth     = 16
)

type AgentConfig struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type UIConfig struct {
	SidebarWidth   int  `toml:"sidebar_width"`
	RenderMarkdown bool `toml:"render_markdown"`
}

type UserConfig struct {
	Agent       AgentConfig       `toml:"agent"`
	UI          UIConfig          `toml:"ui"`
	Keybindings KeyBindingsConfig `toml:"keybindings"`
}

// EnvConfig mirrors the subset of settings that can be overridden from the
// environment (or a .env file loaded before Load runs). The timeout is in
// whole seconds, like timeout_seconds in the TOML file.
type EnvConfig struct {
	BaseURL        string `env:"AGENTCHAT_BASE_URL"`
	TimeoutSeconds int    `env:"AGENTCHAT_TIMEOUT"`
	ConfigDir      string `env:"AGENTCHAT_CONFIG_DIR"`
	Debug          bool   `env:"AGENTCHAT_DEBUG"`
}

// Overrides carries command line flags. Zero values mean "not set".
type Overrides struct {
	BaseURL    string
	Timeout    time.Duration
	ConfigPath string
	Debug      bool
}

// BindFlags registers the command line flags that fill o.
func (o *Overrides) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.BaseURL, "base-url", "", "Agent service base URL (default "+DefaultBaseURL+")")
	fs.DurationVar(&o.Timeout, "timeout", 0, "Per-request timeout (default "+DefaultTimeout.String()+")")
	fs.StringVar(&o.ConfigPath, "config", "", "Path to config.toml")
	fs.BoolVar(&o.Debug, "debug", false, "Write a debug log to the cache directory")
}

type Config struct {
	BaseURL        string
	Timeout        time.Duration
	SidebarWidth   int
	RenderMarkdown bool
	Keybindings    KeyBindingsConfig
	ConfigPath     string
	Debug          bool
}

var DebugLog *logrus.Logger

// ParseEnv reads AGENTCHAT_* variables.
func ParseEnv() (EnvConfig, error) {
	var ec EnvConfig
	if err := env.Parse(&ec); err != nil {
		return EnvConfig{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	return ec, nil
}

// Load resolves the effective configuration. Precedence is flags, then
// environment, then the TOML file, then built-in defaults.
func Load(o Overrides) (*Config, error) {
	ec, err := ParseEnv()
	if err != nil {
		return nil, err
	}

	configPath := o.ConfigPath
	if configPath == "" && ec.ConfigDir != "" {
		configPath = filepath.Join(ExpandPath(ec.ConfigDir), configFileName)
	}
	if configPath == "" {
		configPath = GetConfigFilePath()
	}
	configPath = ExpandPath(configPath)

	userCfg, err := LoadUserConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}

	if err := userCfg.Keybindings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid keybindings in %s: %w", configPath, err)
	}

	cfg := fromUserConfig(userCfg)
	cfg.ConfigPath = configPath
	cfg.applyEnv(ec)
	cfg.applyOverrides(o)
	cfg.normalize()

	return cfg, nil
}

func fromUserConfig(uc *UserConfig) *Config {
	return &Config{
		BaseURL:        uc.Agent.BaseURL,
		Timeout:        time.Duration(uc.Agent.TimeoutSeconds) * time.Second,
		SidebarWidth:   uc.UI.SidebarWidth,
		RenderMarkdown: uc.UI.RenderMarkdown,
		Keybindings:    uc.Keybindings,
	}
}

func (c *Config) applyEnv(ec EnvConfig) {
	if ec.BaseURL != "" {
		c.BaseURL = ec.BaseURL
	}
	if ec.TimeoutSeconds > 0 {
		c.Timeout = time.Duration(ec.TimeoutSeconds) * time.Second
	}
	if ec.Debug {
		c.Debug = true
	}
}

func (c *Config) applyOverrides(o Overrides) {
	if o.BaseURL != "" {
		c.BaseURL = o.BaseURL
	}
	if o.Timeout > 0 {
		c.Timeout = o.Timeout
	}
	if o.Debug {
		c.Debug = true
	}
}

func (c *Config) normalize() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.SidebarWidth < minSidebarWidth {
		c.SidebarWidth = DefaultSidebarWidth
	}
}

// InitDebugLog opens the debug log in the cache directory. It is a no-op
// unless debug is enabled, leaving DebugLog nil.
func InitDebugLog(enabled bool) {
	if !enabled {
		return
	}

	cacheDir := GetCacheDir()
	if err := EnsureDir(cacheDir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not create cache directory %s: %v\n", cacheDir, err)
		return
	}
	logPath := filepath.Join(cacheDir, "debug.log")

	// 0600: the log contains conversation text
	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not open debug log at %s: %v\n", logPath, err)
		return
	}

	logger := logrus.New()
	logger.SetOutput(f)
	logger.SetLevel(logrus.DebugLevel)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000000",
		DisableColors:   true,
	})

	DebugLog = logger
	DebugLog.Printf("=== Debug logging started ===")
	DebugLog.WithField("path", logPath).Debug("log path")
}
