package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"agentchat/agent"
	"agentchat/config"
	"agentchat/model"
	"agentchat/storage"
	"agentchat/ui"
)

const Version = "v0.1.0"

func main() {
	// .env is optional
	_ = godotenv.Load()

	var overrides config.Overrides

	cmd := &cobra.Command{
		Use:           "agentchat",
		Short:         "Terminal chat client for a remote query-answering agent",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(overrides)
		},
	}
	overrides.BindFlags(cmd.Flags())

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(overrides config.Overrides) error {
	cfg, err := config.Load(overrides)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	config.InitDebugLog(cfg.Debug)

	client, err := agent.NewClient(cfg.BaseURL, cfg.Timeout)
	if err != nil {
		return fmt.Errorf("invalid agent base URL: %w", err)
	}

	if config.DebugLog != nil {
		config.DebugLog.WithField("base_url", client.BaseURL()).WithField("timeout", cfg.Timeout).Info("starting agentchat")
	}

	dataModel := model.NewModel(client, storage.NewConversationStore(), cfg.Timeout, Version)

	p := tea.NewProgram(
		ui.NewAppView(cfg, dataModel),
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running agentchat: %w", err)
	}
	return nil
}
