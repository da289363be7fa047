// ABOUTME: Cobra command for registering X app credentials.
// ABOUTME: Launches a bubbletea TUI wizard to collect and validate the consumer key pair.
package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/2389-research/seam/internal/config"
	"github.com/2389-research/seam/internal/tui"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Register your X app credentials",
	Long: `Interactive wizard to store the consumer key, consumer secret, and
callback URL of your X developer app. The credentials are checked with a
real request-token call before saving.`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	model := tui.NewSetupModel(
		cfg.X.ConsumerKey,
		cfg.X.ConsumerSecret,
		cfg.X.CallbackURL,
		tui.NewValidator(cfg.Endpoints().RequestTokenURL),
	)

	p := tea.NewProgram(model)
	result, err := p.Run()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	final := result.(tui.SetupModel)
	if !final.ShouldSave() {
		fmt.Println("Setup cancelled.")
		return nil
	}

	key, secret, callback := final.Result()
	cfg.X.ConsumerKey = key
	cfg.X.ConsumerSecret = secret
	cfg.X.CallbackURL = callback

	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	configPath, err := config.GetConfigPath()
	if err != nil {
		fmt.Println("Config saved successfully.")
	} else {
		fmt.Printf("Config saved to %s\n", configPath)
	}
	return nil
}
