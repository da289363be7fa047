// ABOUTME: CLI commands for the X account connection.
// ABOUTME: Provides connect, disconnect, and status subcommands over the OAuth broker.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/2389-research/seam/internal/consent"
	"github.com/2389-research/seam/internal/logging"
	"github.com/2389-research/seam/internal/oauth"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the X account connection",
	Long:  "Connect, disconnect, and check the X account seam posts as.",
}

var authConnectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Connect an X account",
	Long: `Run the OAuth 1.0a handshake. By default seam listens on the callback
URL and opens the authorize page in your browser. With --manual it prints
the URL and waits for you to paste the redirect URL back.`,
	RunE: runAuthConnect,
}

var authDisconnectCmd = &cobra.Command{
	Use:   "disconnect",
	Short: "Forget the connected X account",
	RunE:  runAuthDisconnect,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which X account is connected",
	RunE:  runAuthStatus,
}

// Flags
var (
	authManual    bool
	authNoBrowser bool
)

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authConnectCmd)
	authCmd.AddCommand(authDisconnectCmd)
	authCmd.AddCommand(authStatusCmd)

	authConnectCmd.Flags().BoolVar(&authManual, "manual", false, "Paste the redirect URL instead of running a local callback server")
	authConnectCmd.Flags().BoolVar(&authNoBrowser, "no-browser", false, "Do not try to open the browser")
}

func runAuthConnect(cmd *cobra.Command, args []string) error {
	broker, err := requireBroker()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	opener := consent.OpenBrowser
	if authNoBrowser {
		opener = nil
	}

	var consenter oauth.Consenter
	if authManual {
		consenter = &consent.Manual{In: os.Stdin, Out: os.Stdout, Opener: opener}
	} else {
		lb := consent.NewLoopback(os.Stdout)
		lb.Opener = opener
		consenter = lb
	}

	res := broker.Connect(ctx, consenter)
	if !res.Success {
		logging.Named("oauth").Debug().Bool("denied", res.Denied).Msg("connect did not complete")
		return errors.New(res.Message)
	}
	fmt.Println(res.Message)
	return nil
}

func runAuthDisconnect(cmd *cobra.Command, args []string) error {
	broker, err := requireBroker()
	if err != nil {
		return err
	}
	if err := broker.Disconnect(); err != nil {
		return err
	}
	fmt.Println("Disconnected from X.")
	return nil
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	if globalBroker == nil {
		fmt.Println("Not configured. Run 'seam setup' to register your X app.")
		return nil
	}
	st, err := globalBroker.Status()
	if err != nil {
		return fmt.Errorf("failed to read status: %w", err)
	}
	if !st.Connected {
		fmt.Println("Not connected. Run 'seam auth connect'.")
		return nil
	}
	fmt.Printf("Connected as %s (id %s)\n", st.Identity.Handle(), st.Identity.UserID)
	return nil
}
