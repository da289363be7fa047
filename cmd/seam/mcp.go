// ABOUTME: MCP server command implementation for seam.
// ABOUTME: Starts the MCP server in stdio mode for AI agent integration.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	mcppkg "github.com/2389-research/seam/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server (stdio mode)",
	Long: `Start the Model Context Protocol server for AI agent integration.

The MCP server communicates via stdio, letting an agent capture text,
shape the thread, and publish it through the same state as the CLI.`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	opts := []mcppkg.ServerOption{mcppkg.WithWebURL(globalConfig.Endpoints().WebURL)}
	if globalBroker != nil {
		opts = append(opts,
			mcppkg.WithBroker(globalBroker),
			mcppkg.WithPublisher(newPublisher(globalConfig, globalBroker)),
		)
	}

	server, err := mcppkg.NewServer(globalSession, opts...)
	if err != nil {
		return err
	}

	return server.Serve(ctx)
}
