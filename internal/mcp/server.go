// ABOUTME: MCP server initialization and configuration for seam.
// ABOUTME: Sets up server with thread editing and X publishing tools for AI agent access.
package mcp

import (
	"context"
	"fmt"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/2389-research/seam/internal/capture"
	"github.com/2389-research/seam/internal/compose"
	"github.com/2389-research/seam/internal/logging"
	"github.com/2389-research/seam/internal/oauth"
	"github.com/2389-research/seam/internal/publish"
	"github.com/2389-research/seam/internal/session"
)

// Server wraps the MCP server with the session and the components that act on it.
type Server struct {
	mcp       *gomcp.Server
	session   *session.Session
	editor    *compose.Editor
	capturer  *capture.Capturer
	broker    *oauth.Broker
	publisher *publish.Publisher
	webURL    string
	handlers  map[string]gomcp.ToolHandler
	log       *logging.Logger
}

// ServerOption configures optional Server dependencies.
type ServerOption func(*Server)

// WithBroker sets the OAuth broker used by the X tools.
func WithBroker(b *oauth.Broker) ServerOption {
	return func(s *Server) {
		s.broker = b
	}
}

// WithPublisher sets the publisher used by publish_thread.
func WithPublisher(p *publish.Publisher) ServerOption {
	return func(s *Server) {
		s.publisher = p
	}
}

// WithWebURL sets the site root used to link published threads.
func WithWebURL(u string) ServerOption {
	return func(s *Server) {
		s.webURL = u
	}
}

// NewServer creates an MCP server over sess.
func NewServer(sess *session.Session, opts ...ServerOption) (*Server, error) {
	if sess == nil {
		return nil, fmt.Errorf("session is required")
	}

	mcpServer := gomcp.NewServer(
		&gomcp.Implementation{
			Name:    "seam",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcp:      mcpServer,
		session:  sess,
		editor:   compose.NewEditor(sess),
		capturer: capture.New(sess),
		handlers: make(map[string]gomcp.ToolHandler),
		log:      logging.Named("mcp"),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.registerThreadTools()
	s.registerXTools()

	return s, nil
}

// Serve starts the MCP server in stdio mode.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcp.Run(ctx, &gomcp.StdioTransport{})
}

func (s *Server) addTool(tool *gomcp.Tool, h gomcp.ToolHandler) {
	s.handlers[tool.Name] = h
	s.mcp.AddTool(tool, h)
}

func toolText(format string, args ...any) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: fmt.Sprintf(format, args...)}},
	}
}

func toolError(format string, args ...any) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: fmt.Sprintf(format, args...)}},
		IsError: true,
	}
}
