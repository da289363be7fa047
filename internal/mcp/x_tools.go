// ABOUTME: MCP tool implementations for the X connection and thread publishing.
// ABOUTME: Registers x_status, x_connect_begin, x_connect_complete, x_disconnect, and publish_thread.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/2389-research/seam/internal/oauth"
	"github.com/2389-research/seam/internal/publish"
)

var errNotConfigured = errors.New("X app credentials are not configured - run 'seam setup' first")

func (s *Server) registerXTools() {
	s.addTool(&gomcp.Tool{
		Name:        "x_status",
		Description: "Report whether an X account is connected, and which one.",
		InputSchema: json.RawMessage(`{"type": "object", "properties": {}}`),
	}, s.handleXStatus)

	s.addTool(&gomcp.Tool{
		Name:        "x_connect_begin",
		Description: "Start connecting an X account. Returns the URL the user must open to approve access.",
		InputSchema: json.RawMessage(`{"type": "object", "properties": {}}`),
	}, s.handleConnectBegin)

	s.addTool(&gomcp.Tool{
		Name:        "x_connect_complete",
		Description: "Finish connecting an X account using the full URL the browser was redirected to after approval.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"callback_url": {"type": "string", "description": "The redirect URL including its query string.", "minLength": 1}
			},
			"required": ["callback_url"]
		}`),
	}, s.handleConnectComplete)

	s.addTool(&gomcp.Tool{
		Name:        "x_disconnect",
		Description: "Forget the connected X account.",
		InputSchema: json.RawMessage(`{"type": "object", "properties": {}}`),
	}, s.handleDisconnect)

	s.addTool(&gomcp.Tool{
		Name:        "publish_thread",
		Description: "Post the current thread to X as a reply chain. Stops at the first failure and reports how far it got.",
		InputSchema: json.RawMessage(`{"type": "object", "properties": {}}`),
	}, s.handlePublishThread)
}

func (s *Server) handleXStatus(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	if s.broker == nil {
		return toolText("Not configured: %v", errNotConfigured), nil
	}
	st, err := s.broker.Status()
	if err != nil {
		return toolError("failed to read status: %v", err), nil
	}
	if !st.Connected {
		return toolText("Not connected to X."), nil
	}
	return toolText("Connected as %s", st.Identity.Handle()), nil
}

func (s *Server) handleConnectBegin(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	if s.broker == nil {
		return toolError("%v", errNotConfigured), nil
	}
	authz, err := s.broker.BeginHandshake(ctx)
	if err != nil {
		return toolError("failed to start connection: %v", err), nil
	}
	return toolText("Open this URL to approve access, then pass the URL you are redirected to to x_connect_complete:\n%s", authz.URL), nil
}

func (s *Server) handleConnectComplete(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		CallbackURL string `json:"callback_url"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}
	if strings.TrimSpace(args.CallbackURL) == "" {
		return toolError("callback_url is required"), nil
	}
	if s.broker == nil {
		return toolError("%v", errNotConfigured), nil
	}

	id, err := s.broker.CompleteHandshake(ctx, strings.TrimSpace(args.CallbackURL))
	if errors.Is(err, oauth.ErrAuthorizationDenied) {
		return toolError("Authorization was denied."), nil
	}
	if err != nil {
		return toolError("failed to complete connection: %v", err), nil
	}
	return toolText("Connected as %s", id.Handle()), nil
}

func (s *Server) handleDisconnect(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	if s.broker == nil {
		return toolError("%v", errNotConfigured), nil
	}
	if err := s.broker.Disconnect(); err != nil {
		return toolError("%v", err), nil
	}
	return toolText("Disconnected from X."), nil
}

func (s *Server) handlePublishThread(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	if s.broker == nil || s.publisher == nil {
		return toolError("%v", errNotConfigured), nil
	}
	st, err := s.broker.Status()
	if err != nil {
		return toolError("failed to read status: %v", err), nil
	}
	if !st.Connected {
		return toolError("%v", oauth.ErrNotAuthorized), nil
	}

	texts, err := s.editor.Prepared()
	if err != nil {
		return toolError("thread is not ready to post: %v", err), nil
	}

	results := s.publisher.PostThread(ctx, texts)
	summary := publish.Summary(results, len(texts))
	s.log.Info().Int("posted", publish.Succeeded(results)).Int("total", len(texts)).Msg("publish finished")

	if publish.Succeeded(results) != len(texts) {
		return toolError("%s", summary), nil
	}
	if link := publish.ThreadURL(s.webURL, st.Identity.ScreenName, results); link != "" {
		summary = fmt.Sprintf("%s\n%s", summary, link)
	}
	return toolText("%s", summary), nil
}
