// ABOUTME: Tests for MCP server creation and shared tool-call helpers.
// ABOUTME: Verifies the server requires a session and registers every tool.
package mcp

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/2389-research/seam/internal/session"
	"github.com/2389-research/seam/internal/storage"
)

func newTestSession(t *testing.T) *session.Session {
	t.Helper()
	store, err := storage.NewYAMLStateStore(filepath.Join(t.TempDir(), "state.yaml"))
	if err != nil {
		t.Fatalf("NewYAMLStateStore error: %v", err)
	}
	sess, err := session.New(store)
	if err != nil {
		t.Fatalf("session.New error: %v", err)
	}
	t.Cleanup(func() { _ = sess.Close() })
	return sess
}

func makeServer(t *testing.T, opts ...ServerOption) (*Server, *session.Session) {
	t.Helper()
	sess := newTestSession(t)
	s, err := NewServer(sess, opts...)
	if err != nil {
		t.Fatalf("NewServer error: %v", err)
	}
	return s, sess
}

// callTool invokes a registered handler by name with JSON-marshaled args.
func callTool(t *testing.T, s *Server, name string, args interface{}) *gomcp.CallToolResult {
	t.Helper()
	argsJSON, err := json.Marshal(args)
	if err != nil {
		t.Fatalf("failed to marshal args: %v", err)
	}

	handler, ok := s.handlers[name]
	if !ok {
		t.Fatalf("no tool named %q", name)
	}

	req := &gomcp.CallToolRequest{
		Params: &gomcp.CallToolParamsRaw{
			Name:      name,
			Arguments: argsJSON,
		},
	}
	result, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return result
}

func getTextContent(result *gomcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return ""
	}
	if tc, ok := result.Content[0].(*gomcp.TextContent); ok {
		return tc.Text
	}
	return ""
}

func TestNewServerRequiresSession(t *testing.T) {
	_, err := NewServer(nil)
	if err == nil {
		t.Error("expected error when session is nil")
	}
}

func TestNewServerRegistersTools(t *testing.T) {
	s, _ := makeServer(t)

	want := []string{
		"capture_text", "generate_thread", "show_thread", "edit_segment",
		"insert_segment", "delete_segment", "move_segment", "split_segment",
		"set_numbering", "copy_thread", "clear_all",
		"x_status", "x_connect_begin", "x_connect_complete", "x_disconnect", "publish_thread",
	}
	for _, name := range want {
		if _, ok := s.handlers[name]; !ok {
			t.Errorf("tool %q not registered", name)
		}
	}
	if len(s.handlers) != len(want) {
		t.Errorf("expected %d tools, got %d", len(want), len(s.handlers))
	}
}
