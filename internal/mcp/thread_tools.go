// ABOUTME: MCP tool implementations for capturing text and editing the thread.
// ABOUTME: Registers capture, generate, show, edit, insert, delete, move, split, numbering, copy, and clear tools.
package mcp

import (
	"context"
	"encoding/json"
	"strings"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/2389-research/seam/internal/capture"
	"github.com/2389-research/seam/internal/compose"
)

func (s *Server) registerThreadTools() {
	s.addTool(&gomcp.Tool{
		Name:        "capture_text",
		Description: "Capture a block of text (plain or HTML) as the source for a new thread. Replaces any previous capture.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"text": {"type": "string", "description": "The text to capture.", "minLength": 1},
				"url": {"type": "string", "description": "Optional URL of the page the text came from."}
			},
			"required": ["text"]
		}`),
	}, s.handleCaptureText)

	s.addTool(&gomcp.Tool{
		Name:        "generate_thread",
		Description: "Split text into a thread of tweet-sized segments. Uses the current capture when text is omitted. Replaces the current thread.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"text": {"type": "string", "description": "Text to split (optional, defaults to the current capture)."}
			}
		}`),
	}, s.handleGenerateThread)

	s.addTool(&gomcp.Tool{
		Name:        "show_thread",
		Description: "Show the current thread as it will be posted, with character counts.",
		InputSchema: json.RawMessage(`{"type": "object", "properties": {}}`),
	}, s.handleShowThread)

	s.addTool(&gomcp.Tool{
		Name:        "edit_segment",
		Description: "Replace the text of one segment.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"position": {"type": "integer", "description": "1-based segment position.", "minimum": 1},
				"text": {"type": "string", "description": "New segment text."}
			},
			"required": ["position", "text"]
		}`),
	}, s.handleEditSegment)

	s.addTool(&gomcp.Tool{
		Name:        "insert_segment",
		Description: "Insert an empty segment right after the given position.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"position": {"type": "integer", "description": "1-based segment position to insert after.", "minimum": 1}
			},
			"required": ["position"]
		}`),
	}, s.handleInsertSegment)

	s.addTool(&gomcp.Tool{
		Name:        "delete_segment",
		Description: "Delete a segment. The last remaining segment cannot be deleted.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"position": {"type": "integer", "description": "1-based segment position.", "minimum": 1}
			},
			"required": ["position"]
		}`),
	}, s.handleDeleteSegment)

	s.addTool(&gomcp.Tool{
		Name:        "move_segment",
		Description: "Swap a segment with its neighbour above or below.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"position": {"type": "integer", "description": "1-based segment position.", "minimum": 1},
				"direction": {"type": "string", "enum": ["up", "down"]}
			},
			"required": ["position", "direction"]
		}`),
	}, s.handleMoveSegment)

	s.addTool(&gomcp.Tool{
		Name:        "split_segment",
		Description: "Split an over-long segment at natural break points.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"position": {"type": "integer", "description": "1-based segment position.", "minimum": 1}
			},
			"required": ["position"]
		}`),
	}, s.handleSplitSegment)

	s.addTool(&gomcp.Tool{
		Name:        "set_numbering",
		Description: "Turn the \"i/n\" numbering prefix on or off.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"enabled": {"type": "boolean"}
			},
			"required": ["enabled"]
		}`),
	}, s.handleSetNumbering)

	s.addTool(&gomcp.Tool{
		Name:        "copy_thread",
		Description: "Return the whole thread as one block of text, segments separated by ---.",
		InputSchema: json.RawMessage(`{"type": "object", "properties": {}}`),
	}, s.handleCopyThread)

	s.addTool(&gomcp.Tool{
		Name:        "clear_all",
		Description: "Forget the capture, the thread, and settings. The X connection is kept.",
		InputSchema: json.RawMessage(`{"type": "object", "properties": {}}`),
	}, s.handleClearAll)
}

type positionArgs struct {
	Position  int    `json:"position"`
	Text      string `json:"text"`
	Direction string `json:"direction"`
}

func parsePosition(req *gomcp.CallToolRequest) (positionArgs, *gomcp.CallToolResult) {
	var args positionArgs
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return args, toolError("invalid arguments: %v", err)
	}
	if args.Position < 1 {
		return args, toolError("position must be 1 or greater")
	}
	return args, nil
}

func (s *Server) handleCaptureText(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		Text string `json:"text"`
		URL  string `json:"url"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}

	c, err := s.capturer.Capture(ctx, capture.TextSource(args.Text), args.URL)
	if err != nil {
		return toolError("failed to capture: %v", err), nil
	}
	return toolText("Captured %d characters.", compose.Length(c.Text)), nil
}

func (s *Server) handleGenerateThread(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}

	text := args.Text
	if strings.TrimSpace(text) == "" {
		c, err := s.capturer.Current()
		if err != nil {
			return toolError("%v", err), nil
		}
		text = c.Text
	} else {
		text = compose.PlainText(text)
	}

	if _, err := s.editor.Generate(text); err != nil {
		return toolError("failed to generate thread: %v", err), nil
	}
	return s.renderThread()
}

func (s *Server) handleShowThread(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	return s.renderThread()
}

func (s *Server) handleEditSegment(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	args, bad := parsePosition(req)
	if bad != nil {
		return bad, nil
	}
	if _, err := s.editor.Edit(args.Position-1, args.Text); err != nil {
		return toolError("failed to edit segment: %v", err), nil
	}
	return s.renderThread()
}

func (s *Server) handleInsertSegment(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	args, bad := parsePosition(req)
	if bad != nil {
		return bad, nil
	}
	if _, err := s.editor.Insert(args.Position - 1); err != nil {
		return toolError("failed to insert segment: %v", err), nil
	}
	return s.renderThread()
}

func (s *Server) handleDeleteSegment(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	args, bad := parsePosition(req)
	if bad != nil {
		return bad, nil
	}
	if _, err := s.editor.Delete(args.Position - 1); err != nil {
		return toolError("failed to delete segment: %v", err), nil
	}
	return s.renderThread()
}

func (s *Server) handleMoveSegment(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	args, bad := parsePosition(req)
	if bad != nil {
		return bad, nil
	}
	dir, err := compose.ParseDirection(args.Direction)
	if err != nil {
		return toolError("%v", err), nil
	}
	if _, err := s.editor.Move(args.Position-1, dir); err != nil {
		return toolError("failed to move segment: %v", err), nil
	}
	return s.renderThread()
}

func (s *Server) handleSplitSegment(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	args, bad := parsePosition(req)
	if bad != nil {
		return bad, nil
	}
	if _, err := s.editor.Split(args.Position - 1); err != nil {
		return toolError("failed to split segment: %v", err), nil
	}
	return s.renderThread()
}

func (s *Server) handleSetNumbering(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}
	if _, err := s.editor.SetNumbering(args.Enabled); err != nil {
		return toolError("failed to update numbering: %v", err), nil
	}
	return s.renderThread()
}

func (s *Server) handleCopyThread(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	segments, err := s.editor.Segments()
	if err != nil {
		return toolError("failed to load thread: %v", err), nil
	}
	if len(segments) == 0 {
		return toolError("%v", compose.ErrNoThread), nil
	}
	st, err := s.editor.Settings()
	if err != nil {
		return toolError("failed to load settings: %v", err), nil
	}
	return toolText("%s", compose.CopyAll(segments, st.Numbering)), nil
}

func (s *Server) handleClearAll(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	if err := s.session.ClearAll(); err != nil {
		return toolError("failed to clear: %v", err), nil
	}
	return toolText("Cleared capture, thread, and settings."), nil
}

func (s *Server) renderThread() (*gomcp.CallToolResult, error) {
	display, err := s.editor.Display()
	if err != nil {
		return toolError("failed to load thread: %v", err), nil
	}
	if len(display) == 0 {
		return toolText("No thread yet."), nil
	}
	return toolText("%s", compose.Format(display)), nil
}
