// ABOUTME: CLI commands for generating and editing the thread.
// ABOUTME: Provides generate, show, edit, insert, delete, move, split, numbering, copy, and clear.
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/2389-research/seam/internal/capture"
	"github.com/2389-research/seam/internal/compose"
)

var threadCmd = &cobra.Command{
	Use:   "thread",
	Short: "Generate and edit the thread",
	Long:  "Split the capture into segments and edit them. Positions start at 1.",
}

var threadGenerateCmd = &cobra.Command{
	Use:   "generate [text]",
	Short: "Generate a thread from the capture (or the given text)",
	RunE:  runThreadGenerate,
}

var threadShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the thread as it will be posted",
	Args:  cobra.NoArgs,
	RunE:  runThreadShow,
}

var threadEditCmd = &cobra.Command{
	Use:   "edit <position> [text]",
	Short: "Replace a segment's text (reads stdin when text is omitted)",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runThreadEdit,
}

var threadInsertCmd = &cobra.Command{
	Use:   "insert <position>",
	Short: "Insert an empty segment after a position",
	Args:  cobra.ExactArgs(1),
	RunE:  runThreadInsert,
}

var threadDeleteCmd = &cobra.Command{
	Use:   "delete <position>",
	Short: "Delete a segment",
	Args:  cobra.ExactArgs(1),
	RunE:  runThreadDelete,
}

var threadMoveCmd = &cobra.Command{
	Use:   "move <position> <up|down>",
	Short: "Swap a segment with its neighbour",
	Args:  cobra.ExactArgs(2),
	RunE:  runThreadMove,
}

var threadSplitCmd = &cobra.Command{
	Use:   "split <position>",
	Short: "Split an over-long segment",
	Args:  cobra.ExactArgs(1),
	RunE:  runThreadSplit,
}

var threadNumberingCmd = &cobra.Command{
	Use:       "numbering <on|off>",
	Short:     "Turn the i/n prefix on or off",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"on", "off"},
	RunE:      runThreadNumbering,
}

var threadCopyCmd = &cobra.Command{
	Use:   "copy",
	Short: "Print the whole thread, or copy it to the clipboard",
	Args:  cobra.NoArgs,
	RunE:  runThreadCopy,
}

var threadClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget the capture, the thread, and settings",
	Args:  cobra.NoArgs,
	RunE:  runThreadClear,
}

// Flags
var threadCopyClipboard bool

func init() {
	rootCmd.AddCommand(threadCmd)
	threadCmd.AddCommand(threadGenerateCmd)
	threadCmd.AddCommand(threadShowCmd)
	threadCmd.AddCommand(threadEditCmd)
	threadCmd.AddCommand(threadInsertCmd)
	threadCmd.AddCommand(threadDeleteCmd)
	threadCmd.AddCommand(threadMoveCmd)
	threadCmd.AddCommand(threadSplitCmd)
	threadCmd.AddCommand(threadNumberingCmd)
	threadCmd.AddCommand(threadCopyCmd)
	threadCmd.AddCommand(threadClearCmd)

	threadCopyCmd.Flags().BoolVar(&threadCopyClipboard, "clipboard", false, "Copy to the system clipboard instead of printing")
}

// parsePosition turns a 1-based position argument into a segment index.
func parsePosition(arg string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("position must be a number starting at 1, got %q", arg)
	}
	return n - 1, nil
}

// parseSwitch accepts on/off style values.
func parseSwitch(arg string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(arg)) {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", arg)
}

func printThread(editor *compose.Editor) error {
	display, err := editor.Display()
	if err != nil {
		return err
	}
	if len(display) == 0 {
		fmt.Println("No thread yet.")
		return nil
	}
	fmt.Print(compose.Format(display))
	return nil
}

func runThreadGenerate(cmd *cobra.Command, args []string) error {
	var text string
	if len(args) > 0 {
		text = compose.PlainText(strings.Join(args, " "))
	} else {
		c, err := capture.New(globalSession).Current()
		if err != nil {
			return err
		}
		text = c.Text
	}

	editor := compose.NewEditor(globalSession)
	if _, err := editor.Generate(text); err != nil {
		return err
	}
	return printThread(editor)
}

func runThreadShow(cmd *cobra.Command, args []string) error {
	return printThread(compose.NewEditor(globalSession))
}

func runThreadEdit(cmd *cobra.Command, args []string) error {
	index, err := parsePosition(args[0])
	if err != nil {
		return err
	}

	var text string
	if len(args) == 2 {
		text = args[1]
	} else {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		text = strings.TrimRight(string(data), "\n")
	}

	editor := compose.NewEditor(globalSession)
	if _, err := editor.Edit(index, text); err != nil {
		return err
	}
	return printThread(editor)
}

func runThreadInsert(cmd *cobra.Command, args []string) error {
	return editAt(args[0], (*compose.Editor).Insert)
}

func runThreadDelete(cmd *cobra.Command, args []string) error {
	return editAt(args[0], (*compose.Editor).Delete)
}

func runThreadSplit(cmd *cobra.Command, args []string) error {
	return editAt(args[0], (*compose.Editor).Split)
}

func editAt(arg string, op func(*compose.Editor, int) ([]string, error)) error {
	index, err := parsePosition(arg)
	if err != nil {
		return err
	}
	editor := compose.NewEditor(globalSession)
	if _, err := op(editor, index); err != nil {
		return err
	}
	return printThread(editor)
}

func runThreadMove(cmd *cobra.Command, args []string) error {
	index, err := parsePosition(args[0])
	if err != nil {
		return err
	}
	dir, err := compose.ParseDirection(args[1])
	if err != nil {
		return err
	}
	editor := compose.NewEditor(globalSession)
	if _, err := editor.Move(index, dir); err != nil {
		return err
	}
	return printThread(editor)
}

func runThreadNumbering(cmd *cobra.Command, args []string) error {
	on, err := parseSwitch(args[0])
	if err != nil {
		return err
	}
	editor := compose.NewEditor(globalSession)
	if _, err := editor.SetNumbering(on); err != nil {
		return err
	}
	return printThread(editor)
}

func runThreadCopy(cmd *cobra.Command, args []string) error {
	editor := compose.NewEditor(globalSession)
	segments, err := editor.Segments()
	if err != nil {
		return err
	}
	if len(segments) == 0 {
		return compose.ErrNoThread
	}
	st, err := editor.Settings()
	if err != nil {
		return err
	}

	text := compose.CopyAll(segments, st.Numbering)
	if !threadCopyClipboard {
		fmt.Println(text)
		return nil
	}
	if err := capture.CopyToClipboard(text); err != nil {
		return err
	}
	fmt.Printf("Copied %d segments to the clipboard.\n", len(segments))
	return nil
}

func runThreadClear(cmd *cobra.Command, args []string) error {
	if err := globalSession.ClearAll(); err != nil {
		return fmt.Errorf("failed to clear: %w", err)
	}
	fmt.Println("Cleared capture, thread, and settings.")
	return nil
}
