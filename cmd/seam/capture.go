// ABOUTME: CLI command for capturing source text.
// ABOUTME: Reads stdin, a file, or the clipboard and stores it as the current capture.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/2389-research/seam/internal/capture"
	"github.com/2389-research/seam/internal/compose"
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Capture text to turn into a thread",
	Long: `Capture text from stdin (default), a file, or the system clipboard.
HTML is reduced to plain text. The capture replaces any previous one.`,
	RunE: runCapture,
}

// Flags
var (
	captureFile      string
	captureClipboard bool
	captureURL       string
	captureGenerate  bool
)

func init() {
	rootCmd.AddCommand(captureCmd)

	captureCmd.Flags().StringVarP(&captureFile, "file", "f", "", "Read text from a file")
	captureCmd.Flags().BoolVar(&captureClipboard, "clipboard", false, "Read text from the system clipboard")
	captureCmd.Flags().StringVar(&captureURL, "url", "", "URL of the page the text came from")
	captureCmd.Flags().BoolVarP(&captureGenerate, "generate", "g", false, "Generate a thread from the capture right away")
	captureCmd.MarkFlagsMutuallyExclusive("file", "clipboard")
}

func runCapture(cmd *cobra.Command, args []string) error {
	var src capture.SelectionSource
	switch {
	case captureClipboard:
		src = capture.ClipboardSource{}
	case captureFile != "":
		f, err := os.Open(captureFile)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", captureFile, err)
		}
		defer func() { _ = f.Close() }()
		src = capture.ReaderSource{R: f}
	default:
		src = capture.ReaderSource{R: os.Stdin}
	}

	c, err := capture.New(globalSession).Capture(context.Background(), src, captureURL)
	if err != nil {
		return err
	}
	fmt.Printf("Captured %d characters.\n", compose.Length(c.Text))

	if !captureGenerate {
		return nil
	}
	editor := compose.NewEditor(globalSession)
	if _, err := editor.Generate(c.Text); err != nil {
		return err
	}
	return printThread(editor)
}
