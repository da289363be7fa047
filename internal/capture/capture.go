// ABOUTME: Captures selected text from a selection source and stores it as the current capture.
// ABOUTME: Rich content is reduced to plain text once, here, so segmentation only sees plain text.
package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/2389-research/seam/internal/compose"
	"github.com/2389-research/seam/internal/logging"
	"github.com/2389-research/seam/internal/models"
)

// MinLength is the shortest selection worth capturing.
const MinLength = 10

var (
	ErrNothingSelected = errors.New("nothing selected")
	ErrCaptureTooShort = fmt.Errorf("selection is shorter than %d characters", MinLength)
	ErrNoCapture       = errors.New("nothing captured yet - run 'seam capture' first")
)

// SelectionSource yields the currently selected text. It may return an empty string.
type SelectionSource interface {
	SelectedText(ctx context.Context) (string, error)
}

// ReaderSource reads the whole selection from a reader such as stdin or a file.
type ReaderSource struct {
	R io.Reader
}

// SelectedText reads R to EOF.
func (s ReaderSource) SelectedText(_ context.Context) (string, error) {
	data, err := io.ReadAll(s.R)
	if err != nil {
		return "", fmt.Errorf("failed to read selection: %w", err)
	}
	return string(data), nil
}

// TextSource is a selection that is already in hand.
type TextSource string

// SelectedText returns the text itself.
func (s TextSource) SelectedText(_ context.Context) (string, error) {
	return string(s), nil
}

// ClipboardSource reads the system clipboard.
type ClipboardSource struct{}

// SelectedText returns the clipboard contents.
func (ClipboardSource) SelectedText(_ context.Context) (string, error) {
	if clipboard.Unsupported {
		return "", errors.New("clipboard is not available on this system")
	}
	text, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("failed to read clipboard: %w", err)
	}
	return text, nil
}

// Store persists the current capture.
type Store interface {
	Capture() (*models.Capture, error)
	SaveCapture(*models.Capture) error
}

// Capturer turns selections into stored captures.
type Capturer struct {
	store Store
	log   *logging.Logger
}

// New creates a capturer over store.
func New(store Store) *Capturer {
	return &Capturer{store: store, log: logging.Named("capture")}
}

// Capture reads src, normalizes the text, and replaces the current capture.
func (c *Capturer) Capture(ctx context.Context, src SelectionSource, sourceURL string) (*models.Capture, error) {
	raw, err := src.SelectedText(ctx)
	if err != nil {
		return nil, err
	}

	text := compose.PlainText(raw)
	if text == "" {
		return nil, ErrNothingSelected
	}
	if compose.Length(text) < MinLength {
		return nil, ErrCaptureTooShort
	}

	capture := models.NewCapture(text, strings.TrimSpace(sourceURL))
	if err := c.store.SaveCapture(capture); err != nil {
		return nil, fmt.Errorf("failed to save capture: %w", err)
	}
	c.log.Debug().Int("chars", compose.Length(text)).Str("id", capture.ID.String()).Msg("captured")
	return capture, nil
}

// Current returns the stored capture or ErrNoCapture.
func (c *Capturer) Current() (*models.Capture, error) {
	capture, err := c.store.Capture()
	if err != nil {
		return nil, err
	}
	if capture == nil {
		return nil, ErrNoCapture
	}
	return capture, nil
}

// CopyToClipboard writes text to the system clipboard.
func CopyToClipboard(text string) error {
	if clipboard.Unsupported {
		return errors.New("clipboard is not available on this system")
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("failed to write clipboard: %w", err)
	}
	return nil
}
