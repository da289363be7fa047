// ABOUTME: Tests for capture normalization, minimum length, and replacement semantics.
// ABOUTME: Uses reader and text sources with an in-memory capture store.
package capture

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/2389-research/seam/internal/models"
)

type memStore struct {
	current *models.Capture
}

func (m *memStore) Capture() (*models.Capture, error) { return m.current, nil }

func (m *memStore) SaveCapture(c *models.Capture) error {
	m.current = c
	return nil
}

type failingSource struct{}

func (failingSource) SelectedText(context.Context) (string, error) {
	return "", errors.New("boom")
}

func TestCaptureFromReader(t *testing.T) {
	store := &memStore{}
	c := New(store)

	got, err := c.Capture(context.Background(), ReaderSource{R: strings.NewReader("  First line.\r\n\n\n\nSecond line.  \n")}, " https://example.com/chat ")
	if err != nil {
		t.Fatalf("Capture error: %v", err)
	}
	if got.Text != "First line.\n\nSecond line." {
		t.Errorf("text = %q", got.Text)
	}
	if got.URL != "https://example.com/chat" {
		t.Errorf("url = %q", got.URL)
	}
	if got.CapturedAt.IsZero() {
		t.Error("expected capture timestamp")
	}
	if store.current != got {
		t.Error("expected capture to be stored")
	}
}

func TestCaptureReducesHTML(t *testing.T) {
	c := New(&memStore{})
	got, err := c.Capture(context.Background(), TextSource("<p>Hello <b>there</b></p><p>General Kenobi</p>"), "")
	if err != nil {
		t.Fatalf("Capture error: %v", err)
	}
	if got.Text != "Hello there\n\nGeneral Kenobi" {
		t.Errorf("text = %q", got.Text)
	}
}

func TestCaptureRejectsShortAndEmpty(t *testing.T) {
	store := &memStore{}
	c := New(store)

	if _, err := c.Capture(context.Background(), TextSource("   "), ""); !errors.Is(err, ErrNothingSelected) {
		t.Errorf("expected ErrNothingSelected, got %v", err)
	}
	if _, err := c.Capture(context.Background(), TextSource("too short"), ""); !errors.Is(err, ErrCaptureTooShort) {
		t.Errorf("expected ErrCaptureTooShort, got %v", err)
	}
	if _, err := c.Capture(context.Background(), TextSource("ten chars!"), ""); err != nil {
		t.Errorf("exactly ten characters should be accepted: %v", err)
	}
	if _, err := c.Capture(context.Background(), failingSource{}, ""); err == nil {
		t.Error("expected source error")
	}
}

func TestCaptureReplacesPrevious(t *testing.T) {
	store := &memStore{}
	c := New(store)

	if _, err := c.Current(); !errors.Is(err, ErrNoCapture) {
		t.Errorf("expected ErrNoCapture, got %v", err)
	}

	first, _ := c.Capture(context.Background(), TextSource("the first capture"), "")
	second, _ := c.Capture(context.Background(), TextSource("the second capture"), "")
	cur, err := c.Current()
	if err != nil {
		t.Fatalf("Current error: %v", err)
	}
	if cur.ID != second.ID || cur.ID == first.ID {
		t.Error("expected the second capture to replace the first")
	}
}
