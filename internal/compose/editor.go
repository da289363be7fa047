// ABOUTME: Thread editor applying generate/edit/insert/delete/move/split to the stored thread.
// ABOUTME: Every mutation is read-modify-write through the injected ThreadStore.
package compose

import (
	"fmt"
	"slices"
	"strings"

	"github.com/2389-research/seam/internal/logging"
	"github.com/2389-research/seam/internal/models"
)

// ThreadStore persists the segment sequence and settings.
type ThreadStore interface {
	Thread() ([]string, error)
	SaveThread([]string) error
	Settings() (models.Settings, error)
	SaveSettings(models.Settings) error
}

// Direction is the way a segment moves.
type Direction int

const (
	Up   Direction = -1
	Down Direction = 1
)

// ParseDirection accepts "up" or "down".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up":
		return Up, nil
	case "down":
		return Down, nil
	}
	return 0, fmt.Errorf("direction must be up or down, got %q", s)
}

// Editor edits the stored thread. Indexes are zero-based.
type Editor struct {
	store ThreadStore
	log   *logging.Logger
}

// NewEditor creates an editor over store.
func NewEditor(store ThreadStore) *Editor {
	return &Editor{store: store, log: logging.Named("compose")}
}

// Segments returns the stored thread.
func (e *Editor) Segments() ([]string, error) {
	return e.store.Thread()
}

// Settings returns the stored settings.
func (e *Editor) Settings() (models.Settings, error) {
	return e.store.Settings()
}

// Generate replaces the thread with segments generated from text.
func (e *Editor) Generate(text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	st, err := e.store.Settings()
	if err != nil {
		return nil, err
	}
	segments := GenerateThread(text, st.Numbering)
	if err := e.store.SaveThread(segments); err != nil {
		return nil, fmt.Errorf("failed to save thread: %w", err)
	}
	e.log.Debug().Int("segments", len(segments)).Bool("numbering", st.Numbering).Msg("thread generated")
	return segments, nil
}

// Edit replaces the text of one segment. Any string is accepted.
func (e *Editor) Edit(index int, text string) ([]string, error) {
	return e.mutate(index, func(t []string) ([]string, error) {
		t[index] = text
		return t, nil
	})
}

// Insert adds an empty segment right after index.
func (e *Editor) Insert(index int) ([]string, error) {
	return e.mutate(index, func(t []string) ([]string, error) {
		return slices.Insert(t, index+1, ""), nil
	})
}

// Delete removes a segment. The last remaining segment cannot be deleted.
func (e *Editor) Delete(index int) ([]string, error) {
	return e.mutate(index, func(t []string) ([]string, error) {
		if len(t) <= 1 {
			return nil, ErrLastSegment
		}
		return slices.Delete(t, index, index+1), nil
	})
}

// Move swaps a segment with its neighbour in dir.
func (e *Editor) Move(index int, dir Direction) ([]string, error) {
	return e.mutate(index, func(t []string) ([]string, error) {
		j := index + int(dir)
		if dir == 0 || j < 0 || j >= len(t) {
			return nil, ErrCannotMove
		}
		t[index], t[j] = t[j], t[index]
		return t, nil
	})
}

// Split replaces an oversized segment with the pieces SmartSplit produces.
func (e *Editor) Split(index int) ([]string, error) {
	st, err := e.store.Settings()
	if err != nil {
		return nil, err
	}
	limit := Limit(st.Numbering)
	return e.mutate(index, func(t []string) ([]string, error) {
		text := t[index]
		if strings.TrimSpace(text) == "" {
			return nil, ErrNothingToSplit
		}
		if Length(text) <= limit {
			return nil, ErrAlreadyFits
		}
		parts := SmartSplit(text, limit)
		if len(parts) < 2 {
			return nil, ErrCannotSplit
		}
		return slices.Replace(t, index, index+1, parts...), nil
	})
}

// SetNumbering toggles the display-time numbering prefix. Stored segments are untouched.
func (e *Editor) SetNumbering(on bool) (models.Settings, error) {
	st, err := e.store.Settings()
	if err != nil {
		return models.Settings{}, err
	}
	st.Numbering = on
	if err := e.store.SaveSettings(st); err != nil {
		return models.Settings{}, fmt.Errorf("failed to save settings: %w", err)
	}
	return st, nil
}

// Display returns the stored thread as it will be posted.
func (e *Editor) Display() ([]string, error) {
	thread, err := e.store.Thread()
	if err != nil {
		return nil, err
	}
	st, err := e.store.Settings()
	if err != nil {
		return nil, err
	}
	return Display(thread, st.Numbering), nil
}

// Prepared validates the stored thread and returns the texts to publish.
func (e *Editor) Prepared() ([]string, error) {
	thread, err := e.store.Thread()
	if err != nil {
		return nil, err
	}
	st, err := e.store.Settings()
	if err != nil {
		return nil, err
	}
	if err := Validate(thread, st.Numbering); err != nil {
		return nil, err
	}
	return Display(thread, st.Numbering), nil
}

func (e *Editor) mutate(index int, fn func([]string) ([]string, error)) ([]string, error) {
	thread, err := e.store.Thread()
	if err != nil {
		return nil, err
	}
	if len(thread) == 0 {
		return nil, ErrNoThread
	}
	if index < 0 || index >= len(thread) {
		return nil, indexErr(index, len(thread))
	}

	updated, err := fn(slices.Clone(thread))
	if err != nil {
		return nil, err
	}
	if err := e.store.SaveThread(updated); err != nil {
		return nil, fmt.Errorf("failed to save thread: %w", err)
	}
	return updated, nil
}
