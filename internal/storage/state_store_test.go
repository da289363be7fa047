// ABOUTME: Tests for the SQLite and YAML state store implementations.
// ABOUTME: Runs the same get/set/remove contract against both and checks durability across reopen.
package storage

import (
	"path/filepath"
	"testing"

	"github.com/2389-research/seam/internal/config"
)

type storeFactory func(t *testing.T, path string) StateStore

var stateStores = map[string]struct {
	file string
	open storeFactory
}{
	"sqlite": {"state.db", func(t *testing.T, path string) StateStore {
		t.Helper()
		s, err := NewSQLiteStateStore(path)
		if err != nil {
			t.Fatalf("NewSQLiteStateStore error: %v", err)
		}
		return s
	}},
	"yaml": {"state.yaml", func(t *testing.T, path string) StateStore {
		t.Helper()
		s, err := NewYAMLStateStore(path)
		if err != nil {
			t.Fatalf("NewYAMLStateStore error: %v", err)
		}
		return s
	}},
}

func TestStateStoreContract(t *testing.T) {
	for name, f := range stateStores {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", f.file)
			store := f.open(t, path)
			defer func() { _ = store.Close() }()

			got, err := store.Get("missing")
			if err != nil {
				t.Fatalf("Get error: %v", err)
			}
			if len(got) != 0 {
				t.Errorf("expected empty result for missing key, got %v", got)
			}

			if err := store.Set(map[string]string{"a": "1", "b": "two\nlines"}); err != nil {
				t.Fatalf("Set error: %v", err)
			}
			if err := store.Set(map[string]string{"a": "updated"}); err != nil {
				t.Fatalf("Set error: %v", err)
			}

			got, err = store.Get("a", "b", "c")
			if err != nil {
				t.Fatalf("Get error: %v", err)
			}
			if got["a"] != "updated" {
				t.Errorf("a: got %q, want %q", got["a"], "updated")
			}
			if got["b"] != "two\nlines" {
				t.Errorf("b: got %q, want %q", got["b"], "two\nlines")
			}
			if _, ok := got["c"]; ok {
				t.Error("expected c to be absent")
			}

			if err := store.Remove("a", "never-set"); err != nil {
				t.Fatalf("Remove error: %v", err)
			}
			got, err = store.Get("a", "b")
			if err != nil {
				t.Fatalf("Get error: %v", err)
			}
			if _, ok := got["a"]; ok {
				t.Error("expected a to be removed")
			}
			if got["b"] != "two\nlines" {
				t.Error("expected b to survive removal of a")
			}
		})
	}
}

func TestStateStoreDurableAcrossReopen(t *testing.T) {
	for name, f := range stateStores {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), f.file)

			first := f.open(t, path)
			if err := first.Set(map[string]string{"thread": `["a","b"]`}); err != nil {
				t.Fatalf("Set error: %v", err)
			}
			if err := first.Close(); err != nil {
				t.Fatalf("Close error: %v", err)
			}

			second := f.open(t, path)
			defer func() { _ = second.Close() }()
			got, err := second.Get("thread")
			if err != nil {
				t.Fatalf("Get error: %v", err)
			}
			if got["thread"] != `["a","b"]` {
				t.Errorf("expected persisted value, got %q", got["thread"])
			}
		})
	}
}

func TestOpenSelectsDriver(t *testing.T) {
	dir := t.TempDir()

	cfg := &config.Config{State: config.StateConfig{Driver: config.DriverYAML, Path: filepath.Join(dir, "s.yaml")}}
	store, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if _, ok := store.(*YAMLStateStore); !ok {
		t.Errorf("expected *YAMLStateStore, got %T", store)
	}
	_ = store.Close()

	cfg = &config.Config{State: config.StateConfig{Path: filepath.Join(dir, "s.db")}}
	store, err = Open(cfg)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if _, ok := store.(*SQLiteStateStore); !ok {
		t.Errorf("expected *SQLiteStateStore, got %T", store)
	}
	_ = store.Close()
}

func TestNewStoresRejectEmptyPath(t *testing.T) {
	if _, err := NewSQLiteStateStore(""); err == nil {
		t.Error("expected error for empty sqlite path")
	}
	if _, err := NewYAMLStateStore(""); err == nil {
		t.Error("expected error for empty yaml path")
	}
}
