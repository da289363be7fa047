// ABOUTME: YAML-file state store for setups that want a human-readable state file.
// ABOUTME: Rewrites the whole file atomically (temp file + rename) on every mutation.
package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// YAMLStateStore keeps all state in a single YAML mapping on disk.
type YAMLStateStore struct {
	path string
}

// NewYAMLStateStore creates a store backed by the file at path. The file is created lazily.
func NewYAMLStateStore(path string) (*YAMLStateStore, error) {
	if path == "" {
		return nil, fmt.Errorf("yaml state store: path is empty")
	}
	return &YAMLStateStore{path: path}, nil
}

// Get returns the values for keys.
func (s *YAMLStateStore) Get(keys ...string) (map[string]string, error) {
	all, err := s.read()
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := all[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

// Set merges values into the file.
func (s *YAMLStateStore) Set(values map[string]string) error {
	all, err := s.read()
	if err != nil {
		return err
	}
	for k, v := range values {
		all[k] = v
	}
	return s.write(all)
}

// Remove deletes keys from the file.
func (s *YAMLStateStore) Remove(keys ...string) error {
	all, err := s.read()
	if err != nil {
		return err
	}
	for _, k := range keys {
		delete(all, k)
	}
	return s.write(all)
}

// Close releases any resources held by the store.
func (s *YAMLStateStore) Close() error {
	return nil
}

func (s *YAMLStateStore) read() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}
	all := map[string]string{}
	if err := yaml.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}
	return all, nil
}

func (s *YAMLStateStore) write(all map[string]string) error {
	data, err := yaml.Marshal(all)
	if err != nil {
		return fmt.Errorf("failed to render state file: %w", err)
	}
	return atomicWrite(s.path, data)
}

// atomicWrite writes data to a temp file in the target directory and renames it into place.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	return os.Rename(tmpName, path)
}
