// ABOUTME: Interface definition for the key/value state store.
// ABOUTME: Defines the get/set/remove contract that session state is persisted through.
package storage

import (
	"fmt"

	"github.com/2389-research/seam/internal/config"
)

// StateStore is a durable key/value store. Each call is applied atomically,
// but there is no transaction spanning separate calls.
type StateStore interface {
	// Get returns the values for the given keys. Missing keys are absent from the map.
	Get(keys ...string) (map[string]string, error)

	// Set writes every key in values.
	Set(values map[string]string) error

	// Remove deletes the given keys. Removing a missing key is not an error.
	Remove(keys ...string) error

	// Close releases any resources held by the store.
	Close() error
}

// Open returns the state store selected by the config.
func Open(cfg *config.Config) (StateStore, error) {
	path, err := cfg.GetStatePath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve state path: %w", err)
	}

	switch cfg.StateDriver() {
	case config.DriverYAML:
		return NewYAMLStateStore(path)
	case config.DriverSQLite:
		return NewSQLiteStateStore(path)
	default:
		return nil, fmt.Errorf("unknown state driver %q", cfg.StateDriver())
	}
}
