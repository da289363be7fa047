// ABOUTME: Session state (capture, thread, settings, credentials) kept in an injected state store.
// ABOUTME: Encodes each value as JSON under a fixed key so it survives restarts of the CLI or MCP server.
package session

import (
	"encoding/json"
	"fmt"

	"github.com/2389-research/seam/internal/models"
	"github.com/2389-research/seam/internal/storage"
)

// State store keys.
const (
	KeyCapture           = "capture"
	KeyThread            = "thread"
	KeySettings          = "settings"
	KeyAccessToken       = "x_access_token"
	KeyAccessTokenSecret = "x_access_token_secret"
	KeyUser              = "x_user"
	KeyPendingSecret     = "oauth_token_secret"
)

// Session is the explicit replacement for ambient global state: every
// command and tool reads and writes through one of these.
type Session struct {
	store storage.StateStore
}

// New wraps a state store.
func New(store storage.StateStore) (*Session, error) {
	if store == nil {
		return nil, fmt.Errorf("state store is required")
	}
	return &Session{store: store}, nil
}

// Close closes the underlying store.
func (s *Session) Close() error {
	return s.store.Close()
}

// Capture returns the current capture, or nil if nothing has been captured.
func (s *Session) Capture() (*models.Capture, error) {
	var c models.Capture
	ok, err := s.getJSON(KeyCapture, &c)
	if err != nil || !ok {
		return nil, err
	}
	return &c, nil
}

// SaveCapture replaces the current capture.
func (s *Session) SaveCapture(c *models.Capture) error {
	return s.setJSON(KeyCapture, c)
}

// Thread returns the stored segments. An empty slice means no thread yet.
func (s *Session) Thread() ([]string, error) {
	var segments []string
	if _, err := s.getJSON(KeyThread, &segments); err != nil {
		return nil, err
	}
	return segments, nil
}

// SaveThread replaces the stored segments.
func (s *Session) SaveThread(segments []string) error {
	if segments == nil {
		segments = []string{}
	}
	return s.setJSON(KeyThread, segments)
}

// Settings returns the stored settings, or defaults.
func (s *Session) Settings() (models.Settings, error) {
	var st models.Settings
	if _, err := s.getJSON(KeySettings, &st); err != nil {
		return models.Settings{}, err
	}
	return st, nil
}

// SaveSettings replaces the stored settings.
func (s *Session) SaveSettings(st models.Settings) error {
	return s.setJSON(KeySettings, st)
}

// ClearAll removes capture, thread, and settings. Credentials are kept.
func (s *Session) ClearAll() error {
	return s.store.Remove(KeyCapture, KeyThread, KeySettings)
}

// Credentials returns the stored access credentials, or nil when disconnected.
func (s *Session) Credentials() (*models.Credentials, error) {
	vals, err := s.store.Get(KeyAccessToken, KeyAccessTokenSecret, KeyUser)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}
	token, secret, user := vals[KeyAccessToken], vals[KeyAccessTokenSecret], vals[KeyUser]
	if token == "" || secret == "" || user == "" {
		return nil, nil
	}

	var id models.Identity
	if err := json.Unmarshal([]byte(user), &id); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", KeyUser, err)
	}
	return &models.Credentials{
		AccessToken:       token,
		AccessTokenSecret: secret,
		Identity:          id,
	}, nil
}

// SaveCredentials stores the token pair and identity in a single store call.
func (s *Session) SaveCredentials(c models.Credentials) error {
	user, err := json.Marshal(c.Identity)
	if err != nil {
		return fmt.Errorf("failed to encode identity: %w", err)
	}
	return s.store.Set(map[string]string{
		KeyAccessToken:       c.AccessToken,
		KeyAccessTokenSecret: c.AccessTokenSecret,
		KeyUser:              string(user),
	})
}

// ClearCredentials forgets the connected account.
func (s *Session) ClearCredentials() error {
	return s.store.Remove(KeyAccessToken, KeyAccessTokenSecret, KeyUser)
}

// PendingTokenSecret returns the request-token secret held between handshake steps.
func (s *Session) PendingTokenSecret() (string, error) {
	vals, err := s.store.Get(KeyPendingSecret)
	if err != nil {
		return "", fmt.Errorf("failed to read pending handshake: %w", err)
	}
	return vals[KeyPendingSecret], nil
}

// SetPendingTokenSecret stores the request-token secret.
func (s *Session) SetPendingTokenSecret(secret string) error {
	return s.store.Set(map[string]string{KeyPendingSecret: secret})
}

// ClearPendingTokenSecret discards the request-token secret.
func (s *Session) ClearPendingTokenSecret() error {
	return s.store.Remove(KeyPendingSecret)
}

func (s *Session) getJSON(key string, v any) (bool, error) {
	vals, err := s.store.Get(key)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	raw, ok := vals[key]
	if !ok || raw == "" {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

func (s *Session) setJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.store.Set(map[string]string{key: string(data)}); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
