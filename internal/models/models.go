// ABOUTME: Core data models for captures, threads, credentials, and publish results.
// ABOUTME: Provides constructor functions and type definitions shared across seam packages.
package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Capture is a piece of plain text captured from a page, plus where and when it came from.
type Capture struct {
	ID         uuid.UUID `json:"id"`
	Text       string    `json:"text"`
	URL        string    `json:"url,omitempty"`
	CapturedAt time.Time `json:"captured_at"`
}

// NewCapture creates a capture with generated UUID and timestamp.
func NewCapture(text, sourceURL string) *Capture {
	return &Capture{
		ID:         uuid.New(),
		Text:       text,
		URL:        sourceURL,
		CapturedAt: time.Now(),
	}
}

// Settings holds user preferences that live next to the thread in the state store.
type Settings struct {
	Numbering bool `json:"numbering"`
}

// Identity is the authorized X account.
type Identity struct {
	UserID     string `json:"id"`
	ScreenName string `json:"username"`
}

// Handle returns the account's @handle, or an empty string when unknown.
func (i Identity) Handle() string {
	if i.ScreenName == "" {
		return ""
	}
	return "@" + i.ScreenName
}

// Credentials is the long-lived access token pair granted by a completed handshake.
type Credentials struct {
	AccessToken       string
	AccessTokenSecret string
	Identity          Identity
}

// Valid reports whether both halves of the token pair are present.
func (c *Credentials) Valid() bool {
	return c != nil && c.AccessToken != "" && c.AccessTokenSecret != ""
}

// Status reports whether an account is connected, without touching the network.
type Status struct {
	Connected bool
	Identity  *Identity
}

// Post is a post created on the platform.
type Post struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// PublishResult is the outcome of publishing a single segment.
type PublishResult struct {
	Index   int
	Success bool
	Post    *Post
	Error   string
}

// PostID returns the created post ID, or an empty string on failure.
func (r PublishResult) PostID() string {
	if r.Post == nil {
		return ""
	}
	return r.Post.ID
}

// String renders the result as a single status line.
func (r PublishResult) String() string {
	if r.Success {
		return fmt.Sprintf("segment %d: posted %s", r.Index+1, r.PostID())
	}
	return fmt.Sprintf("segment %d: failed: %s", r.Index+1, r.Error)
}
