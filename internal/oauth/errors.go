// ABOUTME: Error kinds surfaced by the OAuth handshake and token broker.
// ABOUTME: HandshakeError carries the failing step; sentinels cover denial and missing credentials.
package oauth

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthorizationDenied means the user declined consent on the authorize page.
	ErrAuthorizationDenied = errors.New("authorization denied by user")

	// ErrNotAuthorized means no access credentials are stored.
	ErrNotAuthorized = errors.New("not connected to X - run 'seam auth connect' first")
)

// Handshake steps, used in HandshakeError.
const (
	StepRequestToken = "request_token"
	StepAuthorize    = "authorize"
	StepAccessToken  = "access_token"
)

// HandshakeError is a malformed, unconfirmed, or failed response at any handshake step.
type HandshakeError struct {
	Step       string
	StatusCode int
	Detail     string
	Err        error
}

func (e *HandshakeError) Error() string {
	msg := "handshake failed at " + e.Step
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (HTTP %d)", e.StatusCode)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *HandshakeError) Unwrap() error { return e.Err }

func handshakeErr(step, format string, args ...any) *HandshakeError {
	return &HandshakeError{Step: step, Detail: fmt.Sprintf(format, args...)}
}
