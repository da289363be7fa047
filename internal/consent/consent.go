// ABOUTME: Interactive authorize step: shows the consent URL and waits for the platform redirect.
// ABOUTME: Loopback serves the callback URL locally with chi; Manual reads a pasted redirect URL.
package consent

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mdp/qrterminal/v3"
	"golang.org/x/term"

	"github.com/2389-research/seam/internal/logging"
)

// DefaultTimeout bounds how long Loopback waits for the user to approve.
const DefaultTimeout = 5 * time.Minute

var (
	// ErrTimeout means no redirect arrived before the deadline.
	ErrTimeout = errors.New("timed out waiting for authorization")

	// ErrNoRedirect means the user supplied nothing to complete the handshake with.
	ErrNoRedirect = errors.New("no redirect URL provided")
)

// Loopback receives the consent redirect on a local HTTP server bound to the callback URL.
type Loopback struct {
	Out     io.Writer
	Opener  func(string) error
	Timeout time.Duration
	Log     *logging.Logger
}

// NewLoopback creates a loopback consenter that opens the system browser.
func NewLoopback(out io.Writer) *Loopback {
	return &Loopback{
		Out:     out,
		Opener:  OpenBrowser,
		Timeout: DefaultTimeout,
		Log:     logging.Named("consent"),
	}
}

// Authorize serves callbackURL until the platform redirects back to it, then
// returns the full redirect URL including its query.
func (l *Loopback) Authorize(ctx context.Context, authorizeURL, callbackURL string) (string, error) {
	cb, err := url.Parse(callbackURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse callback url: %w", err)
	}
	if cb.Scheme != "http" || cb.Host == "" {
		return "", fmt.Errorf("loopback consent needs an http://host:port callback url, got %q", callbackURL)
	}

	log := l.Log
	if log == nil {
		log = logging.Nop()
	}

	ln, err := net.Listen("tcp", cb.Host)
	if err != nil {
		return "", fmt.Errorf("failed to listen on %s: %w", cb.Host, err)
	}

	redirects := make(chan string, 1)
	srv := &http.Server{
		Handler:           newRouter(cb, redirects),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn().Err(err).Msg("callback server stopped")
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	log.Debug().Str("addr", ln.Addr().String()).Msg("waiting for callback")

	Present(l.Out, authorizeURL)
	if l.Opener != nil {
		if err := l.Opener(authorizeURL); err != nil {
			log.Warn().Err(err).Msg("failed to open browser")
		}
	}

	timeout := l.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case redirect := <-redirects:
		return redirect, nil
	case <-ctx.Done():
		return "", ctx.Err()
	case <-timer.C:
		return "", ErrTimeout
	}
}

// newRouter answers the callback path and forwards the first redirect it sees.
func newRouter(cb *url.URL, redirects chan<- string) http.Handler {
	base := *cb
	base.RawQuery = ""
	base.Fragment = ""

	handler := func(w http.ResponseWriter, r *http.Request) {
		redirect := base.String()
		if r.URL.RawQuery != "" {
			redirect += "?" + r.URL.RawQuery
		}
		select {
		case redirects <- redirect:
		default:
		}

		msg := "Authorization received. You can close this window and return to the terminal."
		if r.URL.Query().Has("denied") {
			msg = "Authorization was denied. You can close this window."
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = fmt.Fprintf(w, "<!doctype html><title>seam</title><p>%s</p>\n", msg)
	}

	r := chi.NewRouter()
	path := cb.Path
	if path == "" {
		path = "/"
	}
	r.Get(path, handler)
	if trimmed := strings.TrimSuffix(path, "/"); trimmed != "" && trimmed != path {
		r.Get(trimmed, handler)
	}
	return r
}

// Manual prints the authorize URL and reads the redirect URL the user pastes back.
// If In is an io.Closer it is closed when the context ends before a line arrives,
// so the pending read returns.
type Manual struct {
	In     io.Reader
	Out    io.Writer
	Opener func(string) error
}

// Authorize prompts for the redirect URL. A bare query string is accepted too.
func (m *Manual) Authorize(ctx context.Context, authorizeURL, callbackURL string) (string, error) {
	Present(m.Out, authorizeURL)
	if m.Opener != nil {
		_ = m.Opener(authorizeURL)
	}
	_, _ = fmt.Fprintf(m.Out, "After approving, paste the URL you were redirected to (it starts with %s):\n> ", callbackURL)

	lines := make(chan string, 1)
	errs := make(chan error, 1)
	go func() {
		line, err := bufio.NewReader(m.In).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			errs <- err
			return
		}
		lines <- line
	}()

	var line string
	select {
	case line = <-lines:
	case err := <-errs:
		return "", fmt.Errorf("failed to read redirect url: %w", err)
	case <-ctx.Done():
		if c, ok := m.In.(io.Closer); ok {
			_ = c.Close()
		}
		return "", ctx.Err()
	}

	line = strings.TrimSpace(line)
	if line == "" {
		return "", ErrNoRedirect
	}
	if !strings.Contains(line, "://") {
		line = strings.TrimSuffix(callbackURL, "?") + "?" + strings.TrimPrefix(line, "?")
	}
	return line, nil
}

// Present prints the authorize URL, plus a QR code when w is a terminal.
func Present(w io.Writer, authorizeURL string) {
	if w == nil {
		return
	}
	_, _ = fmt.Fprintf(w, "Open this URL to authorize seam:\n\n  %s\n\n", authorizeURL)
	if IsTerminal(w) {
		qrterminal.GenerateHalfBlock(authorizeURL, qrterminal.L, w)
		_, _ = fmt.Fprintln(w)
	}
}

// IsTerminal reports whether w is a file attached to a terminal.
func IsTerminal(w any) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// OpenBrowser opens u in the system browser.
func OpenBrowser(u string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", u)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", u)
	default:
		cmd = exec.Command("xdg-open", u)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start browser: %w", err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
