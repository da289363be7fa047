// ABOUTME: X API v2 client that creates a single post, optionally as a reply.
// ABOUTME: Maps HTTP failures to APIError kinds with user-facing messages and retry-after hints.
package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/2389-research/seam/internal/logging"
	"github.com/2389-research/seam/internal/models"
)

// DefaultRetryAfter is used when a rate-limited response has no usable Retry-After header.
const DefaultRetryAfter = 60 * time.Second

const maxResponseBytes = 1 << 20

// Kind classifies publish failures.
type Kind int

const (
	KindOther Kind = iota
	KindRateLimited
	KindUnauthorized
	KindForbidden
	KindProtocol
	KindNetwork
)

func (k Kind) String() string {
	switch k {
	case KindRateLimited:
		return "rate_limited"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindProtocol:
		return "protocol"
	case KindNetwork:
		return "network"
	default:
		return "other"
	}
}

// APIError is a failed publish call.
type APIError struct {
	Kind       Kind
	StatusCode int
	Message    string
	RetryAfter time.Duration
	Err        error
}

func (e *APIError) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

func (e *APIError) Unwrap() error { return e.Err }

// Authorizer produces a signed Authorization header for a request.
type Authorizer interface {
	AuthorizationHeader(ctx context.Context, method, rawURL string, params map[string]string) (string, error)
}

// Poster creates one post, replying to replyTo when it is non-empty.
type Poster interface {
	Post(ctx context.Context, text, replyTo string) (*models.Post, error)
}

// Client posts to the X API.
type Client struct {
	apiURL string
	auth   Authorizer
	client *http.Client
	log    *logging.Logger
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.client = hc }
}

// WithClientLogger sets the client logger.
func WithClientLogger(l *logging.Logger) ClientOption {
	return func(c *Client) { c.log = l }
}

// NewClient creates a client for the API rooted at apiURL.
func NewClient(apiURL string, auth Authorizer, opts ...ClientOption) *Client {
	c := &Client{
		apiURL: strings.TrimRight(apiURL, "/"),
		auth:   auth,
		client: &http.Client{Timeout: 30 * time.Second},
		log:    logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type createRequest struct {
	Text  string `json:"text"`
	Reply *reply `json:"reply,omitempty"`
}

type reply struct {
	InReplyToTweetID string `json:"in_reply_to_tweet_id"`
}

type createResponse struct {
	Data *models.Post `json:"data"`
}

type errorResponse struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Post creates a post. The JSON body is not covered by the OAuth signature.
func (c *Client) Post(ctx context.Context, text, replyTo string) (*models.Post, error) {
	endpoint := c.apiURL + "/tweets"

	auth, err := c.auth.AuthorizationHeader(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return nil, err
	}

	payload := createRequest{Text: text}
	if replyTo != "" {
		payload.Reply = &reply{InReplyToTweetID: replyTo}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal post: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", auth)
	req.Header.Set("Content-Type", "application/json")

	c.log.Debug().Int("chars", len([]rune(text))).Bool("reply", replyTo != "").Msg("posting")
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &APIError{Kind: KindNetwork, Message: fmt.Sprintf("request failed: %v", err), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &APIError{Kind: KindNetwork, StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read response: %v", err), Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := mapError(resp.StatusCode, resp.Header, respBody)
		c.log.Warn().Int("status", resp.StatusCode).Str("kind", apiErr.Kind.String()).Msg("post failed")
		return nil, apiErr
	}

	var created createResponse
	if err := json.Unmarshal(respBody, &created); err != nil {
		return nil, &APIError{Kind: KindProtocol, StatusCode: resp.StatusCode, Message: "malformed response from X", Err: err}
	}
	if created.Data == nil || created.Data.ID == "" {
		return nil, &APIError{Kind: KindProtocol, StatusCode: resp.StatusCode, Message: "response from X has no post id"}
	}
	c.log.Debug().Str("id", created.Data.ID).Msg("posted")
	return created.Data, nil
}

// mapError turns a non-2xx response into an APIError.
func mapError(status int, header http.Header, body []byte) *APIError {
	var parsed errorResponse
	parseErr := json.Unmarshal(body, &parsed)
	detail := parsed.Detail
	if detail == "" {
		detail = parsed.Title
	}
	if detail == "" && len(parsed.Errors) > 0 {
		detail = parsed.Errors[0].Message
	}

	switch status {
	case http.StatusUnauthorized:
		return &APIError{Kind: KindUnauthorized, StatusCode: status, Message: "Unauthorized: Please reconnect to X."}
	case http.StatusForbidden:
		msg := "Forbidden: Your app may not have permission to post tweets."
		if detail != "" {
			msg += " (" + detail + ")"
		}
		return &APIError{Kind: KindForbidden, StatusCode: status, Message: msg}
	case http.StatusTooManyRequests:
		wait := ParseRetryAfter(header.Get("Retry-After"), time.Now())
		return &APIError{
			Kind:       KindRateLimited,
			StatusCode: status,
			RetryAfter: wait,
			Message:    fmt.Sprintf("Rate limit exceeded. Please wait %d seconds before trying again.", int((wait+time.Second-1)/time.Second)),
		}
	}

	if parseErr != nil {
		raw := strings.TrimSpace(string(body))
		if raw == "" {
			raw = http.StatusText(status)
		}
		return &APIError{Kind: KindProtocol, StatusCode: status, Message: fmt.Sprintf("X returned %d: %s", status, raw), Err: parseErr}
	}
	if detail == "" {
		detail = "Failed to post tweet"
	}
	return &APIError{Kind: KindOther, StatusCode: status, Message: detail}
}

// ParseRetryAfter reads a Retry-After value in seconds or as an HTTP date.
// Missing or unusable values mean DefaultRetryAfter.
func ParseRetryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return DefaultRetryAfter
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs <= 0 {
			return DefaultRetryAfter
		}
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := t.Sub(now); d > 0 {
			return d
		}
	}
	return DefaultRetryAfter
}

// IsRateLimited reports whether err is a rate-limit APIError.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == KindRateLimited
}
