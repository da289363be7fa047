// ABOUTME: Token broker running the three-legged OAuth 1.0a handshake and signing API requests.
// ABOUTME: Owns the credential pair; callers only ever receive signed Authorization headers.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/2389-research/seam/internal/logging"
	"github.com/2389-research/seam/internal/models"
)

const maxResponseBytes = 64 << 10

// CredentialStore persists the credential pair and the pending handshake secret.
type CredentialStore interface {
	Credentials() (*models.Credentials, error)
	SaveCredentials(models.Credentials) error
	ClearCredentials() error
	PendingTokenSecret() (string, error)
	SetPendingTokenSecret(string) error
	ClearPendingTokenSecret() error
}

// Consenter runs the interactive authorize step. It returns the callback URL the
// platform redirected to, which carries either oauth_verifier or denied.
type Consenter interface {
	Authorize(ctx context.Context, authorizeURL, callbackURL string) (string, error)
}

// Endpoints are the three handshake URLs plus the fixed callback URL.
type Endpoints struct {
	RequestTokenURL string
	AuthorizeURL    string
	AccessTokenURL  string
	CallbackURL     string
}

// Authorization is the outcome of the request-token step.
type Authorization struct {
	RequestToken string
	URL          string
}

// ConnectResult is the settled outcome of a full connect attempt.
type ConnectResult struct {
	Success  bool
	Denied   bool
	Identity *models.Identity
	Message  string
}

// Broker runs the handshake and signs requests with the stored access token.
type Broker struct {
	signer    *Signer
	endpoints Endpoints
	store     CredentialStore
	client    *http.Client
	log       *logging.Logger
}

// BrokerOption customizes a Broker.
type BrokerOption func(*Broker)

// WithHTTPClient sets the client used for handshake calls.
func WithHTTPClient(c *http.Client) BrokerOption {
	return func(b *Broker) { b.client = c }
}

// WithLogger sets the broker logger.
func WithLogger(l *logging.Logger) BrokerOption {
	return func(b *Broker) { b.log = l }
}

// NewBroker creates a broker. The callback URL is normalized to end with a slash.
func NewBroker(signer *Signer, endpoints Endpoints, store CredentialStore, opts ...BrokerOption) (*Broker, error) {
	if signer == nil || signer.ConsumerKey == "" || signer.ConsumerSecret == "" {
		return nil, fmt.Errorf("consumer key and secret are required")
	}
	if store == nil {
		return nil, fmt.Errorf("credential store is required")
	}
	if !strings.HasSuffix(endpoints.CallbackURL, "/") {
		endpoints.CallbackURL += "/"
	}

	b := &Broker{
		signer:    signer,
		endpoints: endpoints,
		store:     store,
		client:    &http.Client{Timeout: 30 * time.Second},
		log:       logging.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// BeginHandshake obtains a request token, stores its secret as pending state,
// and returns the authorize URL to send the user to.
func (b *Broker) BeginHandshake(ctx context.Context) (*Authorization, error) {
	token, secret, err := RequestToken(ctx, b.client, b.signer, b.endpoints.RequestTokenURL, b.endpoints.CallbackURL)
	if err != nil {
		return nil, err
	}
	if err := b.store.SetPendingTokenSecret(secret); err != nil {
		return nil, fmt.Errorf("failed to store pending handshake: %w", err)
	}

	authURL, err := AuthorizeURL(b.endpoints.AuthorizeURL, token)
	if err != nil {
		_ = b.store.ClearPendingTokenSecret()
		return nil, err
	}
	b.log.Debug().Str("request_token", logging.TokenPrefix(token)).Msg("request token obtained")
	return &Authorization{RequestToken: token, URL: authURL}, nil
}

// CompleteHandshake exchanges the verifier in callbackURL for access credentials,
// stores them, and returns the account identity. The pending secret is cleared on
// every exit path.
func (b *Broker) CompleteHandshake(ctx context.Context, callbackURL string) (*models.Identity, error) {
	defer func() {
		if err := b.store.ClearPendingTokenSecret(); err != nil {
			b.log.Warn().Err(err).Msg("failed to clear pending handshake")
		}
	}()

	token, verifier, err := ParseCallback(callbackURL)
	if err != nil {
		return nil, err
	}

	pending, err := b.store.PendingTokenSecret()
	if err != nil {
		return nil, fmt.Errorf("failed to read pending handshake: %w", err)
	}
	if pending == "" {
		return nil, handshakeErr(StepAccessToken, "no pending handshake; start a new connection")
	}

	auth, err := b.signer.Sign(http.MethodPost, b.endpoints.AccessTokenURL, map[string]string{
		"oauth_token":    token,
		"oauth_verifier": verifier,
	}, nil, pending)
	if err != nil {
		return nil, &HandshakeError{Step: StepAccessToken, Err: err}
	}

	vals, err := postForm(ctx, b.client, StepAccessToken, b.endpoints.AccessTokenURL, auth)
	if err != nil {
		return nil, err
	}

	creds := models.Credentials{
		AccessToken:       vals.Get("oauth_token"),
		AccessTokenSecret: vals.Get("oauth_token_secret"),
		Identity: models.Identity{
			UserID:     vals.Get("user_id"),
			ScreenName: vals.Get("screen_name"),
		},
	}
	if !creds.Valid() {
		return nil, handshakeErr(StepAccessToken, "response is missing oauth_token or oauth_token_secret")
	}
	if err := b.store.SaveCredentials(creds); err != nil {
		return nil, fmt.Errorf("failed to store credentials: %w", err)
	}

	b.log.Info().Str("user", creds.Identity.Handle()).Msg("connected")
	return &creds.Identity, nil
}

// Connect runs the full handshake through consenter. Every error is folded into the result.
func (b *Broker) Connect(ctx context.Context, consenter Consenter) ConnectResult {
	authz, err := b.BeginHandshake(ctx)
	if err != nil {
		return ConnectResult{Message: err.Error()}
	}

	redirect, err := consenter.Authorize(ctx, authz.URL, b.endpoints.CallbackURL)
	if err != nil {
		_ = b.store.ClearPendingTokenSecret()
		return ConnectResult{Message: fmt.Sprintf("authorization failed: %v", err)}
	}

	id, err := b.CompleteHandshake(ctx, redirect)
	if errors.Is(err, ErrAuthorizationDenied) {
		return ConnectResult{Denied: true, Message: "Authorization was denied."}
	}
	if err != nil {
		return ConnectResult{Message: err.Error()}
	}
	return ConnectResult{Success: true, Identity: id, Message: "Connected as " + id.Handle()}
}

// Disconnect forgets the credential pair.
func (b *Broker) Disconnect() error {
	if err := b.store.ClearCredentials(); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	b.log.Info().Msg("disconnected")
	return nil
}

// Status reports whether an account is connected. It never touches the network.
func (b *Broker) Status() (models.Status, error) {
	creds, err := b.store.Credentials()
	if err != nil {
		return models.Status{}, err
	}
	if !creds.Valid() {
		return models.Status{}, nil
	}
	id := creds.Identity
	return models.Status{Connected: true, Identity: &id}, nil
}

// AuthorizationHeader signs a request with the stored access token. params are the
// request parameters the signature must cover; pass nil for JSON bodies.
func (b *Broker) AuthorizationHeader(_ context.Context, method, rawURL string, params map[string]string) (string, error) {
	creds, err := b.store.Credentials()
	if err != nil {
		return "", err
	}
	if !creds.Valid() {
		return "", ErrNotAuthorized
	}
	return b.signer.Sign(method, rawURL, map[string]string{"oauth_token": creds.AccessToken}, params, creds.AccessTokenSecret)
}

// RequestToken performs the request-token step and returns the token and its secret.
// It does not store anything, so it doubles as a credential check.
func RequestToken(ctx context.Context, client *http.Client, signer *Signer, requestTokenURL, callbackURL string) (string, string, error) {
	auth, err := signer.Sign(http.MethodPost, requestTokenURL, map[string]string{"oauth_callback": callbackURL}, nil, "")
	if err != nil {
		return "", "", &HandshakeError{Step: StepRequestToken, Err: err}
	}

	vals, err := postForm(ctx, client, StepRequestToken, requestTokenURL, auth)
	if err != nil {
		return "", "", err
	}
	if vals.Get("oauth_callback_confirmed") != "true" {
		return "", "", handshakeErr(StepRequestToken, "callback not confirmed")
	}

	token, secret := vals.Get("oauth_token"), vals.Get("oauth_token_secret")
	if token == "" || secret == "" {
		return "", "", handshakeErr(StepRequestToken, "response is missing oauth_token or oauth_token_secret")
	}
	return token, secret, nil
}

// AuthorizeURL appends the request token to the platform's authorize page URL.
func AuthorizeURL(base, requestToken string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", &HandshakeError{Step: StepAuthorize, Err: err}
	}
	q := u.Query()
	q.Set("oauth_token", requestToken)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// ParseCallback extracts the token and verifier from the consent redirect.
func ParseCallback(callbackURL string) (token, verifier string, err error) {
	u, err := url.Parse(callbackURL)
	if err != nil {
		return "", "", &HandshakeError{Step: StepAuthorize, Err: err}
	}
	q := u.Query()
	if q.Has("denied") {
		return "", "", ErrAuthorizationDenied
	}
	verifier = q.Get("oauth_verifier")
	if verifier == "" {
		return "", "", handshakeErr(StepAuthorize, "callback is missing oauth_verifier")
	}
	token = q.Get("oauth_token")
	if token == "" {
		return "", "", handshakeErr(StepAuthorize, "callback is missing oauth_token")
	}
	return token, verifier, nil
}

// postForm sends a signed, bodiless POST and parses the form-encoded response.
func postForm(ctx context.Context, client *http.Client, step, endpoint, auth string) (url.Values, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return nil, &HandshakeError{Step: step, Err: err}
	}
	req.Header.Set("Authorization", auth)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := client.Do(req)
	if err != nil {
		return nil, &HandshakeError{Step: step, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &HandshakeError{Step: step, StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HandshakeError{Step: step, StatusCode: resp.StatusCode, Detail: strings.TrimSpace(string(body))}
	}

	vals, err := url.ParseQuery(strings.TrimSpace(string(body)))
	if err != nil {
		return nil, &HandshakeError{Step: step, StatusCode: resp.StatusCode, Detail: "malformed response", Err: err}
	}
	return vals, nil
}
