// ABOUTME: Credential validation for the setup wizard against the X OAuth endpoints.
// ABOUTME: Performs a real signed request-token call and keeps nothing from it.
package tui

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/2389-research/seam/internal/oauth"
)

// NewValidator returns a ValidateFn that requests a token from requestTokenURL.
// A confirmed token proves the key, secret, and callback URL are accepted.
func NewValidator(requestTokenURL string) ValidateFn {
	client := &http.Client{Timeout: 10 * time.Second}
	return func(ctx context.Context, consumerKey, consumerSecret, callbackURL string) error {
		signer := oauth.NewSigner(consumerKey, consumerSecret)
		if _, _, err := oauth.RequestToken(ctx, client, signer, requestTokenURL, callbackURL); err != nil {
			return fmt.Errorf("X rejected the credentials: %w", err)
		}
		return nil
	}
}
