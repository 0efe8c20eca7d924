// provider.go -- Identity provider interface and shared types.
package discord

import (
	"context"
	"errors"

	"golang.org/x/oauth2"
)

// ErrCodeExpired reports that Discord rejected the authorization code as
// invalid or already used (token endpoint error "invalid_grant"). This is
// the one upstream failure the user can fix themselves by restarting the
// claim flow, so callers surface it with its own message.
var ErrCodeExpired = errors.New("authorization code expired or already used")

// User is the authenticated identity behind an access token.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Provider is the OAuth2 side of Discord: consent URL, code exchange, and
// identity lookup with the user's own access token. The privileged grant
// call lives on Bot -- it uses a different credential and trust level.
type Provider interface {
	// AuthCodeURL returns the consent page URL with state embedded.
	AuthCodeURL(state string) string

	// Exchange trades an authorization code for an access token.
	// Returns ErrCodeExpired (possibly wrapped) on invalid_grant.
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)

	// Identity fetches the authenticated user's profile with the token
	// as a bearer credential.
	Identity(ctx context.Context, token *oauth2.Token) (*User, error)
}
