// oauth.go -- Discord OAuth2 provider implementation.
//
// Discord's OAuth2 is plain authorization-code flow, not OIDC: there is no
// discovery document and no id_token, so identity comes from a REST call
// to /users/@me with the user's bearer token.
package discord

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
)

const (
	authURL = "https://discord.com/oauth2/authorize"
	// Token and API calls share the /api base.
	tokenURL   = "https://discord.com/api/oauth2/token"
	apiBaseURL = "https://discord.com/api"
)

// OAuthProvider implements Provider against Discord's OAuth2 endpoints.
type OAuthProvider struct {
	config *oauth2.Config

	// apiBase and client are overridable so tests can point at a stub server.
	apiBase string
	client  *http.Client
}

// NewOAuthProvider returns a provider configured for Discord.
// redirectURI must byte-for-byte match the URI registered with Discord,
// or every exchange fails with invalid_grant.
func NewOAuthProvider(clientID, clientSecret, redirectURI string) *OAuthProvider {
	return &OAuthProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Endpoint: oauth2.Endpoint{
				AuthURL:   authURL,
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
			Scopes: []string{"identify", "guilds"},
		},
		apiBase: apiBaseURL,
		client:  http.DefaultClient,
	}
}

// AuthCodeURL builds the Discord consent page URL with the claim token as
// the opaque state parameter.
func (p *OAuthProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state)
}

// Exchange trades an authorization code for an access token.
// Discord reports a spent or stale code as token endpoint error
// "invalid_grant"; that case is classified as ErrCodeExpired so the user
// can be told the link is dead rather than shown a generic failure.
func (p *OAuthProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.client)
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.ErrorCode == "invalid_grant" {
			return nil, fmt.Errorf("%w: %s", ErrCodeExpired, retrieveErr.ErrorDescription)
		}
		return nil, fmt.Errorf("exchanging code: %w", err)
	}
	return token, nil
}

// Identity fetches /users/@me with the access token as a bearer credential.
func (p *OAuthProvider) Identity(ctx context.Context, token *oauth2.Token) (*User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiBase+"/users/@me", nil)
	if err != nil {
		return nil, fmt.Errorf("building identity request: %w", err)
	}
	token.SetAuthHeader(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching identity: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("identity endpoint returned %d: %s", resp.StatusCode, body)
	}

	var u User
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return nil, fmt.Errorf("decoding identity response: %w", err)
	}
	if u.ID == "" {
		return nil, fmt.Errorf("identity response missing user id")
	}
	return &u, nil
}
