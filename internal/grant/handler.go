// handler.go -- HTTP handlers for the claim -> authorize -> callback -> grant flow.
package grant

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rolegate/rolegate/internal/discord"
	"github.com/rolegate/rolegate/internal/obs"
	"golang.org/x/oauth2"
)

// SessionStore defines the single-use claim session operations the
// handlers need. Satisfied by *session.Store -- defined here (at consumer)
// per Go convention.
type SessionStore interface {
	// Create stores a new token -> role entry and returns the token.
	Create(role string) (string, error)

	// Consume atomically looks up and deletes the entry for token.
	// ok=false when absent, already consumed, or expired.
	Consume(token string) (string, bool)
}

// RoleRegistry resolves short role names to Discord role IDs.
// Satisfied by *roles.Registry.
type RoleRegistry interface {
	Lookup(name string) (string, bool)
}

// RoleGranter issues the privileged role-attachment call.
// Satisfied by *discord.Bot.
type RoleGranter interface {
	GrantRole(ctx context.Context, userID, roleID string) error
}

// Handler serves /claim and /callback.
type Handler struct {
	Sessions SessionStore
	Roles    RoleRegistry
	Provider discord.Provider
	Granter  RoleGranter

	// UpstreamTimeout applies per Discord API round-trip.
	UpstreamTimeout time.Duration

	// FallbackURL, when non-empty, turns failure pages into redirects.
	FallbackURL string
}

// HandleClaim handles GET /claim?role=<name> -- validates the role, mints
// a claim session, and redirects the browser to Discord's consent page
// with the session token as the opaque state parameter.
// An unknown role never produces a provider redirect.
func (h *Handler) HandleClaim(w http.ResponseWriter, r *http.Request) {
	role := r.URL.Query().Get("role")
	if role == "" {
		logWarn(r, "claim: missing role parameter")
		obs.CountClaim(obs.ClaimInvalidRole)
		h.respondFailure(w, r, http.StatusBadRequest, msgInvalidRole)
		return
	}
	if _, ok := h.Roles.Lookup(role); !ok {
		logWarn(r, "claim: unknown role", "role", role)
		obs.CountClaim(obs.ClaimInvalidRole)
		h.respondFailure(w, r, http.StatusBadRequest, msgInvalidRole)
		return
	}

	token, err := h.Sessions.Create(role)
	if err != nil {
		logError(r, "claim: failed to create session", "error", err)
		h.respondFailure(w, r, http.StatusInternalServerError, msgGrantFailed)
		return
	}

	obs.CountClaim(obs.ClaimRedirected)
	http.Redirect(w, r, h.Provider.AuthCodeURL(token), http.StatusFound)
}

// HandleCallback handles GET /callback?code=&state= -- resolves the role
// from the consumed claim session, exchanges the code for an access token,
// fetches the identity, and grants the role with the bot credential.
//
// The authorization code is single-use by provider contract, so nothing is
// retried; every failure resolves to a user-visible response.
func (h *Handler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state == "" {
		logWarn(r, "callback: missing code or state")
		obs.CountGrant(obs.GrantInvalidSession)
		h.respondFailure(w, r, http.StatusBadRequest, msgInvalidSession)
		return
	}

	// Consume first: a replayed callback URL must fail here even if the
	// rest of the flow would.
	role, ok := h.Sessions.Consume(state)
	if !ok {
		logWarn(r, "callback: unknown or already consumed state")
		obs.CountGrant(obs.GrantInvalidSession)
		h.respondFailure(w, r, http.StatusBadRequest, msgInvalidSession)
		return
	}

	roleID, ok := h.Roles.Lookup(role)
	if !ok {
		// Session held a role the registry no longer knows -- config drift.
		logError(r, "callback: session role not in registry", "role", role)
		obs.CountGrant(obs.GrantInvalidSession)
		h.respondFailure(w, r, http.StatusBadRequest, msgInvalidSession)
		return
	}

	token, err := h.exchange(r, code)
	if err != nil {
		if errors.Is(err, discord.ErrCodeExpired) {
			logWarn(r, "callback: authorization code rejected", "error", err)
			obs.CountGrant(obs.GrantExpiredCode)
			h.respondFailure(w, r, http.StatusBadRequest, msgExpiredCode)
			return
		}
		h.upstreamFailure(w, r, "token exchange", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.UpstreamTimeout)
	user, err := h.Provider.Identity(ctx, token)
	cancel()
	if err != nil {
		h.upstreamFailure(w, r, "identity fetch", err)
		return
	}

	ctx, cancel = context.WithTimeout(r.Context(), h.UpstreamTimeout)
	err = h.Granter.GrantRole(ctx, user.ID, roleID)
	cancel()
	if err != nil {
		h.upstreamFailure(w, r, "role grant", err)
		return
	}

	logInfo(r, "role granted", "user_id", user.ID, "username", user.Username, "role", role)
	obs.CountGrant(obs.GrantGranted)
	SuccessPage(w, user.Username, role)
}

// exchange runs the token exchange under the upstream timeout.
func (h *Handler) exchange(r *http.Request, code string) (*oauth2.Token, error) {
	ctx, cancel := context.WithTimeout(r.Context(), h.UpstreamTimeout)
	defer cancel()
	return h.Provider.Exchange(ctx, code)
}

// upstreamFailure logs a Discord API failure -- timeouts as their own
// class -- and renders the generic failure response.
func (h *Handler) upstreamFailure(w http.ResponseWriter, r *http.Request, step string, err error) {
	if errors.Is(err, context.DeadlineExceeded) {
		logError(r, "callback: upstream timeout", "step", step, "timeout", h.UpstreamTimeout)
	} else {
		logError(r, "callback: upstream failure", "step", step, "error", err)
	}
	obs.CountGrant(obs.GrantUpstreamError)
	h.respondFailure(w, r, http.StatusBadGateway, msgGrantFailed)
}

// respondFailure renders an error page, or redirects when a fallback URL
// is configured.
func (h *Handler) respondFailure(w http.ResponseWriter, r *http.Request, status int, message string) {
	if h.FallbackURL != "" {
		http.Redirect(w, r, h.FallbackURL, http.StatusFound)
		return
	}
	ErrorPage(w, status, message)
}
