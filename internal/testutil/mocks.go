// mocks.go
//
// Shared mock implementations of discord.Provider and grant.RoleGranter.
// Imported by test files across packages to avoid duplicate mock definitions.
// The session store and role registry are cheap in-memory types already,
// so tests use the real ones.
package testutil

import (
	"context"
	"sync"

	"github.com/rolegate/rolegate/internal/discord"
	"golang.org/x/oauth2"
)

// MockProvider implements discord.Provider for tests.
// Use the *Err fields to inject failures for specific steps; zero value
// means success with the configured Token/User.
type MockProvider struct {
	AuthURL     string
	Token       *oauth2.Token
	ExchangeErr error
	User        *discord.User
	IdentityErr error

	mu       sync.Mutex
	LastCode string
}

func (m *MockProvider) AuthCodeURL(state string) string {
	return m.AuthURL + "?state=" + state
}

func (m *MockProvider) Exchange(_ context.Context, code string) (*oauth2.Token, error) {
	m.mu.Lock()
	m.LastCode = code
	m.mu.Unlock()
	if m.ExchangeErr != nil {
		return nil, m.ExchangeErr
	}
	if m.Token != nil {
		return m.Token, nil
	}
	return &oauth2.Token{AccessToken: "test-access-token"}, nil
}

func (m *MockProvider) Identity(_ context.Context, _ *oauth2.Token) (*discord.User, error) {
	if m.IdentityErr != nil {
		return nil, m.IdentityErr
	}
	return m.User, nil
}

// GrantCall records one GrantRole invocation.
type GrantCall struct {
	UserID string
	RoleID string
}

// MockGranter implements grant.RoleGranter and records every call.
type MockGranter struct {
	Err error

	mu    sync.Mutex
	Calls []GrantCall
}

func (m *MockGranter) GrantRole(_ context.Context, userID, roleID string) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, GrantCall{UserID: userID, RoleID: roleID})
	m.mu.Unlock()
	return m.Err
}

// CallCount returns how many grants were issued.
func (m *MockGranter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
