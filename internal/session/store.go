// store.go

// In-memory single-use claim session store.
//
// A claim session ties the opaque OAuth state token to the role the user
// asked for. Entries live for the store's TTL or until consumed,
// whichever comes first; the process owns them exclusively, so a restart
// silently invalidates outstanding claim links.
package session

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
)

// entry is one pending claim. The uuid is for log correlation only --
// the secret token is the map key and is never logged.
type entry struct {
	id        uuid.UUID
	role      string
	createdAt time.Time
}

// Store is a mutex-guarded token -> role mapping with atomic consume.
// Create and Consume are safe for concurrent request handlers; no two
// Consume calls on the same token can both succeed.
type Store struct {
	mu      sync.Mutex
	entries map[string]entry

	// ttl bounds how long an unconsumed entry stays valid; 0 means no expiry.
	ttl time.Duration

	// now is replaceable in tests.
	now func() time.Time
}

// NewStore returns an empty Store whose entries expire after ttl
// (0 disables expiry).
func NewStore(ttl time.Duration) *Store {
	return &Store{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Create generates a 256-bit random token, stores token -> role, and
// returns the token. Token goes in the OAuth state parameter; collision
// probability is negligible.
func (s *Store) Create(role string) (string, error) {
	var raw [32]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", fmt.Errorf("generating claim token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(raw[:])

	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generating claim session id: %w", err)
	}

	s.mu.Lock()
	s.entries[token] = entry{id: id, role: role, createdAt: s.now()}
	s.mu.Unlock()

	slog.Debug("claim session created", "session_id", id, "role", role)
	return token, nil
}

// Consume atomically looks up and deletes the entry for token.
// Returns ok=false when the token is unknown, already consumed, or
// expired -- callers cannot distinguish the three, which keeps a replayed
// callback URL indistinguishable from a bogus one.
func (s *Store) Consume(token string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[token]
	if !ok {
		return "", false
	}
	delete(s.entries, token)

	if s.expired(e) {
		slog.Debug("claim session expired at consume", "session_id", e.id, "role", e.role)
		return "", false
	}
	slog.Debug("claim session consumed", "session_id", e.id, "role", e.role)
	return e.role, true
}

// Sweep removes expired entries and returns how many were dropped.
// No-op when expiry is disabled.
func (s *Store) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for token, e := range s.entries {
		if s.expired(e) {
			delete(s.entries, token)
			n++
		}
	}
	return n
}

// Len returns the number of pending entries, expired or not.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// expired reports whether e is past the TTL. Caller holds s.mu.
func (s *Store) expired(e entry) bool {
	return s.ttl > 0 && s.now().Sub(e.createdAt) > s.ttl
}
