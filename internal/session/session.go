// Package session holds the authenticated user and bearer token, cached in
// local storage between runs.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/oauth2"

	"todoctl/internal/service"
	"todoctl/internal/storage"
)

// ErrIncomplete is returned by Login when the user or the token is missing.
var ErrIncomplete = errors.New("session requires both a user and a token")

// Store is the session store. Either both user and token are set
// (authenticated) or neither is (anonymous).
type Store struct {
	kv  storage.Store
	log *slog.Logger

	mu    sync.RWMutex
	user  *service.User
	token string
}

// New creates an anonymous Store persisting to kv. Call Restore to load a
// cached session.
func New(kv storage.Store, log *slog.Logger) *Store {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Store{kv: kv, log: log}
}

// Restore loads the persisted session. Missing, partial or corrupt state
// yields an anonymous session and is cleared from storage. It never fails.
func (s *Store) Restore(ctx context.Context) {
	s.mu.Lock()
	s.user, s.token = nil, ""
	s.mu.Unlock()

	rawUser, hasUser, err := s.kv.Get(ctx, storage.KeyUser)
	if err != nil {
		s.log.Debug("session restore: read user", "err", err)
		return
	}
	token, hasToken, err := s.kv.Get(ctx, storage.KeyToken)
	if err != nil {
		s.log.Debug("session restore: read token", "err", err)
		return
	}

	if !hasUser && !hasToken {
		s.log.Debug("session restore: anonymous")
		return
	}

	var user service.User
	switch {
	case !hasUser || !hasToken || token == "":
		s.log.Debug("session restore: partial session, clearing")
		s.clear(ctx)
		return
	case json.Unmarshal([]byte(rawUser), &user) != nil || user.IsZero():
		s.log.Debug("session restore: corrupt user, clearing")
		s.clear(ctx)
		return
	}

	s.mu.Lock()
	s.user, s.token = &user, token
	s.mu.Unlock()
	s.log.Debug("session restore: authenticated", "username", user.Username)
}

// Login persists and adopts a session. Storage is written first so a
// failed write leaves the in-memory session untouched.
func (s *Store) Login(ctx context.Context, user service.User, token string) error {
	if user.IsZero() || token == "" {
		return ErrIncomplete
	}
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encoding user: %w", err)
	}
	if err := s.kv.Put(ctx, map[string]string{
		storage.KeyUser:  string(data),
		storage.KeyToken: token,
	}); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}

	s.mu.Lock()
	s.user, s.token = &user, token
	s.mu.Unlock()
	return nil
}

// Logout clears the session in memory and in storage, whether or not one
// existed. The in-memory session is cleared even if storage fails.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.user, s.token = nil, ""
	s.mu.Unlock()
	if err := s.kv.Delete(ctx, storage.KeyUser, storage.KeyToken); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

func (s *Store) clear(ctx context.Context) {
	if err := s.kv.Delete(ctx, storage.KeyUser, storage.KeyToken); err != nil {
		s.log.Debug("session restore: clear", "err", err)
	}
}

// Authenticated reports whether a session is present.
func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// User returns the session user and whether one is present.
func (s *Store) User() (service.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return service.User{}, false
	}
	return *s.user, true
}

// AccessToken returns the raw session token, or "" when anonymous.
func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Token implements oauth2.TokenSource so the session can authorize an
// http.Client through oauth2.Transport. The current token is read on every
// request.
func (s *Store) Token() (*oauth2.Token, error) {
	token := s.AccessToken()
	if token == "" {
		return nil, service.ErrNotAuthenticated
	}
	return &oauth2.Token{AccessToken: token, TokenType: "Bearer"}, nil
}

var _ oauth2.TokenSource = (*Store)(nil)
