// Package auth resolves the authenticated principal of a request. Two
// mechanisms coexist: a stateless signed bearer token and a server-side
// session cookie. They are modeled as an ordered chain of strategies; the
// first one that produces a username wins, and a failing strategy (bad
// signature, expired token, stale session) falls through silently rather
// than surfacing its own error.
package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"spendwise/internal/token"
)

// SessionCookie is the name of the session cookie.
const SessionCookie = "session"

// Strategy is one way of authenticating a request.
type Strategy interface {
	Authenticate(r *http.Request) (username string, ok bool)
}

// Resolver runs strategies in order and returns the first identity found.
type Resolver struct {
	strategies []Strategy
}

func NewResolver(strategies ...Strategy) *Resolver {
	return &Resolver{strategies: strategies}
}

// Resolve returns the request's principal, or ok=false when no strategy
// succeeds.
func (r *Resolver) Resolve(req *http.Request) (string, bool) {
	for _, s := range r.strategies {
		if username, ok := s.Authenticate(req); ok {
			return username, true
		}
	}
	return "", false
}

// BearerStrategy authenticates Authorization: Bearer tokens carrying a
// {username} payload, verified against a fixed max age.
type BearerStrategy struct {
	tokens *token.Service
	maxAge time.Duration
}

func NewBearerStrategy(tokens *token.Service, maxAge time.Duration) *BearerStrategy {
	return &BearerStrategy{tokens: tokens, maxAge: maxAge}
}

func (s *BearerStrategy) Authenticate(r *http.Request) (string, bool) {
	const prefix = "Bearer "
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	payload, err := s.tokens.Verify(strings.TrimPrefix(header, prefix), s.maxAge)
	if err != nil {
		return "", false
	}
	username := payload["username"]
	return username, username != ""
}

// SessionStore is the slice of the repository the session strategy needs.
type SessionStore interface {
	SessionUsername(ctx context.Context, token string) (string, error)
}

// SessionStrategy authenticates the session cookie against server-side
// session state.
type SessionStrategy struct {
	sessions SessionStore
}

func NewSessionStrategy(sessions SessionStore) *SessionStrategy {
	return &SessionStrategy{sessions: sessions}
}

func (s *SessionStrategy) Authenticate(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	username, err := s.sessions.SessionUsername(r.Context(), cookie.Value)
	if err != nil {
		return "", false
	}
	return username, true
}
