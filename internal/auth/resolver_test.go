package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"spendwise/internal/core"
	"spendwise/internal/token"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSessions map[string]string

func (f fakeSessions) SessionUsername(_ context.Context, tok string) (string, error) {
	if username, ok := f[tok]; ok {
		return username, nil
	}
	return "", core.ErrNotFound
}

func TestBearerStrategy(t *testing.T) {
	tokens := token.NewService([]byte("secret"))
	strategy := NewBearerStrategy(tokens, time.Hour)

	tok, err := tokens.Issue(map[string]string{"username": "alice"})
	require.NoError(t, err)

	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Authorization", "Bearer "+tok)
	username, ok := strategy.Authenticate(r)
	assert.True(t, ok)
	assert.Equal(t, "alice", username)

	// No header, wrong scheme, garbage token: all fall through.
	for _, header := range []string{"", "Basic abc", "Bearer garbage"} {
		r := httptest.NewRequest("GET", "/", nil)
		if header != "" {
			r.Header.Set("Authorization", header)
		}
		_, ok := strategy.Authenticate(r)
		assert.False(t, ok, "header %q must not authenticate", header)
	}

	// A token without a username payload is no credential either.
	anon, err := tokens.Issue(map[string]string{"group_id": "g1"})
	require.NoError(t, err)
	r = httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Authorization", "Bearer "+anon)
	_, ok = strategy.Authenticate(r)
	assert.False(t, ok)
}

func TestSessionStrategy(t *testing.T) {
	strategy := NewSessionStrategy(fakeSessions{"tok-1": "bob"})

	r := httptest.NewRequest("GET", "/", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "tok-1"})
	username, ok := strategy.Authenticate(r)
	assert.True(t, ok)
	assert.Equal(t, "bob", username)

	r = httptest.NewRequest("GET", "/", nil)
	_, ok = strategy.Authenticate(r)
	assert.False(t, ok, "no cookie")

	r = httptest.NewRequest("GET", "/", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "unknown"})
	_, ok = strategy.Authenticate(r)
	assert.False(t, ok, "stale session")
}

func TestResolverOrder(t *testing.T) {
	tokens := token.NewService([]byte("secret"))
	resolver := NewResolver(
		NewBearerStrategy(tokens, time.Hour),
		NewSessionStrategy(fakeSessions{"tok-1": "session-user"}),
	)

	bearer, err := tokens.Issue(map[string]string{"username": "token-user"})
	require.NoError(t, err)

	// Bearer wins when both credentials are present.
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Authorization", "Bearer "+bearer)
	r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "tok-1"})
	username, ok := resolver.Resolve(r)
	require.True(t, ok)
	assert.Equal(t, "token-user", username)

	// A broken bearer token falls through to the session.
	r = httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Authorization", "Bearer broken")
	r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "tok-1"})
	username, ok = resolver.Resolve(r)
	require.True(t, ok)
	assert.Equal(t, "session-user", username)

	// Nothing resolves to nothing.
	r = httptest.NewRequest("GET", "/", nil)
	_, ok = resolver.Resolve(r)
	assert.False(t, ok)
}
