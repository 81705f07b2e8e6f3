package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"spendwise/internal/auth"
	"spendwise/internal/core"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeError(w, r, invalidInput("username, email and password are required"))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := s.repo.CreateUser(r.Context(), req.Username, req.Email, hash); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "user created"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	identifier := strings.TrimSpace(req.Username)
	if identifier == "" {
		identifier = strings.TrimSpace(req.Email)
	}
	if identifier == "" || req.Password == "" {
		writeError(w, r, invalidInput("username and password are required"))
		return
	}

	user, err := s.repo.GetUserByIdentifier(r.Context(), identifier)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			// Unknown user and wrong password are indistinguishable.
			writeError(w, r, core.ErrUnauthenticated)
			return
		}
		writeError(w, r, err)
		return
	}
	if !auth.CheckPassword(req.Password, user.PasswordHash) {
		writeError(w, r, core.ErrUnauthenticated)
		return
	}

	// A successful login yields both credentials: a server-side session for
	// browsers and a signed bearer token for API clients.
	sessionToken := uuid.NewString()
	if err := s.repo.CreateSession(r.Context(), sessionToken, user.Username, time.Now().UTC().Add(s.tokenMaxAge)); err != nil {
		writeError(w, r, err)
		return
	}
	bearer, err := s.tokens.Issue(map[string]string{"username": user.Username})
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.setSessionCookie(w, sessionToken, s.tokenMaxAge)
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "logged in",
		"token":   bearer,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(auth.SessionCookie); err == nil && cookie.Value != "" {
		if err := s.repo.DeleteSession(r.Context(), cookie.Value); err != nil {
			writeError(w, r, err)
			return
		}
	}
	s.setSessionCookie(w, "", -time.Hour)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) setSessionCookie(w http.ResponseWriter, value string, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge / time.Second),
		HttpOnly: true,
		Secure:   s.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}
