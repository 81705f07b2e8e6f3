// Package http is the JSON API surface: routing, middleware, and handlers.
// Handlers stay thin; they parse the request, call the repository or the
// aggregation engine, and map domain errors to status codes in one place.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"spendwise/internal/auth"
	"spendwise/internal/storage"
	"spendwise/internal/token"
)

// Config carries the handler-visible settings.
type Config struct {
	Addr         string
	TokenMaxAge  time.Duration // bearer and invite token validity window
	SecureCookie bool
}

type Server struct {
	http *http.Server

	repo     *storage.Repository
	tokens   *token.Service
	resolver *auth.Resolver

	tokenMaxAge  time.Duration
	secureCookie bool
}

// NewServer builds the server with its full route table. The resolver must
// try bearer tokens before session cookies; handlers never inspect
// credentials themselves.
func NewServer(cfg Config, repo *storage.Repository, tokens *token.Service, resolver *auth.Resolver) *Server {
	s := &Server{
		repo:         repo,
		tokens:       tokens,
		resolver:     resolver,
		tokenMaxAge:  cfg.TokenMaxAge,
		secureCookie: cfg.SecureCookie,
	}

	r := mux.NewRouter()
	r.Use(s.trace, securityHeaders)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)

	r.HandleFunc("/api/signup", s.handleSignup).Methods(http.MethodPost)
	r.HandleFunc("/api/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/logout", s.handleLogout).Methods(http.MethodGet)

	// Invite acceptance is browser-driven and session-only; it does its own
	// redirect dance instead of going through authed().
	r.HandleFunc("/join-group/{token}", s.handleJoinGroup).Methods(http.MethodGet)

	r.HandleFunc("/add-expense", s.authed(s.handleAddExpense)).Methods(http.MethodPost)
	r.HandleFunc("/get-expenses", s.authed(s.handleGetExpenses)).Methods(http.MethodGet)
	r.HandleFunc("/api/expense/{id}", s.authed(s.handleUpdateExpense)).Methods(http.MethodPut)
	r.HandleFunc("/api/expense/{id}", s.authed(s.handleDeleteExpense)).Methods(http.MethodDelete)

	r.HandleFunc("/add-income", s.authed(s.handleIncomeOverview)).Methods(http.MethodGet)
	r.HandleFunc("/add-income", s.authed(s.handleAddIncome)).Methods(http.MethodPost)
	r.HandleFunc("/view-income", s.authed(s.handleViewIncome)).Methods(http.MethodGet)

	r.HandleFunc("/api/analytics", s.authed(s.handleAnalytics)).Methods(http.MethodGet)
	r.HandleFunc("/api/summary", s.authed(s.handleSummary)).Methods(http.MethodGet)
	r.HandleFunc("/api/predict", s.authed(s.handlePredict)).Methods(http.MethodGet)
	r.HandleFunc("/api/reports", s.authed(s.handleReports)).Methods(http.MethodGet)

	r.HandleFunc("/api/budget", s.authed(s.handleGetBudget)).Methods(http.MethodGet)
	r.HandleFunc("/api/budget", s.authed(s.handleSetBudget)).Methods(http.MethodPost)

	r.HandleFunc("/api/group", s.authed(s.handleCreateGroup)).Methods(http.MethodPost)
	r.HandleFunc("/api/group", s.authed(s.handleListGroups)).Methods(http.MethodGet)
	r.HandleFunc("/api/groups", s.authed(s.handleListGroups)).Methods(http.MethodGet)
	r.HandleFunc("/api/group/{id}", s.authed(s.handleGroupDetail)).Methods(http.MethodGet)
	r.HandleFunc("/api/group/{id}/invite", s.authed(s.handleGroupInvite)).Methods(http.MethodGet)
	r.HandleFunc("/api/group/{id}/expense", s.authed(s.handleGroupExpense)).Methods(http.MethodPost)

	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// ListenAndServe blocks serving requests until Shutdown or failure.
func (s *Server) ListenAndServe() error {
	slog.Info("http server listening", "addr", s.http.Addr)
	return s.http.ListenAndServe()
}

// Shutdown drains in-flight requests within ctx's deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("http server shutting down")
	return s.http.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
