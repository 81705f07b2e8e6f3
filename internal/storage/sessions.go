package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"spendwise/internal/core"
)

// CreateSession stores a server-side session token for username.
func (r *Repository) CreateSession(ctx context.Context, token, username string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO sessions (token, username, expires_at) VALUES (?, ?, ?)",
		token, username, expiresAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// SessionUsername resolves a session token to its username. Unknown and
// expired tokens both yield core.ErrNotFound; expiry is checked per lookup,
// there is no background sweep.
func (r *Repository) SessionUsername(ctx context.Context, token string) (string, error) {
	var username string
	err := r.db.QueryRowContext(ctx,
		"SELECT username FROM sessions WHERE token = ? AND expires_at > ?",
		token, time.Now().UTC(),
	).Scan(&username)
	if errors.Is(err, sql.ErrNoRows) {
		return "", core.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get session: %w", err)
	}
	return username, nil
}

// DeleteSession removes a session token. Deleting an absent token is not an
// error.
func (r *Repository) DeleteSession(ctx context.Context, token string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE token = ?", token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
