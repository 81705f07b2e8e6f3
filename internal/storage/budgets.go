package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SetBudget upserts owner's budget for month (YYYY-MM). Re-setting a month
// overwrites the prior amount; no history is kept.
func (r *Repository) SetBudget(ctx context.Context, owner, month string, amount float64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (user, month, amount) VALUES (?, ?, ?)
		 ON CONFLICT (user, month) DO UPDATE SET amount = excluded.amount`,
		owner, month, amount,
	)
	if err != nil {
		return fmt.Errorf("set budget: %w", err)
	}
	return nil
}

// GetBudget returns owner's budget for month, 0.0 when none is set.
func (r *Repository) GetBudget(ctx context.Context, owner, month string) (float64, error) {
	var amount float64
	err := r.db.QueryRowContext(ctx,
		"SELECT amount FROM budgets WHERE user = ? AND month = ?",
		owner, month,
	).Scan(&amount)
	if errors.Is(err, sql.ErrNoRows) {
		return 0.0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get budget: %w", err)
	}
	return amount, nil
}
