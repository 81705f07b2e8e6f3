package storage

import (
	"context"
	"fmt"

	"spendwise/internal/core"
)

// The income ledger is global: rows carry no owner and every authenticated
// user reads the same set. Scoping income per user like expenses is an open
// migration, tracked in DESIGN.md and pinned by TestIncomeLedgerIsGlobal.

// AddIncome appends an income record. A zero date defaults to today.
func (r *Repository) AddIncome(ctx context.Context, in core.Income) (int64, error) {
	date := in.Date
	if date.IsZero() {
		date = core.Today()
	}

	res, err := r.db.ExecContext(ctx,
		"INSERT INTO income (amount, source, note, date) VALUES (?, ?, ?, ?)",
		in.Amount, in.Source, in.Note, date.String(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert income: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("income insert id: %w", err)
	}
	return id, nil
}

// ListIncome returns every income record, newest first.
func (r *Repository) ListIncome(ctx context.Context) ([]core.Income, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, amount, source, note, date FROM income ORDER BY date DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("query income: %w", err)
	}
	defer rows.Close()

	incomes := []core.Income{}
	for rows.Next() {
		var (
			inc     core.Income
			dateStr string
		)
		if err := rows.Scan(&inc.ID, &inc.Amount, &inc.Source, &inc.Note, &dateStr); err != nil {
			return nil, fmt.Errorf("scan income: %w", err)
		}
		if d, err := core.ParseDate(dateStr); err == nil {
			inc.Date = d
		}
		incomes = append(incomes, inc)
	}
	return incomes, rows.Err()
}

// TotalIncome sums the whole income ledger.
func (r *Repository) TotalIncome(ctx context.Context) (float64, error) {
	var total float64
	err := r.db.QueryRowContext(ctx, "SELECT COALESCE(SUM(amount), 0) FROM income").Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("total income: %w", err)
	}
	return total, nil
}
