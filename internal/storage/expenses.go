package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"spendwise/internal/core"
)

// ExpenseInput carries the caller-supplied fields of a new expense. A zero
// Date defaults to the current UTC date at insert time.
type ExpenseInput struct {
	Amount   float64
	Category string
	Note     string
	Date     core.Date
	GroupID  string
}

// ExpensePatch is a partial update: nil fields are left untouched.
type ExpensePatch struct {
	Amount   *float64
	Category *string
	Note     *string
	Date     *core.Date
}

// AddExpense inserts an expense owned by owner and returns its id.
func (r *Repository) AddExpense(ctx context.Context, owner string, in ExpenseInput) (int64, error) {
	date := in.Date
	if date.IsZero() {
		date = core.Today()
	}

	res, err := r.db.ExecContext(ctx,
		"INSERT INTO expenses (user, amount, category, note, date, group_id) VALUES (?, ?, ?, ?, ?, ?)",
		owner, in.Amount, in.Category, in.Note, date.String(), in.GroupID,
	)
	if err != nil {
		return 0, fmt.Errorf("insert expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("expense insert id: %w", err)
	}
	return id, nil
}

// ListExpenses returns owner's expenses in insertion order.
func (r *Repository) ListExpenses(ctx context.Context, owner string) ([]core.Expense, error) {
	return r.queryExpenses(ctx,
		"SELECT id, user, amount, category, note, date, group_id FROM expenses WHERE user = ? ORDER BY id",
		owner)
}

// ListExpensesByDateDesc returns owner's expenses newest first; the report
// export uses this ordering.
func (r *Repository) ListExpensesByDateDesc(ctx context.Context, owner string) ([]core.Expense, error) {
	return r.queryExpenses(ctx,
		"SELECT id, user, amount, category, note, date, group_id FROM expenses WHERE user = ? ORDER BY date DESC, id DESC",
		owner)
}

// GroupExpenses returns every expense tagged with groupID regardless of
// owner. This is the one read that crosses ownership boundaries; callers
// must have checked membership first.
func (r *Repository) GroupExpenses(ctx context.Context, groupID string) ([]core.Expense, error) {
	return r.queryExpenses(ctx,
		"SELECT id, user, amount, category, note, date, group_id FROM expenses WHERE group_id = ? ORDER BY id",
		groupID)
}

// UpdateExpense applies a partial update to an expense owned by owner as one
// statement: nil patch fields COALESCE to the stored value, so concurrent
// patches of different fields cannot overwrite each other. An ownership
// mismatch is indistinguishable from a missing row: both return
// core.ErrNotFound.
func (r *Repository) UpdateExpense(ctx context.Context, id int64, owner string, patch ExpensePatch) (core.Expense, error) {
	var dateArg any
	if patch.Date != nil {
		dateArg = patch.Date.String()
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses
		 SET amount = COALESCE(?, amount),
		     category = COALESCE(?, category),
		     note = COALESCE(?, note),
		     date = COALESCE(?, date)
		 WHERE id = ? AND user = ?`,
		patch.Amount, patch.Category, patch.Note, dateArg, id, owner,
	)
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense result: %w", err)
	}
	if affected == 0 {
		return core.Expense{}, core.ErrNotFound
	}
	return r.getOwnedExpense(ctx, id, owner)
}

// DeleteExpense deletes an expense owned by owner, with the same NotFound
// contract as UpdateExpense.
func (r *Repository) DeleteExpense(ctx context.Context, id int64, owner string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ? AND user = ?", id, owner)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete expense result: %w", err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *Repository) getOwnedExpense(ctx context.Context, id int64, owner string) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, user, amount, category, note, date, group_id FROM expenses WHERE id = ? AND user = ?",
		id, owner)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, core.ErrNotFound
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense: %w", err)
	}
	return e, nil
}

func (r *Repository) queryExpenses(ctx context.Context, query string, args ...any) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	expenses := []core.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (core.Expense, error) {
	var (
		e       core.Expense
		dateStr string
	)
	if err := row.Scan(&e.ID, &e.User, &e.Amount, &e.Category, &e.Note, &dateStr, &e.GroupID); err != nil {
		return core.Expense{}, err
	}
	if dateStr != "" {
		if d, err := core.ParseDate(dateStr); err == nil {
			e.Date = d
		}
	}
	return e, nil
}
