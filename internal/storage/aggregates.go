package storage

import (
	"context"
	"fmt"

	"spendwise/internal/core"
)

// Store-side aggregation over the expense ledger. These back the ranked
// summary endpoint, the CSV reports, and the regression forecast; the
// in-memory engine in core covers the unranked analytics shape. Sums
// accumulate in SQLite as 64-bit floats, matching the in-memory engine.

// TotalSpent sums every expense amount for owner.
func (r *Repository) TotalSpent(ctx context.Context, owner string) (float64, error) {
	var total float64
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(amount), 0) FROM expenses WHERE user = ?",
		owner,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("total spent: %w", err)
	}
	return total, nil
}

// CategorySums groups owner's spending by category, largest first.
func (r *Repository) CategorySums(ctx context.Context, owner string) ([]core.CategorySum, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT category, SUM(amount) AS total FROM expenses WHERE user = ? GROUP BY category ORDER BY total DESC",
		owner)
	if err != nil {
		return nil, fmt.Errorf("category sums: %w", err)
	}
	defer rows.Close()

	sums := []core.CategorySum{}
	for rows.Next() {
		var cs core.CategorySum
		if err := rows.Scan(&cs.Category, &cs.Total); err != nil {
			return nil, fmt.Errorf("scan category sum: %w", err)
		}
		sums = append(sums, cs)
	}
	return sums, rows.Err()
}

// MonthSums groups owner's spending by month key (the first seven characters
// of the date), ascending by month.
func (r *Repository) MonthSums(ctx context.Context, owner string) ([]core.MonthSum, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT substr(date, 1, 7) AS year_month, SUM(amount) AS total FROM expenses WHERE user = ? GROUP BY year_month ORDER BY year_month",
		owner)
	if err != nil {
		return nil, fmt.Errorf("month sums: %w", err)
	}
	defer rows.Close()

	sums := []core.MonthSum{}
	for rows.Next() {
		var ms core.MonthSum
		if err := rows.Scan(&ms.Month, &ms.Total); err != nil {
			return nil, fmt.Errorf("scan month sum: %w", err)
		}
		sums = append(sums, ms)
	}
	return sums, rows.Err()
}

// MerchantSums ranks owner's spending by note (the de-facto merchant field),
// skipping entries without one, limited to the top limit rows.
func (r *Repository) MerchantSums(ctx context.Context, owner string, limit int) ([]core.MerchantSum, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT note, SUM(amount) AS total FROM expenses WHERE user = ? AND note <> '' GROUP BY note ORDER BY total DESC LIMIT ?",
		owner, limit)
	if err != nil {
		return nil, fmt.Errorf("merchant sums: %w", err)
	}
	defer rows.Close()

	sums := []core.MerchantSum{}
	for rows.Next() {
		var ms core.MerchantSum
		if err := rows.Scan(&ms.Merchant, &ms.Total); err != nil {
			return nil, fmt.Errorf("scan merchant sum: %w", err)
		}
		sums = append(sums, ms)
	}
	return sums, rows.Err()
}
