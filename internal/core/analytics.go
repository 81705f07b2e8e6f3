// Package core holds the domain types and the aggregation engine. Everything
// in this file is a pure function of an expense set: no store access, no
// mutation, so two calls over the same data always agree.
package core

import (
	"math"
	"sort"
)

// Default labels for records missing the grouping field.
const (
	DefaultCategory      = "Other"
	GroupDefaultCategory = "Uncategorized"
	DefaultMerchant      = "Unknown"
	NoMerchant           = "N/A"
)

// Prediction methods reported by PredictNext.
const (
	MethodLinearRegression = "linear_regression"
	MethodFallback         = "fallback"
)

type (
	CategoryTotal struct {
		Category   string  `json:"category"`
		TotalSpent float64 `json:"total_spent"`
	}

	MonthTotal struct {
		Month      string  `json:"month"`
		TotalSpent float64 `json:"total_spent"`
	}

	// Analytics is the in-memory summary shape: category order follows map
	// iteration (unordered), the monthly trend is ascending by month key.
	Analytics struct {
		TotalSpent          float64         `json:"total_spent"`
		PredictionNextMonth float64         `json:"prediction_next_month"`
		TopMerchant         string          `json:"top_merchant"`
		SpendingByCategory  []CategoryTotal `json:"spending_by_category"`
		MonthlyTrend        []MonthTotal    `json:"monthly_trend"`
	}
)

// Analyze computes the full analytics summary for an expense set. Amounts
// accumulate as float64; only the prediction is rounded, and only at the end.
func Analyze(expenses []Expense) Analytics {
	out := Analytics{
		TopMerchant:        NoMerchant,
		SpendingByCategory: []CategoryTotal{},
		MonthlyTrend:       []MonthTotal{},
	}
	if len(expenses) == 0 {
		return out
	}

	byCategory := make(map[string]float64)
	byMonth := make(map[string]float64)
	byMerchant := make(map[string]float64)
	for _, e := range expenses {
		out.TotalSpent += e.Amount

		cat := e.Category
		if cat == "" {
			cat = DefaultCategory
		}
		byCategory[cat] += e.Amount

		byMonth[e.Date.MonthKey()] += e.Amount

		merchant := e.Note
		if merchant == "" {
			merchant = DefaultMerchant
		}
		byMerchant[merchant] += e.Amount
	}

	for cat, total := range byCategory {
		out.SpendingByCategory = append(out.SpendingByCategory, CategoryTotal{Category: cat, TotalSpent: total})
	}

	months := make([]string, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Strings(months)
	for _, m := range months {
		out.MonthlyTrend = append(out.MonthlyTrend, MonthTotal{Month: m, TotalSpent: byMonth[m]})
	}

	// On equal sums the winner depends on map iteration order.
	var best float64
	for merchant, total := range byMerchant {
		if total > best {
			best = total
			out.TopMerchant = merchant
		}
	}

	out.PredictionNextMonth = Round2(out.TotalSpent / float64(max(len(out.MonthlyTrend), 1)))
	return out
}

// GroupBreakdown computes the cross-owner aggregate exposed on group detail:
// overall total plus a per-category breakdown in map iteration order.
func GroupBreakdown(expenses []Expense) (total float64, byCategory []CategoryTotal) {
	sums := make(map[string]float64)
	for _, e := range expenses {
		total += e.Amount
		cat := e.Category
		if cat == "" {
			cat = GroupDefaultCategory
		}
		sums[cat] += e.Amount
	}
	byCategory = make([]CategoryTotal, 0, len(sums))
	for cat, sum := range sums {
		byCategory = append(byCategory, CategoryTotal{Category: cat, TotalSpent: sum})
	}
	return total, byCategory
}

// PredictNext forecasts the next monthly total from ordered monthly sums
// using ordinary least squares over x = 0..n-1. With fewer than two points
// there is no trend to fit, so it falls back to the last observed total
// (0.0 for an empty history).
func PredictNext(monthly []float64) (value float64, method string) {
	n := len(monthly)
	if n < 2 {
		if n == 1 {
			return Round2(monthly[0]), MethodFallback
		}
		return 0.0, MethodFallback
	}

	var xMean, yMean float64
	for i, y := range monthly {
		xMean += float64(i)
		yMean += y
	}
	xMean /= float64(n)
	yMean /= float64(n)

	var num, den float64
	for i, y := range monthly {
		dx := float64(i) - xMean
		num += dx * (y - yMean)
		den += dx * dx
	}
	slope := 0.0
	if den != 0 {
		slope = num / den
	}
	intercept := yMean - slope*xMean

	return Round2(intercept + slope*float64(n)), MethodLinearRegression
}

// Round2 rounds to two decimal places. Applied only at prediction outputs.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
