package http

import (
	"net/http"

	"spendwise/internal/core"
)

const topMerchantLimit = 10

// handleAnalytics computes the in-memory summary over the caller's full
// expense history.
func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.repo.ListExpenses(r.Context(), principal(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, core.Analyze(expenses))
}

// handleSummary returns the ranked store-side aggregates. Same ledger as
// analytics, different shape: totals come from GROUP BY queries and are
// ordered, not map-iterated.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner := principal(r)

	total, err := s.repo.TotalSpent(ctx, owner)
	if err != nil {
		writeError(w, r, err)
		return
	}
	byCategory, err := s.repo.CategorySums(ctx, owner)
	if err != nil {
		writeError(w, r, err)
		return
	}
	monthly, err := s.repo.MonthSums(ctx, owner)
	if err != nil {
		writeError(w, r, err)
		return
	}
	merchants, err := s.repo.MerchantSums(ctx, owner, topMerchantLimit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, core.Summary{
		Total:        total,
		ByCategory:   byCategory,
		Monthly:      monthly,
		TopMerchants: merchants,
	})
}

type predictionResponse struct {
	Prediction float64 `json:"prediction"`
	Method     string  `json:"method"`
	NPoints    int     `json:"n_points,omitempty"`
}

// handlePredict forecasts next month's spending from the caller's monthly
// totals, oldest first.
func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	monthly, err := s.repo.MonthSums(r.Context(), principal(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	values := make([]float64, len(monthly))
	for i, m := range monthly {
		values[i] = m.Total
	}
	value, method := core.PredictNext(values)

	resp := predictionResponse{Prediction: value, Method: method}
	if method == core.MethodLinearRegression {
		resp.NPoints = len(values)
	}
	writeJSON(w, http.StatusOK, resp)
}
