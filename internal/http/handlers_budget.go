package http

import (
	"net/http"

	"spendwise/internal/core"
)

type budgetRequest struct {
	Month  string   `json:"month"`
	Amount *float64 `json:"amount"`
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	if month == "" {
		month = core.CurrentMonth()
	}
	amount, err := s.repo.GetBudget(r.Context(), principal(r), month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, core.Budget{Month: month, Amount: amount})
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Amount == nil {
		writeError(w, r, invalidInput("amount is required"))
		return
	}
	month := req.Month
	if month == "" {
		month = core.CurrentMonth()
	}
	if !core.ValidMonth(month) {
		writeError(w, r, invalidInput("month must be YYYY-MM"))
		return
	}

	if err := s.repo.SetBudget(r.Context(), principal(r), month, *req.Amount); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, core.Budget{Month: month, Amount: *req.Amount})
}
