package http

import (
	"net/http"
	"strings"

	"spendwise/internal/core"
)

// The income ledger is global: every authenticated user reads and writes the
// same set of records. Handlers still require authentication, they just
// don't scope by principal.

type incomeRequest struct {
	Amount *float64  `json:"amount"`
	Source string    `json:"source"`
	Note   string    `json:"note"`
	Date   core.Date `json:"date"`
}

func (s *Server) handleAddIncome(w http.ResponseWriter, r *http.Request) {
	var req incomeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Amount == nil || strings.TrimSpace(req.Source) == "" || req.Date.IsZero() {
		writeError(w, r, invalidInput("amount, source and date are required"))
		return
	}

	id, err := s.repo.AddIncome(r.Context(), core.Income{
		Amount: *req.Amount,
		Source: req.Source,
		Note:   req.Note,
		Date:   req.Date,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": "income added", "id": id})
}

// handleIncomeOverview serves GET on the income route: just the running
// total of the ledger.
func (s *Server) handleIncomeOverview(w http.ResponseWriter, r *http.Request) {
	total, err := s.repo.TotalIncome(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"total_income": total})
}

func (s *Server) handleViewIncome(w http.ResponseWriter, r *http.Request) {
	income, err := s.repo.ListIncome(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, income)
}
