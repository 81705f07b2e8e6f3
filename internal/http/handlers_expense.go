package http

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"spendwise/internal/core"
	"spendwise/internal/storage"
)

type expenseRequest struct {
	Amount   *float64  `json:"amount"`
	Category string    `json:"category"`
	Note     string    `json:"note"`
	Date     core.Date `json:"date"`
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	// A missing amount is recorded as 0, not rejected; only an unparsable
	// one is a client error (caught by the decoder above).
	in := storage.ExpenseInput{
		Category: req.Category,
		Note:     req.Note,
		Date:     req.Date,
	}
	if req.Amount != nil {
		in.Amount = *req.Amount
	}

	id, err := s.repo.AddExpense(r.Context(), principal(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": "expense added", "id": id})
}

func (s *Server) handleGetExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.repo.ListExpenses(r.Context(), principal(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	// The owner is implicit in the request; don't echo it per row.
	for i := range expenses {
		expenses[i].User = ""
	}
	writeJSON(w, http.StatusOK, expenses)
}

type expensePatchRequest struct {
	Amount   *float64   `json:"amount"`
	Category *string    `json:"category"`
	Note     *string    `json:"note"`
	Date     *core.Date `json:"date"`
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := expenseID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req expensePatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	patch := storage.ExpensePatch{
		Amount:   req.Amount,
		Category: req.Category,
		Note:     req.Note,
		Date:     req.Date,
	}
	if _, err := s.repo.UpdateExpense(r.Context(), id, principal(r), patch); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "updated"})
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := expenseID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.repo.DeleteExpense(r.Context(), id, principal(r)); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}

func expenseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return 0, invalidInput("invalid expense id")
	}
	return id, nil
}
