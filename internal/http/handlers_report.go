package http

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"

	"spendwise/internal/core"
)

// handleReports exports the caller's data as a CSV attachment. Two report
// types exist: "expenses" (full ledger, newest first) and "summary" (monthly
// totals). PDF is reserved but not built.
func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	reportType := r.URL.Query().Get("type")
	if reportType == "" {
		reportType = "expenses"
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}

	if format == "pdf" {
		writeError(w, r, fmt.Errorf("pdf export: %w", core.ErrUnimplemented))
		return
	}
	if format != "csv" {
		writeError(w, r, invalidInput("unknown format"))
		return
	}

	var (
		buf bytes.Buffer
		err error
	)
	cw := csv.NewWriter(&buf)
	switch reportType {
	case "expenses":
		err = s.writeExpenseReport(r, cw)
	case "summary":
		err = s.writeSummaryReport(r, cw)
	default:
		writeError(w, r, invalidInput("unknown report type"))
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.csv", reportType))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (s *Server) writeExpenseReport(r *http.Request, cw *csv.Writer) error {
	expenses, err := s.repo.ListExpensesByDateDesc(r.Context(), principal(r))
	if err != nil {
		return err
	}
	if err := cw.Write([]string{"id", "date", "amount", "category", "note"}); err != nil {
		return err
	}
	for _, e := range expenses {
		record := []string{
			strconv.FormatInt(e.ID, 10),
			e.Date.String(),
			formatAmount(e.Amount),
			e.Category,
			e.Note,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	return nil
}

func (s *Server) writeSummaryReport(r *http.Request, cw *csv.Writer) error {
	monthly, err := s.repo.MonthSums(r.Context(), principal(r))
	if err != nil {
		return err
	}
	if err := cw.Write([]string{"year_month", "total"}); err != nil {
		return err
	}
	for _, m := range monthly {
		if err := cw.Write([]string{m.Month, formatAmount(m.Total)}); err != nil {
			return err
		}
	}
	return nil
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
