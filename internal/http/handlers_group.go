package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"spendwise/internal/auth"
	"spendwise/internal/core"
	"spendwise/internal/storage"
)

const defaultGroupName = "Untitled Group"

type groupRequest struct {
	Name   string  `json:"name"`
	Budget float64 `json:"budget"`
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = defaultGroupName
	}

	owner := principal(r)
	group, err := s.repo.CreateGroup(r.Context(), owner, name, req.Budget)
	if err != nil {
		writeError(w, r, err)
		return
	}
	invite, err := s.tokens.Issue(map[string]string{"group_id": group.ID, "inviter": owner})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"group_id":     group.ID,
		"invite_token": invite,
		"invite_link":  inviteLink(r, invite),
	})
}

type groupSummary struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Budget  float64  `json:"budget"`
	Members []string `json:"members"`
}

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.repo.ListGroups(r.Context(), principal(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]groupSummary, 0, len(groups))
	for _, g := range groups {
		out = append(out, groupSummary{ID: g.ID, Name: g.Name, Budget: g.Budget, Members: g.Members})
	}
	writeJSON(w, http.StatusOK, out)
}

type groupExpenseView struct {
	ID       int64     `json:"id"`
	Amount   float64   `json:"amount"`
	Category string    `json:"category"`
	Note     string    `json:"note"`
	Date     core.Date `json:"date"`
	AddedBy  string    `json:"added_by"`
}

type groupDetailResponse struct {
	ID         string               `json:"id"`
	Name       string               `json:"name"`
	Budget     float64              `json:"budget"`
	Members    []string             `json:"members"`
	TotalSpent float64              `json:"total_spent"`
	ByCategory []core.CategoryTotal `json:"by_category"`
	Expenses   []groupExpenseView   `json:"expenses"`
}

func (s *Server) handleGroupDetail(w http.ResponseWriter, r *http.Request) {
	groupID, err := s.memberGroup(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	group, err := s.repo.GetGroup(r.Context(), groupID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	expenses, err := s.repo.GroupExpenses(r.Context(), groupID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	total, byCategory := core.GroupBreakdown(expenses)
	views := make([]groupExpenseView, 0, len(expenses))
	for _, e := range expenses {
		cat := e.Category
		if cat == "" {
			cat = core.GroupDefaultCategory
		}
		views = append(views, groupExpenseView{
			ID:       e.ID,
			Amount:   e.Amount,
			Category: cat,
			Note:     e.Note,
			Date:     e.Date,
			AddedBy:  e.User,
		})
	}

	writeJSON(w, http.StatusOK, groupDetailResponse{
		ID:         group.ID,
		Name:       group.Name,
		Budget:     group.Budget,
		Members:    group.Members,
		TotalSpent: total,
		ByCategory: byCategory,
		Expenses:   views,
	})
}

func (s *Server) handleGroupInvite(w http.ResponseWriter, r *http.Request) {
	groupID, err := s.memberGroup(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	invite, err := s.tokens.Issue(map[string]string{"group_id": groupID, "inviter": principal(r)})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"invite_token": invite,
		"invite_link":  inviteLink(r, invite),
	})
}

func (s *Server) handleGroupExpense(w http.ResponseWriter, r *http.Request) {
	groupID, err := s.memberGroup(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	in := storage.ExpenseInput{
		Category: req.Category,
		Note:     req.Note,
		Date:     req.Date,
		GroupID:  groupID,
	}
	if req.Amount != nil {
		in.Amount = *req.Amount
	}
	id, err := s.repo.AddExpense(r.Context(), principal(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": "group expense added", "id": id})
}

// handleJoinGroup accepts an invite link. This is the one browser-only
// endpoint: unauthenticated visitors are redirected to the login page, and
// only session cookies count (a bearer client has no business clicking
// links).
func (s *Server) handleJoinGroup(w http.ResponseWriter, r *http.Request) {
	payload, err := s.tokens.Verify(mux.Vars(r)["token"], s.tokenMaxAge)
	if err != nil {
		writeError(w, r, err)
		return
	}
	groupID := payload["group_id"]
	if groupID == "" {
		writeError(w, r, invalidInput("invalid invite token"))
		return
	}

	cookie, err := r.Cookie(auth.SessionCookie)
	if err != nil || cookie.Value == "" {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	username, err := s.repo.SessionUsername(r.Context(), cookie.Value)
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	if _, err := s.repo.GetGroup(r.Context(), groupID); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.repo.AddMember(r.Context(), groupID, username); err != nil {
		writeError(w, r, err)
		return
	}
	http.Redirect(w, r, "/api/group/"+groupID, http.StatusFound)
}

// memberGroup extracts the group id from the path and enforces membership.
// Non-members always get ErrForbidden, whether or not the group exists, so
// the endpoint leaks nothing about other people's groups.
func (s *Server) memberGroup(r *http.Request) (string, error) {
	groupID := mux.Vars(r)["id"]
	member, err := s.repo.IsMember(r.Context(), groupID, principal(r))
	if err != nil {
		return "", err
	}
	if !member {
		return "", core.ErrForbidden
	}
	return groupID, nil
}

func inviteLink(r *http.Request, token string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/join-group/%s", scheme, r.Host, token)
}
