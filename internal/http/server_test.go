package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"spendwise/internal/auth"
	"spendwise/internal/storage"
	"spendwise/internal/token"
)

type ServerTestSuite struct {
	suite.Suite
	repo    *storage.Repository
	tokens  *token.Service
	handler http.Handler
}

func (s *ServerTestSuite) SetupTest() {
	repo, err := storage.NewRepository(":memory:")
	s.Require().NoError(err)
	s.repo = repo
	s.tokens = token.NewService([]byte("test-secret"))

	resolver := auth.NewResolver(
		auth.NewBearerStrategy(s.tokens, time.Hour),
		auth.NewSessionStrategy(repo),
	)
	srv := NewServer(Config{Addr: ":0", TokenMaxAge: time.Hour}, repo, s.tokens, resolver)
	s.handler = srv.Handler()
}

func (s *ServerTestSuite) TearDownTest() {
	s.repo.Close()
}

func (s *ServerTestSuite) do(method, path, body, bearer string) *httptest.ResponseRecorder {
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	if bearer != "" {
		r.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, r)
	return w
}

// signup registers a user and returns their bearer token.
func (s *ServerTestSuite) signup(username string) string {
	body := fmt.Sprintf(`{"username":%q,"email":"%s@example.com","password":"hunter22"}`, username, username)
	w := s.do(http.MethodPost, "/api/signup", body, "")
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/api/login", fmt.Sprintf(`{"username":%q,"password":"hunter22"}`, username), "")
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var resp map[string]string
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Require().NotEmpty(resp["token"])
	return resp["token"]
}

func (s *ServerTestSuite) decode(w *httptest.ResponseRecorder, v any) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func (s *ServerTestSuite) TestHealthEndpoints() {
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/healthz", "", "").Code)
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/readyz", "", "").Code)
}

func (s *ServerTestSuite) TestSignupConflictAndLogin() {
	s.signup("alice")

	w := s.do(http.MethodPost, "/api/signup",
		`{"username":"alice","email":"other@example.com","password":"x"}`, "")
	s.Equal(http.StatusConflict, w.Code)

	w = s.do(http.MethodPost, "/api/login", `{"username":"alice","password":"wrong"}`, "")
	s.Equal(http.StatusUnauthorized, w.Code)

	// Unknown users fail identically to wrong passwords.
	w = s.do(http.MethodPost, "/api/login", `{"username":"nobody","password":"x"}`, "")
	s.Equal(http.StatusUnauthorized, w.Code)

	// Login also works by email.
	w = s.do(http.MethodPost, "/api/login", `{"email":"alice@example.com","password":"hunter22"}`, "")
	s.Equal(http.StatusOK, w.Code)
}

func (s *ServerTestSuite) TestLoginSetsSessionCookie() {
	s.signup("alice")
	w := s.do(http.MethodPost, "/api/login", `{"username":"alice","password":"hunter22"}`, "")
	s.Require().Equal(http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	s.Require().Len(cookies, 1)
	s.Equal(auth.SessionCookie, cookies[0].Name)
	s.NotEmpty(cookies[0].Value)

	// The cookie alone authenticates.
	r := httptest.NewRequest(http.MethodGet, "/get-expenses", nil)
	r.AddCookie(cookies[0])
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, r)
	s.Equal(http.StatusOK, rec.Code)

	// Logout invalidates it.
	r = httptest.NewRequest(http.MethodGet, "/logout", nil)
	r.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, r)
	s.Equal(http.StatusFound, rec.Code)

	r = httptest.NewRequest(http.MethodGet, "/get-expenses", nil)
	r.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, r)
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *ServerTestSuite) TestAuthRequired() {
	for _, path := range []string{"/get-expenses", "/api/analytics", "/api/summary", "/api/budget", "/api/groups"} {
		w := s.do(http.MethodGet, path, "", "")
		s.Equal(http.StatusUnauthorized, w.Code, path)
	}
}

func (s *ServerTestSuite) TestExpenseLifecycle() {
	tok := s.signup("alice")

	w := s.do(http.MethodPost, "/add-expense",
		`{"amount":12.5,"category":"Food","note":"lunch","date":"2025-03-10"}`, tok)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var created map[string]any
	s.decode(w, &created)
	id := int64(created["id"].(float64))
	s.Positive(id)

	w = s.do(http.MethodGet, "/get-expenses", "", tok)
	s.Require().Equal(http.StatusOK, w.Code)
	var list []map[string]any
	s.decode(w, &list)
	s.Require().Len(list, 1)
	s.Equal("Food", list[0]["category"])
	s.Equal(12.5, list[0]["amount"])
	s.NotContains(list[0], "user")

	// Partial update: amount only, the rest untouched.
	w = s.do(http.MethodPut, fmt.Sprintf("/api/expense/%d", id), `{"amount":20}`, tok)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/get-expenses", "", tok)
	s.decode(w, &list)
	s.Equal(20.0, list[0]["amount"])
	s.Equal("lunch", list[0]["note"])

	w = s.do(http.MethodDelete, fmt.Sprintf("/api/expense/%d", id), "", tok)
	s.Equal(http.StatusOK, w.Code)
	w = s.do(http.MethodDelete, fmt.Sprintf("/api/expense/%d", id), "", tok)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *ServerTestSuite) TestExpenseDefaultsAndBadInput() {
	tok := s.signup("alice")

	// Missing amount records zero rather than failing.
	w := s.do(http.MethodPost, "/add-expense", `{"category":"Misc"}`, tok)
	s.Equal(http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/add-expense", `{"amount":"notanumber"}`, tok)
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/add-expense", `{"date":"10/03/2025"}`, tok)
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPut, "/api/expense/notanid", `{"amount":1}`, tok)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *ServerTestSuite) TestExpenseOwnershipHiddenAcrossUsers() {
	alice := s.signup("alice")
	bob := s.signup("bob")

	w := s.do(http.MethodPost, "/add-expense", `{"amount":10,"date":"2025-01-01"}`, alice)
	s.Require().Equal(http.StatusCreated, w.Code)
	var created map[string]any
	s.decode(w, &created)
	id := int64(created["id"].(float64))

	// Another user's record is indistinguishable from a missing one.
	w = s.do(http.MethodPut, fmt.Sprintf("/api/expense/%d", id), `{"amount":999}`, bob)
	s.Equal(http.StatusNotFound, w.Code)
	w = s.do(http.MethodDelete, fmt.Sprintf("/api/expense/%d", id), "", bob)
	s.Equal(http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/get-expenses", "", bob)
	var list []map[string]any
	s.decode(w, &list)
	s.Empty(list)
}

func (s *ServerTestSuite) TestAnalyticsAndPredict() {
	tok := s.signup("alice")
	for _, body := range []string{
		`{"amount":100,"category":"Food","note":"deli","date":"2025-01-15"}`,
		`{"amount":200,"category":"Travel","note":"rail","date":"2025-02-15"}`,
		`{"amount":300,"category":"Food","note":"deli","date":"2025-03-15"}`,
	} {
		w := s.do(http.MethodPost, "/add-expense", body, tok)
		s.Require().Equal(http.StatusCreated, w.Code)
	}

	w := s.do(http.MethodGet, "/api/analytics", "", tok)
	s.Require().Equal(http.StatusOK, w.Code)
	var analytics struct {
		TotalSpent   float64 `json:"total_spent"`
		TopMerchant  string  `json:"top_merchant"`
		MonthlyTrend []struct {
			Month      string  `json:"month"`
			TotalSpent float64 `json:"total_spent"`
		} `json:"monthly_trend"`
	}
	s.decode(w, &analytics)
	s.Equal(600.0, analytics.TotalSpent)
	s.Equal("deli", analytics.TopMerchant)
	s.Require().Len(analytics.MonthlyTrend, 3)
	s.Equal("2025-01", analytics.MonthlyTrend[0].Month)

	w = s.do(http.MethodGet, "/api/predict", "", tok)
	s.Require().Equal(http.StatusOK, w.Code)
	var pred predictionResponse
	s.decode(w, &pred)
	s.Equal("linear_regression", pred.Method)
	s.Equal(400.0, pred.Prediction)
	s.Equal(3, pred.NPoints)
}

func (s *ServerTestSuite) TestPredictFallback() {
	tok := s.signup("alice")

	w := s.do(http.MethodGet, "/api/predict", "", tok)
	var pred predictionResponse
	s.decode(w, &pred)
	s.Equal("fallback", pred.Method)
	s.Equal(0.0, pred.Prediction)
	s.Zero(pred.NPoints)

	s.do(http.MethodPost, "/add-expense", `{"amount":150,"date":"2025-01-01"}`, tok)
	w = s.do(http.MethodGet, "/api/predict", "", tok)
	s.decode(w, &pred)
	s.Equal("fallback", pred.Method)
	s.Equal(150.0, pred.Prediction)
}

func (s *ServerTestSuite) TestSummaryRanked() {
	tok := s.signup("alice")
	for _, body := range []string{
		`{"amount":50,"category":"Food","note":"deli","date":"2025-01-10"}`,
		`{"amount":120,"category":"Rent","note":"landlord","date":"2025-01-01"}`,
		`{"amount":30,"category":"Food","note":"deli","date":"2025-02-05"}`,
	} {
		s.do(http.MethodPost, "/add-expense", body, tok)
	}

	w := s.do(http.MethodGet, "/api/summary", "", tok)
	s.Require().Equal(http.StatusOK, w.Code)
	var summary struct {
		Total      float64 `json:"total"`
		ByCategory []struct {
			Category string  `json:"category"`
			Total    float64 `json:"total"`
		} `json:"by_category"`
		Monthly []struct {
			Month string  `json:"month"`
			Total float64 `json:"total"`
		} `json:"monthly"`
	}
	s.decode(w, &summary)
	s.Equal(200.0, summary.Total)
	s.Require().Len(summary.ByCategory, 2)
	s.Equal("Rent", summary.ByCategory[0].Category, "largest category first")
	s.Require().Len(summary.Monthly, 2)
	s.Equal("2025-01", summary.Monthly[0].Month)
	s.Equal(170.0, summary.Monthly[0].Total)
}

func (s *ServerTestSuite) TestBudgetRoundTrip() {
	tok := s.signup("alice")

	w := s.do(http.MethodPost, "/api/budget", `{"month":"2025-04","amount":500}`, tok)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/api/budget?month=2025-04", "", tok)
	var budget struct {
		Month  string  `json:"month"`
		Amount float64 `json:"amount"`
	}
	s.decode(w, &budget)
	s.Equal("2025-04", budget.Month)
	s.Equal(500.0, budget.Amount)

	// Unset months read as zero.
	w = s.do(http.MethodGet, "/api/budget?month=2030-01", "", tok)
	s.decode(w, &budget)
	s.Equal(0.0, budget.Amount)

	w = s.do(http.MethodPost, "/api/budget", `{"month":"April","amount":1}`, tok)
	s.Equal(http.StatusBadRequest, w.Code)
	w = s.do(http.MethodPost, "/api/budget", `{"month":"2025-04"}`, tok)
	s.Equal(http.StatusBadRequest, w.Code, "amount required")
}

func (s *ServerTestSuite) TestReports() {
	tok := s.signup("alice")
	s.do(http.MethodPost, "/add-expense", `{"amount":10,"category":"Food","note":"a","date":"2025-01-02"}`, tok)
	s.do(http.MethodPost, "/add-expense", `{"amount":20,"category":"Food","note":"b","date":"2025-02-02"}`, tok)

	w := s.do(http.MethodGet, "/api/reports", "", tok)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal("text/csv", w.Header().Get("Content-Type"))
	s.Contains(w.Header().Get("Content-Disposition"), "expenses.csv")
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	s.Require().Len(lines, 3)
	s.Equal("id,date,amount,category,note", lines[0])
	s.Contains(lines[1], "2025-02-02", "newest first")

	w = s.do(http.MethodGet, "/api/reports?type=summary", "", tok)
	s.Require().Equal(http.StatusOK, w.Code)
	lines = strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	s.Equal("year_month,total", lines[0])
	s.Equal("2025-01,10", lines[1])

	w = s.do(http.MethodGet, "/api/reports?format=pdf", "", tok)
	s.Equal(http.StatusNotImplemented, w.Code)

	w = s.do(http.MethodGet, "/api/reports?type=bogus", "", tok)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *ServerTestSuite) TestIncome() {
	alice := s.signup("alice")
	bob := s.signup("bob")

	w := s.do(http.MethodPost, "/add-income", `{"amount":1000,"source":"salary"}`, alice)
	s.Equal(http.StatusBadRequest, w.Code, "date required")

	w = s.do(http.MethodPost, "/add-income", `{"amount":1000,"source":"salary","date":"2025-01-31"}`, alice)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	// The ledger is global: bob sees alice's entry.
	w = s.do(http.MethodGet, "/view-income", "", bob)
	var list []map[string]any
	s.decode(w, &list)
	s.Require().Len(list, 1)
	s.Equal("salary", list[0]["source"])

	w = s.do(http.MethodGet, "/add-income", "", bob)
	var overview map[string]float64
	s.decode(w, &overview)
	s.Equal(1000.0, overview["total_income"])
}

func (s *ServerTestSuite) TestGroupFlow() {
	alice := s.signup("alice")
	bob := s.signup("bob")

	w := s.do(http.MethodPost, "/api/group", `{"name":"Trip","budget":900}`, alice)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var created map[string]string
	s.decode(w, &created)
	groupID := created["group_id"]
	s.NotEmpty(groupID)
	s.NotEmpty(created["invite_token"])
	s.Contains(created["invite_link"], "/join-group/")

	// Non-members get 403 on real and made-up ids alike.
	for _, id := range []string{groupID, "no-such-group"} {
		w = s.do(http.MethodGet, "/api/group/"+id, "", bob)
		s.Equal(http.StatusForbidden, w.Code, id)
	}

	// Bob joins through the invite link using his session cookie.
	login := s.do(http.MethodPost, "/api/login", `{"username":"bob","password":"hunter22"}`, "")
	cookies := login.Result().Cookies()
	s.Require().Len(cookies, 1)

	r := httptest.NewRequest(http.MethodGet, "/join-group/"+created["invite_token"], nil)
	r.AddCookie(cookies[0])
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, r)
	s.Equal(http.StatusFound, rec.Code, rec.Body.String())

	// Both members post to the shared ledger.
	w = s.do(http.MethodPost, fmt.Sprintf("/api/group/%s/expense", groupID),
		`{"amount":60,"note":"fuel","date":"2025-05-01"}`, alice)
	s.Require().Equal(http.StatusCreated, w.Code)
	w = s.do(http.MethodPost, fmt.Sprintf("/api/group/%s/expense", groupID),
		`{"amount":40,"category":"Food","date":"2025-05-02"}`, bob)
	s.Require().Equal(http.StatusCreated, w.Code)

	w = s.do(http.MethodGet, "/api/group/"+groupID, "", bob)
	s.Require().Equal(http.StatusOK, w.Code)
	var detail groupDetailResponse
	s.decode(w, &detail)
	s.Equal("Trip", detail.Name)
	s.ElementsMatch([]string{"alice", "bob"}, detail.Members)
	s.Equal(100.0, detail.TotalSpent)
	s.Require().Len(detail.Expenses, 2)
	s.Equal("alice", detail.Expenses[0].AddedBy)
	s.Equal("Uncategorized", detail.Expenses[0].Category)

	// Group expenses stay out of the members' personal ledgers... not so:
	// the poster owns the row, so it shows up in their own history too.
	w = s.do(http.MethodGet, "/get-expenses", "", alice)
	var personal []map[string]any
	s.decode(w, &personal)
	s.Require().Len(personal, 1)
	s.Equal(groupID, personal[0]["group_id"])

	// Members can mint fresh invites.
	w = s.do(http.MethodGet, fmt.Sprintf("/api/group/%s/invite", groupID), "", bob)
	s.Equal(http.StatusOK, w.Code)

	// Listing works on both route spellings.
	for _, path := range []string{"/api/group", "/api/groups"} {
		w = s.do(http.MethodGet, path, "", bob)
		s.Require().Equal(http.StatusOK, w.Code)
		var groups []groupSummary
		s.decode(w, &groups)
		s.Require().Len(groups, 1, path)
		s.Equal(groupID, groups[0].ID)
	}
}

func (s *ServerTestSuite) TestJoinGroupRejectsBadTokens() {
	alice := s.signup("alice")
	w := s.do(http.MethodPost, "/api/group", `{"name":"Trip"}`, alice)
	var created map[string]string
	s.decode(w, &created)

	// Garbage token is a 400 before any auth check.
	w = s.do(http.MethodGet, "/join-group/garbage", "", "")
	s.Equal(http.StatusBadRequest, w.Code)

	// A valid token without a session redirects to login.
	w = s.do(http.MethodGet, "/join-group/"+created["invite_token"], "", "")
	s.Equal(http.StatusFound, w.Code)
	s.Equal("/login", w.Header().Get("Location"))

	// A signed token that carries no group is refused.
	stray, err := s.tokens.Issue(map[string]string{"username": "alice"})
	s.Require().NoError(err)
	w = s.do(http.MethodGet, "/join-group/"+stray, "", "")
	s.Equal(http.StatusBadRequest, w.Code)
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}
