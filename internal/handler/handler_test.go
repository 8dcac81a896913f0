package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/aperture-science/city-lens-api/internal/repository"
	"github.com/aperture-science/city-lens-api/internal/service"
)

// newTestAPI wires the full handler stack over the in-memory store.
func newTestAPI(t *testing.T) *echo.Echo {
	t.Helper()
	store := repository.NewMemoryStore()
	sessions := service.NewSessionManager(store, store, service.PolicyReplace)
	accounts := service.NewAccountService(store, sessions, bcrypt.MinCost)
	reports := service.NewReportService(sessions, store, nil)
	listings := service.NewListingService(sessions, store)

	users := NewUserHandler(accounts)
	rep := NewReportHandler(reports, listings)
	lst := NewListingHandler(listings)

	e := echo.New()
	e.GET("/healthz", Health)
	e.POST("/v1/users/register", users.Register)
	e.POST("/v1/users/login", users.Login)
	e.POST("/v1/users/logout", users.Logout)
	e.GET("/v1/users/me", users.Me)
	e.PUT("/v1/users/me", users.UpdateMe)
	e.POST("/v1/report/create", rep.Create)
	e.PUT("/v1/report/update", rep.Update)
	e.DELETE("/v1/report/delete", rep.Delete)
	e.GET("/v1/report/search", rep.Search)
	e.GET("/v1/list/latest", lst.Latest)
	e.GET("/v1/list/oldest", lst.Oldest)
	e.GET("/v1/list/active", lst.Active)
	e.GET("/v1/list/recently-resolved", lst.RecentlyResolved)
	return e
}

func do(e *echo.Echo, method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, token)
	}
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	return w
}

func loginTestUser(t *testing.T, e *echo.Echo, email string) string {
	t.Helper()
	body := fmt.Sprintf(`{"first_name":"Ada","last_name":"Lovelace","email":%q,"password":"secret"}`, email)
	if w := do(e, http.MethodPost, "/v1/users/register", "", body); w.Code != http.StatusOK {
		t.Fatalf("register code %d: %s", w.Code, w.Body.String())
	}
	w := do(e, http.MethodPost, "/v1/users/login", "", fmt.Sprintf(`{"email":%q,"password":"secret"}`, email))
	if w.Code != http.StatusOK {
		t.Fatalf("login code %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.Token == "" {
		t.Fatalf("login response missing token: %s", w.Body.String())
	}
	return resp.Token
}

func TestHealthz(t *testing.T) {
	e := newTestAPI(t)
	w := do(e, http.MethodGet, "/healthz", "", "")
	if w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Fatalf("healthz: %d %q", w.Code, w.Body.String())
	}
}

func TestRegisterLoginMe(t *testing.T) {
	e := newTestAPI(t)
	token := loginTestUser(t, e, "ada@example.com")

	w := do(e, http.MethodGet, "/v1/users/me", token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("me code %d: %s", w.Code, w.Body.String())
	}
	var me map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &me); err != nil {
		t.Fatalf("me body: %v", err)
	}
	if me["email"] != "ada@example.com" || me["role"] != "user" {
		t.Fatalf("unexpected profile: %v", me)
	}
	if _, leaked := me["password_hash"]; leaked {
		t.Fatalf("password hash serialized in profile")
	}

	if w := do(e, http.MethodGet, "/v1/users/me", "", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("me without token: code %d", w.Code)
	}
}

func TestCreateReportScenario(t *testing.T) {
	e := newTestAPI(t)
	token := loginTestUser(t, e, "ada@example.com")

	body := `{"title":"Pothole","description":"Large pothole","latitude":19.43,"longitude":-99.13,"zipcode":"01000","municipality":"CDMX"}`
	w := do(e, http.MethodPost, "/v1/report/create", token, body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create code %d: %s", w.Code, w.Body.String())
	}
	var rep map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &rep); err != nil {
		t.Fatalf("create body: %v", err)
	}
	if rep["status"] != "open" {
		t.Fatalf("status %v, want open", rep["status"])
	}
	if rep["id"] == nil || rep["id"] == "" {
		t.Fatalf("report id missing")
	}
	if rep["resolution_date"] != nil {
		t.Fatalf("fresh report has resolution_date %v", rep["resolution_date"])
	}
	if rep["location"] == nil {
		t.Fatalf("location not embedded in create response")
	}
}

func TestCreateReportRejections(t *testing.T) {
	e := newTestAPI(t)
	token := loginTestUser(t, e, "ada@example.com")

	body := `{"title":"Pothole","description":"x","latitude":120,"longitude":-99.13,"zipcode":"01000","municipality":"CDMX"}`
	w := do(e, http.MethodPost, "/v1/report/create", token, body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad latitude: code %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "invalid latitude") {
		t.Fatalf("bad latitude reason missing: %s", w.Body.String())
	}

	w = do(e, http.MethodPost, "/v1/report/create", "", `{"title":"x"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no token: code %d", w.Code)
	}
}

func TestUpdateAndDeleteReport(t *testing.T) {
	e := newTestAPI(t)
	token := loginTestUser(t, e, "ada@example.com")

	body := `{"title":"Pothole","description":"Large pothole","latitude":19.43,"longitude":-99.13,"zipcode":"01000","municipality":"CDMX"}`
	w := do(e, http.MethodPost, "/v1/report/create", token, body)
	var rep struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &rep); err != nil {
		t.Fatalf("create body: %v", err)
	}

	w = do(e, http.MethodPut, "/v1/report/update", token, fmt.Sprintf(`{"id":%q,"title":"Deep pothole"}`, rep.ID))
	if w.Code != http.StatusOK {
		t.Fatalf("update code %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Deep pothole") {
		t.Fatalf("update not reflected: %s", w.Body.String())
	}

	// A different user gets 403 on someone else's report.
	other := loginTestUser(t, e, "eve@example.com")
	w = do(e, http.MethodPut, "/v1/report/update", other, fmt.Sprintf(`{"id":%q,"title":"Mine now"}`, rep.ID))
	if w.Code != http.StatusForbidden {
		t.Fatalf("non-owner update: code %d", w.Code)
	}

	// Unknown report id is 404.
	w = do(e, http.MethodPut, "/v1/report/update", token, `{"id":"00000000-0000-0000-0000-000000000001","title":"x"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing report: code %d", w.Code)
	}

	w = do(e, http.MethodDelete, "/v1/report/delete", token, fmt.Sprintf(`{"id":%q}`, rep.ID))
	if w.Code != http.StatusOK {
		t.Fatalf("delete code %d: %s", w.Code, w.Body.String())
	}
	w = do(e, http.MethodDelete, "/v1/report/delete", token, fmt.Sprintf(`{"id":%q}`, rep.ID))
	if w.Code != http.StatusNotFound {
		t.Fatalf("double delete: code %d", w.Code)
	}
}

func TestSearchValidation(t *testing.T) {
	e := newTestAPI(t)
	token := loginTestUser(t, e, "ada@example.com")

	w := do(e, http.MethodGet, "/v1/report/search?zipcode=0100", token, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("short zipcode: code %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "zipcode must have 5 characters") {
		t.Fatalf("short zipcode reason missing: %s", w.Body.String())
	}

	w = do(e, http.MethodGet, "/v1/report/search?zipcode=01000", token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("valid search: code %d: %s", w.Code, w.Body.String())
	}

	w = do(e, http.MethodGet, "/v1/report/search?zipcode=01000&ascending=maybe", token, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad ascending flag: code %d", w.Code)
	}
}

func TestListingsEndToEnd(t *testing.T) {
	e := newTestAPI(t)
	token := loginTestUser(t, e, "ada@example.com")

	for i, spot := range []string{"-99.13", "-99.14"} {
		body := fmt.Sprintf(`{"title":"r%d","description":"d","latitude":19.43,"longitude":%s,"zipcode":"01000","municipality":"CDMX"}`, i, spot)
		if w := do(e, http.MethodPost, "/v1/report/create", token, body); w.Code != http.StatusCreated {
			t.Fatalf("seed %d: code %d: %s", i, w.Code, w.Body.String())
		}
	}

	for _, path := range []string{"/v1/list/latest", "/v1/list/oldest", "/v1/list/active", "/v1/list/recently-resolved"} {
		if w := do(e, http.MethodGet, path, "", ""); w.Code != http.StatusUnauthorized {
			t.Fatalf("%s without token: code %d", path, w.Code)
		}
		w := do(e, http.MethodGet, path, token, "")
		if w.Code != http.StatusOK {
			t.Fatalf("%s: code %d: %s", path, w.Code, w.Body.String())
		}
	}

	w := do(e, http.MethodGet, "/v1/list/latest", token, "")
	var rows []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &rows); err != nil {
		t.Fatalf("latest body: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("latest rows %d, want 2", len(rows))
	}
	loc, ok := rows[0]["location"].(map[string]any)
	if !ok || loc["zipcode"] != "01000" {
		t.Fatalf("row missing embedded location: %v", rows[0])
	}
}

func TestLogoutTextResponses(t *testing.T) {
	e := newTestAPI(t)
	token := loginTestUser(t, e, "ada@example.com")

	w := do(e, http.MethodPost, "/v1/users/logout", token, "")
	if w.Code != http.StatusOK || w.Body.String() != "session closed" {
		t.Fatalf("logout: %d %q", w.Code, w.Body.String())
	}
	w = do(e, http.MethodPost, "/v1/users/logout", token, "")
	if w.Code != http.StatusUnauthorized || w.Body.String() != "token not found" {
		t.Fatalf("second logout: %d %q", w.Code, w.Body.String())
	}
	w = do(e, http.MethodPost, "/v1/users/logout", "", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("logout without token: code %d", w.Code)
	}
}

func TestUpdateProfile(t *testing.T) {
	e := newTestAPI(t)
	token := loginTestUser(t, e, "ada@example.com")

	w := do(e, http.MethodPut, "/v1/users/me", token, `{"last_name":"Byron"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("update me: code %d: %s", w.Code, w.Body.String())
	}
	var me map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &me); err != nil {
		t.Fatalf("body: %v", err)
	}
	if me["last_name"] != "Byron" || me["first_name"] != "Ada" {
		t.Fatalf("partial update wrong: %v", me)
	}
}
