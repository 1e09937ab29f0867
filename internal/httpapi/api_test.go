package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"jobgrid.org/internal/auth"
	"jobgrid.org/internal/board"
	"jobgrid.org/internal/gate"
	"jobgrid.org/internal/session"
)

type apiClient struct {
	baseURL string
	client  *http.Client
	store   board.Store
	t       *testing.T
}

func newTestAPI(t *testing.T) *apiClient {
	t.Helper()

	t.Setenv("JOBGRID_AUTH_SECRET", "test-secret")
	session.ResetSecretForTests()

	store := board.NewInMemory()
	local := session.NewMemoryLocalStore()
	authSvc := auth.NewService(store.Users(), local, session.NewBroadcaster(), time.Hour)
	resolver := session.NewResolver(session.TokenSource{}, store.Users(), local)

	api := New(store, authSvc, resolver, Config{
		Version:       "test",
		RateBurst:     100,
		RatePerSecond: 100,
	})

	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	client := srv.Client()
	// Gate decisions arrive as 303s; the tests assert on them directly.
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}

	return &apiClient{
		baseURL: srv.URL,
		client:  client,
		store:   store,
		t:       t,
	}
}

func (c *apiClient) do(method, path string, body any, headers map[string]string) *http.Response {
	c.t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal body: %v", err)
		}
	}
	req, err := http.NewRequest(method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		c.t.Fatalf("do request: %v", err)
	}
	return resp
}

func (c *apiClient) get(path string, params url.Values, headers map[string]string) *http.Response {
	c.t.Helper()
	u := path
	if params != nil {
		u += "?" + params.Encode()
	}
	return c.do(http.MethodGet, u, nil, headers)
}

func decodeBody(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

// seedUser creates an account; a non-empty password makes it a verified one.
func (c *apiClient) seedUser(userType board.UserType, email, password string) *board.User {
	c.t.Helper()
	u := &board.User{Email: email, FullName: "Test " + string(userType), UserType: userType}
	if password != "" {
		hash, err := auth.HashPassword(password)
		if err != nil {
			c.t.Fatalf("hash: %v", err)
		}
		u.PasswordHash = hash
		u.AuthUserID = "auth-" + email
	}
	if err := c.store.Users().Create(context.Background(), u); err != nil {
		c.t.Fatalf("seed user: %v", err)
	}
	return u
}

func (c *apiClient) bearerFor(u *board.User) map[string]string {
	c.t.Helper()
	token, err := session.GenerateToken(u.ID, string(u.UserType), time.Hour)
	if err != nil {
		c.t.Fatalf("token: %v", err)
	}
	return map[string]string{"Authorization": "Bearer " + token}
}

func TestHealthz(t *testing.T) {
	c := newTestAPI(t)
	resp := c.get("/healthz", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
	var body map[string]any
	decodeBody(t, resp, &body)
	if body["service"] != "jobgrid-api" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestLoginVerifiedAndSession(t *testing.T) {
	c := newTestAPI(t)
	c.seedUser(board.UserTypeEmployer, "emp@example.com", "pw12345")

	resp := c.do(http.MethodPost, "/v1/auth/login",
		map[string]string{"email": "emp@example.com", "password": "pw12345"},
		map[string]string{"X-Client-ID": "client-1"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status: %d", resp.StatusCode)
	}
	var login loginResponse
	decodeBody(t, resp, &login)
	if login.Token == "" {
		t.Fatal("verified login must return a token")
	}
	if login.RedirectTo != gate.EmployerHomePath {
		t.Fatalf("unexpected redirect: %s", login.RedirectTo)
	}

	resp = c.get("/v1/session", nil, map[string]string{"Authorization": "Bearer " + login.Token})
	var sess map[string]any
	decodeBody(t, resp, &sess)
	if sess["authenticated"] != true || sess["user_type"] != "employer" {
		t.Fatalf("unexpected session: %v", sess)
	}
}

func TestLoginAdHocResolvesThroughLocalSession(t *testing.T) {
	c := newTestAPI(t)
	c.seedUser(board.UserTypeJobSeeker, "adhoc@example.com", "")

	resp := c.do(http.MethodPost, "/v1/auth/login",
		map[string]string{"email": "adhoc@example.com", "password": "whatever"},
		map[string]string{"X-Client-ID": "client-9"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status: %d", resp.StatusCode)
	}
	var login loginResponse
	decodeBody(t, resp, &login)
	if login.Token != "" {
		t.Fatal("ad-hoc login must not mint a token")
	}

	// No bearer token: the actor comes from the local session alone.
	resp = c.get("/v1/session", nil, map[string]string{"X-Client-ID": "client-9"})
	var sess map[string]any
	decodeBody(t, resp, &sess)
	if sess["authenticated"] != true || sess["user_type"] != "job_seeker" {
		t.Fatalf("unexpected session: %v", sess)
	}
}

func TestLogoutClearsLocalSession(t *testing.T) {
	c := newTestAPI(t)
	c.seedUser(board.UserTypeJobSeeker, "adhoc@example.com", "")

	headers := map[string]string{"X-Client-ID": "client-2"}
	resp := c.do(http.MethodPost, "/v1/auth/login",
		map[string]string{"email": "adhoc@example.com", "password": "pw"}, headers)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status: %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = c.do(http.MethodPost, "/v1/auth/logout", nil, headers)
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("logout status: %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != gate.LoginPath {
		t.Fatalf("logout redirect: %s", loc)
	}
	resp.Body.Close()

	resp = c.get("/v1/session", nil, headers)
	var sess map[string]any
	decodeBody(t, resp, &sess)
	if sess["authenticated"] != false {
		t.Fatalf("session must be anonymous after logout: %v", sess)
	}
}

func TestDashboardGateRedirects(t *testing.T) {
	c := newTestAPI(t)
	employer := c.seedUser(board.UserTypeEmployer, "emp@example.com", "pw12345")

	// Anonymous: to login.
	resp := c.get("/v1/dashboard", nil, nil)
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("anonymous status: %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != gate.LoginPath {
		t.Fatalf("anonymous redirect: %s", loc)
	}
	resp.Body.Close()

	// Employer on the seeker dashboard: to its own home.
	resp = c.get("/v1/dashboard", nil, c.bearerFor(employer))
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("employer status: %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != gate.EmployerHomePath {
		t.Fatalf("employer redirect: %s", loc)
	}
	resp.Body.Close()
}

func TestJobPostingAndBrowse(t *testing.T) {
	c := newTestAPI(t)
	employer := c.seedUser(board.UserTypeEmployer, "emp@example.com", "pw12345")

	resp := c.do(http.MethodPost, "/v1/jobs", map[string]any{
		"title": "Backend Engineer", "company": "Acme", "location": "Remote",
		"job_type": "full_time", "category": "engineering",
	}, c.bearerFor(employer))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create job status: %d", resp.StatusCode)
	}
	var job board.Job
	decodeBody(t, resp, &job)
	if !job.IsActive {
		t.Fatal("new postings must be active")
	}

	resp = c.get("/v1/jobs", url.Values{"search": {"backend"}}, nil)
	var list struct {
		Items []board.Job `json:"items"`
		Total int         `json:"total"`
	}
	decodeBody(t, resp, &list)
	if list.Total != 1 || list.Items[0].ID != job.ID {
		t.Fatalf("unexpected listing: %+v", list)
	}

	// Seekers cannot post.
	seeker := c.seedUser(board.UserTypeJobSeeker, "seeker@example.com", "")
	resp = c.do(http.MethodPost, "/v1/jobs", map[string]any{
		"title": "X", "company": "Y",
	}, c.bearerFor(seeker))
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("seeker post status: %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestApplyTwiceReturnsConflict(t *testing.T) {
	c := newTestAPI(t)
	employer := c.seedUser(board.UserTypeEmployer, "emp@example.com", "pw12345")
	seeker := c.seedUser(board.UserTypeJobSeeker, "seeker@example.com", "pw12345")

	job := &board.Job{EmployerID: employer.ID, Title: "SRE", Company: "Acme", IsActive: true}
	if err := c.store.Jobs().Create(context.Background(), job); err != nil {
		t.Fatalf("seed job: %v", err)
	}

	headers := c.bearerFor(seeker)
	resp := c.do(http.MethodPost, "/v1/jobs/"+job.ID+"/apply", map[string]string{"cover_letter": "hi"}, headers)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("first apply status: %d", resp.StatusCode)
	}
	var app board.Application
	decodeBody(t, resp, &app)
	if app.JobTitle != "SRE" || app.Status != board.StatusPending {
		t.Fatalf("unexpected application: %+v", app)
	}

	resp = c.do(http.MethodPost, "/v1/jobs/"+job.ID+"/apply", map[string]string{"cover_letter": "hi"}, headers)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("second apply status: %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestStatusUpdateOwnershipAndTransitions(t *testing.T) {
	c := newTestAPI(t)
	owner := c.seedUser(board.UserTypeEmployer, "owner@example.com", "pw12345")
	other := c.seedUser(board.UserTypeEmployer, "other@example.com", "pw12345")
	ctx := context.Background()

	job := &board.Job{EmployerID: owner.ID, Title: "SRE", Company: "Acme", IsActive: true}
	if err := c.store.Jobs().Create(ctx, job); err != nil {
		t.Fatalf("seed job: %v", err)
	}
	app := &board.Application{JobID: job.ID, JobSeekerID: "seeker-1", Status: board.StatusPending}
	if err := c.store.Applications().Create(ctx, app); err != nil {
		t.Fatalf("seed application: %v", err)
	}

	path := "/v1/applications/" + app.ID + "/status"

	// Another employer may not decide it.
	resp := c.do(http.MethodPatch, path, map[string]string{"status": "accepted"}, c.bearerFor(other))
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("foreign employer status: %d", resp.StatusCode)
	}
	resp.Body.Close()

	// The owner accepts, then re-decides to rejected.
	resp = c.do(http.MethodPatch, path, map[string]string{"status": "accepted"}, c.bearerFor(owner))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("accept status: %d", resp.StatusCode)
	}
	var updated board.Application
	decodeBody(t, resp, &updated)
	if updated.Status != board.StatusAccepted {
		t.Fatalf("unexpected status: %s", updated.Status)
	}

	resp = c.do(http.MethodPatch, path, map[string]string{"status": "rejected"}, c.bearerFor(owner))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("re-decision status: %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Back to pending is not a legal move.
	resp = c.do(http.MethodPatch, path, map[string]string{"status": "pending"}, c.bearerFor(owner))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid transition status: %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestAdminCategoriesCRUD(t *testing.T) {
	c := newTestAPI(t)
	admin := c.seedUser(board.UserTypeAdmin, "admin@example.com", "pw12345")
	seeker := c.seedUser(board.UserTypeJobSeeker, "seeker@example.com", "pw12345")

	// Non-admins are redirected to their own home.
	resp := c.do(http.MethodPost, "/v1/admin/categories", map[string]string{"name": "Engineering"}, c.bearerFor(seeker))
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("seeker create status: %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = c.do(http.MethodPost, "/v1/admin/categories", map[string]string{"name": "Engineering"}, c.bearerFor(admin))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status: %d", resp.StatusCode)
	}
	var cat board.Category
	decodeBody(t, resp, &cat)

	resp = c.do(http.MethodPut, "/v1/admin/categories/"+cat.ID, map[string]string{"name": "Platform"}, c.bearerFor(admin))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update status: %d", resp.StatusCode)
	}
	resp.Body.Close()

	// The public read reflects the change.
	resp = c.get("/v1/categories", nil, nil)
	var list struct {
		Items []board.Category `json:"items"`
	}
	decodeBody(t, resp, &list)
	if len(list.Items) != 1 || list.Items[0].Name != "Platform" {
		t.Fatalf("unexpected categories: %+v", list.Items)
	}

	resp = c.do(http.MethodDelete, "/v1/admin/categories/"+cat.ID, nil, c.bearerFor(admin))
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status: %d", resp.StatusCode)
	}
	resp.Body.Close()
}
