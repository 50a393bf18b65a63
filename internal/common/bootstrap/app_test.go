package bootstrap

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/AlibekovAA/toggle-task/internal/common/config"
	"github.com/AlibekovAA/toggle-task/internal/common/logger"
	incidentdomain "github.com/AlibekovAA/toggle-task/internal/incident/domain"
	"github.com/AlibekovAA/toggle-task/internal/task/domain"
	userdomain "github.com/AlibekovAA/toggle-task/internal/user/domain"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func testConfig(incidentURL string) config.AppConfig {
	cfg := config.AppConfig{
		HTTPPort:       "0",
		RequestTimeout: 5 * time.Second,
		BcryptCost:     bcrypt.MinCost,
		Storage: config.StorageConfig{
			Driver:     config.DriverSQLite,
			SQLitePath: ":memory:",
		},
		Session: config.SessionConfig{
			Secret: testSecret,
			TTL:    time.Hour,
		},
		Incident: config.IncidentConfig{
			URL:      incidentURL,
			Timeout:  2 * time.Second,
			Username: "svc",
			Password: "svc-pass",
		},
	}
	return cfg
}

type testApp struct {
	*App
	server *httptest.Server
}

func newTestApp(t *testing.T, incidentURL string) *testApp {
	t.Helper()
	log := logger.NewWriter(io.Discard, "test", "error")
	app, err := NewApp(context.Background(), testConfig(incidentURL), log, nil)
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	server := httptest.NewServer(app.Handler())
	t.Cleanup(func() {
		server.Close()
		app.Close()
	})
	return &testApp{App: app, server: server}
}

// browser follows no redirects so tests can assert on them, but keeps cookies.
func (a *testApp) browser(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

type response struct {
	status   int
	location string
	body     string
}

func do(t *testing.T, c *http.Client, method, target string, form url.Values) response {
	t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequest(method, target, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	res, err := c.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}
	defer res.Body.Close()
	raw, _ := io.ReadAll(res.Body)
	return response{status: res.StatusCode, location: res.Header.Get("Location"), body: string(raw)}
}

func (a *testApp) signup(t *testing.T, c *http.Client, username string) userdomain.User {
	t.Helper()
	res := do(t, c, http.MethodPost, a.server.URL+"/signup", url.Values{
		"username":              {username},
		"password":              {"secret123"},
		"password_confirmation": {"secret123"},
	})
	if res.status != http.StatusSeeOther || res.location != "/current" {
		t.Fatalf("signup %s: expected 303 to /current, got %d %q", username, res.status, res.location)
	}
	user, err := a.Storage.Users.FindByUsername(context.Background(), username)
	if err != nil {
		t.Fatalf("find %s: %v", username, err)
	}
	return user
}

func (a *testApp) onlyCurrentTask(t *testing.T, owner userdomain.ID) domain.Task {
	t.Helper()
	tasks, err := a.Tasks.ListCurrent(context.Background(), owner)
	if err != nil {
		t.Fatalf("ListCurrent: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected one current task, got %d", len(tasks))
	}
	return tasks[0]
}

func TestApp_TaskLifecycle(t *testing.T) {
	app := newTestApp(t, "")
	c := app.browser(t)
	base := app.server.URL

	res := do(t, c, http.MethodGet, base+"/", nil)
	if res.status != http.StatusOK || !strings.Contains(res.body, "Create an account") {
		t.Fatalf("landing page: got %d", res.status)
	}

	res = do(t, c, http.MethodGet, base+"/current", nil)
	if res.status != http.StatusSeeOther || res.location != "/login?next=%2Fcurrent" {
		t.Fatalf("guard: expected redirect to login, got %d %q", res.status, res.location)
	}

	alice := app.signup(t, c, "alice")

	res = do(t, c, http.MethodPost, base+"/create", url.Values{"title": {"buy milk"}, "memo": {"2 liters"}, "important": {"on"}})
	if res.status != http.StatusSeeOther || res.location != "/current" {
		t.Fatalf("create: expected 303 to /current, got %d %q", res.status, res.location)
	}

	res = do(t, c, http.MethodGet, base+"/current", nil)
	if res.status != http.StatusOK || !strings.Contains(res.body, "buy milk") {
		t.Fatalf("current list should show the new task, got %d", res.status)
	}

	task := app.onlyCurrentTask(t, alice.ID)
	if !task.Important || task.Memo != "2 liters" {
		t.Errorf("unexpected stored task: %+v", task)
	}

	res = do(t, c, http.MethodPost, base+"/task/"+string(task.ID), url.Values{"title": {"buy oat milk"}, "memo": {""}})
	if res.status != http.StatusSeeOther {
		t.Fatalf("update: expected 303, got %d", res.status)
	}
	task = app.onlyCurrentTask(t, alice.ID)
	if task.Title != "buy oat milk" || task.Important {
		t.Errorf("update not applied: %+v", task)
	}

	res = do(t, c, http.MethodPost, base+"/task/"+string(task.ID)+"/complete", nil)
	if res.status != http.StatusSeeOther {
		t.Fatalf("complete: expected 303, got %d", res.status)
	}

	res = do(t, c, http.MethodGet, base+"/completed", nil)
	if !strings.Contains(res.body, "buy oat milk") {
		t.Errorf("completed list should show the task")
	}
	res = do(t, c, http.MethodGet, base+"/current", nil)
	if strings.Contains(res.body, "buy oat milk") {
		t.Errorf("current list should no longer show the task")
	}

	res = do(t, c, http.MethodPost, base+"/task/"+string(task.ID)+"/complete", nil)
	if res.status != http.StatusConflict {
		t.Errorf("second complete: expected 409, got %d", res.status)
	}

	res = do(t, c, http.MethodPost, base+"/task/"+string(task.ID)+"/delete", nil)
	if res.status != http.StatusSeeOther {
		t.Fatalf("delete: expected 303, got %d", res.status)
	}
	res = do(t, c, http.MethodGet, base+"/task/"+string(task.ID), nil)
	if res.status != http.StatusNotFound {
		t.Errorf("deleted task: expected 404, got %d", res.status)
	}
}

func TestApp_CreateValidationRerendersForm(t *testing.T) {
	app := newTestApp(t, "")
	c := app.browser(t)
	alice := app.signup(t, c, "alice")

	res := do(t, c, http.MethodPost, app.server.URL+"/create", url.Values{"title": {"   "}, "memo": {"keep me"}})
	if res.status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.status)
	}
	if !strings.Contains(res.body, "keep me") {
		t.Errorf("form should keep the submitted memo")
	}

	tasks, _ := app.Tasks.ListCurrent(context.Background(), alice.ID)
	if len(tasks) != 0 {
		t.Errorf("no task should have been stored, got %d", len(tasks))
	}
}

func TestApp_OtherUsersTasksAreNotFound(t *testing.T) {
	app := newTestApp(t, "")
	aliceClient := app.browser(t)
	bobClient := app.browser(t)
	alice := app.signup(t, aliceClient, "alice")
	app.signup(t, bobClient, "bob")

	do(t, aliceClient, http.MethodPost, app.server.URL+"/create", url.Values{"title": {"secret plan"}})
	task := app.onlyCurrentTask(t, alice.ID)
	taskURL := app.server.URL + "/task/" + string(task.ID)

	missingURL := app.server.URL + "/task/00000000-0000-4000-8000-000000000000"
	for _, target := range []string{taskURL, missingURL} {
		res := do(t, bobClient, http.MethodGet, target, nil)
		if res.status != http.StatusNotFound {
			t.Errorf("GET %s as bob: expected 404, got %d", target, res.status)
		}
	}

	for _, suffix := range []string{"/complete", "/delete"} {
		res := do(t, bobClient, http.MethodPost, taskURL+suffix, nil)
		if res.status != http.StatusNotFound {
			t.Errorf("POST %s as bob: expected 404, got %d", suffix, res.status)
		}
	}

	if got := app.onlyCurrentTask(t, alice.ID); got.Title != "secret plan" {
		t.Errorf("alice's task changed: %+v", got)
	}
}

func TestApp_LogoutRevokesSession(t *testing.T) {
	app := newTestApp(t, "")
	c := app.browser(t)
	app.signup(t, c, "alice")

	serverURL, _ := url.Parse(app.server.URL)
	var token string
	for _, ck := range c.Jar.Cookies(serverURL) {
		if ck.Name == "session" {
			token = ck.Value
		}
	}
	if token == "" {
		t.Fatal("expected a session cookie after signup")
	}

	res := do(t, c, http.MethodPost, app.server.URL+"/logout", nil)
	if res.status != http.StatusSeeOther || res.location != "/" {
		t.Fatalf("logout: expected 303 to /, got %d %q", res.status, res.location)
	}

	replay := app.browser(t)
	replay.Jar.SetCookies(serverURL, []*http.Cookie{{Name: "session", Value: token, Path: "/"}})
	res = do(t, replay, http.MethodGet, app.server.URL+"/current", nil)
	if res.status != http.StatusSeeOther {
		t.Errorf("revoked session should be redirected to login, got %d", res.status)
	}
}

func TestApp_LoginHonoursLocalNext(t *testing.T) {
	app := newTestApp(t, "")
	app.signup(t, app.browser(t), "alice")

	tests := []struct {
		next string
		want string
	}{
		{next: "/completed", want: "/completed"},
		{next: "//evil.example", want: "/current"},
		{next: "https://evil.example/", want: "/current"},
	}
	for _, tt := range tests {
		res := do(t, app.browser(t), http.MethodPost, app.server.URL+"/login", url.Values{
			"username": {"alice"},
			"password": {"secret123"},
			"next":     {tt.next},
		})
		if res.status != http.StatusSeeOther || res.location != tt.want {
			t.Errorf("next=%q: expected 303 to %q, got %d %q", tt.next, tt.want, res.status, res.location)
		}
	}

	res := do(t, app.browser(t), http.MethodPost, app.server.URL+"/login", url.Values{
		"username": {"alice"},
		"password": {"wrong-pass1"},
	})
	if res.status != http.StatusUnauthorized {
		t.Errorf("wrong password: expected 401, got %d", res.status)
	}
}

func TestApp_ReportIssue(t *testing.T) {
	var got incidentdomain.Payload
	var user, pass string
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, _ = r.BasicAuth()
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"result":{"number":"INC0010001","sys_id":"abc"}}`)
	}))
	defer remote.Close()

	app := newTestApp(t, remote.URL)
	c := app.browser(t)
	app.signup(t, c, "alice")

	res := do(t, c, http.MethodPost, app.server.URL+"/report-issue", url.Values{
		"title":     {"printer on fire"},
		"memo":      {"third floor"},
		"important": {"on"},
	})
	if res.status != http.StatusSeeOther || res.location != "/current?reported=INC0010001" {
		t.Fatalf("expected redirect with ticket number, got %d %q", res.status, res.location)
	}

	want := incidentdomain.Payload{
		CallerID:         "alice",
		ShortDescription: "printer on fire",
		Description:      "third floor",
		Urgency:          incidentdomain.UrgencyHigh,
	}
	if got != want {
		t.Errorf("payload = %+v, want %+v", got, want)
	}
	if user != "svc" || pass != "svc-pass" {
		t.Errorf("expected configured basic auth, got %q/%q", user, pass)
	}

	res = do(t, c, http.MethodGet, app.server.URL+res.location, nil)
	if !strings.Contains(res.body, "INC0010001") {
		t.Errorf("current page should mention the reported ticket")
	}
}

func TestApp_ReportIssueRemoteFailureKeepsForm(t *testing.T) {
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer remote.Close()

	app := newTestApp(t, remote.URL)
	c := app.browser(t)
	app.signup(t, c, "alice")

	res := do(t, c, http.MethodPost, app.server.URL+"/report-issue", url.Values{"title": {"vpn broken"}})
	if res.status != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", res.status)
	}
	if !strings.Contains(res.body, "vpn broken") {
		t.Errorf("form should keep the submitted title")
	}
}

func TestApp_ReportIssueDisabled(t *testing.T) {
	app := newTestApp(t, "")
	c := app.browser(t)
	app.signup(t, c, "alice")

	res := do(t, c, http.MethodPost, app.server.URL+"/report-issue", url.Values{"title": {"anything"}})
	if res.status != http.StatusServiceUnavailable {
		t.Errorf("expected 503 when reporting is not configured, got %d", res.status)
	}
}

func TestApp_Plumbing(t *testing.T) {
	app := newTestApp(t, "")
	c := app.browser(t)
	base := app.server.URL

	res := do(t, c, http.MethodGet, base+"/health", nil)
	if res.status != http.StatusOK || !strings.Contains(res.body, `"status":"ok"`) {
		t.Errorf("health: got %d %s", res.status, res.body)
	}

	res = do(t, c, http.MethodGet, base+"/metrics", nil)
	if res.status != http.StatusOK {
		t.Errorf("metrics: got %d", res.status)
	}

	res = do(t, c, http.MethodGet, base+"/no-such-page", nil)
	if res.status != http.StatusNotFound {
		t.Errorf("unknown page: expected 404, got %d", res.status)
	}

	res = do(t, c, http.MethodGet, base+"/logout", nil)
	if res.status != http.StatusMethodNotAllowed {
		t.Errorf("GET /logout: expected 405, got %d", res.status)
	}

	res = do(t, c, http.MethodDelete, base+"/create", nil)
	if res.status != http.StatusMethodNotAllowed {
		t.Errorf("DELETE /create: expected 405, got %d", res.status)
	}
}

func TestMigrate_SQLite(t *testing.T) {
	log := logger.NewWriter(io.Discard, "test", "error")
	cfg := config.StorageConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: t.TempDir() + "/tasks.db",
	}

	pending, err := Migrate(context.Background(), cfg, log, true)
	if err != nil || len(pending) != 0 {
		t.Fatalf("dry run: got %v, %v", pending, err)
	}

	applied, err := Migrate(context.Background(), cfg, log, false)
	if err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if len(applied) != 1 {
		t.Errorf("expected one applied step, got %v", applied)
	}

	storage, err := OpenStorage(context.Background(), cfg, log)
	if err != nil {
		t.Fatalf("OpenStorage: %v", err)
	}
	defer storage.Close()
	if err := storage.Pinger.Ping(context.Background()); err != nil {
		t.Errorf("ping: %v", err)
	}
}

func TestOpenStorage_UnknownDriver(t *testing.T) {
	log := logger.NewWriter(io.Discard, "test", "error")
	if _, err := OpenStorage(context.Background(), config.StorageConfig{Driver: "mysql"}, log); err == nil {
		t.Fatal("expected an error for an unsupported driver")
	}
}
