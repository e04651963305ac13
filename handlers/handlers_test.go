// SPDX-License-Identifier: GPL-3.0-only

package handlers_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"laundrolink-server/crypto"
	"laundrolink-server/db"
	"laundrolink-server/db/dbtest"
	"laundrolink-server/handlers"
	"laundrolink-server/middlewares"
	"laundrolink-server/models"
	"laundrolink-server/notifications"
	"laundrolink-server/routes"
	"laundrolink-server/store"
	"laundrolink-server/tokens"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

type renderCall struct {
	Name string
	Data any
}

type recordingRenderer struct {
	mu    sync.Mutex
	calls []renderCall
}

func (r *recordingRenderer) Render(w io.Writer, name string, data any, c echo.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, renderCall{Name: name, Data: data})
	_, err := fmt.Fprint(w, name)
	return err
}

func (r *recordingRenderer) last(t *testing.T) renderCall {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		t.Fatal("Nothing was rendered")
	}
	return r.calls[len(r.calls)-1]
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*models.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event *models.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testServer struct {
	t         *testing.T
	e         *echo.Echo
	gw        db.Gateway
	store     *store.Store
	handler   *handlers.Handler
	renderer  *recordingRenderer
	publisher *recordingPublisher
	clock     *fakeClock
	jar       map[string]*http.Cookie
}

func newTestServer(t *testing.T, configure ...func(*handlers.Config)) *testServer {
	t.Helper()
	t.Setenv("AUTH_RATE_LIMIT", "1000")
	t.Setenv("PWNED_PASSWORDS_ENABLED", "false")

	gw := dbtest.Gateway(t)
	c := &crypto.Crypto{ArgonTime: 1, ArgonMemory: 1024, ArgonThreads: 1, ArgonKeyLen: 32, ArgonSaltLen: 16}
	clock := &fakeClock{now: time.Now().UTC()}
	sessions := middlewares.NewSessionManager("handler-test-secret", false)

	cfg := handlers.Config{
		BaseURL:           "http://laundrolink.test",
		UploadDir:         t.TempDir(),
		ReviewCompletion:  handlers.ReviewCompletionThankYou,
		ResetLinkProvider: notifications.Mock,
	}
	for _, fn := range configure {
		fn(&cfg)
	}

	ts := &testServer{
		t:         t,
		e:         echo.New(),
		gw:        gw,
		store:     store.New(gw),
		renderer:  &recordingRenderer{},
		publisher: &recordingPublisher{},
		clock:     clock,
		jar:       map[string]*http.Cookie{},
	}
	ts.handler = &handlers.Handler{
		Store:      ts.store,
		Tokens:     tokens.NewManager(gw, c, tokens.WithClock(clock.Now)),
		Sessions:   sessions,
		Crypto:     c,
		Publisher:  ts.publisher,
		DeepLinker: notifications.WhatsApp{},
		Config:     cfg,
	}

	ts.e.Renderer = ts.renderer
	ts.e.Use(sessions.LoadSession)
	routes.RegisterRoutes(ts.e, ts.handler)
	return ts
}

func (ts *testServer) serve(req *http.Request) *httptest.ResponseRecorder {
	for _, c := range ts.jar {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	ts.e.ServeHTTP(rec, req)

	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 || c.Value == "" {
			delete(ts.jar, c.Name)
			continue
		}
		ts.jar[c.Name] = c
	}
	return rec
}

func (ts *testServer) get(path string) *httptest.ResponseRecorder {
	return ts.serve(httptest.NewRequest(http.MethodGet, path, nil))
}

func (ts *testServer) post(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return ts.serve(req)
}

func (ts *testServer) postMultipart(path string, form url.Values, fileField, fileName string, content []byte) *httptest.ResponseRecorder {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for key, values := range form {
		for _, v := range values {
			w.WriteField(key, v)
		}
	}
	if fileField != "" {
		fw, err := w.CreateFormFile(fileField, fileName)
		if err != nil {
			ts.t.Fatalf("CreateFormFile failed: %v", err)
		}
		fw.Write(content)
	}
	w.Close()

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return ts.serve(req)
}

// flashes loads a page and returns the messages it would display.
func (ts *testServer) flashes(path string) []string {
	ts.get(path)
	call := ts.renderer.last(ts.t)
	var page handlers.Page
	switch d := call.Data.(type) {
	case handlers.IndexPage:
		page = d.Page
	case handlers.LoginPage:
		page = d.Page
	case handlers.RegisterPage:
		page = d.Page
	case handlers.DashboardPage:
		page = d.Page
	case handlers.ServicePage:
		page = d.Page
	case handlers.ForgotPasswordPage:
		page = d.Page
	case handlers.LeaveReviewPage:
		page = d.Page
	case handlers.ResetPasswordPage:
		page = d.Page
	case handlers.ReviewsPage:
		page = d.Page
	default:
		ts.t.Fatalf("Unexpected page %T", call.Data)
	}
	out := make([]string, len(page.Flashes))
	for i, f := range page.Flashes {
		out[i] = f.Message
	}
	return out
}

func (ts *testServer) count(table string) int64 {
	var n int64
	if err := ts.gw.QueryOne(context.Background(), &n, "SELECT COUNT(*) FROM "+table); err != nil {
		ts.t.Fatalf("Count %s failed: %v", table, err)
	}
	return n
}

func registrationForm(name, phone, password string) url.Values {
	return url.Values{
		"name":         {name},
		"country_code": {"+254"},
		"phone":        {phone},
		"area":         {"Westlands"},
		"price":        {"120"},
		"delivery":     {"50"},
		"services":     {"wash_fold", "ironing_only"},
		"description":  {"Same day service"},
		"password":     {password},
	}
}

// register creates a provider through the form and returns its id.
func (ts *testServer) register(name, phone, password string) uint {
	ts.t.Helper()
	rec := ts.post("/register", registrationForm(name, phone, password))
	if rec.Code != http.StatusOK {
		ts.t.Fatalf("Register returned %d: %s", rec.Code, rec.Body.String())
	}
	page, ok := ts.renderer.last(ts.t).Data.(handlers.RegisterPage)
	if !ok || !page.ShowSuccess {
		ts.t.Fatalf("Expected registration success page, got %+v", ts.renderer.last(ts.t))
	}
	var id uint
	fmt.Sscanf(page.RedirectURL, "/owner_dashboard/%d", &id)
	return id
}

func assertRedirect(t *testing.T, rec *httptest.ResponseRecorder, location string) {
	t.Helper()
	if rec.Code != http.StatusFound {
		t.Fatalf("Expected 302, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get(echo.HeaderLocation); got != location {
		t.Fatalf("Expected redirect to %s, got %s", location, got)
	}
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
