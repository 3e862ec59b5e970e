package paas

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

type fakePlatform struct {
	mu      sync.Mutex
	logins  atomic.Int32
	logs    []CreateLogRequest
	reject  atomic.Int32 // number of log writes to answer with 401
	expires string
}

func (f *fakePlatform) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["api_key"] != "key-1" {
			http.Error(w, "bad key", http.StatusUnauthorized)
			return
		}
		n := f.logins.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]string{"token": "tok-" + string(rune('0'+n)), "expires_at": f.expires})
	})
	mux.HandleFunc("/api/v1/logs", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			t.Errorf("log write without bearer")
		}
		if f.reject.Load() > 0 {
			f.reject.Add(-1)
			http.Error(w, "expired", http.StatusUnauthorized)
			return
		}
		var req CreateLogRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		f.logs = append(f.logs, req)
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	})
	return mux
}

func (f *fakePlatform) entries() []CreateLogRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]CreateLogRequest(nil), f.logs...)
}

func newPlatform(t *testing.T) (*fakePlatform, *Client) {
	t.Helper()
	f := &fakePlatform{}
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)
	return f, &Client{BaseURL: srv.URL + "/", APIKey: "key-1", HTTP: srv.Client()}
}

func TestLoginAndCreateLog(t *testing.T) {
	f, c := newPlatform(t)

	if err := c.CreateLog(context.Background(), CreateLogRequest{Action: "x", Level: "info"}); err != nil {
		t.Fatalf("create log: %v", err)
	}
	if c.Token() != "tok-1" {
		t.Fatalf("token=%q want=tok-1", c.Token())
	}
	logs := f.entries()
	if len(logs) != 1 || logs[0].Agent != Agent || logs[0].Metadata == nil {
		t.Fatalf("logs=%+v", logs)
	}

	if err := c.CreateLog(context.Background(), CreateLogRequest{Action: "y"}); err != nil {
		t.Fatalf("second create log: %v", err)
	}
	if n := f.logins.Load(); n != 1 {
		t.Fatalf("logins=%d want=1", n)
	}
}

func TestLoginRejectedKey(t *testing.T) {
	_, c := newPlatform(t)
	c.APIKey = "wrong"
	err := c.Login(context.Background())
	he, ok := err.(*HTTPError)
	if !ok || he.Status != http.StatusUnauthorized || he.Op != "login" {
		t.Fatalf("err=%v want login 401", err)
	}
}

func TestLoginRequiresConfig(t *testing.T) {
	if err := (&Client{APIKey: "k"}).Login(context.Background()); err == nil {
		t.Fatalf("expected error for empty base url")
	}
	if err := (&Client{BaseURL: "http://x"}).Login(context.Background()); err == nil {
		t.Fatalf("expected error for empty api key")
	}
}

func TestCreateLogRetriesOnceAfterUnauthorized(t *testing.T) {
	f, c := newPlatform(t)
	f.reject.Store(1)

	if err := c.CreateLog(context.Background(), CreateLogRequest{Action: "x"}); err != nil {
		t.Fatalf("create log: %v", err)
	}
	if n := f.logins.Load(); n != 2 {
		t.Fatalf("logins=%d want=2", n)
	}
	if len(f.entries()) != 1 {
		t.Fatalf("entries=%d want=1", len(f.entries()))
	}

	f.reject.Store(2)
	err := c.CreateLog(context.Background(), CreateLogRequest{Action: "x"})
	if he, ok := err.(*HTTPError); !ok || he.Status != http.StatusUnauthorized {
		t.Fatalf("err=%v want 401 after retry", err)
	}
}

func TestEnsureTokenRefreshesNearExpiry(t *testing.T) {
	f, c := newPlatform(t)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	f.expires = base.Add(time.Hour).Format(time.RFC3339)
	c.now = func() time.Time { return base }

	if err := c.EnsureToken(context.Background()); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if err := c.EnsureToken(context.Background()); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if n := f.logins.Load(); n != 1 {
		t.Fatalf("logins=%d want=1", n)
	}

	c.now = func() time.Time { return base.Add(59 * time.Minute) }
	if err := c.EnsureToken(context.Background()); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if n := f.logins.Load(); n != 2 {
		t.Fatalf("logins=%d want=2", n)
	}
}

func TestContextHelpers(t *testing.T) {
	if ClientFromContext(context.Background()) != nil {
		t.Fatalf("expected nil client")
	}
	c := &Client{}
	if got := ClientFromContext(WithClient(context.Background(), c)); got != c {
		t.Fatalf("client not carried by context")
	}
	// No client is a silent no-op.
	LogBestEffortCtx(context.Background(), "x", "info", nil)
}

func TestRequireBearerMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	t.Setenv("OF_AUTH_DISABLED", "")
	t.Setenv("OF_REQUIRE_GATEWAY", "1")

	r := gin.New()
	r.Use(RequireBearerMiddleware())
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/v1/settings", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		path    string
		auth    string
		project string
		want    int
	}{
		{"/healthz", "", "", http.StatusOK},
		{"/api/v1/settings", "", "", http.StatusUnauthorized},
		{"/api/v1/settings", "Bearer ", "proj", http.StatusUnauthorized},
		{"/api/v1/settings", "Bearer abc", "", http.StatusUnauthorized},
		{"/api/v1/settings", "Bearer abc", "proj", http.StatusOK},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, tt.path, nil)
		if tt.auth != "" {
			req.Header.Set("Authorization", tt.auth)
		}
		if tt.project != "" {
			req.Header.Set(ProjectHeader, tt.project)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != tt.want {
			t.Fatalf("%s auth=%q project=%q code=%d want=%d", tt.path, tt.auth, tt.project, w.Code, tt.want)
		}
	}
}

func TestRequireBearerDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequireBearer(AuthOptions{Disabled: true}))
	r.GET("/api/v1/settings", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/settings", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("code=%d want=200", w.Code)
	}
}

func TestWriteAuditMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	f, c := newPlatform(t)

	r := gin.New()
	r.Use(InjectClientMiddleware(c))
	r.Use(PaaSWriteAuditMiddleware(c, nil))
	r.GET("/api/v1/settings", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.PUT("/api/v1/settings/:key", func(ctx *gin.Context) {
		if ClientFromGin(ctx) != c {
			t.Errorf("client not injected")
		}
		ctx.Status(http.StatusBadRequest)
	})

	for _, m := range []string{http.MethodGet, http.MethodPut} {
		path := "/api/v1/settings"
		if m == http.MethodPut {
			path += "/feature.discovery"
		}
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(m, path, nil))
	}

	logs := f.entries()
	if len(logs) != 1 {
		t.Fatalf("logs=%d want=1", len(logs))
	}
	if logs[0].Action != "oppfinder_http_write" || logs[0].Level != "warn" {
		t.Fatalf("log=%+v", logs[0])
	}
	if logs[0].Details["route"] != "/api/v1/settings/:key" {
		t.Fatalf("route=%v", logs[0].Details["route"])
	}
}

func TestLevelFromStatus(t *testing.T) {
	for status, want := range map[int]string{200: "info", 404: "warn", 502: "error"} {
		if got := levelFromStatus(status); got != want {
			t.Fatalf("status=%d level=%s want=%s", status, got, want)
		}
	}
}
