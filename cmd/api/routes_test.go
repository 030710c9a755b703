package main

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"phoneline/internal/auth"
	"phoneline/internal/config"
	"phoneline/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func testRouter(t *testing.T, mutate func(*config.Config)) (*gin.Engine, *auth.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg, err := config.LoadFrom(map[string]string{
		"APP_ENV":         "local",
		"APP_PORT":        "8080",
		"JWT_SECRET":      "test-secret",
		"LINE_WORKSPACES": "+441234567890=w1",
	})
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if mutate != nil {
		mutate(&cfg)
	}
	am, err := auth.NewManager(cfg.Auth)
	if err != nil {
		t.Fatalf("auth: %v", err)
	}
	r := gin.New()
	registerRoutes(r, wire(cfg, am, nil, nil))
	return r, am
}

func TestHealthz(t *testing.T) {
	r, _ := testRouter(t, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestHealthz_ReportsRedisDown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg, err := config.LoadFrom(map[string]string{"APP_ENV": "local", "APP_PORT": "8080", "JWT_SECRET": "test-secret"})
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	am, err := auth.NewManager(cfg.Auth)
	if err != nil {
		t.Fatalf("auth: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 500 * time.Millisecond, MaxRetries: -1})
	defer rdb.Close()

	r := gin.New()
	registerRoutes(r, wire(cfg, am, nil, rdb))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 with redis unreachable, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"redis":"down"`) {
		t.Fatalf("expected redis to be reported down: %s", w.Body.String())
	}
}

func TestVoiceWebhook_InMemoryWiring(t *testing.T) {
	r, _ := testRouter(t, nil)
	form := url.Values{"CallSid": {"CA1"}, "From": {"+447700900999"}, "To": {"+441234567890"}}
	req := httptest.NewRequest(http.MethodPost, "/webhooks/twilio/voice", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "<Response>") {
		t.Fatalf("expected TwiML, got %s", w.Body.String())
	}
}

func TestVoiceWebhook_SignatureRequiredWhenTokenSet(t *testing.T) {
	r, _ := testRouter(t, func(c *config.Config) { c.Twilio.AuthToken = "tok" })
	req := httptest.NewRequest(http.MethodPost, "/webhooks/twilio/voice", strings.NewReader("CallSid=CA1"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestV1_RequiresToken(t *testing.T) {
	r, am := testRouter(t, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/settings/routing", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}

	tok, err := am.IssueAccess(time.Now(), "u1", "w1", rbac.RoleViewer)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/v1/routing/status", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}
