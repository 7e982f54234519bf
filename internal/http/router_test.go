package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gemeindetools/planweb/internal/auth"
	"github.com/gemeindetools/planweb/internal/config"
	"github.com/gemeindetools/planweb/internal/store"
)

func testRouter(prometheusEnabled bool) http.Handler {
	cfg := &config.Config{
		BaseURL:           "http://localhost:8080",
		PrometheusEnabled: prometheusEnabled,
	}
	cfg.Session.Secret = "0123456789abcdef0123456789abcdef"

	stor := store.New(nil, cfg.Session.Secret)
	authService := auth.NewService(cfg, stor, auth.NewSessionManager(cfg))
	return NewRouter(cfg, stor, authService)
}

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter(false).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "ok" {
		t.Errorf("body = %q, want ok", rec.Body.String())
	}
}

func TestMetricsEndpointDisabledByDefault(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter(false).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 when prometheus is disabled", rec.Code)
	}
}

func TestProtectedPagesRedirectToLogin(t *testing.T) {
	for _, path := range []string{"/", "/main", "/download/plan_months", "/ct/contacts", "/communi/events"} {
		t.Run(path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			testRouter(false).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

			if rec.Code != http.StatusFound {
				t.Fatalf("status = %d, want 302", rec.Code)
			}
			if got := rec.Header().Get("Location"); got != "/login_churchtools" {
				t.Errorf("redirect = %q, want /login_churchtools", got)
			}
		})
	}
}

func TestLoginPageReachableWithoutSession(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter(false).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login_churchtools", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
