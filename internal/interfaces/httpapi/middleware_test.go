package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireServiceToken_EmptyConfigDisablesCheck(t *testing.T) {
	handler := RequireServiceToken("", okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/predictions", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 without configured token, got %d", rec.Code)
	}
}

func TestRequireServiceToken_RejectsWrongToken(t *testing.T) {
	handler := RequireServiceToken("secret", okHandler())

	req := httptest.NewRequest(http.MethodPost, "/v1/predictions", nil)
	req.Header.Set("X-Service-Token", "wrong")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 for wrong token, got %d", rec.Code)
	}
}

func TestRequireServiceToken_AcceptsConfiguredToken(t *testing.T) {
	handler := RequireServiceToken("secret", okHandler())

	req := httptest.NewRequest(http.MethodPost, "/v1/predictions", nil)
	req.Header.Set("X-Service-Token", "secret")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 for configured token, got %d", rec.Code)
	}
}

func TestRequireInternalJobToken_MissingConfigIsUnavailable(t *testing.T) {
	handler := RequireInternalJobToken("", okHandler())

	req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/sync-markets", nil)
	req.Header.Set("X-Internal-Job-Token", "anything")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503 without configured token, got %d", rec.Code)
	}
}

func TestRequireInternalJobToken_RejectsWrongToken(t *testing.T) {
	handler := RequireInternalJobToken("job-secret", okHandler())

	req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/sync-markets", nil)
	req.Header.Set("X-Internal-Job-Token", "wrong")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 for wrong token, got %d", rec.Code)
	}
}

func TestRequireInternalJobToken_AcceptsConfiguredToken(t *testing.T) {
	handler := RequireInternalJobToken("job-secret", okHandler())

	req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/sync-markets", nil)
	req.Header.Set("X-Internal-Job-Token", "job-secret")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 for configured token, got %d", rec.Code)
	}
}

func TestCORS_AllowedOriginPreflight(t *testing.T) {
	handler := CORS([]string{"https://bot.example.com"}, okHandler())

	req := httptest.NewRequest(http.MethodOptions, "/v1/predictions", nil)
	req.Header.Set("Origin", "https://bot.example.com")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204 for preflight, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://bot.example.com" {
		t.Fatalf("expected allow-origin echo, got %q", got)
	}
	if got := rec.Header().Get("Vary"); got != "Origin" {
		t.Fatalf("expected Vary: Origin, got %q", got)
	}
}

func TestCORS_UnknownOriginGetsNoHeaders(t *testing.T) {
	handler := CORS([]string{"https://bot.example.com"}, okHandler())

	req := httptest.NewRequest(http.MethodGet, "/v1/markets", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("did not expect allow-origin for unknown origin, got %q", got)
	}
}

func TestCORS_WildcardOrigin(t *testing.T) {
	handler := CORS([]string{"*"}, okHandler())

	req := httptest.NewRequest(http.MethodGet, "/v1/markets", nil)
	req.Header.Set("Origin", "https://anywhere.example.com")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected wildcard allow-origin, got %q", got)
	}
}

func TestShouldTraceRequest_SkipsHealthPaths(t *testing.T) {
	for _, path := range []string{"/healthz", "/health", "/livez", "/readyz"} {
		if shouldTraceRequest(path) {
			t.Fatalf("expected %s to be excluded from tracing", path)
		}
	}
	if !shouldTraceRequest("/v1/markets") {
		t.Fatalf("expected /v1/markets to be traced")
	}
}
