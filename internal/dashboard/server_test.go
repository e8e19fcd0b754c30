package dashboard

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fundingboard/config"
	"fundingboard/internal/state"
	"fundingboard/logger"
)

func TestNormalizeAddress(t *testing.T) {
	cases := map[string]string{
		"":                               "0.0.0.0:8080",
		"  :9090  ":                      "0.0.0.0:9090",
		"localhost":                      "localhost:8080",
		"0.0.0.0:80":                     "0.0.0.0:80",
		"[::1]:443":                      "[::1]:443",
		"::1":                            "[::1]:8080",
		"*:8080":                         "0.0.0.0:8080",
		"http://13.200.112.203:8080":     "13.200.112.203:8080",
		"https://13.200.112.203":         "13.200.112.203:8080",
		"http://:7070":                   "0.0.0.0:7070",
		"tcp://localhost:5050":           "localhost:5050",
		"https://dashboard.example.com/": "dashboard.example.com:8080",
	}

	for input, want := range cases {
		if got := normalizeAddress(input); got != want {
			t.Fatalf("normalizeAddress(%q) = %q, want %q", input, got, want)
		}
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	store := state.NewStore(true)
	cfg := config.DashboardConfig{Enabled: true, Address: ":9000", HistorySize: 10}

	srv, err := NewServer(cfg, 30*time.Second, store, nil, logger.Logger())
	if err != nil {
		t.Fatalf("NewServer returned error: %v", err)
	}
	if srv == nil {
		t.Fatal("expected dashboard server, got nil")
	}
	t.Cleanup(srv.cleanup)
	return srv
}

func TestNewServerNormalizesConfiguredAddress(t *testing.T) {
	srv := newTestServer(t)
	if got := srv.Address(); got != "0.0.0.0:9000" {
		t.Fatalf("server address = %q, want %q", got, "0.0.0.0:9000")
	}
}

func TestNewServerDisabledReturnsNil(t *testing.T) {
	srv, err := NewServer(config.DashboardConfig{}, time.Second, state.NewStore(true), nil, logger.Logger())
	if err != nil {
		t.Fatalf("NewServer returned error: %v", err)
	}
	if srv != nil {
		t.Fatal("disabled dashboard must yield a nil server")
	}
}

func TestIndexRendersLoadingScreen(t *testing.T) {
	srv := newTestServer(t)
	srv.store.BeginFetch()

	router, err := srv.buildRouter("fundingboard")
	if err != nil {
		t.Fatalf("buildRouter error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("unexpected status code: %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "Loading funding data") {
		t.Fatalf("loading screen not rendered:\n%s", res.Body.String())
	}
}

func TestSnapshotEndpointReturnsViewState(t *testing.T) {
	srv := newTestServer(t)
	srv.store.ApplyFailure("backend down")

	router, err := srv.buildRouter("fundingboard")
	if err != nil {
		t.Fatalf("buildRouter error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/snapshot", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("unexpected status code: %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "backend down") {
		t.Fatalf("snapshot body missing error message: %s", res.Body.String())
	}
}

func TestRefreshWithoutPollerIsUnavailable(t *testing.T) {
	srv := newTestServer(t)

	router, err := srv.buildRouter("fundingboard")
	if err != nil {
		t.Fatalf("buildRouter error: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/refresh", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without a poller, got %d", res.Code)
	}
}

func TestAutoRefreshEndpointTogglesState(t *testing.T) {
	srv := newTestServer(t)

	router, err := srv.buildRouter("fundingboard")
	if err != nil {
		t.Fatalf("buildRouter error: %v", err)
	}

	req := httptest.NewRequest(http.MethodPut, "/api/autorefresh", strings.NewReader(`{"enabled":false}`))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("unexpected status code: %d", res.Code)
	}
	if srv.store.View().AutoRefresh {
		t.Fatal("auto-refresh should be disabled after the toggle request")
	}

	req = httptest.NewRequest(http.MethodPut, "/api/autorefresh", strings.NewReader(`{"on":true}`))
	req.Header.Set("Content-Type", "application/json")
	res = httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a body without enabled, got %d", res.Code)
	}
}

func TestHistoryEndpointReturnsRecordedFetches(t *testing.T) {
	srv := newTestServer(t)
	srv.history.record(historyResult("abc", "manual"))

	router, err := srv.buildRouter("fundingboard")
	if err != nil {
		t.Fatalf("buildRouter error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("unexpected status code: %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), `"abc"`) {
		t.Fatalf("history body missing recorded fetch: %s", res.Body.String())
	}
}
