package httpadapter

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ducktyper-ai/quackverse-sub003/internal/config"
)

func TestRateLimitMiddlewareRejectsBurst(t *testing.T) {
	handler, _ := newTestHandler(t, config.Config{APIRateLimitRPS: 1, APIRateLimitBurst: 1})

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if first.Code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", first.Code)
	}

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be limited, got %d", second.Code)
	}
	if second.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header on limited response")
	}
	var payload map[string]string
	if err := json.NewDecoder(second.Body).Decode(&payload); err != nil {
		t.Fatalf("decode limited response: %v", err)
	}
	if payload["error"] == "" {
		t.Fatal("expected error message in limited response")
	}
}

func TestBackpressureMiddlewareShedsWhenFull(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	base := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
		w.WriteHeader(http.StatusNoContent)
	})
	handler := backpressureMiddleware(base, 1, 20*time.Millisecond)

	firstDone := make(chan int)
	go func() {
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/v1/conversions/job-1", nil))
		firstDone <- res.Code
	}()
	<-started

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/v1/conversions/job-2", nil))
	if second.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 while the only slot is held, got %d", second.Code)
	}
	var payload map[string]string
	if err := json.NewDecoder(second.Body).Decode(&payload); err != nil {
		t.Fatalf("decode shed response: %v", err)
	}
	if payload["error"] == "" {
		t.Fatal("expected error message in shed response")
	}

	close(release)
	select {
	case code := <-firstDone:
		if code != http.StatusNoContent {
			t.Fatalf("expected held request to finish with 204, got %d", code)
		}
	case <-time.After(time.Second):
		t.Fatal("held request never finished")
	}
}

func TestBackpressureMiddlewareReleasesSlots(t *testing.T) {
	base := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	handler := backpressureMiddleware(base, 1, 20*time.Millisecond)

	for i := 0; i < 3; i++ {
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		if res.Code != http.StatusNoContent {
			t.Fatalf("request %d: expected released slot to admit, got %d", i, res.Code)
		}
	}
}
