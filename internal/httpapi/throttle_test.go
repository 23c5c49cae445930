package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestThrottleMiddlewareRejectsOverBurst(t *testing.T) {
	SetThrottle(1, 1)
	t.Cleanup(func() { SetThrottle(0, 0) })

	r := NewMux(&mockService{ready: true})
	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if first.Code != http.StatusOK {
		t.Fatalf("first request status=%d", first.Code)
	}
	second := httptest.NewRecorder()
	r.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status=%d", second.Code)
	}
}

func TestThrottleDisabledByDefault(t *testing.T) {
	r := NewMux(&mockService{})
	for i := 0; i < 10; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d status=%d", i, w.Code)
		}
	}
}
