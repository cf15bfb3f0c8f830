package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_LabelsByRoutePattern(t *testing.T) {
	metrics := NewMetrics()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/user/media/{status}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := metrics.Apply(mux)

	for _, status := range []string{"watching", "planned"} {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/user/media/"+status, nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
	}

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}

	got := testutil.ToFloat64(metrics.requests.WithLabelValues(http.MethodGet, "GET /api/user/media/{status}", "200"))
	if got != 2 {
		t.Errorf("expected 2 requests for the media route, got %v", got)
	}
	got = testutil.ToFloat64(metrics.requests.WithLabelValues(http.MethodGet, unmatchedRoute, "404"))
	if got != 1 {
		t.Errorf("expected 1 unmatched request, got %v", got)
	}
}

func TestMetrics_Handler(t *testing.T) {
	metrics := NewMetrics()
	handler := metrics.Apply(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/x", nil))

	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "watchtogether_http_requests_total") {
		t.Errorf("expected request counter in output, got %q", body)
	}
	if !strings.Contains(body, `status="201"`) {
		t.Errorf("expected status label 201 in output")
	}
}
