package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/watchtogether/internal/logging"
)

func TestRequestLogger_AssignsRequestID(t *testing.T) {
	var buf bytes.Buffer
	rl := NewRequestLogger(logging.New().SetOutput(&buf))

	var ctxLogger *logging.Logger
	handler := rl.Apply(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxLogger = logging.FromContext(r.Context())
		w.WriteHeader(http.StatusCreated)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/user/friend-request", nil))

	id := rr.Header().Get(requestIDHeader)
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("expected uuid request id, got %q", id)
	}
	if ctxLogger == nil || ctxLogger == logging.Default {
		t.Error("expected request-scoped logger on context")
	}

	var entry struct {
		Message string         `json:"message"`
		Fields  map[string]any `json:"fields"`
	}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("expected one JSON log line, got %q: %v", buf.String(), err)
	}
	if entry.Message != "HTTP request" {
		t.Errorf("unexpected message %q", entry.Message)
	}
	if entry.Fields["request_id"] != id {
		t.Errorf("expected request_id %s in log, got %v", id, entry.Fields["request_id"])
	}
	if entry.Fields["status"] != float64(http.StatusCreated) {
		t.Errorf("expected status 201, got %v", entry.Fields["status"])
	}
}

func TestRequestLogger_KeepsValidIncomingID(t *testing.T) {
	rl := NewRequestLogger(logging.New().SetOutput(&bytes.Buffer{}))
	incoming := uuid.NewString()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, incoming)
	rr := httptest.NewRecorder()
	rl.Apply(okHandler()).ServeHTTP(rr, req)

	if got := rr.Header().Get(requestIDHeader); got != incoming {
		t.Errorf("expected %s, got %s", incoming, got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "not-a-uuid\nforged")
	rr = httptest.NewRecorder()
	rl.Apply(okHandler()).ServeHTTP(rr, req)

	if got := rr.Header().Get(requestIDHeader); strings.Contains(got, "forged") {
		t.Errorf("malformed id should be replaced, got %q", got)
	}
}

func TestRequestLogger_RecoversPanic(t *testing.T) {
	var buf bytes.Buffer
	rl := NewRequestLogger(logging.New().SetOutput(&buf))

	handler := rl.Apply(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rr.Code)
	}
	if !strings.Contains(buf.String(), "Panic recovered") {
		t.Errorf("expected panic to be logged, got %q", buf.String())
	}
}
