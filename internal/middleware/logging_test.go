package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// captureLogs routes the default logger into a buffer for one test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func lastRecord(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	var rec map[string]any
	if err := json.Unmarshal(lines[len(lines)-1], &rec); err != nil {
		t.Fatalf("decode log record %q: %v", lines[len(lines)-1], err)
	}
	return rec
}

func TestLoggerLevels(t *testing.T) {
	tests := []struct {
		name   string
		method string
		write  func(w http.ResponseWriter)
		status float64
		level  string
	}{
		{"implicit 200", http.MethodGet, func(w http.ResponseWriter) { w.Write([]byte("[]")) }, 200, "INFO"},
		{"created", http.MethodPost, func(w http.ResponseWriter) { w.WriteHeader(http.StatusCreated) }, 201, "INFO"},
		{"conflict", http.MethodDelete, func(w http.ResponseWriter) { w.WriteHeader(http.StatusConflict) }, 409, "WARN"},
		{"rate limited", http.MethodPost, func(w http.ResponseWriter) { w.WriteHeader(http.StatusTooManyRequests) }, 429, "WARN"},
		{"store failure", http.MethodPut, func(w http.ResponseWriter) { w.WriteHeader(http.StatusInternalServerError) }, 500, "ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLogs(t)
			h := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { tt.write(w) }))

			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(tt.method, "/api/v1/categories", nil))

			rec := lastRecord(t, buf)
			if rec["status"] != tt.status {
				t.Errorf("status: got %v, want %v", rec["status"], tt.status)
			}
			if rec["level"] != tt.level {
				t.Errorf("level: got %v, want %s", rec["level"], tt.level)
			}
			if rec["method"] != tt.method {
				t.Errorf("method: got %v", rec["method"])
			}
		})
	}
}

func TestLoggerRecordsRouteAndRequestID(t *testing.T) {
	buf := captureLogs(t)

	r := chi.NewRouter()
	r.Use(chimw.RequestID, Logger)
	r.Get("/api/v1/categories/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name":"Smartphones"}`))
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/categories/0b9f6f0e-3c1d-4f3e-9f59-6a2f3c1e8d11", nil))

	rec := lastRecord(t, buf)
	if rec["route"] != "/api/v1/categories/{id}" {
		t.Errorf("route: got %v", rec["route"])
	}
	if rec["bytes"] != float64(len(`{"name":"Smartphones"}`)) {
		t.Errorf("bytes: got %v", rec["bytes"])
	}
	if id, _ := rec["request_id"].(string); id == "" {
		t.Error("request_id missing")
	}
}

func TestLoggerPassesResponseThrough(t *testing.T) {
	captureLogs(t)
	h := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Cache", "HIT")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("tree"))
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/categories/tree", nil))

	if rr.Header().Get("X-Cache") != "HIT" || rr.Body.String() != "tree" {
		t.Errorf("response altered: %v %q", rr.Header(), rr.Body.String())
	}
}
