// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// fakeClock drives a limiter deterministically.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(t *testing.T, limit int) (*RateLimiter, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter(limit, time.Minute)
	rl.now = clock.now
	t.Cleanup(rl.Stop)
	return rl, clock
}

func TestRateLimiterTake(t *testing.T) {
	rl, _ := newTestLimiter(t, 3)

	for i, want := range []int{2, 1, 0} {
		remaining, _, ok := rl.take("10.0.0.1")
		if !ok {
			t.Fatalf("write %d refused", i+1)
		}
		if remaining != want {
			t.Errorf("write %d: remaining %d, want %d", i+1, remaining, want)
		}
	}

	_, wait, ok := rl.take("10.0.0.1")
	if ok {
		t.Fatal("fourth write in the window should be refused")
	}
	if wait != time.Minute {
		t.Errorf("retry after: got %v, want 1m", wait)
	}

	if _, _, ok := rl.take("10.0.0.2"); !ok {
		t.Error("another client shares the first client's budget")
	}
}

func TestRateLimiterSlidingWindow(t *testing.T) {
	rl, clock := newTestLimiter(t, 3)
	for i := 0; i < 3; i++ {
		rl.take("10.0.0.1")
	}

	// Halfway into the next window the previous three count as 1.5.
	clock.advance(90 * time.Second)
	if _, _, ok := rl.take("10.0.0.1"); !ok {
		t.Fatal("write at 1.5 windows refused")
	}
	_, wait, ok := rl.take("10.0.0.1")
	if ok {
		t.Fatal("second write at 1.5 windows should exceed the limit")
	}
	if wait != 30*time.Second {
		t.Errorf("retry after: got %v, want 30s", wait)
	}

	// After two idle windows the history is gone.
	clock.advance(3 * time.Minute)
	remaining, _, ok := rl.take("10.0.0.1")
	if !ok || remaining != 2 {
		t.Errorf("after idle: ok=%v remaining=%d", ok, remaining)
	}
}

func TestRateLimiterSweep(t *testing.T) {
	rl, clock := newTestLimiter(t, 5)
	rl.take("10.0.0.1")
	clock.advance(2 * time.Minute)
	rl.take("10.0.0.2")
	clock.advance(time.Minute)

	rl.sweep()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if _, ok := rl.counts["10.0.0.1"]; ok {
		t.Error("idle client kept")
	}
	if _, ok := rl.counts["10.0.0.2"]; !ok {
		t.Error("recent client dropped")
	}
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl, _ := newTestLimiter(t, 2)
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	send := func(method string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, "/api/v1/categories/5e0c/merge", nil)
		req.RemoteAddr = "192.168.1.1:40000"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr
	}

	tests := []struct {
		method    string
		status    int
		remaining string
	}{
		{http.MethodPost, http.StatusNoContent, "1"},
		{http.MethodGet, http.StatusNoContent, ""},
		{http.MethodDelete, http.StatusNoContent, "0"},
		{http.MethodPut, http.StatusTooManyRequests, "0"},
		{http.MethodHead, http.StatusNoContent, ""},
	}
	for _, tt := range tests {
		rr := send(tt.method)
		if rr.Code != tt.status {
			t.Errorf("%s: status %d, want %d", tt.method, rr.Code, tt.status)
		}
		if got := rr.Header().Get("X-RateLimit-Remaining"); got != tt.remaining {
			t.Errorf("%s: remaining %q, want %q", tt.method, got, tt.remaining)
		}
		if tt.status == http.StatusTooManyRequests && rr.Header().Get("Retry-After") != "60" {
			t.Errorf("Retry-After: got %q, want 60", rr.Header().Get("Retry-After"))
		}
	}
}

func TestRateLimiterStopTwice(t *testing.T) {
	rl := NewRateLimiter(1, time.Second)
	rl.Stop()
	rl.Stop()
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		remoteAddr string
		want       string
	}{
		{"192.168.1.1:1234", "192.168.1.1"},
		{"[2001:db8::1]:443", "2001:db8::1"},
		{"10.0.0.1", "10.0.0.1"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = tt.remoteAddr
		if got := clientIP(req); got != tt.want {
			t.Errorf("clientIP(%q) = %q, want %q", tt.remoteAddr, got, tt.want)
		}
	}
}
