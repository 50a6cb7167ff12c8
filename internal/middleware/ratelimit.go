// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// windowCount holds the write counts of one client for the current and the
// previous fixed window.
type windowCount struct {
	start time.Time
	prev  int
	cur   int
}

// RateLimiter caps catalog writes per client IP with a sliding window
// counter: the previous window's count is weighted by how much of it still
// overlaps the sliding window.
type RateLimiter struct {
	mu     sync.Mutex
	counts map[string]*windowCount
	limit  int
	window time.Duration
	now    func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter allows limit writes per window and client. A janitor
// goroutine drops idle clients until Stop is called.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		counts: make(map[string]*windowCount),
		limit:  limit,
		window: window,
		now:    time.Now,
		stop:   make(chan struct{}),
	}
	go rl.janitor(max(window, time.Minute))
	return rl
}

// Stop ends the janitor. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) janitor(every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			rl.sweep()
		case <-rl.stop:
			return
		}
	}
}

// sweep forgets clients with no writes in the last two windows.
func (rl *RateLimiter) sweep() {
	cutoff := rl.now().Add(-2 * rl.window)
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, c := range rl.counts {
		if c.start.Before(cutoff) {
			delete(rl.counts, key)
		}
	}
}

// take records one write for key if it fits. It returns the writes left and,
// when the write is refused, how long until the next one may fit.
func (rl *RateLimiter) take(key string) (remaining int, retryAfter time.Duration, ok bool) {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	c, found := rl.counts[key]
	if !found {
		c = &windowCount{start: now.Truncate(rl.window)}
		rl.counts[key] = c
	}
	switch elapsed := now.Sub(c.start) / rl.window; {
	case elapsed == 1:
		c.prev, c.cur = c.cur, 0
		c.start = c.start.Add(rl.window)
	case elapsed > 1:
		c.prev, c.cur = 0, 0
		c.start = now.Truncate(rl.window)
	}

	overlap := 1 - float64(now.Sub(c.start))/float64(rl.window)
	used := float64(c.prev)*overlap + float64(c.cur)
	if used+1 > float64(rl.limit) {
		return 0, c.start.Add(rl.window).Sub(now), false
	}
	c.cur++
	return max(rl.limit-int(math.Ceil(used+1)), 0), 0, true
}

// Middleware limits unsafe methods per client. Reads pass through
// uncounted. Every counted request gets X-RateLimit-Limit and
// X-RateLimit-Remaining; refused ones get a 429 with Retry-After.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}

		remaining, wait, ok := rl.take(clientIP(r))
		h := w.Header()
		h.Set("X-RateLimit-Limit", strconv.Itoa(rl.limit))
		h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		if !ok {
			h.Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			writeError(w, http.StatusTooManyRequests, "rate_limited", "too many catalog writes, retry later")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP returns the host part of RemoteAddr. The router runs chi's
// RealIP first, so proxied requests already carry the client address.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
