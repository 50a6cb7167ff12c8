// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router tests verify the HTTP routing configuration, middleware
// chains, and the health endpoint.
package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"phonestore/internal/catalog/catalogtest"
	"phonestore/internal/handlers"
	"phonestore/internal/middleware"
)

const testToken = "catalog-admin-token"

func newTestRouter(t *testing.T, limit int) http.Handler {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testToken), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	rl := middleware.NewRateLimiter(limit, time.Minute)
	t.Cleanup(rl.Stop)

	api := handlers.NewAPI(catalogtest.New(), nil)
	return New(api, Options{AdminTokenHash: string(hash), Limiter: rl})
}

func send(h http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealthHandler(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/health", nil)

	healthHandler(w, r)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}

	ct := resp.Header.Get("Content-Type")
	if ct != "application/json" {
		t.Errorf("content-type: got %q, want %q", ct, "application/json")
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field: got %q, want %q", body["status"], "ok")
	}
}

func TestRouterMiddleware(t *testing.T) {
	h := newTestRouter(t, 10)

	w := send(h, http.MethodGet, "/health", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("health: got %d", w.Code)
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing")
	}

	w = send(h, http.MethodGet, "/api/v1/nope", "", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown route: got %d, want 404", w.Code)
	}
}

func TestRouterWritesRequireAdmin(t *testing.T) {
	h := newTestRouter(t, 10)

	w := send(h, http.MethodPost, "/api/v1/categories", `{"name":"Smartphones"}`, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no token: got %d, want 401", w.Code)
	}
	w = send(h, http.MethodPost, "/api/v1/categories", `{"name":"Smartphones"}`, "wrong")
	if w.Code != http.StatusForbidden {
		t.Errorf("bad token: got %d, want 403", w.Code)
	}
	w = send(h, http.MethodPost, "/api/v1/categories", `{"name":"Smartphones"}`, testToken)
	if w.Code != http.StatusCreated {
		t.Fatalf("admin create: got %d (%s)", w.Code, w.Body.String())
	}

	// Reads stay public.
	w = send(h, http.MethodGet, "/api/v1/categories", "", "")
	if w.Code != http.StatusOK {
		t.Errorf("public read: got %d", w.Code)
	}
	var roots []map[string]any
	if err := json.NewDecoder(w.Body).Decode(&roots); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(roots) != 1 || roots[0]["name"] != "Smartphones" {
		t.Errorf("roots: got %v", roots)
	}
}

func TestRouterStaticRoutesBeforeID(t *testing.T) {
	h := newTestRouter(t, 10)

	w := send(h, http.MethodGet, "/api/v1/categories/tree", "", "")
	if w.Code != http.StatusOK {
		t.Errorf("tree: got %d, want 200 (%s)", w.Code, w.Body.String())
	}

	w = send(h, http.MethodPost, "/api/v1/categories", `{"name":"Smartphones"}`, testToken)
	var root map[string]any
	if err := json.NewDecoder(w.Body).Decode(&root); err != nil {
		t.Fatalf("decode: %v", err)
	}

	body := `{"model":"iPhone 15","main_category_id":"` + root["id"].(string) + `"}`
	w = send(h, http.MethodPost, "/api/v1/categories/infer-brand", body, testToken)
	if w.Code != http.StatusOK {
		t.Errorf("infer-brand: got %d, want 200 (%s)", w.Code, w.Body.String())
	}
}

func TestRouterRateLimitsWrites(t *testing.T) {
	h := newTestRouter(t, 2)

	for i := range 2 {
		w := send(h, http.MethodPost, "/api/v1/categories", `{"name":"Cat`+string(rune('A'+i))+`"}`, testToken)
		if w.Code != http.StatusCreated {
			t.Fatalf("write %d: got %d", i, w.Code)
		}
	}
	w := send(h, http.MethodPost, "/api/v1/categories", `{"name":"CatC"}`, testToken)
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("third write: got %d, want 429", w.Code)
	}

	// Reads are not counted.
	for range 5 {
		if w := send(h, http.MethodGet, "/api/v1/categories", "", ""); w.Code != http.StatusOK {
			t.Fatalf("read: got %d", w.Code)
		}
	}
}
