// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

// okHandler returns a handler that records whether it was called.
func okHandler() (http.Handler, *bool) {
	called := false
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})
	return h, &called
}

func testHash(t *testing.T, token string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return string(hash)
}

func TestRequireAdmin(t *testing.T) {
	guard := RequireAdmin(testHash(t, "s3cret-token"))

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantCalled bool
	}{
		{name: "valid token", header: "Bearer s3cret-token", wantStatus: http.StatusOK, wantCalled: true},
		{name: "lowercase scheme", header: "bearer s3cret-token", wantStatus: http.StatusOK, wantCalled: true},
		{name: "wrong token", header: "Bearer nope", wantStatus: http.StatusForbidden},
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "basic scheme", header: "Basic czNjcmV0", wantStatus: http.StatusUnauthorized},
		{name: "empty bearer", header: "Bearer ", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, called := okHandler()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/categories", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			guard(next).ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("status: got %d, want %d", rr.Code, tt.wantStatus)
			}
			if *called != tt.wantCalled {
				t.Errorf("next called: got %v, want %v", *called, tt.wantCalled)
			}
			if tt.wantStatus == http.StatusUnauthorized && rr.Header().Get("WWW-Authenticate") == "" {
				t.Error("401 should carry WWW-Authenticate")
			}
		})
	}
}

func TestRequireAdminDisabled(t *testing.T) {
	next, called := okHandler()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/categories/x", nil)
	rr := httptest.NewRecorder()
	RequireAdmin("")(next).ServeHTTP(rr, req)

	if !*called || rr.Code != http.StatusOK {
		t.Errorf("empty hash should pass through, got status %d called=%v", rr.Code, *called)
	}
}
