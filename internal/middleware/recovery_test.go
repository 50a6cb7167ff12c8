// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRecovererWritesJSON500(t *testing.T) {
	panics := map[string]any{
		"string": "nil category in tree",
		"error":  errors.New("store closed"),
		"int":    42,
	}
	for name, value := range panics {
		t.Run(name, func(t *testing.T) {
			buf := captureLogs(t)
			h := Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				panic(value)
			}))

			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/categories/infer-brand", nil))

			if rr.Code != http.StatusInternalServerError {
				t.Fatalf("status: got %d, want 500", rr.Code)
			}
			if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type: got %q", ct)
			}
			var body errorBody
			if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Code != "internal" {
				t.Errorf("code: got %q, want internal", body.Code)
			}

			rec := lastRecord(t, buf)
			if rec["msg"] != "handler panic" || rec["response_started"] != false {
				t.Errorf("log record: %v", rec)
			}
			if stack, _ := rec["stack"].(string); !strings.Contains(stack, "recovery_test.go") {
				t.Error("stack trace missing the panicking frame")
			}
		})
	}
}

func TestRecovererAfterResponseStarted(t *testing.T) {
	buf := captureLogs(t)
	h := Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`[{"name":"Smart`))
		panic("encoder failed")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/categories", nil))

	if rr.Code != http.StatusOK {
		t.Errorf("status: got %d, want the 200 already sent", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "internal") {
		t.Errorf("error envelope appended to a started body: %q", rr.Body.String())
	}
	if rec := lastRecord(t, buf); rec["response_started"] != true {
		t.Errorf("response_started: got %v", rec["response_started"])
	}
}

func TestRecovererRepanicsAbort(t *testing.T) {
	h := Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	defer func() {
		if rec := recover(); rec != http.ErrAbortHandler {
			t.Errorf("expected ErrAbortHandler to propagate, got %v", rec)
		}
	}()
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}

func TestRecovererPassThrough(t *testing.T) {
	h := Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Cache", "MISS")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"x"}`))
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/products", nil))

	if rr.Code != http.StatusCreated || rr.Header().Get("X-Cache") != "MISS" || rr.Body.String() != `{"id":"x"}` {
		t.Errorf("response altered: %d %v %q", rr.Code, rr.Header(), rr.Body.String())
	}
}
