// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// Recoverer turns a handler panic into the API's JSON 500 envelope and logs
// it with the stack. If the handler already started its response, the
// status cannot change and only the log record is written.
// http.ErrAbortHandler is re-raised so net/http can abort the connection.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			slog.ErrorContext(r.Context(), "handler panic",
				"panic", fmt.Sprint(rec),
				"method", r.Method,
				"route", routePattern(r),
				"path", r.URL.Path,
				"request_id", chimw.GetReqID(r.Context()),
				"response_started", ww.Status() != 0,
				"stack", string(debug.Stack()),
			)
			if ww.Status() == 0 {
				writeError(ww, http.StatusInternalServerError, "internal", "internal error")
			}
		}()

		next.ServeHTTP(ww, r)
	})
}
