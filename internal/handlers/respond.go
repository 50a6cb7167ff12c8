// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"phonestore/internal/catalog"
)

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Error   string         `json:"error"`
	Code    string         `json:"code"`
	Details map[string]any `json:"details,omitempty"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, msg string, details map[string]any) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code, Details: details})
}

// errorStatus maps catalog errors to an HTTP status and error code.
func errorStatus(err error) (int, string) {
	var dep *catalog.HasDependentsError
	switch {
	case errors.As(err, &dep):
		return http.StatusConflict, "has_dependents"
	case errors.Is(err, catalog.ErrCategoryNotFound):
		return http.StatusNotFound, "category_not_found"
	case errors.Is(err, catalog.ErrProductNotFound):
		return http.StatusNotFound, "product_not_found"
	case errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, catalog.ErrDuplicateName):
		return http.StatusConflict, "duplicate_name"
	case errors.Is(err, catalog.ErrHasDependents):
		return http.StatusConflict, "has_dependents"
	case errors.Is(err, catalog.ErrInvalidParent):
		return http.StatusBadRequest, "invalid_parent"
	case errors.Is(err, catalog.ErrInvalidName):
		return http.StatusBadRequest, "invalid_name"
	case errors.Is(err, catalog.ErrCycle):
		return http.StatusBadRequest, "cycle"
	case errors.Is(err, catalog.ErrSelfMerge):
		return http.StatusBadRequest, "self_merge"
	case errors.Is(err, catalog.ErrNoMatch):
		return http.StatusUnprocessableEntity, "no_match"
	}
	return http.StatusInternalServerError, "internal"
}

// serviceError writes the response for an error returned by the catalog.
// Only unexpected errors are logged; their text is not sent to the client.
func serviceError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}

	status, code := errorStatus(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", chimw.GetReqID(r.Context()),
			"error", err,
		)
		writeError(w, status, code, "internal error", nil)
		return
	}

	var details map[string]any
	var dep *catalog.HasDependentsError
	if errors.As(err, &dep) {
		details = map[string]any{
			"products":      dep.Products,
			"subcategories": dep.Children,
		}
	}
	writeError(w, status, code, err.Error(), details)
}

// decodeJSON reads a size-limited JSON body into dst and validates it.
// On failure it writes a 400 response and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		msg := "malformed JSON body"
		if errors.Is(err, io.EOF) {
			msg = "request body is empty"
		}
		writeError(w, http.StatusBadRequest, "bad_request", msg, map[string]any{"reason": err.Error()})
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "request validation failed", validationDetails(err))
		return false
	}
	return true
}

// urlID parses a UUID path parameter. On failure it writes a 400 response.
func urlID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", fmt.Sprintf("%s is not a valid id", param), nil)
		return uuid.Nil, false
	}
	return id, true
}

// queryBool reads a boolean query parameter; absent or malformed means false.
func queryBool(r *http.Request, key string) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get(key))
	return v
}

// queryInt reads a bounded integer query parameter.
func queryInt(r *http.Request, key string, fallback, ceiling int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || n < 0 {
		return fallback
	}
	return min(n, ceiling)
}
