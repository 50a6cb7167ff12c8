// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up the HTTP routes and middleware chains of the
// catalog API. Reads are public; every write goes through the admin guard
// and the rate limiter.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"phonestore/internal/handlers"
	"phonestore/internal/middleware"
)

// Options configures the write guards. A nil Limiter disables rate limiting
// and an empty AdminTokenHash disables the admin check.
type Options struct {
	AdminTokenHash string
	Limiter        *middleware.RateLimiter
}

// New creates the configured Chi router.
func New(api *handlers.API, opts Options) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	r.Get("/health", healthHandler)

	r.Route("/api/v1", func(r chi.Router) {
		// Public reads.
		r.Get("/categories", api.ListCategories)
		r.Get("/categories/tree", api.CategoryTree)
		r.Get("/categories/{id}", api.GetCategory)
		r.Get("/categories/{id}/children", api.ListChildren)
		r.Get("/products", api.ListProducts)
		r.Get("/products/{id}", api.GetProduct)

		// Catalog writes.
		r.Group(func(r chi.Router) {
			if opts.Limiter != nil {
				r.Use(opts.Limiter.Middleware)
			}
			r.Use(middleware.RequireAdmin(opts.AdminTokenHash))

			r.Post("/categories", api.CreateCategory)
			r.Post("/categories/infer-brand", api.InferBrand)
			r.Put("/categories/{id}", api.UpdateCategory)
			r.Delete("/categories/{id}", api.DeleteCategory)
			r.Post("/categories/{id}/activate", api.ActivateCategory)
			r.Post("/categories/{id}/deactivate", api.DeactivateCategory)
			r.Post("/categories/{id}/merge", api.MergeCategory)

			r.Post("/products", api.CreateProduct)
			r.Put("/products/{id}/category", api.SetProductCategory)
			r.Post("/products/{id}/categorize", api.CategorizeProduct)
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
