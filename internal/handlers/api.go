// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the JSON HTTP handlers of the catalog API.
// Handlers receive their dependencies through the API struct and delegate
// every rule to the catalog package.
package handlers

import (
	"context"

	"phonestore/internal/catalog"
	"phonestore/internal/models"
)

// TreeCache caches rendered category trees. *cache.CategoryCache implements
// it; a nil TreeCache disables caching. GetTree reports the cache generation
// it looked in, and a tree built after a miss is stored under that
// generation so that an Invalidate in between keeps it from being served.
type TreeCache interface {
	GetTree(ctx context.Context, includeInactive bool) ([]models.Category, int64, bool)
	SetTree(ctx context.Context, includeInactive bool, gen int64, tree []models.Category)
	Invalidate(ctx context.Context)
}

// API groups the catalog HTTP handlers and their dependencies.
type API struct {
	store       catalog.Store
	service     *catalog.Service
	categorizer *catalog.Categorizer
	cache       TreeCache
}

// NewAPI creates the handler group. tc may be nil.
func NewAPI(store catalog.Store, tc TreeCache) *API {
	svc := catalog.NewService(store)
	return &API{
		store:       store,
		service:     svc,
		categorizer: catalog.NewCategorizer(store, svc),
		cache:       tc,
	}
}

// invalidate drops cached trees after a catalog write.
func (a *API) invalidate(ctx context.Context) {
	if a.cache != nil {
		a.cache.Invalidate(ctx)
	}
}
