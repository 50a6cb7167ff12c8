// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"phonestore/internal/catalog"
	"phonestore/internal/models"
)

// Listing bounds for GET /products.
const (
	defaultProductLimit = 50
	maxProductLimit     = 200
)

// createProductRequest adds a product. category_id files it directly;
// main_category_id asks for brand inference under that main category.
type createProductRequest struct {
	Name           string          `json:"name" validate:"required,max=200"`
	Brand          string          `json:"brand" validate:"max=100"`
	Model          string          `json:"model" validate:"max=200"`
	Price          decimal.Decimal `json:"price"`
	Stock          int             `json:"stock" validate:"gte=0"`
	CategoryID     *uuid.UUID      `json:"category_id" validate:"excluded_with=MainCategoryID"`
	MainCategoryID *uuid.UUID      `json:"main_category_id"`
}

type assignRequest struct {
	CategoryID *uuid.UUID `json:"category_id"`
}

type categorizeRequest struct {
	Model          string    `json:"model" validate:"max=200"`
	MainCategoryID uuid.UUID `json:"main_category_id" validate:"required"`
}

type createProductResponse struct {
	Product        *models.Product           `json:"product"`
	Categorization *catalog.CategorizeResult `json:"categorization,omitempty"`
}

// ListProducts lists products, newest first.
// GET /api/v1/products?category_id=&uncategorized=true&limit=&offset=
func (a *API) ListProducts(w http.ResponseWriter, r *http.Request) {
	filter := catalog.ProductFilter{
		Uncategorized: queryBool(r, "uncategorized"),
		Limit:         queryInt(r, "limit", defaultProductLimit, maxProductLimit),
		Offset:        queryInt(r, "offset", 0, 1<<31-1),
	}
	if filter.Limit == 0 {
		filter.Limit = defaultProductLimit
	}
	if v := r.URL.Query().Get("category_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_id", "category_id is not a valid id", nil)
			return
		}
		filter.CategoryID = &id
	}

	products, err := a.store.Products().List(r.Context(), filter)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(products))
}

// GetProduct returns one product.
// GET /api/v1/products/{id}
func (a *API) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	p, err := a.store.Products().FindByID(r.Context(), id)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// CreateProduct adds a product, optionally filing it under an explicit
// category or under the brand subcategory inferred from its model.
// POST /api/v1/products
func (a *API) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Price.IsNegative() {
		writeError(w, http.StatusBadRequest, "validation_failed", "request validation failed",
			map[string]any{"price": "price must be at least 0"})
		return
	}

	ctx := r.Context()

	// Refuse before writing anything when the requested category is unusable.
	if req.CategoryID != nil {
		if err := a.requireActive(r, *req.CategoryID); err != nil {
			serviceError(w, r, err)
			return
		}
	}
	if req.MainCategoryID != nil {
		main, err := a.service.GetCategory(ctx, *req.MainCategoryID)
		if err != nil {
			serviceError(w, r, err)
			return
		}
		if !main.IsRoot() {
			serviceError(w, r, fmt.Errorf("create product: %w: %q is a subcategory", catalog.ErrInvalidParent, main.Name))
			return
		}
		if !main.IsActive {
			serviceError(w, r, fmt.Errorf("create product: %w: %q is inactive", catalog.ErrCategoryNotFound, main.Name))
			return
		}
	}

	var resp createProductResponse
	err := a.store.InTx(ctx, func(tx catalog.Store) error {
		p, err := tx.Products().Create(ctx, &models.Product{
			Name:       strings.TrimSpace(req.Name),
			Brand:      strings.TrimSpace(req.Brand),
			Model:      strings.TrimSpace(req.Model),
			Price:      req.Price,
			Stock:      req.Stock,
			CategoryID: req.CategoryID,
		})
		if err != nil {
			return err
		}
		resp.Product = p
		if req.MainCategoryID == nil {
			return nil
		}

		res, err := catalog.NewCategorizer(tx, catalog.NewService(tx)).
			Categorize(ctx, p.ID, inferenceText(p), *req.MainCategoryID)
		if err != nil {
			return err
		}
		resp.Categorization = res
		resp.Product.CategoryID = &res.Category.ID
		return nil
	})
	if err != nil {
		serviceError(w, r, err)
		return
	}
	a.invalidate(ctx)
	writeJSON(w, http.StatusCreated, resp)
}

// SetProductCategory files a product under a category, or clears it when
// category_id is null.
// PUT /api/v1/products/{id}/category
func (a *API) SetProductCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	var req assignRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var err error
	if req.CategoryID == nil {
		err = a.categorizer.Unassign(r.Context(), id)
	} else {
		err = a.categorizer.Assign(r.Context(), id, *req.CategoryID)
	}
	if err != nil {
		serviceError(w, r, err)
		return
	}
	a.invalidate(r.Context())

	p, err := a.store.Products().FindByID(r.Context(), id)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// CategorizeProduct re-runs brand inference for a product. The model text
// defaults to the product's own model or name.
// POST /api/v1/products/{id}/categorize
func (a *API) CategorizeProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	var req categorizeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	model := strings.TrimSpace(req.Model)
	if model == "" {
		p, err := a.store.Products().FindByID(ctx, id)
		if err != nil {
			serviceError(w, r, err)
			return
		}
		model = inferenceText(p)
	}

	res, err := a.categorizer.Categorize(ctx, id, model, req.MainCategoryID)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	a.invalidate(ctx)
	writeJSON(w, http.StatusOK, res)
}

// requireActive fails with ErrCategoryNotFound unless id is an active category.
func (a *API) requireActive(r *http.Request, id uuid.UUID) error {
	c, err := a.store.Categories().FindByID(r.Context(), id)
	if errors.Is(err, catalog.ErrNotFound) {
		return fmt.Errorf("%w: %s", catalog.ErrCategoryNotFound, id)
	}
	if err != nil {
		return err
	}
	if !c.IsActive {
		return fmt.Errorf("%w: %q is inactive", catalog.ErrCategoryNotFound, c.Name)
	}
	return nil
}

// inferenceText is the free text brand inference runs on.
func inferenceText(p *models.Product) string {
	parts := make([]string, 0, 3)
	for _, s := range []string{p.Brand, p.Model} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return p.Name
	}
	return strings.Join(parts, " ")
}
