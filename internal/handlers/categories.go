// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"phonestore/internal/catalog"
	"phonestore/internal/models"
)

type createCategoryRequest struct {
	Name        string     `json:"name" validate:"required,max=100"`
	ParentID    *uuid.UUID `json:"parent_id"`
	Description string     `json:"description" validate:"max=2000"`
}

// updateCategoryRequest carries optional changes. parent_id is kept raw so
// that an explicit null (promote to main category) differs from absence.
type updateCategoryRequest struct {
	Name        *string         `json:"name" validate:"omitempty,max=100"`
	Description *string         `json:"description" validate:"omitempty,max=2000"`
	ParentID    json.RawMessage `json:"parent_id"`
}

type mergeRequest struct {
	TargetID uuid.UUID `json:"target_id" validate:"required"`
}

type inferBrandRequest struct {
	Model          string    `json:"model" validate:"required,max=200"`
	MainCategoryID uuid.UUID `json:"main_category_id" validate:"required"`
}

type inferBrandResponse struct {
	Brand    string           `json:"brand"`
	Category *models.Category `json:"category"`
}

// ListCategories returns the main categories.
// GET /api/v1/categories?include_inactive=true
func (a *API) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := a.service.ListRoots(r.Context(), queryBool(r, "include_inactive"))
	if err != nil {
		serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(cats))
}

// CategoryTree returns the nested tree, served from Valkey when cached.
// GET /api/v1/categories/tree?include_inactive=true
func (a *API) CategoryTree(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	all := queryBool(r, "include_inactive")

	var gen int64
	if a.cache != nil {
		tree, g, ok := a.cache.GetTree(ctx, all)
		if ok {
			w.Header().Set("X-Cache", "HIT")
			writeJSON(w, http.StatusOK, nonNil(tree))
			return
		}
		gen = g
	}

	tree, err := a.service.Tree(ctx, all)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	if a.cache != nil {
		a.cache.SetTree(ctx, all, gen, tree)
		w.Header().Set("X-Cache", "MISS")
	}
	writeJSON(w, http.StatusOK, nonNil(tree))
}

// GetCategory returns one category with its product count.
// GET /api/v1/categories/{id}
func (a *API) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	c, err := a.service.GetCategory(r.Context(), id)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// ListChildren returns the subcategories of a main category.
// GET /api/v1/categories/{id}/children?include_inactive=true
func (a *API) ListChildren(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	cats, err := a.service.ListChildren(r.Context(), id, queryBool(r, "include_inactive"))
	if err != nil {
		serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(cats))
}

// CreateCategory adds a main category or subcategory.
// POST /api/v1/categories
func (a *API) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	c, err := a.service.CreateCategory(r.Context(), catalog.CreateInput{
		Name:        req.Name,
		ParentID:    req.ParentID,
		Description: req.Description,
	})
	if err != nil {
		serviceError(w, r, err)
		return
	}
	a.invalidate(r.Context())
	writeJSON(w, http.StatusCreated, c)
}

// UpdateCategory renames, re-describes and/or moves a category in one
// transaction. Changes are applied in that order and the first failure
// discards them all.
// PUT /api/v1/categories/{id}
func (a *API) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	var req updateCategoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	move := len(req.ParentID) > 0
	var parentID *uuid.UUID
	if move && !bytes.Equal(bytes.TrimSpace(req.ParentID), []byte("null")) {
		var pid uuid.UUID
		if err := json.Unmarshal(req.ParentID, &pid); err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", "request validation failed",
				map[string]any{"parent_id": "parent_id must be a UUID or null"})
			return
		}
		parentID = &pid
	}
	if req.Name == nil && req.Description == nil && !move {
		writeError(w, http.StatusBadRequest, "validation_failed", "nothing to update", nil)
		return
	}

	ctx := r.Context()
	err := a.store.InTx(ctx, func(tx catalog.Store) error {
		svc := catalog.NewService(tx)
		if req.Name != nil {
			if _, err := svc.RenameCategory(ctx, id, *req.Name); err != nil {
				return err
			}
		}
		if req.Description != nil {
			if _, err := svc.UpdateDescription(ctx, id, *req.Description); err != nil {
				return err
			}
		}
		if move {
			if _, err := svc.MoveCategory(ctx, id, parentID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		serviceError(w, r, err)
		return
	}
	a.invalidate(ctx)

	c, err := a.service.GetCategory(ctx, id)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// DeactivateCategory hides a category.
// POST /api/v1/categories/{id}/deactivate
func (a *API) DeactivateCategory(w http.ResponseWriter, r *http.Request) {
	a.setActive(w, r, false)
}

// ActivateCategory shows a hidden category again.
// POST /api/v1/categories/{id}/activate
func (a *API) ActivateCategory(w http.ResponseWriter, r *http.Request) {
	a.setActive(w, r, true)
}

func (a *API) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	var err error
	var c *models.Category
	if active {
		c, err = a.service.ActivateCategory(r.Context(), id)
	} else {
		c, err = a.service.DeactivateCategory(r.Context(), id)
	}
	if err != nil {
		serviceError(w, r, err)
		return
	}
	a.invalidate(r.Context())
	writeJSON(w, http.StatusOK, c)
}

// DeleteCategory removes a category without dependents. A blocked delete
// answers 409 with the product and subcategory counts.
// DELETE /api/v1/categories/{id}
func (a *API) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	if err := a.service.DeleteCategory(r.Context(), id); err != nil {
		serviceError(w, r, err)
		return
	}
	a.invalidate(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// MergeCategory folds the category into target_id.
// POST /api/v1/categories/{id}/merge
func (a *API) MergeCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	var req mergeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := a.service.MergeCategories(r.Context(), id, req.TargetID)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	a.invalidate(r.Context())
	writeJSON(w, http.StatusOK, res)
}

// InferBrand resolves the brand subcategory for a model name under a main
// category, creating it when needed. No match answers 422.
// POST /api/v1/categories/infer-brand
func (a *API) InferBrand(w http.ResponseWriter, r *http.Request) {
	var req inferBrandRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	c, err := a.categorizer.InferBrandSubcategory(r.Context(), req.Model, req.MainCategoryID)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	a.invalidate(r.Context())
	writeJSON(w, http.StatusOK, inferBrandResponse{Brand: c.Name, Category: c})
}

// nonNil makes empty listings encode as [] instead of null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
