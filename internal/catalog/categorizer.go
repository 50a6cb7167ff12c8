// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"phonestore/internal/models"
)

// Categorizer files products into categories. It only writes the product's
// category reference; new brand subcategories are created through Service.
type Categorizer struct {
	store   Store
	service *Service
	rules   []BrandRule
}

// NewCategorizer returns a Categorizer using DefaultBrandRules.
func NewCategorizer(store Store, service *Service) *Categorizer {
	return &Categorizer{store: store, service: service, rules: DefaultBrandRules}
}

// WithRules returns a copy of c that matches against rules instead.
func (c *Categorizer) WithRules(rules []BrandRule) *Categorizer {
	cp := *c
	cp.rules = rules
	return &cp
}

// CategorizeResult is the outcome of Categorize.
type CategorizeResult struct {
	Category *models.Category `json:"category"`
	Inferred bool             `json:"inferred"`
	Brand    string           `json:"brand,omitempty"`
}

// Assign points a product at an existing, active category.
func (c *Categorizer) Assign(ctx context.Context, productID, categoryID uuid.UUID) error {
	if _, err := c.activeCategory(ctx, categoryID); err != nil {
		return fmt.Errorf("assign category: %w", err)
	}
	if err := c.store.Products().ReassignCategory(ctx, productID, &categoryID); err != nil {
		return fmt.Errorf("assign category: %w", err)
	}
	return nil
}

// Unassign leaves a product uncategorized.
func (c *Categorizer) Unassign(ctx context.Context, productID uuid.UUID) error {
	if err := c.store.Products().ReassignCategory(ctx, productID, nil); err != nil {
		return fmt.Errorf("unassign category: %w", err)
	}
	return nil
}

// MatchBrand returns the brand inferred from a free-text model name.
func (c *Categorizer) MatchBrand(model string) (string, bool) {
	return MatchBrand(c.rules, model)
}

// InferBrandSubcategory returns the subcategory of mainCategoryID named after
// the brand found in model, creating it when absent. The result is a
// suggestion; callers must allow a manual override. ErrNoMatch means no
// keyword matched.
func (c *Categorizer) InferBrandSubcategory(ctx context.Context, model string, mainCategoryID uuid.UUID) (*models.Category, error) {
	brand, ok := c.MatchBrand(model)
	if !ok {
		return nil, fmt.Errorf("infer brand for %q: %w", model, ErrNoMatch)
	}

	main, err := c.store.Categories().FindByID(ctx, mainCategoryID)
	if err != nil {
		return nil, fmt.Errorf("infer brand: %w", err)
	}
	if !main.IsRoot() {
		return nil, fmt.Errorf("infer brand: %w: %q is a subcategory", ErrInvalidParent, main.Name)
	}

	if existing, err := c.findChild(ctx, mainCategoryID, brand); err != nil || existing != nil {
		return existing, err
	}

	created, err := c.service.CreateCategory(ctx, CreateInput{Name: brand, ParentID: &mainCategoryID})
	if errors.Is(err, ErrDuplicateName) {
		// Someone else created it between the lookup and the insert.
		existing, ferr := c.findChild(ctx, mainCategoryID, brand)
		if ferr == nil && existing != nil {
			return existing, nil
		}
	}
	if err != nil {
		return nil, fmt.Errorf("infer brand: %w", err)
	}
	return created, nil
}

// Categorize files a product under the brand subcategory inferred from
// model. When no brand matches, or the brand subcategory has been
// deactivated, the product goes into the main category. Inference and
// assignment commit together, and nothing is written for a missing product.
func (c *Categorizer) Categorize(ctx context.Context, productID uuid.UUID, model string, mainCategoryID uuid.UUID) (*CategorizeResult, error) {
	var res *CategorizeResult
	err := c.store.InTx(ctx, func(tx Store) error {
		var err error
		res, err = c.bind(tx).categorize(ctx, productID, model, mainCategoryID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Categorizer) categorize(ctx context.Context, productID uuid.UUID, model string, mainCategoryID uuid.UUID) (*CategorizeResult, error) {
	if _, err := c.store.Products().FindByID(ctx, productID); err != nil {
		return nil, fmt.Errorf("categorize: %w", err)
	}

	cat, err := c.InferBrandSubcategory(ctx, model, mainCategoryID)
	if err == nil && !cat.IsActive {
		err = fmt.Errorf("brand subcategory %q is inactive: %w", cat.Name, ErrNoMatch)
	}
	switch {
	case err == nil:
		if err := c.Assign(ctx, productID, cat.ID); err != nil {
			return nil, err
		}
		return &CategorizeResult{Category: cat, Inferred: true, Brand: cat.Name}, nil
	case errors.Is(err, ErrNoMatch):
		if err := c.Assign(ctx, productID, mainCategoryID); err != nil {
			return nil, err
		}
		main, err := c.store.Categories().FindByID(ctx, mainCategoryID)
		if err != nil {
			return nil, fmt.Errorf("categorize: %w", err)
		}
		return &CategorizeResult{Category: main}, nil
	default:
		return nil, err
	}
}

// bind returns a copy of c whose reads and writes go through tx.
func (c *Categorizer) bind(tx Store) *Categorizer {
	return &Categorizer{store: tx, service: NewService(tx), rules: c.rules}
}

func (c *Categorizer) activeCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	cat, err := c.store.Categories().FindByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrCategoryNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	if !cat.IsActive {
		return nil, fmt.Errorf("%w: %q is inactive", ErrCategoryNotFound, cat.Name)
	}
	return cat, nil
}

func (c *Categorizer) findChild(ctx context.Context, parentID uuid.UUID, name string) (*models.Category, error) {
	children, err := c.store.Categories().ListChildren(ctx, parentID, true)
	if err != nil {
		return nil, fmt.Errorf("list subcategories: %w", err)
	}
	for i := range children {
		if children[i].Name == name {
			return &children[i], nil
		}
	}
	return nil, nil
}
