// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package catalog holds the category hierarchy rules: a two-tier tree of main
// categories and subcategories, the products filed into it, and the brand
// inference used when a product arrives with only a model name.
//
// Service is the only entry point for category mutations. Every check runs
// against a Snapshot of the store taken inside the same transaction that
// commits the write.
package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"phonestore/internal/models"
	"phonestore/internal/slug"
)

// Service implements the public category operations.
type Service struct {
	store Store
}

// NewService returns a Service backed by store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// CreateInput carries the fields of a new category.
type CreateInput struct {
	Name        string
	ParentID    *uuid.UUID
	Description string
}

// MergeResult reports what a merge moved.
type MergeResult struct {
	SourceID      uuid.UUID `json:"source_id"`
	TargetID      uuid.UUID `json:"target_id"`
	ProductsMoved int64     `json:"products_moved"`
	ChildrenMoved int64     `json:"children_moved"`
}

// snapshot loads every category from repo.
func snapshot(ctx context.Context, repo CategoryRepository) (*Snapshot, error) {
	cats, err := repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load category snapshot: %w", err)
	}
	return NewSnapshot(cats), nil
}

// CreateCategory adds an active category at the end of its sibling list.
func (s *Service) CreateCategory(ctx context.Context, in CreateInput) (*models.Category, error) {
	name := strings.TrimSpace(in.Name)

	var created *models.Category
	err := s.store.InTx(ctx, func(tx Store) error {
		snap, err := snapshot(ctx, tx.Categories())
		if err != nil {
			return err
		}
		if err := ValidateCreate(name, in.ParentID, snap); err != nil {
			return err
		}

		order, err := tx.Categories().NextSortOrder(ctx, in.ParentID)
		if err != nil {
			return fmt.Errorf("next sort order: %w", err)
		}

		created, err = tx.Categories().Insert(ctx, &models.Category{
			Name:        name,
			Slug:        slug.Generate(name),
			Description: strings.TrimSpace(in.Description),
			ParentID:    in.ParentID,
			Level:       ComputeLevel(in.ParentID),
			IsActive:    true,
			SortOrder:   order,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return created, nil
}

// RenameCategory changes a category's name and slug.
func (s *Service) RenameCategory(ctx context.Context, id uuid.UUID, newName string) (*models.Category, error) {
	name := strings.TrimSpace(newName)

	var updated *models.Category
	err := s.store.InTx(ctx, func(tx Store) error {
		snap, err := snapshot(ctx, tx.Categories())
		if err != nil {
			return err
		}
		if err := ValidateRename(id, name, snap); err != nil {
			return err
		}
		sl := slug.Generate(name)
		updated, err = tx.Categories().Update(ctx, id, models.CategoryPatch{Name: &name, Slug: &sl})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("rename category: %w", err)
	}
	return updated, nil
}

// UpdateDescription replaces a category's description.
func (s *Service) UpdateDescription(ctx context.Context, id uuid.UUID, description string) (*models.Category, error) {
	desc := strings.TrimSpace(description)
	updated, err := s.store.Categories().Update(ctx, id, models.CategoryPatch{Description: &desc})
	if err != nil {
		return nil, fmt.Errorf("update category description: %w", err)
	}
	return updated, nil
}

// MoveCategory reparents a category. A nil newParentID promotes it to a main
// category. The category goes to the end of its new sibling list.
func (s *Service) MoveCategory(ctx context.Context, id uuid.UUID, newParentID *uuid.UUID) (*models.Category, error) {
	var moved *models.Category
	err := s.store.InTx(ctx, func(tx Store) error {
		snap, err := snapshot(ctx, tx.Categories())
		if err != nil {
			return err
		}
		if err := ValidateMove(id, newParentID, snap); err != nil {
			return err
		}

		current, _ := snap.Get(id)
		if ptrEqual(current.ParentID, newParentID) {
			moved = &current
			return nil
		}

		order, err := tx.Categories().NextSortOrder(ctx, newParentID)
		if err != nil {
			return fmt.Errorf("next sort order: %w", err)
		}
		level := ComputeLevel(newParentID)
		patch := models.CategoryPatch{Level: &level, SortOrder: &order}
		if newParentID == nil {
			patch.ClearParent = true
		} else {
			patch.ParentID = newParentID
		}
		moved, err = tx.Categories().Update(ctx, id, patch)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("move category: %w", err)
	}
	return moved, nil
}

// DeactivateCategory hides a category from listings and assignment.
// Dependents are not checked; the change is reversible.
func (s *Service) DeactivateCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return s.setActive(ctx, id, false)
}

// ActivateCategory reverses DeactivateCategory.
func (s *Service) ActivateCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return s.setActive(ctx, id, true)
}

func (s *Service) setActive(ctx context.Context, id uuid.UUID, active bool) (*models.Category, error) {
	updated, err := s.store.Categories().Update(ctx, id, models.CategoryPatch{IsActive: &active})
	if err != nil {
		return nil, fmt.Errorf("set category active=%t: %w", active, err)
	}
	return updated, nil
}

// DeleteCategory removes a category that nothing references. Otherwise it
// fails with *HasDependentsError carrying the blocking counts.
func (s *Service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	err := s.store.InTx(ctx, func(tx Store) error {
		if _, err := tx.Categories().FindByID(ctx, id); err != nil {
			return err
		}
		products, err := tx.Products().CountByCategoryID(ctx, id)
		if err != nil {
			return fmt.Errorf("count products: %w", err)
		}
		children, err := tx.Categories().CountChildren(ctx, id)
		if err != nil {
			return fmt.Errorf("count subcategories: %w", err)
		}
		if err := ValidateDelete(id, products, children); err != nil {
			return err
		}
		return tx.Categories().Remove(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

// MergeCategories moves every product and subcategory of sourceID to
// targetID and then removes sourceID. The whole merge commits or nothing
// does.
func (s *Service) MergeCategories(ctx context.Context, sourceID, targetID uuid.UUID) (*MergeResult, error) {
	result := &MergeResult{SourceID: sourceID, TargetID: targetID}
	err := s.store.InTx(ctx, func(tx Store) error {
		snap, err := snapshot(ctx, tx.Categories())
		if err != nil {
			return err
		}
		if err := ValidateMerge(sourceID, targetID, snap); err != nil {
			return err
		}

		result.ProductsMoved, err = tx.Products().ReassignAll(ctx, sourceID, targetID)
		if err != nil {
			return fmt.Errorf("reassign products: %w", err)
		}
		result.ChildrenMoved, err = tx.Categories().ReparentChildren(ctx, sourceID, targetID)
		if err != nil {
			return fmt.Errorf("reparent subcategories: %w", err)
		}
		return tx.Categories().Remove(ctx, sourceID)
	})
	if err != nil {
		return nil, fmt.Errorf("merge categories: %w", err)
	}
	return result, nil
}

// GetCategory returns a category with its product count.
func (s *Service) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	c, err := s.store.Categories().FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	c.ProductCount, err = s.store.Products().CountByCategoryID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}
	return c, nil
}

// ListRoots returns the main categories in display order.
func (s *Service) ListRoots(ctx context.Context, includeInactive bool) ([]models.Category, error) {
	cats, err := s.store.Categories().ListRoots(ctx, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("list main categories: %w", err)
	}
	return cats, nil
}

// ListChildren returns the subcategories of parentID in display order.
func (s *Service) ListChildren(ctx context.Context, parentID uuid.UUID, includeInactive bool) ([]models.Category, error) {
	if _, err := s.store.Categories().FindByID(ctx, parentID); err != nil {
		return nil, fmt.Errorf("list subcategories: %w", err)
	}
	cats, err := s.store.Categories().ListChildren(ctx, parentID, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("list subcategories: %w", err)
	}
	return cats, nil
}

// Tree returns the nested category tree. Inactive categories, and the
// subcategories of inactive main categories, are left out unless
// includeInactive is set.
func (s *Service) Tree(ctx context.Context, includeInactive bool) ([]models.Category, error) {
	cats, err := s.store.Categories().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("category tree: %w", err)
	}
	if !includeInactive {
		active := cats[:0]
		for _, c := range cats {
			if c.IsActive {
				active = append(active, c)
			}
		}
		cats = active
	}
	return BuildTree(cats), nil
}
