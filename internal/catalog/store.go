// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"context"

	"github.com/google/uuid"

	"phonestore/internal/models"
)

// CategoryRepository is the persistence contract for category rows.
// Lookups of a missing id return an error wrapping ErrNotFound; inserts and
// updates that collide with a sibling name return ErrDuplicateName.
type CategoryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
	ListRoots(ctx context.Context, includeInactive bool) ([]models.Category, error)
	ListChildren(ctx context.Context, parentID uuid.UUID, includeInactive bool) ([]models.Category, error)
	Insert(ctx context.Context, c *models.Category) (*models.Category, error)
	Update(ctx context.Context, id uuid.UUID, patch models.CategoryPatch) (*models.Category, error)
	Remove(ctx context.Context, id uuid.UUID) error
	CountChildren(ctx context.Context, id uuid.UUID) (int, error)
	ReparentChildren(ctx context.Context, from, to uuid.UUID) (int64, error)
	NextSortOrder(ctx context.Context, parentID *uuid.UUID) (int, error)
}

// ProductFilter narrows a product listing.
type ProductFilter struct {
	CategoryID    *uuid.UUID
	Uncategorized bool
	Limit         int
	Offset        int
}

// ProductRepository is the persistence contract for products. Lookups and
// reassignments of a missing product return ErrProductNotFound.
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]models.Product, error)
	Create(ctx context.Context, p *models.Product) (*models.Product, error)
	CountByCategoryID(ctx context.Context, categoryID uuid.UUID) (int, error)
	ReassignCategory(ctx context.Context, productID uuid.UUID, categoryID *uuid.UUID) error
	ReassignAll(ctx context.Context, from, to uuid.UUID) (int64, error)
}

// Store groups both repositories behind one transactional boundary.
// InTx runs fn against a Store bound to a single transaction: if fn returns
// an error nothing it wrote is kept. Calling InTx on a Store that is already
// inside a transaction reuses it.
type Store interface {
	Categories() CategoryRepository
	Products() ProductRepository
	InTx(ctx context.Context, fn func(tx Store) error) error
}
