// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"phonestore/internal/catalog"
	"phonestore/internal/models"
)

// CategoryStore manages categories in the database.
type CategoryStore struct {
	db dbtx
}

// NewCategoryStore returns a new CategoryStore outside any transaction.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `id, name, slug, description, parent_id, level, is_active, sort_order, created_at, updated_at`

// listCategories selects categories with their product counts.
const listCategories = `
	SELECT c.id, c.name, c.slug, c.description, c.parent_id, c.level,
	       c.is_active, c.sort_order, c.created_at, c.updated_at,
	       COUNT(p.id) AS product_count
	FROM categories c
	LEFT JOIN products p ON p.category_id = c.id
`

// scanCategory scans a row into a Category struct.
func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	err := scanner.Scan(
		&c.ID, &c.Name, &c.Slug, &c.Description, &c.ParentID,
		&c.Level, &c.IsActive, &c.SortOrder, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CategoryStore) query(ctx context.Context, where string, args ...any) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, listCategories+where+`
		GROUP BY c.id
		ORDER BY c.sort_order, c.name`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		var c models.Category
		err := rows.Scan(
			&c.ID, &c.Name, &c.Slug, &c.Description, &c.ParentID,
			&c.Level, &c.IsActive, &c.SortOrder, &c.CreatedAt, &c.UpdatedAt,
			&c.ProductCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// FindByID retrieves a category by ID.
func (s *CategoryStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find category %s: %w", id, catalog.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// List returns every category ordered by sort_order, with product counts.
func (s *CategoryStore) List(ctx context.Context) ([]models.Category, error) {
	items, err := s.query(ctx, ``)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return items, nil
}

// ListRoots returns the main categories.
func (s *CategoryStore) ListRoots(ctx context.Context, includeInactive bool) ([]models.Category, error) {
	items, err := s.query(ctx, `WHERE c.parent_id IS NULL AND ($1 OR c.is_active)`, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("list main categories: %w", err)
	}
	return items, nil
}

// ListChildren returns the subcategories of parentID.
func (s *CategoryStore) ListChildren(ctx context.Context, parentID uuid.UUID, includeInactive bool) ([]models.Category, error) {
	items, err := s.query(ctx, `WHERE c.parent_id = $1 AND ($2 OR c.is_active)`, parentID, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("list subcategories: %w", err)
	}
	return items, nil
}

// Insert adds a new category and returns it.
func (s *CategoryStore) Insert(ctx context.Context, c *models.Category) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO categories (name, slug, description, parent_id, level, is_active, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+categoryColumns,
		c.Name, c.Slug, c.Description, c.ParentID, c.Level, c.IsActive, c.SortOrder,
	)
	result, err := scanCategory(row)
	if err != nil {
		return nil, fmt.Errorf("insert category %q: %w", c.Name, categoryWriteErr(err))
	}
	return result, nil
}

// Update applies patch to the category with the given id.
func (s *CategoryStore) Update(ctx context.Context, id uuid.UUID, patch models.CategoryPatch) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1 FOR UPDATE`, id)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("update category %s: %w", id, catalog.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	if patch.Empty() {
		return c, nil
	}
	patch.Apply(c)

	row = s.db.QueryRowContext(ctx, `
		UPDATE categories SET
			name = $1, slug = $2, description = $3, parent_id = $4,
			level = $5, is_active = $6, sort_order = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING `+categoryColumns,
		c.Name, c.Slug, c.Description, c.ParentID, c.Level, c.IsActive, c.SortOrder, id,
	)
	updated, err := scanCategory(row)
	if err != nil {
		return nil, fmt.Errorf("update category %s: %w", id, categoryWriteErr(err))
	}
	return updated, nil
}

// Remove deletes a category. The schema refuses to delete a category that
// products or subcategories still reference.
func (s *CategoryStore) Remove(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if pgCode(err) == pgForeignKeyViolation {
		return fmt.Errorf("remove category %s: %w", id, catalog.ErrHasDependents)
	}
	if err != nil {
		return fmt.Errorf("remove category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("remove category %s: %w", id, catalog.ErrNotFound)
	}
	return nil
}

// CountChildren returns the number of direct subcategories of id.
func (s *CategoryStore) CountChildren(ctx context.Context, id uuid.UUID) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories WHERE parent_id = $1`, id).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count subcategories: %w", err)
	}
	return n, nil
}

// ReparentChildren moves every subcategory of from under to.
func (s *CategoryStore) ReparentChildren(ctx context.Context, from, to uuid.UUID) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE categories SET parent_id = $2, updated_at = NOW()
		WHERE parent_id = $1`, from, to)
	if err != nil {
		return 0, fmt.Errorf("reparent subcategories: %w", categoryWriteErr(err))
	}
	return res.RowsAffected()
}

// NextSortOrder returns the next sort_order value for a given parent.
func (s *CategoryStore) NextSortOrder(ctx context.Context, parentID *uuid.UUID) (int, error) {
	var maxOrder sql.NullInt64
	var err error
	if parentID == nil {
		err = s.db.QueryRowContext(ctx, `SELECT MAX(sort_order) FROM categories WHERE parent_id IS NULL`).Scan(&maxOrder)
	} else {
		err = s.db.QueryRowContext(ctx, `SELECT MAX(sort_order) FROM categories WHERE parent_id = $1`, *parentID).Scan(&maxOrder)
	}
	if err != nil {
		return 0, err
	}
	if maxOrder.Valid {
		return int(maxOrder.Int64) + 1, nil
	}
	return 0, nil
}

// categoryWriteErr maps constraint violations on the categories table.
func categoryWriteErr(err error) error {
	switch pgCode(err) {
	case pgUniqueViolation:
		return catalog.ErrDuplicateName
	case pgForeignKeyViolation:
		return catalog.ErrInvalidParent
	}
	return err
}
