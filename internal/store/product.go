// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"phonestore/internal/catalog"
	"phonestore/internal/models"
)

// ProductStore handles product persistence. Only the category reference is
// ever changed after creation.
type ProductStore struct {
	db dbtx
}

// NewProductStore returns a new ProductStore outside any transaction.
func NewProductStore(db *sql.DB) *ProductStore {
	return &ProductStore{db: db}
}

const productColumns = `id, name, brand, model, price, stock, category_id, created_at, updated_at`

func scanProduct(scanner interface{ Scan(...any) error }) (*models.Product, error) {
	var p models.Product
	err := scanner.Scan(
		&p.ID, &p.Name, &p.Brand, &p.Model, &p.Price, &p.Stock,
		&p.CategoryID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByID retrieves a product by its UUID.
func (s *ProductStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find product %s: %w", id, catalog.ErrProductNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find product by id: %w", err)
	}
	return p, nil
}

// List returns products matching filter, newest first.
func (s *ProductStore) List(ctx context.Context, filter catalog.ProductFilter) ([]models.Product, error) {
	var (
		where []string
		args  []any
	)
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		where = append(where, fmt.Sprintf("category_id = $%d", len(args)))
	}
	if filter.Uncategorized {
		where = append(where, "category_id IS NULL")
	}

	q := `SELECT ` + productColumns + ` FROM products`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY created_at DESC, name`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		q += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		q += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var items []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

// Create inserts a new product and returns it.
func (s *ProductStore) Create(ctx context.Context, p *models.Product) (*models.Product, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO products (name, brand, model, price, stock, category_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+productColumns,
		p.Name, p.Brand, p.Model, p.Price, p.Stock, p.CategoryID,
	)
	created, err := scanProduct(row)
	if pgCode(err) == pgForeignKeyViolation {
		return nil, fmt.Errorf("create product: %w", catalog.ErrCategoryNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return created, nil
}

// CountByCategoryID returns how many products reference categoryID.
func (s *ProductStore) CountByCategoryID(ctx context.Context, categoryID uuid.UUID) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products WHERE category_id = $1`, categoryID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

// ReassignCategory sets the category reference of one product. A nil
// categoryID leaves it uncategorized.
func (s *ProductStore) ReassignCategory(ctx context.Context, productID uuid.UUID, categoryID *uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE products SET category_id = $1, updated_at = NOW()
		WHERE id = $2`, categoryID, productID)
	if pgCode(err) == pgForeignKeyViolation {
		return fmt.Errorf("reassign product %s: %w", productID, catalog.ErrCategoryNotFound)
	}
	if err != nil {
		return fmt.Errorf("reassign product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("reassign product %s: %w", productID, catalog.ErrProductNotFound)
	}
	return nil
}

// ReassignAll moves every product of from to to.
func (s *ProductStore) ReassignAll(ctx context.Context, from, to uuid.UUID) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE products SET category_id = $2, updated_at = NOW()
		WHERE category_id = $1`, from, to)
	if pgCode(err) == pgForeignKeyViolation {
		return 0, fmt.Errorf("reassign products: %w", catalog.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("reassign products: %w", err)
	}
	return res.RowsAffected()
}
