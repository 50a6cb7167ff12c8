// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store implements the catalog repositories on PostgreSQL.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"phonestore/internal/catalog"
)

// PostgreSQL error codes the store translates.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// catalogLockKey is the advisory lock taken by every catalog transaction so
// that validation snapshots never race with a concurrent structural write.
const catalogLockKey = 7324019

// dbtx is the subset of *sql.DB and *sql.Tx the stores need.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Catalog is the PostgreSQL catalog.Store.
type Catalog struct {
	db *sql.DB // nil inside a transaction
	q  dbtx
}

// NewCatalog returns a Catalog backed by db.
func NewCatalog(db *sql.DB) *Catalog {
	return &Catalog{db: db, q: db}
}

// Categories implements catalog.Store.
func (c *Catalog) Categories() catalog.CategoryRepository {
	return &CategoryStore{db: c.q}
}

// Products implements catalog.Store.
func (c *Catalog) Products() catalog.ProductRepository {
	return &ProductStore{db: c.q}
}

// InTx implements catalog.Store. Catalog transactions are serialized with a
// transaction-scoped advisory lock.
func (c *Catalog) InTx(ctx context.Context, fn func(tx catalog.Store) error) error {
	if c.db == nil {
		return fn(c)
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, catalogLockKey); err != nil {
		return fmt.Errorf("lock catalog: %w", err)
	}

	if err := fn(&Catalog{q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// pgCode returns the SQLSTATE of err, or "" when err is not a server error.
func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
