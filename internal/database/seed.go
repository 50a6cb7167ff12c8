package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"phonestore/internal/slug"
)

// DefaultMainCategories are created by Seed on an empty catalog.
var DefaultMainCategories = []string{"Smartphones", "Tablets", "Laptops", "Accessories"}

// Seed populates the database with the default main categories when no
// category exists yet.
func Seed(ctx context.Context, db *sql.DB) error {
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM categories").Scan(&count); err != nil {
		return fmt.Errorf("seed check categories: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed begin tx: %w", err)
	}
	defer tx.Rollback()

	for i, name := range DefaultMainCategories {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO categories (name, slug, level, is_active, sort_order)
			VALUES ($1, $2, 0, TRUE, $3)
			ON CONFLICT DO NOTHING
		`, name, slug.Generate(name), i)
		if err != nil {
			return fmt.Errorf("seed insert category %q: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with default main categories", "count", len(DefaultMainCategories))
	return nil
}
