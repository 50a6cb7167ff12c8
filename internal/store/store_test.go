// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"

	"phonestore/internal/database"
	"phonestore/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "phonestore")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "phonestore")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	ctx := context.Background()
	db, err := database.Connect(ctx, testDSN())
	if err != nil {
		t.Skipf("skipping integration test: %v", err)
	}

	// Run migrations to ensure the schema is current.
	if err := database.Migrate(ctx, db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// uniqueName returns a category name no other test run uses.
func uniqueName(prefix string) string {
	return prefix + " " + uuid.NewString()[:8]
}

// mustRoot inserts a main category and removes it, its subcategories and
// their products when the test finishes.
func mustRoot(t *testing.T, db *sql.DB, name string) *models.Category {
	t.Helper()
	c, err := NewCategoryStore(db).Insert(context.Background(), &models.Category{
		Name:     name,
		Slug:     "test-" + uuid.NewString(),
		Level:    models.LevelRoot,
		IsActive: true,
	})
	if err != nil {
		t.Fatalf("insert root %q: %v", name, err)
	}
	t.Cleanup(func() { cleanTree(t, db, c.ID) })
	return c
}

// mustSub inserts a subcategory of parentID.
func mustSub(t *testing.T, db *sql.DB, parentID uuid.UUID, name string) *models.Category {
	t.Helper()
	pid := parentID
	c, err := NewCategoryStore(db).Insert(context.Background(), &models.Category{
		Name:     name,
		Slug:     "test-" + uuid.NewString(),
		ParentID: &pid,
		Level:    models.LevelSub,
		IsActive: true,
	})
	if err != nil {
		t.Fatalf("insert subcategory %q: %v", name, err)
	}
	return c
}

// cleanTree removes a main category together with everything under it.
// Call in t.Cleanup().
func cleanTree(t *testing.T, db *sql.DB, rootID uuid.UUID) {
	t.Helper()
	db.Exec(`DELETE FROM products WHERE category_id = $1
		OR category_id IN (SELECT id FROM categories WHERE parent_id = $1)`, rootID)
	db.Exec("DELETE FROM categories WHERE parent_id = $1", rootID)
	db.Exec("DELETE FROM categories WHERE id = $1", rootID)
}

// cleanProducts removes test products by id. Call in t.Cleanup().
func cleanProducts(t *testing.T, db *sql.DB, ids ...uuid.UUID) {
	t.Helper()
	for _, id := range ids {
		db.Exec("DELETE FROM products WHERE id = $1", id)
	}
}
