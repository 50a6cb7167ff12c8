// Package cli implements the catalogctl commands.
package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"phonestore/internal/cache"
	"phonestore/internal/catalog"
	"phonestore/internal/config"
	"phonestore/internal/database"
	"phonestore/internal/store"
)

var rootCmd = &cobra.Command{
	Use:           "catalogctl",
	Short:         "Inspect and reorganize the phone store category catalog",
	Long:          "catalogctl prints the category tree, merges categories, consolidates duplicates and manages the schema migrations.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return err
	}
	return nil
}

// env bundles what every command needs.
type env struct {
	service *catalog.Service
	cache   *cache.CategoryCache
	close   func()
}

// connect loads the configuration and opens PostgreSQL.
func connect(ctx context.Context) (*config.Config, *sql.DB, error) {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load configuration: %w", err)
	}
	db, err := database.Connect(ctx, cfg.DSN())
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

// openEnv connects to PostgreSQL and, when reachable, to Valkey so that
// writes can drop the cached trees the API serves.
func openEnv(ctx context.Context) (*env, error) {
	cfg, db, err := connect(ctx)
	if err != nil {
		return nil, err
	}

	e := &env{
		service: catalog.NewService(store.NewCatalog(db)),
		close:   func() { db.Close() },
	}
	client, err := cache.ConnectValkey(ctx, cfg.ValkeyAddr(), cfg.ValkeyPassword)
	if err != nil {
		slog.Warn("valkey unavailable, cached trees will expire on their own", "error", err)
		return e, nil
	}
	e.cache = cache.NewCategoryCache(client, cfg.CategoryCacheTTL)
	e.close = func() {
		client.Close()
		db.Close()
	}
	return e, nil
}

// invalidate drops cached trees after a write.
func (e *env) invalidate(ctx context.Context) {
	if e.cache != nil {
		e.cache.Invalidate(ctx)
	}
}
