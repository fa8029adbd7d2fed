// Command seed loads demo users and items into an empty database.
package main

import (
	"context"
	"log/slog"
	"os"

	"golang.org/x/crypto/bcrypt"

	"github.com/Hemantgithubpro/rewear-1/internal/config"
	"github.com/Hemantgithubpro/rewear-1/internal/infrastructure/observability"
	core "github.com/Hemantgithubpro/rewear-1/internal/repository/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	observability.InitLogger(cfg.Log.Level, cfg.Log.Format)

	ctx := context.Background()
	db, err := core.Open(ctx, cfg.Postgres.DSN)
	if err != nil {
		slog.Error("failed to connect to Postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := core.Migrate(ctx, db); err != nil {
		slog.Error("failed to migrate", "error", err)
		os.Exit(1)
	}

	s := &seeder{
		txManager: core.NewTxManager(db),
		users:     core.NewPostgresUserRepository(db),
		items:     core.NewPostgresItemRepository(db),
		cost:      bcrypt.DefaultCost,
	}
	if err := s.Seed(ctx); err != nil {
		slog.Error("failed to seed database", "error", err)
		db.Close()
		os.Exit(1)
	}
	slog.Info("database seeded")
}
