package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/labease/labease-platform/internal/catalog"
	appconfig "github.com/labease/labease-platform/internal/config"
	"github.com/labease/labease-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	if cfg.DatabaseURL == "" {
		logger.Error("seed requires DATABASE_URL")
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	repo := catalog.NewPostgresRepository(pool)

	tests, labs, err := catalog.SeedSample(ctx, repo)
	if err != nil {
		logger.Error("seed failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("seeded %d tests and %d labs\n", tests, labs)
}
