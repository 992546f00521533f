package commands

import (
	"context"
	"fmt"

	"github.com/benvon/sailor-swift/internal/config"
	"github.com/benvon/sailor-swift/internal/database"
)

// openDB loads configuration (including .env) and connects to the database.
func openDB(ctx context.Context) (*database.DB, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, fmt.Errorf("load env file: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	opts := database.DefaultOptions()
	opts.MaxOpenConns = 2
	opts.MaxIdleConns = 1
	db, err := database.New(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return db, nil
}
