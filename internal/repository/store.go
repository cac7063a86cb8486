package repository

import (
	"context"
	"fmt"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// New opens the catalogue cache selected by cfg.Driver and makes sure its
// schema exists.
func New(ctx context.Context, cfg config.StoreConfig, logger zerolog.Logger) (CatalogRepository, error) {
	var repo CatalogRepository

	switch cfg.Driver {
	case config.StoreDriverSQLite:
		db, err := database.NewSQLite(ctx, cfg.SQLite, logger)
		if err != nil {
			return nil, err
		}
		repo = NewSQLiteRepository(db, logger)
	case config.StoreDriverPostgres:
		pool, err := database.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		repo = NewPostgresRepository(pool, logger)
	case config.StoreDriverRedis:
		client, err := database.NewRedis(ctx, cfg.Redis, logger)
		if err != nil {
			return nil, err
		}
		repo = NewRedisRepository(client, cfg.Redis.KeyPrefix, logger)
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", cfg.Driver)
	}

	if err := repo.EnsureSchema(ctx); err != nil {
		repo.Close()
		return nil, err
	}

	return repo, nil
}

func storeError(op string, err error) error {
	return &model.StoreError{Op: op, Err: err}
}
