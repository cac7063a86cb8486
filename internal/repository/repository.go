package repository

import (
	"context"

	"storefront/internal/model"
)

// CatalogRepository is the persistent product cache. Every failure is
// reported as a *model.StoreError.
type CatalogRepository interface {
	// EnsureSchema creates the backing table or keyspace if missing.
	EnsureSchema(ctx context.Context) error

	// ReplaceAll atomically replaces the whole cache with products.
	// Either all rows are written or the previous contents remain.
	ReplaceAll(ctx context.Context, products []model.Product) error

	// ReadAll returns every cached product ordered by ID ascending.
	ReadAll(ctx context.Context) ([]model.Product, error)

	// GetByID returns a cached product, or nil if it is not cached.
	GetByID(ctx context.Context, id int) (*model.Product, error)

	// Count returns the number of cached products.
	Count(ctx context.Context) (int, error)

	// Clear removes every cached product.
	Clear(ctx context.Context) error

	// Close releases the underlying connection.
	Close() error
}
