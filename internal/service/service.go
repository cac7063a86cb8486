package service

import (
	"context"

	"storefront/internal/model"

	"github.com/google/uuid"
)

// CatalogSynchronizer is the part of catalog.Synchronizer the services use.
type CatalogSynchronizer interface {
	Snapshot() model.CatalogView
	Refresh(ctx context.Context) (model.CatalogView, error)
	LoadMore(ctx context.Context) (model.CatalogView, error)
}

// ProductService defines operations for browsing the catalogue.
type ProductService interface {
	// Catalog returns the currently displayed product list.
	Catalog() model.CatalogView

	// Refresh reloads the first page of the catalogue.
	Refresh(ctx context.Context) (model.CatalogView, error)

	// LoadMore appends the next page of the catalogue.
	LoadMore(ctx context.Context) (model.CatalogView, error)

	// GetByID retrieves a single product, from the cache first.
	GetByID(ctx context.Context, id int) (*model.Product, error)

	// CacheCount returns the number of cached products.
	CacheCount(ctx context.Context) (int, error)

	// ClearCache removes every cached product.
	ClearCache(ctx context.Context) error

	// CachedProducts returns the full cache in ID order.
	CachedProducts(ctx context.Context) ([]model.Product, error)
}

// CartService defines operations for the shopping cart.
type CartService interface {
	Get() model.CartResponse
	Add(ctx context.Context, productID int) (model.CartItem, error)
	Remove(productID int) error
	Clear()
}

// SubscriptionService defines operations for the delivery subscription flow.
type SubscriptionService interface {
	Plans() []model.Plan
	Locations() []model.PopularLocation
	Summarize(req model.SummaryRequest) (model.SubscriptionSummary, error)
	Confirm(ctx context.Context, req model.ConfirmRequest) (*model.Subscription, error)
}

// OrderService defines operations for order management.
type OrderService interface {
	// CreateOrder checks out the cart with an optional subscription.
	CreateOrder(ctx context.Context, req *model.OrderRequest) (*model.Order, error)

	// GetByID retrieves an order by its ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
}
