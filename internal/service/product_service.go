package service

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/model"
	"storefront/internal/netmon"
	"storefront/internal/remote"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
)

// productService implements ProductService.
type productService struct {
	synchronizer CatalogSynchronizer
	store        repository.CatalogRepository
	remote       remote.Client
	monitor      netmon.Monitor
	logger       zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(
	synchronizer CatalogSynchronizer,
	store repository.CatalogRepository,
	rc remote.Client,
	monitor netmon.Monitor,
	logger zerolog.Logger,
) ProductService {
	return &productService{
		synchronizer: synchronizer,
		store:        store,
		remote:       rc,
		monitor:      monitor,
		logger:       logger.With().Str("service", "product").Logger(),
	}
}

// Catalog returns the currently displayed product list.
func (s *productService) Catalog() model.CatalogView {
	return s.synchronizer.Snapshot()
}

// Refresh reloads the first page of the catalogue.
func (s *productService) Refresh(ctx context.Context) (model.CatalogView, error) {
	view, err := s.synchronizer.Refresh(ctx)
	if err != nil {
		if !errors.Is(err, model.ErrLoadInFlight) {
			s.logger.Error().Err(err).Msg("failed to refresh catalogue")
		}
		return view, err
	}
	return view, nil
}

// LoadMore appends the next page of the catalogue.
func (s *productService) LoadMore(ctx context.Context) (model.CatalogView, error) {
	view, err := s.synchronizer.LoadMore(ctx)
	if err != nil {
		if !errors.Is(err, model.ErrLoadInFlight) {
			s.logger.Error().Err(err).Int("cursor", view.Cursor).Msg("failed to load more products")
		}
		return view, err
	}
	return view, nil
}

// GetByID retrieves a single product. The cache is consulted first; a miss
// falls through to the remote catalogue only while online.
func (s *productService) GetByID(ctx context.Context, id int) (*model.Product, error) {
	if id <= 0 {
		s.logger.Warn().Int("product_id", id).Msg("invalid product ID")
		return nil, model.ErrProductNotFound
	}

	product, err := s.store.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Int("product_id", id).Msg("failed to get product from cache")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product != nil {
		return product, nil
	}

	if !s.monitor.Online() {
		s.logger.Debug().Int("product_id", id).Msg("product not cached and offline")
		return nil, model.ErrUnavailable
	}

	product, err = s.remote.FetchByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrProductNotFound) {
			s.logger.Debug().Int("product_id", id).Msg("product not found")
			return nil, model.ErrProductNotFound
		}
		s.logger.Warn().Err(err).Int("product_id", id).Msg("failed to fetch product")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return product, nil
}

// CacheCount returns the number of cached products.
func (s *productService) CacheCount(ctx context.Context) (int, error) {
	n, err := s.store.Count(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to count cached products")
		return 0, fmt.Errorf("failed to count cached products: %w", err)
	}
	return n, nil
}

// ClearCache removes every cached product.
func (s *productService) ClearCache(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		s.logger.Error().Err(err).Msg("failed to clear cache")
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	s.logger.Info().Msg("product cache cleared")
	return nil
}

// CachedProducts returns the full cache in ID order.
func (s *productService) CachedProducts(ctx context.Context) ([]model.Product, error) {
	products, err := s.store.ReadAll(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to read cache")
		return nil, fmt.Errorf("failed to read cache: %w", err)
	}
	return products, nil
}
