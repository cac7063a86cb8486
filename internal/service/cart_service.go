package service

import (
	"context"

	"storefront/internal/cart"
	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// cartService implements CartService.
type cartService struct {
	cart     *cart.Cart
	products ProductService
	logger   zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(c *cart.Cart, products ProductService, logger zerolog.Logger) CartService {
	return &cartService{
		cart:     c,
		products: products,
		logger:   logger.With().Str("service", "cart").Logger(),
	}
}

func (s *cartService) Get() model.CartResponse {
	return s.cart.Snapshot()
}

// Add resolves the product and adds one unit of it to the cart.
func (s *cartService) Add(ctx context.Context, productID int) (model.CartItem, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return model.CartItem{}, err
	}
	return s.cart.Add(*product), nil
}

func (s *cartService) Remove(productID int) error {
	if !s.cart.Remove(productID) {
		s.logger.Debug().Int("product_id", productID).Msg("product not in cart")
		return model.ErrProductNotFound
	}
	return nil
}

func (s *cartService) Clear() {
	s.cart.Clear()
}
