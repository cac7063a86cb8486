package service

import (
	"context"
	"sync"
	"time"

	"storefront/internal/cart"
	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// orderService implements OrderService. Orders are kept in memory.
type orderService struct {
	cart          *cart.Cart
	subscriptions SubscriptionService
	now           func() time.Time
	logger        zerolog.Logger

	mu     sync.RWMutex
	orders map[uuid.UUID]*model.Order
}

// NewOrderService creates a new order service.
func NewOrderService(c *cart.Cart, subscriptions SubscriptionService, logger zerolog.Logger) OrderService {
	return &orderService{
		cart:          c,
		subscriptions: subscriptions,
		now:           time.Now,
		logger:        logger.With().Str("service", "order").Logger(),
		orders:        make(map[uuid.UUID]*model.Order),
	}
}

// CreateOrder checks out the current cart. A confirmed subscription, when
// requested, discounts the subtotal by its total discount percentage. The
// cart is taken only after the subscription is confirmed.
func (s *orderService) CreateOrder(ctx context.Context, req *model.OrderRequest) (*model.Order, error) {
	if len(s.cart.Items()) == 0 {
		s.logger.Warn().Msg("checkout with empty cart")
		return nil, model.ErrEmptyCart
	}

	var sub *model.Subscription
	if req != nil && req.Subscription != nil {
		var err error
		sub, err = s.subscriptions.Confirm(ctx, *req.Subscription)
		if err != nil {
			return nil, err
		}
	}

	items := s.cart.Take()
	if len(items) == 0 {
		s.logger.Warn().Msg("cart emptied during checkout")
		return nil, model.ErrEmptyCart
	}

	subtotal := cart.Total(items)
	discount := decimal.Zero
	if sub != nil {
		discount = subtotal.Mul(decimal.NewFromInt(int64(sub.TotalDiscount))).Div(hundred).Round(2)
	}

	order := &model.Order{
		ID:           uuid.New(),
		Items:        items,
		Subscription: sub,
		Subtotal:     subtotal,
		Discount:     discount,
		Total:        subtotal.Sub(discount),
		CreatedAt:    s.now().UTC(),
	}

	s.mu.Lock()
	s.orders[order.ID] = order
	s.mu.Unlock()

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Int("item_count", len(items)).
		Str("total", order.Total.StringFixed(2)).
		Msg("order created successfully")

	return order, nil
}

// GetByID retrieves an order by its ID.
func (s *orderService) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	s.mu.RLock()
	order, ok := s.orders[id]
	s.mu.RUnlock()

	if !ok {
		s.logger.Debug().Str("order_id", id.String()).Msg("order not found")
		return nil, model.ErrOrderNotFound
	}
	return order, nil
}
