package cart

import (
	"sync"

	"storefront/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Cart holds the shopper's cart lines in insertion order.
type Cart struct {
	mu     sync.Mutex
	items  []model.CartItem
	logger zerolog.Logger
}

// New creates an empty cart.
func New(logger zerolog.Logger) *Cart {
	return &Cart{
		logger: logger.With().Str("component", "cart").Logger(),
	}
}

// Add puts one unit of p into the cart. Adding a product that is already
// present increments its quantity.
func (c *Cart) Add(p model.Product) model.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].ProductID == p.ID {
			c.items[i].Quantity++
			c.logger.Info().
				Int("product_id", p.ID).
				Str("title", p.Title).
				Int("quantity", c.items[i].Quantity).
				Msg("added to cart")
			return c.items[i]
		}
	}

	item := model.CartItem{
		ProductID: p.ID,
		Title:     p.Title,
		Price:     p.Price,
		Thumbnail: p.Thumbnail,
		Quantity:  1,
	}
	c.items = append(c.items, item)

	c.logger.Info().
		Int("product_id", p.ID).
		Str("title", p.Title).
		Int("quantity", 1).
		Msg("added to cart")

	return item
}

// Remove drops the line for productID. It reports whether a line was removed.
func (c *Cart) Remove(productID int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].ProductID == productID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			c.logger.Debug().Int("product_id", productID).Msg("removed from cart")
			return true
		}
	}
	return false
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = nil
	c.logger.Debug().Msg("cart cleared")
}

// Take empties the cart and returns the lines it held, under one lock.
func (c *Cart) Take() []model.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	items := c.items
	c.items = nil
	if len(items) > 0 {
		c.logger.Debug().Int("lines", len(items)).Msg("cart taken for checkout")
	}
	return items
}

// Items returns a copy of the cart lines.
func (c *Cart) Items() []model.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]model.CartItem, len(c.items))
	copy(out, c.items)
	return out
}

// Total returns the sum of price times quantity, rounded to cents.
func (c *Cart) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()

	return total(c.items)
}

// Snapshot returns the lines and their total under one lock.
func (c *Cart) Snapshot() model.CartResponse {
	c.mu.Lock()
	defer c.mu.Unlock()

	items := make([]model.CartItem, len(c.items))
	copy(items, c.items)
	return model.CartResponse{Items: items, Total: total(items)}
}

// Total returns the sum of line totals for items, rounded to cents.
func Total(items []model.CartItem) decimal.Decimal {
	return total(items)
}

func total(items []model.CartItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.LineTotal())
	}
	return sum.Round(2)
}
