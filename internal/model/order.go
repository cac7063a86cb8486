package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order represents a placed customer order.
type Order struct {
	ID           uuid.UUID       `json:"id"`
	Items        []CartItem      `json:"items"`
	Subscription *Subscription   `json:"subscription,omitempty"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Discount     decimal.Decimal `json:"discount"`
	Total        decimal.Decimal `json:"total"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// OrderRequest represents the request payload for checkout.
type OrderRequest struct {
	Subscription *ConfirmRequest `json:"subscription,omitempty"`
}
