package service

import (
	"context"
	"testing"

	"storefront/internal/cart"
	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func filledCart() *cart.Cart {
	c := cart.New(zerolog.Nop())
	c.Add(model.Product{ID: 1, Title: "Product 1", Price: decimal.NewFromInt(10)})
	c.Add(model.Product{ID: 1, Title: "Product 1", Price: decimal.NewFromInt(10)})
	c.Add(model.Product{ID: 2, Title: "Product 2", Price: decimal.RequireFromString("5.5")})
	return c
}

func TestOrderService_CreateOrder_WithoutSubscription(t *testing.T) {
	ctx := context.Background()
	c := filledCart()
	subs := new(MockSubscriptionService)

	svc := NewOrderService(c, subs, zerolog.Nop())

	order, err := svc.CreateOrder(ctx, &model.OrderRequest{})
	require.NoError(t, err)
	require.NotNil(t, order)

	assert.NotEqual(t, uuid.Nil, order.ID)
	assert.Len(t, order.Items, 2)
	assert.Nil(t, order.Subscription)
	assert.True(t, decimal.RequireFromString("25.5").Equal(order.Subtotal))
	assert.True(t, order.Discount.IsZero())
	assert.True(t, decimal.RequireFromString("25.5").Equal(order.Total))
	assert.False(t, order.CreatedAt.IsZero())

	assert.Empty(t, c.Items(), "cart should be cleared after checkout")
	subs.AssertNotCalled(t, "Confirm", mock.Anything, mock.Anything)
}

func TestOrderService_CreateOrder_WithSubscription(t *testing.T) {
	ctx := context.Background()
	c := filledCart()

	confirmReq := model.ConfirmRequest{
		SummaryRequest: model.SummaryRequest{Plan: model.PlanWeekdays},
		Location:       model.LocationRequest{Popular: "Downtown"},
	}
	sub := &model.Subscription{
		SubscriptionSummary: model.SubscriptionSummary{
			Plan:          model.Plan{ID: model.PlanWeekdays},
			DaysCount:     22,
			TotalDiscount: 20,
		},
	}

	subs := new(MockSubscriptionService)
	subs.On("Confirm", ctx, confirmReq).Return(sub, nil)

	svc := NewOrderService(c, subs, zerolog.Nop())

	order, err := svc.CreateOrder(ctx, &model.OrderRequest{Subscription: &confirmReq})
	require.NoError(t, err)

	assert.Equal(t, sub, order.Subscription)
	assert.True(t, decimal.RequireFromString("25.5").Equal(order.Subtotal))
	assert.True(t, decimal.RequireFromString("5.1").Equal(order.Discount), "got %s", order.Discount)
	assert.True(t, decimal.RequireFromString("20.4").Equal(order.Total), "got %s", order.Total)
	subs.AssertExpectations(t)
}

func TestOrderService_CreateOrder_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("Empty cart", func(t *testing.T) {
		svc := NewOrderService(cart.New(zerolog.Nop()), new(MockSubscriptionService), zerolog.Nop())

		order, err := svc.CreateOrder(ctx, nil)
		assert.ErrorIs(t, err, model.ErrEmptyCart)
		assert.Nil(t, order)
	})

	t.Run("Subscription rejected keeps cart", func(t *testing.T) {
		c := filledCart()
		confirmReq := model.ConfirmRequest{SummaryRequest: model.SummaryRequest{Plan: model.PlanRandom}}

		subs := new(MockSubscriptionService)
		subs.On("Confirm", ctx, confirmReq).Return(nil, model.ErrNoDaysSelected)

		svc := NewOrderService(c, subs, zerolog.Nop())

		order, err := svc.CreateOrder(ctx, &model.OrderRequest{Subscription: &confirmReq})
		assert.ErrorIs(t, err, model.ErrNoDaysSelected)
		assert.Nil(t, order)
		assert.Len(t, c.Items(), 2)
	})
}

func TestOrderService_CreateOrder_CartChangesDuringConfirm(t *testing.T) {
	ctx := context.Background()
	confirmReq := model.ConfirmRequest{
		SummaryRequest: model.SummaryRequest{Plan: model.PlanWeekend},
		Location:       model.LocationRequest{Popular: "Downtown"},
	}
	sub := &model.Subscription{SubscriptionSummary: model.SubscriptionSummary{TotalDiscount: 20}}

	t.Run("Line added while confirming is ordered", func(t *testing.T) {
		c := cart.New(zerolog.Nop())
		c.Add(model.Product{ID: 1, Title: "Product 1", Price: decimal.NewFromInt(10)})

		subs := new(MockSubscriptionService)
		subs.On("Confirm", ctx, confirmReq).
			Run(func(args mock.Arguments) {
				c.Add(model.Product{ID: 2, Title: "Product 2", Price: decimal.NewFromInt(5)})
			}).
			Return(sub, nil)

		svc := NewOrderService(c, subs, zerolog.Nop())

		order, err := svc.CreateOrder(ctx, &model.OrderRequest{Subscription: &confirmReq})
		require.NoError(t, err)

		require.Len(t, order.Items, 2)
		assert.Equal(t, 2, order.Items[1].ProductID)
		assert.True(t, decimal.NewFromInt(15).Equal(order.Subtotal), "got %s", order.Subtotal)
		assert.True(t, decimal.NewFromInt(12).Equal(order.Total), "got %s", order.Total)
		assert.Empty(t, c.Items())
	})

	t.Run("Cart cleared while confirming", func(t *testing.T) {
		c := cart.New(zerolog.Nop())
		c.Add(model.Product{ID: 1, Title: "Product 1", Price: decimal.NewFromInt(10)})

		subs := new(MockSubscriptionService)
		subs.On("Confirm", ctx, confirmReq).
			Run(func(args mock.Arguments) {
				c.Clear()
			}).
			Return(sub, nil)

		svc := NewOrderService(c, subs, zerolog.Nop())

		order, err := svc.CreateOrder(ctx, &model.OrderRequest{Subscription: &confirmReq})
		assert.ErrorIs(t, err, model.ErrEmptyCart)
		assert.Nil(t, order)
	})
}

func TestOrderService_GetByID(t *testing.T) {
	ctx := context.Background()
	svc := NewOrderService(filledCart(), new(MockSubscriptionService), zerolog.Nop())

	created, err := svc.CreateOrder(ctx, nil)
	require.NoError(t, err)

	found, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, found)

	_, err = svc.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, model.ErrOrderNotFound)
}
