package service

import (
	"context"
	"testing"
	"time"

	"storefront/internal/model"
	"storefront/internal/subscription"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSubscriptionService() SubscriptionService {
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	planner := subscription.NewPlanner(zerolog.Nop(), subscription.WithClock(func() time.Time { return now }))
	return NewSubscriptionService(planner, zerolog.Nop())
}

func TestSubscriptionService(t *testing.T) {
	svc := newTestSubscriptionService()

	assert.Len(t, svc.Plans(), 3)
	assert.Len(t, svc.Locations(), 5)

	summary, err := svc.Summarize(model.SummaryRequest{Plan: model.PlanRandom, Days: []string{"2024-01-02"}})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.DaysCount)
	assert.Equal(t, 5, summary.TotalDiscount)

	_, err = svc.Summarize(model.SummaryRequest{Plan: "monthly"})
	assert.ErrorIs(t, err, model.ErrInvalidPlan)

	sub, err := svc.Confirm(context.Background(), model.ConfirmRequest{
		SummaryRequest: model.SummaryRequest{Plan: model.PlanWeekend},
		Location:       model.LocationRequest{Popular: "Hollywood"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Hollywood, Los Angeles, CA", sub.DeliveryLocation.Address)

	_, err = svc.Confirm(context.Background(), model.ConfirmRequest{
		SummaryRequest: model.SummaryRequest{Plan: model.PlanWeekend},
		Location:       model.LocationRequest{Popular: "Nowhere"},
	})
	assert.ErrorIs(t, err, model.ErrUnknownLocation)
}
