package service

import (
	"context"

	"storefront/internal/model"
	"storefront/internal/subscription"

	"github.com/rs/zerolog"
)

// subscriptionService implements SubscriptionService.
type subscriptionService struct {
	planner *subscription.Planner
	logger  zerolog.Logger
}

// NewSubscriptionService creates a new subscription service.
func NewSubscriptionService(planner *subscription.Planner, logger zerolog.Logger) SubscriptionService {
	return &subscriptionService{
		planner: planner,
		logger:  logger.With().Str("service", "subscription").Logger(),
	}
}

func (s *subscriptionService) Plans() []model.Plan {
	return s.planner.Plans()
}

func (s *subscriptionService) Locations() []model.PopularLocation {
	return s.planner.PopularLocations()
}

func (s *subscriptionService) Summarize(req model.SummaryRequest) (model.SubscriptionSummary, error) {
	summary, err := s.planner.Summarize(req)
	if err != nil {
		s.logger.Debug().Err(err).Str("plan", string(req.Plan)).Msg("subscription summary rejected")
		return model.SubscriptionSummary{}, err
	}
	return summary, nil
}

func (s *subscriptionService) Confirm(ctx context.Context, req model.ConfirmRequest) (*model.Subscription, error) {
	sub, err := s.planner.Confirm(ctx, req)
	if err != nil {
		s.logger.Debug().Err(err).Str("plan", string(req.Plan)).Msg("subscription confirmation rejected")
		return nil, err
	}
	return sub, nil
}
