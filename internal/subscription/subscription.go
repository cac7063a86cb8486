package subscription

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// DateLayout is the calendar day format used for selected delivery days.
const DateLayout = "2006-01-02"

const (
	preselectDays = 30
	rangeMonths   = 3
	maxDiscount   = 20
)

// bonusTiers are checked in order; the first tier reached wins.
var bonusTiers = []struct {
	minDays int
	bonus   int
}{
	{minDays: 10, bonus: 15},
	{minDays: 5, bonus: 10},
}

var plans = []model.Plan{
	{
		ID:           model.PlanWeekend,
		Title:        "Weekend Subscription",
		Description:  "Saturday & Sunday deliveries only",
		BaseDiscount: 10,
		Days:         []string{"Saturday", "Sunday"},
	},
	{
		ID:           model.PlanWeekdays,
		Title:        "Weekdays Subscription",
		Description:  "Monday to Friday deliveries only",
		BaseDiscount: 15,
		Days:         []string{"Mon", "Tue", "Wed", "Thu", "Fri"},
	},
	{
		ID:           model.PlanRandom,
		Title:        "Random Days Subscription",
		Description:  "Choose any days you prefer",
		BaseDiscount: 5,
		Days:         []string{"Flexible scheduling"},
	},
}

var popularLocations = []model.PopularLocation{
	{Name: "Downtown", Latitude: 37.7749, Longitude: -122.4194, Address: "Downtown San Francisco, CA"},
	{Name: "Times Square", Latitude: 40.7580, Longitude: -73.9855, Address: "Times Square, New York, NY"},
	{Name: "Hollywood", Latitude: 34.0928, Longitude: -118.3287, Address: "Hollywood, Los Angeles, CA"},
	{Name: "Miami Beach", Latitude: 25.7617, Longitude: -80.1918, Address: "Miami Beach, FL"},
	{Name: "Chicago Loop", Latitude: 41.8781, Longitude: -87.6298, Address: "Chicago Loop, IL"},
}

// ReverseGeocoder resolves coordinates to a human-readable address.
type ReverseGeocoder interface {
	ReverseGeocode(ctx context.Context, latitude, longitude float64) (string, error)
}

// Option configures a Planner.
type Option func(*Planner)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(p *Planner) {
		p.now = now
	}
}

// WithGeocoder sets the reverse geocoder used for manual coordinates.
func WithGeocoder(g ReverseGeocoder) Option {
	return func(p *Planner) {
		p.geocoder = g
	}
}

// Planner builds delivery subscriptions: plan choice, calendar selection,
// discount calculation and delivery location.
type Planner struct {
	now      func() time.Time
	geocoder ReverseGeocoder
	logger   zerolog.Logger
}

// NewPlanner creates a Planner.
func NewPlanner(logger zerolog.Logger, opts ...Option) *Planner {
	p := &Planner{
		now:    time.Now,
		logger: logger.With().Str("component", "subscription").Logger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Plans returns the available subscription plans.
func (p *Planner) Plans() []model.Plan {
	out := make([]model.Plan, len(plans))
	for i, plan := range plans {
		out[i] = plan
		out[i].Days = append([]string(nil), plan.Days...)
	}
	return out
}

// Plan looks up a plan by ID.
func (p *Planner) Plan(id model.PlanID) (model.Plan, error) {
	for _, plan := range p.Plans() {
		if plan.ID == id {
			return plan, nil
		}
	}
	return model.Plan{}, model.ErrInvalidPlan
}

// PopularLocations returns the preset delivery locations.
func (p *Planner) PopularLocations() []model.PopularLocation {
	out := make([]model.PopularLocation, len(popularLocations))
	copy(out, popularLocations)
	return out
}

// NewSelection starts a calendar selection for the plan. Fixed plans come
// with every matching day of the next 30 days already selected.
func (p *Planner) NewSelection(id model.PlanID) (*Selection, error) {
	plan, err := p.Plan(id)
	if err != nil {
		return nil, err
	}

	today := truncateDay(p.now())
	s := &Selection{
		plan:    plan,
		today:   today,
		maxDate: today.AddDate(0, rangeMonths, 0),
		days:    make(map[string]struct{}),
	}

	if plan.ID != model.PlanRandom {
		for i := 0; i < preselectDays; i++ {
			day := today.AddDate(0, 0, i)
			if matchesPlan(plan.ID, day.Weekday()) {
				s.days[day.Format(DateLayout)] = struct{}{}
			}
		}
	}

	return s, nil
}

// Summarize builds a summary for req. Days are only accepted for the
// random plan; fixed plans use their preselected schedule.
func (p *Planner) Summarize(req model.SummaryRequest) (model.SubscriptionSummary, error) {
	sel, err := p.NewSelection(req.Plan)
	if err != nil {
		return model.SubscriptionSummary{}, err
	}

	if sel.Fixed() && len(req.Days) > 0 {
		return model.SubscriptionSummary{}, model.ErrFixedSchedule
	}

	for _, day := range req.Days {
		if err := sel.Select(day); err != nil {
			p.logger.Debug().Err(err).Str("day", day).Msg("rejected delivery day")
			return model.SubscriptionSummary{}, err
		}
	}

	return sel.Summary()
}

// Locate resolves a delivery location from a preset name or coordinates.
func (p *Planner) Locate(ctx context.Context, req model.LocationRequest) (model.DeliveryLocation, error) {
	if req.Popular != "" {
		for _, loc := range popularLocations {
			if strings.EqualFold(loc.Name, req.Popular) {
				return model.DeliveryLocation{
					Latitude:  loc.Latitude,
					Longitude: loc.Longitude,
					Address:   loc.Address,
					Timestamp: p.now().UTC(),
				}, nil
			}
		}
		return model.DeliveryLocation{}, model.ErrUnknownLocation
	}

	if req.Latitude == nil || req.Longitude == nil {
		return model.DeliveryLocation{}, model.ErrNoLocation
	}

	lat, lng := *req.Latitude, *req.Longitude
	if err := ValidateCoordinates(lat, lng); err != nil {
		return model.DeliveryLocation{}, err
	}

	return model.DeliveryLocation{
		Latitude:  lat,
		Longitude: lng,
		Address:   p.address(ctx, lat, lng),
		Timestamp: p.now().UTC(),
	}, nil
}

// Confirm produces the final subscription: summary plus delivery location.
func (p *Planner) Confirm(ctx context.Context, req model.ConfirmRequest) (*model.Subscription, error) {
	summary, err := p.Summarize(req.SummaryRequest)
	if err != nil {
		return nil, err
	}

	location, err := p.Locate(ctx, req.Location)
	if err != nil {
		return nil, err
	}

	p.logger.Info().
		Str("plan", string(summary.Plan.ID)).
		Int("days", summary.DaysCount).
		Int("discount", summary.TotalDiscount).
		Str("address", location.Address).
		Msg("subscription confirmed")

	return &model.Subscription{
		SubscriptionSummary: summary,
		DeliveryLocation:    location,
	}, nil
}

func (p *Planner) address(ctx context.Context, lat, lng float64) string {
	fallback := fmt.Sprintf("%.6f, %.6f", lat, lng)
	if p.geocoder == nil {
		return fallback
	}

	addr, err := p.geocoder.ReverseGeocode(ctx, lat, lng)
	if err != nil {
		p.logger.Warn().Err(err).Float64("latitude", lat).Float64("longitude", lng).Msg("reverse geocoding failed")
		return fallback
	}
	if addr == "" {
		return fallback
	}
	return addr
}

// ValidateCoordinates checks that lat and lng are on the globe.
func ValidateCoordinates(lat, lng float64) error {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return model.ErrInvalidCoordinates
	}
	return nil
}

// Discount returns the total discount percentage for a plan base discount
// and a number of selected days.
func Discount(base, days int) int {
	bonus := 0
	for _, tier := range bonusTiers {
		if days >= tier.minDays {
			bonus = tier.bonus
			break
		}
	}
	return min(base+bonus, maxDiscount)
}

// Selection is an in-progress set of delivery days for one plan.
type Selection struct {
	plan    model.Plan
	today   time.Time
	maxDate time.Time
	days    map[string]struct{}
}

// Plan returns the plan being configured.
func (s *Selection) Plan() model.Plan {
	return s.plan
}

// Fixed reports whether the plan has a fixed schedule.
func (s *Selection) Fixed() bool {
	return s.plan.ID != model.PlanRandom
}

// Range returns the first and last selectable days.
func (s *Selection) Range() (string, string) {
	return s.today.Format(DateLayout), s.maxDate.Format(DateLayout)
}

// Toggle adds day to the selection, or removes it when already selected.
func (s *Selection) Toggle(day string) error {
	if s.Fixed() {
		return model.ErrFixedSchedule
	}

	if _, ok := s.days[day]; ok {
		delete(s.days, day)
		return nil
	}
	return s.add(day)
}

// Select adds day to the selection. Selecting a day twice is a no-op.
func (s *Selection) Select(day string) error {
	if s.Fixed() {
		return model.ErrFixedSchedule
	}
	return s.add(day)
}

func (s *Selection) add(day string) error {
	d, err := time.ParseInLocation(DateLayout, day, s.today.Location())
	if err != nil {
		return model.ErrInvalidDate
	}
	if d.Before(s.today) {
		return model.ErrPastDate
	}
	if d.After(s.maxDate) {
		return model.ErrDateOutOfRange
	}

	s.days[d.Format(DateLayout)] = struct{}{}
	return nil
}

// Days returns the selected days in ascending order.
func (s *Selection) Days() []string {
	days := make([]string, 0, len(s.days))
	for d := range s.days {
		days = append(days, d)
	}
	sort.Strings(days)
	return days
}

// Discount returns the current total discount percentage.
func (s *Selection) Discount() int {
	return Discount(s.plan.BaseDiscount, len(s.days))
}

// Summary returns the selection summary. At least one day must be selected.
func (s *Selection) Summary() (model.SubscriptionSummary, error) {
	if len(s.days) == 0 {
		return model.SubscriptionSummary{}, model.ErrNoDaysSelected
	}

	return model.SubscriptionSummary{
		Plan:          s.plan,
		SelectedDays:  s.Days(),
		DaysCount:     len(s.days),
		TotalDiscount: s.Discount(),
	}, nil
}

func matchesPlan(id model.PlanID, wd time.Weekday) bool {
	switch id {
	case model.PlanWeekend:
		return wd == time.Saturday || wd == time.Sunday
	case model.PlanWeekdays:
		return wd >= time.Monday && wd <= time.Friday
	}
	return false
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
