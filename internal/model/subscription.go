package model

import "time"

// PlanID identifies a subscription plan.
type PlanID string

const (
	PlanWeekend  PlanID = "weekend"
	PlanWeekdays PlanID = "weekdays"
	PlanRandom   PlanID = "random"
)

// Plan describes a delivery subscription plan.
type Plan struct {
	ID           PlanID   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	BaseDiscount int      `json:"baseDiscount"`
	Days         []string `json:"days"`
}

// SubscriptionSummary is the result of the calendar step.
type SubscriptionSummary struct {
	Plan          Plan     `json:"plan"`
	SelectedDays  []string `json:"selectedDays"`
	DaysCount     int      `json:"daysCount"`
	TotalDiscount int      `json:"totalDiscount"`
}

// DeliveryLocation is the delivery point chosen on the location step.
type DeliveryLocation struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Address   string    `json:"address"`
	Timestamp time.Time `json:"timestamp"`
}

// PopularLocation is a preset delivery location.
type PopularLocation struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address"`
}

// Subscription is a fully configured subscription.
type Subscription struct {
	SubscriptionSummary
	DeliveryLocation DeliveryLocation `json:"deliveryLocation"`
}

// SummaryRequest represents the request payload for the calendar step.
type SummaryRequest struct {
	Plan PlanID   `json:"plan"`
	Days []string `json:"days,omitempty"`
}

// LocationRequest selects a delivery location either by preset name or by coordinates.
type LocationRequest struct {
	Popular   string   `json:"popular,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// ConfirmRequest represents the request payload for confirming a subscription.
type ConfirmRequest struct {
	SummaryRequest
	Location LocationRequest `json:"location"`
}
