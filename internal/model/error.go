package model

import (
	"errors"
	"fmt"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON        = "INVALID_JSON"
	ErrCodeProductNotFound    = "PRODUCT_NOT_FOUND"
	ErrCodeOrderNotFound      = "ORDER_NOT_FOUND"
	ErrCodeLoadInFlight       = "LOAD_IN_FLIGHT"
	ErrCodeEmptyCart          = "EMPTY_CART"
	ErrCodeInvalidPlan        = "INVALID_PLAN"
	ErrCodeFixedSchedule      = "FIXED_SCHEDULE"
	ErrCodePastDate           = "PAST_DATE"
	ErrCodeDateOutOfRange     = "DATE_OUT_OF_RANGE"
	ErrCodeInvalidDate        = "INVALID_DATE"
	ErrCodeNoDaysSelected     = "NO_DAYS_SELECTED"
	ErrCodeInvalidCoordinates = "INVALID_COORDINATES"
	ErrCodeUnknownLocation    = "UNKNOWN_LOCATION"
	ErrCodeNoLocation         = "NO_LOCATION"
	ErrCodeUnavailable        = "UNAVAILABLE"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrProductNotFound    = NewDomainError(ErrCodeProductNotFound, "Product not found")
	ErrOrderNotFound      = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrLoadInFlight       = NewDomainError(ErrCodeLoadInFlight, "A catalogue load is already in progress")
	ErrEmptyCart          = NewDomainError(ErrCodeEmptyCart, "Cart is empty")
	ErrInvalidPlan        = NewDomainError(ErrCodeInvalidPlan, "Unknown subscription plan")
	ErrFixedSchedule      = NewDomainError(ErrCodeFixedSchedule, "Plan has a fixed schedule; switch to Random Days to customise dates")
	ErrPastDate           = NewDomainError(ErrCodePastDate, "Cannot select past dates")
	ErrDateOutOfRange     = NewDomainError(ErrCodeDateOutOfRange, "Date is outside the bookable range")
	ErrInvalidDate        = NewDomainError(ErrCodeInvalidDate, "Date must be formatted as YYYY-MM-DD")
	ErrNoDaysSelected     = NewDomainError(ErrCodeNoDaysSelected, "Please select at least one delivery day")
	ErrInvalidCoordinates = NewDomainError(ErrCodeInvalidCoordinates, "Latitude must be between -90 and 90, longitude between -180 and 180")
	ErrUnknownLocation    = NewDomainError(ErrCodeUnknownLocation, "Unknown popular location")
	ErrNoLocation         = NewDomainError(ErrCodeNoLocation, "Please select a delivery location")
	ErrUnavailable        = NewDomainError(ErrCodeUnavailable, "Product details are unavailable offline")
)

// NetworkError reports a failed call to the remote catalogue. It is
// transient and recoverable from the local cache.
type NetworkError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("network error during %s: status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// StoreError reports a failed read or write of the local catalogue cache.
// It is fatal for the operation that hit it.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error during %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsNetworkError reports whether err is or wraps a NetworkError.
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// IsStoreError reports whether err is or wraps a StoreError.
func IsStoreError(err error) bool {
	var storeErr *StoreError
	return errors.As(err, &storeErr)
}
