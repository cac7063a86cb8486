package model

import "github.com/shopspring/decimal"

// Product represents a catalogue item as served by the remote catalogue API.
type Product struct {
	ID                 int             `json:"id" db:"id"`
	Title              string          `json:"title" db:"title"`
	Description        string          `json:"description" db:"description"`
	Price              decimal.Decimal `json:"price" db:"price"`
	DiscountPercentage float64         `json:"discountPercentage" db:"discount_percentage"`
	Rating             float64         `json:"rating" db:"rating"`
	Stock              int             `json:"stock" db:"stock"`
	Brand              string          `json:"brand" db:"brand"`
	Category           string          `json:"category" db:"category"`
	Thumbnail          string          `json:"thumbnail" db:"thumbnail"`
	Images             []string        `json:"images" db:"images"`
}

// CatalogPage is one page of the remote catalogue.
type CatalogPage struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
	Skip     int       `json:"skip"`
	Limit    int       `json:"limit"`
}
