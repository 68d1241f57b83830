package models

import (
	"github.com/shopspring/decimal"
)

// Product represents a catalog item
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"imageUrl"`
	Category    string          `json:"category"`
	Stock       int             `json:"stock"`
	Rating      *float64        `json:"rating,omitempty"`  // 0-5
	Reviews     *int            `json:"reviews,omitempty"` // review count
}

// RatingOrZero returns the product rating, treating a missing rating as 0
func (p Product) RatingOrZero() float64 {
	if p.Rating == nil {
		return 0
	}
	return *p.Rating
}
