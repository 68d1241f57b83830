package models

import (
	"github.com/shopspring/decimal"
)

// CartLine is a product snapshot plus the quantity held in the cart.
// Stock is the stock seen when the product was added and bounds Quantity.
type CartLine struct {
	Product
	Quantity int `json:"quantity"`
}

// Subtotal returns price * quantity for the line
func (l CartLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CartSummary is the cart as returned to clients
type CartSummary struct {
	Items           []CartLine      `json:"items"`
	Total           decimal.Decimal `json:"total"`
	ItemCount       int             `json:"itemCount"`
	BrowsingHistory []string        `json:"browsingHistory"`
	// false when the last change could not be written to client storage
	Saved bool `json:"saved"`
}
