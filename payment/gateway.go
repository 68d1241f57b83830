// Package payment creates hosted checkout sessions with an external payment processor.
package payment

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"go-storefront/models"
)

// ErrSessionCreation wraps every failure to obtain a checkout session
var ErrSessionCreation = errors.New("failed to create checkout session")

// ErrSessionNotFound is returned by lookups for unknown session ids
var ErrSessionNotFound = errors.New("checkout session not found")

// LineItem is one purchasable line sent to the processor
type LineItem struct {
	ID       string          `json:"id,omitempty"`
	Name     string          `json:"name"`
	ImageURL string          `json:"imageUrl"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// SessionRequest asks the processor for a hosted checkout page
type SessionRequest struct {
	Items []LineItem `json:"items"`
	Email string     `json:"email"`
	// AttemptID deduplicates retries of the same submission at the processor
	AttemptID string `json:"-"`
}

// Session is the processor's answer: an opaque id and the page to redirect to
type Session struct {
	ID  string `json:"sessionId"`
	URL string `json:"url"`
}

// SessionDetails describes a session after the customer came back
type SessionDetails struct {
	ID            string
	CustomerEmail string
	AmountTotal   decimal.Decimal
	Currency      string
	Paid          bool
}

// Gateway creates checkout sessions
type Gateway interface {
	CreateSession(ctx context.Context, req SessionRequest) (Session, error)
}

// SessionLookup is implemented by gateways that can report on past sessions
type SessionLookup interface {
	LookupSession(ctx context.Context, id string) (SessionDetails, error)
}

// ItemsFromCart converts cart lines into session line items
func ItemsFromCart(lines []models.CartLine) []LineItem {
	items := make([]LineItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, LineItem{
			ID:       line.ID,
			Name:     line.Name,
			ImageURL: line.ImageURL,
			Price:    line.Price,
			Quantity: line.Quantity,
		})
	}
	return items
}

// Validate checks a request before it is sent anywhere
func (r SessionRequest) Validate() error {
	if len(r.Items) == 0 {
		return errors.New("no line items")
	}
	if r.Email == "" {
		return errors.New("missing customer email")
	}
	for _, item := range r.Items {
		if item.Name == "" {
			return errors.New("line item without name")
		}
		if item.Quantity < 1 {
			return errors.Errorf("%s: quantity must be at least 1", item.Name)
		}
		if item.Price.IsNegative() {
			return errors.Errorf("%s: negative price", item.Name)
		}
	}
	return nil
}

func wrapInvalid(err error) error {
	return errors.Wrap(ErrSessionCreation, err.Error())
}

// MinorUnits converts an amount to the smallest currency unit, rounding half up
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

// FromMinorUnits is the inverse of MinorUnits
func FromMinorUnits(units int64) decimal.Decimal {
	return decimal.New(units, -2)
}
