package payment

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
)

// StripeConfig configures the hosted Stripe Checkout gateway
type StripeConfig struct {
	SecretKey string
	Currency  string
	// SuccessURL should carry {CHECKOUT_SESSION_ID} so the landing page learns the session id
	SuccessURL string
	CancelURL  string
	// Backend overrides the Stripe API backend; nil uses the default
	Backend stripe.Backend
}

// StripeGateway creates Stripe Checkout sessions
type StripeGateway struct {
	client session.Client
	cfg    StripeConfig
}

// NewStripeGateway returns a gateway using the Stripe API backend
func NewStripeGateway(cfg StripeConfig) *StripeGateway {
	backend := cfg.Backend
	if backend == nil {
		backend = stripe.GetBackend(stripe.APIBackend)
	}
	return &StripeGateway{
		client: session.Client{B: backend, Key: cfg.SecretKey},
		cfg:    cfg,
	}
}

type orderItem struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

func (g *StripeGateway) CreateSession(ctx context.Context, req SessionRequest) (Session, error) {
	if err := req.Validate(); err != nil {
		return Session{}, wrapInvalid(err)
	}

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:         stripe.String(g.cfg.SuccessURL),
		CancelURL:          stripe.String(g.cfg.CancelURL),
		CustomerEmail:      stripe.String(req.Email),
	}
	params.Context = ctx

	order := make([]orderItem, 0, len(req.Items))
	for _, item := range req.Items {
		productData := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(item.Name),
		}
		if item.ImageURL != "" {
			productData.Images = stripe.StringSlice([]string{item.ImageURL})
		}
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(g.cfg.Currency),
				ProductData: productData,
				UnitAmount:  stripe.Int64(MinorUnits(item.Price)),
			},
			Quantity: stripe.Int64(int64(item.Quantity)),
		})
		order = append(order, orderItem{ID: item.ID, Quantity: item.Quantity})
	}

	metadata, err := json.Marshal(order)
	if err != nil {
		return Session{}, errors.Wrap(err, "encode order metadata")
	}
	params.AddMetadata("orderItems", string(metadata))
	if req.AttemptID != "" {
		params.SetIdempotencyKey(req.AttemptID)
	}

	s, err := g.client.New(params)
	if err != nil {
		return Session{}, errors.Wrap(ErrSessionCreation, err.Error())
	}
	return Session{ID: s.ID, URL: s.URL}, nil
}

func (g *StripeGateway) LookupSession(ctx context.Context, id string) (SessionDetails, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	s, err := g.client.Get(id, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode == 404 {
			return SessionDetails{}, ErrSessionNotFound
		}
		return SessionDetails{}, errors.Wrapf(err, "retrieve session %s", id)
	}

	email := s.CustomerEmail
	if email == "" && s.CustomerDetails != nil {
		email = s.CustomerDetails.Email
	}
	return SessionDetails{
		ID:            s.ID,
		CustomerEmail: email,
		AmountTotal:   FromMinorUnits(s.AmountTotal),
		Currency:      string(s.Currency),
		Paid:          s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
	}, nil
}
