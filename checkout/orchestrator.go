// Package checkout validates the checkout form and hands the cart to the payment processor.
package checkout

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"go-storefront/models"
	"go-storefront/payment"
)

// State is a step of the checkout flow
type State int

const (
	Idle State = iota
	Validating
	Submitting
	Redirected
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Validating:
		return "validating"
	case Submitting:
		return "submitting"
	case Redirected:
		return "redirected"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

var (
	ErrEmptyCart            = errors.New("cart is empty")
	ErrSubmissionInProgress = errors.New("checkout submission already in progress")
	ErrAlreadyRedirected    = errors.New("checkout already handed off to the payment page")
	ErrCheckoutFailed       = errors.New("checkout failed")
)

// failedError reports a failed submission as ErrCheckoutFailed while keeping
// the gateway error in the chain.
type failedError struct {
	err error
}

func (e *failedError) Error() string { return ErrCheckoutFailed.Error() + ": " + e.err.Error() }

func (e *failedError) Unwrap() error { return e.err }

func (e *failedError) Is(target error) bool { return target == ErrCheckoutFailed }

// User-facing notices for failed submissions
const (
	NoticePaymentUnavailable = "We couldn't start the payment. Please try again."
	NoticeUnexpected         = "Something went wrong during checkout. Please try again."
)

// ValidationError carries field-level messages for an invalid form
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("checkout form has %d invalid field(s)", len(e.Fields))
}

// Cart is the part of the cart the orchestrator reads
type Cart interface {
	Lines() []models.CartLine
	IsEmpty() bool
}

// Outcome reports how a submission ended
type Outcome struct {
	State   State           `json:"state"`
	Session payment.Session `json:"session"`
	Notice  string          `json:"notice,omitempty"`
}

// Orchestrator runs one checkout flow: Idle -> Validating -> Submitting ->
// Redirected or Failed. A failed submission returns the flow to Idle so it can
// be retried. An Orchestrator is not safe for concurrent use.
type Orchestrator struct {
	cart       Cart
	gateway    payment.Gateway
	log        logrus.FieldLogger
	newID      func() string
	state      State
	processing bool
}

// NewOrchestrator starts a flow in Idle
func NewOrchestrator(cart Cart, gateway payment.Gateway, logger logrus.FieldLogger) *Orchestrator {
	return &Orchestrator{
		cart:    cart,
		gateway: gateway,
		log:     logger,
		newID:   uuid.NewString,
		state:   Idle,
	}
}

// State returns the current step
func (o *Orchestrator) State() State {
	return o.state
}

// Processing reports whether a submission is in flight
func (o *Orchestrator) Processing() bool {
	return o.processing
}

// Begin checks that checkout can be shown. It returns ErrEmptyCart when there
// is nothing to pay for.
func (o *Orchestrator) Begin() error {
	if o.cart.IsEmpty() {
		return ErrEmptyCart
	}
	return nil
}

// Submit validates form and, when valid, asks the gateway for a hosted
// payment session. A single attempt is made.
func (o *Orchestrator) Submit(ctx context.Context, form models.CheckoutForm) (Outcome, error) {
	switch {
	case o.processing:
		return Outcome{State: o.state}, ErrSubmissionInProgress
	case o.state == Redirected:
		return Outcome{State: Redirected}, ErrAlreadyRedirected
	}
	if err := o.Begin(); err != nil {
		return Outcome{State: Idle}, err
	}

	o.state = Validating
	if fields := Validate(form); fields != nil {
		o.state = Idle
		return Outcome{State: Idle}, &ValidationError{Fields: fields}
	}

	o.state = Submitting
	o.processing = true
	defer func() { o.processing = false }()

	attemptID := o.newID()
	logger := o.log.WithField("attempt", attemptID)
	session, err := o.createSession(ctx, payment.SessionRequest{
		Items:     payment.ItemsFromCart(o.cart.Lines()),
		Email:     form.Email,
		AttemptID: attemptID,
	})
	if err == nil && session.URL == "" {
		err = errors.Errorf("session %s has no redirect url", session.ID)
	}
	if err != nil {
		notice := NoticeUnexpected
		if errors.Is(err, payment.ErrSessionCreation) {
			notice = NoticePaymentUnavailable
		}
		logger.WithError(err).Error("checkout submission failed")
		o.state = Idle
		return Outcome{State: Failed, Notice: notice}, &failedError{err: err}
	}

	o.state = Redirected
	logger.WithField("session", session.ID).Info("checkout handed off to payment page")
	return Outcome{State: Redirected, Session: session}, nil
}

// createSession turns a panic in the gateway into an error
func (o *Orchestrator) createSession(ctx context.Context, req payment.SessionRequest) (session payment.Session, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("panic creating checkout session: %v", r)
		}
	}()
	return o.gateway.CreateSession(ctx, req)
}
