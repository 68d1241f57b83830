package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"go-storefront/checkout"
	"go-storefront/middleware"
	"go-storefront/models"
	"go-storefront/payment"
	"go-storefront/utils"
)

const receiptTimeout = 15 * time.Second

// CheckoutController drives the checkout flow and the payment landing routes
type CheckoutController struct {
	Gateway payment.Gateway
	Lookup  payment.SessionLookup
	Mailer  utils.Mailer
	Log     logrus.FieldLogger

	// browser sessions with a submission in flight
	inFlight sync.Map
	// checkout sessions whose receipt was sent or is being sent
	receipts sync.Map
	wg       sync.WaitGroup
}

// NewCheckoutController creates a new CheckoutController. Receipts are sent
// only when both lookup and mailer are non-nil.
func NewCheckoutController(gateway payment.Gateway, lookup payment.SessionLookup, mailer utils.Mailer, logger logrus.FieldLogger) *CheckoutController {
	return &CheckoutController{Gateway: gateway, Lookup: lookup, Mailer: mailer, Log: logger}
}

// CheckoutView is the response of GetCheckout
type CheckoutView struct {
	State     string            `json:"state"`
	Items     []models.CartLine `json:"items"`
	Total     decimal.Decimal   `json:"total"`
	ItemCount int               `json:"itemCount"`
}

// CheckoutResponse is the response of a successful submission
type CheckoutResponse struct {
	State       string `json:"state"`
	SessionID   string `json:"sessionId"`
	RedirectURL string `json:"redirectUrl"`
}

// GetCheckout shows the order summary, or sends an empty cart back to the products
func (cc *CheckoutController) GetCheckout(w http.ResponseWriter, r *http.Request) {
	m, ok := cartFor(w, r)
	if !ok {
		return
	}
	o := checkout.NewOrchestrator(m, cc.Gateway, cc.Log)
	if err := o.Begin(); err != nil {
		http.Redirect(w, r, "/products", http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, CheckoutView{
		State:     o.State().String(),
		Items:     m.Lines(),
		Total:     m.CartTotal(),
		ItemCount: m.ItemCount(),
	})
}

// SubmitCheckout validates the form and creates a hosted payment session
func (cc *CheckoutController) SubmitCheckout(w http.ResponseWriter, r *http.Request) {
	m, ok := cartFor(w, r)
	if !ok {
		return
	}

	var form models.CheckoutForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}

	sid := middleware.SessionIDFromContext(r.Context())
	if sid != "" {
		if _, busy := cc.inFlight.LoadOrStore(sid, struct{}{}); busy {
			writeError(w, http.StatusConflict, "Checkout is already being processed")
			return
		}
		defer cc.inFlight.Delete(sid)
	}

	o := checkout.NewOrchestrator(m, cc.Gateway, cc.Log.WithField("session", sid))
	outcome, err := o.Submit(r.Context(), form)

	var invalid *checkout.ValidationError
	switch {
	case errors.As(err, &invalid):
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"state":  outcome.State.String(),
			"errors": invalid.Fields,
		})
	case errors.Is(err, checkout.ErrEmptyCart):
		writeJSON(w, http.StatusConflict, map[string]string{
			"error":       "Your cart is empty",
			"redirectUrl": "/products",
		})
	case errors.Is(err, checkout.ErrSubmissionInProgress):
		writeError(w, http.StatusConflict, "Checkout is already being processed")
	case errors.Is(err, checkout.ErrCheckoutFailed):
		writeJSON(w, http.StatusBadGateway, map[string]string{
			"state": outcome.State.String(),
			"error": outcome.Notice,
		})
	case err != nil:
		cc.Log.WithError(err).Error("checkout submission")
		writeError(w, http.StatusInternalServerError, checkout.NoticeUnexpected)
	default:
		writeJSON(w, http.StatusOK, CheckoutResponse{
			State:       outcome.State.String(),
			SessionID:   outcome.Session.ID,
			RedirectURL: outcome.Session.URL,
		})
	}
}

// OrderSuccess is where the payment page returns after a successful payment.
// The cart is cleared and a receipt is sent once per checkout session.
func (cc *CheckoutController) OrderSuccess(w http.ResponseWriter, r *http.Request) {
	m, ok := cartFor(w, r)
	if !ok {
		return
	}
	sessionID := r.URL.Query().Get("session_id")
	landing := checkout.HandleSuccess(m, sessionID)
	if landing.CartCleared {
		cc.sendReceipt(sessionID)
	}
	writeCart(w, m, landing)
}

// OrderFailed is where the payment page returns after a failed payment
func (cc *CheckoutController) OrderFailed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, checkout.HandleFailure(r.URL.Query().Get("error")))
}

// Wait blocks until receipts being sent in the background are done
func (cc *CheckoutController) Wait() {
	cc.wg.Wait()
}

func (cc *CheckoutController) sendReceipt(sessionID string) {
	if cc.Lookup == nil || cc.Mailer == nil {
		return
	}
	if _, sent := cc.receipts.LoadOrStore(sessionID, struct{}{}); sent {
		return
	}

	cc.wg.Add(1)
	go func() {
		defer cc.wg.Done()
		logger := cc.Log.WithField("checkoutSession", sessionID)
		ctx, cancel := context.WithTimeout(context.Background(), receiptTimeout)
		defer cancel()

		details, err := cc.Lookup.LookupSession(ctx, sessionID)
		if err != nil {
			cc.receipts.Delete(sessionID)
			logger.WithError(err).Warn("look up checkout session for receipt")
			return
		}
		if !details.Paid {
			cc.receipts.Delete(sessionID)
			logger.Info("checkout session not paid, no receipt sent")
			return
		}
		if err := utils.SendOrderConfirmationEmail(cc.Mailer, details); err != nil {
			cc.receipts.Delete(sessionID)
			logger.WithError(err).Error("send order confirmation email")
			return
		}
		logger.Info("order confirmation email sent")
	}()
}
