package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"go-storefront/payment"
)

// PaymentController exposes payment session creation to clients
type PaymentController struct {
	Gateway payment.Gateway
	Log     logrus.FieldLogger
}

// NewPaymentController creates a new PaymentController
func NewPaymentController(gateway payment.Gateway, logger logrus.FieldLogger) *PaymentController {
	return &PaymentController{Gateway: gateway, Log: logger}
}

// CreateCheckoutSession creates a hosted checkout session for the posted line items
func (pc *PaymentController) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	var req payment.SessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.AttemptID = r.Header.Get("Idempotency-Key")
	if req.AttemptID == "" {
		req.AttemptID = uuid.NewString()
	}

	session, err := pc.Gateway.CreateSession(r.Context(), req)
	if err != nil {
		pc.Log.WithError(err).Error("create checkout session")
		writeError(w, http.StatusInternalServerError, "Failed to create checkout session")
		return
	}
	writeJSON(w, http.StatusOK, session)
}
