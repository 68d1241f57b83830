package checkout

// Clearer empties a cart
type Clearer interface {
	ClearCart()
}

// SuccessLanding is what the success route reports back
type SuccessLanding struct {
	SessionID   string `json:"sessionId,omitempty"`
	OrderRef    string `json:"orderRef,omitempty"`
	CartCleared bool   `json:"cartCleared"`
	Message     string `json:"message"`
}

// FailureLanding is what the failure route reports back
type FailureLanding struct {
	Error    string `json:"error,omitempty"`
	Message  string `json:"message"`
	RetryURL string `json:"retryUrl"`
	ShopURL  string `json:"shopUrl"`
}

// HandleSuccess completes a landing on the success route. The cart is cleared
// once when a session id is present; without one nothing changes.
func HandleSuccess(cart Clearer, sessionID string) SuccessLanding {
	if sessionID == "" {
		return SuccessLanding{Message: "No checkout session found."}
	}
	cart.ClearCart()
	return SuccessLanding{
		SessionID:   sessionID,
		OrderRef:    orderRef(sessionID),
		CartCleared: true,
		Message:     "Thank you for your purchase. Your order has been processed successfully.",
	}
}

// HandleFailure describes a landing on the failure route
func HandleFailure(errorCode string) FailureLanding {
	return FailureLanding{
		Error:    errorCode,
		Message:  "We're sorry, but your payment could not be processed.",
		RetryURL: "/checkout",
		ShopURL:  "/products",
	}
}

// orderRef shortens a session id for display
func orderRef(sessionID string) string {
	const n = 8
	r := []rune(sessionID)
	if len(r) <= n {
		return sessionID
	}
	return string(r[:n])
}
