package controllers

import (
	"encoding/json"
	"net/http"

	"go-storefront/cart"
	"go-storefront/middleware"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// cartFor returns the request's cart or answers 500 when the session
// middleware did not run
func cartFor(w http.ResponseWriter, r *http.Request) (*cart.Manager, bool) {
	m, ok := middleware.CartFromContext(r.Context())
	if !ok {
		http.Error(w, "Session unavailable", http.StatusInternalServerError)
		return nil, false
	}
	return m, true
}

// CartSavedHeader is "false" on responses whose cart change could not be
// written to the client's storage
const CartSavedHeader = "X-Cart-Saved"

func flagUnsaved(w http.ResponseWriter, m *cart.Manager) {
	if m.PersistError() != nil {
		w.Header().Set(CartSavedHeader, "false")
	}
}

// writeCart answers with v and flags a cart that failed to persist
func writeCart(w http.ResponseWriter, m *cart.Manager, v interface{}) {
	flagUnsaved(w, m)
	writeJSON(w, http.StatusOK, v)
}
