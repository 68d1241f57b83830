package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"go-storefront/cart"
	"go-storefront/catalog"
	"go-storefront/models"
)

// CartController handles cart-related requests
type CartController struct {
	Catalog *catalog.Catalog
	Log     logrus.FieldLogger
}

// NewCartController creates a new CartController
func NewCartController(c *catalog.Catalog, logger logrus.FieldLogger) *CartController {
	return &CartController{Catalog: c, Log: logger}
}

// AddItemRequest is the body of AddToCart. Quantity defaults to 1.
type AddItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  *int   `json:"quantity"`
}

// UpdateItemRequest is the body of UpdateQuantity
type UpdateItemRequest struct {
	Quantity *int `json:"quantity"`
}

// AddItemResponse reports the resulting line and the whole cart
type AddItemResponse struct {
	Item models.CartLine    `json:"item"`
	Cart models.CartSummary `json:"cart"`
}

// GetCart returns the cart with its totals
func (cc *CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	m, ok := cartFor(w, r)
	if !ok {
		return
	}
	writeCart(w, m, m.Summary())
}

// AddToCart adds a catalog product to the cart
func (cc *CartController) AddToCart(w http.ResponseWriter, r *http.Request) {
	m, ok := cartFor(w, r)
	if !ok {
		return
	}

	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	product, err := cc.Catalog.Get(req.ProductID)
	if err != nil {
		http.Error(w, "Product not found", http.StatusNotFound)
		return
	}

	line, err := m.AddToCart(product, quantity)
	switch {
	case errors.Is(err, cart.ErrInvalidQuantity):
		http.Error(w, "Quantity must be at least 1", http.StatusBadRequest)
		return
	case errors.Is(err, cart.ErrOutOfStock):
		http.Error(w, "Product is out of stock", http.StatusConflict)
		return
	case err != nil:
		cc.Log.WithError(err).Error("add to cart")
		http.Error(w, "Error updating cart", http.StatusInternalServerError)
		return
	}

	writeCart(w, m, AddItemResponse{Item: line, Cart: m.Summary()})
}

// UpdateQuantity sets the quantity of a line; 0 removes it
func (cc *CartController) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	m, ok := cartFor(w, r)
	if !ok {
		return
	}

	var req UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Quantity == nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}

	if !m.UpdateQuantity(mux.Vars(r)["product_id"], *req.Quantity) {
		http.Error(w, "Item not in cart", http.StatusNotFound)
		return
	}
	writeCart(w, m, m.Summary())
}

// RemoveFromCart removes a line. Removing a missing line is not an error.
func (cc *CartController) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	m, ok := cartFor(w, r)
	if !ok {
		return
	}
	m.RemoveFromCart(mux.Vars(r)["product_id"])
	writeCart(w, m, m.Summary())
}

// ClearCart empties the cart
func (cc *CartController) ClearCart(w http.ResponseWriter, r *http.Request) {
	m, ok := cartFor(w, r)
	if !ok {
		return
	}
	m.ClearCart()
	writeCart(w, m, m.Summary())
}
