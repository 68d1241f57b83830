// routes/routes.go
package routes

import (
	"github.com/gorilla/mux"

	"go-storefront/controllers"
	"go-storefront/middleware"
)

// Controllers groups the handlers served by the router
type Controllers struct {
	Product  *controllers.ProductController
	Cart     *controllers.CartController
	Checkout *controllers.CheckoutController
	Payment  *controllers.PaymentController
	Device   *controllers.DeviceController
}

// RegisterRoutes sets up all the routes for the application
func RegisterRoutes(router *mux.Router, session *middleware.Session, c Controllers) {
	// API routes, no browser session needed
	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/create-checkout-session", c.Payment.CreateCheckoutSession).Methods("POST")
	api.HandleFunc("/device", c.Device.ReceiveDeviceInfo).Methods("POST")

	// Storefront routes carry the browser's cart. The group has no path
	// matcher so a method mismatch under /api still answers 405.
	shop := router.NewRoute().Subrouter()
	shop.Use(session.Middleware)

	// Product routes
	shop.HandleFunc("/products", c.Product.GetProducts).Methods("GET")
	shop.HandleFunc("/products/categories", c.Product.GetCategories).Methods("GET")
	shop.HandleFunc("/products/featured", c.Product.GetFeatured).Methods("GET")
	shop.HandleFunc("/products/{id}", c.Product.GetProductByID).Methods("GET")

	// Cart routes
	shop.HandleFunc("/cart", c.Cart.GetCart).Methods("GET")
	shop.HandleFunc("/cart", c.Cart.AddToCart).Methods("POST")
	shop.HandleFunc("/cart", c.Cart.ClearCart).Methods("DELETE")
	shop.HandleFunc("/cart/{product_id}", c.Cart.UpdateQuantity).Methods("PUT")
	shop.HandleFunc("/cart/{product_id}", c.Cart.RemoveFromCart).Methods("DELETE")

	// Checkout routes
	shop.HandleFunc("/checkout", c.Checkout.GetCheckout).Methods("GET")
	shop.HandleFunc("/checkout", c.Checkout.SubmitCheckout).Methods("POST")
	shop.HandleFunc("/order-success", c.Checkout.OrderSuccess).Methods("GET")
	shop.HandleFunc("/order-failed", c.Checkout.OrderFailed).Methods("GET")
}
