package models

// CheckoutForm holds the shipping and payment fields submitted at checkout
type CheckoutForm struct {
	FullName   string `json:"fullName" validate:"min=2"`
	Email      string `json:"email" validate:"email"`
	Address    string `json:"address" validate:"min=5"`
	City       string `json:"city" validate:"min=2"`
	PostalCode string `json:"postalCode" validate:"min=3"`
	Country    string `json:"country" validate:"min=2"`
	CardNumber string `json:"cardNumber" validate:"cardnumber"`
	ExpiryDate string `json:"expiryDate" validate:"expiry"`
	CVV        string `json:"cvv" validate:"cvv"`
}
