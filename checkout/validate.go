package checkout

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"go-storefront/models"
)

var (
	cardNumberPattern = regexp.MustCompile(`^\d{16}$`)
	expiryPattern     = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)
	cvvPattern        = regexp.MustCompile(`^\d{3,4}$`)
)

// Field messages keyed by the form's JSON field names
var fieldMessages = map[string]string{
	"fullName":   "Full name must be at least 2 characters.",
	"email":      "Invalid email address.",
	"address":    "Address must be at least 5 characters.",
	"city":       "City must be at least 2 characters.",
	"postalCode": "Postal code is required.",
	"country":    "Country is required.",
	"cardNumber": "Invalid card number (must be 16 digits).",
	"expiryDate": "Invalid expiry date (MM/YY).",
	"cvv":        "Invalid CVV (3 or 4 digits).",
}

// FieldErrors maps form field names to a message for the user
type FieldErrors map[string]string

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	mustRegister(v, "cardnumber", cardNumberPattern)
	mustRegister(v, "expiry", expiryPattern)
	mustRegister(v, "cvv", cvvPattern)
	return v
}

func mustRegister(v *validator.Validate, tag string, pattern *regexp.Regexp) {
	err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return pattern.MatchString(fl.Field().String())
	})
	if err != nil {
		panic(err)
	}
}

// Validate checks the checkout form and returns one message per invalid
// field, or nil when the form is valid.
func Validate(form models.CheckoutForm) FieldErrors {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return FieldErrors{"form": "Invalid checkout form."}
	}
	fields := FieldErrors{}
	for _, fe := range errs {
		msg, known := fieldMessages[fe.Field()]
		if !known {
			msg = "Invalid value."
		}
		fields[fe.Field()] = msg
	}
	return fields
}
