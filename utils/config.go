package utils

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Config is read from the environment, after an optional .env file
type Config struct {
	Port          string `envconfig:"PORT" default:"8000"`
	AppURL        string `envconfig:"APP_URL" default:"http://localhost:8000"`
	SessionSecret string `envconfig:"SESSION_SECRET"`
	LogLevel      string `envconfig:"LOG_LEVEL" default:"info"`

	CatalogFile     string `envconfig:"CATALOG_FILE"`
	MongoURI        string `envconfig:"MONGODB_URI"`
	MongoDatabase   string `envconfig:"MONGODB_DATABASE" default:"ecommerce"`
	MongoCollection string `envconfig:"MONGODB_COLLECTION" default:"products"`

	StripeSecretKey string `envconfig:"STRIPE_SECRET_KEY"`
	Currency        string `envconfig:"CURRENCY" default:"inr"`
	PaymentEndpoint string `envconfig:"PAYMENT_ENDPOINT"`

	MailProvider     string `envconfig:"MAIL_PROVIDER"`
	PostmarkAPIToken string `envconfig:"POSTMARK_API_TOKEN"`
	SendgridAPIKey   string `envconfig:"SENDGRID_API_KEY"`
	EmailSender      string `envconfig:"EMAIL_SENDER" default:"orders@example.com"`
}

// LoadConfig loads .env when present and reads Config from the environment
func LoadConfig(logger logrus.FieldLogger) (Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file found, proceeding with environment variables")
	}
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, errors.Wrap(err, "read configuration")
	}
	cfg.AppURL = strings.TrimRight(cfg.AppURL, "/")
	return cfg, nil
}

// SuccessURL is where the payment page sends the customer after paying
func (c Config) SuccessURL() string {
	return c.AppURL + "/order-success?session_id={CHECKOUT_SESSION_ID}"
}

// CancelURL is where the payment page sends the customer on cancel
func (c Config) CancelURL() string {
	return c.AppURL + "/checkout"
}
