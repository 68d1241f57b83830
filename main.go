// main.go
package main

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"go-storefront/catalog"
	"go-storefront/payment"
	"go-storefront/utils"
)

func main() {
	log := utils.NewLogger(os.Stderr, os.Getenv("LOG_LEVEL"))
	if err := newApp(log).Run(os.Args); err != nil {
		log.WithError(err).Fatal("storefront exited")
	}
}

func newApp(log *logrus.Logger) *cli.App {
	return &cli.App{
		Name:  "storefront",
		Usage: "browse products, keep a cart and check out",
		Commands: []*cli.Command{
			serveCommand(log),
			productsCommand(log),
			cartCommand(log),
		},
	}
}

// loadCatalog reads the catalog from MongoDB, a JSON file or the built-in seed,
// in that order of preference
func loadCatalog(ctx context.Context, cfg utils.Config, log logrus.FieldLogger) (*catalog.Catalog, error) {
	switch {
	case cfg.MongoURI != "":
		client, err := utils.ConnectDB(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := client.Disconnect(context.Background()); err != nil {
				log.WithError(err).Warn("disconnect from mongodb")
			}
		}()
		collection := client.Database(cfg.MongoDatabase).Collection(cfg.MongoCollection)
		c, err := catalog.LoadMongo(ctx, collection)
		if err != nil {
			return nil, err
		}
		log.WithFields(logrus.Fields{"source": "mongodb", "products": c.Len()}).Info("catalog loaded")
		return c, nil
	case cfg.CatalogFile != "":
		c, err := catalog.LoadFile(cfg.CatalogFile)
		if err != nil {
			return nil, err
		}
		log.WithFields(logrus.Fields{"source": cfg.CatalogFile, "products": c.Len()}).Info("catalog loaded")
		return c, nil
	}
	c, err := catalog.Default()
	if err != nil {
		return nil, errors.Wrap(err, "load built-in catalog")
	}
	log.WithFields(logrus.Fields{"source": "built-in", "products": c.Len()}).Debug("catalog loaded")
	return c, nil
}

// processor is the gateway that actually talks to the payment processor
type processor interface {
	payment.Gateway
	payment.SessionLookup
}

// newProcessor returns Stripe when a secret key is configured and the
// sandbox otherwise
func newProcessor(cfg utils.Config, log logrus.FieldLogger) processor {
	if cfg.StripeSecretKey != "" {
		return payment.NewStripeGateway(payment.StripeConfig{
			SecretKey:  cfg.StripeSecretKey,
			Currency:   cfg.Currency,
			SuccessURL: cfg.SuccessURL(),
			CancelURL:  cfg.CancelURL(),
		})
	}
	log.Warn("STRIPE_SECRET_KEY is not set, using the sandbox payment gateway")
	return payment.NewSandbox(cfg.SuccessURL(), cfg.Currency)
}

// checkoutGateway is what checkout submissions use: a remote session
// endpoint when configured, the processor otherwise
func checkoutGateway(cfg utils.Config, proc processor) payment.Gateway {
	if cfg.PaymentEndpoint != "" {
		return payment.NewEndpointClient(cfg.PaymentEndpoint, nil)
	}
	return proc
}
