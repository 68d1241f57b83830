package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"go-storefront/catalog"
	"go-storefront/controllers"
	"go-storefront/middleware"
	"go-storefront/routes"
	"go-storefront/utils"
)

const (
	sessionMaxAge   = 30 * 24 * time.Hour
	shutdownTimeout = 10 * time.Second
)

func serveCommand(log *logrus.Logger) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the storefront HTTP server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "port", Usage: "listen port, overrides PORT"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := utils.LoadConfig(log)
			if err != nil {
				return err
			}
			if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
				log.SetLevel(lvl)
			}
			if port := c.String("port"); port != "" {
				cfg.Port = port
			}
			if cfg.SessionSecret == "" {
				return errors.New("SESSION_SECRET is not set")
			}

			products, err := loadCatalog(c.Context, cfg, log)
			if err != nil {
				return err
			}
			mailer, err := utils.NewMailer(cfg, log)
			if err != nil {
				return err
			}

			router, checkout := newRouter(cfg, products, mailer, log)
			srv := &http.Server{
				Addr:              ":" + cfg.Port,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}
			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()
			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				log.WithField("port", cfg.Port).Info("server is running")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					return errors.Wrap(err, "listen")
				}
				return nil
			})
			g.Go(func() error {
				<-ctx.Done()
				log.Info("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				err := srv.Shutdown(shutdownCtx)
				checkout.Wait()
				return errors.Wrap(err, "shutdown")
			})
			return g.Wait()
		},
	}
}

// newRouter wires the controllers for cfg
func newRouter(cfg utils.Config, products *catalog.Catalog, mailer utils.Mailer, log logrus.FieldLogger) (*mux.Router, *controllers.CheckoutController) {
	proc := newProcessor(cfg, log)
	signer := utils.NewSigner([]byte(cfg.SessionSecret), sessionMaxAge)
	session := middleware.NewSession(signer, sessionMaxAge, log)

	checkout := controllers.NewCheckoutController(checkoutGateway(cfg, proc), proc, mailer, log)
	router := mux.NewRouter()
	router.Use(middleware.Recover(log), middleware.RequestLogger(log))
	routes.RegisterRoutes(router, session, routes.Controllers{
		Product:  controllers.NewProductController(products, log),
		Cart:     controllers.NewCartController(products, log),
		Checkout: checkout,
		Payment:  controllers.NewPaymentController(proc, log),
		Device:   controllers.NewDeviceController(log),
	})
	return router, checkout
}
