package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"go-storefront/cart"
	"go-storefront/catalog"
	"go-storefront/checkout"
	"go-storefront/models"
	"go-storefront/storage"
	"go-storefront/utils"
)

func productsCommand(log *logrus.Logger) *cli.Command {
	return &cli.Command{
		Name:  "products",
		Usage: "list products",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "search", Aliases: []string{"s"}, Usage: "match name, description or category"},
			&cli.StringSliceFlag{Name: "category", Aliases: []string{"c"}, Usage: "keep only these categories"},
			&cli.StringFlag{Name: "sort", Value: string(catalog.DefaultSort), Usage: "name-asc, name-desc, price-asc, price-desc or rating-desc"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := utils.LoadConfig(log)
			if err != nil {
				return err
			}
			products, err := loadCatalog(c.Context, cfg, log)
			if err != nil {
				return err
			}
			key, err := catalog.ParseSortKey(c.String("sort"))
			if err != nil {
				return errors.Wrapf(err, "--sort %q", c.String("sort"))
			}
			list := catalog.View(products.All(), catalog.FilterState{
				SearchTerm: c.String("search"),
				Categories: c.StringSlice("category"),
				Sort:       key,
			})
			if len(list) == 0 {
				fmt.Fprintln(c.App.Writer, "No products found.")
				return nil
			}
			return printProducts(c.App.Writer, list)
		},
	}
}

func printProducts(out io.Writer, products []models.Product) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tSTOCK\tRATING")
	for _, p := range products {
		rating := "-"
		if p.Rating != nil {
			rating = strconv.FormatFloat(*p.Rating, 'f', 1, 64)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n", p.ID, p.Name, p.Category, p.Price.StringFixed(2), p.Stock, rating)
	}
	return tw.Flush()
}

// cartEnv is what every cart subcommand works on
type cartEnv struct {
	cfg      utils.Config
	products *catalog.Catalog
	cart     *cart.Manager
}

func withCart(log *logrus.Logger, fn func(c *cli.Context, env cartEnv) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, err := utils.LoadConfig(log)
		if err != nil {
			return err
		}
		products, err := loadCatalog(c.Context, cfg, log)
		if err != nil {
			return err
		}
		store, err := storage.NewFileStore(c.String("state-dir"))
		if err != nil {
			return err
		}
		return fn(c, cartEnv{cfg: cfg, products: products, cart: cart.NewManager(store, log)})
	}
}

func argProduct(c *cli.Context, products *catalog.Catalog) (models.Product, error) {
	id := c.Args().First()
	if id == "" {
		return models.Product{}, errors.New("missing product id")
	}
	return products.Get(id)
}

func cartCommand(log *logrus.Logger) *cli.Command {
	return &cli.Command{
		Name:  "cart",
		Usage: "manage the local cart",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "state-dir", Value: ".storefront", EnvVars: []string{"STOREFRONT_STATE_DIR"}, Usage: "directory holding the cart state"},
		},
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "show the cart",
				Action: withCart(log, func(c *cli.Context, env cartEnv) error {
					return printCart(c.App.Writer, env.cart)
				}),
			},
			{
				Name:      "add",
				Usage:     "add a product",
				ArgsUsage: "<product-id>",
				Flags:     []cli.Flag{&cli.IntFlag{Name: "qty", Aliases: []string{"q"}, Value: 1}},
				Action: withCart(log, func(c *cli.Context, env cartEnv) error {
					product, err := argProduct(c, env.products)
					if err != nil {
						return err
					}
					line, err := env.cart.AddToCart(product, c.Int("qty"))
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "%s: %d in cart\n", line.Name, line.Quantity)
					return nil
				}),
			},
			{
				Name:      "update",
				Usage:     "set the quantity of a line, 0 removes it",
				ArgsUsage: "<product-id> <quantity>",
				Action: withCart(log, func(c *cli.Context, env cartEnv) error {
					id := c.Args().Get(0)
					qty, err := strconv.Atoi(c.Args().Get(1))
					if err != nil {
						return errors.Wrap(err, "quantity")
					}
					if !env.cart.UpdateQuantity(id, qty) {
						return errors.Errorf("product %s is not in the cart", id)
					}
					return printCart(c.App.Writer, env.cart)
				}),
			},
			{
				Name:      "remove",
				Usage:     "remove a line",
				ArgsUsage: "<product-id>",
				Action: withCart(log, func(c *cli.Context, env cartEnv) error {
					env.cart.RemoveFromCart(c.Args().First())
					return printCart(c.App.Writer, env.cart)
				}),
			},
			{
				Name:  "clear",
				Usage: "empty the cart",
				Action: withCart(log, func(c *cli.Context, env cartEnv) error {
					env.cart.ClearCart()
					fmt.Fprintln(c.App.Writer, "Cart cleared.")
					return nil
				}),
			},
			{
				Name:      "view",
				Usage:     "show a product and remember it in the browsing history",
				ArgsUsage: "<product-id>",
				Action: withCart(log, func(c *cli.Context, env cartEnv) error {
					product, err := argProduct(c, env.products)
					if err != nil {
						return err
					}
					env.cart.AddToBrowsingHistory(product.ID)
					fmt.Fprintf(c.App.Writer, "%s (%s)\n%s\nPrice: %s  Stock: %d\n\n", product.Name, product.Category, product.Description, product.Price.StringFixed(2), product.Stock)
					if related := env.products.Related(product, 4); len(related) > 0 {
						fmt.Fprintln(c.App.Writer, "Related products:")
						return printProducts(c.App.Writer, related)
					}
					return nil
				}),
			},
			{
				Name:  "history",
				Usage: "list recently viewed products",
				Action: withCart(log, func(c *cli.Context, env cartEnv) error {
					var viewed []models.Product
					for _, id := range env.cart.BrowsingHistory() {
						if p, err := env.products.Get(id); err == nil {
							viewed = append(viewed, p)
						}
					}
					if len(viewed) == 0 {
						fmt.Fprintln(c.App.Writer, "No recently viewed products.")
						return nil
					}
					return printProducts(c.App.Writer, viewed)
				}),
			},
			checkoutCommand(log),
			{
				Name:      "complete",
				Usage:     "finish a checkout after paying",
				ArgsUsage: "<session-id>",
				Action: withCart(log, func(c *cli.Context, env cartEnv) error {
					landing := checkout.HandleSuccess(env.cart, c.Args().First())
					fmt.Fprintln(c.App.Writer, landing.Message)
					if landing.CartCleared {
						fmt.Fprintf(c.App.Writer, "Order reference: %s\n", landing.OrderRef)
					}
					return nil
				}),
			},
		},
	}
}

func checkoutCommand(log *logrus.Logger) *cli.Command {
	flag := func(name, usage string) cli.Flag {
		return &cli.StringFlag{Name: name, Usage: usage, Required: true}
	}
	return &cli.Command{
		Name:  "checkout",
		Usage: "start a hosted payment for the cart",
		Flags: []cli.Flag{
			flag("name", "full name"),
			flag("email", "email address"),
			flag("address", "street address"),
			flag("city", "city"),
			flag("postal-code", "postal code"),
			flag("country", "country"),
			flag("card", "16 digit card number"),
			flag("expiry", "card expiry, MM/YY"),
			flag("cvv", "card security code"),
		},
		Action: withCart(log, func(c *cli.Context, env cartEnv) error {
			proc := newProcessor(env.cfg, log)
			o := checkout.NewOrchestrator(env.cart, checkoutGateway(env.cfg, proc), log)
			outcome, err := o.Submit(c.Context, models.CheckoutForm{
				FullName:   c.String("name"),
				Email:      c.String("email"),
				Address:    c.String("address"),
				City:       c.String("city"),
				PostalCode: c.String("postal-code"),
				Country:    c.String("country"),
				CardNumber: c.String("card"),
				ExpiryDate: c.String("expiry"),
				CVV:        c.String("cvv"),
			})
			var invalid *checkout.ValidationError
			switch {
			case errors.As(err, &invalid):
				for field, msg := range invalid.Fields {
					fmt.Fprintf(c.App.ErrWriter, "%s: %s\n", field, msg)
				}
				return errors.New("checkout form is invalid")
			case errors.Is(err, checkout.ErrCheckoutFailed):
				return errors.New(outcome.Notice)
			case err != nil:
				return err
			}
			fmt.Fprintf(c.App.Writer, "Continue to payment: %s\nThen run: cart complete %s\n", outcome.Session.URL, outcome.Session.ID)
			return nil
		}),
	}
}

func printCart(out io.Writer, m *cart.Manager) error {
	if m.IsEmpty() {
		fmt.Fprintln(out, "Your cart is empty.")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tQTY\tSUBTOTAL")
	for _, line := range m.Lines() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", line.ID, line.Name, line.Price.StringFixed(2), line.Quantity, line.Subtotal().StringFixed(2))
	}
	fmt.Fprintf(tw, "\t\t\t%d\t%s\n", m.ItemCount(), m.CartTotal().StringFixed(2))
	return tw.Flush()
}
