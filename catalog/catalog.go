// Package catalog holds the read-only product list and the listing view over it.
package catalog

import (
	"github.com/pkg/errors"

	"go-storefront/models"
)

// ErrProductNotFound is returned when no product has the requested id
var ErrProductNotFound = errors.New("product not found")

// Catalog is an immutable, ordered product list
type Catalog struct {
	products []models.Product
	byID     map[string]int
}

// New validates products and builds a Catalog preserving their order
func New(products []models.Product) (*Catalog, error) {
	c := &Catalog{
		products: make([]models.Product, 0, len(products)),
		byID:     make(map[string]int, len(products)),
	}
	for i, p := range products {
		if err := validate(p); err != nil {
			return nil, errors.Wrapf(err, "product %d", i)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, errors.Errorf("duplicate product id %q", p.ID)
		}
		c.byID[p.ID] = len(c.products)
		c.products = append(c.products, p)
	}
	return c, nil
}

func validate(p models.Product) error {
	switch {
	case p.ID == "":
		return errors.New("missing id")
	case p.Price.IsNegative():
		return errors.Errorf("%s: negative price", p.ID)
	case p.Stock < 0:
		return errors.Errorf("%s: negative stock", p.ID)
	case p.Rating != nil && (*p.Rating < 0 || *p.Rating > 5):
		return errors.Errorf("%s: rating outside 0-5", p.ID)
	case p.Reviews != nil && *p.Reviews < 0:
		return errors.Errorf("%s: negative review count", p.ID)
	}
	return nil
}

// All returns every product in catalog order
func (c *Catalog) All() []models.Product {
	return append([]models.Product{}, c.products...)
}

// Len is the number of products
func (c *Catalog) Len() int {
	return len(c.products)
}

// Get looks up a product by id
func (c *Catalog) Get(id string) (models.Product, error) {
	i, ok := c.byID[id]
	if !ok {
		return models.Product{}, ErrProductNotFound
	}
	return c.products[i], nil
}

// Categories lists distinct categories in order of first appearance
func (c *Catalog) Categories() []string {
	seen := make(map[string]struct{})
	categories := []string{}
	for _, p := range c.products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		categories = append(categories, p.Category)
	}
	return categories
}

// Featured returns the first n products
func (c *Catalog) Featured(n int) []models.Product {
	n = max(0, min(n, len(c.products)))
	return append([]models.Product{}, c.products[:n]...)
}

// Related returns up to n other products in the same category as p
func (c *Catalog) Related(p models.Product, n int) []models.Product {
	related := []models.Product{}
	for _, other := range c.products {
		if len(related) >= n {
			break
		}
		if other.Category == p.Category && other.ID != p.ID {
			related = append(related, other)
		}
	}
	return related
}
