package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"

	"go-storefront/models"
)

//go:embed products.json
var seedProducts []byte

// Default returns the catalog built from the bundled product list
func Default() (*Catalog, error) {
	return LoadJSON(bytes.NewReader(seedProducts))
}

// LoadJSON reads a JSON array of products
func LoadJSON(r io.Reader) (*Catalog, error) {
	var products []models.Product
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&products); err != nil {
		return nil, errors.Wrap(err, "decode products")
	}
	return New(products)
}

// LoadFile reads a JSON product list from path
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open catalog file")
	}
	defer f.Close()
	c, err := LoadJSON(f)
	return c, errors.Wrapf(err, "load %s", path)
}
