package catalog

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"go-storefront/models"
)

// SortKey selects the ordering of a listing
type SortKey string

const (
	SortNameAsc    SortKey = "name-asc"
	SortNameDesc   SortKey = "name-desc"
	SortPriceAsc   SortKey = "price-asc"
	SortPriceDesc  SortKey = "price-desc"
	SortRatingDesc SortKey = "rating-desc"
)

// DefaultSort is used when no sort key is requested
const DefaultSort = SortNameAsc

// SortKeys lists the supported keys in display order
var SortKeys = []SortKey{SortNameAsc, SortNameDesc, SortPriceAsc, SortPriceDesc, SortRatingDesc}

var ErrUnknownSortKey = errors.New("unknown sort key")

// ParseSortKey maps s to a SortKey; the empty string yields DefaultSort
func ParseSortKey(s string) (SortKey, error) {
	if s == "" {
		return DefaultSort, nil
	}
	for _, k := range SortKeys {
		if string(k) == s {
			return k, nil
		}
	}
	return "", errors.Wrapf(ErrUnknownSortKey, "%q", s)
}

// FilterState describes one listing request
type FilterState struct {
	SearchTerm string
	Categories []string
	Sort       SortKey
}

// Collation tag for name ordering
var collationTag = language.English

// View filters products by search term, then by category, then sorts them.
// Equal keys keep their relative order from products. products is not modified.
func View(products []models.Product, state FilterState) []models.Product {
	fold := cases.Fold()
	term := fold.String(state.SearchTerm)

	wanted := make(map[string]struct{}, len(state.Categories))
	for _, c := range state.Categories {
		wanted[c] = struct{}{}
	}

	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if term != "" && !matches(fold, p, term) {
			continue
		}
		if len(wanted) > 0 {
			if _, ok := wanted[p.Category]; !ok {
				continue
			}
		}
		out = append(out, p)
	}

	sortProducts(out, state.Sort)
	return out
}

func matches(fold cases.Caser, p models.Product, term string) bool {
	return strings.Contains(fold.String(p.Name), term) ||
		strings.Contains(fold.String(p.Description), term) ||
		strings.Contains(fold.String(p.Category), term)
}

func sortProducts(products []models.Product, key SortKey) {
	switch key {
	case SortNameAsc, SortNameDesc:
		col := collate.New(collationTag)
		desc := key == SortNameDesc
		sort.SliceStable(products, func(i, j int) bool {
			if desc {
				return col.CompareString(products[j].Name, products[i].Name) < 0
			}
			return col.CompareString(products[i].Name, products[j].Name) < 0
		})
	case SortPriceAsc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Price.LessThan(products[j].Price)
		})
	case SortPriceDesc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[j].Price.LessThan(products[i].Price)
		})
	case SortRatingDesc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[j].RatingOrZero() < products[i].RatingOrZero()
		})
	}
}
