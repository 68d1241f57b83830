package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"go-storefront/catalog"
	"go-storefront/middleware"
	"go-storefront/models"
)

const (
	featuredCount = 4
	relatedCount  = 4
)

// ProductController handles product-related requests
type ProductController struct {
	Catalog *catalog.Catalog
	Log     logrus.FieldLogger
}

// NewProductController creates a new ProductController
func NewProductController(c *catalog.Catalog, logger logrus.FieldLogger) *ProductController {
	return &ProductController{Catalog: c, Log: logger}
}

// ProductList is the response of GetProducts
type ProductList struct {
	Products   []models.Product `json:"products"`
	Count      int              `json:"count"`
	Search     string           `json:"search"`
	Categories []string         `json:"categories"`
	Sort       catalog.SortKey  `json:"sort"`
}

// GetProducts lists the catalog filtered by ?search= and ?category= and
// ordered by ?sort=
func (pc *ProductController) GetProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sortKey, err := catalog.ParseSortKey(q.Get("sort"))
	if err != nil {
		http.Error(w, "Invalid sort key", http.StatusBadRequest)
		return
	}

	state := catalog.FilterState{
		SearchTerm: q.Get("search"),
		Categories: splitCategories(q["category"]),
		Sort:       sortKey,
	}
	products := catalog.View(pc.Catalog.All(), state)

	writeJSON(w, http.StatusOK, ProductList{
		Products:   products,
		Count:      len(products),
		Search:     state.SearchTerm,
		Categories: state.Categories,
		Sort:       state.Sort,
	})
}

// splitCategories accepts both repeated and comma separated category params
func splitCategories(values []string) []string {
	categories := []string{}
	for _, v := range values {
		for _, c := range strings.Split(v, ",") {
			if c = strings.TrimSpace(c); c != "" {
				categories = append(categories, c)
			}
		}
	}
	return categories
}

// GetCategories lists the distinct product categories
func (pc *ProductController) GetCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, pc.Catalog.Categories())
}

// GetFeatured lists the products shown on the home page
func (pc *ProductController) GetFeatured(w http.ResponseWriter, r *http.Request) {
	n := featuredCount
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		n = limit
	}
	writeJSON(w, http.StatusOK, pc.Catalog.Featured(n))
}

// ProductDetail is the response of GetProductByID
type ProductDetail struct {
	Product models.Product   `json:"product"`
	Related []models.Product `json:"related"`
}

// GetProductByID retrieves a single product and records the view in the
// browsing history
func (pc *ProductController) GetProductByID(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	product, err := pc.Catalog.Get(id)
	if errors.Is(err, catalog.ErrProductNotFound) {
		http.Error(w, "Product not found", http.StatusNotFound)
		return
	}
	if err != nil {
		pc.Log.WithError(err).WithField("product", id).Error("get product")
		http.Error(w, "Error fetching product", http.StatusInternalServerError)
		return
	}

	if m, ok := middleware.CartFromContext(r.Context()); ok {
		m.AddToBrowsingHistory(product.ID)
		flagUnsaved(w, m)
	}

	writeJSON(w, http.StatusOK, ProductDetail{
		Product: product,
		Related: pc.Catalog.Related(product, relatedCount),
	})
}
