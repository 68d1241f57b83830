package catalog

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-storefront/models"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	require.Greater(t, c.Len(), 4)

	p, err := c.Get("2")
	require.NoError(t, err)
	assert.Equal(t, "Electronics", p.Category)

	_, err = c.Get("does-not-exist")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestNewRejectsInvalidProducts(t *testing.T) {
	valid := func() models.Product {
		return models.Product{ID: "p", Price: decimal.NewFromInt(1), Stock: 1}
	}
	negativeReviews := -1

	cases := map[string]func(p *models.Product){
		"missing id":       func(p *models.Product) { p.ID = "" },
		"negative price":   func(p *models.Product) { p.Price = decimal.NewFromInt(-1) },
		"negative stock":   func(p *models.Product) { p.Stock = -1 },
		"rating too high":  func(p *models.Product) { p.Rating = rating(5.5) },
		"negative rating":  func(p *models.Product) { p.Rating = rating(-0.1) },
		"negative reviews": func(p *models.Product) { p.Reviews = &negativeReviews },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			p := valid()
			mutate(&p)
			_, err := New([]models.Product{p})
			assert.Error(t, err)
		})
	}

	t.Run("duplicate ids", func(t *testing.T) {
		_, err := New([]models.Product{valid(), valid()})
		assert.Error(t, err)
	})
}

func TestLoadJSON(t *testing.T) {
	raw := `[
		{"id":"a","name":"A","description":"","price":"12.50","imageUrl":"","category":"X","stock":3},
		{"id":"b","name":"B","description":"","price":3,"imageUrl":"","category":"Y","stock":0,"rating":4,"reviews":2}
	]`
	c, err := LoadJSON(strings.NewReader(raw))
	require.NoError(t, err)

	a, err := c.Get("a")
	require.NoError(t, err)
	assert.True(t, a.Price.Equal(decimal.RequireFromString("12.5")))
	assert.Nil(t, a.Rating)

	b, err := c.Get("b")
	require.NoError(t, err)
	assert.Equal(t, 4.0, b.RatingOrZero())

	_, err = LoadJSON(strings.NewReader(`[{"id":"a","colour":"red"}]`))
	assert.Error(t, err, "unknown fields are rejected")
}

func TestCategoriesFeaturedRelated(t *testing.T) {
	c, err := New([]models.Product{
		item("1", "One", "X", "1", nil),
		item("2", "Two", "Y", "1", nil),
		item("3", "Three", "X", "1", nil),
		item("4", "Four", "X", "1", nil),
		item("5", "Five", "Z", "1", nil),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"X", "Y", "Z"}, c.Categories())
	assert.Equal(t, []string{"1", "2"}, ids(c.Featured(2)))
	assert.Len(t, c.Featured(50), 5)

	one, _ := c.Get("1")
	assert.Equal(t, []string{"3", "4"}, ids(c.Related(one, 4)))
	assert.Equal(t, []string{"3"}, ids(c.Related(one, 1)))

	five, _ := c.Get("5")
	assert.Empty(t, c.Related(five, 4))
}

func TestProductDocumentToProduct(t *testing.T) {
	doc := ProductDocument{ID: "m1", Name: "Mug", Price: "7.25", Category: "Home", Stock: 4, Rating: rating(3)}
	p, err := doc.ToProduct()
	require.NoError(t, err)
	assert.Equal(t, "m1", p.ID)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("7.25")))
	assert.Equal(t, 3.0, p.RatingOrZero())

	doc.Price = "seven"
	_, err = doc.ToProduct()
	assert.Error(t, err)
}
