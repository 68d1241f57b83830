package catalog

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"go-storefront/models"
)

// ProductDocument is the stored shape of a product in MongoDB
type ProductDocument struct {
	ID          string   `bson:"_id"`
	Name        string   `bson:"name"`
	Description string   `bson:"description"`
	Price       string   `bson:"price"` // decimal string, e.g. "19.99"
	ImageURL    string   `bson:"image_url"`
	Category    string   `bson:"category"`
	Stock       int      `bson:"stock"`
	Rating      *float64 `bson:"rating,omitempty"`
	Reviews     *int     `bson:"reviews,omitempty"`
	Position    int      `bson:"position"`
}

// ToProduct converts a stored document into a Product
func (d ProductDocument) ToProduct() (models.Product, error) {
	price, err := decimal.NewFromString(d.Price)
	if err != nil {
		return models.Product{}, errors.Wrapf(err, "product %s price", d.ID)
	}
	return models.Product{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Price:       price,
		ImageURL:    d.ImageURL,
		Category:    d.Category,
		Stock:       d.Stock,
		Rating:      d.Rating,
		Reviews:     d.Reviews,
	}, nil
}

// LoadMongo reads the whole collection once, ordered by position, and builds
// a Catalog from it. The catalog does not track later changes.
func LoadMongo(ctx context.Context, collection *mongo.Collection) (*Catalog, error) {
	opts := options.Find().SetSort(bson.D{{Key: "position", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "find products")
	}
	defer cursor.Close(ctx)

	var products []models.Product
	for cursor.Next(ctx) {
		var doc ProductDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, "decode product")
		}
		p, err := doc.ToProduct()
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := cursor.Err(); err != nil {
		return nil, errors.Wrap(err, "read products")
	}
	return New(products)
}
