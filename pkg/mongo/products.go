package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/mvmart/go-api/pkg/models"
)

// Catalog implements the checkout Catalog port over the products collection.
type Catalog struct{}

func NewCatalog() Catalog { return Catalog{} }

func (Catalog) FindByID(ctx context.Context, id bson.ObjectID) (*models.Product, error) {
	var product models.Product
	err := GetCollection("products").FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrProductUnavailable
		}
		return nil, err
	}
	return &product, nil
}

// DecrementStock is the single conditional write behind every stock
// commitment. The filter only matches while the product is active and has at
// least qty units, so two racing orders can never both decrement the last
// unit: whichever update applies second matches nothing and fails cleanly.
func (Catalog) DecrementStock(ctx context.Context, id bson.ObjectID, qty int) error {
	result, err := GetCollection("products").UpdateOne(ctx,
		bson.M{
			"_id":       id,
			"is_active": true,
			"stock":     bson.M{"$gte": qty},
		},
		bson.M{"$inc": bson.M{"stock": -qty, "total_sold": qty}},
	)
	if err != nil {
		return err
	}
	if result.ModifiedCount == 0 {
		return fmt.Errorf("%w: product %s", models.ErrInsufficientStock, id.Hex())
	}
	return nil
}

// RestoreStock reverses a prior successful decrement. No guard is needed:
// it only ever runs against items whose stock was committed earlier.
func (Catalog) RestoreStock(ctx context.Context, id bson.ObjectID, qty int) error {
	_, err := GetCollection("products").UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"stock": qty, "total_sold": -qty}},
	)
	return err
}
