package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// CartItem is a candidate order line. Price and MRP are snapshotted when the
// item is added; the catalog's current price only matters again at checkout,
// where the product is re-read for the order snapshot.
type CartItem struct {
	ProductID bson.ObjectID `json:"product_id" bson:"product_id" validate:"required"`
	Quantity  int           `json:"quantity" bson:"quantity" validate:"required,gte=1"`
	Size      string        `json:"size" bson:"size,omitempty"`
	Color     string        `json:"color" bson:"color,omitempty"`
	Price     float64       `json:"price" bson:"price" validate:"gte=0"`
	MRP       float64       `json:"mrp" bson:"mrp" validate:"gte=0"`
	AddedAt   time.Time     `json:"added_at" bson:"added_at"`
}

// Cart holds a buyer's candidate items. One cart per user, keyed by UserID.
type Cart struct {
	ID        bson.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID    bson.ObjectID `json:"user_id" bson:"user_id" validate:"required"`
	Items     []CartItem    `json:"items" bson:"items"`
	UpdatedAt time.Time     `json:"updated_at" bson:"updated_at"`
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// FindItem returns the cart line matching product+size+color, or nil.
func (c *Cart) FindItem(productID bson.ObjectID, size, color string) *CartItem {
	for i := range c.Items {
		item := &c.Items[i]
		if item.ProductID == productID && item.Size == size && item.Color == color {
			return item
		}
	}
	return nil
}

type AddToCartRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

type UpdateCartItemRequest struct {
	Quantity int    `json:"quantity" binding:"min=0"`
	Size     string `json:"size"`
	Color    string `json:"color"`
}
