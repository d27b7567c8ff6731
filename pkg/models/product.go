package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ShippingInfo describes how a product ships. A product with FreeShipping
// contributes nothing to an order's shipping charge; otherwise ShippingCost
// applies per unit (falling back to the configured default when zero).
type ShippingInfo struct {
	FreeShipping bool    `json:"free_shipping" bson:"free_shipping"`
	ShippingCost float64 `json:"shipping_cost" bson:"shipping_cost" validate:"gte=0"`
}

// Product represents a seller's listing in the marketplace catalog.
// Stock is never mutated directly; it only moves through the conditional
// decrement / unconditional restore primitives in pkg/mongo.
type Product struct {
	ID           bson.ObjectID `json:"id" bson:"_id,omitempty"`
	SellerID     bson.ObjectID `json:"seller_id" bson:"seller_id" validate:"required"`
	Name         string        `json:"name" bson:"name" validate:"required,min=2,max=200"`
	Description  string        `json:"description" bson:"description" validate:"max=2000"`
	Image        string        `json:"image" bson:"image"`
	Price        float64       `json:"price" bson:"price" validate:"required,gt=0"`
	MRP          float64       `json:"mrp" bson:"mrp" validate:"gte=0"`
	Stock        int           `json:"stock" bson:"stock" validate:"gte=0"`
	TotalSold    int           `json:"total_sold" bson:"total_sold" validate:"gte=0"`
	IsActive     bool          `json:"is_active" bson:"is_active"`
	ShippingInfo ShippingInfo  `json:"shipping_info" bson:"shipping_info"`
	CreatedAt    time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at" bson:"updated_at"`
}

func (p *Product) IsInStock() bool {
	return p.Stock > 0 && p.IsActive
}

// UnitShippingCost returns the per-unit shipping charge for this product,
// using the supplied default when the listing has no cost of its own.
func (p *Product) UnitShippingCost(defaultCost float64) float64 {
	if p.ShippingInfo.FreeShipping {
		return 0
	}
	if p.ShippingInfo.ShippingCost > 0 {
		return p.ShippingInfo.ShippingCost
	}
	return defaultCost
}

func (p *Product) SetTimestamps() {
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
}
