package models

import (
	"fmt"
	"math/rand"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Item / order statuses. Order status is always derived from item statuses,
// never set independently.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusShipped   = "shipped"
	StatusDelivered = "delivered"
	StatusCancelled = "cancelled"
	StatusReturned  = "returned"
)

// Payment methods and payment statuses.
const (
	PaymentMethodCOD     = "cod"      // deferred settlement, pay on delivery
	PaymentMethodGateway = "razorpay" // third-party gateway

	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

// itemTransitions is the legality table for per-item status changes.
var itemTransitions = map[string][]string{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusShipped, StatusCancelled},
	StatusShipped:   {StatusDelivered, StatusCancelled},
	StatusDelivered: {StatusReturned},
	StatusCancelled: {},
	StatusReturned:  {},
}

// CanTransitionItem reports whether an item may move from one status to another.
func CanTransitionItem(from, to string) bool {
	for _, next := range itemTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Address is the shipping address snapshot embedded in an order.
type Address struct {
	FullName   string `json:"full_name" bson:"full_name" validate:"required"`
	Phone      string `json:"phone" bson:"phone" validate:"required,min=10,max=20"`
	Street     string `json:"street" bson:"street" validate:"required"`
	City       string `json:"city" bson:"city" validate:"required"`
	State      string `json:"state" bson:"state" validate:"required"`
	PostalCode string `json:"postal_code" bson:"postal_code" validate:"required"`
	Country    string `json:"country" bson:"country" validate:"required"`
}

// OrderItem is a denormalized copy of the product at purchase time. Later
// catalog changes never affect a placed order.
type OrderItem struct {
	ItemID     bson.ObjectID `json:"item_id" bson:"item_id"`
	ProductID  bson.ObjectID `json:"product_id" bson:"product_id" validate:"required"`
	SellerID   bson.ObjectID `json:"seller_id" bson:"seller_id" validate:"required"`
	Name       string        `json:"name" bson:"name" validate:"required"`
	Image      string        `json:"image" bson:"image"`
	Price      float64       `json:"price" bson:"price" validate:"required,gt=0"`
	MRP        float64       `json:"mrp" bson:"mrp" validate:"gte=0"`
	Quantity   int           `json:"quantity" bson:"quantity" validate:"required,gte=1"`
	Size       string        `json:"size" bson:"size,omitempty"`
	Color      string        `json:"color" bson:"color,omitempty"`
	Status     string        `json:"status" bson:"status" validate:"required,oneof=pending confirmed shipped delivered cancelled returned"`
	TrackingID string        `json:"tracking_id,omitempty" bson:"tracking_id,omitempty"`
}

// PaymentInfo tracks how and whether the order was paid. It is the only part
// of an order, besides item statuses, mutated after placement.
type PaymentInfo struct {
	Method           string     `json:"method" bson:"method" validate:"required,oneof=cod razorpay"`
	Status           string     `json:"status" bson:"status" validate:"required,oneof=pending paid failed"`
	GatewayOrderID   string     `json:"gateway_order_id,omitempty" bson:"gateway_order_id,omitempty"`
	GatewayPaymentID string     `json:"gateway_payment_id,omitempty" bson:"gateway_payment_id,omitempty"`
	PaidAt           *time.Time `json:"paid_at,omitempty" bson:"paid_at,omitempty"`
}

// Order is the immutable-once-placed record of a purchase. Orders are never
// deleted.
type Order struct {
	ID              bson.ObjectID `json:"id" bson:"_id,omitempty"`
	OrderNumber     string        `json:"order_number" bson:"order_number" validate:"required"`
	UserID          bson.ObjectID `json:"user_id" bson:"user_id" validate:"required"`
	Items           []OrderItem   `json:"items" bson:"items" validate:"required,min=1,dive"`
	ShippingAddress Address       `json:"shipping_address" bson:"shipping_address"`
	PaymentInfo     PaymentInfo   `json:"payment_info" bson:"payment_info"`
	Subtotal        float64       `json:"subtotal" bson:"subtotal" validate:"gte=0"`
	ShippingCharge  float64       `json:"shipping_charge" bson:"shipping_charge" validate:"gte=0"`
	Discount        float64       `json:"discount" bson:"discount" validate:"gte=0"`
	Coupon          string        `json:"coupon,omitempty" bson:"coupon,omitempty"`
	GrandTotal      float64       `json:"grand_total" bson:"grand_total" validate:"gte=0"`
	Status          string        `json:"status" bson:"status" validate:"required"`
	Notes           string        `json:"notes,omitempty" bson:"notes,omitempty"`
	CancelReason    string        `json:"cancel_reason,omitempty" bson:"cancel_reason,omitempty"`
	CancelledAt     *time.Time    `json:"cancelled_at,omitempty" bson:"cancelled_at,omitempty"`
	CreatedAt       time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" bson:"updated_at"`
}

// CalculateGrandTotal recomputes the grand total from its parts.
func (o *Order) CalculateGrandTotal() {
	o.GrandTotal = o.Subtotal + o.ShippingCharge - o.Discount
}

// DeriveStatus recomputes the order-level status from the item statuses:
// all delivered -> delivered, all cancelled -> cancelled, any shipped ->
// shipped, any confirmed -> confirmed, otherwise the status is unchanged.
func (o *Order) DeriveStatus() {
	allDelivered, allCancelled := true, true
	anyShipped, anyConfirmed := false, false

	for _, item := range o.Items {
		if item.Status != StatusDelivered {
			allDelivered = false
		}
		if item.Status != StatusCancelled {
			allCancelled = false
		}
		if item.Status == StatusShipped {
			anyShipped = true
		}
		if item.Status == StatusConfirmed {
			anyConfirmed = true
		}
	}

	switch {
	case len(o.Items) == 0:
	case allDelivered:
		o.Status = StatusDelivered
		// Pay-on-delivery settles when everything has been handed over.
		if o.PaymentInfo.Method == PaymentMethodCOD && o.PaymentInfo.Status != PaymentStatusPaid {
			now := time.Now()
			o.PaymentInfo.Status = PaymentStatusPaid
			o.PaymentInfo.PaidAt = &now
		}
	case allCancelled:
		o.Status = StatusCancelled
	case anyShipped:
		o.Status = StatusShipped
	case anyConfirmed:
		o.Status = StatusConfirmed
	}
}

// CanBeCancelled reports whether the buyer may still cancel the whole order.
func (o *Order) CanBeCancelled() bool {
	return o.Status != StatusDelivered && o.Status != StatusCancelled
}

// CancelAll forces every item to cancelled, regardless of its current status,
// and stamps the cancellation. Restitution of stock is the caller's job.
func (o *Order) CancelAll(reason string) {
	now := time.Now()
	for i := range o.Items {
		o.Items[i].Status = StatusCancelled
	}
	o.Status = StatusCancelled
	o.CancelReason = reason
	o.CancelledAt = &now
	o.UpdatedAt = now
}

// FindItem returns the order item with the given item id, or nil.
func (o *Order) FindItem(itemID bson.ObjectID) *OrderItem {
	for i := range o.Items {
		if o.Items[i].ItemID == itemID {
			return &o.Items[i]
		}
	}
	return nil
}

// SellerItems returns the items in this order owned by the given seller.
func (o *Order) SellerItems(sellerID bson.ObjectID) []OrderItem {
	var items []OrderItem
	for _, item := range o.Items {
		if item.SellerID == sellerID {
			items = append(items, item)
		}
	}
	return items
}

func (o *Order) SetTimestamps() {
	now := time.Now()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now
}

// GenerateOrderNumber builds a human-readable order code from a date stamp
// and a random suffix, e.g. ORD-20250901-482913.
func GenerateOrderNumber() string {
	return fmt.Sprintf("ORD-%s-%06d",
		time.Now().Format("20060102"),
		rand.Intn(1000000),
	)
}

type PlaceOrderRequest struct {
	ShippingAddress Address `json:"shipping_address" binding:"required"`
	PaymentMethod   string  `json:"payment_method" binding:"required,oneof=cod razorpay"`
	CouponCode      string  `json:"coupon_code"`
	Notes           string  `json:"notes"`
}

type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

type UpdateItemStatusRequest struct {
	Status     string `json:"status" binding:"required,oneof=confirmed shipped delivered cancelled returned"`
	TrackingID string `json:"tracking_id"`
}
