package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	CouponTypePercentage = "percentage"
	CouponTypeFixed      = "fixed"
)

// Coupon is a discount code. UsedCount counts completed redemptions and
// UsedBy records every redeeming user, duplicated once per redemption so
// per-user usage can be counted.
type Coupon struct {
	ID             bson.ObjectID   `json:"id" bson:"_id,omitempty"`
	Code           string          `json:"code" bson:"code" validate:"required,min=3,max=30"`
	Description    string          `json:"description" bson:"description" validate:"max=500"`
	Type           string          `json:"type" bson:"type" validate:"required,oneof=percentage fixed"`
	Value          float64         `json:"value" bson:"value" validate:"required,gt=0"`
	MinOrderAmount float64         `json:"min_order_amount" bson:"min_order_amount" validate:"gte=0"`
	MaxDiscount    float64         `json:"max_discount" bson:"max_discount" validate:"gte=0"`
	UsageLimit     int             `json:"usage_limit" bson:"usage_limit" validate:"gte=0"` // 0 = unlimited
	UsedCount      int             `json:"used_count" bson:"used_count" validate:"gte=0"`
	PerUserLimit   int             `json:"per_user_limit" bson:"per_user_limit" validate:"gte=1"`
	UsedBy         []bson.ObjectID `json:"used_by" bson:"used_by"`
	ValidFrom      time.Time       `json:"valid_from" bson:"valid_from"`
	ValidTill      time.Time       `json:"valid_till" bson:"valid_till"`
	IsActive       bool            `json:"is_active" bson:"is_active"`
	CreatedAt      time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" bson:"updated_at"`
}

// CouponCheck is the outcome of validating a coupon against an order amount.
type CouponCheck struct {
	Valid  bool
	Reason string
}

// UsesBy counts how many times the given user appears in the redemption record.
func (cp *Coupon) UsesBy(userID bson.ObjectID) int {
	count := 0
	for _, id := range cp.UsedBy {
		if id == userID {
			count++
		}
	}
	return count
}

// IsValid checks every redemption rule in order, short-circuiting on the
// first failure: active flag, validity window, global usage limit, minimum
// order amount, then per-user limit.
func (cp *Coupon) IsValid(userID bson.ObjectID, orderAmount float64) CouponCheck {
	now := time.Now()

	if !cp.IsActive {
		return CouponCheck{Valid: false, Reason: "coupon is not active"}
	}
	if now.Before(cp.ValidFrom) {
		return CouponCheck{Valid: false, Reason: "coupon is not valid yet"}
	}
	if now.After(cp.ValidTill) {
		return CouponCheck{Valid: false, Reason: "coupon has expired"}
	}
	if cp.UsageLimit > 0 && cp.UsedCount >= cp.UsageLimit {
		return CouponCheck{Valid: false, Reason: "coupon usage limit reached"}
	}
	if orderAmount < cp.MinOrderAmount {
		return CouponCheck{Valid: false, Reason: "order amount below coupon minimum"}
	}
	if cp.UsesBy(userID) >= cp.PerUserLimit {
		return CouponCheck{Valid: false, Reason: "coupon already used the maximum number of times"}
	}

	return CouponCheck{Valid: true}
}

// CalculateDiscount computes the discount this coupon grants on orderAmount.
// Percentage discounts are capped at MaxDiscount when set; either type is
// finally capped at the order amount so the grand total never goes negative.
func (cp *Coupon) CalculateDiscount(orderAmount float64) float64 {
	var discount float64
	switch cp.Type {
	case CouponTypePercentage:
		discount = orderAmount * cp.Value / 100
		if cp.MaxDiscount > 0 && discount > cp.MaxDiscount {
			discount = cp.MaxDiscount
		}
	case CouponTypeFixed:
		discount = cp.Value
	}
	if discount > orderAmount {
		discount = orderAmount
	}
	return discount
}

func (cp *Coupon) SetTimestamps() {
	now := time.Now()
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = now
	}
	cp.UpdatedAt = now
}

type ValidateCouponRequest struct {
	Code        string  `json:"code" binding:"required"`
	OrderAmount float64 `json:"order_amount" binding:"required,gt=0"`
}

// ValidateCouponResponse is the pre-checkout preview returned to buyers.
type ValidateCouponResponse struct {
	Code        string  `json:"code"`
	Type        string  `json:"type"`
	Value       float64 `json:"value"`
	Discount    float64 `json:"discount"`
	Description string  `json:"description,omitempty"`
}
