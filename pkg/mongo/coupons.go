package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/mvmart/go-api/pkg/models"
)

// Coupons implements the checkout CouponLedger port.
type Coupons struct{}

func NewCoupons() Coupons { return Coupons{} }

func (Coupons) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	err := GetCollection("coupons").FindOne(ctx, bson.M{"code": code}).Decode(&coupon)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrCouponNotFound
		}
		return nil, err
	}
	return &coupon, nil
}

// Redeem appends the user to used_by and bumps used_count in one conditional
// write. The filter re-checks the mutable limits (global usage and per-user
// count) against the stored document, so two concurrent placements cannot
// both take a coupon's last redemption: the second one matches nothing.
func (Coupons) Redeem(ctx context.Context, code string, userID bson.ObjectID) error {
	filter := bson.M{
		"code":      code,
		"is_active": true,
		"$and": []bson.M{
			{"$or": []bson.M{
				{"usage_limit": 0},
				{"$expr": bson.M{"$lt": bson.A{"$used_count", "$usage_limit"}}},
			}},
			{"$expr": bson.M{"$lt": bson.A{
				bson.M{"$size": bson.M{"$filter": bson.M{
					"input": "$used_by",
					"cond":  bson.M{"$eq": bson.A{"$$this", userID}},
				}}},
				"$per_user_limit",
			}}},
		},
	}
	update := bson.M{
		"$inc":  bson.M{"used_count": 1},
		"$push": bson.M{"used_by": userID},
		"$set":  bson.M{"updated_at": time.Now()},
	}

	result, err := GetCollection("coupons").UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.ModifiedCount == 0 {
		return fmt.Errorf("%w: %s", models.ErrCouponInvalid, code)
	}
	return nil
}
