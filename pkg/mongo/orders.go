package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/mvmart/go-api/pkg/global"
	"github.com/mvmart/go-api/pkg/models"
)

// Orders implements the checkout OrderStore port plus the list queries used
// by the buyer, seller, and admin views.
type Orders struct{}

func NewOrders() Orders { return Orders{} }

// Insert persists a new order. A collision on the unique order_number index
// surfaces as ErrDuplicateOrderNo so placement can regenerate and retry.
func (Orders) Insert(ctx context.Context, order *models.Order) error {
	_, err := GetCollection("orders").InsertOne(ctx, order)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %s", models.ErrDuplicateOrderNo, order.OrderNumber)
	}
	return err
}

func (Orders) FindByID(ctx context.Context, id bson.ObjectID) (*models.Order, error) {
	var order models.Order
	err := GetCollection("orders").FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

// Update rewrites the mutable fields of a placed order. The immutable
// snapshot (items' product data, totals, address) is written once at insert
// and never touched again; items are replaced wholesale because their status
// and tracking id are mutable.
func (Orders) Update(ctx context.Context, order *models.Order) error {
	result, err := GetCollection("orders").UpdateOne(ctx,
		bson.M{"_id": order.ID},
		bson.M{"$set": bson.M{
			"items":         order.Items,
			"status":        order.Status,
			"payment_info":  order.PaymentInfo,
			"cancel_reason": order.CancelReason,
			"cancelled_at":  order.CancelledAt,
			"updated_at":    order.UpdatedAt,
		}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return models.ErrOrderNotFound
	}
	return nil
}

// UpdatePayment writes only payment_info. Settlement owns no other field, so
// this can never revert a concurrent fulfillment update to the items.
func (Orders) UpdatePayment(ctx context.Context, id bson.ObjectID, info models.PaymentInfo) error {
	result, err := GetCollection("orders").UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"payment_info": info,
			"updated_at":   time.Now(),
		}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return models.ErrOrderNotFound
	}
	return nil
}

// OrderFilter narrows the list queries.
type OrderFilter struct {
	UserID   *bson.ObjectID
	SellerID *bson.ObjectID
	Status   string
	From     *time.Time
	To       *time.Time
}

func (f OrderFilter) toQuery() bson.M {
	query := bson.M{}
	if f.UserID != nil {
		query["user_id"] = *f.UserID
	}
	if f.SellerID != nil {
		query["items.seller_id"] = *f.SellerID
	}
	if f.Status != "" {
		query["status"] = f.Status
	}
	if f.From != nil || f.To != nil {
		created := bson.M{}
		if f.From != nil {
			created["$gte"] = *f.From
		}
		if f.To != nil {
			created["$lte"] = *f.To
		}
		query["created_at"] = created
	}
	return query
}

// List returns matching orders newest-first with the standard pagination
// envelope.
func (Orders) List(ctx context.Context, filter OrderFilter, page, limit int) ([]models.Order, *global.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	query := filter.toQuery()
	collection := GetCollection("orders")

	total, err := collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, nil, err
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, query, findOpts)
	if err != nil {
		return nil, nil, err
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, nil, err
	}

	pagination := &global.Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: (total + int64(limit) - 1) / int64(limit),
	}
	return orders, pagination, nil
}
