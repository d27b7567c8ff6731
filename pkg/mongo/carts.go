package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/mvmart/go-api/pkg/models"
)

// Carts implements the checkout CartStore port. One cart document per user,
// keyed by user_id.
type Carts struct{}

func NewCarts() Carts { return Carts{} }

// Get loads the buyer's cart and prunes items whose product has vanished or
// gone inactive. Deactivating a product silently removes it from every cart
// that reads it afterwards; the pruned cart is written back when anything
// was dropped.
func (c Carts) Get(ctx context.Context, userID bson.ObjectID) (*models.Cart, error) {
	var cart models.Cart
	err := GetCollection("carts").FindOne(ctx, bson.M{"user_id": userID}).Decode(&cart)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return &models.Cart{UserID: userID, Items: []models.CartItem{}}, nil
		}
		return nil, err
	}

	if len(cart.Items) == 0 {
		return &cart, nil
	}

	ids := make([]bson.ObjectID, 0, len(cart.Items))
	for _, item := range cart.Items {
		ids = append(ids, item.ProductID)
	}

	cursor, err := GetCollection("products").Find(ctx, bson.M{
		"_id":       bson.M{"$in": ids},
		"is_active": true,
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}

	active := make(map[bson.ObjectID]bool, len(products))
	for _, p := range products {
		active[p.ID] = true
	}

	kept := cart.Items[:0]
	for _, item := range cart.Items {
		if active[item.ProductID] {
			kept = append(kept, item)
		}
	}
	if len(kept) != len(cart.Items) {
		cart.Items = kept
		if err := c.save(ctx, &cart); err != nil {
			return nil, err
		}
	}
	cart.Items = kept

	return &cart, nil
}

func (c Carts) Clear(ctx context.Context, userID bson.ObjectID) error {
	_, err := GetCollection("carts").UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{"$set": bson.M{"items": []models.CartItem{}, "updated_at": time.Now()}},
	)
	return err
}

// RemovePurchased decrements or drops cart lines matching the purchased
// items. Defensive cleanup on the settlement path; a no-op when placement
// already cleared the cart.
func (c Carts) RemovePurchased(ctx context.Context, userID bson.ObjectID, items []models.OrderItem) error {
	cart, err := c.Get(ctx, userID)
	if err != nil {
		return err
	}
	if cart.IsEmpty() {
		return nil
	}

	for _, purchased := range items {
		if line := cart.FindItem(purchased.ProductID, purchased.Size, purchased.Color); line != nil {
			line.Quantity -= purchased.Quantity
		}
	}

	kept := cart.Items[:0]
	for _, item := range cart.Items {
		if item.Quantity > 0 {
			kept = append(kept, item)
		}
	}
	cart.Items = kept

	return c.save(ctx, cart)
}

// AddItem appends a line to the cart, snapshotting the product's current
// price and MRP. Adding the same product/size/color again bumps the quantity.
func (c Carts) AddItem(ctx context.Context, userID bson.ObjectID, product *models.Product, qty int, size, color string) (*models.Cart, error) {
	cart, err := c.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if line := cart.FindItem(product.ID, size, color); line != nil {
		line.Quantity += qty
	} else {
		cart.Items = append(cart.Items, models.CartItem{
			ProductID: product.ID,
			Quantity:  qty,
			Size:      size,
			Color:     color,
			Price:     product.Price,
			MRP:       product.MRP,
			AddedAt:   time.Now(),
		})
	}

	if err := c.save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// UpdateItem sets the quantity of an existing line; zero removes it.
func (c Carts) UpdateItem(ctx context.Context, userID, productID bson.ObjectID, qty int, size, color string) (*models.Cart, error) {
	cart, err := c.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	kept := cart.Items[:0]
	for _, item := range cart.Items {
		if item.ProductID == productID && item.Size == size && item.Color == color {
			if qty == 0 {
				continue
			}
			item.Quantity = qty
		}
		kept = append(kept, item)
	}
	cart.Items = kept

	if err := c.save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (Carts) save(ctx context.Context, cart *models.Cart) error {
	cart.UpdatedAt = time.Now()
	_, err := GetCollection("carts").UpdateOne(ctx,
		bson.M{"user_id": cart.UserID},
		bson.M{"$set": bson.M{"items": cart.Items, "updated_at": cart.UpdatedAt}},
		options.UpdateOne().SetUpsert(true),
	)
	return err
}
