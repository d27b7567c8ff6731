// Package checkout orchestrates the money-moving workflows of the
// marketplace: order placement, payment settlement, and fulfillment. All
// state lives behind the narrow ports below so correctness comes from the
// storage layer's conditional writes and transactions, not in-process locks.
package checkout

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/mvmart/go-api/pkg/models"
)

// Catalog is the read/stock surface of the product collection.
// DecrementStock must be a single conditional write: it decrements stock and
// increments total_sold only when stock >= qty, and returns
// models.ErrInsufficientStock otherwise without mutating anything.
// RestoreStock is the unguarded inverse, safe because it only reverses a
// prior successful decrement.
type Catalog interface {
	FindByID(ctx context.Context, id bson.ObjectID) (*models.Product, error)
	DecrementStock(ctx context.Context, id bson.ObjectID, qty int) error
	RestoreStock(ctx context.Context, id bson.ObjectID, qty int) error
}

// CouponLedger validates and redeems discount codes. Redeem must be a single
// conditional write enforcing the global and per-user usage limits, appending
// the user to used_by and bumping used_count together.
type CouponLedger interface {
	FindByCode(ctx context.Context, code string) (*models.Coupon, error)
	Redeem(ctx context.Context, code string, userID bson.ObjectID) error
}

// CartStore holds each buyer's candidate items. Get prunes items whose
// product has vanished or gone inactive before returning.
type CartStore interface {
	Get(ctx context.Context, userID bson.ObjectID) (*models.Cart, error)
	Clear(ctx context.Context, userID bson.ObjectID) error
	// RemovePurchased decrements or removes cart lines matching the given
	// order items. Defensive cleanup on the settlement path; a no-op when
	// the cart was already cleared at placement.
	RemovePurchased(ctx context.Context, userID bson.ObjectID, items []models.OrderItem) error
}

// OrderStore persists orders. Orders are never deleted; Update only touches
// the mutable fields (items, status, payment info, cancellation stamps).
// UpdatePayment writes payment info alone, so settlement paths running
// outside a transaction cannot clobber concurrent fulfillment updates to the
// same order's items.
type OrderStore interface {
	Insert(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id bson.ObjectID) (*models.Order, error)
	Update(ctx context.Context, order *models.Order) error
	UpdatePayment(ctx context.Context, id bson.ObjectID, info models.PaymentInfo) error
}

// Tx runs fn atomically: either every write made through the other ports
// inside fn commits, or none do.
type Tx interface {
	RunTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Gateway is the external payment provider. CreateIntent registers a payment
// of amount minor currency units against the given receipt and returns the
// provider's intent id. VerifySignature checks the provider's callback
// signature in constant time.
type Gateway interface {
	CreateIntent(ctx context.Context, amount int64, receipt string) (string, error)
	VerifySignature(intentID, paymentID, signature string) bool
	KeyID() string
}

// Notifier dispatches fire-and-forget notifications after a transaction has
// committed. Failures are logged, never propagated.
type Notifier interface {
	OrderPlaced(order *models.Order)
}
