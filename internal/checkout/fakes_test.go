package checkout_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/mvmart/go-api/pkg/gateway"
	"github.com/mvmart/go-api/pkg/models"
)

// memStore is an in-memory stand-in for the MongoDB layer with the same
// semantics the workflows rely on: the stock decrement and coupon redemption
// are atomic conditional writes, and a transaction either commits every
// write or rolls all of them back.
type memStore struct {
	mu       sync.Mutex
	products map[bson.ObjectID]*models.Product
	coupons  map[string]*models.Coupon
	carts    map[bson.ObjectID]*models.Cart
	orders   map[bson.ObjectID]*models.Order

	// dupInserts makes the next N order inserts fail as order-number
	// collisions.
	dupInserts int
}

func newMemStore() *memStore {
	return &memStore{
		products: make(map[bson.ObjectID]*models.Product),
		coupons:  make(map[string]*models.Coupon),
		carts:    make(map[bson.ObjectID]*models.Cart),
		orders:   make(map[bson.ObjectID]*models.Order),
	}
}

type txKey struct{}

// RunTransaction serializes against every other operation, snapshots the
// whole store, and restores the snapshot when fn fails.
func (s *memStore) RunTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.restore(snapshot)
		return err
	}
	return nil
}

// lock takes the store mutex unless the context already runs inside a
// transaction, which holds it for the whole body.
func (s *memStore) lock(ctx context.Context) func() {
	if ctx.Value(txKey{}) != nil {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

type storeState struct {
	products map[bson.ObjectID]*models.Product
	coupons  map[string]*models.Coupon
	carts    map[bson.ObjectID]*models.Cart
	orders   map[bson.ObjectID]*models.Order
}

func (s *memStore) snapshot() storeState {
	state := storeState{
		products: make(map[bson.ObjectID]*models.Product, len(s.products)),
		coupons:  make(map[string]*models.Coupon, len(s.coupons)),
		carts:    make(map[bson.ObjectID]*models.Cart, len(s.carts)),
		orders:   make(map[bson.ObjectID]*models.Order, len(s.orders)),
	}
	for id, p := range s.products {
		state.products[id] = cloneProduct(p)
	}
	for code, cp := range s.coupons {
		state.coupons[code] = cloneCoupon(cp)
	}
	for id, c := range s.carts {
		state.carts[id] = cloneCart(c)
	}
	for id, o := range s.orders {
		state.orders[id] = cloneOrder(o)
	}
	return state
}

func (s *memStore) restore(state storeState) {
	s.products = state.products
	s.coupons = state.coupons
	s.carts = state.carts
	s.orders = state.orders
}

// Catalog port.

func (s *memStore) FindByID(ctx context.Context, id bson.ObjectID) (*models.Product, error) {
	defer s.lock(ctx)()
	product, ok := s.products[id]
	if !ok {
		return nil, models.ErrProductUnavailable
	}
	return cloneProduct(product), nil
}

func (s *memStore) DecrementStock(ctx context.Context, id bson.ObjectID, qty int) error {
	defer s.lock(ctx)()
	product, ok := s.products[id]
	if !ok || !product.IsActive || product.Stock < qty {
		return fmt.Errorf("%w: product %s", models.ErrInsufficientStock, id.Hex())
	}
	product.Stock -= qty
	product.TotalSold += qty
	return nil
}

func (s *memStore) RestoreStock(ctx context.Context, id bson.ObjectID, qty int) error {
	defer s.lock(ctx)()
	product, ok := s.products[id]
	if !ok {
		return models.ErrProductUnavailable
	}
	product.Stock += qty
	product.TotalSold -= qty
	return nil
}

// CouponLedger port.

func (s *memStore) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	defer s.lock(ctx)()
	coupon, ok := s.coupons[code]
	if !ok {
		return nil, models.ErrCouponNotFound
	}
	return cloneCoupon(coupon), nil
}

func (s *memStore) Redeem(ctx context.Context, code string, userID bson.ObjectID) error {
	defer s.lock(ctx)()
	coupon, ok := s.coupons[code]
	if !ok || !coupon.IsActive {
		return fmt.Errorf("%w: %s", models.ErrCouponInvalid, code)
	}
	if coupon.UsageLimit > 0 && coupon.UsedCount >= coupon.UsageLimit {
		return fmt.Errorf("%w: %s", models.ErrCouponInvalid, code)
	}
	if coupon.UsesBy(userID) >= coupon.PerUserLimit {
		return fmt.Errorf("%w: %s", models.ErrCouponInvalid, code)
	}
	coupon.UsedCount++
	coupon.UsedBy = append(coupon.UsedBy, userID)
	return nil
}

// CartStore port.

func (s *memStore) Get(ctx context.Context, userID bson.ObjectID) (*models.Cart, error) {
	defer s.lock(ctx)()
	cart, ok := s.carts[userID]
	if !ok {
		return &models.Cart{UserID: userID, Items: []models.CartItem{}}, nil
	}

	kept := make([]models.CartItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		if product, ok := s.products[item.ProductID]; ok && product.IsActive {
			kept = append(kept, item)
		}
	}
	cart.Items = kept
	return cloneCart(cart), nil
}

func (s *memStore) Clear(ctx context.Context, userID bson.ObjectID) error {
	defer s.lock(ctx)()
	if cart, ok := s.carts[userID]; ok {
		cart.Items = []models.CartItem{}
	}
	return nil
}

func (s *memStore) RemovePurchased(ctx context.Context, userID bson.ObjectID, items []models.OrderItem) error {
	defer s.lock(ctx)()
	cart, ok := s.carts[userID]
	if !ok {
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
	return nil
}

// OrderStore port.

func (s *memStore) Insert(ctx context.Context, order *models.Order) error {
	defer s.lock(ctx)()
	if s.dupInserts > 0 {
		s.dupInserts--
		return fmt.Errorf("%w: %s", models.ErrDuplicateOrderNo, order.OrderNumber)
	}
	s.orders[order.ID] = cloneOrder(order)
	return nil
}

func (s *memStore) FindOrder(ctx context.Context, id bson.ObjectID) (*models.Order, error) {
	defer s.lock(ctx)()
	order, ok := s.orders[id]
	if !ok {
		return nil, models.ErrOrderNotFound
	}
	return cloneOrder(order), nil
}

func (s *memStore) Update(ctx context.Context, order *models.Order) error {
	defer s.lock(ctx)()
	if _, ok := s.orders[order.ID]; !ok {
		return models.ErrOrderNotFound
	}
	s.orders[order.ID] = cloneOrder(order)
	return nil
}

// UpdatePayment mirrors the targeted write: payment info only, everything
// else on the stored order stays as it is.
func (s *memStore) UpdatePayment(ctx context.Context, id bson.ObjectID, info models.PaymentInfo) error {
	defer s.lock(ctx)()
	order, ok := s.orders[id]
	if !ok {
		return models.ErrOrderNotFound
	}
	if info.PaidAt != nil {
		paidAt := *info.PaidAt
		info.PaidAt = &paidAt
	}
	order.PaymentInfo = info
	return nil
}

// orderStore adapts memStore to the OrderStore port, keeping FindByID
// distinct from the Catalog port's method of the same name.
type orderStore struct{ *memStore }

func (o orderStore) FindByID(ctx context.Context, id bson.ObjectID) (*models.Order, error) {
	return o.FindOrder(ctx, id)
}

// fakeGateway signs intents with a shared secret so tests can produce both
// genuine and tampered callback signatures.
type fakeGateway struct {
	secret  string
	mu      sync.Mutex
	intents map[string]int64
	fail    bool

	// onCreate and onVerify, when set, run during CreateIntent and
	// VerifySignature to simulate work landing elsewhere while the gateway
	// interaction is in flight.
	onCreate func()
	onVerify func()
}

func newFakeGateway(secret string) *fakeGateway {
	return &fakeGateway{secret: secret, intents: make(map[string]int64)}
}

func (g *fakeGateway) CreateIntent(ctx context.Context, amount int64, receipt string) (string, error) {
	if g.fail {
		return "", fmt.Errorf("gateway unreachable")
	}
	if g.onCreate != nil {
		g.onCreate()
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	intentID := "order_" + uuid.NewString()
	g.intents[intentID] = amount
	return intentID, nil
}

func (g *fakeGateway) VerifySignature(intentID, paymentID, signature string) bool {
	if g.onVerify != nil {
		g.onVerify()
	}
	return gateway.VerifySignature(g.secret, intentID, paymentID, signature)
}

func (g *fakeGateway) KeyID() string { return "rzp_test_key" }

// sign produces the signature a genuine gateway callback would carry.
func (g *fakeGateway) sign(intentID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(g.secret))
	mac.Write([]byte(intentID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

type fakeNotifier struct {
	mu     sync.Mutex
	placed []string
}

func (n *fakeNotifier) OrderPlaced(order *models.Order) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.placed = append(n.placed, order.OrderNumber)
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.placed)
}

// clone helpers keep the fakes honest about value semantics: callers never
// share memory with the store.

func cloneProduct(p *models.Product) *models.Product {
	clone := *p
	return &clone
}

func cloneCoupon(cp *models.Coupon) *models.Coupon {
	clone := *cp
	clone.UsedBy = append([]bson.ObjectID(nil), cp.UsedBy...)
	return &clone
}

func cloneCart(c *models.Cart) *models.Cart {
	clone := *c
	clone.Items = append([]models.CartItem(nil), c.Items...)
	return &clone
}

func cloneOrder(o *models.Order) *models.Order {
	clone := *o
	clone.Items = append([]models.OrderItem(nil), o.Items...)
	if o.PaymentInfo.PaidAt != nil {
		paidAt := *o.PaymentInfo.PaidAt
		clone.PaymentInfo.PaidAt = &paidAt
	}
	return &clone
}
