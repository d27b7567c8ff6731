package checkout

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"

	"github.com/mvmart/go-api/pkg/models"
)

// PlaceOrder converts the buyer's cart into an order. Everything up to and
// including clearing the cart runs in one transaction: cart load, product
// checks, coupon redemption, the conditional stock decrement for every item,
// and the order insert either all commit or all roll back. Stock is committed
// here for both payment methods; gateway verification later only confirms
// payment (single commit point, see DESIGN.md).
func (s *Service) PlaceOrder(ctx context.Context, userID bson.ObjectID, req models.PlaceOrderRequest) (*models.Order, error) {
	var order *models.Order

	err := s.tx.RunTransaction(ctx, func(ctx context.Context) error {
		cart, err := s.carts.Get(ctx, userID)
		if err != nil {
			return fmt.Errorf("load cart: %w", err)
		}
		if cart.IsEmpty() {
			return models.ErrCartEmpty
		}

		products := make(map[bson.ObjectID]*models.Product, len(cart.Items))
		for _, item := range cart.Items {
			product, err := s.catalog.FindByID(ctx, item.ProductID)
			if err != nil || product == nil || !product.IsActive {
				return fmt.Errorf("%w: %s", models.ErrProductUnavailable, item.ProductID.Hex())
			}
			if item.Quantity > product.Stock {
				return fmt.Errorf("%w: %s", models.ErrInsufficientStock, product.Name)
			}
			products[item.ProductID] = product
		}

		subtotal, shippingCharge := s.priceCart(cart, products)

		var discount float64
		var appliedCoupon string
		if req.CouponCode != "" {
			discount, appliedCoupon = s.applyCoupon(ctx, req.CouponCode, userID, subtotal)
		}

		// The authoritative stock check. A single failure aborts the whole
		// transaction, rolling back every decrement made so far.
		for _, item := range cart.Items {
			if err := s.catalog.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
				return fmt.Errorf("%w: %s", models.ErrInsufficientStock, products[item.ProductID].Name)
			}
		}

		order = buildOrder(userID, cart, products, req)
		order.Subtotal = subtotal
		order.ShippingCharge = shippingCharge
		order.Discount = discount
		order.Coupon = appliedCoupon
		order.CalculateGrandTotal()

		if err := s.orders.Insert(ctx, order); err != nil {
			if !errors.Is(err, models.ErrDuplicateOrderNo) {
				return fmt.Errorf("insert order: %w", err)
			}
			// The random suffix collided with an existing order. One
			// regeneration is enough; a second collision in a row means
			// something else is wrong.
			order.OrderNumber = models.GenerateOrderNumber()
			if err := s.orders.Insert(ctx, order); err != nil {
				return fmt.Errorf("insert order: %w", err)
			}
		}
		if err := s.carts.Clear(ctx, userID); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order placed",
		zap.String("order_number", order.OrderNumber),
		zap.String("user_id", userID.Hex()),
		zap.Float64("grand_total", order.GrandTotal),
		zap.String("payment_method", order.PaymentInfo.Method),
	)

	// Post-commit, fire-and-forget. A failed notification never fails the order.
	s.notifier.OrderPlaced(order)

	return order, nil
}

// priceCart computes the subtotal and shipping charge from current product
// prices. Shipping is waived entirely once the subtotal reaches the
// free-shipping threshold.
func (s *Service) priceCart(cart *models.Cart, products map[bson.ObjectID]*models.Product) (subtotal, shipping float64) {
	for _, item := range cart.Items {
		product := products[item.ProductID]
		subtotal += product.Price * float64(item.Quantity)
		shipping += product.UnitShippingCost(s.cfg.DefaultShippingCost) * float64(item.Quantity)
	}
	if subtotal >= s.cfg.FreeShippingThreshold {
		shipping = 0
	}
	return subtotal, shipping
}

// applyCoupon validates and redeems the code against the subtotal. Coupon
// failures are deliberately non-fatal: an invalid, expired, or exhausted code
// places the order with no discount instead of failing it.
func (s *Service) applyCoupon(ctx context.Context, code string, userID bson.ObjectID, subtotal float64) (float64, string) {
	coupon, err := s.coupons.FindByCode(ctx, code)
	if err != nil {
		s.logger.Warn("coupon lookup failed, placing order without discount",
			zap.String("code", code), zap.Error(err))
		return 0, ""
	}
	if check := coupon.IsValid(userID, subtotal); !check.Valid {
		s.logger.Warn("coupon rejected, placing order without discount",
			zap.String("code", code), zap.String("reason", check.Reason))
		return 0, ""
	}
	if err := s.coupons.Redeem(ctx, code, userID); err != nil {
		s.logger.Warn("coupon redemption lost the race, placing order without discount",
			zap.String("code", code), zap.Error(err))
		return 0, ""
	}
	return coupon.CalculateDiscount(subtotal), coupon.Code
}

func buildOrder(userID bson.ObjectID, cart *models.Cart, products map[bson.ObjectID]*models.Product, req models.PlaceOrderRequest) *models.Order {
	items := make([]models.OrderItem, 0, len(cart.Items))
	for _, cartItem := range cart.Items {
		product := products[cartItem.ProductID]
		items = append(items, models.OrderItem{
			ItemID:    bson.NewObjectID(),
			ProductID: product.ID,
			SellerID:  product.SellerID,
			Name:      product.Name,
			Image:     product.Image,
			Price:     product.Price,
			MRP:       product.MRP,
			Quantity:  cartItem.Quantity,
			Size:      cartItem.Size,
			Color:     cartItem.Color,
			Status:    models.StatusPending,
		})
	}

	order := &models.Order{
		ID:              bson.NewObjectID(),
		OrderNumber:     models.GenerateOrderNumber(),
		UserID:          userID,
		Items:           items,
		ShippingAddress: req.ShippingAddress,
		PaymentInfo: models.PaymentInfo{
			Method: req.PaymentMethod,
			Status: models.PaymentStatusPending,
		},
		Status: models.StatusPending,
		Notes:  req.Notes,
	}
	order.SetTimestamps()
	return order
}
