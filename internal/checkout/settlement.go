package checkout

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"

	"github.com/mvmart/go-api/pkg/models"
)

// GatewayOrder is what the buyer's client needs to open the gateway's
// payment widget.
type GatewayOrder struct {
	GatewayOrderID string  `json:"gateway_order_id"`
	Amount         int64   `json:"amount"` // minor currency units
	Currency       string  `json:"currency"`
	KeyID          string  `json:"key_id"`
	OrderNumber    string  `json:"order_number"`
	GrandTotal     float64 `json:"grand_total"`
}

// VerifyPaymentRequest is the gateway callback relayed by the buyer's client.
type VerifyPaymentRequest struct {
	OrderID          string `json:"order_id" binding:"required"`
	GatewayOrderID   string `json:"gateway_order_id" binding:"required"`
	GatewayPaymentID string `json:"gateway_payment_id" binding:"required"`
	Signature        string `json:"signature" binding:"required"`
}

// CreateGatewayOrder registers a payment intent with the gateway for an order
// awaiting gateway payment and records the intent id on the order. The
// outbound gateway call happens before any local write.
func (s *Service) CreateGatewayOrder(ctx context.Context, userID, orderID bson.ObjectID) (*GatewayOrder, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, models.ErrOrderNotFound
	}
	if order.UserID != userID {
		return nil, models.ErrForbidden
	}
	if order.PaymentInfo.Status == models.PaymentStatusPaid {
		return nil, models.ErrOrderAlreadyPaid
	}
	if order.PaymentInfo.Method != models.PaymentMethodGateway {
		return nil, models.ErrWrongPaymentMethod
	}

	amount := toMinorUnits(order.GrandTotal)
	intentID, err := s.gateway.CreateIntent(ctx, amount, order.OrderNumber)
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}

	// Only payment info is written back. The order may have moved through
	// fulfillment while the gateway call was in flight; those fields belong
	// to the sellers and must not be touched from here.
	order.PaymentInfo.GatewayOrderID = intentID
	if err := s.orders.UpdatePayment(ctx, order.ID, order.PaymentInfo); err != nil {
		return nil, fmt.Errorf("store gateway order id: %w", err)
	}

	s.logger.Info("payment intent created",
		zap.String("order_number", order.OrderNumber),
		zap.String("gateway_order_id", intentID),
		zap.Int64("amount", amount),
	)

	return &GatewayOrder{
		GatewayOrderID: intentID,
		Amount:         amount,
		Currency:       s.cfg.Currency,
		KeyID:          s.gateway.KeyID(),
		OrderNumber:    order.OrderNumber,
		GrandTotal:     order.GrandTotal,
	}, nil
}

// VerifyPayment settles a gateway payment. The callback may be delivered more
// than once: an order that is already paid is returned as-is without
// reprocessing. A bad signature marks the payment failed and mutates nothing
// else. On a good signature one transaction flips the payment to paid and
// defensively reconciles the buyer's cart against the purchased items. Stock
// was already committed at placement and is not touched here.
func (s *Service) VerifyPayment(ctx context.Context, userID bson.ObjectID, req VerifyPaymentRequest) (*models.Order, error) {
	orderID, err := bson.ObjectIDFromHex(req.OrderID)
	if err != nil {
		return nil, models.ErrOrderNotFound
	}
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, models.ErrOrderNotFound
	}
	if order.UserID != userID {
		return nil, models.ErrForbidden
	}
	if order.PaymentInfo.Status == models.PaymentStatusPaid {
		return order, nil
	}
	if order.PaymentInfo.Method != models.PaymentMethodGateway {
		return nil, models.ErrWrongPaymentMethod
	}
	if order.PaymentInfo.GatewayOrderID != req.GatewayOrderID {
		return nil, models.ErrSignatureMismatch
	}

	if !s.gateway.VerifySignature(req.GatewayOrderID, req.GatewayPaymentID, req.Signature) {
		order.PaymentInfo.Status = models.PaymentStatusFailed
		if updateErr := s.orders.UpdatePayment(ctx, order.ID, order.PaymentInfo); updateErr != nil {
			s.logger.Error("failed to record payment failure",
				zap.String("order_number", order.OrderNumber), zap.Error(updateErr))
		}
		s.logger.Warn("payment signature mismatch",
			zap.String("order_number", order.OrderNumber),
			zap.String("gateway_payment_id", req.GatewayPaymentID),
		)
		return nil, models.ErrSignatureMismatch
	}

	err = s.tx.RunTransaction(ctx, func(ctx context.Context) error {
		current, err := s.orders.FindByID(ctx, orderID)
		if err != nil {
			return models.ErrOrderNotFound
		}
		if current.PaymentInfo.Status == models.PaymentStatusPaid {
			order = current
			return nil
		}

		now := time.Now()
		current.PaymentInfo.Status = models.PaymentStatusPaid
		current.PaymentInfo.GatewayPaymentID = req.GatewayPaymentID
		current.PaymentInfo.PaidAt = &now
		if err := s.orders.UpdatePayment(ctx, current.ID, current.PaymentInfo); err != nil {
			return fmt.Errorf("mark order paid: %w", err)
		}
		if err := s.carts.RemovePurchased(ctx, userID, current.Items); err != nil {
			return fmt.Errorf("reconcile cart: %w", err)
		}
		order = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment settled",
		zap.String("order_number", order.OrderNumber),
		zap.String("gateway_payment_id", req.GatewayPaymentID),
	)
	return order, nil
}

func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
