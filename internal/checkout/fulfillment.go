package checkout

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"

	"github.com/mvmart/go-api/pkg/models"
)

// UpdateItemStatus applies a seller-driven transition to one order item.
// Only the seller owning the item may move it, and only along the legal
// transition table. Cancelling an item restores its stock in the same
// transaction. The order-level status is re-derived afterwards.
func (s *Service) UpdateItemStatus(ctx context.Context, sellerID, orderID, itemID bson.ObjectID, req models.UpdateItemStatusRequest) (*models.Order, error) {
	var order *models.Order

	err := s.tx.RunTransaction(ctx, func(ctx context.Context) error {
		current, err := s.orders.FindByID(ctx, orderID)
		if err != nil {
			return models.ErrOrderNotFound
		}

		item := current.FindItem(itemID)
		if item == nil {
			return models.ErrItemNotFound
		}
		if item.SellerID != sellerID {
			return models.ErrNotItemOwner
		}
		if !models.CanTransitionItem(item.Status, req.Status) {
			return fmt.Errorf("%w: %s -> %s", models.ErrInvalidTransition, item.Status, req.Status)
		}

		item.Status = req.Status
		if req.TrackingID != "" {
			item.TrackingID = req.TrackingID
		}
		if req.Status == models.StatusCancelled {
			if err := s.catalog.RestoreStock(ctx, item.ProductID, item.Quantity); err != nil {
				return fmt.Errorf("restore stock: %w", err)
			}
		}

		current.DeriveStatus()
		current.SetTimestamps()
		if err := s.orders.Update(ctx, current); err != nil {
			return fmt.Errorf("update order: %w", err)
		}
		order = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("item status updated",
		zap.String("order_number", order.OrderNumber),
		zap.String("item_id", itemID.Hex()),
		zap.String("status", req.Status),
	)
	return order, nil
}

// CancelOrder is the buyer-initiated, order-wide cancellation. It is allowed
// while the order is neither delivered nor cancelled; it forces every item to
// cancelled and restores stock for every item order-wide, including any the
// seller had already cancelled individually.
func (s *Service) CancelOrder(ctx context.Context, buyerID, orderID bson.ObjectID, reason string) (*models.Order, error) {
	var order *models.Order

	err := s.tx.RunTransaction(ctx, func(ctx context.Context) error {
		current, err := s.orders.FindByID(ctx, orderID)
		if err != nil {
			return models.ErrOrderNotFound
		}
		if current.UserID != buyerID {
			return models.ErrForbidden
		}
		if !current.CanBeCancelled() {
			return models.ErrOrderNotCancellable
		}

		for _, item := range current.Items {
			if err := s.catalog.RestoreStock(ctx, item.ProductID, item.Quantity); err != nil {
				return fmt.Errorf("restore stock: %w", err)
			}
		}

		current.CancelAll(reason)
		if err := s.orders.Update(ctx, current); err != nil {
			return fmt.Errorf("update order: %w", err)
		}
		order = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order cancelled",
		zap.String("order_number", order.OrderNumber),
		zap.String("user_id", buyerID.Hex()),
		zap.String("reason", reason),
	)
	return order, nil
}
