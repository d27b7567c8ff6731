// Package notify runs the post-commit notification hooks. Dispatch is
// enqueue-and-forget: order placement never waits on a hook and never fails
// because of one, but every hook failure is logged so it can be replayed.
package notify

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mvmart/go-api/pkg/models"
)

// Hook is one post-commit step, e.g. sending the order confirmation through
// the external email collaborator.
type Hook func(ctx context.Context, order *models.Order) error

type Dispatcher struct {
	hooks  []Hook
	queue  chan *models.Order
	logger *zap.Logger
}

// NewDispatcher starts a dispatcher draining a buffered queue with the given
// ordered hook list.
func NewDispatcher(logger *zap.Logger, hooks ...Hook) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Dispatcher{
		hooks:  hooks,
		queue:  make(chan *models.Order, 128),
		logger: logger,
	}
	go d.drain()
	return d
}

// OrderPlaced enqueues the order for the hook list. If the queue is full the
// notification is dropped and logged rather than blocking the caller.
func (d *Dispatcher) OrderPlaced(order *models.Order) {
	select {
	case d.queue <- order:
	default:
		d.logger.Warn("notification queue full, dropping order confirmation",
			zap.String("order_number", order.OrderNumber))
	}
}

func (d *Dispatcher) drain() {
	for order := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		for _, hook := range d.hooks {
			if err := hook(ctx, order); err != nil {
				d.logger.Error("notification hook failed",
					zap.String("order_number", order.OrderNumber),
					zap.Error(err))
			}
		}
		cancel()
	}
}

// LogConfirmation is the default hook: it records the confirmation in the
// structured log. The real email dispatch lives in an external service.
func LogConfirmation(logger *zap.Logger) Hook {
	return func(ctx context.Context, order *models.Order) error {
		logger.Info("order confirmation dispatched",
			zap.String("order_number", order.OrderNumber),
			zap.String("user_id", order.UserID.Hex()),
			zap.Float64("grand_total", order.GrandTotal),
		)
		return nil
	}
}
