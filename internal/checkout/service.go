package checkout

import (
	"go.uber.org/zap"
)

// Config carries the pricing tunables for order placement.
type Config struct {
	// FreeShippingThreshold waives the shipping charge entirely once the
	// subtotal reaches it.
	FreeShippingThreshold float64
	// DefaultShippingCost applies per unit to items whose product has no
	// shipping cost of its own.
	DefaultShippingCost float64
	// Currency is the ISO code sent to the payment gateway.
	Currency string
}

// Service wires the checkout workflows to their collaborators.
type Service struct {
	tx       Tx
	carts    CartStore
	catalog  Catalog
	coupons  CouponLedger
	orders   OrderStore
	gateway  Gateway
	notifier Notifier
	cfg      Config
	logger   *zap.Logger
}

func NewService(tx Tx, carts CartStore, catalog Catalog, coupons CouponLedger,
	orders OrderStore, gateway Gateway, notifier Notifier, cfg Config, logger *zap.Logger) *Service {
	if cfg.Currency == "" {
		cfg.Currency = "INR"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		tx:       tx,
		carts:    carts,
		catalog:  catalog,
		coupons:  coupons,
		orders:   orders,
		gateway:  gateway,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
	}
}
