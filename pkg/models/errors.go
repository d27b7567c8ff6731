package models

import "errors"

// Business-rule errors surfaced by the order and payment workflows. Handlers
// match them with errors.Is and translate them to HTTP statuses; storage and
// workflow layers wrap them with context via %w.
var (
	ErrCartEmpty           = errors.New("cart is empty")
	ErrProductUnavailable  = errors.New("product is unavailable")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrCouponNotFound      = errors.New("coupon not found")
	ErrCouponInvalid       = errors.New("coupon is not valid")
	ErrOrderNotFound       = errors.New("order not found")
	ErrDuplicateOrderNo    = errors.New("duplicate order number")
	ErrOrderAlreadyPaid    = errors.New("order is already paid")
	ErrWrongPaymentMethod  = errors.New("order does not use gateway payment")
	ErrSignatureMismatch   = errors.New("payment signature mismatch")
	ErrOrderNotCancellable = errors.New("order can no longer be cancelled")
	ErrItemNotFound        = errors.New("order item not found")
	ErrNotItemOwner        = errors.New("item belongs to another seller")
	ErrInvalidTransition   = errors.New("invalid status change")
	ErrForbidden           = errors.New("not allowed")
)
