package orders

import "errors"

// Servis katmanı hataları. Handler katmanı bunları HTTP durum kodlarına çevirir.
var (
	ErrEmptyOrder        = errors.New("order must contain at least one item")
	ErrInvalidQuantity   = errors.New("item quantity must be positive")
	ErrProductNotFound   = errors.New("product not found")
	ErrTableNotFound     = errors.New("table not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrItemNotFound      = errors.New("order item not found")
	ErrItemLocked        = errors.New("order item already served")
	ErrInvalidStatus     = errors.New("unknown order status")
	ErrInvalidTransition = errors.New("status transition not allowed")
	ErrOrderClosed       = errors.New("order is in a terminal status")
	ErrReasonRequired    = errors.New("edit reason is required")
	ErrInvalidAction     = errors.New("unknown edit action")
)
