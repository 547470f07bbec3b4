package domain

import "errors"

// Sentinel errors for order construction. Book-level rejections (duplicate
// id, unmatchable market order, unsatisfiable fill_and_kill/fill_or_kill)
// are not errors: the book signals them by returning no trades.
var (
	ErrInvalidPrice        = errors.New("invalid_price")
	ErrInvalidQuantity     = errors.New("invalid_quantity")
	ErrMarketOrderHasPrice = errors.New("market_order_has_price")
)

// ValidationError represents a request validation failure in the HTTP layer.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
