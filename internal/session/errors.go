package session

import (
	"fmt"

	"github.com/go-faster/errors"
)

// Sentinel errors for cart actions. State is left unchanged when any of them
// is returned.
var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidQuantity   = errors.New("quantity change must not be zero")
	ErrNotInCart         = errors.New("product is not in the cart")
)

// ProductNotFoundError indicates a requested product does not exist in the
// catalog.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// resultOf maps an action error to a short metric label.
func resultOf(err error) string {
	var notFound *ProductNotFoundError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &notFound):
		return "not_found"
	case errors.Is(err, ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, ErrInvalidQuantity):
		return "invalid_quantity"
	case errors.Is(err, ErrNotInCart):
		return "not_in_cart"
	default:
		return "error"
	}
}
