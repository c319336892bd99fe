package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Well-known product identifiers of the demo catalog. Pricing rules key on them.
const (
	KeyboardID    = "p1"
	MouseID       = "p2"
	MonitorArmID  = "p3"
	LaptopPouchID = "p4"
	SpeakerID     = "p5"
)

// Product represents a catalog item with its live stock and sale state.
type Product struct {
	ID   string
	Name string
	// Price is the current unit price, already adjusted by any active sale.
	Price decimal.Decimal
	// OriginalPrice is the unit price before any sale.
	OriginalPrice decimal.Decimal
	Stock         int
	OnSale        bool
	SuggestSale   bool
}

// Discounted reports whether any sale is currently applied to the product.
func (p Product) Discounted() bool {
	return p.OnSale || p.SuggestSale
}

// SaleUpdate carries the sale fields to merge into a product. Nil fields are
// left untouched.
type SaleUpdate struct {
	Price       *decimal.Decimal
	OnSale      *bool
	SuggestSale *bool
}

// SalePick chooses a product and the sale change to apply to it from a
// consistent view of the catalog. ok is false when nothing qualifies.
type SalePick func(products []Product, lastSelected string) (id string, u SaleUpdate, ok bool)

// CanAddToCart reports whether qty units can be taken from the product's stock.
func CanAddToCart(p Product, qty int) bool {
	return p.Stock >= qty
}

// AdjustStock returns a copy of p with stock moved by delta, clamped at zero.
func AdjustStock(p Product, delta int) Product {
	p.Stock = max(0, p.Stock+delta)
	return p
}

// ApplySaleStatus returns a copy of p with the provided sale fields merged in.
func ApplySaleStatus(p Product, u SaleUpdate) Product {
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.OnSale != nil {
		p.OnSale = *u.OnSale
	}
	if u.SuggestSale != nil {
		p.SuggestSale = *u.SuggestSale
	}
	return p
}

// Repository defines read operations for a catalog source.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
}
