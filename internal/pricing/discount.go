package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/xenking/kart-pricing/internal/domain/cart"
	"github.com/xenking/kart-pricing/internal/domain/product"
)

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
	zero    = decimal.Zero
)

// Item is a cart line resolved against the catalog.
type Item struct {
	Product  product.Product
	Quantity int
}

// ItemDiscount is a per-line discount entry shown to the customer.
type ItemDiscount struct {
	ProductID string
	Name      string
	// Percent is the individual discount rate rounded to a whole percent.
	Percent int64
}

// Summary is the result of pricing a cart.
type Summary struct {
	Subtotal      decimal.Decimal
	TotalQuantity int
	// Total is the payable amount, floored to whole currency units.
	Total int64
	// DiscountRate is the effective discount relative to Subtotal.
	DiscountRate decimal.Decimal
	// DiscountLabel is DiscountRate as a one-decimal percentage, or "".
	DiscountLabel  string
	BulkApplied    bool
	WeekdayApplied bool
	ItemDiscounts  []ItemDiscount
	LoyaltyPoints  int64
	Points         Points
}

// Lookup resolves product IDs against a catalog snapshot.
type Lookup interface {
	Get(id string) (product.Product, bool)
}

// Engine prices carts against a fixed rule table.
type Engine struct {
	rules Rules
}

// NewEngine creates an Engine for the given rules.
func NewEngine(rules Rules) *Engine {
	return &Engine{rules: rules}
}

// Default prices against DefaultRules.
var Default = NewEngine(DefaultRules())

// Rules returns the engine's rule table.
func (e *Engine) Rules() Rules {
	return e.rules
}

// Resolve attaches catalog products to cart lines. Lines whose product is
// unknown or whose quantity is not positive are dropped.
func Resolve(lines []cart.Line, catalog Lookup) []Item {
	items := make([]Item, 0, len(lines))
	for _, l := range lines {
		if l.Quantity <= 0 {
			continue
		}
		p, ok := catalog.Get(l.ProductID)
		if !ok {
			continue
		}
		items = append(items, Item{Product: p, Quantity: l.Quantity})
	}
	return items
}

// ItemDiscount returns the line total at the product's current price and the
// individual discount rate earned by the quantity.
func (e *Engine) ItemDiscount(p product.Product, qty int) (itemTotal, rate decimal.Decimal) {
	itemTotal = p.Price.Mul(decimal.NewFromInt(int64(qty)))
	rate = e.rules.individualRate(p.ID, qty)
	return itemTotal, rate
}

// ItemDiscounts lists lines that reached the individual discount threshold.
func (e *Engine) ItemDiscounts(items []Item) []ItemDiscount {
	var out []ItemDiscount
	for _, it := range items {
		if it.Quantity < e.rules.IndividualThreshold {
			continue
		}
		_, rate := e.ItemDiscount(it.Product, it.Quantity)
		out = append(out, ItemDiscount{
			ProductID: it.Product.ID,
			Name:      it.Product.Name,
			Percent:   rate.Mul(hundred).Round(0).IntPart(),
		})
	}
	return out
}

// CartTotals prices the cart for the given day.
func (e *Engine) CartTotals(items []Item, today time.Time) Summary {
	items = validItems(items)
	if len(items) == 0 {
		return Summary{Subtotal: zero, DiscountRate: zero}
	}

	subtotal := zero
	afterIndividual := zero
	totalQty := 0
	for _, it := range items {
		itemTotal, rate := e.ItemDiscount(it.Product, it.Quantity)
		subtotal = subtotal.Add(itemTotal)
		afterIndividual = afterIndividual.Add(itemTotal.Mul(one.Sub(rate)))
		totalQty += it.Quantity
	}

	// Bulk replaces per-item discounts outright, even when smaller.
	running := afterIndividual
	bulk := totalQty >= e.rules.BulkThreshold
	if bulk {
		running = subtotal.Mul(one.Sub(e.rules.BulkRate))
	}

	weekday := e.rules.isDiscountDay(today)
	if weekday {
		running = running.Mul(one.Sub(e.rules.DiscountDayRate))
	}

	rate := effectiveRate(subtotal, running)
	points := e.loyaltyPoints(items, running, today)

	return Summary{
		Subtotal:       subtotal,
		TotalQuantity:  totalQty,
		Total:          running.Floor().IntPart(),
		DiscountRate:   rate,
		DiscountLabel:  discountLabel(rate),
		BulkApplied:    bulk,
		WeekdayApplied: weekday,
		ItemDiscounts:  e.ItemDiscounts(items),
		LoyaltyPoints:  points.Total,
		Points:         points,
	}
}

// validItems drops lines that cannot contribute to a total.
func validItems(items []Item) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if it.Quantity > 0 && it.Product.ID != "" {
			out = append(out, it)
		}
	}
	return out
}

// effectiveRate returns (subtotal-total)/subtotal, or zero for an empty subtotal.
func effectiveRate(subtotal, total decimal.Decimal) decimal.Decimal {
	if subtotal.IsZero() {
		return zero
	}
	return subtotal.Sub(total).Div(subtotal)
}

func discountLabel(rate decimal.Decimal) string {
	if !rate.IsPositive() {
		return ""
	}
	return rate.Mul(hundred).StringFixed(1) + "%"
}

// CartTotals prices items with DefaultRules.
func CartTotals(items []Item, today time.Time) Summary {
	return Default.CartTotals(items, today)
}
