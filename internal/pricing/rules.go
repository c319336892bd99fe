// Package pricing computes cart totals, discount labels and loyalty points.
//
// Every function here is pure: inputs are snapshots, nothing is mutated and
// the same inputs always give the same result. Discounts are applied in a
// fixed order: per-item quantity discounts, then the cart-wide bulk discount
// (which replaces per-item discounts rather than stacking with them), then
// the weekday discount on top of whichever of the two applied.
package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/xenking/kart-pricing/internal/domain/product"
)

// QuantityTier awards bonus points once the cart holds at least MinQuantity
// units in total.
type QuantityTier struct {
	MinQuantity int
	Points      int64
	Label       string
}

// Rules is the constant table the engine prices against.
type Rules struct {
	// IndividualThreshold is the per-line quantity at which IndividualRates apply.
	IndividualThreshold int
	IndividualRates     map[string]decimal.Decimal

	// BulkThreshold is the total cart quantity at which BulkRate replaces
	// per-item discounts.
	BulkThreshold int
	BulkRate      decimal.Decimal

	DiscountDay     time.Weekday
	DiscountDayRate decimal.Decimal

	// PointsUnit is the spend that earns one base point.
	PointsUnit decimal.Decimal
	// DiscountDayMultiplier replaces base points on DiscountDay.
	DiscountDayMultiplier int64

	// SetProducts earn SetBonus when all are in the cart; FullSetProducts
	// earn FullSetBonus on top of that.
	SetProducts     []string
	SetBonus        int64
	FullSetProducts []string
	FullSetBonus    int64

	// QuantityTiers must be ordered by MinQuantity, highest first. Only the
	// first matching tier is awarded.
	QuantityTiers []QuantityTier
}

// DefaultRules returns the rule table of the store.
func DefaultRules() Rules {
	return Rules{
		IndividualThreshold: 10,
		IndividualRates: map[string]decimal.Decimal{
			product.KeyboardID:    decimal.RequireFromString("0.10"),
			product.MouseID:       decimal.RequireFromString("0.15"),
			product.MonitorArmID:  decimal.RequireFromString("0.20"),
			product.LaptopPouchID: decimal.RequireFromString("0.05"),
			product.SpeakerID:     decimal.RequireFromString("0.25"),
		},

		BulkThreshold: 30,
		BulkRate:      decimal.RequireFromString("0.25"),

		DiscountDay:     time.Tuesday,
		DiscountDayRate: decimal.RequireFromString("0.10"),

		PointsUnit:            decimal.NewFromInt(1000),
		DiscountDayMultiplier: 2,

		SetProducts:     []string{product.KeyboardID, product.MouseID},
		SetBonus:        50,
		FullSetProducts: []string{product.KeyboardID, product.MouseID, product.MonitorArmID},
		FullSetBonus:    100,

		QuantityTiers: []QuantityTier{
			{MinQuantity: 30, Points: 100, Label: "bulk (30+)"},
			{MinQuantity: 20, Points: 50, Label: "bulk (20+)"},
			{MinQuantity: 10, Points: 20, Label: "bulk (10+)"},
		},
	}
}

// individualRate returns the per-item discount rate for the product at the
// given quantity.
func (r Rules) individualRate(productID string, qty int) decimal.Decimal {
	if qty < r.IndividualThreshold {
		return zero
	}
	rate, ok := r.IndividualRates[productID]
	if !ok {
		return zero
	}
	return rate
}

// isDiscountDay reports whether today earns the weekday discount.
func (r Rules) isDiscountDay(today time.Time) bool {
	return today.Weekday() == r.DiscountDay
}
