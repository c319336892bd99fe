package pricing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Points is the loyalty reward for a cart with its breakdown.
type Points struct {
	// Base is one point per PointsUnit of the discounted total.
	Base int64
	// WeekdayDoubled is set when Base was multiplied on the discount day.
	WeekdayDoubled bool
	SetBonus       int64
	FullSetBonus   int64
	QuantityBonus  int64
	Total          int64
	// Details lists the awarded components in display order.
	Details []string
}

// LoyaltyPoints computes the reward points for items given the final,
// unfloored cart total.
func (e *Engine) LoyaltyPoints(items []Item, finalTotal decimal.Decimal, today time.Time) int64 {
	return e.loyaltyPoints(validItems(items), finalTotal, today).Total
}

// PointsBreakdown is LoyaltyPoints with the per-component breakdown.
func (e *Engine) PointsBreakdown(items []Item, finalTotal decimal.Decimal, today time.Time) Points {
	return e.loyaltyPoints(validItems(items), finalTotal, today)
}

func (e *Engine) loyaltyPoints(items []Item, finalTotal decimal.Decimal, today time.Time) Points {
	var pts Points
	if len(items) == 0 {
		return pts
	}

	pts.Base = basePoints(finalTotal, e.rules.PointsUnit)
	earned := pts.Base
	if pts.Base > 0 {
		pts.Details = append(pts.Details, fmt.Sprintf("base: %dp", pts.Base))
	}

	// The multiplier replaces base points; bonuses below are never multiplied.
	if e.rules.isDiscountDay(today) && pts.Base > 0 {
		earned = pts.Base * e.rules.DiscountDayMultiplier
		pts.WeekdayDoubled = true
		pts.Details = append(pts.Details, fmt.Sprintf("%s x%d", weekdayName(e.rules.DiscountDay), e.rules.DiscountDayMultiplier))
	}

	held := make(map[string]bool, len(items))
	totalQty := 0
	for _, it := range items {
		held[it.Product.ID] = true
		totalQty += it.Quantity
	}

	if holdsAll(held, e.rules.SetProducts) {
		pts.SetBonus = e.rules.SetBonus
		pts.Details = append(pts.Details, fmt.Sprintf("keyboard+mouse set +%dp", pts.SetBonus))
	}
	if holdsAll(held, e.rules.FullSetProducts) {
		pts.FullSetBonus = e.rules.FullSetBonus
		pts.Details = append(pts.Details, fmt.Sprintf("full set +%dp", pts.FullSetBonus))
	}

	for _, tier := range e.rules.QuantityTiers {
		if totalQty >= tier.MinQuantity {
			pts.QuantityBonus = tier.Points
			pts.Details = append(pts.Details, fmt.Sprintf("%s +%dp", tier.Label, tier.Points))
			break
		}
	}

	pts.Total = earned + pts.SetBonus + pts.FullSetBonus + pts.QuantityBonus
	return pts
}

func basePoints(total, unit decimal.Decimal) int64 {
	if unit.IsZero() || !total.IsPositive() {
		return 0
	}
	return total.Div(unit).Floor().IntPart()
}

func holdsAll(held map[string]bool, ids []string) bool {
	if len(ids) == 0 {
		return false
	}
	for _, id := range ids {
		if !held[id] {
			return false
		}
	}
	return true
}

func weekdayName(d time.Weekday) string {
	return map[time.Weekday]string{
		time.Sunday:    "sunday",
		time.Monday:    "monday",
		time.Tuesday:   "tuesday",
		time.Wednesday: "wednesday",
		time.Thursday:  "thursday",
		time.Friday:    "friday",
		time.Saturday:  "saturday",
	}[d]
}

// LoyaltyPoints computes reward points with DefaultRules.
func LoyaltyPoints(items []Item, finalTotal decimal.Decimal, today time.Time) int64 {
	return Default.LoyaltyPoints(items, finalTotal, today)
}
