package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/xenking/kart-pricing/internal/domain/product"
)

func TestLoyaltyPoints(t *testing.T) {
	tests := []struct {
		name  string
		items func(t *testing.T) []Item
		total string
		today time.Time
		want  int64
	}{
		{
			name:  "empty cart earns nothing",
			items: func(*testing.T) []Item { return nil },
			total: "50000",
			today: tuesday,
			want:  0,
		},
		{
			name:  "base only",
			items: func(t *testing.T) []Item { return []Item{item(t, product.LaptopPouchID, 1)} },
			total: "15000",
			today: monday,
			want:  15,
		},
		{
			name:  "base is floored",
			items: func(t *testing.T) []Item { return []Item{item(t, product.LaptopPouchID, 1)} },
			total: "1999.99",
			today: monday,
			want:  1,
		},
		{
			name:  "tuesday replaces base with double",
			items: func(t *testing.T) []Item { return []Item{item(t, product.LaptopPouchID, 1)} },
			total: "13500",
			today: tuesday,
			want:  26,
		},
		{
			name: "keyboard and mouse set",
			items: func(t *testing.T) []Item {
				return []Item{item(t, product.KeyboardID, 1), item(t, product.MouseID, 1)}
			},
			total: "30000",
			today: monday,
			want:  30 + 50,
		},
		{
			name: "monitor arm without the set earns no bonus",
			items: func(t *testing.T) []Item {
				return []Item{item(t, product.KeyboardID, 1), item(t, product.MonitorArmID, 1)}
			},
			total: "40000",
			today: monday,
			want:  40,
		},
		{
			name: "bonuses are not doubled",
			items: func(t *testing.T) []Item {
				return []Item{
					item(t, product.KeyboardID, 1),
					item(t, product.MouseID, 1),
					item(t, product.MonitorArmID, 1),
				}
			},
			total: "54000",
			today: tuesday,
			want:  108 + 150,
		},
		{
			name:  "tier ten",
			items: func(t *testing.T) []Item { return []Item{item(t, product.KeyboardID, 10)} },
			total: "90000",
			today: monday,
			want:  90 + 20,
		},
		{
			name:  "tier twenty",
			items: func(t *testing.T) []Item { return []Item{item(t, product.KeyboardID, 25)} },
			total: "225000",
			today: monday,
			want:  225 + 50,
		},
		{
			name:  "tier thirty wins alone",
			items: func(t *testing.T) []Item { return []Item{item(t, product.KeyboardID, 40)} },
			total: "300000",
			today: monday,
			want:  300 + 100,
		},
		{
			name:  "bonus without base",
			items: func(t *testing.T) []Item { return []Item{item(t, product.KeyboardID, 10)} },
			total: "0",
			today: tuesday,
			want:  20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LoyaltyPoints(tt.items(t), d(tt.total), tt.today)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoyaltyPoints_Doubling(t *testing.T) {
	carts := [][]Item{
		{item(t, product.KeyboardID, 3)},
		{item(t, product.KeyboardID, 1), item(t, product.MouseID, 1)},
		{item(t, product.KeyboardID, 1), item(t, product.MouseID, 1), item(t, product.MonitorArmID, 12)},
		{item(t, product.SpeakerID, 31)},
	}

	for _, items := range carts {
		total := CartTotals(items, monday).Subtotal

		plain := Default.PointsBreakdown(items, total, monday)
		doubled := Default.PointsBreakdown(items, total, tuesday)

		bonuses := plain.SetBonus + plain.FullSetBonus + plain.QuantityBonus
		assert.Equal(t, plain.Base, plain.Total-bonuses)
		assert.Equal(t, 2*plain.Base, doubled.Total-bonuses)
		assert.True(t, doubled.WeekdayDoubled)
	}
}

func TestPointsBreakdown_Details(t *testing.T) {
	items := []Item{
		item(t, product.KeyboardID, 1),
		item(t, product.MouseID, 1),
		item(t, product.MonitorArmID, 8),
	}
	pts := Default.PointsBreakdown(items, d("270000"), monday)

	assert.Equal(t, int64(270), pts.Base)
	assert.False(t, pts.WeekdayDoubled)
	assert.Equal(t, int64(50), pts.SetBonus)
	assert.Equal(t, int64(100), pts.FullSetBonus)
	assert.Equal(t, int64(20), pts.QuantityBonus)
	assert.Equal(t, int64(440), pts.Total)
	assert.Equal(t, []string{
		"base: 270p",
		"keyboard+mouse set +50p",
		"full set +100p",
		"bulk (10+) +20p",
	}, pts.Details)
}
