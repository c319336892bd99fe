package product

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStockStatusReport(t *testing.T) {
	products := []Product{
		{ID: "a", Name: "Alpha", Stock: 0},
		{ID: "b", Name: "Bravo", Stock: 4},
		{ID: "c", Name: "Charlie", Stock: 5},
		{ID: "d", Name: "Delta", Stock: 1},
		{ID: "e", Name: "Echo", Stock: 100},
	}

	got := StockStatusReport(products)

	assert.Equal(t, []string{
		"Alpha: out of stock",
		"Bravo: low stock (4 left)",
		"Delta: low stock (1 left)",
	}, got)
}

func TestStockStatusReport_AllStocked(t *testing.T) {
	got := StockStatusReport([]Product{{Name: "A", Stock: 5}, {Name: "B", Stock: 9}})
	assert.Empty(t, got)
}

func TestStockStatusReport_DefaultCatalog(t *testing.T) {
	got := StockStatusReport(DefaultCatalog())
	assert.Equal(t, []string{"Error-proof laptop pouch: out of stock"}, got)
}

func TestTotalStock(t *testing.T) {
	products := DefaultCatalog()
	assert.Equal(t, 110, TotalStock(products))
	assert.False(t, LowTotalStock(products))

	assert.True(t, LowTotalStock([]Product{{Stock: 20}, {Stock: 29}}))
	assert.False(t, LowTotalStock([]Product{{Stock: 20}, {Stock: 30}}))
}

func TestFirstAvailable(t *testing.T) {
	p, ok := FirstAvailable([]Product{{ID: "a"}, {ID: "b", Stock: 2}, {ID: "c", Stock: 3}})
	assert.True(t, ok)
	assert.Equal(t, "b", p.ID)

	_, ok = FirstAvailable([]Product{{ID: "a"}})
	assert.False(t, ok)
}
