package product

import "fmt"

const (
	// LowStockThreshold is the stock level below which a product is reported
	// as running low.
	LowStockThreshold = 5
	// LowTotalStockThreshold is the catalog-wide stock level below which the
	// whole inventory is flagged.
	LowTotalStockThreshold = 50
)

// OutOfStock reports whether the product has no stock left.
func OutOfStock(p Product) bool {
	return p.Stock <= 0
}

// LowStock reports whether the product is in stock but below LowStockThreshold.
func LowStock(p Product) bool {
	return p.Stock > 0 && p.Stock < LowStockThreshold
}

// StockStatus returns the status message for a single product, or "" when
// the product is sufficiently stocked.
func StockStatus(p Product) string {
	switch {
	case OutOfStock(p):
		return fmt.Sprintf("%s: out of stock", p.Name)
	case LowStock(p):
		return fmt.Sprintf("%s: low stock (%d left)", p.Name, p.Stock)
	default:
		return ""
	}
}

// StockStatusReport returns status messages for out-of-stock and low-stock
// products, in catalog order.
func StockStatusReport(products []Product) []string {
	var report []string
	for _, p := range products {
		if msg := StockStatus(p); msg != "" {
			report = append(report, msg)
		}
	}
	return report
}

// TotalStock sums stock across products.
func TotalStock(products []Product) int {
	total := 0
	for _, p := range products {
		total += p.Stock
	}
	return total
}

// LowTotalStock reports whether the catalog as a whole is running low.
func LowTotalStock(products []Product) bool {
	return TotalStock(products) < LowTotalStockThreshold
}

// FirstAvailable returns the first product with stock left.
func FirstAvailable(products []Product) (Product, bool) {
	for _, p := range products {
		if !OutOfStock(p) {
			return p, true
		}
	}
	return Product{}, false
}
