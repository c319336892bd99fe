package product

import (
	"context"

	"github.com/shopspring/decimal"
)

// Catalog is an ordered product list. Order is display order.
type Catalog struct {
	products []Product
	index    map[string]int
}

// NewCatalog builds a catalog from products, keeping their order. Later
// duplicates of an ID replace earlier ones in place.
func NewCatalog(products []Product) *Catalog {
	c := &Catalog{
		products: make([]Product, 0, len(products)),
		index:    make(map[string]int, len(products)),
	}
	for _, p := range products {
		if i, ok := c.index[p.ID]; ok {
			c.products[i] = p
			continue
		}
		c.index[p.ID] = len(c.products)
		c.products = append(c.products, p)
	}
	return c
}

// Get returns the product with the given ID.
func (c *Catalog) Get(id string) (Product, bool) {
	i, ok := c.index[id]
	if !ok {
		return Product{}, false
	}
	return c.products[i], true
}

// Set replaces the stored product with the same ID. It reports false when the
// ID is unknown.
func (c *Catalog) Set(p Product) bool {
	i, ok := c.index[p.ID]
	if !ok {
		return false
	}
	c.products[i] = p
	return true
}

// Products returns a copy of the products in catalog order.
func (c *Catalog) Products() []Product {
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

// Len returns the number of products.
func (c *Catalog) Len() int {
	return len(c.products)
}

// Clone returns an independent copy of the catalog.
func (c *Catalog) Clone() *Catalog {
	return NewCatalog(c.products)
}

// DefaultCatalog returns the demo catalog the application starts with.
func DefaultCatalog() []Product {
	return []Product{
		newProduct(KeyboardID, "Bug-free keyboard", 10000, 50),
		newProduct(MouseID, "Productivity mouse", 20000, 30),
		newProduct(MonitorArmID, "Posture-saving monitor arm", 30000, 20),
		newProduct(LaptopPouchID, "Error-proof laptop pouch", 15000, 0),
		newProduct(SpeakerID, "Lo-Fi coding speaker", 25000, 10),
	}
}

func newProduct(id, name string, price int64, stock int) Product {
	return Product{
		ID:            id,
		Name:          name,
		Price:         decimal.NewFromInt(price),
		OriginalPrice: decimal.NewFromInt(price),
		Stock:         stock,
	}
}

// StaticRepository serves a fixed product list.
type StaticRepository struct {
	products []Product
}

var _ Repository = (*StaticRepository)(nil)

// NewStaticRepository returns a Repository over the given products.
func NewStaticRepository(products []Product) *StaticRepository {
	return &StaticRepository{products: products}
}

// List returns a copy of the stored products.
func (r *StaticRepository) List(_ context.Context) ([]Product, error) {
	out := make([]Product, len(r.products))
	copy(out, r.products)
	return out, nil
}
