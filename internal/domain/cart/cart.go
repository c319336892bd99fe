// Package cart holds the shopping cart model: quantities per product, kept
// apart from catalog stock bookkeeping.
package cart

// Line is a single cart entry. A line with a non-positive quantity does not
// exist.
type Line struct {
	ProductID string
	Quantity  int
}

// Cart is an ordered set of lines keyed by product ID. Insertion order is
// kept for display only.
type Cart struct {
	lines []Line
	index map[string]int
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{index: make(map[string]int)}
}

// Quantity returns the quantity held for the product, zero when absent.
func (c *Cart) Quantity(productID string) int {
	i, ok := c.index[productID]
	if !ok {
		return 0
	}
	return c.lines[i].Quantity
}

// Has reports whether the cart holds a line for the product.
func (c *Cart) Has(productID string) bool {
	_, ok := c.index[productID]
	return ok
}

// Add increases the product's quantity by qty, creating the line on first
// add. Non-positive qty is ignored.
func (c *Cart) Add(productID string, qty int) {
	if qty <= 0 {
		return
	}
	c.Set(productID, c.Quantity(productID)+qty)
}

// Set stores the quantity for the product. A quantity of zero or less
// removes the line.
func (c *Cart) Set(productID string, qty int) {
	if qty <= 0 {
		c.Remove(productID)
		return
	}
	if i, ok := c.index[productID]; ok {
		c.lines[i].Quantity = qty
		return
	}
	c.index[productID] = len(c.lines)
	c.lines = append(c.lines, Line{ProductID: productID, Quantity: qty})
}

// Remove deletes the product's line and returns the quantity it held.
func (c *Cart) Remove(productID string) int {
	i, ok := c.index[productID]
	if !ok {
		return 0
	}
	qty := c.lines[i].Quantity
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	delete(c.index, productID)
	for j := i; j < len(c.lines); j++ {
		c.index[c.lines[j].ProductID] = j
	}
	return qty
}

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Len returns the number of lines.
func (c *Cart) Len() int {
	return len(c.lines)
}

// TotalQuantity sums quantities across lines.
func (c *Cart) TotalQuantity() int {
	return TotalQuantity(c.lines)
}

// Clone returns an independent copy of the cart.
func (c *Cart) Clone() *Cart {
	out := New()
	for _, l := range c.lines {
		out.Set(l.ProductID, l.Quantity)
	}
	return out
}

// TotalQuantity sums quantities across the given lines.
func TotalQuantity(lines []Line) int {
	total := 0
	for _, l := range lines {
		total += l.Quantity
	}
	return total
}
