package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCart_Lifecycle(t *testing.T) {
	c := New()
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 0, c.Quantity("p1"))

	c.Add("p1", 1)
	c.Add("p2", 2)
	c.Add("p1", 1)

	assert.Equal(t, 2, c.Quantity("p1"))
	assert.Equal(t, 2, c.Quantity("p2"))
	assert.Equal(t, 4, c.TotalQuantity())
	assert.Equal(t, []Line{{ProductID: "p1", Quantity: 2}, {ProductID: "p2", Quantity: 2}}, c.Lines())

	c.Set("p1", 0)
	assert.False(t, c.Has("p1"))
	assert.Equal(t, []Line{{ProductID: "p2", Quantity: 2}}, c.Lines())
}

func TestCart_AddIgnoresNonPositive(t *testing.T) {
	c := New()
	c.Add("p1", 0)
	c.Add("p1", -3)
	assert.Equal(t, 0, c.Len())
}

func TestCart_RemoveKeepsOrder(t *testing.T) {
	c := New()
	c.Add("a", 1)
	c.Add("b", 2)
	c.Add("c", 3)

	qty := c.Remove("b")
	assert.Equal(t, 2, qty)
	assert.Equal(t, []Line{{ProductID: "a", Quantity: 1}, {ProductID: "c", Quantity: 3}}, c.Lines())

	// Index must still resolve after the shift.
	c.Add("c", 1)
	assert.Equal(t, 4, c.Quantity("c"))

	assert.Equal(t, 0, c.Remove("missing"))
}

func TestCart_CloneIsIndependent(t *testing.T) {
	c := New()
	c.Add("a", 1)

	clone := c.Clone()
	c.Add("a", 5)
	c.Add("b", 1)

	require.Equal(t, 1, clone.Len())
	assert.Equal(t, 1, clone.Quantity("a"))
}

func TestCart_LinesIsCopy(t *testing.T) {
	c := New()
	c.Add("a", 1)

	lines := c.Lines()
	lines[0].Quantity = 99
	assert.Equal(t, 1, c.Quantity("a"))
}
