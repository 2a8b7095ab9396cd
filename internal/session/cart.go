package session

import "sort"

// Cart is a set of product identifiers. Adding an id that is already present is a no-op.
type Cart struct {
	items map[int64]struct{}
}

func NewCart() *Cart {
	return &Cart{items: make(map[int64]struct{})}
}

// Add inserts id and reports whether it was newly inserted.
func (c *Cart) Add(id int64) bool {
	if c.items == nil {
		c.items = make(map[int64]struct{})
	}
	if _, exists := c.items[id]; exists {
		return false
	}
	c.items[id] = struct{}{}
	return true
}

func (c *Cart) Contains(id int64) bool {
	_, exists := c.items[id]
	return exists
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.items = make(map[int64]struct{})
}

func (c *Cart) Size() int {
	return len(c.items)
}

// Items returns the cart contents in ascending id order.
func (c *Cart) Items() []int64 {
	ids := make([]int64, 0, len(c.items))
	for id := range c.items {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
