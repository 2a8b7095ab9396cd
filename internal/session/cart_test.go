package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCart_AddIsIdempotent(t *testing.T) {
	cart := NewCart()

	assert.True(t, cart.Add(1001))
	assert.False(t, cart.Add(1001))
	assert.Equal(t, 1, cart.Size())
	assert.True(t, cart.Contains(1001))
}

func TestCart_Clear(t *testing.T) {
	cart := NewCart()
	cart.Add(1001)
	cart.Add(1002)

	cart.Clear()

	assert.Equal(t, 0, cart.Size())
	assert.False(t, cart.Contains(1001))
	assert.True(t, cart.Add(1001), "cleared ids can be added again")
}

func TestCart_ItemsSorted(t *testing.T) {
	cart := NewCart()
	for _, id := range []int64{1004, 1001, 1003} {
		cart.Add(id)
	}

	assert.Equal(t, []int64{1001, 1003, 1004}, cart.Items())
}

func TestCart_ZeroValue(t *testing.T) {
	var cart Cart

	assert.False(t, cart.Contains(7))
	assert.True(t, cart.Add(7))
	assert.Equal(t, 1, cart.Size())
}
