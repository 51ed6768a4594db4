package depot

import "fmt"

// Cache is a small string-keyed registry with a fixed capacity, used for
// name-based handle lookups (inspectors, serializers).
type Cache[T any] interface {
	GetIndex(string) (int, bool)
	GetItem(int) *T
	GetItem32(uint32) *T
	Register(string, T) (int, error)
}

var _ Cache[any] = &SimpleCache[any]{}

// SimpleCache implements Cache over a slice and an index map. Indices are
// assigned in registration order and stay stable until Clear.
type SimpleCache[T any] struct {
	items       []T
	itemIndices map[string]int
	maxCapacity int
}

// GetIndex returns the slot assigned to a key, if the key was registered.
func (c *SimpleCache[T]) GetIndex(key string) (int, bool) {
	if idx, registered := c.itemIndices[key]; registered {
		return idx, true
	}
	return 0, false
}

// GetItem returns the item stored in a slot.
func (c *SimpleCache[T]) GetItem(index int) *T {
	return &c.items[index]
}

// GetItem32 is GetItem for callers holding unsigned indices.
func (c *SimpleCache[T]) GetItem32(index uint32) *T {
	return &c.items[int(index)]
}

// Register stores an item under a key and returns its slot. Re-registering
// a key overwrites the item in place and keeps its slot; new keys past the
// capacity are rejected.
func (c *SimpleCache[T]) Register(key string, item T) (int, error) {
	if idx, registered := c.itemIndices[key]; registered {
		c.items[idx] = item
		return idx, nil
	}
	if len(c.itemIndices) >= c.maxCapacity {
		return -1, fmt.Errorf("cache at maximum capacity (%d)", c.maxCapacity)
	}

	idx := len(c.items)
	c.itemIndices[key] = idx
	c.items = append(c.items, item)

	return idx, nil
}

// Clear drops every registration, keeping the capacity.
func (c *SimpleCache[T]) Clear() {
	c.items = c.items[:0]
	c.itemIndices = make(map[string]int)
}

// FactoryNewCache creates a new Cache with the specified capacity.
func FactoryNewCache[T any](cap int) Cache[T] {
	return &SimpleCache[T]{
		itemIndices: make(map[string]int),
		maxCapacity: cap,
	}
}
