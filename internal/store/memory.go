package store

import (
	"context"
	"slices"
	"sync"
)

// MemoryCollection is an ordered in-process map. Records are copied on the
// way in and out.
type MemoryCollection[T Record] struct {
	mu    sync.RWMutex
	items map[string]T
	order []string
}

// NewMemoryCollection returns an empty collection.
func NewMemoryCollection[T Record]() *MemoryCollection[T] {
	return &MemoryCollection[T]{items: make(map[string]T)}
}

// Get returns the record with the given id.
func (c *MemoryCollection[T]) Get(_ context.Context, id string) (T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	v, ok := c.items[id]
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	return clone(v), nil
}

// List returns a snapshot of every record in insertion order.
func (c *MemoryCollection[T]) List(_ context.Context) ([]T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]T, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, clone(c.items[id]))
	}
	return out, nil
}

// Put inserts or replaces the record.
func (c *MemoryCollection[T]) Put(_ context.Context, rec T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := rec.RecordID()
	if _, exists := c.items[id]; !exists {
		c.order = append(c.order, id)
	}
	c.items[id] = clone(rec)
	return nil
}

// Delete removes the record.
func (c *MemoryCollection[T]) Delete(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.items[id]; !ok {
		return ErrNotFound
	}
	delete(c.items, id)
	if i := slices.Index(c.order, id); i >= 0 {
		c.order = slices.Delete(c.order, i, i+1)
	}
	return nil
}

// Len returns the number of records.
func (c *MemoryCollection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
