package status

import (
	"sort"
	"sync"
)

// Table maps metric names to stable pointers of T
// Lookups after the first are read-locked only; callers are expected to cache the pointer
type Table[T any] struct {
	mu    sync.RWMutex
	items map[string]*T
}

func NewTable[T any]() *Table[T] {
	return &Table[T]{items: make(map[string]*T)}
}

// Get returns the value for name, allocating it on first use
func (t *Table[T]) Get(name string) *T {
	t.mu.RLock()
	ptr, ok := t.items[name]
	t.mu.RUnlock()
	if ok {
		return ptr
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if ptr, ok := t.items[name]; ok {
		return ptr
	}
	ptr = new(T)
	t.items[name] = ptr
	return ptr
}

// Lookup returns the value for name without allocating
func (t *Table[T]) Lookup(name string) (*T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ptr, ok := t.items[name]
	return ptr, ok
}

// Range visits every entry in name order
func (t *Table[T]) Range(fn func(name string, v *T)) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	names := make([]string, 0, len(t.items))
	for n := range t.items {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fn(n, t.items[n])
	}
}

func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.items)
}
