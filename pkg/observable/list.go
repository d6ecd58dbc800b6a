package observable

import (
	"slices"
	"sync"
)

// List is an ordered collection that notifies on every mutation.
type List[T any] struct {
	mu        sync.RWMutex
	items     []T
	listeners listeners[func()]
}

// NewList creates a List holding a copy of items.
func NewList[T any](items ...T) *List[T] {
	return &List[T]{items: slices.Clone(items)}
}

func (l *List[T]) mutate(fn func()) {
	l.mu.Lock()
	fn()
	l.mu.Unlock()
	for _, notify := range l.listeners.snapshot() {
		notify()
	}
}

// Append adds items at the end.
func (l *List[T]) Append(items ...T) {
	l.mutate(func() { l.items = append(l.items, items...) })
}

// Insert adds item at index i.
func (l *List[T]) Insert(i int, item T) {
	l.mutate(func() { l.items = slices.Insert(l.items, i, item) })
}

// RemoveAt removes the item at index i.
func (l *List[T]) RemoveAt(i int) {
	l.mutate(func() { l.items = slices.Delete(l.items, i, i+1) })
}

// Set replaces the item at index i.
func (l *List[T]) Set(i int, item T) {
	l.mutate(func() { l.items[i] = item })
}

// Clear removes all items.
func (l *List[T]) Clear() {
	l.mutate(func() { l.items = nil })
}

// Len returns the number of items.
func (l *List[T]) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

// At returns the item at index i.
func (l *List[T]) At(i int) T {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.items[i]
}

// Items returns a copy of the items.
func (l *List[T]) Items() []T {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.items)
}

// Subscribe implements Observable.
func (l *List[T]) Subscribe(fn func()) (unsubscribe func()) {
	return l.listeners.add(fn)
}

// ListenerCount returns the number of registered listeners.
func (l *List[T]) ListenerCount() int {
	return l.listeners.len()
}
