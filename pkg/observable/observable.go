// Package observable provides thread-safe values that notify listeners when
// they change.
//
// Any Observable passed to a component in its props is subscribed for the
// duration of one render: a change marks the component dirty and the
// session re-renders it on the next flush.
package observable

import (
	"reflect"
	"slices"
	"sync"
)

// Observable is anything whose changes can be watched.
type Observable interface {
	// Subscribe registers fn and returns a function that removes it.
	// Calling the returned function more than once is a no-op.
	Subscribe(fn func()) (unsubscribe func())
}

type listener[F any] struct {
	id int
	fn F
}

// listeners is an ordered, mutex-protected listener list. Listeners are
// called in registration order, outside the lock.
type listeners[F any] struct {
	mu     sync.Mutex
	nextID int
	list   []listener[F]
}

func (l *listeners[F]) add(fn F) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := l.nextID
	l.nextID++
	l.list = append(l.list, listener[F]{id: id, fn: fn})
	return func() { l.remove(id) }
}

func (l *listeners[F]) remove(id int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.list = slices.DeleteFunc(l.list, func(x listener[F]) bool { return x.id == id })
}

func (l *listeners[F]) snapshot() []F {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]F, len(l.list))
	for i, x := range l.list {
		out[i] = x.fn
	}
	return out
}

func (l *listeners[F]) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.list)
}

// defaultEqual compares values with == when both are comparable, and
// treats everything else as changed.
func defaultEqual[T any](a, b T) bool {
	va, vb := reflect.ValueOf(any(a)), reflect.ValueOf(any(b))
	if !va.IsValid() || !vb.IsValid() {
		return va.IsValid() == vb.IsValid()
	}
	if va.Type() != vb.Type() || !va.Comparable() || !vb.Comparable() {
		return false
	}
	return any(a) == any(b)
}
