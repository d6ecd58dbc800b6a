package observable

import "sync"

// Value holds a single value of type T. All methods are safe for
// concurrent use.
type Value[T any] struct {
	mu        sync.RWMutex
	value     T
	equal     func(a, b T) bool
	listeners listeners[func(T)]
}

// NewValue creates a Value. Set notifies only when the new value is not
// == to the old one; values that are not comparable always notify.
func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{value: initial, equal: defaultEqual[T]}
}

// NewValueWithEquality creates a Value that uses equal to decide whether
// Set changed anything.
func NewValueWithEquality[T any](initial T, equal func(a, b T) bool) *Value[T] {
	return &Value[T]{value: initial, equal: equal}
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.value
}

// Set stores value and notifies listeners if it changed.
func (v *Value[T]) Set(value T) {
	v.Update(func(T) T { return value })
}

// Update applies fn to the current value and stores the result. The read
// and the write happen under one lock, so concurrent updates are not lost.
func (v *Value[T]) Update(fn func(T) T) {
	v.mu.Lock()
	value := fn(v.value)
	if v.equal != nil && v.equal(v.value, value) {
		v.mu.Unlock()
		return
	}
	v.value = value
	v.mu.Unlock()
	for _, notify := range v.listeners.snapshot() {
		notify(value)
	}
}

// AddListener registers fn to receive every new value.
func (v *Value[T]) AddListener(fn func(T)) (unsubscribe func()) {
	return v.listeners.add(fn)
}

// Subscribe implements Observable.
func (v *Value[T]) Subscribe(fn func()) (unsubscribe func()) {
	return v.listeners.add(func(T) { fn() })
}

// ListenerCount returns the number of registered listeners.
func (v *Value[T]) ListenerCount() int {
	return v.listeners.len()
}
