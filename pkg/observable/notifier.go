package observable

// Notifier broadcasts change events without holding a value.
type Notifier struct {
	listeners listeners[func()]
}

// NewNotifier creates a Notifier.
func NewNotifier() *Notifier {
	return &Notifier{}
}

// Notify calls every listener.
func (n *Notifier) Notify() {
	for _, fn := range n.listeners.snapshot() {
		fn()
	}
}

// Subscribe implements Observable.
func (n *Notifier) Subscribe(fn func()) (unsubscribe func()) {
	return n.listeners.add(fn)
}

// ListenerCount returns the number of registered listeners.
func (n *Notifier) ListenerCount() int {
	return n.listeners.len()
}
