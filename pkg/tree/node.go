// Package tree defines the node model shared by components, the reconciler
// and the session.
//
// A Node is anything that can live in the retained control tree: it has a
// kind, an optional key, a property bag and an ordered list of children.
// Every node embeds Base, which carries the bookkeeping the reconciler needs
// between passes: the external id assigned when the node was registered, the
// children and props the client last saw, and the frozen flag.
package tree

// ID is the external identifier of a node on the client. Zero means the
// node is not registered.
type ID int64

// Props is a node's property bag.
type Props map[string]any

// Node is a member of the retained control tree.
type Node interface {
	// NodeBase returns the bookkeeping record embedded in the node.
	NodeBase() *Base
	// Kind names the control type ("Text", "Column", "Component", ...).
	Kind() string
	// Key returns the node's key, or nil.
	Key() any
	// Props returns a copy of the node's properties.
	Props() Props
	// Children returns the node's current children in order.
	Children() []Node
}

// Identifier is implemented by nodes whose logical identity is not their
// props. Components implement it with their render function and key.
type Identifier interface {
	Identity() any
}

// Base carries per-node bookkeeping. Embed it in every Node implementation.
type Base struct {
	id           ID
	frozen       bool
	prevChildren []Node
	prevProps    Props
}

// NodeBase returns b.
func (b *Base) NodeBase() *Base { return b }

// ID returns the external id, or 0 if the node is not registered.
func (b *Base) ID() ID { return b.id }

// SetID assigns the external id. Only the live-node index calls this.
func (b *Base) SetID(id ID) { b.id = id }

// IsFrozen reports whether the node was frozen after being produced by a render.
func (b *Base) IsFrozen() bool { return b.frozen }

// PrevChildren returns the children as of the last reconciliation.
func (b *Base) PrevChildren() []Node { return b.prevChildren }

// SetPrevChildren records the children the client now holds.
func (b *Base) SetPrevChildren(children []Node) {
	if len(children) == 0 {
		b.prevChildren = nil
		return
	}
	b.prevChildren = append([]Node(nil), children...)
}

// PrevProps returns the props the client last received.
func (b *Base) PrevProps() Props { return b.prevProps }

// SetPrevProps records the props the client now holds.
func (b *Base) SetPrevProps(p Props) { b.prevProps = p }

// Adopt takes over prev's registration: its external id and the snapshots
// of what the client holds. prev is left unregistered.
func (b *Base) Adopt(prev *Base) {
	if prev == b {
		return
	}
	b.id = prev.id
	b.prevChildren = prev.prevChildren
	b.prevProps = prev.prevProps
	prev.Release()
}

// Release clears the registration and snapshots.
func (b *Base) Release() {
	b.id = 0
	b.prevChildren = nil
	b.prevProps = nil
}

// SameObject reports whether a and b are the same node instance.
func SameObject(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.NodeBase() == b.NodeBase()
}

// Freeze marks nodes and their descendants immutable. Nodes that are
// already frozen are not descended into.
func Freeze(nodes ...Node) {
	for _, n := range nodes {
		if n == nil {
			continue
		}
		b := n.NodeBase()
		if b.frozen {
			continue
		}
		b.frozen = true
		Freeze(n.Children()...)
	}
}

// Walk visits n and its current descendants depth-first, parents before
// children. Returning false from fn skips the node's children.
func Walk(n Node, fn func(Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, child := range n.Children() {
		Walk(child, fn)
	}
}
