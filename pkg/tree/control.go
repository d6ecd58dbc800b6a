package tree

import (
	"fmt"
	"maps"
	"slices"

	"github.com/go-drift/patchwork/pkg/errors"
)

// Control is a generic property-bag node. Widget sets are built from
// Controls with their own kinds and props.
//
// A Control built by hand is mutable until it is frozen. Controls returned
// from a component render are frozen by the component.
//
//	tree.NewControl("Column", nil,
//	    tree.NewControl("Text", tree.Props{"value": "Hello"}),
//	    tree.NewControl("Button", tree.Props{"text": "OK"}).WithKey("ok"),
//	)
type Control struct {
	Base
	kind     string
	key      any
	props    Props
	children []Node
}

// NewControl creates a Control of the given kind.
func NewControl(kind string, props Props, children ...Node) *Control {
	return &Control{
		kind:     kind,
		props:    maps.Clone(props),
		children: children,
	}
}

func (c *Control) Kind() string { return c.kind }

func (c *Control) Key() any { return c.key }

func (c *Control) Props() Props { return maps.Clone(c.props) }

// Children returns the non-nil children with fragments flattened.
func (c *Control) Children() []Node {
	return Flatten(c.children...)
}

// Get returns a single property.
func (c *Control) Get(name string) any {
	return c.props[name]
}

// WithKey sets the key and returns c.
func (c *Control) WithKey(key any) *Control {
	c.mustBeMutable("WithKey")
	c.key = key
	return c
}

// Set assigns a property and returns c. A nil value removes the property.
func (c *Control) Set(name string, value any) *Control {
	c.mustBeMutable("Set")
	if value == nil {
		delete(c.props, name)
		return c
	}
	if c.props == nil {
		c.props = make(Props)
	}
	c.props[name] = value
	return c
}

// Append adds children at the end.
func (c *Control) Append(children ...Node) *Control {
	c.mustBeMutable("Append")
	c.children = append(c.children, children...)
	return c
}

// Insert adds a child at index i.
func (c *Control) Insert(i int, child Node) *Control {
	c.mustBeMutable("Insert")
	c.children = slices.Insert(c.children, i, child)
	return c
}

// RemoveAt removes the child at index i.
func (c *Control) RemoveAt(i int) *Control {
	c.mustBeMutable("RemoveAt")
	c.children = slices.Delete(c.children, i, i+1)
	return c
}

// SetChildren replaces all children.
func (c *Control) SetChildren(children ...Node) *Control {
	c.mustBeMutable("SetChildren")
	c.children = children
	return c
}

func (c *Control) mustBeMutable(op string) {
	if c.frozen {
		panic(fmt.Errorf("%s.%s: %w", c.kind, op, errors.ErrFrozen))
	}
}

func (c *Control) String() string {
	if c.key != nil {
		return fmt.Sprintf("%s#%v", c.kind, c.key)
	}
	return c.kind
}

// Fragment groups nodes without adding a level to the tree. Fragments are
// flattened into their parent's children and never registered.
type Fragment struct {
	Base
	Nodes []Node
}

// Group returns a Fragment holding nodes.
func Group(nodes ...Node) *Fragment {
	return &Fragment{Nodes: nodes}
}

func (f *Fragment) Kind() string     { return "Fragment" }
func (f *Fragment) Key() any         { return nil }
func (f *Fragment) Props() Props     { return nil }
func (f *Fragment) Children() []Node { return Flatten(f.Nodes...) }

// Flatten drops nil nodes and splices fragments in place.
func Flatten(nodes ...Node) []Node {
	var out []Node
	for _, n := range nodes {
		switch v := n.(type) {
		case nil:
		case *Fragment:
			if v != nil {
				out = append(out, Flatten(v.Nodes...)...)
			}
		default:
			out = append(out, n)
		}
	}
	return out
}
