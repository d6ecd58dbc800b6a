package testing

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/go-drift/patchwork/pkg/patch"
	"github.com/go-drift/patchwork/pkg/tree"
)

// ClientNode is a node as the client sees it: built only from commands.
type ClientNode struct {
	ID       tree.ID
	Kind     string
	Key      any
	Props    tree.Props
	Children []*ClientNode

	parent *ClientNode
}

// Parent returns the node's parent, or nil for a root.
func (n *ClientNode) Parent() *ClientNode { return n.parent }

// Prop returns a single property.
func (n *ClientNode) Prop(name string) any { return n.Props[name] }

// ClientTree is an in-memory client that applies patch commands the way a
// real client would. It implements the session's Sink.
type ClientTree struct {
	roots []*ClientNode
	byID  map[tree.ID]*ClientNode
	sent  []patch.Batch
}

// NewClientTree returns an empty client tree.
func NewClientTree() *ClientTree {
	return &ClientTree{byID: make(map[tree.ID]*ClientNode)}
}

// Send applies every batch in order and records it.
func (c *ClientTree) Send(batches []patch.Batch) error {
	for _, b := range batches {
		c.sent = append(c.sent, b)
		if err := c.Apply(b.Commands...); err != nil {
			return fmt.Errorf("batch for scope %d: %w", b.Scope, err)
		}
	}
	return nil
}

// Batches returns every batch received so far.
func (c *ClientTree) Batches() []patch.Batch { return c.sent }

// Commands returns the commands of every batch received so far, flattened.
func (c *ClientTree) Commands() []patch.Command {
	var out []patch.Command
	for _, b := range c.sent {
		out = append(out, b.Commands...)
	}
	return out
}

// Reset forgets the recorded batches. The tree is kept.
func (c *ClientTree) Reset() { c.sent = nil }

// Apply applies commands in order. It stops at the first command that does
// not fit the tree.
func (c *ClientTree) Apply(cmds ...patch.Command) error {
	for i, cmd := range cmds {
		var err error
		switch cmd.Op {
		case patch.OpAdd:
			err = c.add(cmd)
		case patch.OpRemove:
			err = c.remove(cmd)
		case patch.OpSet:
			err = c.set(cmd)
		default:
			err = fmt.Errorf("unknown op %q", cmd.Op)
		}
		if err != nil {
			return fmt.Errorf("command %d (%s): %w", i, cmd.Op, err)
		}
	}
	return nil
}

func (c *ClientTree) add(cmd patch.Command) error {
	var parent *ClientNode
	siblings := c.roots
	if cmd.Parent != 0 {
		p, ok := c.byID[cmd.Parent]
		if !ok {
			return fmt.Errorf("unknown parent %d", cmd.Parent)
		}
		parent, siblings = p, p.Children
	}
	if cmd.Index < 0 || cmd.Index > len(siblings) {
		return fmt.Errorf("index %d out of range [0, %d]", cmd.Index, len(siblings))
	}
	nodes := make([]*ClientNode, 0, len(cmd.Nodes))
	for _, spec := range cmd.Nodes {
		n, err := c.build(spec, parent)
		if err != nil {
			return err
		}
		nodes = append(nodes, n)
	}
	siblings = slices.Insert(siblings, cmd.Index, nodes...)
	if parent == nil {
		c.roots = siblings
	} else {
		parent.Children = siblings
	}
	return nil
}

func (c *ClientTree) build(spec patch.Spec, parent *ClientNode) (*ClientNode, error) {
	if _, exists := c.byID[spec.ID]; exists {
		return nil, fmt.Errorf("duplicate id %d", spec.ID)
	}
	n := &ClientNode{ID: spec.ID, Kind: spec.Kind, Key: spec.Key, Props: maps.Clone(spec.Props), parent: parent}
	c.byID[spec.ID] = n
	for _, cs := range spec.Children {
		child, err := c.build(cs, n)
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, child)
	}
	return n, nil
}

func (c *ClientTree) remove(cmd patch.Command) error {
	for _, id := range cmd.IDs {
		n, ok := c.byID[id]
		if !ok {
			return fmt.Errorf("unknown id %d", id)
		}
		if n.parent == nil {
			c.roots = slices.DeleteFunc(c.roots, func(x *ClientNode) bool { return x == n })
		} else {
			n.parent.Children = slices.DeleteFunc(n.parent.Children, func(x *ClientNode) bool { return x == n })
		}
		c.forget(n)
	}
	return nil
}

func (c *ClientTree) forget(n *ClientNode) {
	delete(c.byID, n.ID)
	for _, child := range n.Children {
		c.forget(child)
	}
}

func (c *ClientTree) set(cmd patch.Command) error {
	n, ok := c.byID[cmd.Target]
	if !ok {
		return fmt.Errorf("unknown target %d", cmd.Target)
	}
	for k, v := range cmd.Props {
		if v == nil {
			delete(n.Props, k)
			continue
		}
		if n.Props == nil {
			n.Props = make(tree.Props)
		}
		n.Props[k] = v
	}
	return nil
}

// Node returns the node with the given id, or nil.
func (c *ClientTree) Node(id tree.ID) *ClientNode { return c.byID[id] }

// Roots returns the top-level nodes.
func (c *ClientTree) Roots() []*ClientNode { return c.roots }

// Len returns the number of nodes in the tree.
func (c *ClientTree) Len() int { return len(c.byID) }

// Shape is the id-free structure of a node, for comparing a client tree
// with a server tree using cmp.Diff.
type Shape struct {
	Kind     string
	Key      any        `json:",omitempty"`
	Props    tree.Props `json:",omitempty"`
	Children []Shape    `json:",omitempty"`
}

// Shape returns n's structure.
func (n *ClientNode) Shape() Shape {
	s := Shape{Kind: n.Kind, Key: n.Key}
	if len(n.Props) > 0 {
		s.Props = maps.Clone(n.Props)
	}
	for _, child := range n.Children {
		s.Children = append(s.Children, child.Shape())
	}
	return s
}

// Shapes returns the structure of every root.
func (c *ClientTree) Shapes() []Shape {
	var out []Shape
	for _, r := range c.roots {
		out = append(out, r.Shape())
	}
	return out
}

// ShapeOf returns the structure a client should hold for the server node n:
// its current children and its props in wire form.
func ShapeOf(n tree.Node) Shape {
	s := Shape{Kind: n.Kind(), Key: n.Key(), Props: patch.WireProps(n.Props())}
	for _, child := range n.Children() {
		s.Children = append(s.Children, ShapeOf(child))
	}
	return s
}

// String renders the tree as an indented outline.
func (c *ClientTree) String() string {
	var sb strings.Builder
	for _, r := range c.roots {
		writeOutline(&sb, r, 0)
	}
	return sb.String()
}

func writeOutline(sb *strings.Builder, n *ClientNode, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString(n.Kind)
	if n.Key != nil {
		fmt.Fprintf(sb, "#%v", n.Key)
	}
	if len(n.Props) > 0 {
		keys := slices.Sorted(maps.Keys(n.Props))
		sb.WriteString(" {")
		for i, k := range keys {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(sb, "%s: %v", k, n.Props[k])
		}
		sb.WriteString("}")
	}
	sb.WriteString("\n")
	for _, child := range n.Children {
		writeOutline(sb, child, depth+1)
	}
}
