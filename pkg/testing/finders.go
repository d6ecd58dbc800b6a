package testing

import (
	"fmt"

	"github.com/go-drift/patchwork/pkg/tree"
)

// Finder locates nodes in a client tree.
type Finder interface {
	// Evaluate returns all matching nodes under root (depth-first pre-order).
	Evaluate(root *ClientNode) []*ClientNode
	// Description returns a human-readable description for error messages.
	Description() string
}

// FinderResult wraps finder results with convenient accessors.
type FinderResult struct {
	nodes  []*ClientNode
	finder Finder
}

func (r FinderResult) description() string {
	if r.finder == nil {
		return "unknown"
	}
	return r.finder.Description()
}

// First returns the first match. Panics if no matches.
func (r FinderResult) First() *ClientNode {
	if len(r.nodes) == 0 {
		panic(fmt.Sprintf("Finder found no nodes: %s", r.description()))
	}
	return r.nodes[0]
}

// FirstOrNil returns the first match, or nil if none.
func (r FinderResult) FirstOrNil() *ClientNode {
	if len(r.nodes) == 0 {
		return nil
	}
	return r.nodes[0]
}

// At returns the match at index. Panics if out of range.
func (r FinderResult) At(index int) *ClientNode {
	if index < 0 || index >= len(r.nodes) {
		panic(fmt.Sprintf("Finder index %d out of range (found %d): %s", index, len(r.nodes), r.description()))
	}
	return r.nodes[index]
}

// All returns all matches in traversal order.
func (r FinderResult) All() []*ClientNode {
	return r.nodes
}

// Count returns the number of matches.
func (r FinderResult) Count() int {
	return len(r.nodes)
}

// Exists returns true if at least one match was found.
func (r FinderResult) Exists() bool {
	return len(r.nodes) > 0
}

// Find evaluates f against every root of the tree.
func (c *ClientTree) Find(f Finder) FinderResult {
	var nodes []*ClientNode
	for _, r := range c.roots {
		nodes = append(nodes, f.Evaluate(r)...)
	}
	return FinderResult{nodes: nodes, finder: f}
}

// --- Concrete finders ---

type kindFinder struct {
	kind string
}

func (f *kindFinder) Evaluate(root *ClientNode) []*ClientNode {
	return collectMatches(root, func(n *ClientNode) bool { return n.Kind == f.kind })
}

func (f *kindFinder) Description() string {
	return fmt.Sprintf("ByKind(%s)", f.kind)
}

// ByKind returns a finder that matches nodes of the given kind.
func ByKind(kind string) Finder {
	return &kindFinder{kind: kind}
}

type keyFinder struct {
	key any
}

func (f *keyFinder) Evaluate(root *ClientNode) []*ClientNode {
	return collectMatches(root, func(n *ClientNode) bool {
		if n.Key == nil || f.key == nil {
			return n.Key == nil && f.key == nil
		}
		return tree.ValueEqual(n.Key, f.key)
	})
}

func (f *keyFinder) Description() string {
	return fmt.Sprintf("ByKey(%v)", f.key)
}

// ByKey returns a finder that matches nodes whose key equals key.
func ByKey(key any) Finder {
	return &keyFinder{key: key}
}

type propFinder struct {
	name  string
	value any
}

func (f *propFinder) Evaluate(root *ClientNode) []*ClientNode {
	return collectMatches(root, func(n *ClientNode) bool {
		v, ok := n.Props[f.name]
		return ok && tree.ValueEqual(v, f.value)
	})
}

func (f *propFinder) Description() string {
	return fmt.Sprintf("ByProp(%s=%v)", f.name, f.value)
}

// ByProp returns a finder that matches nodes whose prop name equals value.
// Event handlers arrive on the client as true.
func ByProp(name string, value any) Finder {
	return &propFinder{name: name, value: value}
}

type predicateFinder struct {
	fn   func(*ClientNode) bool
	desc string
}

func (f *predicateFinder) Evaluate(root *ClientNode) []*ClientNode {
	return collectMatches(root, f.fn)
}

func (f *predicateFinder) Description() string {
	return f.desc
}

// ByPredicate returns a finder that matches nodes satisfying fn.
func ByPredicate(fn func(*ClientNode) bool) Finder {
	return &predicateFinder{fn: fn, desc: "ByPredicate(...)"}
}

// descendantFinder finds nodes matching 'matching' that are descendants
// of nodes matching 'of'.
type descendantFinder struct {
	of       Finder
	matching Finder
}

func (f *descendantFinder) Evaluate(root *ClientNode) []*ClientNode {
	var results []*ClientNode
	seen := make(map[*ClientNode]bool)
	for _, ancestor := range f.of.Evaluate(root) {
		// Skip the ancestor itself.
		for _, child := range ancestor.Children {
			for _, match := range f.matching.Evaluate(child) {
				if !seen[match] {
					seen[match] = true
					results = append(results, match)
				}
			}
		}
	}
	return results
}

func (f *descendantFinder) Description() string {
	return fmt.Sprintf("Descendant(of: %s, matching: %s)", f.of.Description(), f.matching.Description())
}

// Descendant returns a finder that matches nodes satisfying 'matching'
// that are descendants of nodes matching 'of'.
func Descendant(of, matching Finder) Finder {
	return &descendantFinder{of: of, matching: matching}
}

// collectMatches performs depth-first pre-order traversal, collecting
// nodes that satisfy the predicate.
func collectMatches(root *ClientNode, predicate func(*ClientNode) bool) []*ClientNode {
	var results []*ClientNode
	walkTree(root, func(n *ClientNode) {
		if predicate(n) {
			results = append(results, n)
		}
	})
	return results
}

func walkTree(root *ClientNode, visit func(*ClientNode)) {
	visit(root)
	for _, child := range root.Children {
		walkTree(child, visit)
	}
}
