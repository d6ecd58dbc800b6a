// Package patch turns changes in the retained control tree into commands
// for the client.
//
// The Reconciler compares a node's previous children with its current ones,
// keeps the live-node Index in sync, and emits three kinds of Command:
//
//   - add: insert serialized subtrees under a parent at an index
//   - remove: drop nodes (and their subtrees) by id
//   - set: update changed props of a node that stayed in place
//
// Applying the commands of a reconciliation in order to a client tree that
// matched the previous children yields the current children.
package patch

import (
	"maps"
	"reflect"

	"github.com/go-drift/patchwork/pkg/tree"
)

// Op names a command.
type Op string

const (
	OpAdd    Op = "add"
	OpRemove Op = "remove"
	OpSet    Op = "set"
)

// Command is one edit to apply to the client tree.
type Command struct {
	Op Op `json:"op"`
	// Parent and Index locate an add.
	Parent tree.ID `json:"parent,omitempty"`
	Index  int     `json:"index,omitempty"`
	// Nodes holds the serialized subtrees of an add.
	Nodes []Spec `json:"nodes,omitempty"`
	// IDs lists the nodes of a remove.
	IDs []tree.ID `json:"ids,omitempty"`
	// Target and Props describe a set. A nil prop value means removal.
	Target tree.ID    `json:"target,omitempty"`
	Props  tree.Props `json:"props,omitempty"`
}

// Spec is the serialized form of a node and its subtree.
type Spec struct {
	ID       tree.ID    `json:"id"`
	Kind     string     `json:"kind"`
	Key      any        `json:"key,omitempty"`
	Props    tree.Props `json:"props,omitempty"`
	Children []Spec     `json:"children,omitempty"`
}

// Batch is a group of commands staged for one scope (the node whose
// reconciliation produced them).
type Batch struct {
	Scope    tree.ID   `json:"scope"`
	Commands []Command `json:"commands"`
}

// WireProps returns the client-facing form of p: func values (event
// handlers) become true, since only their presence is meaningful to the
// client.
func WireProps(p tree.Props) tree.Props {
	if len(p) == 0 {
		return nil
	}
	out := maps.Clone(p)
	for k, v := range out {
		if v != nil && reflect.TypeOf(v).Kind() == reflect.Func {
			out[k] = true
		}
	}
	return out
}

// changedProps returns the props that differ between prev and next. Props
// missing from next are reported with a nil value.
func changedProps(prev, next tree.Props) tree.Props {
	var out tree.Props
	for k, v := range next {
		if pv, ok := prev[k]; !ok || !tree.ValueEqual(pv, v) {
			if out == nil {
				out = make(tree.Props)
			}
			out[k] = v
		}
	}
	for k := range prev {
		if _, ok := next[k]; !ok {
			if out == nil {
				out = make(tree.Props)
			}
			out[k] = nil
		}
	}
	return out
}
