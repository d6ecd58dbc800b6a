package patch

import (
	"fmt"
	"sync"

	"github.com/go-drift/patchwork/pkg/errors"
	"github.com/go-drift/patchwork/pkg/tree"
)

// Index maps external ids to live nodes. Ids are never reused.
type Index struct {
	mu    sync.RWMutex
	nodes map[tree.ID]tree.Node
	next  tree.ID
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{nodes: make(map[tree.ID]tree.Node)}
}

// Register assigns a fresh id to n and records it. A node that already
// carries an id is rejected with ErrAlreadyMounted.
func (x *Index) Register(n tree.Node) (tree.ID, error) {
	b := n.NodeBase()
	if b.ID() != 0 {
		return 0, fmt.Errorf("register %s (id %d): %w", n.Kind(), b.ID(), errors.ErrAlreadyMounted)
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	x.next++
	b.SetID(x.next)
	x.nodes[x.next] = n
	return x.next, nil
}

// Replace points id at n, which has adopted the id from a retired node.
func (x *Index) Replace(id tree.ID, n tree.Node) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.nodes[id] = n
}

// Unregister removes id from the index.
func (x *Index) Unregister(id tree.ID) {
	x.mu.Lock()
	defer x.mu.Unlock()
	delete(x.nodes, id)
}

// Get returns the live node registered under id.
func (x *Index) Get(id tree.ID) (tree.Node, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	n, ok := x.nodes[id]
	return n, ok
}

// Len returns the number of live nodes.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.nodes)
}
