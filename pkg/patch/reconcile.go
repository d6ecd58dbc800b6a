package patch

import (
	"fmt"

	"github.com/go-drift/patchwork/pkg/diff"
	"github.com/go-drift/patchwork/pkg/errors"
	"github.com/go-drift/patchwork/pkg/tree"
)

// Updater is implemented by nodes that produce their children lazily and
// patch their own subtree, such as components. The reconciler calls
// BeforeUpdate instead of descending into the node.
type Updater interface {
	BeforeUpdate() error
}

// Mounter is notified after a node and its subtree were registered.
type Mounter interface {
	DidMount()
}

// Unmounter is notified before a node is unregistered. Descendants are
// notified first.
type Unmounter interface {
	WillUnmount()
}

// Migrator is implemented by nodes that carry state which must move to a
// new instance when the reconciler decides the new instance is the same
// logical node.
type Migrator interface {
	MigrateFrom(prev tree.Node)
}

// Reconciler computes patch commands for nodes registered in an Index.
// A Reconciler is not safe for concurrent use.
type Reconciler struct {
	index   *Index
	prepare func(tree.Node)
	cmds    []Command
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithPrepare registers fn to be called on every node just before it is
// mounted or adopts a previous node's registration.
func WithPrepare(fn func(tree.Node)) Option {
	return func(r *Reconciler) { r.prepare = fn }
}

// NewReconciler creates a reconciler over index.
func NewReconciler(index *Index, opts ...Option) *Reconciler {
	r := &Reconciler{index: index}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconcile diffs n's current children against the children the client
// holds and returns the commands that bring the client up to date. n must
// be registered.
func (r *Reconciler) Reconcile(n tree.Node) ([]Command, error) {
	r.cmds = nil
	err := r.reconcile(n)
	cmds := r.cmds
	r.cmds = nil
	if err != nil {
		return nil, wrap("patch.Reconcile", n, err)
	}
	return cmds, nil
}

// Mount registers n and its subtree and returns its serialized form.
func (r *Reconciler) Mount(n tree.Node) (Spec, error) {
	spec, err := r.mount(n)
	if err != nil {
		return Spec{}, wrap("patch.Mount", n, err)
	}
	return spec, nil
}

// Unmount unregisters n and its subtree.
func (r *Reconciler) Unmount(n tree.Node) error {
	if n.NodeBase().ID() == 0 {
		return wrap("patch.Unmount", n, fmt.Errorf("unmount %s: %w", n.Kind(), errors.ErrMissingID))
	}
	r.unmount(n)
	return nil
}

func wrap(op string, n tree.Node, err error) error {
	var structured *errors.Error
	if errors.As(err, &structured) {
		return err
	}
	return &errors.Error{
		Op:    op,
		Kind:  errors.KindReconcile,
		Scope: int64(n.NodeBase().ID()),
		Err:   err,
	}
}

func (r *Reconciler) reconcile(n tree.Node) error {
	b := n.NodeBase()
	if b.ID() == 0 {
		return fmt.Errorf("reconcile %s: %w", n.Kind(), errors.ErrMissingID)
	}
	r.patchProps(n)

	prev := b.PrevChildren()
	curr := n.Children()
	m := diff.NewMatcher(hashAll(prev), hashAll(curr), func(i, j int) bool {
		return tree.Same(prev[i], curr[j])
	})
	ops := m.Opcodes()

	// Removals go first so that every add index counts only nodes that
	// stay, and so a node moved within this list can be registered again.
	for _, op := range ops {
		if op.Tag == diff.Delete || op.Tag == diff.Replace {
			if err := r.remove(prev[op.I1:op.I2]); err != nil {
				return err
			}
		}
	}
	for _, op := range ops {
		switch op.Tag {
		case diff.Equal:
			for k := range op.I2 - op.I1 {
				if err := r.match(prev[op.I1+k], curr[op.J1+k]); err != nil {
					return err
				}
			}
		case diff.Insert, diff.Replace:
			if err := r.add(b.ID(), curr[op.J1:op.J2], op.J1); err != nil {
				return err
			}
		}
	}
	b.SetPrevChildren(curr)
	return nil
}

// patchProps emits a set command when n's props differ from what the
// client holds.
func (r *Reconciler) patchProps(n tree.Node) {
	b := n.NodeBase()
	next := WireProps(n.Props())
	if changed := changedProps(b.PrevProps(), next); len(changed) > 0 {
		r.cmds = append(r.cmds, Command{Op: OpSet, Target: b.ID(), Props: changed})
	}
	b.SetPrevProps(next)
}

// match handles a previous child paired with a current child by the diff.
func (r *Reconciler) match(prev, curr tree.Node) error {
	if !tree.SameObject(prev, curr) {
		cb, pb := curr.NodeBase(), prev.NodeBase()
		if cb.ID() != 0 {
			return fmt.Errorf("adopt %s (id %d): %w", curr.Kind(), cb.ID(), errors.ErrAlreadyMounted)
		}
		id := pb.ID()
		if id == 0 {
			return fmt.Errorf("adopt %s: %w", prev.Kind(), errors.ErrMissingID)
		}
		if r.prepare != nil {
			r.prepare(curr)
		}
		cb.Adopt(pb)
		r.index.Replace(id, curr)
		if m, ok := curr.(Migrator); ok {
			m.MigrateFrom(prev)
		}
	}
	if u, ok := curr.(Updater); ok {
		return u.BeforeUpdate()
	}
	return r.reconcile(curr)
}

func (r *Reconciler) add(parent tree.ID, nodes []tree.Node, index int) error {
	specs := make([]Spec, 0, len(nodes))
	for _, n := range nodes {
		spec, err := r.mount(n)
		if err != nil {
			return err
		}
		specs = append(specs, spec)
	}
	r.cmds = append(r.cmds, Command{Op: OpAdd, Parent: parent, Index: index, Nodes: specs})
	return nil
}

func (r *Reconciler) mount(n tree.Node) (Spec, error) {
	if r.prepare != nil {
		r.prepare(n)
	}
	if u, ok := n.(Updater); ok {
		if err := u.BeforeUpdate(); err != nil {
			return Spec{}, err
		}
	}
	id, err := r.index.Register(n)
	if err != nil {
		return Spec{}, err
	}
	b := n.NodeBase()
	props := WireProps(n.Props())
	b.SetPrevProps(props)

	spec := Spec{ID: id, Kind: n.Kind(), Key: n.Key(), Props: props}
	children := n.Children()
	for _, child := range children {
		cs, err := r.mount(child)
		if err != nil {
			return Spec{}, err
		}
		spec.Children = append(spec.Children, cs)
	}
	b.SetPrevChildren(children)

	if m, ok := n.(Mounter); ok {
		m.DidMount()
	}
	return spec, nil
}

func (r *Reconciler) remove(nodes []tree.Node) error {
	ids := make([]tree.ID, 0, len(nodes))
	for _, n := range nodes {
		id := n.NodeBase().ID()
		if id == 0 {
			return fmt.Errorf("remove %s: %w", n.Kind(), errors.ErrMissingID)
		}
		ids = append(ids, id)
	}
	r.cmds = append(r.cmds, Command{Op: OpRemove, IDs: ids})
	for _, n := range nodes {
		r.unmount(n)
	}
	return nil
}

// unmount unregisters n's subtree depth-first, children before parents.
func (r *Reconciler) unmount(n tree.Node) {
	b := n.NodeBase()
	for _, child := range b.PrevChildren() {
		r.unmount(child)
	}
	if u, ok := n.(Unmounter); ok {
		u.WillUnmount()
	}
	r.index.Unregister(b.ID())
	b.Release()
}

func hashAll(nodes []tree.Node) []uint64 {
	out := make([]uint64, len(nodes))
	for i, n := range nodes {
		out[i] = tree.Hash(n)
	}
	return out
}
