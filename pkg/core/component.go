package core

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"
	"sync/atomic"
	"time"
	"weak"

	"github.com/go-drift/patchwork/pkg/errors"
	"github.com/go-drift/patchwork/pkg/patch"
	"github.com/go-drift/patchwork/pkg/tree"
)

// RenderFunc renders a component's body from its props. It must call hooks
// unconditionally and in the same order on every render.
type RenderFunc[P any] func(ctx *Context, props P) tree.Node

// Component is a node backed by a render function and persistent state.
// Its children are the body produced by the last render.
//
// Components created inside a render are not rendered immediately; they
// render when the reconciler attaches or revisits them.
type Component struct {
	tree.Base

	name     string
	fn       uintptr
	key      any
	props    any
	call     func(ctx *Context, props any) tree.Node
	memo     bool
	depth    int
	parent   weak.Pointer[Component]
	contexts map[any]any
	session  Session

	state *ComponentState
	body  []tree.Node
	stale atomic.Bool
}

// Option configures a Component.
type Option func(*Component)

// Memo lets the component skip re-rendering when an ancestor revisits it
// with props shallowly equal to the last render's and it is not dirty.
// Shallow equality compares top-level values only: nested data reached
// through pointers, slices or maps must not be mutated in place.
func Memo() Option {
	return func(c *Component) { c.memo = true }
}

// WithKey sets the component's key. Siblings rendered by the same function
// are told apart by key.
func WithKey(key any) Option {
	return func(c *Component) { c.key = key }
}

// WithName overrides the name used in diagnostics and on the client.
func WithName(name string) Option {
	return func(c *Component) { c.name = name }
}

// New creates a root component. Bind it to a session, or mount it through
// one, before it renders.
func New[P any](fn RenderFunc[P], props P, opts ...Option) *Component {
	ptr := reflect.ValueOf(fn).Pointer()
	c := &Component{
		name:  funcName(ptr),
		fn:    ptr,
		props: props,
		call: func(ctx *Context, props any) tree.Node {
			p, _ := props.(P)
			return fn(ctx, p)
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RenderComponent creates a child component from within a render. The
// child inherits the session, records ctx's component as its parent and
// snapshots the context values provided so far.
func RenderComponent[P any](ctx *Context, fn RenderFunc[P], props P, opts ...Option) *Component {
	parent := ctx.mustComponent("core.RenderComponent")
	c := New(fn, props, opts...)
	c.parent = weak.Make(parent)
	c.depth = parent.depth + 1
	c.session = parent.session
	c.contexts = ctx.renderer.snapshot()
	return c
}

func funcName(ptr uintptr) string {
	f := runtime.FuncForPC(ptr)
	if f == nil {
		return "component"
	}
	name := f.Name()
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	return name
}

type identity struct {
	fn  uintptr
	key any
}

func (c *Component) Kind() string { return "Component" }

func (c *Component) Key() any { return c.key }

// Props returns the client-facing props: only the component's name.
func (c *Component) Props() tree.Props { return tree.Props{"name": c.name} }

// Children returns the body of the last render.
func (c *Component) Children() []tree.Node { return c.body }

// Identity makes components match by render function and key.
func (c *Component) Identity() any { return identity{fn: c.fn, key: c.key} }

// Name returns the component's name.
func (c *Component) Name() string { return c.name }

// Depth returns the number of component ancestors.
func (c *Component) Depth() int { return c.depth }

// Parent returns the component that rendered c, or nil for a root or when
// the parent has been collected.
func (c *Component) Parent() *Component { return c.parent.Value() }

// Session returns the session c is bound to.
func (c *Component) Session() Session { return c.session }

// State returns the component's state, or nil before the first render and
// after unmount or migration.
func (c *Component) State() *ComponentState { return c.state }

// CurrentProps returns the props the next render will receive.
func (c *Component) CurrentProps() any { return c.props }

// Stale reports whether c's state has moved to a successor.
func (c *Component) Stale() bool { return c.stale.Load() }

// Mounted reports whether c is attached to a live tree.
func (c *Component) Mounted() bool { return c.state != nil && c.state.mounted.Load() }

// Dirty reports whether c is waiting for a re-render.
func (c *Component) Dirty() bool { return c.state != nil && c.state.dirty.Load() }

func (c *Component) String() string {
	if c.key != nil {
		return fmt.Sprintf("%s#%v", c.name, c.key)
	}
	return c.name
}

// Bind attaches c to a session. Components rendered by c inherit it.
func (c *Component) Bind(s Session) { c.session = s }

// SetProps replaces c's props and schedules a re-render. The new props
// must have the type c was created with.
func (c *Component) SetProps(props any) error {
	if want, got := reflect.TypeOf(c.props), reflect.TypeOf(props); want != got {
		return &errors.Error{
			Op:    "core.SetProps",
			Kind:  errors.KindRender,
			Scope: int64(c.ID()),
			Err:   fmt.Errorf("%s: props of type %v, want %v", c.name, got, want),
		}
	}
	c.props = props
	if c.state != nil {
		c.state.markDirty()
	}
	return nil
}

// retired reports whether c must refuse updates: its state migrated to a
// successor, or it does not own the state it points at.
func (c *Component) retired() bool {
	if c.stale.Load() {
		return true
	}
	return c.state != nil && c.state.owner.Load() != c
}

func (c *Component) ensureState() {
	if c.state == nil {
		c.state = newComponentState(c)
	}
}

// BeforeUpdate brings c's body up to date before an ancestor diffs or
// serializes it. A memoized component that is not dirty and whose props
// and context values are shallowly equal to its last render reuses that
// render's body.
func (c *Component) BeforeUpdate() error {
	if c.retired() {
		debugf("ignoring update of stale component %s", c)
		return nil
	}
	c.ensureState()
	s := c.state
	if c.memo && !s.dirty.Load() && s.memo != nil &&
		shallowEqual(s.memo.props, c.props) && contextsEqual(s.memo.contexts, c.contexts) {
		c.body = s.memo.body
		c.reparent(c.body)
		return nil
	}
	return c.render()
}

// Update re-renders c and stages the patch for its subtree. The session
// calls it for components marked dirty.
func (c *Component) Update() error {
	if c.retired() {
		debugf("ignoring update of stale component %s", c)
		return nil
	}
	if c.state == nil {
		return &errors.Error{
			Op:    "core.Update",
			Kind:  errors.KindRender,
			Scope: int64(c.ID()),
			Err:   fmt.Errorf("%s: %w", c, errors.ErrNotMounted),
		}
	}
	return c.render()
}

func (c *Component) render() error {
	s := c.state
	s.dirty.Store(false)
	s.cursor = 0
	s.pending = nil
	c.resubscribe()

	body, ok := c.invoke()
	if !ok {
		// Keep the previous body; effects claimed by the failed render
		// are not scheduled.
		s.pending = nil
		return nil
	}
	if c.memo {
		s.memo = &memoCache{props: c.props, contexts: c.contexts, body: body}
	}
	tree.Freeze(body...)
	c.body = body

	if c.session != nil && c.ID() != 0 {
		cmds, err := c.reconciler().Reconcile(c)
		if err != nil {
			return err
		}
		if len(cmds) > 0 {
			c.session.PatchControl(c, cmds)
		}
	}
	c.scheduleEffects()
	return nil
}

// invoke runs the render function inside a fresh renderer frame. A panic
// is reported as a RenderError and ok is false. Hook-kind drift in strict
// mode is re-raised.
func (c *Component) invoke() (body []tree.Node, ok bool) {
	r := newRenderer(c.contexts)
	ctx := r.enter(c)
	defer r.exit(ctx)
	defer func() {
		rec := recover()
		if rec == nil {
			return
		}
		if he, isHook := rec.(*errors.HookError); isHook {
			panic(he)
		}
		errors.ReportRenderError(&errors.RenderError{
			Component:  c.String(),
			Recovered:  rec,
			StackTrace: errors.CaptureStack(),
			Timestamp:  time.Now(),
		})
		body, ok = nil, false
	}()
	return tree.Flatten(c.call(ctx, c.props)), true
}

func (c *Component) reconciler() *patch.Reconciler {
	return patch.NewReconciler(c.session.Index(), patch.WithPrepare(c.prepare))
}

// prepare binds components entering the tree under c to c's session.
func (c *Component) prepare(n tree.Node) {
	if child, ok := n.(*Component); ok && child.session == nil {
		child.session = c.session
	}
}

// reparent points the components of a reused body back at c.
func (c *Component) reparent(body []tree.Node) {
	for _, n := range body {
		tree.Walk(n, func(n tree.Node) bool {
			child, ok := n.(*Component)
			if !ok {
				return true
			}
			child.parent = weak.Make(c)
			child.depth = c.depth + 1
			return false
		})
	}
}

// DidMount marks c live. A render that set state before c was attached
// is honored now.
func (c *Component) DidMount() {
	s := c.state
	if s == nil {
		return
	}
	s.mounted.Store(true)
	if s.dirty.Load() && c.session != nil {
		c.session.ScheduleUpdate(c)
	}
}

// WillUnmount detaches subscriptions, schedules the cleanup of every
// effect that has one, and clears the hooks.
func (c *Component) WillUnmount() {
	s := c.state
	if s == nil || c.retired() {
		return
	}
	s.mounted.Store(false)
	s.unsubscribeAll()
	for _, h := range s.hooks {
		if eh, ok := h.(*EffectHook); ok {
			eh.dispose(c.session)
		}
	}
	s.hooks = nil
	s.pending = nil
	s.memo = nil
	s.owner.Store(nil)
	c.state = nil
	c.body = nil
}

// MigrateFrom takes over the state of prev, which the reconciler decided
// is the same logical component. prev is marked stale and refuses further
// updates.
func (c *Component) MigrateFrom(prev tree.Node) {
	old, ok := prev.(*Component)
	if !ok || old == c || old.state == nil {
		return
	}
	c.state = old.state
	c.state.owner.Store(c)
	c.body = old.body
	if c.session == nil {
		c.session = old.session
	}
	old.stale.Store(true)
	old.state = nil
	old.body = nil
}
