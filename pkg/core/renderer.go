package core

import (
	"fmt"

	"github.com/go-drift/patchwork/pkg/errors"
	"github.com/go-drift/patchwork/pkg/tree"
)

// Renderer drives one render pass. It keeps the stack of components being
// rendered and, per context key, a stack of provided values where the
// last push wins.
type Renderer struct {
	frames   []*Context
	contexts map[any][]any
}

// newRenderer seeds the context stacks with a component's snapshot.
func newRenderer(snapshot map[any]any) *Renderer {
	r := &Renderer{contexts: make(map[any][]any, len(snapshot))}
	for k, v := range snapshot {
		r.contexts[k] = []any{v}
	}
	return r
}

func (r *Renderer) enter(c *Component) *Context {
	ctx := &Context{renderer: r, component: c, active: true}
	r.frames = append(r.frames, ctx)
	return ctx
}

func (r *Renderer) exit(ctx *Context) {
	ctx.active = false
	if n := len(r.frames); n > 0 && r.frames[n-1] == ctx {
		r.frames = r.frames[:n-1]
	}
}

// Current returns the component whose render is in progress, or nil.
func (r *Renderer) Current() *Component {
	if len(r.frames) == 0 {
		return nil
	}
	return r.frames[len(r.frames)-1].component
}

// PushContext makes value the innermost value for key.
func (r *Renderer) PushContext(key, value any) {
	r.contexts[key] = append(r.contexts[key], value)
}

// PopContext removes the innermost value for key.
func (r *Renderer) PopContext(key any) {
	stack := r.contexts[key]
	switch len(stack) {
	case 0:
	case 1:
		delete(r.contexts, key)
	default:
		r.contexts[key] = stack[:len(stack)-1]
	}
}

// Lookup returns the innermost value for key.
func (r *Renderer) Lookup(key any) (any, bool) {
	stack := r.contexts[key]
	if len(stack) == 0 {
		return nil, false
	}
	return stack[len(stack)-1], true
}

// snapshot returns the innermost value of every key.
func (r *Renderer) snapshot() map[any]any {
	if len(r.contexts) == 0 {
		return nil
	}
	out := make(map[any]any, len(r.contexts))
	for k, stack := range r.contexts {
		out[k] = stack[len(stack)-1]
	}
	return out
}

// Context is the explicit render context handed to a render function. It
// is valid only while that render runs; hooks called through a finished
// context panic.
type Context struct {
	renderer  *Renderer
	component *Component
	active    bool
}

// Component returns the component being rendered.
func (ctx *Context) Component() *Component { return ctx.component }

// Session returns the session of the component being rendered.
func (ctx *Context) Session() Session { return ctx.component.session }

// Renderer returns the renderer driving this pass.
func (ctx *Context) Renderer() *Renderer { return ctx.renderer }

func (ctx *Context) mustComponent(op string) *Component {
	if ctx == nil || !ctx.active || ctx.component == nil {
		panic(&errors.Error{Op: op, Kind: errors.KindHook, Err: errors.ErrOutsideRender})
	}
	return ctx.component
}

// ContextKey names an ambient value of type T passed down the component
// tree. Keys compare by identity.
type ContextKey[T any] struct {
	name string
	def  T
}

// NewContextKey creates a key whose lookups fall back to def.
func NewContextKey[T any](name string, def T) *ContextKey[T] {
	return &ContextKey[T]{name: name, def: def}
}

func (k *ContextKey[T]) String() string { return fmt.Sprintf("ContextKey(%s)", k.name) }

// Provide makes value visible to UseContext in every component created by
// build, at any depth, and returns build's result.
//
//	return core.Provide(ctx, ThemeKey, dark, func() tree.Node {
//	    return core.RenderComponent(ctx, Toolbar, ToolbarProps{})
//	})
func Provide[T any](ctx *Context, key *ContextKey[T], value T, build func() tree.Node) tree.Node {
	ctx.mustComponent("core.Provide")
	ctx.renderer.PushContext(key, value)
	defer ctx.renderer.PopContext(key)
	return build()
}

// UseContext returns the innermost value provided for key above the
// component, or the key's default. It does not claim a hook slot.
func UseContext[T any](ctx *Context, key *ContextKey[T]) T {
	ctx.mustComponent("core.UseContext")
	if v, ok := ctx.renderer.Lookup(key); ok {
		if t, ok := v.(T); ok {
			return t
		}
	}
	return key.def
}
