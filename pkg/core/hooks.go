package core

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/go-drift/patchwork/pkg/errors"
)

// Hook is one slot of per-component state. Any value can be a hook; the
// slot's concrete type is its kind.
type Hook any

// UseHook claims the next hook slot of the component being rendered. On
// the first render at this position it stores create(); later renders get
// the stored hook back. The cursor always advances by one.
//
// If the slot holds a hook of another kind, the hook order changed between
// renders. The slot is reset with a fresh hook and a HookError is reported,
// or raised when the session runs with strict hooks.
//
// UseHook panics when ctx is not an active render context.
func UseHook[H any](ctx *Context, create func() H) H {
	c := ctx.mustComponent("core.UseHook")
	s := c.state
	i := s.cursor
	s.cursor++

	if i < len(s.hooks) {
		if h, ok := s.hooks[i].(H); ok {
			return h
		}
		herr := &errors.HookError{
			Component: c.String(),
			Position:  i,
			Previous:  kindOf(s.hooks[i]),
			Current:   reflect.TypeFor[H]().String(),
		}
		if isStrict(c.session) {
			panic(herr)
		}
		errors.Report(&errors.Error{Op: "core.UseHook", Kind: errors.KindHook, Scope: int64(c.ID()), Err: herr})
		if eh, ok := s.hooks[i].(*EffectHook); ok {
			eh.dispose(c.session)
		}
		h := create()
		s.hooks[i] = h
		return h
	}
	h := create()
	s.hooks = append(s.hooks, h)
	return h
}

func kindOf(h Hook) string {
	if h == nil {
		return "<nil>"
	}
	return reflect.TypeOf(h).String()
}

// StateHook holds a value that survives re-renders. Setting a different
// value marks the owner dirty.
type StateHook[T any] struct {
	mu    sync.Mutex
	value T
	state *ComponentState
}

// UseState returns the component's state hook at this position, created
// with initial on the first render.
//
// Hooks are positional: if a branch flip makes this call claim a slot that
// an earlier render filled with a StateHook of the same T, the earlier
// value is returned and initial is ignored.
func UseState[T any](ctx *Context, initial T) *StateHook[T] {
	s := ctx.mustComponent("core.UseState").state
	return UseHook(ctx, func() *StateHook[T] {
		return &StateHook[T]{value: initial, state: s}
	})
}

// Value returns the current value.
func (h *StateHook[T]) Value() T {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.value
}

// Set stores v and schedules a re-render unless v is shallowly equal to
// the current value. Safe to call from any goroutine.
func (h *StateHook[T]) Set(v T) {
	h.mu.Lock()
	if shallowEqual(h.value, v) {
		h.mu.Unlock()
		return
	}
	h.value = v
	h.mu.Unlock()
	h.state.markDirty()
}

// Update applies fn to the current value and stores the result.
func (h *StateHook[T]) Update(fn func(T) T) {
	h.Set(fn(h.Value()))
}

func (h *StateHook[T]) String() string {
	return fmt.Sprintf("StateHook(%v)", h.Value())
}

// Ref is a mutable box that survives re-renders. Writing Current does not
// schedule a render.
type Ref[T any] struct {
	Current T
}

// UseRef returns the component's ref at this position.
func UseRef[T any](ctx *Context, initial T) *Ref[T] {
	return UseHook(ctx, func() *Ref[T] { return &Ref[T]{Current: initial} })
}

type memoHook[T any] struct {
	value T
	deps  []any
	ok    bool
}

// UseMemo returns compute()'s cached result, recomputing it when deps
// change. Nil deps recompute on every render.
func UseMemo[T any](ctx *Context, compute func() T, deps []any) T {
	h := UseHook(ctx, func() *memoHook[T] { return &memoHook[T]{} })
	if !h.ok || deps == nil || !depsEqual(h.deps, deps) {
		h.value = compute()
		h.deps = deps
		h.ok = true
	}
	return h.value
}
