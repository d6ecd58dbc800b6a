// Package core provides components, hooks and the render pass.
//
// A component is a plain function from props to a node, wrapped in a
// Component that carries its persistent state:
//
//	func Counter(ctx *core.Context, p CounterProps) tree.Node {
//	    count := core.UseState(ctx, p.Start)
//	    return tree.NewControl("Row", nil,
//	        tree.NewControl("Text", tree.Props{"value": strconv.Itoa(count.Value())}),
//	        tree.NewControl("Button", tree.Props{
//	            "text":    "+",
//	            "onClick": func() { count.Update(func(n int) int { return n + 1 }) },
//	        }),
//	    )
//	}
//
//	root := core.New(Counter, CounterProps{Start: 1})
//
// # Render Context
//
// Every render receives an explicit *Context. Hooks and RenderComponent
// take it as their first argument and panic when it is used outside the
// render it was created for.
//
// # Hooks
//
// Hooks are positional. Each call claims the next slot of the component's
// hook list, so a render function must call the same hooks in the same
// order every time. UseHook is the primitive; UseState, UseEffect, UseRef
// and UseMemo build on it. UseContext reads values set with Provide.
//
// # Re-rendering
//
// Setting state, changing props with SetProps, or a change to an
// Observable passed in the props marks a component dirty and schedules it
// with its Session. Child components are created lazily: RenderComponent
// returns an unrendered Component that renders when the reconciler
// attaches it or revisits it. A component created with Memo skips that
// revisit when its props are shallowly equal to the last render's.
//
// When a parent re-renders it produces new Component objects. The
// reconciler pairs each with its predecessor, and the new object adopts
// the predecessor's state. The old object is marked stale and ignores
// further updates.
package core
