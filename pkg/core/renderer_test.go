package core

import (
	"testing"

	"github.com/go-drift/patchwork/pkg/tree"
)

var themeKey = NewContextKey("theme", "light")

func TestProvideAndUseContext(t *testing.T) {
	fs := newFakeSession()
	seen := map[string]string{}
	leaf := func(ctx *Context, name string) tree.Node {
		seen[name] = UseContext(ctx, themeKey)
		return nil
	}
	middle := func(ctx *Context, _ struct{}) tree.Node {
		return RenderComponent(ctx, leaf, "deep")
	}
	root := New(func(ctx *Context, _ struct{}) tree.Node {
		return tree.NewControl("Column", nil,
			Provide(ctx, themeKey, "dark", func() tree.Node {
				return tree.Group(
					RenderComponent(ctx, middle, struct{}{}),
					Provide(ctx, themeKey, "contrast", func() tree.Node {
						return RenderComponent(ctx, leaf, "inner")
					}),
					RenderComponent(ctx, leaf, "after inner"),
				)
			}),
			RenderComponent(ctx, leaf, "outside"),
		)
	}, struct{}{})
	fs.mount(t, root)

	want := map[string]string{
		"deep":        "dark",
		"inner":       "contrast",
		"after inner": "dark",
		"outside":     "light",
	}
	for name, theme := range want {
		if seen[name] != theme {
			t.Errorf("%s saw %q, want %q", name, seen[name], theme)
		}
	}
}

func TestContextChangeDefeatsMemo(t *testing.T) {
	fs := newFakeSession()
	renders := 0
	leaf := func(ctx *Context, _ struct{}) tree.Node {
		renders++
		UseContext(ctx, themeKey)
		return nil
	}
	root := New(func(ctx *Context, theme string) tree.Node {
		return Provide(ctx, themeKey, theme, func() tree.Node {
			return RenderComponent(ctx, leaf, struct{}{}, Memo())
		})
	}, "dark")
	fs.mount(t, root)

	root.Update()
	if renders != 1 {
		t.Fatalf("memoized leaf rendered %d times, want 1", renders)
	}
	root.SetProps("light")
	root.Update()
	if renders != 2 {
		t.Errorf("leaf rendered %d times after the context changed, want 2", renders)
	}
}

func TestRendererStacks(t *testing.T) {
	r := newRenderer(map[any]any{"k": 1})
	if v, _ := r.Lookup("k"); v != 1 {
		t.Fatalf("seeded value = %v", v)
	}
	r.PushContext("k", 2)
	r.PushContext("k", 3)
	r.PopContext("k")
	if v, _ := r.Lookup("k"); v != 2 {
		t.Errorf("Lookup after pop = %v, want 2", v)
	}
	r.PopContext("k")
	r.PopContext("k")
	r.PopContext("k")
	if _, ok := r.Lookup("k"); ok {
		t.Error("expected empty stack")
	}
	if r.snapshot() != nil {
		t.Error("expected nil snapshot for empty stacks")
	}
}

func TestRendererFrames(t *testing.T) {
	r := newRenderer(nil)
	a := &Component{name: "a"}
	b := &Component{name: "b"}
	ca := r.enter(a)
	cb := r.enter(b)
	if r.Current() != b {
		t.Errorf("Current() = %v, want b", r.Current())
	}
	r.exit(cb)
	if r.Current() != a || cb.active {
		t.Error("exit did not pop b")
	}
	r.exit(ca)
	if r.Current() != nil {
		t.Error("expected no current component")
	}
}
