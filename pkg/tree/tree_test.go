package tree

import (
	"testing"

	"github.com/go-drift/patchwork/pkg/errors"
	"github.com/google/go-cmp/cmp"
)

func text(value string) *Control {
	return NewControl("Text", Props{"value": value})
}

func TestHash_EqualPropsHashEqually(t *testing.T) {
	a := NewControl("Text", Props{"value": "a", "size": 12, "tags": []string{"x", "y"}})
	b := NewControl("Text", Props{"tags": []string{"x", "y"}, "size": 12, "value": "a"})

	if Hash(a) != Hash(b) {
		t.Error("controls with equal props should hash equally")
	}
	if !Same(a, b) {
		t.Error("controls with equal props should be Same")
	}
}

func TestHash_DifferentProps(t *testing.T) {
	tests := []struct {
		name string
		a, b Node
	}{
		{"value", text("a"), text("b")},
		{"kind", NewControl("Text", nil), NewControl("Icon", nil)},
		{"type", NewControl("Text", Props{"v": 1}), NewControl("Text", Props{"v": "1"})},
		{"missing prop", NewControl("Text", Props{"v": 1}), NewControl("Text", Props{"v": 1, "w": 2})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if Same(tt.a, tt.b) {
				t.Errorf("Same(%v, %v) = true, want false", tt.a, tt.b)
			}
		})
	}
}

func TestSame_KeyedIgnoresProps(t *testing.T) {
	a := text("a").WithKey("row-1")
	b := text("b").WithKey("row-1")
	c := text("a").WithKey("row-2")

	if !Same(a, b) || Hash(a) != Hash(b) {
		t.Error("keyed controls with the same key should match regardless of props")
	}
	if Same(a, c) {
		t.Error("keyed controls with different keys should not match")
	}
	if Same(a, text("a")) {
		t.Error("keyed and unkeyed controls should not match")
	}
}

type identified struct {
	Control
	id any
}

func (n *identified) Identity() any { return n.id }

func TestSame_Identifier(t *testing.T) {
	a := &identified{Control: Control{kind: "Component", props: Props{"x": 1}}, id: "fn"}
	b := &identified{Control: Control{kind: "Component", props: Props{"x": 2}}, id: "fn"}

	if !Same(a, b) || Hash(a) != Hash(b) {
		t.Error("identifier nodes with equal identity should match")
	}
	b.id = "other"
	if Same(a, b) {
		t.Error("identifier nodes with different identity should not match")
	}
}

func TestValueEqual(t *testing.T) {
	fn := func() {}
	p := &struct{ X int }{1}
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"nil", nil, nil, true},
		{"nil vs value", nil, 1, false},
		{"ints", 3, 3, true},
		{"slices", []int{1, 2}, []int{1, 2}, true},
		{"slice length", []int{1}, []int{1, 2}, false},
		{"maps", map[string]int{"a": 1}, map[string]int{"a": 1}, true},
		{"map values", map[string]int{"a": 1}, map[string]int{"a": 2}, false},
		{"same func", fn, fn, true},
		{"handlers match by presence", fn, func() {}, true},
		{"nil handler", (func())(nil), fn, false},
		{"same pointer", p, p, true},
		{"equal pointees", p, &struct{ X int }{1}, false},
		{"structs", struct{ A []int }{[]int{1}}, struct{ A []int }{[]int{1}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValueEqual(tt.a, tt.b); got != tt.want {
				t.Errorf("ValueEqual(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestFlatten(t *testing.T) {
	a, b, c := text("a"), text("b"), text("c")
	got := Flatten(a, nil, Group(b, Group(c)), nil)
	want := []Node{a, b, c}

	if len(got) != len(want) {
		t.Fatalf("Flatten returned %d nodes, want %d", len(got), len(want))
	}
	for i := range want {
		if !SameObject(got[i], want[i]) {
			t.Errorf("Flatten()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestFreeze(t *testing.T) {
	child := text("a")
	root := NewControl("Column", nil, child)

	Freeze(root)

	if !root.IsFrozen() || !child.IsFrozen() {
		t.Fatal("Freeze should mark the node and its descendants")
	}

	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, errors.ErrFrozen) {
			t.Errorf("mutating a frozen control should panic with ErrFrozen, got %v", r)
		}
	}()
	child.Set("value", "b")
}

func TestControl_Mutation(t *testing.T) {
	c := NewControl("Row", Props{"spacing": 4})
	a, b, d := text("a"), text("b"), text("d")

	c.Append(a, b).Insert(1, d).RemoveAt(0).Set("spacing", nil).Set("wrap", true)

	if diff := cmp.Diff(Props{"wrap": true}, c.Props()); diff != "" {
		t.Errorf("props mismatch (-want +got):\n%s", diff)
	}
	got := c.Children()
	if len(got) != 2 || !SameObject(got[0], d) || !SameObject(got[1], b) {
		t.Errorf("children = %v, want [d b]", got)
	}
}

func TestBase_Adopt(t *testing.T) {
	prev := text("a")
	prev.SetID(7)
	prev.SetPrevProps(Props{"value": "a"})
	prev.SetPrevChildren([]Node{text("child")})

	next := text("a")
	next.Adopt(&prev.Base)

	if next.ID() != 7 {
		t.Errorf("ID = %d, want 7", next.ID())
	}
	if len(next.PrevChildren()) != 1 {
		t.Errorf("PrevChildren len = %d, want 1", len(next.PrevChildren()))
	}
	if prev.ID() != 0 || prev.PrevChildren() != nil {
		t.Error("Adopt should release the previous node")
	}
}

func TestWalk(t *testing.T) {
	root := NewControl("Column", nil,
		NewControl("Row", nil, text("a"), text("b")),
		text("c"),
	)
	var kinds []string
	Walk(root, func(n Node) bool {
		kinds = append(kinds, n.Kind())
		return n.Kind() != "Row"
	})
	want := []string{"Column", "Row", "Text"}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Errorf("walk order mismatch (-want +got):\n%s", diff)
	}
}
