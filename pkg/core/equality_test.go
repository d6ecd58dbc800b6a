package core

import "testing"

func TestShallowEqual(t *testing.T) {
	shared := []int{1, 2}
	m := map[string]int{"a": 1}
	p := &struct{ X int }{1}
	fn := func() {}
	type props struct {
		Name  string
		Items []int
		Ptr   *struct{ X int }
		Cb    func()
	}
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"nil", nil, nil, true},
		{"nil vs value", nil, 1, false},
		{"strings", "a", "a", true},
		{"different types", 1, int64(1), false},
		{"same slice", shared, shared, true},
		{"equal slices, different storage", []int{1, 2}, []int{1, 2}, false},
		{"same map", m, m, true},
		{"equal maps", map[string]int{"a": 1}, map[string]int{"a": 1}, false},
		{"same pointer", p, p, true},
		{"func never equal", fn, fn, false},
		{"struct fields identical", props{Name: "a", Items: shared, Ptr: p}, props{Name: "a", Items: shared, Ptr: p}, true},
		{"struct field differs", props{Name: "a"}, props{Name: "b"}, false},
		{"struct with callback", props{Cb: fn}, props{Cb: fn}, false},
		{"nested struct by value", struct{ In struct{ X int } }{}, struct{ In struct{ X int } }{}, true},
		{"interface holding slice", any([]int(nil)), any([]int(nil)), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shallowEqual(tt.a, tt.b); got != tt.want {
				t.Errorf("shallowEqual(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestDepsEqual(t *testing.T) {
	if !depsEqual([]any{1, "a"}, []any{1, "a"}) {
		t.Error("equal deps reported different")
	}
	if depsEqual([]any{1}, []any{1, 2}) {
		t.Error("deps of different length reported equal")
	}
	if !depsEqual(nil, []any{}) {
		t.Error("empty deps reported different")
	}
}
