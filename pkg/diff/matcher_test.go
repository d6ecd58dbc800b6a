package diff

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func hashes(s string) []uint64 {
	out := make([]uint64, len(s))
	for i, r := range s {
		out[i] = uint64(r)
	}
	return out
}

// apply replays opcodes over a and returns the result.
func apply(a, b []uint64, ops []Opcode) []uint64 {
	var out []uint64
	for _, op := range ops {
		switch op.Tag {
		case Equal:
			out = append(out, a[op.I1:op.I2]...)
		case Insert, Replace:
			out = append(out, b[op.J1:op.J2]...)
		}
	}
	return out
}

func TestOpcodes(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want []Opcode
	}{
		{"identical", "xyz", "xyz", []Opcode{{Equal, 0, 3, 0, 3}}},
		{"delete middle", "xyz", "xz", []Opcode{{Equal, 0, 1, 0, 1}, {Delete, 1, 2, 1, 1}, {Equal, 2, 3, 1, 2}}},
		{"append", "xy", "xyw", []Opcode{{Equal, 0, 2, 0, 2}, {Insert, 2, 2, 2, 3}}},
		{"replace", "x", "w", []Opcode{{Replace, 0, 1, 0, 1}}},
		{"both empty", "", "", []Opcode{}},
		{"from empty", "", "ab", []Opcode{{Insert, 0, 0, 0, 2}}},
		{"to empty", "ab", "", []Opcode{{Delete, 0, 2, 0, 0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewMatcher(hashes(tt.a), hashes(tt.b), nil).Opcodes()
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("opcodes mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestOpcodes_ReplayYieldsTarget(t *testing.T) {
	pairs := [][2]string{
		{"xyz", "zyx"},
		{"abcabba", "cbabac"},
		{"qabxcd", "abycdf"},
		{"aaaa", "aa"},
		{"private", "pirate"},
	}
	for _, p := range pairs {
		a, b := hashes(p[0]), hashes(p[1])
		got := apply(a, b, NewMatcher(a, b, nil).Opcodes())
		if diff := cmp.Diff(b, got); diff != "" {
			t.Errorf("%q -> %q replay mismatch (-want +got):\n%s", p[0], p[1], diff)
		}
	}
}

func TestMatchingBlocks(t *testing.T) {
	m := NewMatcher(hashes("abxcd"), hashes("abcd"), nil)
	want := []Match{{0, 0, 2}, {3, 2, 2}, {5, 4, 0}}
	if diff := cmp.Diff(want, m.MatchingBlocks()); diff != "" {
		t.Errorf("blocks mismatch (-want +got):\n%s", diff)
	}
}

func TestMatcher_HashCollisionFallsBackToEquality(t *testing.T) {
	// Every element collides; only equal values may match.
	a := []string{"x", "y", "z"}
	b := []string{"x", "q", "z"}
	collide := func(n int) []uint64 { return make([]uint64, n) }

	m := NewMatcher(collide(len(a)), collide(len(b)), func(i, j int) bool { return a[i] == b[j] })
	want := []Opcode{{Equal, 0, 1, 0, 1}, {Replace, 1, 2, 1, 2}, {Equal, 2, 3, 2, 3}}
	if diff := cmp.Diff(want, m.Opcodes()); diff != "" {
		t.Errorf("opcodes mismatch (-want +got):\n%s", diff)
	}
}

func TestRatio(t *testing.T) {
	if got := NewMatcher(hashes("abcd"), hashes("bcde"), nil).Ratio(); got != 0.75 {
		t.Errorf("Ratio() = %v, want 0.75", got)
	}
	if got := NewMatcher(nil, nil, nil).Ratio(); got != 1 {
		t.Errorf("Ratio() of empty sequences = %v, want 1", got)
	}
}

func TestTagString(t *testing.T) {
	for tag, want := range map[Tag]string{Equal: "equal", Delete: "delete", Insert: "insert", Replace: "replace", 0: "unknown"} {
		if got := tag.String(); got != want {
			t.Errorf("Tag(%d).String() = %q, want %q", tag, got, want)
		}
	}
}
