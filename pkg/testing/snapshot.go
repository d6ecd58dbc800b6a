package testing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-drift/patchwork/pkg/diff"
)

// TestingT is the subset of *testing.T used by MatchesFile, allowing
// test doubles to intercept failures.
type TestingT interface {
	Helper()
	Fatalf(format string, args ...any)
	Errorf(format string, args ...any)
	Name() string
}

// UpdateSnapshotsEnv names the environment variable that makes MatchesFile
// rewrite golden files instead of comparing against them.
const UpdateSnapshotsEnv = "PATCHWORK_UPDATE_SNAPSHOTS"

// Snapshot captures the structure of a client tree.
type Snapshot struct {
	Tree []Shape `json:"tree"`
}

// CaptureSnapshot captures the client tree's current structure.
func (c *ClientTree) CaptureSnapshot() *Snapshot {
	return &Snapshot{Tree: c.Shapes()}
}

// MatchesFile compares this snapshot against a golden file. On mismatch it
// reports a diff and instructions for updating. When
// PATCHWORK_UPDATE_SNAPSHOTS=1 is set, the file is silently updated instead.
func (s *Snapshot) MatchesFile(t TestingT, path string) {
	t.Helper()

	if os.Getenv(UpdateSnapshotsEnv) == "1" {
		if err := s.UpdateFile(path); err != nil {
			t.Fatalf("failed to update snapshot: %v", err)
		}
		return
	}

	expected, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("snapshot file missing: %s\n\nTo create: %s=1 go test -run %s", path, UpdateSnapshotsEnv, t.Name())
			return
		}
		t.Fatalf("failed to load snapshot: %v", err)
		return
	}

	actual, err := marshalSnapshot(s)
	if err != nil {
		t.Fatalf("failed to encode snapshot: %v", err)
		return
	}
	if d := lineDiff(string(expected), string(actual)); d != "" {
		t.Errorf("snapshot mismatch: %s\n%s\n\nTo update: %s=1 go test -run %s", path, d, UpdateSnapshotsEnv, t.Name())
	}
}

// UpdateFile writes this snapshot to the given path, creating directories
// as needed.
func (s *Snapshot) UpdateFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := marshalSnapshot(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Diff returns a line diff between other (expected) and this snapshot
// (actual). Returns empty string if equal.
func (s *Snapshot) Diff(other *Snapshot) string {
	a, _ := marshalSnapshot(s)
	b, _ := marshalSnapshot(other)
	if bytes.Equal(a, b) {
		return ""
	}
	return lineDiff(string(b), string(a))
}

func marshalSnapshot(s *Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// lineDiff produces a line-oriented diff of expected and actual.
func lineDiff(expected, actual string) string {
	if expected == actual {
		return ""
	}
	a := strings.Split(expected, "\n")
	b := strings.Split(actual, "\n")
	m := diff.NewMatcher(hashLines(a), hashLines(b), func(i, j int) bool { return a[i] == b[j] })

	var buf strings.Builder
	buf.WriteString("--- expected\n+++ actual\n")
	for _, op := range m.Opcodes() {
		switch op.Tag {
		case diff.Equal:
			continue
		case diff.Delete:
			writeLines(&buf, "-", a[op.I1:op.I2])
		case diff.Insert:
			writeLines(&buf, "+", b[op.J1:op.J2])
		case diff.Replace:
			writeLines(&buf, "-", a[op.I1:op.I2])
			writeLines(&buf, "+", b[op.J1:op.J2])
		}
	}
	return buf.String()
}

func hashLines(lines []string) []uint64 {
	out := make([]uint64, len(lines))
	for i, l := range lines {
		h := fnv.New64a()
		h.Write([]byte(l))
		out[i] = h.Sum64()
	}
	return out
}

func writeLines(buf *strings.Builder, prefix string, lines []string) {
	for _, l := range lines {
		fmt.Fprintf(buf, "%s%s\n", prefix, l)
	}
}
