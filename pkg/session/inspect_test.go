package session_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-drift/patchwork/pkg/core"
	"github.com/go-drift/patchwork/pkg/session"
	"github.com/go-drift/patchwork/pkg/tree"
)

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func mountedCounter(t *testing.T) *session.Session {
	t.Helper()
	s := session.New(session.WithName("inspect"))
	if err := s.Mount(core.New(counter, "clicks", core.WithKey("main"))); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Unmount() })
	return s
}

func TestInspectTree(t *testing.T) {
	s := mountedCounter(t)
	rec := get(t, s.InspectHandler(), "/tree")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}
	var root session.TreeNode
	if err := json.Unmarshal(rec.Body.Bytes(), &root); err != nil {
		t.Fatal(err)
	}
	if root.Kind != "Component" || !strings.HasSuffix(root.Name, "counter") || root.Key != "main" {
		t.Errorf("unexpected root %+v", root)
	}
	if root.Hooks != 1 || root.Dirty || root.Stale {
		t.Errorf("unexpected component flags %+v", root)
	}
	if len(root.Children) != 1 || root.Children[0].Kind != "Row" || len(root.Children[0].Children) != 2 {
		t.Fatalf("unexpected children %+v", root.Children)
	}
	button := root.Children[0].Children[1]
	if button.Props["onClick"] != true || button.Depth != 2 {
		t.Errorf("unexpected button %+v", button)
	}
}

func TestInspectTreeDepth(t *testing.T) {
	s := mountedCounter(t)
	rec := get(t, s.InspectHandler(), "/tree?depth=1")
	var root session.TreeNode
	if err := json.Unmarshal(rec.Body.Bytes(), &root); err != nil {
		t.Fatal(err)
	}
	if len(root.Children) != 0 {
		t.Errorf("depth=1 returned children: %+v", root.Children)
	}
	if rec := get(t, s.InspectHandler(), "/tree?depth=x"); rec.Code != http.StatusBadRequest {
		t.Errorf("bad depth: status %d", rec.Code)
	}
}

func TestInspectWithoutRoot(t *testing.T) {
	s := session.New()
	if rec := get(t, s.InspectHandler(), "/tree"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status %d, want 503", rec.Code)
	}
	if _, ok := s.Inspect(0); ok {
		t.Error("Inspect reported a tree")
	}
}

func TestInspectRejectsPost(t *testing.T) {
	s := session.New()
	rec := httptest.NewRecorder()
	s.InspectHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/tree", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status %d, want 405", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	s := mountedCounter(t)
	rec := get(t, s.InspectHandler(), "/health")
	var health struct {
		Status, Name, Protocol string
		Nodes                  int
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatal(err)
	}
	if health.Status != "ok" || health.Name != "inspect" || health.Protocol != "v1.0.0" || health.Nodes != 4 {
		t.Errorf("unexpected health %+v", health)
	}
}

func TestStartInspector(t *testing.T) {
	s := session.New()
	if err := s.Mount(tree.NewControl("Text", tree.Props{"value": "hi"})); err != nil {
		t.Fatal(err)
	}
	in, err := s.StartInspector("127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer in.Stop()

	resp, err := http.Get(fmt.Sprintf("http://%s/tree", in.Addr()))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var root session.TreeNode
	if err := json.NewDecoder(resp.Body).Decode(&root); err != nil {
		t.Fatal(err)
	}
	if root.Kind != "Text" || root.Props["value"] != "hi" {
		t.Errorf("unexpected root %+v", root)
	}
	if err := in.Stop(); err != nil {
		t.Errorf("Stop: %v", err)
	}
}
