package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-drift/patchwork/pkg/core"
	"github.com/go-drift/patchwork/pkg/errors"
	"github.com/go-drift/patchwork/pkg/tree"
)

// maxTreeDepth limits recursion depth to prevent stack overflow from malformed trees.
const maxTreeDepth = 500

// TreeNode is a node of the live tree as served by the inspector.
type TreeNode struct {
	ID       tree.ID    `json:"id"`
	Kind     string     `json:"kind"`
	Key      any        `json:"key,omitempty"`
	Props    tree.Props `json:"props,omitempty"`
	Name     string     `json:"name,omitempty"`
	Depth    int        `json:"depth"`
	Dirty    bool       `json:"dirty,omitempty"`
	Stale    bool       `json:"stale,omitempty"`
	Hooks    int        `json:"hooks,omitempty"`
	Children []TreeNode `json:"children,omitempty"`
}

// Inspect serializes the live tree, at most maxDepth levels deep (0 means
// the default limit). ok is false when nothing is mounted.
func (s *Session) Inspect(maxDepth int) (root TreeNode, ok bool) {
	if maxDepth <= 0 || maxDepth > maxTreeDepth {
		maxDepth = maxTreeDepth
	}
	s.renderMu.Lock()
	defer s.renderMu.Unlock()
	if s.root == nil {
		return TreeNode{}, false
	}
	return inspectNode(s.root, 0, maxDepth), true
}

func inspectNode(n tree.Node, depth, maxDepth int) TreeNode {
	b := n.NodeBase()
	out := TreeNode{ID: b.ID(), Kind: n.Kind(), Key: n.Key(), Props: b.PrevProps(), Depth: depth}
	if c, ok := n.(*core.Component); ok {
		out.Props = nil
		out.Name = c.Name()
		out.Dirty = c.Dirty()
		out.Stale = c.Stale()
		if st := c.State(); st != nil {
			out.Hooks = len(st.Hooks())
		}
	}
	if depth+1 >= maxDepth {
		return out
	}
	for _, child := range b.PrevChildren() {
		out.Children = append(out.Children, inspectNode(child, depth+1, maxDepth))
	}
	return out
}

// InspectHandler serves the live tree for debugging:
//
//	GET /tree[?depth=N]  the tree as JSON
//	GET /health          session name, protocol and counters
func (s *Session) InspectHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/tree", s.handleTree)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

func (s *Session) handleTree(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Recover from panics during serialization
	defer func() {
		if rec := recover(); rec != nil {
			http.Error(w, fmt.Sprintf("panic: %v", rec), http.StatusInternalServerError)
		}
	}()

	depth := 0
	if value := r.URL.Query().Get("depth"); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed <= 0 {
			http.Error(w, "depth must be a positive integer", http.StatusBadRequest)
			return
		}
		depth = parsed
	}
	root, ok := s.Inspect(depth)
	if !ok {
		http.Error(w, "no tree mounted", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, root)
}

func (s *Session) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.mu.Lock()
	dirty, effects := len(s.dirty), len(s.effects)
	s.mu.Unlock()
	writeJSON(w, struct {
		Status   string `json:"status"`
		Name     string `json:"name"`
		Protocol string `json:"protocol"`
		Nodes    int    `json:"nodes"`
		Dirty    int    `json:"dirty"`
		Effects  int    `json:"effects"`
	}{"ok", s.name, s.Protocol(), s.index.Len(), dirty, effects})
}

func writeJSON(w http.ResponseWriter, v any) {
	// Encode to buffer first so we can catch errors
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		http.Error(w, fmt.Sprintf("json encode error: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// Inspector serves a session's InspectHandler over HTTP.
type Inspector struct {
	server   *http.Server
	listener net.Listener
	mu       sync.Mutex
}

// StartInspector listens on addr and serves s's inspection endpoints in
// the background. Use port 0 for an ephemeral port and read it back with
// Addr.
func (s *Session) StartInspector(addr string) (*Inspector, error) {
	// Bind listener first to fail fast on port conflicts
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("inspector listen: %w", err)
	}
	in := &Inspector{
		server:   &http.Server{Handler: s.InspectHandler(), ReadHeaderTimeout: 5 * time.Second},
		listener: listener,
	}
	go func() {
		if err := in.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			in.mu.Lock()
			in.server = nil
			in.mu.Unlock()
			errors.Report(&errors.Error{Op: "session.Inspector", Err: fmt.Errorf("inspector for %s stopped: %w", s.name, err)})
		}
	}()
	return in, nil
}

// Addr returns the address the inspector listens on.
func (in *Inspector) Addr() net.Addr { return in.listener.Addr() }

// Stop gracefully shuts the inspector down.
func (in *Inspector) Stop() error {
	in.mu.Lock()
	server := in.server
	in.server = nil
	in.mu.Unlock()
	if server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}
