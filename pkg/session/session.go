package session

import (
	"fmt"
	"slices"
	"sync"

	"golang.org/x/mod/semver"

	"github.com/go-drift/patchwork/pkg/config"
	"github.com/go-drift/patchwork/pkg/core"
	"github.com/go-drift/patchwork/pkg/errors"
	"github.com/go-drift/patchwork/pkg/patch"
	"github.com/go-drift/patchwork/pkg/tree"
)

// Sink receives the patch batches a flush produced, in order.
type Sink interface {
	Send(batches []patch.Batch) error
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(batches []patch.Batch) error

func (f SinkFunc) Send(batches []patch.Batch) error { return f(batches) }

type effectTask struct {
	hook    *core.EffectHook
	cleanup bool
}

// Session owns one client's live tree: the index of mounted nodes, the
// queue of dirty components, the effect queue and the batches waiting to
// be sent. Renders happen only inside Mount, Update, Flush and Unmount,
// which are serialized. ScheduleUpdate may be called from any goroutine.
type Session struct {
	index       *patch.Index
	sink        Sink
	name        string
	protocol    string
	strictHooks bool
	maxPasses   int

	// renderMu serializes renders and tree inspection.
	renderMu sync.Mutex
	root     tree.Node

	mu       sync.Mutex
	dirty    []*core.Component
	dirtySet map[*core.Component]bool
	effects  []effectTask
	pending  []patch.Batch

	// OnNeedsFlush is called when a component is scheduled for a re-render,
	// so a host that flushes on demand knows to call Flush.
	OnNeedsFlush func()
}

var _ core.Session = (*Session)(nil)

// Option configures a Session.
type Option func(*Session)

// WithSink sets where flushed batches go. Without a sink they are dropped.
func WithSink(sink Sink) Option {
	return func(s *Session) { s.sink = sink }
}

// WithStrictHooks makes a hook slot claimed with a different hook kind
// panic instead of being reset.
func WithStrictHooks(strict bool) Option {
	return func(s *Session) { s.strictHooks = strict }
}

// WithMaxFlushPasses bounds the settle loop of Flush.
func WithMaxFlushPasses(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.maxPasses = n
		}
	}
}

// WithProtocol sets the client protocol version reported by Protocol.
func WithProtocol(version string) Option {
	return func(s *Session) { s.protocol = version }
}

// WithName names the session in diagnostics.
func WithName(name string) Option {
	return func(s *Session) { s.name = name }
}

// New creates a session with no root.
func New(opts ...Option) *Session {
	d := config.Default()
	s := &Session{
		index:     patch.NewIndex(),
		name:      d.Name,
		protocol:  d.Protocol,
		maxPasses: d.MaxFlushPasses,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewFromConfig creates a session from resolved configuration. opts are
// applied after the configured values. A verbose log setting installs a
// verbose errors.LogHandler.
func NewFromConfig(cfg *config.Resolved, opts ...Option) *Session {
	if cfg.Verbose {
		errors.SetHandler(&errors.LogHandler{Verbose: true})
	}
	base := []Option{
		WithName(cfg.Name),
		WithProtocol(cfg.Protocol),
		WithStrictHooks(cfg.StrictHooks),
		WithMaxFlushPasses(cfg.MaxFlushPasses),
	}
	return New(append(base, opts...)...)
}

// Name returns the session's name.
func (s *Session) Name() string { return s.name }

// Protocol returns the canonical client protocol version.
func (s *Session) Protocol() string { return semver.Canonical(s.protocol) }

// Index returns the live-node index.
func (s *Session) Index() *patch.Index { return s.index }

// StrictHooks reports whether hook-kind drift panics.
func (s *Session) StrictHooks() bool { return s.strictHooks }

// Root returns the mounted root, or nil.
func (s *Session) Root() tree.Node {
	s.renderMu.Lock()
	defer s.renderMu.Unlock()
	return s.root
}

// ScheduleUpdate queues c for a re-render on the next flush. A component
// already queued is not queued twice.
func (s *Session) ScheduleUpdate(c *core.Component) {
	added := func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.dirtySet[c] {
			return false
		}
		if s.dirtySet == nil {
			s.dirtySet = make(map[*core.Component]bool)
		}
		s.dirtySet[c] = true
		s.dirty = append(s.dirty, c)
		return true
	}()

	if added && s.OnNeedsFlush != nil {
		s.OnNeedsFlush()
	}
}

// ScheduleEffect queues an effect body, or its cleanup, to run after the
// pending batches are sent.
func (s *Session) ScheduleEffect(h *core.EffectHook, cleanup bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.effects = append(s.effects, effectTask{hook: h, cleanup: cleanup})
}

// PatchControl stages cmds as one batch scoped to scope.
func (s *Session) PatchControl(scope tree.Node, cmds []patch.Command) {
	s.stage(patch.Batch{Scope: scope.NodeBase().ID(), Commands: cmds})
}

func (s *Session) stage(b patch.Batch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, b)
}

// NeedsFlush reports whether components, effects or batches are waiting.
func (s *Session) NeedsFlush() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.dirty) > 0 || len(s.effects) > 0 || len(s.pending) > 0
}

func (s *Session) reconciler() *patch.Reconciler {
	return patch.NewReconciler(s.index, patch.WithPrepare(s.prepare))
}

func (s *Session) prepare(n tree.Node) {
	if c, ok := n.(*core.Component); ok && c.Session() == nil {
		c.Bind(s)
	}
}

// Mount renders root, registers its subtree, sends it to the client as a
// top-level add and flushes until the session settles.
func (s *Session) Mount(root tree.Node) error {
	s.renderMu.Lock()
	defer s.renderMu.Unlock()
	if s.root != nil {
		return &errors.Error{
			Op:    "session.Mount",
			Kind:  errors.KindReconcile,
			Scope: int64(s.root.NodeBase().ID()),
			Err:   fmt.Errorf("session %s already has a root: %w", s.name, errors.ErrAlreadyMounted),
		}
	}
	spec, err := s.reconciler().Mount(root)
	if err != nil {
		return err
	}
	s.root = root
	s.stage(patch.Batch{Commands: []patch.Command{{Op: patch.OpAdd, Nodes: []patch.Spec{spec}}}})
	return s.flush()
}

// Update brings nodes up to date and flushes. Components re-render;
// other nodes, typically mutable controls changed in place, are
// reconciled against what the client holds.
func (s *Session) Update(nodes ...tree.Node) error {
	s.renderMu.Lock()
	defer s.renderMu.Unlock()
	for _, n := range nodes {
		if err := s.update(n); err != nil {
			return err
		}
	}
	return s.flush()
}

func (s *Session) update(n tree.Node) error {
	if c, ok := n.(*core.Component); ok {
		return c.Update()
	}
	if n.NodeBase().ID() == 0 {
		return &errors.Error{
			Op:   "session.Update",
			Kind: errors.KindReconcile,
			Err:  fmt.Errorf("update %s: %w", n.Kind(), errors.ErrNotMounted),
		}
	}
	cmds, err := s.reconciler().Reconcile(n)
	if err != nil {
		return err
	}
	if len(cmds) > 0 {
		s.PatchControl(n, cmds)
	}
	return nil
}

// Flush re-renders dirty components, parents before children, sends the
// staged batches and runs queued effects. Effects that change state cause
// another pass; a session that does not settle within the configured
// number of passes returns ErrSettleTimeout.
func (s *Session) Flush() error {
	s.renderMu.Lock()
	defer s.renderMu.Unlock()
	return s.flush()
}

func (s *Session) flush() error {
	for pass := 0; s.NeedsFlush(); pass++ {
		if pass == s.maxPasses {
			return &errors.Error{
				Op:   "session.Flush",
				Kind: errors.KindEffect,
				Err:  fmt.Errorf("session %s: still dirty after %d passes: %w", s.name, pass, errors.ErrSettleTimeout),
			}
		}
		if err := s.rebuild(); err != nil {
			return err
		}
		if err := s.send(); err != nil {
			return err
		}
		s.runEffects()
	}
	return nil
}

// rebuild updates dirty components in depth order until none are left.
func (s *Session) rebuild() error {
	for {
		s.mu.Lock()
		if len(s.dirty) == 0 {
			s.mu.Unlock()
			return nil
		}
		slices.SortStableFunc(s.dirty, func(a, b *core.Component) int {
			return a.Depth() - b.Depth()
		})
		dirty := s.dirty
		s.dirty = nil
		clear(s.dirtySet)
		s.mu.Unlock()

		for _, c := range dirty {
			// An ancestor's render may already have brought c up to date,
			// retired it, or removed it.
			if !c.Mounted() || c.Stale() || !c.Dirty() {
				continue
			}
			if err := c.Update(); err != nil {
				return err
			}
		}
	}
}

func (s *Session) send() error {
	s.mu.Lock()
	batches := s.pending
	s.pending = nil
	s.mu.Unlock()
	if len(batches) == 0 || s.sink == nil {
		return nil
	}
	if err := s.sink.Send(batches); err != nil {
		return fmt.Errorf("session %s: send %d batches: %w", s.name, len(batches), err)
	}
	return nil
}

// runEffects runs the effects queued so far. Effects they schedule wait
// for the next pass.
func (s *Session) runEffects() {
	s.mu.Lock()
	tasks := s.effects
	s.effects = nil
	s.mu.Unlock()
	for _, t := range tasks {
		runEffect(t)
	}
}

func runEffect(t effectTask) {
	defer errors.Recover("session.runEffect")
	if t.cleanup {
		t.hook.Cleanup()
		return
	}
	t.hook.Run()
}

// Unmount removes the root from the client, unregisters its subtree and
// runs the cleanups it scheduled.
func (s *Session) Unmount() error {
	s.renderMu.Lock()
	defer s.renderMu.Unlock()
	if s.root == nil {
		return nil
	}
	id := s.root.NodeBase().ID()
	if err := s.reconciler().Unmount(s.root); err != nil {
		return err
	}
	s.root = nil
	s.stage(patch.Batch{Commands: []patch.Command{{Op: patch.OpRemove, IDs: []tree.ID{id}}}})
	return s.flush()
}

// Snapshot serializes the tree as the client holds it, for a client that
// reconnects. ok is false when nothing is mounted.
func (s *Session) Snapshot() (spec patch.Spec, ok bool) {
	s.renderMu.Lock()
	defer s.renderMu.Unlock()
	if s.root == nil {
		return patch.Spec{}, false
	}
	return snapshot(s.root), true
}

func snapshot(n tree.Node) patch.Spec {
	b := n.NodeBase()
	spec := patch.Spec{ID: b.ID(), Kind: n.Kind(), Key: n.Key(), Props: b.PrevProps()}
	for _, child := range b.PrevChildren() {
		spec.Children = append(spec.Children, snapshot(child))
	}
	return spec
}
