package testing

import (
	"fmt"
	"testing"

	"github.com/go-drift/patchwork/pkg/session"
	"github.com/go-drift/patchwork/pkg/tree"
)

// Tester drives a session against an in-memory client tree. It mirrors what
// a host does: mount a root, queue events, flush, and look at what the
// client received.
type Tester struct {
	session    *session.Session
	client     *ClientTree
	dispatches []func()
}

// NewTester creates a tester whose session sends to a fresh ClientTree.
// Call Cleanup() when done, or use NewTesterWithT() instead.
func NewTester(opts ...session.Option) *Tester {
	client := NewClientTree()
	opts = append(opts, session.WithSink(client))
	return &Tester{
		session: session.New(opts...),
		client:  client,
	}
}

// NewTesterWithT creates a tester that unmounts via t.Cleanup().
// This is the recommended constructor for tests.
func NewTesterWithT(t *testing.T, opts ...session.Option) *Tester {
	tester := NewTester(opts...)
	t.Cleanup(tester.Cleanup)
	return tester
}

// Cleanup unmounts the root if one is mounted.
func (t *Tester) Cleanup() {
	if t.session.Root() != nil {
		_ = t.session.Unmount()
	}
}

// Mount mounts root and flushes until the session settles.
func (t *Tester) Mount(root tree.Node) error {
	return t.session.Mount(root)
}

// Pump runs queued dispatches, then flushes the session.
func (t *Tester) Pump() error {
	dispatches := t.dispatches
	t.dispatches = nil
	for _, fn := range dispatches {
		fn()
	}
	return t.session.Flush()
}

// Dispatch queues a callback for the next Pump.
func (t *Tester) Dispatch(fn func()) {
	t.dispatches = append(t.dispatches, fn)
}

// Trigger calls the event handler stored under prop on the server node
// behind the first client node f finds. The handler must be a func().
// Call Pump afterwards to flush the resulting updates.
func (t *Tester) Trigger(f Finder, prop string) error {
	n := t.client.Find(f).FirstOrNil()
	if n == nil {
		return fmt.Errorf("trigger %s: no node matches %s", prop, f.Description())
	}
	server, ok := t.session.Index().Get(n.ID)
	if !ok {
		return fmt.Errorf("trigger %s: node %d is not live", prop, n.ID)
	}
	handler, ok := server.Props()[prop].(func())
	if !ok {
		return fmt.Errorf("trigger %s: %s has no func() handler", prop, server.Kind())
	}
	handler()
	return nil
}

// Session returns the session under test.
func (t *Tester) Session() *session.Session { return t.session }

// Client returns the client tree the session sends to.
func (t *Tester) Client() *ClientTree { return t.client }

// Find evaluates a finder against the client tree.
func (t *Tester) Find(f Finder) FinderResult {
	return t.client.Find(f)
}
