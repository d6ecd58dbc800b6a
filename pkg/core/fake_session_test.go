package core

import (
	"testing"

	"github.com/go-drift/patchwork/pkg/errors"
	"github.com/go-drift/patchwork/pkg/patch"
	"github.com/go-drift/patchwork/pkg/tree"
)

type effectCall struct {
	hook    *EffectHook
	cleanup bool
}

// fakeSession records everything a component hands to its session.
type fakeSession struct {
	index   *patch.Index
	updates []*Component
	effects []effectCall
	batches []patch.Batch
	strict  bool
}

func newFakeSession() *fakeSession {
	return &fakeSession{index: patch.NewIndex()}
}

func (f *fakeSession) ScheduleUpdate(c *Component) { f.updates = append(f.updates, c) }

func (f *fakeSession) ScheduleEffect(h *EffectHook, cleanup bool) {
	f.effects = append(f.effects, effectCall{h, cleanup})
}

func (f *fakeSession) PatchControl(scope tree.Node, cmds []patch.Command) {
	f.batches = append(f.batches, patch.Batch{Scope: scope.NodeBase().ID(), Commands: cmds})
}

func (f *fakeSession) Index() *patch.Index { return f.index }

func (f *fakeSession) StrictHooks() bool { return f.strict }

// mount binds c and registers its subtree the way a session would.
func (f *fakeSession) mount(t *testing.T, c *Component) {
	t.Helper()
	c.Bind(f)
	if _, err := patch.NewReconciler(f.index).Mount(c); err != nil {
		t.Fatal(err)
	}
}

// runEffects drains the effect queue in order.
func (f *fakeSession) runEffects() {
	for len(f.effects) > 0 {
		call := f.effects[0]
		f.effects = f.effects[1:]
		if call.cleanup {
			call.hook.Cleanup()
		} else {
			call.hook.Run()
		}
	}
}

// recordingHandler captures reports sent to the global error handler.
type recordingHandler struct {
	errs   []*errors.Error
	panics []*errors.PanicError
	render []*errors.RenderError
}

func (h *recordingHandler) HandleError(err *errors.Error)            { h.errs = append(h.errs, err) }
func (h *recordingHandler) HandlePanic(err *errors.PanicError)       { h.panics = append(h.panics, err) }
func (h *recordingHandler) HandleRenderError(err *errors.RenderError) { h.render = append(h.render, err) }

func recordErrors(t *testing.T) *recordingHandler {
	t.Helper()
	h := &recordingHandler{}
	errors.SetHandler(h)
	t.Cleanup(func() { errors.SetHandler(nil) })
	return h
}

func text(value string) *tree.Control {
	return tree.NewControl("Text", tree.Props{"value": value})
}
