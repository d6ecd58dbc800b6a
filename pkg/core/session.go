package core

import (
	"github.com/go-drift/patchwork/pkg/patch"
	"github.com/go-drift/patchwork/pkg/tree"
)

// Session is the host a component tree lives in. It owns the live-node
// index, queues re-renders and effects, and transports patches to the
// client. The session package provides the standard implementation.
type Session interface {
	// ScheduleUpdate queues c for a re-render on the next flush.
	ScheduleUpdate(c *Component)
	// ScheduleEffect queues an effect body, or its cleanup, to run after
	// the current flush has sent its patches.
	ScheduleEffect(h *EffectHook, cleanup bool)
	// PatchControl stages commands produced by reconciling scope.
	PatchControl(scope tree.Node, cmds []patch.Command)
	// Index returns the live-node index.
	Index() *patch.Index
}

// strictHooks is implemented by sessions that want hook-kind drift to
// panic instead of resetting the slot.
type strictHooks interface {
	StrictHooks() bool
}

func isStrict(s Session) bool {
	sh, ok := s.(strictHooks)
	return ok && sh.StrictHooks()
}
