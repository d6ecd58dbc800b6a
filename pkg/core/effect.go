package core

// EffectHook runs a side effect after the render that scheduled it, once
// the session has sent that flush's patches. The effect may return a
// cleanup that runs before the effect runs again and on unmount.
type EffectHook struct {
	effect   func() func()
	deps     []any
	prevDeps []any
	ran      bool
	cleanup  func()

	queued        bool
	cleanupQueued bool
	disposed      bool
}

// UseEffect schedules effect after renders whose deps differ from the
// previous render's. Nil deps run after every render; empty deps run once
// after mount.
//
//	core.UseEffect(ctx, func() func() {
//	    unsub := feed.Subscribe(onItem)
//	    return unsub
//	}, []any{feed})
func UseEffect(ctx *Context, effect func() func(), deps []any) {
	c := ctx.mustComponent("core.UseEffect")
	h := UseHook(ctx, func() *EffectHook { return &EffectHook{} })
	h.effect = effect
	h.deps = deps
	if !h.ran || deps == nil || !depsEqual(h.prevDeps, deps) {
		c.state.pending = append(c.state.pending, h)
	}
}

// scheduleEffects hands the effects claimed by a successful render to the
// session. Without a session they run immediately, after the render.
func (c *Component) scheduleEffects() {
	pending := c.state.pending
	c.state.pending = nil
	for _, h := range pending {
		h.prevDeps = h.deps
		h.ran = true
		if c.session == nil {
			h.Cleanup()
			h.Run()
			continue
		}
		if h.cleanup != nil && !h.cleanupQueued {
			h.cleanupQueued = true
			c.session.ScheduleEffect(h, true)
		}
		if !h.queued {
			h.queued = true
			c.session.ScheduleEffect(h, false)
		}
	}
}

// Run runs the effect body, first running any cleanup still held from the
// previous run. It does nothing once the owner has unmounted.
func (h *EffectHook) Run() {
	h.queued = false
	if h.disposed || h.effect == nil {
		return
	}
	h.Cleanup()
	h.cleanup = h.effect()
}

// Cleanup runs and forgets the cleanup returned by the last run.
func (h *EffectHook) Cleanup() {
	h.cleanupQueued = false
	if fn := h.cleanup; fn != nil {
		h.cleanup = nil
		fn()
	}
}

// Disposed reports whether the owning component has unmounted.
func (h *EffectHook) Disposed() bool { return h.disposed }

// dispose retires the hook: a held cleanup is scheduled exactly once and
// queued runs become no-ops.
func (h *EffectHook) dispose(s Session) {
	if h.disposed {
		return
	}
	h.disposed = true
	if h.cleanup == nil || h.cleanupQueued {
		return
	}
	if s == nil {
		h.Cleanup()
		return
	}
	h.cleanupQueued = true
	s.ScheduleEffect(h, true)
}
