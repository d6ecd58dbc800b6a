package core

import (
	"slices"
	"sync"
	"sync/atomic"

	"github.com/go-drift/patchwork/pkg/tree"
)

// ComponentState is the persistent record behind a component: its hooks,
// the hook cursor, lifecycle flags, observable subscriptions and the memo
// cache. Exactly one component owns it at a time; ownership moves when
// the reconciler migrates state to a new component object.
type ComponentState struct {
	owner   atomic.Pointer[Component]
	hooks   []Hook
	cursor  int
	mounted atomic.Bool
	dirty   atomic.Bool

	subsMu sync.Mutex
	subs   []*Subscription

	pending []*EffectHook
	memo    *memoCache
}

type memoCache struct {
	props    any
	contexts map[any]any
	body     []tree.Node
}

func newComponentState(owner *Component) *ComponentState {
	s := &ComponentState{}
	s.owner.Store(owner)
	return s
}

// Owner returns the component that currently owns the state.
func (s *ComponentState) Owner() *Component { return s.owner.Load() }

// Hooks returns the hook list in slot order.
func (s *ComponentState) Hooks() []Hook { return slices.Clone(s.hooks) }

// Cursor returns the next hook slot to be claimed.
func (s *ComponentState) Cursor() int { return s.cursor }

// Subscriptions returns the active observable subscriptions.
func (s *ComponentState) Subscriptions() []*Subscription {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	return slices.Clone(s.subs)
}

// markDirty flags the owner for a re-render. It is safe to call from any
// goroutine; a mounted owner is scheduled once per dirty period.
func (s *ComponentState) markDirty() {
	if !s.dirty.CompareAndSwap(false, true) {
		return
	}
	if !s.mounted.Load() {
		return
	}
	if owner := s.owner.Load(); owner != nil && owner.session != nil {
		owner.session.ScheduleUpdate(owner)
	}
}
