package core

import (
	"testing"

	"github.com/go-drift/patchwork/pkg/observable"
	"github.com/go-drift/patchwork/pkg/patch"
	"github.com/go-drift/patchwork/pkg/tree"
)

type feedProps struct {
	A, B  observable.Observable
	Items []*observable.Value[int]
	Named map[string]*observable.Notifier
	label *observable.Value[int]
}

func feed(props feedProps) *Component {
	return New(func(ctx *Context, p feedProps) tree.Node { return nil }, props)
}

func subscribed(c *Component) map[observable.Observable]bool {
	out := make(map[observable.Observable]bool)
	for _, s := range c.State().Subscriptions() {
		out[s.Observable] = true
	}
	return out
}

func TestSubscriptionsFollowProps(t *testing.T) {
	fs := newFakeSession()
	a, b, c := observable.NewValue(0), observable.NewValue(0), observable.NewValue(0)
	comp := feed(feedProps{A: a, B: b})
	fs.mount(t, comp)

	if subs := subscribed(comp); len(subs) != 2 || !subs[a] || !subs[b] {
		t.Fatalf("subscriptions = %v, want a and b", subs)
	}

	comp.SetProps(feedProps{A: b, B: c})
	if err := comp.Update(); err != nil {
		t.Fatal(err)
	}
	if subs := subscribed(comp); len(subs) != 2 || !subs[b] || !subs[c] {
		t.Errorf("subscriptions = %v, want b and c", subs)
	}
	if a.ListenerCount() != 0 || b.ListenerCount() != 1 || c.ListenerCount() != 1 {
		t.Errorf("listener counts a=%d b=%d c=%d, want 0 1 1", a.ListenerCount(), b.ListenerCount(), c.ListenerCount())
	}
}

func TestSubscriptionsDeduplicate(t *testing.T) {
	fs := newFakeSession()
	a := observable.NewValue(0)
	comp := feed(feedProps{A: a, B: a, Items: []*observable.Value[int]{a, nil}})
	fs.mount(t, comp)
	if n := len(comp.State().Subscriptions()); n != 1 {
		t.Errorf("expected one subscription, got %d", n)
	}
	if a.ListenerCount() != 1 {
		t.Errorf("ListenerCount() = %d, want 1", a.ListenerCount())
	}
}

func TestSubscriptionsInCollectionsOnly(t *testing.T) {
	fs := newFakeSession()
	x, y := observable.NewValue(1), observable.NewValue(2)
	n := observable.NewNotifier()
	hidden := observable.NewValue(3)
	comp := feed(feedProps{Items: []*observable.Value[int]{x, y}, Named: map[string]*observable.Notifier{"n": n}, label: hidden})
	fs.mount(t, comp)
	if subs := subscribed(comp); len(subs) != 3 || !subs[x] || !subs[y] || !subs[n] {
		t.Errorf("subscriptions = %v, want x, y and n", subs)
	}
	if hidden.ListenerCount() != 0 {
		t.Error("unexported field was subscribed")
	}
}

func TestObservablePropsAsProps(t *testing.T) {
	fs := newFakeSession()
	v := observable.NewValue(0)
	comp := New(func(ctx *Context, p *observable.Value[int]) tree.Node { return nil }, v)
	fs.mount(t, comp)
	if v.ListenerCount() != 1 {
		t.Errorf("ListenerCount() = %d, want 1", v.ListenerCount())
	}
}

func TestObservableChangeSchedulesUpdate(t *testing.T) {
	fs := newFakeSession()
	a := observable.NewValue(0)
	comp := feed(feedProps{A: a})
	fs.mount(t, comp)

	a.Set(1)
	if len(fs.updates) != 1 || fs.updates[0] != comp {
		t.Errorf("expected comp to be scheduled, got %v", fs.updates)
	}
}

func TestUnmountDetachesSubscriptions(t *testing.T) {
	fs := newFakeSession()
	a := observable.NewValue(0)
	comp := feed(feedProps{A: a})
	fs.mount(t, comp)
	patch.NewReconciler(fs.index).Unmount(comp)

	if a.ListenerCount() != 0 {
		t.Errorf("ListenerCount() = %d after unmount, want 0", a.ListenerCount())
	}
	a.Set(2)
	if len(fs.updates) != 0 {
		t.Error("unmounted component was scheduled")
	}
}
