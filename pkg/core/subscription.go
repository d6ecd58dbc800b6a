package core

import (
	"reflect"

	"github.com/go-drift/patchwork/pkg/observable"
)

// Subscription binds an observable found in a component's props to the
// component's state. Subscriptions live for one render: they are rebuilt
// from the current props before every render and dropped on unmount.
type Subscription struct {
	Observable  observable.Observable
	unsubscribe func()
}

// resubscribe replaces the subscriptions with one per distinct observable
// in c's current props.
func (c *Component) resubscribe() {
	s := c.state
	s.unsubscribeAll()
	found := observablesIn(c.props)
	subs := make([]*Subscription, 0, len(found))
	for _, o := range found {
		subs = append(subs, &Subscription{Observable: o, unsubscribe: o.Subscribe(s.markDirty)})
	}
	s.subsMu.Lock()
	s.subs = subs
	s.subsMu.Unlock()
}

func (s *ComponentState) unsubscribeAll() {
	s.subsMu.Lock()
	subs := s.subs
	s.subs = nil
	s.subsMu.Unlock()
	for _, sub := range subs {
		sub.unsubscribe()
	}
}

// observablesIn returns the distinct observables among props: props
// itself, its exported struct fields, and the elements of slice, array
// and map fields. Nothing deeper is inspected.
func observablesIn(props any) []observable.Observable {
	var out []observable.Observable
	seen := make(map[any]bool)
	add := func(v reflect.Value) {
		if !v.IsValid() || !v.CanInterface() {
			return
		}
		if (v.Kind() == reflect.Interface || v.Kind() == reflect.Pointer) && v.IsNil() {
			return
		}
		o, ok := v.Interface().(observable.Observable)
		if !ok {
			return
		}
		if reflect.ValueOf(o).Comparable() {
			if seen[o] {
				return
			}
			seen[o] = true
		}
		out = append(out, o)
	}
	collect := func(v reflect.Value) {
		add(v)
		switch v.Kind() {
		case reflect.Slice, reflect.Array:
			for i := range v.Len() {
				add(v.Index(i))
			}
		case reflect.Map:
			iter := v.MapRange()
			for iter.Next() {
				add(iter.Value())
			}
		}
	}

	v := reflect.ValueOf(props)
	add(v)
	if v.Kind() == reflect.Pointer && !v.IsNil() && v.Elem().Kind() == reflect.Struct {
		if _, ok := props.(observable.Observable); !ok {
			v = v.Elem()
		}
	}
	switch v.Kind() {
	case reflect.Struct:
		t := v.Type()
		for i := range v.NumField() {
			if t.Field(i).IsExported() {
				collect(v.Field(i))
			}
		}
	case reflect.Slice, reflect.Array, reflect.Map:
		collect(v)
	}
	return out
}
