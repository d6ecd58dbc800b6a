package core

import "reflect"

// shallowEqual reports whether a and b are equal at the top level. Structs
// compare field by field with identical; everything else with identical
// directly. Nested data is never inspected.
func shallowEqual(a, b any) bool {
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if !va.IsValid() || !vb.IsValid() {
		return va.IsValid() == vb.IsValid()
	}
	if va.Type() != vb.Type() {
		return false
	}
	if va.Kind() == reflect.Struct {
		for i := range va.NumField() {
			if !identical(va.Field(i), vb.Field(i)) {
				return false
			}
		}
		return true
	}
	return identical(va, vb)
}

// identical compares values without looking through references: slices,
// maps, pointers and channels must share their backing storage, and
// non-nil funcs never match.
func identical(a, b reflect.Value) bool {
	if a.Type() != b.Type() {
		return false
	}
	switch a.Kind() {
	case reflect.Func:
		return a.IsNil() && b.IsNil()
	case reflect.Slice:
		return a.IsNil() == b.IsNil() && a.Len() == b.Len() && a.Pointer() == b.Pointer()
	case reflect.Map, reflect.Pointer, reflect.Chan, reflect.UnsafePointer:
		return a.Pointer() == b.Pointer()
	case reflect.Interface:
		if a.IsNil() || b.IsNil() {
			return a.IsNil() && b.IsNil()
		}
		return identical(a.Elem(), b.Elem())
	default:
		if !a.Comparable() || !b.Comparable() {
			return false
		}
		return a.Equal(b)
	}
}

func depsEqual(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !shallowEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func contextsEqual(a, b map[any]any) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok || !shallowEqual(av, bv) {
			return false
		}
	}
	return true
}
