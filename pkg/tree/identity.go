package tree

import (
	"fmt"
	"hash"
	"hash/fnv"
	"reflect"
	"strconv"
)

// Hash returns a content hash for n that is stable across renders while the
// node is logically unchanged. Nodes implementing Identifier hash by kind
// and identity, keyed nodes by kind and key, everything else by kind and
// props. Children never contribute.
//
// Equal nodes always hash equally; the converse does not hold, so callers
// must confirm a hash match with Same.
func Hash(n Node) uint64 {
	h := fnv.New64a()
	h.Write([]byte(n.Kind()))
	h.Write([]byte{0})
	switch {
	case isIdentifier(n):
		h.Write([]byte("i:"))
		writeValue(h, reflect.ValueOf(n.(Identifier).Identity()))
	case n.Key() != nil:
		h.Write([]byte("k:"))
		writeValue(h, reflect.ValueOf(n.Key()))
	default:
		h.Write([]byte("p:"))
		writeValue(h, reflect.ValueOf(n.Props()))
	}
	return h.Sum64()
}

// Same reports whether a and b are logically the same node: the same
// instance, or the same kind with equal identity, key, or props.
func Same(a, b Node) bool {
	if SameObject(a, b) {
		return true
	}
	if a == nil || b == nil || a.Kind() != b.Kind() {
		return false
	}
	if ia, ok := a.(Identifier); ok {
		ib, ok := b.(Identifier)
		return ok && ValueEqual(ia.Identity(), ib.Identity())
	}
	if a.Key() != nil || b.Key() != nil {
		return ValueEqual(a.Key(), b.Key())
	}
	return ValueEqual(a.Props(), b.Props())
}

func isIdentifier(n Node) bool {
	_, ok := n.(Identifier)
	return ok
}

// ValueEqual compares two property values. Slices, arrays, maps and structs
// compare element-wise; pointers and channels compare by address. Funcs
// are event handlers, re-created on every render and sent to the client
// only as a flag, so any two non-nil funcs of the same type are equal.
func ValueEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return valueEqual(reflect.ValueOf(a), reflect.ValueOf(b))
}

func valueEqual(a, b reflect.Value) bool {
	if !a.IsValid() || !b.IsValid() {
		return a.IsValid() == b.IsValid()
	}
	if a.Type() != b.Type() {
		return false
	}
	switch a.Kind() {
	case reflect.Func:
		return a.IsNil() == b.IsNil()
	case reflect.Pointer, reflect.Chan, reflect.UnsafePointer:
		return a.Pointer() == b.Pointer()
	case reflect.Interface:
		if a.IsNil() || b.IsNil() {
			return a.IsNil() && b.IsNil()
		}
		return valueEqual(a.Elem(), b.Elem())
	case reflect.Slice:
		if a.IsNil() != b.IsNil() {
			return false
		}
		fallthrough
	case reflect.Array:
		if a.Len() != b.Len() {
			return false
		}
		for i := range a.Len() {
			if !valueEqual(a.Index(i), b.Index(i)) {
				return false
			}
		}
		return true
	case reflect.Map:
		if a.IsNil() != b.IsNil() || a.Len() != b.Len() {
			return false
		}
		iter := a.MapRange()
		for iter.Next() {
			bv := b.MapIndex(iter.Key())
			if !bv.IsValid() || !valueEqual(iter.Value(), bv) {
				return false
			}
		}
		return true
	case reflect.Struct:
		for i := range a.NumField() {
			if !valueEqual(a.Field(i), b.Field(i)) {
				return false
			}
		}
		return true
	default:
		return a.Equal(b)
	}
}

// writeValue feeds v into h following the same rules as valueEqual, so
// that equal values produce equal hashes.
func writeValue(h hash.Hash64, v reflect.Value) {
	if !v.IsValid() {
		h.Write([]byte("nil;"))
		return
	}
	h.Write([]byte(v.Type().String()))
	h.Write([]byte{':'})
	switch v.Kind() {
	case reflect.Func:
		h.Write([]byte(strconv.FormatBool(v.IsNil())))
	case reflect.Pointer, reflect.Chan, reflect.UnsafePointer:
		h.Write([]byte(strconv.FormatUint(uint64(v.Pointer()), 16)))
	case reflect.Interface:
		if v.IsNil() {
			h.Write([]byte("nil"))
		} else {
			writeValue(h, v.Elem())
		}
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.IsNil() {
			h.Write([]byte("nil"))
			break
		}
		h.Write([]byte{'['})
		for i := range v.Len() {
			writeValue(h, v.Index(i))
		}
		h.Write([]byte{']'})
	case reflect.Map:
		if v.IsNil() {
			h.Write([]byte("nil"))
			break
		}
		// Entries are hashed separately and summed so iteration order
		// does not matter.
		var sum uint64
		iter := v.MapRange()
		for iter.Next() {
			eh := fnv.New64a()
			writeValue(eh, iter.Key())
			writeValue(eh, iter.Value())
			sum += eh.Sum64()
		}
		h.Write([]byte(strconv.FormatUint(sum, 16)))
	case reflect.Struct:
		h.Write([]byte{'{'})
		for i := range v.NumField() {
			writeValue(h, v.Field(i))
		}
		h.Write([]byte{'}'})
	case reflect.String:
		h.Write([]byte(strconv.Quote(v.String())))
	case reflect.Bool:
		h.Write([]byte(strconv.FormatBool(v.Bool())))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		h.Write([]byte(strconv.FormatInt(v.Int(), 10)))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		h.Write([]byte(strconv.FormatUint(v.Uint(), 10)))
	default:
		// floats and complex numbers
		fmt.Fprint(h, v)
	}
	h.Write([]byte{';'})
}
