package binding

import (
	"errors"
	"reflect"

	"github.com/roach88/statecore/internal/store"
)

// ErrNilSource is returned when attaching to a nil store handle.
var ErrNilSource = errors.New("binding: nil store handle")

// Source is the part of a store the binding layer uses.
// *store.Store satisfies it.
type Source[S any] interface {
	GetState() S
	Dispatch(action any) (any, error)
	Subscribe(listener store.Listener) func()
}

func isNilSource[S any](src Source[S]) bool {
	if src == nil {
		return true
	}
	v := reflect.ValueOf(src)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Func, reflect.Interface, reflect.Slice:
		return v.IsNil()
	}
	return false
}

// sameHandle reports whether a and b are the same store handle or consumer.
//
// Values whose dynamic type is not comparable never compare equal unless
// they are the same map or slice. Pointer handles, such as *store.Store and
// *Adapter, always compare by identity.
func sameHandle(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	if va.Comparable() && vb.Comparable() {
		return a == b
	}
	switch va.Kind() {
	case reflect.Map:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	}
	return false
}
