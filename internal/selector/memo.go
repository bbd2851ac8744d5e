package selector

import "reflect"

// Memoized caches the result of a selector function.
type Memoized[S, R any] struct {
	fn     func(S) R
	last   S
	result R
	valid  bool

	recomputations int
}

// Memo wraps fn so that it is recomputed only when the input state is not
// identical to the previous input. Maps, slices, pointers and channels
// are compared by reference; other comparable values by ==.
// Incomparable values always recompute.
func Memo[S, R any](fn func(S) R) *Memoized[S, R] {
	return &Memoized[S, R]{fn: fn}
}

// Select returns fn(state), reusing the cached result when state is
// identical to the previous input.
func (m *Memoized[S, R]) Select(state S) R {
	if m.valid && identical(m.last, state) {
		return m.result
	}
	m.last = state
	m.result = m.fn(state)
	m.valid = true
	m.recomputations++
	return m.result
}

// Recomputations returns how many times fn has been called.
func (m *Memoized[S, R]) Recomputations() int {
	return m.recomputations
}

// Reset drops the cached result.
func (m *Memoized[S, R]) Reset() {
	var zero S
	var none R
	m.last, m.result, m.valid = zero, none, false
}

func identical(a, b any) bool {
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if !va.IsValid() || !vb.IsValid() {
		return va.IsValid() == vb.IsValid()
	}
	if va.Type() != vb.Type() {
		return false
	}

	switch va.Kind() {
	case reflect.Map, reflect.Pointer, reflect.Chan, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	}

	if va.Comparable() && vb.Comparable() {
		return va.Equal(vb)
	}
	return false
}
