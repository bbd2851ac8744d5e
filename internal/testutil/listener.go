package testutil

import "sync"

// ListenerRecorder is a store listener that records the state seen on
// every notification.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type ListenerRecorder[S any] struct {
	mu       sync.Mutex
	getState func() S
	states   []S
}

// NewListenerRecorder creates a recorder that reads state with getState
// (typically store.GetState) on every notification.
func NewListenerRecorder[S any](getState func() S) *ListenerRecorder[S] {
	return &ListenerRecorder[S]{getState: getState}
}

// Listener returns the function to pass to Subscribe.
func (r *ListenerRecorder[S]) Listener() func() {
	return func() {
		state := r.getState()
		r.mu.Lock()
		defer r.mu.Unlock()
		r.states = append(r.states, state)
	}
}

// Count returns the number of notifications received.
func (r *ListenerRecorder[S]) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.states)
}

// States returns a copy of the states seen, in notification order.
func (r *ListenerRecorder[S]) States() []S {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]S, len(r.states))
	copy(out, r.states)
	return out
}

// Reset forgets all recorded notifications.
func (r *ListenerRecorder[S]) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = nil
}
