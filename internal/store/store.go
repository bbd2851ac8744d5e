package store

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/roach88/statecore/internal/ir"
)

// Store is the state container.
//
// Thread-safety model: none. All methods must be called from the goroutine
// that owns the store (see Loop for cross-goroutine producers).
type Store[S any] struct {
	reducer   Reducer[S]
	state     S
	dispatch  DispatchFunc // fully composed; set once in New
	clock     *Clock
	observers []CommitObserver[S]
	logger    *slog.Logger

	// listeners is copy-on-write: Subscribe and unsubscribe always build a
	// new slice, so a sweep can iterate the slice it started with.
	listeners []*subscription

	reducing  bool
	notifying bool
	draining  bool
	pending   *dispatchQueue

	maxDeferred int
}

type subscription struct {
	listener Listener
	removed  bool
}

// New creates a store, computes its initial state and installs the
// enhancers.
//
// The reducer is invoked once with the zero value of S (or the state given
// by WithPreloadedState) and ir.InitAction. That call is not a commit: the
// seq stays 0 and no observer is called. Enhancers never see it.
func New[S any](reducer Reducer[S], opts ...Option[S]) (*Store[S], error) {
	if reducer == nil {
		return nil, errors.New("store: nil reducer")
	}

	cfg := &config[S]{
		maxDeferred: DefaultMaxDeferred,
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	s := &Store[S]{
		reducer:     reducer,
		clock:       NewClock(),
		observers:   slices.Clone(cfg.observers),
		logger:      cfg.logger,
		pending:     newDispatchQueue(),
		maxDeferred: cfg.maxDeferred,
	}
	if cfg.hasPreloaded {
		s.state = cfg.preloaded
	}

	initial, err := s.reduce(ir.InitAction)
	if err != nil {
		return nil, fmt.Errorf("store: initialize state: %w", err)
	}
	s.state = initial

	// Middleware that dispatches while being built would see a half-built
	// chain.
	s.dispatch = func(any) (any, error) {
		return nil, ErrDispatchDuringSetup
	}

	final := DispatchFunc(s.baseDispatch)
	for i := len(cfg.enhancers) - 1; i >= 0; i-- {
		final = cfg.enhancers[i](s, final)
	}
	s.dispatch = final

	s.logger.Debug("store initialized", "enhancers", len(cfg.enhancers))
	return s, nil
}

// MustNew is like New but panics on error.
func MustNew[S any](reducer Reducer[S], opts ...Option[S]) *Store[S] {
	s, err := New(reducer, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// GetState returns the state produced by the most recently committed
// dispatch.
func (s *Store[S]) GetState() S {
	return s.state
}

// Seq returns the number of committed dispatches.
func (s *Store[S]) Seq() int64 {
	return s.clock.Current()
}

// Dispatch runs action through the installed dispatch function.
//
// Returns whatever the chain returns (the action itself unless a
// middleware substitutes a result). Calling Dispatch from a reducer fails
// with ReentrantDispatchError. Calling it from a listener queues the action
// until the current sweep completes and returns (action, nil).
func (s *Store[S]) Dispatch(action any) (any, error) {
	if s.reducing {
		return nil, &ReentrantDispatchError{Type: describe(action)}
	}
	if s.notifying {
		s.pending.push(action)
		s.logger.Debug("dispatch deferred until sweep completes", "type", describe(action))
		return action, nil
	}
	return s.dispatch(action)
}

// Subscribe registers listener and returns its unsubscribe function.
//
// The listener is not called for past dispatches. Unsubscribe may be called
// any number of times, including during a sweep; listeners already in the
// sweep's snapshot are still called for that sweep.
func (s *Store[S]) Subscribe(listener Listener) func() {
	if listener == nil {
		return func() {}
	}

	sub := &subscription{listener: listener}
	s.listeners = append(slices.Clip(s.listeners), sub)

	return func() {
		if sub.removed {
			return
		}
		sub.removed = true

		next := make([]*subscription, 0, len(s.listeners))
		for _, other := range s.listeners {
			if other != sub {
				next = append(next, other)
			}
		}
		s.listeners = next
	}
}

// ListenerCount returns the number of subscribed listeners.
func (s *Store[S]) ListenerCount() int {
	return len(s.listeners)
}

// ReplaceReducer swaps the root reducer and dispatches ir.ReplaceAction so
// the new reducer can populate its state.
func (s *Store[S]) ReplaceReducer(reducer Reducer[S]) error {
	if reducer == nil {
		return errors.New("store: nil reducer")
	}
	if s.reducing {
		return &ReentrantDispatchError{Type: ir.ReplaceActionType}
	}
	s.reducer = reducer
	_, err := s.Dispatch(ir.ReplaceAction)
	return err
}

// baseDispatch is the terminal dispatch at the tail of the middleware chain.
func (s *Store[S]) baseDispatch(action any) (any, error) {
	typ, ok := ir.TypeOf(action)
	if !ok {
		return nil, &InvalidActionError{Value: action}
	}
	if s.reducing {
		return nil, &ReentrantDispatchError{Type: typ}
	}

	a := action.(ir.Action)
	next, err := s.reduce(a)
	if err != nil {
		// Reducer errors propagate unmodified; nothing was committed.
		s.logger.Debug("reducer failed", "type", typ, "error", err)
		return nil, err
	}

	s.state = next
	seq := s.clock.Next()
	s.logger.Debug("action committed", "type", typ, "seq", seq)

	if len(s.observers) > 0 {
		c := Commit[S]{Seq: seq, Action: a, State: next}
		for _, obs := range s.observers {
			obs.OnCommit(c)
		}
	}

	// Actions queued by a sweep that panics are discarded.
	swept := false
	defer func() {
		if swept {
			return
		}
		if dropped := s.pending.reset(); dropped > 0 {
			s.logger.Error("notification sweep aborted, discarding deferred dispatches",
				"type", typ,
				"dropped", dropped,
			)
		}
	}()

	s.notify()

	// A dispatch drained from the queue leaves further draining to the
	// outer drain loop, keeping the stack flat.
	if s.draining {
		swept = true
		return action, nil
	}
	err = s.drain()
	swept = true
	if err != nil {
		return action, err
	}
	return action, nil
}

func (s *Store[S]) reduce(a ir.Action) (S, error) {
	s.reducing = true
	defer func() { s.reducing = false }()
	return s.reducer(s.state, a)
}

// notify calls every listener in the current snapshot once, in
// subscription order.
func (s *Store[S]) notify() {
	snapshot := s.listeners
	if len(snapshot) == 0 {
		return
	}

	s.notifying = true
	defer func() { s.notifying = false }()

	for _, sub := range snapshot {
		sub.listener()
	}
}

// drain runs the actions listeners dispatched during the sweep, each
// through the full chain, in FIFO order.
func (s *Store[S]) drain() error {
	if s.pending.size() == 0 {
		return nil
	}

	s.draining = true
	defer func() { s.draining = false }()

	var errs []error
	steps := 0
	for {
		action, ok := s.pending.pop()
		if !ok {
			break
		}

		steps++
		if steps > s.maxDeferred {
			dropped := s.pending.reset() + 1
			s.logger.Error("deferred dispatch quota exceeded",
				"limit", s.maxDeferred,
				"dropped", dropped,
			)
			errs = append(errs, &QuotaExceededError{Limit: s.maxDeferred, Dropped: dropped})
			break
		}

		if _, err := s.dispatch(action); err != nil {
			s.logger.Error("deferred dispatch failed", "type", describe(action), "error", err)
			errs = append(errs, &DeferredDispatchError{Type: describe(action), Err: err})
		}
	}

	return errors.Join(errs...)
}
