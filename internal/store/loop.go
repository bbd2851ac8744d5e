package store

import (
	"context"
	"log/slog"
	"sync"
)

// Request is one queued dispatch for a Loop.
type Request struct {
	Action any

	// Done, if set, receives the dispatch result on the loop goroutine.
	Done func(result any, err error)
}

// Loop is the single-writer front end of a Store.
//
// Producers on any goroutine call Enqueue; Run applies queued actions in
// FIFO order by calling Store.Dispatch on the goroutine that runs it. Each
// applied action is an ordinary, fully synchronous dispatch, so no two
// dispatches are ever in flight at once.
//
// Thread-safety model:
//   - Enqueue, Stop, Len: safe from any goroutine
//   - Run: must be called from exactly one goroutine, which then owns the store
type Loop[S any] struct {
	store   *Store[S]
	queue   *requestQueue
	logger  *slog.Logger
	onError func(action any, err error)
}

// LoopOption configures a Loop.
type LoopOption func(*loopConfig)

type loopConfig struct {
	logger  *slog.Logger
	onError func(action any, err error)
}

// WithLoopLogger sets the loop's logger. Defaults to a discarding logger.
func WithLoopLogger(logger *slog.Logger) LoopOption {
	return func(c *loopConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithErrorHandler sets a callback for failed dispatches. It runs on the
// loop goroutine after the failure has been logged.
func WithErrorHandler(fn func(action any, err error)) LoopOption {
	return func(c *loopConfig) {
		c.onError = fn
	}
}

// NewLoop creates a Loop feeding s.
func NewLoop[S any](s *Store[S], opts ...LoopOption) *Loop[S] {
	cfg := &loopConfig{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Loop[S]{
		store:   s,
		queue:   newRequestQueue(),
		logger:  cfg.logger,
		onError: cfg.onError,
	}
}

// Enqueue submits an action for dispatch.
// Returns false if the loop has been stopped.
func (l *Loop[S]) Enqueue(action any) bool {
	return l.queue.enqueue(Request{Action: action})
}

// EnqueueRequest submits a request whose Done callback receives the result.
// Returns false if the loop has been stopped.
func (l *Loop[S]) EnqueueRequest(r Request) bool {
	return l.queue.enqueue(r)
}

// Len returns the number of queued requests.
func (l *Loop[S]) Len() int {
	return l.queue.size()
}

// Stop closes the queue. Requests already queued are still applied; Run
// returns once they are drained.
func (l *Loop[S]) Stop() {
	l.queue.close()
}

// Run applies queued requests until the context is cancelled or Stop is
// called and the queue is empty.
//
// A failed dispatch is logged with its action type and the loop continues:
// the failure affects only that dispatch, and the store is unchanged by it.
func (l *Loop[S]) Run(ctx context.Context) error {
	l.logger.Info("dispatch loop starting")

	for {
		req, ok := l.queue.tryDequeue()
		if ok {
			l.apply(req)
			continue
		}

		select {
		case <-ctx.Done():
			l.logger.Info("dispatch loop stopping: context cancelled")
			l.queue.close()
			return ctx.Err()

		case <-l.queue.wait():
			// The signal may be stale or the channel closed; only a closed
			// and empty queue ends the loop.
			if l.queue.isClosed() && l.queue.size() == 0 {
				l.logger.Info("dispatch loop stopping: queue closed",
					"seq", l.store.Seq(),
				)
				return nil
			}
		}
	}
}

func (l *Loop[S]) apply(req Request) {
	result, err := l.store.Dispatch(req.Action)
	if err != nil {
		l.logger.Error("dispatch failed",
			"type", describe(req.Action),
			"seq", l.store.Seq(),
			"error", err,
		)
		if l.onError != nil {
			l.onError(req.Action, err)
		}
	}
	if req.Done != nil {
		req.Done(result, err)
	}
}

// requestQueue is a thread-safe unbounded FIFO with a coalescing signal
// channel for context-aware waiting.
type requestQueue struct {
	mu       sync.Mutex
	requests []Request
	closed   bool
	signal   chan struct{} // buffered, size 1
}

func newRequestQueue() *requestQueue {
	return &requestQueue{
		requests: make([]Request, 0, 64),
		signal:   make(chan struct{}, 1),
	}
}

func (q *requestQueue) enqueue(r Request) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.requests = append(q.requests, r)

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

func (q *requestQueue) tryDequeue() (Request, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.requests) == 0 {
		return Request{}, false
	}

	r := q.requests[0]
	q.requests[0] = Request{}
	if len(q.requests) == 1 {
		q.requests = q.requests[:0]
	} else {
		q.requests = q.requests[1:]
	}
	return r, true
}

func (q *requestQueue) wait() <-chan struct{} {
	return q.signal
}

func (q *requestQueue) size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.requests)
}

func (q *requestQueue) isClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

func (q *requestQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}
