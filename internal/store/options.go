package store

import "log/slog"

// DefaultMaxDeferred is the default limit of listener-issued dispatches
// drained after a single sweep. It stops listeners that keep dispatching
// in response to their own notifications.
const DefaultMaxDeferred = 1000

type config[S any] struct {
	enhancers    []Enhancer[S]
	observers    []CommitObserver[S]
	preloaded    S
	hasPreloaded bool
	maxDeferred  int
	logger       *slog.Logger
}

// Option configures a Store.
type Option[S any] func(*config[S])

// WithEnhancer installs a dispatch enhancer (e.g. middleware.Apply).
// Enhancers are applied in order: the first one given is outermost.
func WithEnhancer[S any](e Enhancer[S]) Option[S] {
	return func(c *config[S]) {
		if e != nil {
			c.enhancers = append(c.enhancers, e)
		}
	}
}

// WithPreloadedState sets the state the reducer sees on initialization
// instead of the zero value of S.
func WithPreloadedState[S any](state S) Option[S] {
	return func(c *config[S]) {
		c.preloaded = state
		c.hasPreloaded = true
	}
}

// WithCommitObserver registers an observer called on every commit.
// Observers run in registration order.
func WithCommitObserver[S any](o CommitObserver[S]) Option[S] {
	return func(c *config[S]) {
		if o != nil {
			c.observers = append(c.observers, o)
		}
	}
}

// WithMaxDeferred sets the drain limit for listener-issued dispatches.
//
// Default: 1000 (DefaultMaxDeferred). Values below 1 keep the default.
func WithMaxDeferred[S any](n int) Option[S] {
	return func(c *config[S]) {
		if n > 0 {
			c.maxDeferred = n
		}
	}
}

// WithLogger sets the logger. Defaults to a discarding logger.
func WithLogger[S any](logger *slog.Logger) Option[S] {
	return func(c *config[S]) {
		if logger != nil {
			c.logger = logger
		}
	}
}
