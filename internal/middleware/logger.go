package middleware

import (
	"log/slog"
	"time"

	"github.com/roach88/statecore/internal/store"
)

type sequencer interface {
	Seq() int64
}

// Logger returns middleware that logs each action passing through it.
//
// Successful dispatches are logged at debug level with the commit seq
// (when the store exposes one) and duration; failures at error level.
func Logger[S any](logger *slog.Logger) store.Middleware[S] {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return store.MiddlewareFunc[S](func(api store.API[S]) store.Wrapper {
		seq, _ := api.(sequencer)

		return func(next store.DispatchFunc) store.DispatchFunc {
			return func(action any) (any, error) {
				typ := actionType(action)
				logger.Debug("dispatch", "type", typ)

				start := time.Now()
				result, err := next(action)
				attrs := []any{"type", typ, "duration", time.Since(start)}
				if seq != nil {
					attrs = append(attrs, "seq", seq.Seq())
				}

				if err != nil {
					logger.Error("dispatch failed", append(attrs, "error", err)...)
					return result, err
				}
				logger.Debug("dispatch complete", attrs...)
				return result, nil
			}
		}
	})
}
