package binding

import (
	"github.com/roach88/statecore/internal/ir"
	"github.com/roach88/statecore/internal/store"
)

// Props is what a connected view receives: the mapped state value and the
// store's dispatch.
type Props[P any] struct {
	Value    P
	Dispatch store.DispatchFunc
}

// View is a consumer component. ScheduleUpdate requests a re-render with
// new props; it must not block.
type View[P any] interface {
	ScheduleUpdate(props Props[P])
}

// ViewFunc adapts a function to the View interface.
type ViewFunc[P any] func(props Props[P])

// ScheduleUpdate implements View.
func (f ViewFunc[P]) ScheduleUpdate(props Props[P]) {
	f(props)
}

// Connector holds the mapping for one consumer definition. Build it once
// with Connect and call Wrap for every consumer instance.
type Connector[S, P any] struct {
	mapState func(S) P
	equal    func(prev, next P) bool
}

// ConnectOption configures a Connector.
type ConnectOption[S, P any] func(*Connector[S, P])

// WithPropsEqual makes adapters skip ScheduleUpdate when the recomputed
// props value is equal to the previous one according to eq.
func WithPropsEqual[S, P any](eq func(prev, next P) bool) ConnectOption[S, P] {
	return func(c *Connector[S, P]) {
		c.equal = eq
	}
}

// Connect creates a Connector from mapStateToProps.
// It panics if mapStateToProps is nil.
func Connect[S, P any](mapStateToProps func(S) P, opts ...ConnectOption[S, P]) *Connector[S, P] {
	if mapStateToProps == nil {
		panic("binding: Connect requires a mapStateToProps function")
	}
	c := &Connector[S, P]{mapState: mapStateToProps}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Wrap creates an unmounted adapter driving view.
func (c *Connector[S, P]) Wrap(view View[P]) *Adapter[S, P] {
	return &Adapter[S, P]{connector: c, view: view}
}

// BindActionCreator returns a function that builds an action with create
// and dispatches it.
func BindActionCreator[A any](create func(A) ir.Action, dispatch store.DispatchFunc) func(A) (any, error) {
	return func(arg A) (any, error) {
		return dispatch(create(arg))
	}
}
