package binding

import "fmt"

// Status is the lifecycle state of an Adapter.
type Status int

const (
	Unmounted Status = iota
	Mounted
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case Unmounted:
		return "unmounted"
	case Mounted:
		return "mounted"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Adapter binds one view instance to a store.
type Adapter[S, P any] struct {
	connector *Connector[S, P]
	view      View[P]

	status      Status
	source      Source[S]
	unsubscribe func()
	props       Props[P]

	// generation changes on every attach and detach; a listener registered
	// under an older generation does nothing.
	generation uint64
}

// Status returns the adapter's lifecycle state.
func (a *Adapter[S, P]) Status() Status {
	return a.status
}

// Props returns the most recently computed props. The zero value is
// returned before the first Attach.
func (a *Adapter[S, P]) Props() Props[P] {
	return a.props
}

// Source returns the store handle the adapter is attached to, or nil.
func (a *Adapter[S, P]) Source() Source[S] {
	return a.source
}

// Attach subscribes the adapter to src and computes the initial props.
//
// Attaching to the source the adapter is already mounted on is a no-op.
// Attaching to a different source detaches from the current one first.
func (a *Adapter[S, P]) Attach(src Source[S]) error {
	if isNilSource(src) {
		return ErrNilSource
	}
	if a.status == Mounted {
		if sameHandle(a.source, src) {
			return nil
		}
		a.Detach()
	}

	a.generation++
	gen := a.generation

	a.source = src
	a.props = a.compute(src)
	a.status = Mounted
	a.unsubscribe = src.Subscribe(func() {
		a.onNotify(gen)
	})
	return nil
}

// Detach unsubscribes from the store. Notifications that arrive afterwards
// are ignored. Detaching an unmounted adapter is a no-op.
func (a *Adapter[S, P]) Detach() {
	if a.status != Mounted {
		return
	}
	unsubscribe := a.unsubscribe
	a.unsubscribe = nil
	a.source = nil
	a.status = Unmounted
	a.generation++

	if unsubscribe != nil {
		unsubscribe()
	}
}

func (a *Adapter[S, P]) onNotify(gen uint64) {
	if a.status != Mounted || gen != a.generation {
		return
	}

	prev := a.props
	next := a.compute(a.source)
	a.props = next

	if eq := a.connector.equal; eq != nil && eq(prev.Value, next.Value) {
		return
	}
	a.view.ScheduleUpdate(next)
}

func (a *Adapter[S, P]) compute(src Source[S]) Props[P] {
	return Props[P]{
		Value:    a.connector.mapState(src.GetState()),
		Dispatch: src.Dispatch,
	}
}
