package binding

import (
	"errors"
	"slices"
)

// Mountable is anything a Provider can attach to its store, typically an
// *Adapter with any props type. Consumers are tracked by identity, so
// implementations should be pointers.
type Mountable[S any] interface {
	Attach(src Source[S]) error
	Detach()
}

// Provider owns the store handle for a group of consumers.
type Provider[S any] struct {
	source  Source[S]
	mounted []Mountable[S]
}

// NewProvider creates a Provider for src.
func NewProvider[S any](src Source[S]) (*Provider[S], error) {
	if isNilSource(src) {
		return nil, ErrNilSource
	}
	return &Provider[S]{source: src}, nil
}

// Source returns the provided store handle.
func (p *Provider[S]) Source() Source[S] {
	return p.source
}

// Mount attaches each consumer to the provided store. Consumers that are
// already mounted through this provider are skipped. Attach errors are
// joined; consumers that attached successfully stay mounted.
func (p *Provider[S]) Mount(consumers ...Mountable[S]) error {
	var errs []error
	for _, c := range consumers {
		if c == nil || p.indexOf(c) >= 0 {
			continue
		}
		if err := c.Attach(p.source); err != nil {
			errs = append(errs, err)
			continue
		}
		p.mounted = append(p.mounted, c)
	}
	return errors.Join(errs...)
}

// Unmount detaches consumer if it was mounted through this provider.
func (p *Provider[S]) Unmount(consumer Mountable[S]) {
	i := p.indexOf(consumer)
	if i < 0 {
		return
	}
	p.mounted = slices.Delete(p.mounted, i, i+1)
	consumer.Detach()
}

func (p *Provider[S]) indexOf(consumer Mountable[S]) int {
	return slices.IndexFunc(p.mounted, func(m Mountable[S]) bool {
		return sameHandle(m, consumer)
	})
}

// UnmountAll detaches every mounted consumer in reverse mount order.
func (p *Provider[S]) UnmountAll() {
	for i := len(p.mounted) - 1; i >= 0; i-- {
		p.mounted[i].Detach()
	}
	p.mounted = nil
}

// Mounted returns the number of consumers mounted through the provider.
func (p *Provider[S]) Mounted() int {
	return len(p.mounted)
}

// Replace switches the provided store and re-binds every mounted consumer
// to it.
func (p *Provider[S]) Replace(src Source[S]) error {
	if isNilSource(src) {
		return ErrNilSource
	}
	p.source = src

	var errs []error
	for _, c := range p.mounted {
		if err := c.Attach(src); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
