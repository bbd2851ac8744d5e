package ir

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

// Decoder turns a plain payload into a typed action.
type Decoder func(payload IRObject) (Action, error)

// Registry maps action types to the payload shape the application
// registered for them. It lets open-shaped actions (from YAML scenarios,
// the journal, or the CLI) be decoded into typed variants so reducers can
// switch over a closed set.
//
// A Registry is built once at startup and is read-only afterwards.
type Registry struct {
	decoders map[string]Decoder
	order    []string // registration order
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{decoders: make(map[string]Decoder)}
}

// Register adds a decoder for typ.
// Returns an error for empty, reserved or duplicate types.
func (r *Registry) Register(typ string, dec Decoder) error {
	if typ == "" {
		return errors.New("register: empty action type")
	}
	if IsReserved(typ) {
		return fmt.Errorf("register: %q is a reserved action type", typ)
	}
	if dec == nil {
		return fmt.Errorf("register %q: nil decoder", typ)
	}
	if _, exists := r.decoders[typ]; exists {
		return fmt.Errorf("register: duplicate action type %q", typ)
	}
	r.decoders[typ] = dec
	r.order = append(r.order, typ)
	return nil
}

// RegisterJSON registers typ with a decoder that unmarshals the payload
// into a fresh A through JSON.
func RegisterJSON[A Action](r *Registry, typ string) error {
	return r.Register(typ, func(payload IRObject) (Action, error) {
		var a A
		if len(payload) == 0 {
			return a, nil
		}
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, err
		}
		return a, nil
	})
}

// Known reports whether typ has a registered decoder.
func (r *Registry) Known(typ string) bool {
	_, ok := r.decoders[typ]
	return ok
}

// Types returns the registered types in registration order.
func (r *Registry) Types() []string {
	return slices.Clone(r.order)
}

// Decode converts a plain action into its registered typed variant.
// Reserved store actions are returned unchanged.
func (r *Registry) Decode(p PlainAction) (Action, error) {
	if p.Type == "" {
		return nil, errors.New("decode: missing action type")
	}
	if IsReserved(p.Type) {
		return p, nil
	}
	dec, ok := r.decoders[p.Type]
	if !ok {
		return nil, &UnknownActionError{Type: p.Type}
	}
	a, err := dec(p.Payload)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", p.Type, err)
	}
	return a, nil
}

// UnknownActionError is returned by Registry.Decode for unregistered types.
type UnknownActionError struct {
	Type string
}

func (e *UnknownActionError) Error() string {
	return fmt.Sprintf("unknown action type %q", e.Type)
}

// IsUnknownActionError returns true if err is an UnknownActionError.
func IsUnknownActionError(err error) bool {
	var ue *UnknownActionError
	return errors.As(err, &ue)
}
