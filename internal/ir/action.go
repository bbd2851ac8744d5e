package ir

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// Action is a discrete state-change request.
//
// ActionType returns the discriminant. Reducers match on it with an
// exhaustive switch and pass the state through unchanged on the default
// branch. An empty type is never a valid action.
type Action interface {
	ActionType() string
}

// Payloader is implemented by typed actions that can describe their own
// payload as an IRObject. Used by ToPlain when journaling typed actions.
type Payloader interface {
	ActionPayload() IRObject
}

// Reserved action types dispatched by the store itself.
// Application reducers must treat them like any unrecognized type.
const (
	reservedPrefix = "@@statecore/"

	// InitActionType is dispatched once when a store is constructed.
	InitActionType = reservedPrefix + "INIT"

	// ReplaceActionType is dispatched after the root reducer is replaced.
	ReplaceActionType = reservedPrefix + "REPLACE"
)

// InitAction is the synthetic action used to compute the initial state.
var InitAction = PlainAction{Type: InitActionType}

// ReplaceAction is dispatched by Store.ReplaceReducer.
var ReplaceAction = PlainAction{Type: ReplaceActionType}

// IsReserved reports whether typ belongs to the store's private namespace.
func IsReserved(typ string) bool {
	return strings.HasPrefix(typ, reservedPrefix)
}

// PlainAction is an open-shaped action: a type discriminant plus an
// arbitrary payload object.
type PlainAction struct {
	Type    string   `json:"type" yaml:"type"`
	Payload IRObject `json:"payload,omitempty" yaml:"payload,omitempty"`
}

// ActionType implements Action.
func (a PlainAction) ActionType() string {
	return a.Type
}

// ActionPayload implements Payloader.
func (a PlainAction) ActionPayload() IRObject {
	return a.Payload
}

// Field returns a payload field.
func (a PlainAction) Field(name string) (IRValue, bool) {
	if a.Payload == nil {
		return nil, false
	}
	v, ok := a.Payload[name]
	return v, ok
}

// NewAction builds a PlainAction from typed key-value pairs.
// Example: NewAction("ADD_TODO", O("text", IRString("milk")))
func NewAction(typ string, pairs ...IRPair) PlainAction {
	a := PlainAction{Type: typ}
	if len(pairs) > 0 {
		a.Payload = NewIRObjectFromPairs(pairs...)
	}
	return a
}

// TypeOf returns the discriminant of v when v is a well-formed action.
// Returns false for nil (including nil pointers), non-actions and actions
// with an empty type.
func TypeOf(v any) (string, bool) {
	a, ok := v.(Action)
	if !ok || a == nil {
		return "", false
	}
	if rv := reflect.ValueOf(a); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return "", false
	}
	typ := a.ActionType()
	if typ == "" {
		return "", false
	}
	return typ, true
}

// ToPlain converts any action to its PlainAction form.
//
// PlainAction values are returned unchanged. Payloader implementations
// supply their own payload. Other typed actions are encoded through JSON,
// with a top-level "type" key removed from the payload.
func ToPlain(a Action) (PlainAction, error) {
	typ, ok := TypeOf(a)
	if !ok {
		return PlainAction{}, fmt.Errorf("to plain: not a typed action: %T", a)
	}

	switch v := a.(type) {
	case PlainAction:
		return v, nil
	case *PlainAction:
		return *v, nil
	case Payloader:
		return PlainAction{Type: typ, Payload: v.ActionPayload()}, nil
	}

	data, err := json.Marshal(a)
	if err != nil {
		return PlainAction{}, fmt.Errorf("to plain %s: %w", typ, err)
	}
	val, err := UnmarshalIRValue(data)
	if err != nil {
		return PlainAction{}, fmt.Errorf("to plain %s: %w", typ, err)
	}
	obj, ok := val.(IRObject)
	if !ok {
		return PlainAction{}, fmt.Errorf("to plain %s: payload must encode as an object, got %T", typ, val)
	}
	delete(obj, "type")
	if len(obj) == 0 {
		obj = nil
	}
	return PlainAction{Type: typ, Payload: obj}, nil
}
