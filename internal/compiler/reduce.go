package compiler

import (
	"fmt"

	"github.com/roach88/statecore/internal/ir"
	"github.com/roach88/statecore/internal/store"
)

// Reducer returns the slice's reducer.
//
// A nil state is treated as the slice's initial value. Action types
// without a handler return the input state unchanged.
func (s *SliceSpec) Reducer() store.Reducer[any] {
	handlers := make(map[string]Handler, len(s.Handlers))
	for _, h := range s.Handlers {
		handlers[h.Type] = h
	}
	initial := s.Initial
	name := s.Name

	return func(state any, action ir.Action) (any, error) {
		if state == nil {
			state = initial
		}
		h, ok := handlers[action.ActionType()]
		if !ok {
			return state, nil
		}

		cur, ok := state.(ir.IRValue)
		if !ok {
			return state, &ReduceError{Slice: name, Type: h.Type, Message: fmt.Sprintf("state is %T, not an IR value", state)}
		}

		next, msg := apply(h, cur, action)
		if msg != "" {
			return state, &ReduceError{Slice: name, Type: h.Type, Message: msg}
		}
		return next, nil
	}
}

// apply runs one handler. A non-empty message reports why it could not.
func apply(h Handler, state ir.IRValue, action ir.Action) (ir.IRValue, string) {
	payload, err := payloadOf(action)
	if err != nil {
		return nil, err.Error()
	}
	if payload == nil {
		payload = ir.IRObject{}
	}

	operand := func() (ir.IRValue, string) {
		v, ok := payload[h.Field]
		if !ok {
			return nil, fmt.Sprintf("payload field %q is missing", h.Field)
		}
		return v, ""
	}

	switch h.Op {
	case OpSet:
		if h.Field == "" {
			return h.Value, ""
		}
		return operand()

	case OpAdd:
		n, ok := state.(ir.IRInt)
		if !ok {
			return nil, fmt.Sprintf("add needs an int state, got %s", kindName(state))
		}
		by := ir.IRInt(1)
		if h.By != 0 {
			by = ir.IRInt(h.By)
		}
		if h.Field != "" {
			v, msg := operand()
			if msg != "" {
				return nil, msg
			}
			i, ok := v.(ir.IRInt)
			if !ok {
				return nil, fmt.Sprintf("payload field %q is %s, not int", h.Field, kindName(v))
			}
			by = i
		}
		return n + by, ""

	case OpAppend:
		arr, ok := state.(ir.IRArray)
		if !ok {
			return nil, fmt.Sprintf("append needs an array state, got %s", kindName(state))
		}
		var item ir.IRValue = payload
		if h.Field != "" {
			v, msg := operand()
			if msg != "" {
				return nil, msg
			}
			item = v
		}
		next := make(ir.IRArray, 0, len(arr)+1)
		next = append(next, arr...)
		return append(next, item), ""

	case OpRemove:
		arr, ok := state.(ir.IRArray)
		if !ok {
			return nil, fmt.Sprintf("remove needs an array state, got %s", kindName(state))
		}
		target, msg := operand()
		if msg != "" {
			return nil, msg
		}
		next := make(ir.IRArray, 0, len(arr))
		for _, elem := range arr {
			if !ir.Equal(elem, target) {
				next = append(next, elem)
			}
		}
		if len(next) == len(arr) {
			return state, ""
		}
		return next, ""

	case OpMerge:
		obj, ok := state.(ir.IRObject)
		if !ok {
			return nil, fmt.Sprintf("merge needs an object state, got %s", kindName(state))
		}
		src := payload
		if h.Field != "" {
			v, msg := operand()
			if msg != "" {
				return nil, msg
			}
			o, ok := v.(ir.IRObject)
			if !ok {
				return nil, fmt.Sprintf("payload field %q is %s, not object", h.Field, kindName(v))
			}
			src = o
		}
		next := make(ir.IRObject, len(obj)+len(src))
		for k, v := range obj {
			next[k] = v
		}
		for k, v := range src {
			next[k] = v
		}
		return next, ""

	case OpFail:
		return nil, h.Message
	}

	return nil, fmt.Sprintf("unknown op %q", h.Op)
}

func payloadOf(action ir.Action) (ir.IRObject, error) {
	if p, ok := action.(ir.Payloader); ok {
		return p.ActionPayload(), nil
	}
	plain, err := ir.ToPlain(action)
	if err != nil {
		return nil, err
	}
	return plain.Payload, nil
}
