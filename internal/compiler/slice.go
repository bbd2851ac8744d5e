package compiler

import (
	"fmt"

	"cuelang.org/go/cue"

	"github.com/roach88/statecore/internal/ir"
)

// Op is a handler operation.
type Op string

const (
	OpSet    Op = "set"
	OpAdd    Op = "add"
	OpAppend Op = "append"
	OpRemove Op = "remove"
	OpMerge  Op = "merge"
	OpFail   Op = "fail"
)

// ValidOps lists the supported handler operations.
var ValidOps = map[Op]bool{
	OpSet:    true,
	OpAdd:    true,
	OpAppend: true,
	OpRemove: true,
	OpMerge:  true,
	OpFail:   true,
}

// Handler is the reaction of a slice to one action type.
type Handler struct {
	Type    string     `json:"type"`
	Op      Op         `json:"op"`
	By      int64      `json:"by,omitempty"`
	Field   string     `json:"field,omitempty"`
	Value   ir.IRValue `json:"value,omitempty"`
	Message string     `json:"message,omitempty"`
}

// SliceSpec is a compiled slice declaration.
type SliceSpec struct {
	Name     string
	Initial  ir.IRValue
	Handlers []Handler // declaration order
}

// Handler returns the handler for an action type.
func (s *SliceSpec) Handler(typ string) (Handler, bool) {
	for _, h := range s.Handlers {
		if h.Type == typ {
			return h, true
		}
	}
	return Handler{}, false
}

// IR returns the canonical IR form of the spec, used for hashing.
func (s *SliceSpec) IR() ir.IRObject {
	on := ir.IRObject{}
	for _, h := range s.Handlers {
		obj := ir.IRObject{"op": ir.IRString(h.Op)}
		if h.By != 0 {
			obj["by"] = ir.IRInt(h.By)
		}
		if h.Field != "" {
			obj["field"] = ir.IRString(h.Field)
		}
		if h.Value != nil {
			obj["value"] = h.Value
		}
		if h.Message != "" {
			obj["message"] = ir.IRString(h.Message)
		}
		on[h.Type] = obj
	}
	return ir.IRObject{
		"initial": s.Initial,
		"on":      on,
	}
}

// CompileSlice parses a CUE value into a SliceSpec.
//
// The CUE value should be the slice struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`slice: counter: { initial: 0, on: INC: {op: "add"} }`)
//	spec, err := CompileSlice(v.LookupPath(cue.ParsePath("slice.counter")))
func CompileSlice(v cue.Value) (*SliceSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &SliceSpec{}

	selectors := v.Path().Selectors()
	if len(selectors) > 0 {
		spec.Name = unquote(selectors[len(selectors)-1].String())
	}

	initialVal := v.LookupPath(cue.ParsePath("initial"))
	if !initialVal.Exists() {
		return nil, &CompileError{
			Field:   "initial",
			Message: "initial is required",
			Pos:     v.Pos(),
		}
	}
	initial, err := toIR(initialVal, "initial")
	if err != nil {
		return nil, err
	}
	spec.Initial = initial

	spec.Handlers, err = parseHandlers(v)
	if err != nil {
		return nil, err
	}

	return spec, nil
}

// parseHandlers extracts the on: TYPE: {...} handlers. A slice without
// handlers is valid; it keeps its initial state forever.
func parseHandlers(v cue.Value) ([]Handler, error) {
	onVal := v.LookupPath(cue.ParsePath("on"))
	if !onVal.Exists() {
		return nil, nil
	}

	iter, err := onVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var handlers []Handler
	for iter.Next() {
		typ := label(iter)
		h, err := parseHandler(typ, iter.Value())
		if err != nil {
			return nil, err
		}
		handlers = append(handlers, h)
	}
	return handlers, nil
}

func parseHandler(typ string, v cue.Value) (Handler, error) {
	h := Handler{Type: typ}
	prefix := "on." + typ

	if ir.IsReserved(typ) {
		return h, &CompileError{
			Field:   prefix,
			Message: fmt.Sprintf("%s is reserved by the store", typ),
			Pos:     v.Pos(),
		}
	}

	opVal := v.LookupPath(cue.ParsePath("op"))
	if !opVal.Exists() {
		return h, &CompileError{
			Field:   prefix + ".op",
			Message: "op is required",
			Pos:     v.Pos(),
		}
	}
	op, err := opVal.String()
	if err != nil {
		return h, formatCUEError(err)
	}
	h.Op = Op(op)
	if !ValidOps[h.Op] {
		return h, &CompileError{
			Field:   prefix + ".op",
			Message: fmt.Sprintf("unknown op %q, must be one of set, add, append, remove, merge, fail", op),
			Pos:     opVal.Pos(),
		}
	}

	if byVal := v.LookupPath(cue.ParsePath("by")); byVal.Exists() {
		if byVal.Kind() != cue.IntKind {
			return h, &CompileError{
				Field:   prefix + ".by",
				Message: "by must be an int",
				Pos:     byVal.Pos(),
			}
		}
		if h.By, err = byVal.Int64(); err != nil {
			return h, formatCUEError(err)
		}
	}

	if fieldVal := v.LookupPath(cue.ParsePath("field")); fieldVal.Exists() {
		if h.Field, err = fieldVal.String(); err != nil {
			return h, formatCUEError(err)
		}
	}

	if valueVal := v.LookupPath(cue.ParsePath("value")); valueVal.Exists() {
		if h.Value, err = toIR(valueVal, prefix+".value"); err != nil {
			return h, err
		}
	}

	if msgVal := v.LookupPath(cue.ParsePath("message")); msgVal.Exists() {
		if h.Message, err = msgVal.String(); err != nil {
			return h, formatCUEError(err)
		}
	}

	return h, nil
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
