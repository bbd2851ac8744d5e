package compiler

import (
	"fmt"

	"github.com/roach88/statecore/internal/ir"
)

// Validation error codes (E100-E199)
const (
	ErrSliceNameEmpty  = "E101" // slice name is required
	ErrUnknownOp       = "E102" // op is not one of the supported operations
	ErrOpStateMismatch = "E103" // op does not fit the initial state's shape
	ErrSetOperand      = "E104" // set needs exactly one of value or field
	ErrFailMessage     = "E105" // fail needs a message
	ErrStrayOperand    = "E106" // operand the op does not use
	ErrRemoveField     = "E107" // remove needs a field
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a compiled slice for handlers that could never apply.
// Returns all errors found (does not fail-fast).
func Validate(spec *SliceSpec) []ValidationError {
	var errs []ValidationError

	if spec.Name == "" {
		errs = append(errs, ValidationError{
			Field:   "slice",
			Message: "slice name is required",
			Code:    ErrSliceNameEmpty,
		})
	}

	for _, h := range spec.Handlers {
		errs = append(errs, validateHandler(spec, h)...)
	}
	return errs
}

func validateHandler(spec *SliceSpec, h Handler) []ValidationError {
	var errs []ValidationError
	field := fmt.Sprintf("slice.%s.on.%s", spec.Name, h.Type)

	add := func(code, msg string) {
		errs = append(errs, ValidationError{Field: field, Message: msg, Code: code})
	}

	if !ValidOps[h.Op] {
		add(ErrUnknownOp, fmt.Sprintf("unknown op %q", h.Op))
		return errs
	}

	switch h.Op {
	case OpSet:
		if (h.Value == nil) == (h.Field == "") {
			add(ErrSetOperand, "set requires exactly one of value or field")
		}

	case OpAdd:
		if _, ok := spec.Initial.(ir.IRInt); !ok {
			add(ErrOpStateMismatch, fmt.Sprintf("add requires an int state, initial is %s", kindName(spec.Initial)))
		}
		if h.By != 0 && h.Field != "" {
			add(ErrStrayOperand, "add takes by or field, not both")
		}

	case OpAppend:
		if _, ok := spec.Initial.(ir.IRArray); !ok {
			add(ErrOpStateMismatch, fmt.Sprintf("append requires an array state, initial is %s", kindName(spec.Initial)))
		}

	case OpRemove:
		if _, ok := spec.Initial.(ir.IRArray); !ok {
			add(ErrOpStateMismatch, fmt.Sprintf("remove requires an array state, initial is %s", kindName(spec.Initial)))
		}
		if h.Field == "" {
			add(ErrRemoveField, "remove requires a field")
		}

	case OpMerge:
		if _, ok := spec.Initial.(ir.IRObject); !ok {
			add(ErrOpStateMismatch, fmt.Sprintf("merge requires an object state, initial is %s", kindName(spec.Initial)))
		}

	case OpFail:
		if h.Message == "" {
			add(ErrFailMessage, "fail requires a message")
		}
	}

	if h.By != 0 && h.Op != OpAdd {
		add(ErrStrayOperand, fmt.Sprintf("by is only valid for add, not %s", h.Op))
	}
	if h.Value != nil && h.Op != OpSet {
		add(ErrStrayOperand, fmt.Sprintf("value is only valid for set, not %s", h.Op))
	}
	if h.Message != "" && h.Op != OpFail {
		add(ErrStrayOperand, fmt.Sprintf("message is only valid for fail, not %s", h.Op))
	}

	return errs
}

func kindName(v ir.IRValue) string {
	switch v.(type) {
	case ir.IRNull, nil:
		return "null"
	case ir.IRString:
		return "string"
	case ir.IRInt:
		return "int"
	case ir.IRBool:
		return "bool"
	case ir.IRArray:
		return "array"
	case ir.IRObject:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
