package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/statecore/internal/ir"
)

func TestValidateValid(t *testing.T) {
	spec := &SliceSpec{
		Name:    "todos",
		Initial: ir.IRArray{},
		Handlers: []Handler{
			{Type: "ADD", Op: OpAppend, Field: "text"},
			{Type: "DEL", Op: OpRemove, Field: "text"},
			{Type: "CLEAR", Op: OpSet, Value: ir.IRArray{}},
			{Type: "BOOM", Op: OpFail, Message: "no"},
		},
	}
	assert.Empty(t, Validate(spec))
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name     string
		initial  ir.IRValue
		handler  Handler
		wantCode string
	}{
		{"add on string", ir.IRString(""), Handler{Type: "X", Op: OpAdd}, ErrOpStateMismatch},
		{"append on int", ir.IRInt(0), Handler{Type: "X", Op: OpAppend}, ErrOpStateMismatch},
		{"remove on object", ir.IRObject{}, Handler{Type: "X", Op: OpRemove, Field: "f"}, ErrOpStateMismatch},
		{"merge on array", ir.IRArray{}, Handler{Type: "X", Op: OpMerge}, ErrOpStateMismatch},
		{"set without operand", ir.IRInt(0), Handler{Type: "X", Op: OpSet}, ErrSetOperand},
		{"set with both operands", ir.IRInt(0), Handler{Type: "X", Op: OpSet, Field: "f", Value: ir.IRInt(1)}, ErrSetOperand},
		{"fail without message", ir.IRInt(0), Handler{Type: "X", Op: OpFail}, ErrFailMessage},
		{"remove without field", ir.IRArray{}, Handler{Type: "X", Op: OpRemove}, ErrRemoveField},
		{"by on set", ir.IRInt(0), Handler{Type: "X", Op: OpSet, Value: ir.IRInt(1), By: 2}, ErrStrayOperand},
		{"message on add", ir.IRInt(0), Handler{Type: "X", Op: OpAdd, Message: "m"}, ErrStrayOperand},
		{"unknown op", ir.IRInt(0), Handler{Type: "X", Op: "multiply"}, ErrUnknownOp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate(&SliceSpec{Name: "s", Initial: tt.initial, Handlers: []Handler{tt.handler}})
			require.NotEmpty(t, errs)

			codes := make([]string, 0, len(errs))
			for _, e := range errs {
				codes = append(codes, e.Code)
			}
			assert.Contains(t, codes, tt.wantCode)
			assert.Equal(t, "slice.s.on.X", errs[0].Field)
		})
	}
}

func TestValidateEmptyName(t *testing.T) {
	errs := Validate(&SliceSpec{Initial: ir.IRInt(0)})
	require.Len(t, errs, 1)
	assert.Equal(t, ErrSliceNameEmpty, errs[0].Code)
}

func TestValidationErrorFormat(t *testing.T) {
	e := ValidationError{Field: "slice.s", Message: "bad", Code: ErrUnknownOp}
	assert.Equal(t, "[E102] slice.s: bad", e.Error())

	e.Line = 4
	assert.Equal(t, "[E102] line 4: slice.s: bad", e.Error())
}
