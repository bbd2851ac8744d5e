package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/statecore/internal/ir"
	"github.com/roach88/statecore/internal/reducer"
)

func TestMarshalTrace_Canonical(t *testing.T) {
	r := NewResult()
	r.addEvent(TraceEvent{Seq: 1, Type: "ADD", Payload: ir.IRObject{"amount": ir.IRInt(2)}})
	r.addEvent(TraceEvent{Seq: 1, Type: "batch", Actions: []string{"INC", "BOOM"}, Error: "reduce"})
	r.State = reducer.State{"counter": ir.IRInt(2)}

	data, err := MarshalTrace("example", r)
	require.NoError(t, err)

	want := `{"scenario":"example","state":{"counter":2},"trace":[` +
		`{"payload":{"amount":2},"seq":1,"type":"ADD"},` +
		`{"actions":["INC","BOOM"],"error":"reduce","seq":1,"type":"batch"}]}`
	assert.Equal(t, want, string(data))
}

func TestMarshalTrace_NoState(t *testing.T) {
	data, err := MarshalTrace("empty", NewResult())
	require.NoError(t, err)
	assert.Equal(t, `{"scenario":"empty","trace":[]}`, string(data))
}

func TestMarshalTrace_Deterministic(t *testing.T) {
	r := NewResult()
	r.addEvent(TraceEvent{Seq: 1, Type: "UPDATE", Payload: ir.IRObject{"z": ir.IRInt(1), "a": ir.IRInt(2)}})
	r.State = reducer.State{"b": ir.IRInt(1), "a": ir.IRInt(2)}

	first, err := MarshalTrace("det", r)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := MarshalTrace("det", r)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	assert.Contains(t, string(first), `{"a":2,"z":1}`)
}
