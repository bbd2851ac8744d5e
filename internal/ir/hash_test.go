package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateHashDeterminism(t *testing.T) {
	a := map[string]any{"counter": int64(3), "todos": []any{"milk"}}
	b := map[string]any{"todos": []any{"milk"}, "counter": 3}

	ha, err := StateHash(a)
	require.NoError(t, err)
	hb, err := StateHash(b)
	require.NoError(t, err)

	assert.Equal(t, ha, hb)
	assert.Len(t, ha, 64, "SHA-256 hex is 64 characters")
}

func TestStateHashChangesWithState(t *testing.T) {
	assert.NotEqual(t,
		MustStateHash(map[string]any{"counter": 1}),
		MustStateHash(map[string]any{"counter": 2}),
	)
}

func TestDomainSeparation(t *testing.T) {
	// The same canonical bytes must hash differently per domain.
	sh, err := StateHash(IRObject{"type": IRString("INC")})
	require.NoError(t, err)
	ah, err := ActionHash(PlainAction{Type: "INC"})
	require.NoError(t, err)

	assert.NotEqual(t, sh, ah)
}

func TestActionHashIncludesPayload(t *testing.T) {
	h1, err := ActionHash(NewAction("ADD", O("amount", IRInt(1))))
	require.NoError(t, err)
	h2, err := ActionHash(NewAction("ADD", O("amount", IRInt(2))))
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}
