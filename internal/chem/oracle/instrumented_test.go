package oracle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrumented_RecordsEveryCall(t *testing.T) {
	ctx := context.Background()

	type call struct {
		op string
		ok bool
	}
	var calls []call
	o := NewInstrumented(newMethylamineStatic(), func(op string, ok bool, err error, d time.Duration) {
		calls = append(calls, call{op, ok})
	})

	inchi, ok, err := o.SMILESToInChI(ctx, methylamineSMILES)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, methylamineInChI, inchi)

	_, ok, err = o.InChIKeyToInChI(ctx, "AAAAAAAAAAAAAA-AAAAAAAAAA-N")
	require.NoError(t, err)
	assert.False(t, ok)

	require.Len(t, calls, 2)
	assert.Equal(t, call{"smiles_to_inchi", true}, calls[0])
	assert.Equal(t, call{"inchikey_to_inchi", false}, calls[1])
}

func TestInstrumented_NilRecorderReturnsInner(t *testing.T) {
	inner := NewUnavailable()
	assert.Same(t, Oracle(inner), NewInstrumented(inner, nil))
}
