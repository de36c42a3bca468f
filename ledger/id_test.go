package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOutputIdValidation(t *testing.T) {
	_, err := NewOutputId("")
	require.Error(t, err)

	_, err = NewOutputId("   ")
	require.Error(t, err)

	_, err = NewOutputId("has a space")
	require.Error(t, err)

	long := make([]byte, maxIDLength+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err = NewOutputId(string(long))
	require.Error(t, err)

	id, err := NewOutputId("coffee_1-2")
	require.NoError(t, err)
	assert.Equal(t, OutputId("coffee_1-2"), id)
}

func TestDeriveRandomOutputIdIsUnique(t *testing.T) {
	a := DeriveRandomOutputId()
	b := DeriveRandomOutputId()
	assert.NotEqual(t, a, b)
	assert.Len(t, string(a), 32)
}

func TestDeriveTxIdDependsOnlyOnSpendsAndOutputs(t *testing.T) {
	out, err := OpenOutput(10, ptrOutputId("out1"))
	require.NoError(t, err)

	id1 := DeriveTxId([]OutputId{"in1"}, []Output{out})
	id2 := DeriveTxId([]OutputId{"in1"}, []Output{out})
	assert.Equal(t, id1, id2, "same spends/outputs must derive the same id")

	tx1, err := NewTx([]OutputId{"in1"}, []Output{out}, WithSignedBy("alice"))
	require.NoError(t, err)
	tx2, err := NewTx([]OutputId{"in1"}, []Output{out}, WithSignedBy("bob"))
	require.NoError(t, err)
	assert.Equal(t, tx1.ID, tx2.ID, "SignedBy must not affect the derived id")
}

func TestDeriveTxIdAndDeriveCoinbaseIdNeverCollide(t *testing.T) {
	out, err := OpenOutput(10, ptrOutputId("shared"))
	require.NoError(t, err)

	txId := DeriveTxId(nil, []Output{out})
	cbId := DeriveCoinbaseId([]Output{out})
	assert.NotEqual(t, txId, cbId)
}

func ptrOutputId(v string) *OutputId {
	id := OutputId(v)
	return &id
}
