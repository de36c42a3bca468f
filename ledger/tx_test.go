package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTxRejectsEmptySpendsOrOutputs(t *testing.T) {
	out, err := OpenOutput(10, ptrOutputId("o1"))
	require.NoError(t, err)

	_, err = NewTx(nil, []Output{out})
	require.Error(t, err)
	assert.Equal(t, KindInvalidTxStructure, err.(*Error).Kind())

	_, err = NewTx([]OutputId{"in1"}, nil)
	require.Error(t, err)
	assert.Equal(t, KindInvalidTxStructure, err.(*Error).Kind())
}

func TestNewTxRejectsDuplicateSpendIds(t *testing.T) {
	out, err := OpenOutput(10, ptrOutputId("o1"))
	require.NoError(t, err)

	_, err = NewTx([]OutputId{"in1", "in1"}, []Output{out})
	require.Error(t, err)
	assert.Equal(t, KindDuplicateSpendID, err.(*Error).Kind())
}

func TestNewTxRejectsDuplicateOutputIds(t *testing.T) {
	out1, err := OpenOutput(10, ptrOutputId("o1"))
	require.NoError(t, err)
	out2, err := OpenOutput(5, ptrOutputId("o1"))
	require.NoError(t, err)

	_, err = NewTx([]OutputId{"in1"}, []Output{out1, out2})
	require.Error(t, err)
	assert.Equal(t, KindDuplicateOutputID, err.(*Error).Kind())
}

func TestNewTxRejectsIdSpentAndProducedInSameTx(t *testing.T) {
	out, err := OpenOutput(10, ptrOutputId("shared"))
	require.NoError(t, err)

	_, err = NewTx([]OutputId{"shared"}, []Output{out})
	require.Error(t, err)
	assert.Equal(t, KindInvalidTxStructure, err.(*Error).Kind())
}

func TestNewTxDerivesIdDeterministically(t *testing.T) {
	out, err := OpenOutput(10, ptrOutputId("o1"))
	require.NoError(t, err)

	tx, err := NewTx([]OutputId{"in1"}, []Output{out})
	require.NoError(t, err)
	assert.Equal(t, DeriveTxId([]OutputId{"in1"}, []Output{out}), tx.ID)
}

func TestWithTxIdOverridesDerivedId(t *testing.T) {
	out, err := OpenOutput(10, ptrOutputId("o1"))
	require.NoError(t, err)

	tx, err := NewTx([]OutputId{"in1"}, []Output{out}, WithTxId("custom-id"))
	require.NoError(t, err)
	assert.Equal(t, TxId("custom-id"), tx.ID)
}

func TestTxTotalOutputAmount(t *testing.T) {
	out1, err := OpenOutput(10, ptrOutputId("o1"))
	require.NoError(t, err)
	out2, err := OpenOutput(15, ptrOutputId("o2"))
	require.NoError(t, err)

	tx, err := NewTx([]OutputId{"in1"}, []Output{out1, out2})
	require.NoError(t, err)
	assert.Equal(t, Amount(25), tx.TotalOutputAmount())
}

func TestNewTxCopiesSliceInputs(t *testing.T) {
	out, err := OpenOutput(10, ptrOutputId("o1"))
	require.NoError(t, err)

	spends := []OutputId{"in1"}
	outputs := []Output{out}
	tx, err := NewTx(spends, outputs)
	require.NoError(t, err)

	spends[0] = "mutated"
	outputs[0].Amount = 999

	assert.Equal(t, OutputId("in1"), tx.Spends[0])
	assert.Equal(t, Amount(10), tx.Outputs[0].Amount)
}
