package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToArrayRejectsExternallyBackedLedger(t *testing.T) {
	out, err := OpenOutput(10, ptrOutputId("o1"))
	require.NoError(t, err)
	l := FromUnspentSet(NewUnspentSet().Add(out), &stubHistory{}, 0, 0)

	_, err = l.ToArray()
	require.Error(t, err)
	assert.Equal(t, KindPersistence, err.(*Error).Kind())
}

func TestFromArrayRejectsUnsupportedSchemaVersion(t *testing.T) {
	_, err := FromArray(StateTree{Version: SchemaVersion + 1})
	require.Error(t, err)
	assert.Equal(t, KindPersistence, err.(*Error).Kind())
}

func TestLockDataJSONRoundTrip(t *testing.T) {
	owner, err := OwnedBy("alice")
	require.NoError(t, err)

	rec := OutputRecord{Amount: 10, Lock: owner.Encode()}
	tree := StateTree{
		Version: SchemaVersion,
		Unspent: map[string]OutputRecord{"o1": rec},
	}

	data, err := toJSONForTest(tree)
	require.NoError(t, err)

	restored, err := fromJSONForTest(data)
	require.NoError(t, err)

	assert.Equal(t, rec.Amount, restored.Unspent["o1"].Amount)
	assert.Equal(t, rec.Lock.Type, restored.Unspent["o1"].Lock.Type)
	assert.Equal(t, rec.Lock.Fields["name"], restored.Unspent["o1"].Lock.Fields["name"])
}

// stubHistory is a minimal HistoryRepository used only to exercise the
// "ToArray requires in-memory" guard; none of its methods are expected
// to be called in that test.
type stubHistory struct{}

func (stubHistory) SaveGenesis([]Output) error                              { return nil }
func (stubHistory) SaveTransaction(*Tx, Amount, map[OutputId]SpentOutputData) error { return nil }
func (stubHistory) SaveCoinbase(*CoinbaseTx) error                          { return nil }
func (stubHistory) FindOutputCreatedBy(OutputId) (TxId, bool, error)        { return "", false, nil }
func (stubHistory) FindOutputSpentBy(OutputId) (TxId, bool, error)          { return "", false, nil }
func (stubHistory) FindSpentOutput(OutputId) (Output, bool, error)          { return Output{}, false, nil }
func (stubHistory) FindOutputHistory(OutputId) (OutputHistory, bool, error) {
	return OutputHistory{}, false, nil
}
func (stubHistory) FindFeeForTx(TxId) (Amount, bool, error)     { return 0, false, nil }
func (stubHistory) FindAllTxFees() (map[TxId]Amount, error)     { return map[TxId]Amount{}, nil }
func (stubHistory) IsCoinbase(TxId) (bool, error)               { return false, nil }
func (stubHistory) FindCoinbaseAmount(TxId) (Amount, bool, error) { return 0, false, nil }

func toJSONForTest(tree StateTree) ([]byte, error) {
	l := &Ledger{unspent: NewUnspentSet(), appliedTxIds: map[TxId]struct{}{}, store: NewMemoryHistory(), genesisDone: true}
	for idStr, rec := range tree.Unspent {
		id, err := NewOutputId(idStr)
		if err != nil {
			return nil, err
		}
		lock, err := decodeLock(rec.Lock)
		if err != nil {
			return nil, err
		}
		l.unspent = l.unspent.Add(Output{ID: id, Amount: Amount(rec.Amount), Lock: lock})
	}
	return l.ToJSON()
}

func fromJSONForTest(data []byte) (StateTree, error) {
	l, err := FromJSON(data)
	if err != nil {
		return StateTree{}, err
	}
	return l.ToArray()
}
