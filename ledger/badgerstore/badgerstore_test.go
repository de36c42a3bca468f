package badgerstore

import (
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/golang-blockchain/unspent/ledger"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	opts := badger.DefaultOptions("").WithInMemory(true).WithLoggingLevel(badger.WARNING)
	db, err := badger.Open(opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSaveGenesisAndFindOutputCreatedBy(t *testing.T) {
	db := openTestDB(t)
	h := New(db, "ledger-1")

	out, err := ledger.OpenOutput(10, nil)
	require.NoError(t, err)

	require.NoError(t, h.SaveGenesis([]ledger.Output{out}))

	createdBy, ok, err := h.FindOutputCreatedBy(out.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, ledger.GenesisMarker, createdBy)

	_, ok, err = h.FindOutputSpentBy(out.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSaveTransactionRecordsSpendAndCreation(t *testing.T) {
	db := openTestDB(t)
	h := New(db, "ledger-1")

	spent, err := ledger.OpenOutput(100, nil)
	require.NoError(t, err)
	require.NoError(t, h.SaveGenesis([]ledger.Output{spent}))

	produced, err := ledger.OpenOutput(90, nil)
	require.NoError(t, err)
	tx, err := ledger.NewTx([]ledger.OutputId{spent.ID}, []ledger.Output{produced})
	require.NoError(t, err)

	spentData := map[ledger.OutputId]ledger.SpentOutputData{
		spent.ID: {Amount: spent.Amount, Lock: spent.Lock},
	}
	require.NoError(t, h.SaveTransaction(tx, 10, spentData))

	spentBy, ok, err := h.FindOutputSpentBy(spent.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, tx.ID, spentBy)

	createdBy, ok, err := h.FindOutputCreatedBy(produced.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, tx.ID, createdBy)

	fee, ok, err := h.FindFeeForTx(tx.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, ledger.Amount(10), fee)

	restored, ok, err := h.FindSpentOutput(spent.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, spent.Amount, restored.Amount)
}

func TestSaveCoinbaseMarksIsCoinbase(t *testing.T) {
	db := openTestDB(t)
	h := New(db, "ledger-1")

	reward, err := ledger.OpenOutput(50, nil)
	require.NoError(t, err)
	cb, err := ledger.NewCoinbaseTx([]ledger.Output{reward})
	require.NoError(t, err)

	require.NoError(t, h.SaveCoinbase(cb))

	isCb, err := h.IsCoinbase(cb.ID)
	require.NoError(t, err)
	assert.True(t, isCb)

	amt, ok, err := h.FindCoinbaseAmount(cb.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, ledger.Amount(50), amt)

	isCb, err = h.IsCoinbase("nonexistent")
	require.NoError(t, err)
	assert.False(t, isCb)
}

func TestFindAllTxFeesIsEmptyButSlowVariantScans(t *testing.T) {
	db := openTestDB(t)
	h := New(db, "ledger-1")

	spent, err := ledger.OpenOutput(100, nil)
	require.NoError(t, err)
	require.NoError(t, h.SaveGenesis([]ledger.Output{spent}))
	produced, err := ledger.OpenOutput(90, nil)
	require.NoError(t, err)
	tx, err := ledger.NewTx([]ledger.OutputId{spent.ID}, []ledger.Output{produced})
	require.NoError(t, err)
	require.NoError(t, h.SaveTransaction(tx, 10, map[ledger.OutputId]ledger.SpentOutputData{
		spent.ID: {Amount: spent.Amount, Lock: spent.Lock},
	}))

	fees, err := h.FindAllTxFees()
	require.NoError(t, err)
	assert.Empty(t, fees)

	slow, err := h.FindAllTxFeesSlow()
	require.NoError(t, err)
	assert.Equal(t, ledger.Amount(10), slow[tx.ID])
}

func TestSeparateLedgerIdsDoNotCollide(t *testing.T) {
	db := openTestDB(t)
	h1 := New(db, "ledger-a")
	h2 := New(db, "ledger-b")

	sharedID := ledger.OutputId("shared")
	out, err := ledger.OpenOutput(10, &sharedID)
	require.NoError(t, err)
	require.NoError(t, h1.SaveGenesis([]ledger.Output{out}))

	_, ok, err := h2.FindOutputCreatedBy(out.ID)
	require.NoError(t, err)
	assert.False(t, ok, "a ledger id must not see another ledger's facts")

	_, ok, err = h1.FindOutputCreatedBy(out.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFindOutputHistoryComposesCreatedAndSpent(t *testing.T) {
	db := openTestDB(t)
	h := New(db, "ledger-1")

	out, err := ledger.OpenOutput(20, nil)
	require.NoError(t, err)
	require.NoError(t, h.SaveGenesis([]ledger.Output{out}))

	hist, ok, err := h.FindOutputHistory(out.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, ledger.StatusUnspent, hist.Status)
	assert.Equal(t, ledger.GenesisMarker, hist.CreatedBy)

	produced, err := ledger.OpenOutput(15, nil)
	require.NoError(t, err)
	tx, err := ledger.NewTx([]ledger.OutputId{out.ID}, []ledger.Output{produced})
	require.NoError(t, err)
	require.NoError(t, h.SaveTransaction(tx, 5, map[ledger.OutputId]ledger.SpentOutputData{
		out.ID: {Amount: out.Amount, Lock: out.Lock},
	}))

	hist, ok, err = h.FindOutputHistory(out.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, ledger.StatusSpent, hist.Status)
	assert.Equal(t, tx.ID, hist.SpentBy)
	assert.Equal(t, out.Amount, hist.Amount)
}
