package ledger

// OutputStatus is whether an output is still live in the UnspentSet or
// has already been consumed (spec §4.7, "state-machine view of an
// output").
type OutputStatus int

const (
	StatusUnspent OutputStatus = iota
	StatusSpent
)

// SpentOutputData is the {amount, lock} snapshot of an output at the
// moment it was consumed, recorded so HistoryRepository can still
// answer findSpentOutput after the output has left the UnspentSet
// (spec §4.6).
type SpentOutputData struct {
	Amount Amount
	Lock   Lock
}

// OutputHistory is the full provenance view of a single output (spec
// §4.6, findOutputHistory).
type OutputHistory struct {
	ID        OutputId
	Amount    Amount
	Lock      Lock
	CreatedBy TxId
	SpentBy   TxId // zero value ("") if still unspent
	Status    OutputStatus
}

// HistoryRepository is the port every provenance/fee/coinbase fact
// flows through (spec §4.6). It never mutates the UnspentSet and makes
// no promise of cross-call transactionality: the Ledger sequences
// writes so a failed validation leaves no partial record.
type HistoryRepository interface {
	SaveGenesis(outputs []Output) error
	SaveTransaction(tx *Tx, fee Amount, spentOutputs map[OutputId]SpentOutputData) error
	SaveCoinbase(cb *CoinbaseTx) error

	FindOutputCreatedBy(id OutputId) (TxId, bool, error)
	FindOutputSpentBy(id OutputId) (TxId, bool, error)
	FindSpentOutput(id OutputId) (Output, bool, error)
	FindOutputHistory(id OutputId) (OutputHistory, bool, error)
	FindFeeForTx(id TxId) (Amount, bool, error)
	FindAllTxFees() (map[TxId]Amount, error)
	IsCoinbase(id TxId) (bool, error)
	FindCoinbaseAmount(id TxId) (Amount, bool, error)
}
