package ledger

// MemoryHistory is the in-memory HistoryRepository (spec §4.6): four
// maps plus a coinbase-amount map, every operation O(1) expected.
// Mirrors the shape of the teacher's UTXOSet (blockchain/utxo.go) but
// holds provenance facts instead of live outputs.
type MemoryHistory struct {
	createdBy       map[OutputId]TxId
	spentBy         map[OutputId]TxId
	spentOutputs    map[OutputId]SpentOutputData
	txFees          map[TxId]Amount
	coinbaseAmounts map[TxId]Amount
}

// NewMemoryHistory returns an empty in-memory HistoryRepository.
func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{
		createdBy:       map[OutputId]TxId{},
		spentBy:         map[OutputId]TxId{},
		spentOutputs:    map[OutputId]SpentOutputData{},
		txFees:          map[TxId]Amount{},
		coinbaseAmounts: map[TxId]Amount{},
	}
}

func (h *MemoryHistory) SaveGenesis(outputs []Output) error {
	for _, o := range outputs {
		h.createdBy[o.ID] = GenesisMarker
	}
	return nil
}

func (h *MemoryHistory) SaveTransaction(tx *Tx, fee Amount, spentOutputs map[OutputId]SpentOutputData) error {
	for id, data := range spentOutputs {
		h.spentBy[id] = tx.ID
		h.spentOutputs[id] = data
	}
	for _, o := range tx.Outputs {
		h.createdBy[o.ID] = tx.ID
	}
	h.txFees[tx.ID] = fee
	return nil
}

func (h *MemoryHistory) SaveCoinbase(cb *CoinbaseTx) error {
	for _, o := range cb.Outputs {
		h.createdBy[o.ID] = cb.ID
	}
	h.coinbaseAmounts[cb.ID] = cb.TotalOutputAmount()
	return nil
}

func (h *MemoryHistory) FindOutputCreatedBy(id OutputId) (TxId, bool, error) {
	tx, ok := h.createdBy[id]
	return tx, ok, nil
}

func (h *MemoryHistory) FindOutputSpentBy(id OutputId) (TxId, bool, error) {
	tx, ok := h.spentBy[id]
	return tx, ok, nil
}

func (h *MemoryHistory) FindSpentOutput(id OutputId) (Output, bool, error) {
	data, ok := h.spentOutputs[id]
	if !ok {
		return Output{}, false, nil
	}
	return Output{ID: id, Amount: data.Amount, Lock: data.Lock}, true, nil
}

func (h *MemoryHistory) FindOutputHistory(id OutputId) (OutputHistory, bool, error) {
	createdBy, ok := h.createdBy[id]
	if !ok {
		// The output may still be unknown to us even if it's live in
		// the caller's UnspentSet snapshot; the Ledger always records
		// createdBy before returning, so absence here means unknown.
		return OutputHistory{}, false, nil
	}

	spentBy, spent := h.spentBy[id]
	status := StatusUnspent
	var amount Amount
	var lock Lock
	if spent {
		status = StatusSpent
		data := h.spentOutputs[id]
		amount, lock = data.Amount, data.Lock
	}

	return OutputHistory{
		ID:        id,
		Amount:    amount,
		Lock:      lock,
		CreatedBy: createdBy,
		SpentBy:   spentBy,
		Status:    status,
	}, true, nil
}

func (h *MemoryHistory) FindFeeForTx(id TxId) (Amount, bool, error) {
	fee, ok := h.txFees[id]
	return fee, ok, nil
}

func (h *MemoryHistory) FindAllTxFees() (map[TxId]Amount, error) {
	out := make(map[TxId]Amount, len(h.txFees))
	for k, v := range h.txFees {
		out[k] = v
	}
	return out, nil
}

func (h *MemoryHistory) IsCoinbase(id TxId) (bool, error) {
	_, ok := h.coinbaseAmounts[id]
	return ok, nil
}

func (h *MemoryHistory) FindCoinbaseAmount(id TxId) (Amount, bool, error) {
	amt, ok := h.coinbaseAmounts[id]
	return amt, ok, nil
}
