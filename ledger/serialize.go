package ledger

import (
	"encoding/json"
	"fmt"
	"sort"
)

// SchemaVersion is the current StateTree schema version (spec §4.8,
// §6: "the version field is mandatory and is inspected on load").
const SchemaVersion = 1

// OutputRecord is the {amount, lock} pair the data tree stores for
// both live and historically-spent outputs.
type OutputRecord struct {
	Amount uint64   `json:"amount"`
	Lock   LockData `json:"lock"`
}

// StateTree is the full data-tree encoding of a Ledger (spec §4.8).
type StateTree struct {
	Version         int                     `json:"version"`
	Unspent         map[string]OutputRecord `json:"unspent"`
	AppliedTxs      []string                `json:"appliedTxs"`
	TxFees          map[string]uint64       `json:"txFees"`
	CoinbaseAmounts map[string]uint64       `json:"coinbaseAmounts"`
	CreatedBy       map[string]string       `json:"createdBy"`
	SpentBy         map[string]string       `json:"spentBy"`
	SpentOutputs    map[string]OutputRecord `json:"spentOutputs"`
}

// MarshalJSON flattens {type, ...fields} onto one object (spec §4.8's
// lock encoding rules), rather than nesting Fields under its own key.
func (d LockData) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(d.Fields)+1)
	for k, v := range d.Fields {
		m[k] = v
	}
	m["type"] = d.Type
	return json.Marshal(m)
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (d *LockData) UnmarshalJSON(b []byte) error {
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	typ, _ := m["type"].(string)
	delete(m, "type")
	d.Type = typ
	if len(m) > 0 {
		d.Fields = m
	} else {
		d.Fields = nil
	}
	return nil
}

// ToArray produces the data-tree view of the ledger (spec §4.8).
// Serialization is only supported for an in-memory-backed ledger: an
// externally-backed ledger's HistoryRepository already persists
// itself, and re-flattening an opaque external store into a single
// in-memory tree would defeat the point of using one.
func (l *Ledger) ToArray() (StateTree, error) {
	mh, ok := l.store.(*MemoryHistory)
	if !ok {
		return StateTree{}, ErrPersistence("ToArray requires an in-memory-backed ledger", nil)
	}

	tree := StateTree{
		Version:         SchemaVersion,
		Unspent:         map[string]OutputRecord{},
		TxFees:          map[string]uint64{},
		CoinbaseAmounts: map[string]uint64{},
		CreatedBy:       map[string]string{},
		SpentBy:         map[string]string{},
		SpentOutputs:    map[string]OutputRecord{},
	}

	for _, id := range l.unspent.OutputIds() {
		o, _ := l.unspent.Get(id)
		tree.Unspent[string(id)] = OutputRecord{Amount: uint64(o.Amount), Lock: o.Lock.Encode()}
	}

	appliedTxs := make([]string, 0, len(l.appliedTxIds))
	for id := range l.appliedTxIds {
		appliedTxs = append(appliedTxs, string(id))
	}
	sort.Strings(appliedTxs)
	tree.AppliedTxs = appliedTxs

	for id, fee := range mh.txFees {
		tree.TxFees[string(id)] = uint64(fee)
	}
	for id, amt := range mh.coinbaseAmounts {
		tree.CoinbaseAmounts[string(id)] = uint64(amt)
	}
	for id, tx := range mh.createdBy {
		tree.CreatedBy[string(id)] = string(tx)
	}
	for id, tx := range mh.spentBy {
		tree.SpentBy[string(id)] = string(tx)
	}
	for id, data := range mh.spentOutputs {
		tree.SpentOutputs[string(id)] = OutputRecord{Amount: uint64(data.Amount), Lock: data.Lock.Encode()}
	}

	return tree, nil
}

// FromArray restores a ledger from a data tree produced by ToArray.
// After restore, validation, spend checks, and provenance all behave
// identically to the original (spec §4.8, P6).
func FromArray(tree StateTree) (*Ledger, error) {
	if tree.Version != SchemaVersion {
		return nil, ErrPersistence(fmt.Sprintf("unsupported schema version %d", tree.Version), nil)
	}

	mh := NewMemoryHistory()

	outputs := make([]Output, 0, len(tree.Unspent))
	for idStr, rec := range tree.Unspent {
		id, err := NewOutputId(idStr)
		if err != nil {
			return nil, err
		}
		lock, err := decodeLock(rec.Lock)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, Output{ID: id, Amount: Amount(rec.Amount), Lock: lock})
	}
	unspent := NewUnspentSet().AddAll(outputs)

	for idStr, txIdStr := range tree.CreatedBy {
		id, err := NewOutputId(idStr)
		if err != nil {
			return nil, err
		}
		mh.createdBy[id] = TxId(txIdStr)
	}
	for idStr, txIdStr := range tree.SpentBy {
		id, err := NewOutputId(idStr)
		if err != nil {
			return nil, err
		}
		mh.spentBy[id] = TxId(txIdStr)
	}
	for idStr, rec := range tree.SpentOutputs {
		id, err := NewOutputId(idStr)
		if err != nil {
			return nil, err
		}
		lock, err := decodeLock(rec.Lock)
		if err != nil {
			return nil, err
		}
		mh.spentOutputs[id] = SpentOutputData{Amount: Amount(rec.Amount), Lock: lock}
	}
	for txIdStr, fee := range tree.TxFees {
		mh.txFees[TxId(txIdStr)] = Amount(fee)
	}
	for txIdStr, amt := range tree.CoinbaseAmounts {
		mh.coinbaseAmounts[TxId(txIdStr)] = Amount(amt)
	}

	applied := make(map[TxId]struct{}, len(tree.AppliedTxs))
	for _, txIdStr := range tree.AppliedTxs {
		applied[TxId(txIdStr)] = struct{}{}
	}

	var totalFees, totalMinted Amount
	for _, fee := range mh.txFees {
		totalFees += fee
	}
	for _, amt := range mh.coinbaseAmounts {
		totalMinted += amt
	}

	return &Ledger{
		unspent:      unspent,
		appliedTxIds: applied,
		totalFees:    totalFees,
		totalMinted:  totalMinted,
		store:        mh,
		genesisDone:  true,
	}, nil
}

// ToJSON marshals the ledger's data tree with encoding/json (stdlib —
// see SPEC_FULL.md's dependency table for why no third-party codec is
// used here).
func (l *Ledger) ToJSON() ([]byte, error) {
	tree, err := l.ToArray()
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(tree)
	if err != nil {
		return nil, ErrPersistence("marshaling ledger state", err)
	}
	return data, nil
}

// FromJSON is the inverse of ToJSON.
func FromJSON(data []byte) (*Ledger, error) {
	var tree StateTree
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, ErrPersistence("unmarshaling ledger state", err)
	}
	return FromArray(tree)
}
