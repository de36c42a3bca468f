package ledger

import (
	"maps"

	"github.com/golang-blockchain/unspent/keys"
	"github.com/golang-blockchain/unspent/ledger/internal/logging"
)

// Ledger is the state machine of spec §4.7: genesis, transaction
// application, coinbase application, and the query surface, all
// backed by an UnspentSet and a HistoryRepository. Operations mutate
// the receiver and return it (the "in-place" surface permitted by
// §5); Clone gives an explicit branch point.
type Ledger struct {
	unspent      UnspentSet
	appliedTxIds map[TxId]struct{}
	totalFees    Amount
	totalMinted  Amount
	store        HistoryRepository
	genesisDone  bool
}

// Empty returns a ledger with no genesis yet, backed by an in-memory
// HistoryRepository. AddGenesis may be called exactly once before any
// apply/applyCoinbase.
func Empty() *Ledger {
	return &Ledger{
		unspent:      NewUnspentSet(),
		appliedTxIds: map[TxId]struct{}{},
		store:        NewMemoryHistory(),
	}
}

// WithGenesis is shorthand for Empty().AddGenesis(outputs...).
func WithGenesis(outputs ...Output) (*Ledger, error) {
	return Empty().AddGenesis(outputs...)
}

// FromUnspentSet reconstitutes a running ledger from a previously
// persisted unspent snapshot and a backing store (spec §4.7). The set
// of applied tx ids is not reconstructed eagerly; IsTxApplied (and the
// duplicate-tx check in Apply/ApplyCoinbase) falls back to asking the
// store for a fee or coinbase record whenever an id has not been
// applied through this instance.
func FromUnspentSet(set UnspentSet, store HistoryRepository, totalFees, totalMinted Amount) *Ledger {
	return &Ledger{
		unspent:      set,
		appliedTxIds: map[TxId]struct{}{},
		totalFees:    totalFees,
		totalMinted:  totalMinted,
		store:        store,
		genesisDone:  true,
	}
}

// Clone returns an independent ledger sharing no mutable state with
// the receiver — the explicit branch point the in-place surface
// requires (spec §5). A *MemoryHistory store is copied; any other
// HistoryRepository is shared by the clone and the receiver.
func (l *Ledger) Clone() *Ledger {
	applied := make(map[TxId]struct{}, len(l.appliedTxIds))
	for id := range l.appliedTxIds {
		applied[id] = struct{}{}
	}
	store := l.store
	if mh, ok := l.store.(*MemoryHistory); ok {
		cp := NewMemoryHistory()
		maps.Copy(cp.createdBy, mh.createdBy)
		maps.Copy(cp.spentBy, mh.spentBy)
		maps.Copy(cp.spentOutputs, mh.spentOutputs)
		maps.Copy(cp.txFees, mh.txFees)
		maps.Copy(cp.coinbaseAmounts, mh.coinbaseAmounts)
		store = cp
	}
	return &Ledger{
		unspent:      l.unspent,
		appliedTxIds: applied,
		totalFees:    l.totalFees,
		totalMinted:  l.totalMinted,
		store:        store,
		genesisDone:  l.genesisDone,
	}
}

func (l *Ledger) isEmpty() bool {
	return l.unspent.Count() == 0 && len(l.appliedTxIds) == 0 && !l.genesisDone
}

// AddGenesis adds the ledger's initial outputs. Only permitted once,
// before any apply/applyCoinbase (spec I6, §4.7).
func (l *Ledger) AddGenesis(outputs ...Output) (*Ledger, error) {
	if !l.isEmpty() {
		return l, ErrGenesisNotAllowed()
	}

	seen := make(map[OutputId]struct{}, len(outputs))
	for _, o := range outputs {
		if _, dup := seen[o.ID]; dup {
			return l, ErrDuplicateOutputID(o.ID)
		}
		seen[o.ID] = struct{}{}
	}

	if err := l.store.SaveGenesis(outputs); err != nil {
		return l, ErrPersistence("saving genesis outputs", err)
	}

	l.unspent = l.unspent.AddAll(outputs)
	l.genesisDone = true
	return l, nil
}

// CanApply reports whether Apply(tx) would succeed, without mutating
// the ledger.
func (l *Ledger) CanApply(tx *Tx) error {
	_, _, _, err := l.validateApply(tx)
	return err
}

// validateApply performs every read-only check step 1-5 of spec
// §4.7's apply description, returning the data Apply needs to commit:
// the consumed outputs (by input order) and the fee.
func (l *Ledger) validateApply(tx *Tx) (consumed []Output, fee Amount, spentData map[OutputId]SpentOutputData, err error) {
	if l.isTxIdKnown(tx.ID) {
		return nil, 0, nil, ErrDuplicateTx(tx.ID)
	}

	outputIds := make(map[OutputId]struct{}, len(tx.Outputs))
	for _, o := range tx.Outputs {
		outputIds[o.ID] = struct{}{}
	}

	consumed = make([]Output, 0, len(tx.Spends))
	for _, id := range tx.Spends {
		if _, isOwnOutput := outputIds[id]; isOwnOutput {
			return nil, 0, nil, ErrOutputAlreadySpent(id)
		}
		o, ok := l.unspent.Get(id)
		if !ok {
			return nil, 0, nil, ErrOutputAlreadySpent(id)
		}
		consumed = append(consumed, o)
	}

	for _, o := range tx.Outputs {
		if l.unspent.Contains(o.ID) {
			return nil, 0, nil, ErrDuplicateOutputID(o.ID)
		}
		if known, err := l.outputEverExisted(o.ID); err != nil {
			return nil, 0, nil, err
		} else if known {
			return nil, 0, nil, ErrDuplicateOutputID(o.ID)
		}
	}

	for i, o := range consumed {
		if err := o.Lock.Validate(tx, i); err != nil {
			if pub, ok := PublicKeyOf(o.Lock); ok {
				logging.Warnf("authorization failed for pubkey lock %s at input %d: %v", keys.Fingerprint(pub), i, err)
			}
			return nil, 0, nil, err
		}
	}

	var sumIn, sumOut Amount
	for _, o := range consumed {
		sumIn += o.Amount
	}
	sumOut = tx.TotalOutputAmount()
	if sumOut > sumIn {
		return nil, 0, nil, ErrInsufficientSpends(sumIn, sumOut)
	}
	fee = sumIn - sumOut

	spentData = make(map[OutputId]SpentOutputData, len(consumed))
	for _, o := range consumed {
		spentData[o.ID] = SpentOutputData{Amount: o.Amount, Lock: o.Lock}
	}

	return consumed, fee, spentData, nil
}

// outputEverExisted consults the store for a historical (now spent,
// or otherwise previously known) output id, so a new output can never
// reuse an id from the past (spec §4.7 step 3, I1).
func (l *Ledger) outputEverExisted(id OutputId) (bool, error) {
	_, ok, err := l.store.FindOutputCreatedBy(id)
	if err != nil {
		return false, ErrPersistence("checking historical output id", err)
	}
	return ok, nil
}

func (l *Ledger) isTxIdKnown(id TxId) bool {
	if _, ok := l.appliedTxIds[id]; ok {
		return true
	}
	if isCb, err := l.store.IsCoinbase(id); err == nil && isCb {
		return true
	}
	if _, ok, err := l.store.FindFeeForTx(id); err == nil && ok {
		return true
	}
	return false
}

// Apply validates and commits tx (spec §4.7). On any failure the
// ledger is left byte-equal to its pre-call state (P5); the error
// returned is always a *Error from errors.go.
func (l *Ledger) Apply(tx *Tx) (*Ledger, error) {
	consumed, fee, spentData, err := l.validateApply(tx)
	if err != nil {
		return l, err
	}

	if err := l.store.SaveTransaction(tx, fee, spentData); err != nil {
		return l, ErrPersistence("saving applied transaction", err)
	}

	l.unspent = l.unspent.RemoveAll(tx.Spends)
	l.unspent = l.unspent.AddAll(tx.Outputs)
	l.appliedTxIds[tx.ID] = struct{}{}
	l.totalFees += fee

	return l, nil
}

// ApplyCoinbase validates and commits a minting transaction (spec
// §4.7).
func (l *Ledger) ApplyCoinbase(cb *CoinbaseTx) (*Ledger, error) {
	if l.isTxIdKnown(cb.ID) {
		return l, ErrDuplicateTx(cb.ID)
	}

	for _, o := range cb.Outputs {
		if l.unspent.Contains(o.ID) {
			return l, ErrDuplicateOutputID(o.ID)
		}
		known, err := l.outputEverExisted(o.ID)
		if err != nil {
			return l, err
		}
		if known {
			return l, ErrDuplicateOutputID(o.ID)
		}
	}

	if err := l.store.SaveCoinbase(cb); err != nil {
		return l, ErrPersistence("saving applied coinbase", err)
	}

	l.unspent = l.unspent.AddAll(cb.Outputs)
	l.appliedTxIds[cb.ID] = struct{}{}
	l.totalMinted += cb.TotalOutputAmount()

	return l, nil
}

// --- query surface (spec §4.7) ---

func (l *Ledger) Unspent() UnspentSet { return l.unspent }

func (l *Ledger) UnspentByOwner(name string) []Output { return l.unspent.OwnedBy(name) }

func (l *Ledger) TotalUnspentAmount() Amount { return l.unspent.TotalAmount() }

func (l *Ledger) TotalUnspentByOwner(name string) Amount { return l.unspent.TotalAmountOwnedBy(name) }

func (l *Ledger) IsTxApplied(id TxId) bool { return l.isTxIdKnown(id) }

func (l *Ledger) IsCoinbase(id TxId) bool {
	isCb, err := l.store.IsCoinbase(id)
	if err != nil {
		logging.Warnf("isCoinbase lookup failed for %q: %v", string(id), err)
		return false
	}
	return isCb
}

func (l *Ledger) CoinbaseAmount(id TxId) (Amount, bool) {
	amt, ok, err := l.store.FindCoinbaseAmount(id)
	if err != nil {
		logging.Warnf("coinbaseAmount lookup failed for %q: %v", string(id), err)
		return 0, false
	}
	return amt, ok
}

func (l *Ledger) TotalFeesCollected() Amount { return l.totalFees }

func (l *Ledger) FeeForTx(id TxId) (Amount, bool) {
	amt, ok, err := l.store.FindFeeForTx(id)
	if err != nil {
		logging.Warnf("feeForTx lookup failed for %q: %v", string(id), err)
		return 0, false
	}
	return amt, ok
}

// AllTxFees returns every applied tx's fee. In store-backed mode this
// may be an empty map (spec §4.6, §9 Open Question — see DESIGN.md).
func (l *Ledger) AllTxFees() map[TxId]Amount {
	fees, err := l.store.FindAllTxFees()
	if err != nil {
		logging.Warnf("allTxFees failed: %v", err)
		return map[TxId]Amount{}
	}
	return fees
}

func (l *Ledger) TotalMinted() Amount { return l.totalMinted }

func (l *Ledger) OutputCreatedBy(id OutputId) (TxId, bool) {
	if tx, ok, err := l.store.FindOutputCreatedBy(id); err == nil && ok {
		return tx, true
	}
	return "", false
}

func (l *Ledger) OutputSpentBy(id OutputId) (TxId, bool) {
	if tx, ok, err := l.store.FindOutputSpentBy(id); err == nil && ok {
		return tx, true
	}
	return "", false
}

func (l *Ledger) GetOutput(id OutputId) (Output, bool) {
	if o, ok := l.unspent.Get(id); ok {
		return o, true
	}
	if o, ok, err := l.store.FindSpentOutput(id); err == nil && ok {
		return o, true
	}
	return Output{}, false
}

func (l *Ledger) OutputExists(id OutputId) bool {
	_, ok := l.GetOutput(id)
	return ok
}

// OutputHistory composes the UnspentSet (for live amount/lock) with
// the store's provenance facts into the full view spec §4.6 describes.
func (l *Ledger) OutputHistory(id OutputId) (OutputHistory, bool) {
	createdBy, createdOk := l.OutputCreatedBy(id)
	if !createdOk {
		return OutputHistory{}, false
	}

	if o, ok := l.unspent.Get(id); ok {
		return OutputHistory{
			ID:        id,
			Amount:    o.Amount,
			Lock:      o.Lock,
			CreatedBy: createdBy,
			Status:    StatusUnspent,
		}, true
	}

	spentBy, _ := l.OutputSpentBy(id)
	o, _ := l.GetOutput(id)
	return OutputHistory{
		ID:        id,
		Amount:    o.Amount,
		Lock:      o.Lock,
		CreatedBy: createdBy,
		SpentBy:   spentBy,
		Status:    StatusSpent,
	}, true
}
