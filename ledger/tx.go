package ledger

// Tx consumes one or more existing outputs and creates one or more
// new ones (spec §3, §4.4). SignedBy and Proofs are authorization
// context only: they never influence Id, matching the teacher's
// TrimmedCopy convention of hashing everything except the signing
// material (blockchain/transaction.go).
type Tx struct {
	ID       TxId
	Spends   []OutputId
	Outputs  []Output
	SignedBy string
	Proofs   [][]byte
}

// TxOption configures an optional Tx field at construction time.
type TxOption func(*txOptions)

type txOptions struct {
	id       *TxId
	signedBy string
	proofs   [][]byte
}

// WithTxId supplies the Tx id explicitly instead of deriving it from
// spends/outputs.
func WithTxId(id TxId) TxOption {
	return func(o *txOptions) { o.id = &id }
}

// WithSignedBy attaches the caller claiming to authorize this Tx (for
// NamedOwner locks).
func WithSignedBy(name string) TxOption {
	return func(o *txOptions) { o.signedBy = name }
}

// WithProofs attaches the per-input proofs (for PublicKey locks).
func WithProofs(proofs [][]byte) TxOption {
	return func(o *txOptions) { o.proofs = proofs }
}

// NewTx validates and constructs a spending transaction. spends must
// be non-empty and pairwise distinct; outputs must be non-empty and
// carry pairwise-distinct ids; no id may appear in both lists (spec
// §3, §4.4).
func NewTx(spends []OutputId, outputs []Output, opts ...TxOption) (*Tx, error) {
	if len(spends) == 0 {
		return nil, ErrEmptySpends()
	}
	if len(outputs) == 0 {
		return nil, ErrEmptyOutputs()
	}

	seenSpends := make(map[OutputId]struct{}, len(spends))
	for _, id := range spends {
		if err := validateIDValue(string(id)); err != nil {
			return nil, err
		}
		if _, dup := seenSpends[id]; dup {
			return nil, ErrDuplicateSpendID(id)
		}
		seenSpends[id] = struct{}{}
	}

	seenOutputs := make(map[OutputId]struct{}, len(outputs))
	for _, o := range outputs {
		if _, dup := seenOutputs[o.ID]; dup {
			return nil, ErrDuplicateOutputID(o.ID)
		}
		seenOutputs[o.ID] = struct{}{}
		if _, clash := seenSpends[o.ID]; clash {
			return nil, ErrSpendAmongOutputs(o.ID)
		}
	}

	options := txOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	id := DeriveTxId(spends, outputs)
	if options.id != nil {
		id = *options.id
	}
	if err := validateIDValue(string(id)); err != nil {
		return nil, err
	}

	return &Tx{
		ID:       id,
		Spends:   append([]OutputId(nil), spends...),
		Outputs:  append([]Output(nil), outputs...),
		SignedBy: options.signedBy,
		Proofs:   options.proofs,
	}, nil
}

// TotalOutputAmount sums every output's amount (spec §4.4).
func (tx *Tx) TotalOutputAmount() Amount {
	var total Amount
	for _, o := range tx.Outputs {
		total += o.Amount
	}
	return total
}
