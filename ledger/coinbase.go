package ledger

// CoinbaseTx mints outputs ex nihilo: it has no spends, and its id is
// content-addressed over its outputs alone (spec §3, §4.4).
type CoinbaseTx struct {
	ID      TxId
	Outputs []Output
}

// CoinbaseOption configures an optional CoinbaseTx field.
type CoinbaseOption func(*coinbaseOptions)

type coinbaseOptions struct {
	id *TxId
}

// WithCoinbaseId supplies the coinbase id explicitly instead of
// deriving it from outputs.
func WithCoinbaseId(id TxId) CoinbaseOption {
	return func(o *coinbaseOptions) { o.id = &id }
}

// NewCoinbaseTx validates and constructs a minting transaction.
// outputs must be non-empty with pairwise-distinct ids.
func NewCoinbaseTx(outputs []Output, opts ...CoinbaseOption) (*CoinbaseTx, error) {
	if len(outputs) == 0 {
		return nil, ErrEmptyOutputs()
	}

	seen := make(map[OutputId]struct{}, len(outputs))
	for _, o := range outputs {
		if _, dup := seen[o.ID]; dup {
			return nil, ErrDuplicateOutputID(o.ID)
		}
		seen[o.ID] = struct{}{}
	}

	options := coinbaseOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	id := DeriveCoinbaseId(outputs)
	if options.id != nil {
		id = *options.id
	}
	if err := validateIDValue(string(id)); err != nil {
		return nil, err
	}

	return &CoinbaseTx{
		ID:      id,
		Outputs: append([]Output(nil), outputs...),
	}, nil
}

// TotalOutputAmount sums every output's amount.
func (cb *CoinbaseTx) TotalOutputAmount() Amount {
	var total Amount
	for _, o := range cb.Outputs {
		total += o.Amount
	}
	return total
}
