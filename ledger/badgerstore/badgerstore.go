package badgerstore

import (
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"

	"github.com/golang-blockchain/unspent/ledger"
)

const (
	prefixCreatedBy   = "cby"
	prefixSpentBy     = "sby"
	prefixSpentOutput = "sout"
	prefixFee         = "fee"
	prefixCoinbase    = "cb"
)

// History is a ledger.HistoryRepository backed by a *badger.DB,
// scoped to one ledger id so several ledgers can share one database.
type History struct {
	db       *badger.DB
	ledgerID string
}

// New wraps an already-open *badger.DB as a HistoryRepository for
// ledgerID. The caller owns db's lifecycle (open/close); this mirrors
// the teacher's BlockChain, which never closes the *badger.DB it was
// handed either.
func New(db *badger.DB, ledgerID string) *History {
	return &History{db: db, ledgerID: ledgerID}
}

// Open opens (or creates) a badger database at dir for ledgerID,
// retrying once after clearing a stale LOCK file, mirroring the
// teacher's openDB/retry pair in blockchain/blockchain.go.
func Open(dir, ledgerID string) (*History, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := openWithRetry(dir, opts)
	if err != nil {
		return nil, wrapErr("opening badger database at "+dir, err)
	}
	return New(db, ledgerID), nil
}

func openWithRetry(dir string, opts badger.Options) (*badger.DB, error) {
	db, err := badger.Open(opts)
	if err == nil {
		return db, nil
	}
	if !strings.Contains(err.Error(), "LOCK") {
		return nil, err
	}
	if rmErr := os.Remove(filepath.Join(dir, "LOCK")); rmErr != nil {
		return nil, err
	}
	return badger.Open(opts)
}

func (h *History) key(kind, id string) []byte {
	return []byte(h.ledgerID + "|" + kind + "|" + id)
}

func (h *History) prefix(kind string) []byte {
	return []byte(h.ledgerID + "|" + kind + "|")
}

func encodeUint64(v uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	return buf[:]
}

func decodeUint64(b []byte) uint64 {
	return binary.BigEndian.Uint64(b)
}

func wrapErr(reason string, err error) error {
	return ledger.ErrPersistence(reason, errors.WithStack(err))
}

func (h *History) SaveGenesis(outputs []ledger.Output) error {
	err := h.db.Update(func(txn *badger.Txn) error {
		for _, o := range outputs {
			if err := txn.Set(h.key(prefixCreatedBy, string(o.ID)), []byte(ledger.GenesisMarker)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return wrapErr("saving genesis outputs", err)
	}
	return nil
}

func (h *History) SaveTransaction(tx *ledger.Tx, fee ledger.Amount, spentOutputs map[ledger.OutputId]ledger.SpentOutputData) error {
	err := h.db.Update(func(txn *badger.Txn) error {
		for id, data := range spentOutputs {
			if err := txn.Set(h.key(prefixSpentBy, string(id)), []byte(tx.ID)); err != nil {
				return err
			}
			rec := ledger.OutputRecord{Amount: uint64(data.Amount), Lock: data.Lock.Encode()}
			b, err := json.Marshal(rec)
			if err != nil {
				return err
			}
			if err := txn.Set(h.key(prefixSpentOutput, string(id)), b); err != nil {
				return err
			}
		}
		for _, o := range tx.Outputs {
			if err := txn.Set(h.key(prefixCreatedBy, string(o.ID)), []byte(tx.ID)); err != nil {
				return err
			}
		}
		return txn.Set(h.key(prefixFee, string(tx.ID)), encodeUint64(uint64(fee)))
	})
	if err != nil {
		return wrapErr("saving applied transaction", err)
	}
	return nil
}

func (h *History) SaveCoinbase(cb *ledger.CoinbaseTx) error {
	err := h.db.Update(func(txn *badger.Txn) error {
		for _, o := range cb.Outputs {
			if err := txn.Set(h.key(prefixCreatedBy, string(o.ID)), []byte(cb.ID)); err != nil {
				return err
			}
		}
		return txn.Set(h.key(prefixCoinbase, string(cb.ID)), encodeUint64(uint64(cb.TotalOutputAmount())))
	})
	if err != nil {
		return wrapErr("saving applied coinbase", err)
	}
	return nil
}

func (h *History) getString(kind, id string) (string, bool, error) {
	var value string
	err := h.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(h.key(kind, id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			value = string(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, wrapErr("reading "+kind+" for "+id, err)
	}
	return value, true, nil
}

func (h *History) getUint64(kind, id string) (uint64, bool, error) {
	var value uint64
	err := h.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(h.key(kind, id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			value = decodeUint64(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, wrapErr("reading "+kind+" for "+id, err)
	}
	return value, true, nil
}

func (h *History) FindOutputCreatedBy(id ledger.OutputId) (ledger.TxId, bool, error) {
	v, ok, err := h.getString(prefixCreatedBy, string(id))
	return ledger.TxId(v), ok, err
}

func (h *History) FindOutputSpentBy(id ledger.OutputId) (ledger.TxId, bool, error) {
	v, ok, err := h.getString(prefixSpentBy, string(id))
	return ledger.TxId(v), ok, err
}

func (h *History) FindSpentOutput(id ledger.OutputId) (ledger.Output, bool, error) {
	var rec ledger.OutputRecord
	var found bool
	err := h.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(h.key(prefixSpentOutput, string(id)))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if err != nil {
		return ledger.Output{}, false, wrapErr("reading spent output "+string(id), err)
	}
	if !found {
		return ledger.Output{}, false, nil
	}
	lock, err := ledger.DecodeLock(rec.Lock)
	if err != nil {
		return ledger.Output{}, false, err
	}
	return ledger.Output{ID: id, Amount: ledger.Amount(rec.Amount), Lock: lock}, true, nil
}

func (h *History) FindOutputHistory(id ledger.OutputId) (ledger.OutputHistory, bool, error) {
	createdBy, ok, err := h.FindOutputCreatedBy(id)
	if err != nil {
		return ledger.OutputHistory{}, false, err
	}
	if !ok {
		return ledger.OutputHistory{}, false, nil
	}

	spentBy, spent, err := h.FindOutputSpentBy(id)
	if err != nil {
		return ledger.OutputHistory{}, false, err
	}

	hist := ledger.OutputHistory{ID: id, CreatedBy: createdBy, Status: ledger.StatusUnspent}
	if spent {
		hist.SpentBy = spentBy
		hist.Status = ledger.StatusSpent
		out, ok, err := h.FindSpentOutput(id)
		if err != nil {
			return ledger.OutputHistory{}, false, err
		}
		if ok {
			hist.Amount = out.Amount
			hist.Lock = out.Lock
		}
	}
	return hist, true, nil
}

func (h *History) FindFeeForTx(id ledger.TxId) (ledger.Amount, bool, error) {
	v, ok, err := h.getUint64(prefixFee, string(id))
	return ledger.Amount(v), ok, err
}

// FindAllTxFees returns an empty map (spec §4.6, §9 Open Question:
// "MAY return an empty mapping when the backend does not support
// efficient full scans"). Badger has no secondary index on the fee
// prefix; use FindAllTxFeesSlow for a full scan when you actually need
// one (tests, offline audits).
func (h *History) FindAllTxFees() (map[ledger.TxId]ledger.Amount, error) {
	return map[ledger.TxId]ledger.Amount{}, nil
}

// FindAllTxFeesSlow performs the full prefix scan FindAllTxFees
// deliberately avoids, for callers that need completeness rather than
// speed.
func (h *History) FindAllTxFeesSlow() (map[ledger.TxId]ledger.Amount, error) {
	out := map[ledger.TxId]ledger.Amount{}
	prefix := h.prefix(prefixFee)
	err := h.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			txID := ledger.TxId(item.Key()[len(prefix):])
			err := item.Value(func(val []byte) error {
				out[txID] = ledger.Amount(decodeUint64(val))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, wrapErr("scanning tx fees", err)
	}
	return out, nil
}

func (h *History) IsCoinbase(id ledger.TxId) (bool, error) {
	_, ok, err := h.getUint64(prefixCoinbase, string(id))
	return ok, err
}

func (h *History) FindCoinbaseAmount(id ledger.TxId) (ledger.Amount, bool, error) {
	v, ok, err := h.getUint64(prefixCoinbase, string(id))
	return ledger.Amount(v), ok, err
}
