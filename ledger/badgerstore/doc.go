// Package badgerstore is the externally backed HistoryRepository
// (spec §4.6, §1 "the store-backed variant that delegates history
// queries to an external key/value surface while keeping only unspent
// outputs resident"). It is grounded on the teacher's badger usage in
// blockchain/utxo.go and blockchain/blockchain.go: prefix-scoped keys
// inside a single *badger.DB, db.View/db.Update transactions, and a
// retrying Open.
//
// Persistence layout hint (spec §6): the spec sketches a tabular
// layout (ledgers / outputs / transactions tables). Badger is a KV
// store, not tabular, so that layout is realized here as five key
// prefixes scoped by ledger id instead of three tables:
//
//	<ledgerID>|cby|<outputID>  -> creating tx id ("genesis" or a TxId)
//	<ledgerID>|sby|<outputID>  -> spending tx id
//	<ledgerID>|sout|<outputID> -> JSON {amount, lock} snapshot at spend time
//	<ledgerID>|fee|<txID>      -> big-endian uint64 fee
//	<ledgerID>|cb|<txID>       -> big-endian uint64 coinbase amount (presence = IsCoinbase)
//
// One *badger.DB can back multiple independent ledgers by giving each
// a distinct ledgerID.
package badgerstore
