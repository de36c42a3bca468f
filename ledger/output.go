package ledger

import "crypto/ed25519"

// Output is a single chunk of value: an id, a strictly positive
// amount, and the lock that authorizes spending it (spec §3).
// Equality is structural; once produced it is never mutated.
type Output struct {
	ID     OutputId
	Amount Amount
	Lock   Lock
}

func resolveOutputId(id *OutputId) (OutputId, error) {
	if id == nil {
		return DeriveRandomOutputId(), nil
	}
	return *id, nil
}

// OpenOutput builds an Output anyone can spend. If id is nil a random
// id is generated (spec §4.3).
func OpenOutput(amount int64, id *OutputId) (Output, error) {
	return newOutput(amount, id, Open())
}

// OwnedByOutput builds an Output only a Tx signed by name can spend.
func OwnedByOutput(name string, amount int64, id *OutputId) (Output, error) {
	lock, err := OwnedBy(name)
	if err != nil {
		return Output{}, err
	}
	return newOutput(amount, id, lock)
}

// SignedByOutput builds an Output guarded by a base64-encoded ed25519
// public key.
func SignedByOutput(pubKeyB64 string, amount int64, id *OutputId) (Output, error) {
	lock, err := SignedByBase64(pubKeyB64)
	if err != nil {
		return Output{}, err
	}
	return newOutput(amount, id, lock)
}

// SignedByKeyOutput is SignedByOutput for a raw ed25519 public key.
func SignedByKeyOutput(pub ed25519.PublicKey, amount int64, id *OutputId) (Output, error) {
	lock, err := SignedByKey(pub)
	if err != nil {
		return Output{}, err
	}
	return newOutput(amount, id, lock)
}

// LockedWithOutput builds an Output guarded by an arbitrary Lock
// (built-in or custom).
func LockedWithOutput(lock Lock, amount int64, id *OutputId) (Output, error) {
	return newOutput(amount, id, lock)
}

func newOutput(amount int64, id *OutputId, lock Lock) (Output, error) {
	amt, err := NewPositiveAmount(amount)
	if err != nil {
		return Output{}, err
	}
	if amt > MaxAmount {
		return Output{}, ErrInvalidAmount(amount)
	}
	outID, err := resolveOutputId(id)
	if err != nil {
		return Output{}, err
	}
	if err := validateIDValue(string(outID)); err != nil {
		return Output{}, err
	}
	return Output{ID: outID, Amount: amt, Lock: lock}, nil
}
