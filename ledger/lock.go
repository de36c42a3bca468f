package ledger

import (
	"crypto/ed25519"
	"encoding/base64"
)

// Lock is a closed-then-open sum type: the built-in variants below are
// closed (only this package constructs them), while Custom locks are
// open to user extension through the registry in lockregistry.go.
//
// Validate reports whether the spend at tx.Spends[inputIndex] (whose
// output this Lock guards) is authorized. Encode produces the
// canonical data-tree form used by content addressing and by
// serialize.go.
type Lock interface {
	Validate(tx *Tx, inputIndex int) error
	Encode() LockData
}

// LockData is the data-tree encoding of a Lock (spec §4.8): a type
// tag plus the variant's own fields. Built-in variants use Fields for
// their single attribute ("name" or "key"; the open lock has none);
// custom variants may put whatever they need there.
type LockData struct {
	Type   string
	Fields map[string]any
}

const (
	lockTagOpen  = "none"
	lockTagOwner = "owner"
	lockTagPubkey = "pubkey"
)

// openLock authorizes any spender.
type openLock struct{}

// Open returns a lock that authorizes any spender.
func Open() Lock { return openLock{} }

func (openLock) Validate(*Tx, int) error { return nil }

func (openLock) Encode() LockData { return LockData{Type: lockTagOpen} }

// namedOwnerLock requires the spending tx to carry a matching
// SignedBy.
type namedOwnerLock struct {
	name string
}

// OwnedBy returns a lock that only a Tx signed by name can spend.
func OwnedBy(name string) (Lock, error) {
	if name == "" {
		return nil, ErrInvalidLockData("owner name must not be empty")
	}
	return namedOwnerLock{name: name}, nil
}

func (l namedOwnerLock) Validate(tx *Tx, _ int) error {
	if tx.SignedBy != l.name {
		return ErrNotOwner(l.name, tx.SignedBy)
	}
	return nil
}

func (l namedOwnerLock) Encode() LockData {
	return LockData{Type: lockTagOwner, Fields: map[string]any{"name": l.name}}
}

// publicKeyLock requires a detached ed25519 signature of the tx id at
// the matching input index.
type publicKeyLock struct {
	key    ed25519.PublicKey
	keyB64 string
}

// SignedByKey returns a lock guarded by an ed25519 public key supplied
// as raw bytes (must be exactly ed25519.PublicKeySize).
func SignedByKey(pub ed25519.PublicKey) (Lock, error) {
	if len(pub) != ed25519.PublicKeySize {
		return nil, ErrInvalidLockData("ed25519 public key must be 32 bytes")
	}
	cp := make(ed25519.PublicKey, len(pub))
	copy(cp, pub)
	return publicKeyLock{key: cp, keyB64: base64.StdEncoding.EncodeToString(cp)}, nil
}

// SignedByBase64 is SignedByKey for a base64-encoded 32-byte key, the
// form the lock is transported and serialized in (spec §3).
func SignedByBase64(keyB64 string) (Lock, error) {
	raw, err := base64.StdEncoding.DecodeString(keyB64)
	if err != nil {
		return nil, ErrInvalidLockData("key is not valid base64: " + err.Error())
	}
	return SignedByKey(ed25519.PublicKey(raw))
}

func (l publicKeyLock) Validate(tx *Tx, inputIndex int) error {
	if inputIndex < 0 || inputIndex >= len(tx.Proofs) || tx.Proofs[inputIndex] == nil {
		return ErrMissingProof(inputIndex)
	}
	proof := tx.Proofs[inputIndex]
	if !ed25519.Verify(l.key, []byte(string(tx.ID)), proof) {
		return ErrInvalidSignature(inputIndex)
	}
	return nil
}

func (l publicKeyLock) Encode() LockData {
	return LockData{Type: lockTagPubkey, Fields: map[string]any{"key": l.keyB64}}
}

// OwnerNameOf returns the name behind a NamedOwner lock, and false for
// any other lock variant. Used by UnspentSet.OwnedBy /
// TotalAmountOwnedBy to find "per-owner" subsets (spec §4.5).
func OwnerNameOf(l Lock) (string, bool) {
	owner, ok := l.(namedOwnerLock)
	if !ok {
		return "", false
	}
	return owner.name, true
}

// PublicKeyOf returns the ed25519 public key behind a PublicKey lock,
// and false for any other lock variant. Useful for diagnostics
// (keys.Fingerprint) without exposing the unexported lock types.
func PublicKeyOf(l Lock) (ed25519.PublicKey, bool) {
	pk, ok := l.(publicKeyLock)
	if !ok {
		return nil, false
	}
	return pk.key, true
}
