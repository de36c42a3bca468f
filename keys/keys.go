// Package keys provides ed25519 keypair generation and a short,
// checksummed, human-readable rendering of a public key, for use in
// diagnostics and logs around PublicKey locks. It carries none of the
// ledger's domain semantics — it never participates in id derivation,
// equality, or persistence (see SPEC_FULL.md §4.2).
//
// Grounded on the teacher's wallet package (wallet/wallet.go,
// wallet/utils.go), which builds a Bitcoin-style address from an
// ECDSA public key via SHA-256 -> RIPEMD-160 -> version byte ->
// checksum -> base58. This package runs the same pipeline over a raw
// ed25519 public key instead.
package keys

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/ripemd160"
)

const (
	checksumLength = 4
	version        = byte(0x00)
)

// KeyPair is a freshly generated ed25519 signing key.
type KeyPair struct {
	PublicKey  ed25519.PublicKey
	PrivateKey ed25519.PrivateKey
}

// Generate creates a new ed25519 keypair using a cryptographically
// secure random source.
func Generate() (KeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return KeyPair{}, err
	}
	return KeyPair{PublicKey: pub, PrivateKey: priv}, nil
}

// Sign produces a detached signature over message using the keypair's
// private key.
func (kp KeyPair) Sign(message []byte) []byte {
	return ed25519.Sign(kp.PrivateKey, message)
}

// Hash160 is SHA-256 followed by RIPEMD-160, the same "hash160" step
// the teacher's wallet uses to shrink a public key before encoding it.
func Hash160(data []byte) []byte {
	sum := sha256.Sum256(data)
	hasher := ripemd160.New()
	hasher.Write(sum[:])
	return hasher.Sum(nil)
}

// Checksum is the first 4 bytes of a double SHA-256, used to catch
// transcription errors in a Fingerprint string.
func Checksum(payload []byte) []byte {
	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])
	return second[:checksumLength]
}

// Fingerprint renders an ed25519 public key as a short, checksummed,
// base58 string: version byte + hash160(key) + checksum, base58
// encoded. It is lossy (you cannot recover the key from it) and is
// intended only for log lines and error messages, never for id
// derivation or persistence.
func Fingerprint(pub ed25519.PublicKey) string {
	versioned := append([]byte{version}, Hash160(pub)...)
	checksum := Checksum(versioned)
	full := append(versioned, checksum...)
	return base58.Encode(full)
}

// ValidateFingerprint reports whether a Fingerprint-produced string
// has an internally-consistent checksum, mirroring the teacher's
// ValidateAddress.
func ValidateFingerprint(fingerprint string) bool {
	decoded, err := base58.Decode(fingerprint)
	if err != nil {
		return false
	}
	if len(decoded) != 1+20+checksumLength {
		return false
	}
	payload := decoded[:1+20]
	actual := decoded[1+20:]
	return bytes.Equal(actual, Checksum(payload))
}
