package ledger

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// OutputId and TxId are validated opaque identifiers: non-empty,
// non-whitespace-only, at most 64 characters, drawn from
// [A-Za-z0-9_-] (spec §3).
type OutputId string
type TxId string

const maxIDLength = 64

func validateIDValue(value string) error {
	if strings.TrimSpace(value) == "" {
		return ErrInvalidID(value)
	}
	if len(value) > maxIDLength {
		return ErrInvalidID(value)
	}
	for _, r := range value {
		switch {
		case r >= 'A' && r <= 'Z':
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '_' || r == '-':
		default:
			return ErrInvalidID(value)
		}
	}
	return nil
}

// NewOutputId validates value and wraps it as an OutputId.
func NewOutputId(value string) (OutputId, error) {
	if err := validateIDValue(value); err != nil {
		return "", err
	}
	return OutputId(value), nil
}

// NewTxId validates value and wraps it as a TxId.
func NewTxId(value string) (TxId, error) {
	if err := validateIDValue(value); err != nil {
		return "", err
	}
	return TxId(value), nil
}

// GenesisMarker is the literal provenance value history repositories
// report for genesis outputs (spec §3, "createdBy(outputId) ... |
// 'genesis' | null").
const GenesisMarker TxId = "genesis"

// DeriveTxId hashes the canonical encoding of spends and outputs,
// truncates to 128 bits, and hex-encodes the result. SignedBy and
// Proofs never participate (spec §3, §4.4, P7).
func DeriveTxId(spends []OutputId, outputs []Output) TxId {
	var buf bytes.Buffer
	buf.WriteString("tx:")

	writeUint64(&buf, uint64(len(spends)))
	for _, id := range spends {
		writeString(&buf, string(id))
	}

	writeUint64(&buf, uint64(len(outputs)))
	for _, o := range outputs {
		canonicalOutputBytes(&buf, o)
	}

	return TxId(hashToHex(buf.Bytes()))
}

// DeriveCoinbaseId hashes the canonical encoding of outputs only, with
// a different domain separator than DeriveTxId so identical output
// sets never collide between a Tx and a CoinbaseTx (spec §4.1, P7).
func DeriveCoinbaseId(outputs []Output) TxId {
	var buf bytes.Buffer
	buf.WriteString("cb:")

	writeUint64(&buf, uint64(len(outputs)))
	for _, o := range outputs {
		canonicalOutputBytes(&buf, o)
	}

	return TxId(hashToHex(buf.Bytes()))
}

// DeriveRandomOutputId generates a fresh 32-character lowercase hex
// id from a cryptographically strong source (spec §4.1). The entropy
// comes from google/uuid's default generator, which reads
// crypto/rand.Reader under the hood.
func DeriveRandomOutputId() OutputId {
	u := uuid.New()
	return OutputId(hex.EncodeToString(u[:]))
}

func hashToHex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:16])
}
