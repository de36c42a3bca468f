package ledger

import "fmt"

// ErrorKind identifies one of the domain error variants a caller can
// switch on. Every error the core returns carries exactly one kind.
type ErrorKind int

const (
	// KindDuplicateOutputID means an output id collides with an
	// existing or sibling output.
	KindDuplicateOutputID ErrorKind = iota + 1
	// KindDuplicateTx means a tx (or coinbase) id is already applied.
	KindDuplicateTx
	// KindOutputAlreadySpent means a spend refers to an id that is
	// not in the unspent set (including "never existed").
	KindOutputAlreadySpent
	// KindInsufficientSpends means sum(outputs) > sum(inputs).
	KindInsufficientSpends
	// KindGenesisNotAllowed means addGenesis was called after the
	// ledger has already advanced.
	KindGenesisNotAllowed
	// KindNotOwner means a NamedOwner lock's name didn't match
	// tx.SignedBy.
	KindNotOwner
	// KindMissingProof means a PublicKey lock had no proof at its
	// input index.
	KindMissingProof
	// KindInvalidSignature means a PublicKey lock's proof did not
	// verify.
	KindInvalidSignature
	// KindCustomDenied means a custom lock's Validate rejected the
	// spend for a domain-specific reason.
	KindCustomDenied
	// KindPersistence means a backing HistoryRepository failed.
	KindPersistence
	// KindInvalidID means an OutputId/TxId failed construction-time
	// validation.
	KindInvalidID
	// KindInvalidAmount means an Amount failed construction-time
	// validation (zero for an output, or over MaxAmount).
	KindInvalidAmount
	// KindInvalidLockData means a lock's data-tree encoding couldn't
	// be decoded back into a Lock.
	KindInvalidLockData
	// KindUnknownLockType means FromArray encountered a lock type tag
	// with no registered deserializer.
	KindUnknownLockType
	// KindDuplicateSpendID means a Tx named the same OutputId twice
	// in its own Spends list (spec §4.4; a structural sibling of
	// KindDuplicateOutputID not separately enumerated in §7 but
	// required by §3/§4.4).
	KindDuplicateSpendID
	// KindInvalidTxStructure means a Tx or CoinbaseTx failed a
	// structural constraint from §3/§4.4 (e.g. zero spends or zero
	// outputs).
	KindInvalidTxStructure
)

// Error is the single domain-error type every core operation returns.
// Callers that want to discriminate should inspect Kind(); everything
// else can just treat it as a plain error.
type Error struct {
	kind    ErrorKind
	code    int
	message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Kind reports which domain error variant this is.
func (e *Error) Kind() ErrorKind { return e.kind }

// Code reports the stable numeric code for this error kind, suitable
// for wire protocols.
func (e *Error) Code() int { return e.code }

// Unwrap exposes the wrapped cause, if any, for errors.Is/As.
func (e *Error) Unwrap() error { return e.cause }

// Is lets errors.Is(err, ledger.ErrOutputAlreadySpent(...)) compare by
// kind rather than by the (id-specific) message.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return other.kind == e.kind
}

func newErr(kind ErrorKind, code int, format string, args ...any) *Error {
	return &Error{kind: kind, code: code, message: fmt.Sprintf(format, args...)}
}

func ErrDuplicateOutputID(id OutputId) *Error {
	return newErr(KindDuplicateOutputID, 1001, "output id %q already exists", string(id))
}

func ErrDuplicateTx(id TxId) *Error {
	return newErr(KindDuplicateTx, 1002, "tx id %q already applied", string(id))
}

func ErrOutputAlreadySpent(id OutputId) *Error {
	return newErr(KindOutputAlreadySpent, 1003, "output %q is not unspent", string(id))
}

func ErrInsufficientSpends(inSum, outSum Amount) *Error {
	return newErr(KindInsufficientSpends, 1004, "sum of outputs %d exceeds sum of inputs %d", outSum, inSum)
}

func ErrGenesisNotAllowed() *Error {
	return newErr(KindGenesisNotAllowed, 1005, "genesis is only allowed on an empty ledger")
}

func ErrNotOwner(lockName, signedBy string) *Error {
	return newErr(KindNotOwner, 1006, "lock owner %q does not match signedBy %q", lockName, signedBy)
}

func ErrMissingProof(inputIndex int) *Error {
	return newErr(KindMissingProof, 1007, "no proof supplied at input index %d", inputIndex)
}

func ErrInvalidSignature(inputIndex int) *Error {
	return newErr(KindInvalidSignature, 1008, "signature at input index %d does not verify", inputIndex)
}

func ErrCustomDenied(tag, reason string) *Error {
	return newErr(KindCustomDenied, 1009, "custom lock %q denied spend: %s", tag, reason)
}

func ErrPersistence(reason string, cause error) *Error {
	e := newErr(KindPersistence, 1010, "persistence failure: %s", reason)
	e.cause = cause
	return e
}

func ErrInvalidID(value string) *Error {
	return newErr(KindInvalidID, 1011, "invalid id %q", value)
}

func ErrInvalidAmount(value int64) *Error {
	return newErr(KindInvalidAmount, 1012, "invalid amount %d", value)
}

func ErrInvalidLockData(reason string) *Error {
	return newErr(KindInvalidLockData, 1013, "invalid lock data: %s", reason)
}

func ErrUnknownLockType(tag string) *Error {
	return newErr(KindUnknownLockType, 1014, "unknown lock type %q", tag)
}

func ErrDuplicateSpendID(id OutputId) *Error {
	return newErr(KindDuplicateSpendID, 1015, "spend id %q appears more than once", string(id))
}

func ErrEmptySpends() *Error {
	return newErr(KindInvalidTxStructure, 1016, "a tx requires at least one spend")
}

func ErrEmptyOutputs() *Error {
	return newErr(KindInvalidTxStructure, 1017, "a tx requires at least one output")
}

func ErrSpendAmongOutputs(id OutputId) *Error {
	return newErr(KindInvalidTxStructure, 1018, "id %q is both spent and produced by the same tx", string(id))
}
