package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type alwaysDenyLock struct{ reason string }

func (l alwaysDenyLock) Validate(*Tx, int) error { return ErrCustomDenied("deny-all", l.reason) }
func (l alwaysDenyLock) Encode() LockData {
	return LockData{Type: "deny-all", Fields: map[string]any{"reason": l.reason}}
}

func TestRegisterLockRoundTrips(t *testing.T) {
	t.Cleanup(ResetLockRegistry)

	RegisterLock("deny-all", func(d LockData) (Lock, error) {
		reason, _ := d.Fields["reason"].(string)
		return alwaysDenyLock{reason: reason}, nil
	})

	assert.True(t, HasLock("deny-all"))
	assert.Contains(t, ListLocks(), "deny-all")

	lock := alwaysDenyLock{reason: "nope"}
	restored, err := DecodeLock(lock.Encode())
	require.NoError(t, err)
	assert.Equal(t, lock, restored)
}

func TestResetLockRegistryDiscardsCustomTags(t *testing.T) {
	RegisterLock("temp", func(LockData) (Lock, error) { return Open(), nil })
	require.True(t, HasLock("temp"))

	ResetLockRegistry()

	assert.False(t, HasLock("temp"))
	assert.True(t, HasLock("none"))
	assert.True(t, HasLock("owner"))
	assert.True(t, HasLock("pubkey"))
}

func TestDecodeLockUnknownTag(t *testing.T) {
	t.Cleanup(ResetLockRegistry)
	_, err := DecodeLock(LockData{Type: "nonexistent"})
	require.Error(t, err)
	assert.Equal(t, KindUnknownLockType, err.(*Error).Kind())
}

func TestDecodeLockBuiltins(t *testing.T) {
	lock, err := DecodeLock(LockData{Type: lockTagOpen})
	require.NoError(t, err)
	assert.Equal(t, Open(), lock)

	owner, err := OwnedBy("alice")
	require.NoError(t, err)
	restored, err := DecodeLock(owner.Encode())
	require.NoError(t, err)
	assert.Equal(t, owner, restored)
}
