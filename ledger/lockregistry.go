package ledger

import "sync"

// LockDeserializer turns a LockData data-tree back into a Lock. User
// code registers one per custom type tag via RegisterLock.
type LockDeserializer func(LockData) (Lock, error)

var (
	registryMu sync.RWMutex
	registry   map[string]LockDeserializer
)

func init() {
	registry = defaultRegistry()
}

func defaultRegistry() map[string]LockDeserializer {
	return map[string]LockDeserializer{
		lockTagOpen: func(LockData) (Lock, error) {
			return Open(), nil
		},
		lockTagOwner: func(d LockData) (Lock, error) {
			name, _ := d.Fields["name"].(string)
			return OwnedBy(name)
		},
		lockTagPubkey: func(d LockData) (Lock, error) {
			key, _ := d.Fields["key"].(string)
			return SignedByBase64(key)
		},
	}
}

// RegisterLock installs (or overrides) the deserializer for a type
// tag. Overriding one of the reserved tags ("none", "owner", "pubkey")
// is permitted and takes precedence over the built-in, per spec §4.2.
func RegisterLock(tag string, fn LockDeserializer) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[tag] = fn
}

// HasLock reports whether a deserializer is registered for tag.
func HasLock(tag string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[tag]
	return ok
}

// ListLocks returns every registered type tag, in no particular
// order.
func ListLocks() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	tags := make([]string, 0, len(registry))
	for tag := range registry {
		tags = append(tags, tag)
	}
	return tags
}

// ResetLockRegistry restores the registry to just the three built-in
// variants, discarding any custom registrations. Tests should call
// this in a cleanup so one test's custom lock doesn't leak into the
// next (spec §5, "Shared state").
func ResetLockRegistry() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = defaultRegistry()
}

// DecodeLock restores a Lock from its data-tree encoding, routing on
// the registered type tag. Exported so HistoryRepository backends
// outside this package (e.g. ledger/badgerstore) can decode a lock
// they've persisted in LockData form.
func DecodeLock(data LockData) (Lock, error) {
	return decodeLock(data)
}

// decodeLock is the unexported implementation DecodeLock and
// serialize.go both call.
func decodeLock(data LockData) (Lock, error) {
	registryMu.RLock()
	fn, ok := registry[data.Type]
	registryMu.RUnlock()
	if !ok {
		return nil, ErrUnknownLockType(data.Type)
	}
	return fn(data)
}
