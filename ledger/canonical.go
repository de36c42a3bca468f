package ledger

import (
	"bytes"
	"encoding/binary"
	"sort"
)

// canonical.go implements the stable byte encoding content addressing
// relies on (spec §4.1: "The encoding MUST be stable across
// implementations so the same inputs produce the same id anywhere").
// gob (the teacher's serialization choice) is explicitly not used here
// — see DESIGN.md — because its wire format isn't guaranteed stable
// across Go versions, let alone other languages.

func writeUint64(buf *bytes.Buffer, v uint64) {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	buf.Write(tmp[:])
}

func writeBytes(buf *bytes.Buffer, b []byte) {
	writeUint64(buf, uint64(len(b)))
	buf.Write(b)
}

func writeString(buf *bytes.Buffer, s string) {
	writeBytes(buf, []byte(s))
}

// canonicalLockBytes encodes a Lock's data-tree deterministically: the
// type tag, then its fields sorted by key so map iteration order never
// affects the hash.
func canonicalLockBytes(l Lock) []byte {
	data := l.Encode()
	var buf bytes.Buffer
	writeString(&buf, data.Type)

	keys := make([]string, 0, len(data.Fields))
	for k := range data.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	writeUint64(&buf, uint64(len(keys)))
	for _, k := range keys {
		writeString(&buf, k)
		writeString(&buf, canonicalScalar(data.Fields[k]))
	}
	return buf.Bytes()
}

// canonicalScalar renders a lock field value as a string. Built-in
// locks only ever put strings in Fields; custom locks are expected to
// do the same so their encoding stays stable.
func canonicalScalar(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func canonicalOutputBytes(buf *bytes.Buffer, o Output) {
	writeString(buf, string(o.ID))
	writeUint64(buf, uint64(o.Amount))
	buf.Write(canonicalLockBytes(o.Lock))
}
