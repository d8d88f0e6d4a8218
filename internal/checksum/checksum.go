// Package checksum provides the entry-blob integrity check used by
// internal/memtable.MemTable.
//
// The teacher package this one replaces declared github.com/zeebo/xxh3
// in go.mod but never imported it, hand-rolling CRC32C/XXHash/XXH3
// instead; this package drops the reimplementation and calls the real
// library, since an entry-blob checksum has no wire-compatibility
// requirement with any existing format that would justify a bespoke
// implementation.
package checksum

import "github.com/zeebo/xxh3"

// Type identifies the checksum algorithm tagging an entry blob.
type Type uint8

const (
	// TypeNoChecksum disables the check (used by tests that want raw
	// entry bytes without a trailing checksum field).
	TypeNoChecksum Type = 0
	// TypeXXH3 is the default and only implemented algorithm.
	TypeXXH3 Type = 1
)

// String returns a human-readable name for t.
func (t Type) String() string {
	switch t {
	case TypeNoChecksum:
		return "NoChecksum"
	case TypeXXH3:
		return "XXH3"
	default:
		return "Unknown"
	}
}

// Compute returns the checksum of data under t. TypeNoChecksum always
// returns 0.
func Compute(t Type, data []byte) uint64 {
	switch t {
	case TypeXXH3:
		return xxh3.Hash(data)
	default:
		return 0
	}
}

// Verify reports whether want matches the checksum of data under t.
// TypeNoChecksum always verifies.
func Verify(t Type, data []byte, want uint64) bool {
	if t == TypeNoChecksum {
		return true
	}
	return Compute(t, data) == want
}
