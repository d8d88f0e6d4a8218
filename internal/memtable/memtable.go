package memtable

import (
	"bytes"

	"github.com/crestdb/crestdb/internal/checksum"
	"github.com/crestdb/crestdb/internal/compression"
	"github.com/crestdb/crestdb/internal/encoding"
	"github.com/crestdb/crestdb/internal/logging"
	"github.com/crestdb/crestdb/internal/mempool"
)

// DefaultCompressionThreshold is the value size, in bytes, at or above
// which MemTable.Put transparently compresses the value before framing
// it into an entry blob, when MemTableOptions.CompressionType selects an
// algorithm.
const DefaultCompressionThreshold = 256

// entry format stored as the SkipList's key (spec.md's Key type is
// opaque — this is the one concrete instantiation this package
// provides):
//
//	key_len           : varint32
//	key               : key_len bytes
//	compression_type  : 1 byte  (compression.Type)
//	uncompressed_len  : varint32
//	value_len         : varint32 (length of the, possibly compressed, stored value)
//	value             : value_len bytes
//	checksum          : fixed64  (checksum.Compute over key_len..value)
//
// Grounded on the teacher's memtable.go entry-format doc comment
// (length-prefixed key/value framing) but without the RocksDB
// internal-key/sequence-number machinery, since MemTable has no
// multi-version or deletion model to encode.

// entryComparator orders entry blobs by their key_len+key prefix only,
// via bytes.Compare, ignoring everything that follows. This lets a probe
// blob built by encodeProbe (key only, no value/checksum) compare equal
// to a fully-framed stored blob sharing the same key — Get and Put's
// duplicate check both rely on this.
func entryComparator(a, b []byte) int {
	ak, _, _ := encoding.DecodeLengthPrefixedSlice(a)
	bk, _, _ := encoding.DecodeLengthPrefixedSlice(b)
	return bytes.Compare(ak, bk)
}

// MemTable is an additive, caller-facing wrapper around SkipList[[]byte]
// that stores an opaque value alongside each key, with entry-blob
// integrity checking and optional compression. It adds no deletion,
// rebalancing, or persistence: every Non-goal in spec.md §4's "core"
// still holds — this is a convenience layer over the same
// single-writer/many-reader index.
type MemTable struct {
	sl                   *SkipList[[]byte]
	pool                 *mempool.Pool
	checksumType         checksum.Type
	compressionType      compression.Type
	compressionThreshold int
	logger               logging.Logger
}

// MemTableOptions configures a MemTable. The zero value is usable: it
// selects XXH3 checksums, no compression, and a discarding logger.
type MemTableOptions struct {
	Options[[]byte]

	// ChecksumType tags every entry blob; defaults to checksum.TypeXXH3.
	ChecksumType checksum.Type

	// CompressionType is applied to values at or above
	// CompressionThreshold. The zero value, compression.NoCompression,
	// disables compression entirely.
	CompressionType compression.Type

	// CompressionThreshold defaults to DefaultCompressionThreshold.
	CompressionThreshold int

	// Pool supplies scratch buffers for blob assembly; a fresh
	// mempool.Pool is created if nil.
	Pool *mempool.Pool
}

// NewMemTable constructs a MemTable over a fresh bytewise-ordered
// SkipList.
func NewMemTable(opts MemTableOptions) (*MemTable, error) {
	// entryComparator is the only comparator that makes sense over
	// framed entry blobs; any caller-supplied Comparator is ignored.
	opts.Options.Comparator = entryComparator
	sl, err := New(opts.Options)
	if err != nil {
		return nil, err
	}

	if opts.ChecksumType == 0 {
		opts.ChecksumType = checksum.TypeXXH3
	}
	if opts.CompressionThreshold == 0 {
		opts.CompressionThreshold = DefaultCompressionThreshold
	}
	if opts.Pool == nil {
		opts.Pool = mempool.NewPool()
	}
	logger := opts.Options.Logger
	if logger == nil {
		logger = logging.Discard
	}

	return &MemTable{
		sl:                   sl,
		pool:                 opts.Pool,
		checksumType:         opts.ChecksumType,
		compressionType:      opts.CompressionType,
		compressionThreshold: opts.CompressionThreshold,
		logger:               logger,
	}, nil
}

// Put inserts key/value as a single entry blob.
//
// REQUIRES: the caller holds the external write lock (same requirement
// as SkipList.Insert).
//
// Returns *ListError if key is already present — MemTable has no update
// or overwrite path, matching the core's "no deletion/rebalancing"
// Non-goal.
func (mt *MemTable) Put(key, value []byte) (err error) {
	blob, err := mt.encode(key, value)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			if le, ok := r.(*ListError); ok {
				err = le
				return
			}
			panic(r)
		}
	}()
	mt.sl.Insert(blob)
	return nil
}

// Get looks up key and returns its value, decompressing and verifying
// its checksum first.
func (mt *MemTable) Get(key []byte) ([]byte, bool, error) {
	probe := encodeProbe(key)
	x := mt.sl.findGreaterOrEqual(probe)
	if x == nil || entryComparator(x.key, probe) != 0 {
		return nil, false, nil
	}
	value, err := mt.decode(x.key)
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// Contains reports whether key is present, without paying for
// decompression or checksum verification.
func (mt *MemTable) Contains(key []byte) bool {
	probe := encodeProbe(key)
	return mt.sl.Contains(probe)
}

// Count returns the number of entries inserted so far.
func (mt *MemTable) Count() int64 {
	return mt.sl.Count()
}

// Close releases resources the MemTable's underlying SkipList borrowed,
// including returning a pooled height-sampler RNG (see SkipList.Close).
func (mt *MemTable) Close() {
	mt.sl.Close()
}

// NewIterator returns an iterator over the raw entry blobs. Callers
// wanting decoded values should use MemTable.Get after seeking, or use
// DecodeValue on It.Key().
func (mt *MemTable) NewIterator() *Iterator[[]byte] {
	return mt.sl.NewIterator()
}

// DecodeValue decodes the value out of a raw entry blob returned by an
// Iterator over this MemTable.
func (mt *MemTable) DecodeValue(blob []byte) ([]byte, error) {
	return mt.decode(blob)
}

// encodeProbe builds a minimal blob carrying only a key, sufficient for
// entryComparator to match against any fully-framed stored blob sharing
// that key.
func encodeProbe(key []byte) []byte {
	return encoding.AppendLengthPrefixedSlice(nil, key)
}

func (mt *MemTable) encode(key, value []byte) ([]byte, error) {
	compType := compression.NoCompression
	stored := value
	if mt.compressionType != compression.NoCompression && len(value) >= mt.compressionThreshold {
		compressed, err := compression.Compress(mt.compressionType, value)
		if err != nil {
			mt.logger.Warnf("%scompression failed, storing raw: %v", logging.NSMemTable, err)
		} else {
			compType = mt.compressionType
			stored = compressed
		}
	}

	buf := mt.pool.Get(len(key) + len(stored) + 32)
	buf = encoding.AppendLengthPrefixedSlice(buf, key)
	buf = append(buf, byte(compType))
	buf = encoding.AppendVarint32(buf, uint32(len(value)))
	buf = encoding.AppendLengthPrefixedSlice(buf, stored)

	sum := checksum.Compute(mt.checksumType, buf)
	blob := encoding.AppendFixed64(buf, sum)

	// blob now owns a copy distinct from the pooled buffer's backing
	// array only if append reallocated; since blob is handed to the
	// index for the lifetime of the entry, detach it from the pool.
	out := make([]byte, len(blob))
	copy(out, blob)
	mt.pool.Put(buf[:0])
	return out, nil
}

func (mt *MemTable) decode(blob []byte) ([]byte, error) {
	if len(blob) < 8 {
		return nil, newListError("MemTable.decode", "entry blob too short")
	}
	body := blob[:len(blob)-8]
	wantSum := encoding.DecodeFixed64(blob[len(blob)-8:])
	if !checksum.Verify(mt.checksumType, body, wantSum) {
		return nil, newListError("MemTable.decode", "checksum mismatch")
	}

	_, n, err := encoding.DecodeLengthPrefixedSlice(body)
	if err != nil {
		return nil, newListError("MemTable.decode", "corrupt key field: %v", err)
	}
	rest := body[n:]
	if len(rest) < 1 {
		return nil, newListError("MemTable.decode", "missing compression tag")
	}
	compType := compression.Type(rest[0])
	rest = rest[1:]

	uncompressedLen, n, err := encoding.DecodeVarint32(rest)
	if err != nil {
		return nil, newListError("MemTable.decode", "corrupt length field: %v", err)
	}
	rest = rest[n:]

	stored, _, err := encoding.DecodeLengthPrefixedSlice(rest)
	if err != nil {
		return nil, newListError("MemTable.decode", "corrupt value field: %v", err)
	}

	if compType == compression.NoCompression {
		value := make([]byte, len(stored))
		copy(value, stored)
		return value, nil
	}
	return compression.DecompressWithSize(compType, stored, int(uncompressedLen))
}
