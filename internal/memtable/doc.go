// Package memtable implements the ordered, in-memory associative index
// described for a memtable-style front of a key-value storage engine: a
// probabilistic multi-level linked structure (skip list) with an
// insertion fast path, a lock-free concurrent read protocol, arena-backed
// node allocation, and three experimental accelerator side-indexes (an
// unbalanced BST, a red-black tree, and a bucketed key-compaction
// variant) that seed the main search from a closer starting point.
//
// Concurrency discipline: single writer, many readers. Every mutating
// method requires the caller to hold an external lock; every read method
// (Contains*, the Iterator, EstimateCountLessThan, EstimateMax) is
// wait-free and safe to call concurrently with a single in-progress
// writer, per the release/acquire protocol documented on SkipList.Insert.
//
// Reference: RocksDB v10.7.5 memtable/skiplist.h.
package memtable
