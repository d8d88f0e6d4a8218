// Package rng provides the injected, thread-local uniform integer source
// that the skip list's height sampler (internal/memtable) draws from.
//
// A shared *rand.Rand is not safe for concurrent use and a single global
// source serializes every insert across goroutines that share a storage
// engine. Each writer instead gets its own Source, matching the teacher's
// sync.Pool-per-goroutine pattern in internal/mempool but for a
// non-poolable, long-lived generator instead of short-lived buffers.
package rng

import (
	"math/rand/v2"
	"sync"
)

// Source draws a uniformly distributed uint32. Implementations need not be
// safe for concurrent use — the skip list's single-writer discipline means
// a Source is only ever touched by the goroutine that owns it.
type Source interface {
	Uint32() uint32
}

// randSource wraps math/rand/v2's PCG generator, which is safe to own
// per-goroutine and has no global-lock contention the way math/rand's
// package-level functions do.
type randSource struct {
	r *rand.Rand
}

// New returns a Source seeded from a cryptographically-uninteresting but
// well-distributed seed pair. Use NewSeeded for deterministic tests.
func New() Source {
	return &randSource{r: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// NewSeeded returns a Source with a fixed seed, for reproducible tests
// (e.g. the height-distribution property in spec.md §8).
func NewSeeded(seed1, seed2 uint64) Source {
	return &randSource{r: rand.New(rand.NewPCG(seed1, seed2))}
}

func (s *randSource) Uint32() uint32 {
	return s.r.Uint32()
}

// pool hands out a fresh Source per goroutine on first use and reuses it on
// subsequent calls from the same goroutine-local slot, avoiding the
// allocation of a new generator per writer construction when an embedding
// engine opens many short-lived memtables.
var pool = sync.Pool{
	New: func() any { return New() },
}

// Get borrows a Source from the pool. Put returns it when the owning
// memtable is discarded. This is an optimization, not a correctness
// requirement — New() is always safe to call directly instead.
func Get() Source {
	return pool.Get().(Source)
}

// Put returns a Source to the pool for reuse.
func Put(s Source) {
	pool.Put(s)
}
