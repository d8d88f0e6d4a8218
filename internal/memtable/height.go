package memtable

import "github.com/crestdb/crestdb/internal/rng"

// DefaultMaxHeight is the structural cap on the number of levels (spec.md
// §4.4), matching RocksDB's default.
const DefaultMaxHeight = 7

// DefaultBranching is the default branching factor B: on average 1/B of
// the nodes at level ℓ are promoted to level ℓ+1.
const DefaultBranching = 4

// heightSampler draws a geometric height in [1, MaxHeight] with branching
// factor B: P(height >= k) = B^(1-k). It reads from an injected
// rng.Source rather than a package-level random generator so that tests
// can be deterministic (spec.md Design Notes: "thread-local randomness ...
// provide it as an injected capability").
type heightSampler struct {
	maxHeight int
	// scaledInvBranching approximates 1/B scaled to the uint32 range, so
	// a single Uint32 draw can be compared directly instead of computing
	// a float each call.
	scaledInvBranching uint32
	source             rng.Source
}

func newHeightSampler(maxHeight, branching int, source rng.Source) *heightSampler {
	return &heightSampler{
		maxHeight:          maxHeight,
		scaledInvBranching: uint32(0xFFFFFFFF) / uint32(branching),
		source:             source,
	}
}

// sample draws a height. Start at 1; while a uniform draw falls in the
// bottom 1/B of its range and height < MaxHeight, increment.
func (h *heightSampler) sample() int {
	height := 1
	for height < h.maxHeight && h.source.Uint32() < h.scaledInvBranching {
		height++
	}
	return height
}
