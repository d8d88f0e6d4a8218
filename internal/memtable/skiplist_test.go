package memtable

import (
	"math/rand"
	"testing"

	"github.com/crestdb/crestdb/internal/rng"
)

func newUint64List(t *testing.T) *SkipList[uint64] {
	t.Helper()
	sl, err := New(Options[uint64]{
		Comparator: Uint64Comparator,
		RNG:        rng.NewSeeded(1, 2),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return sl
}

func TestSkipListEmpty(t *testing.T) {
	sl := newUint64List(t)

	if sl.Count() != 0 {
		t.Errorf("Count = %d, want 0", sl.Count())
	}
	if sl.Contains(42) {
		t.Error("empty list should not contain any key")
	}

	it := sl.NewIterator()
	it.SeekToFirst()
	if it.Valid() {
		t.Error("iterator should be invalid on empty list")
	}
	it.SeekToLast()
	if it.Valid() {
		t.Error("iterator should be invalid on empty list (SeekToLast)")
	}
}

func TestSkipListSingleInsert(t *testing.T) {
	sl := newUint64List(t)
	sl.Insert(7)

	if sl.Count() != 1 {
		t.Errorf("Count = %d, want 1", sl.Count())
	}
	if !sl.Contains(7) {
		t.Error("should contain 7")
	}
	if sl.Contains(8) {
		t.Error("should not contain 8")
	}
}

// TestSkipListSequentialAscending is scenario S1: a monotonically
// increasing run of inserts should hit the sequential fast path at
// every step and still produce a correctly ordered, fully-present list.
func TestSkipListSequentialAscending(t *testing.T) {
	sl := newUint64List(t)
	const n = 2000
	for i := uint64(0); i < n; i++ {
		sl.Insert(i)
	}
	if got := sl.Count(); got != n {
		t.Fatalf("Count = %d, want %d", got, n)
	}

	it := sl.NewIterator()
	it.SeekToFirst()
	var prev uint64
	var count uint64
	for it.Valid() {
		if count > 0 && it.Key() <= prev {
			t.Fatalf("order violated at index %d: %d <= %d", count, it.Key(), prev)
		}
		prev = it.Key()
		count++
		it.Next()
	}
	if count != n {
		t.Fatalf("iterated %d entries, want %d", count, n)
	}
}

func TestSkipListRandomInsertOrder(t *testing.T) {
	sl := newUint64List(t)
	r := rand.New(rand.NewSource(99))
	keys := r.Perm(5000)

	for _, k := range keys {
		sl.Insert(uint64(k))
	}
	if got := sl.Count(); got != int64(len(keys)) {
		t.Fatalf("Count = %d, want %d", got, len(keys))
	}
	for _, k := range keys {
		if !sl.Contains(uint64(k)) {
			t.Fatalf("missing key %d", k)
		}
	}
	if sl.Contains(uint64(len(keys) + 1000)) {
		t.Fatal("found a key that was never inserted")
	}
}

func TestSkipListInsertDuplicatePanics(t *testing.T) {
	sl := newUint64List(t)
	sl.Insert(5)

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected a panic on duplicate insert")
		}
		if _, ok := r.(*ListError); !ok {
			t.Fatalf("panic value = %#v, want *ListError", r)
		}
	}()
	sl.Insert(5)
}

// TestSkipListSparseSeek is scenario S2: seeking and SeekForPrev around
// gaps in a sparse key set.
func TestSkipListSparseSeek(t *testing.T) {
	sl := newUint64List(t)
	for _, k := range []uint64{10, 20, 30, 40, 50} {
		sl.Insert(k)
	}

	it := sl.NewIterator()

	it.Seek(25)
	if !it.Valid() || it.Key() != 30 {
		t.Fatalf("Seek(25) = %v, want 30", it.Key())
	}

	it.Seek(50)
	if !it.Valid() || it.Key() != 50 {
		t.Fatalf("Seek(50) = %v, want 50", it.Key())
	}

	it.Seek(51)
	if it.Valid() {
		t.Fatalf("Seek(51) should be invalid, got %v", it.Key())
	}

	it.SeekForPrev(25)
	if !it.Valid() || it.Key() != 20 {
		t.Fatalf("SeekForPrev(25) = %v, want 20", it.Key())
	}

	it.SeekForPrev(5)
	if it.Valid() {
		t.Fatalf("SeekForPrev(5) should be invalid, got %v", it.Key())
	}

	it.SeekForPrev(100)
	if !it.Valid() || it.Key() != 50 {
		t.Fatalf("SeekForPrev(100) = %v, want 50", it.Key())
	}
}

func TestSkipListIteratorPrev(t *testing.T) {
	sl := newUint64List(t)
	for _, k := range []uint64{1, 2, 3} {
		sl.Insert(k)
	}
	it := sl.NewIterator()
	it.SeekToLast()
	if !it.Valid() || it.Key() != 3 {
		t.Fatalf("SeekToLast = %v, want 3", it.Key())
	}
	it.Prev()
	if !it.Valid() || it.Key() != 2 {
		t.Fatalf("Prev = %v, want 2", it.Key())
	}
	it.Prev()
	if !it.Valid() || it.Key() != 1 {
		t.Fatalf("Prev = %v, want 1", it.Key())
	}
	it.Prev()
	if it.Valid() {
		t.Fatalf("Prev past the first entry should invalidate, got %v", it.Key())
	}
}

func TestEstimateMax(t *testing.T) {
	sl := newUint64List(t)
	if got := sl.EstimateMax(); got != 0 {
		t.Fatalf("EstimateMax on empty list = %d, want 0", got)
	}
	for i := uint64(0); i < 100; i++ {
		sl.Insert(i)
	}
	if got := sl.EstimateMax(); got != 100 {
		t.Fatalf("EstimateMax = %d, want 100", got)
	}
}

func TestEstimateCountLessThan(t *testing.T) {
	sl := newUint64List(t)
	for i := uint64(0); i < 1000; i++ {
		sl.Insert(i)
	}
	// EstimateCountLessThan is a rank estimate, not exact; it must at
	// least agree at the boundaries.
	if got := sl.EstimateCountLessThan(0); got != 0 {
		t.Fatalf("EstimateCountLessThan(0) = %d, want 0", got)
	}
	got := sl.EstimateCountLessThan(1000)
	if got < 900 || got > 1100 {
		t.Fatalf("EstimateCountLessThan(1000) = %d, want close to 1000", got)
	}
}

func TestHeightSamplerDistribution(t *testing.T) {
	sampler := newHeightSampler(DefaultMaxHeight, DefaultBranching, rng.NewSeeded(42, 7))
	counts := make(map[int]int)
	const draws = 20000
	for i := 0; i < draws; i++ {
		h := sampler.sample()
		if h < 1 || h > DefaultMaxHeight {
			t.Fatalf("sampled height %d out of [1, %d]", h, DefaultMaxHeight)
		}
		counts[h]++
	}
	// height 1 should dominate: roughly (1 - 1/B) of all draws.
	if counts[1] < draws/2 {
		t.Fatalf("height=1 count %d suspiciously low out of %d draws", counts[1], draws)
	}
}

// TestCloseReturnsPooledRNG checks that a list built without an explicit
// Options.RNG borrows from rng's pool and that Close returns it: the
// pool's next Get() call afterwards comes back non-nil and usable rather
// than allocating forever.
func TestCloseReturnsPooledRNG(t *testing.T) {
	sl, err := New(Options[uint64]{Comparator: Uint64Comparator})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	sl.Insert(uint64(1))
	sl.Close()

	s := rng.Get()
	defer rng.Put(s)
	if s.Uint32() == s.Uint32() && s.Uint32() == s.Uint32() {
		t.Fatalf("pooled source after Close looks degenerate (not advancing)")
	}
}

// TestCloseLeavesCallerOwnedRNGAlone checks that Close does not hand a
// caller-supplied Source to the pool.
func TestCloseLeavesCallerOwnedRNGAlone(t *testing.T) {
	owned := rng.NewSeeded(1, 2)
	sl, err := New(Options[uint64]{Comparator: Uint64Comparator, RNG: owned})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	sl.Insert(uint64(1))
	sl.Close()
	// owned is still usable; nothing asserts pool state here since a
	// caller-supplied Source never touches the pool either way.
	_ = owned.Uint32()
}
