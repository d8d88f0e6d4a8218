package memtable

import (
	"sync/atomic"
	"unsafe"

	"github.com/crestdb/crestdb/internal/arena"
	"github.com/crestdb/crestdb/internal/logging"
	"github.com/crestdb/crestdb/internal/rng"
)

// SkipList is the ordered, arena-backed, lock-free-for-reads index
// described in spec.md. Writes (Insert and the accelerator Insert*
// variants) require the caller to hold an external lock; every read
// method is wait-free and may run concurrently with at most one
// in-progress writer.
type SkipList[K any] struct {
	head      *node[K]
	maxHeight atomic.Int32 // 1 <= maxHeight <= maxHeightCfg; monotonically non-decreasing
	count     atomic.Int64

	cmp     Comparator[K]
	sampler *heightSampler
	arena   *arena.Arena
	logger  logging.Logger

	maxHeightCfg int
	branching    int

	// prev/prevHeight are writer-exclusive scratch caching the
	// predecessor chain of the most recent insertion, used to
	// accelerate sequential-append patterns (spec.md §3, §4.6).
	// prev[0] can only equal head before any insertion.
	prev       []*node[K]
	prevHeight int

	// treeRoot/rbRoot/rbLeaf back the C9/C10 accelerators (treeaccel.go,
	// rbaccel.go). treeRoot is nil until InsertTreeAccel indexes a node;
	// rbRoot/rbLeaf are nil until the C10 tree is first inserted into or
	// searched, which allocates the shared sentinel.
	treeRoot *bstNode[K]
	rbRoot   *rbNode[K]
	rbLeaf   *rbNode[K]

	// rngOwned is true when Options.RNG was left nil, so the sampler's
	// source came from rng.Get() and belongs to rng's pool rather than
	// to a caller who passed in their own Source.
	rngOwned bool
}

// New constructs a SkipList per opts. Comparator is required; every other
// field defaults as documented on Options.
func New[K any](opts Options[K]) (*SkipList[K], error) {
	rngOwned := opts.RNG == nil
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}

	sl := &SkipList[K]{
		cmp:          opts.Comparator,
		arena:        opts.Arena,
		logger:       opts.Logger,
		maxHeightCfg: opts.MaxHeight,
		branching:    opts.Branching,
		rngOwned:     rngOwned,
	}
	sl.sampler = newHeightSampler(opts.MaxHeight, opts.Branching, opts.RNG)
	sl.head = newNode[K](zeroValue[K](), opts.MaxHeight)
	sl.maxHeight.Store(1)
	sl.prev = make([]*node[K], opts.MaxHeight)
	for i := range sl.prev {
		sl.prev[i] = sl.head
	}
	sl.prevHeight = 1

	sl.accountNode(opts.MaxHeight)
	return sl, nil
}

func zeroValue[K any]() K {
	var z K
	return z
}

// accountNode records a node allocation's footprint against the arena for
// memory-usage bookkeeping (spec.md C1: "bookkeeping" is an explicit
// arena responsibility alongside node storage). The node itself remains a
// normal Go-managed allocation — see DESIGN.md (internal/arena) for why
// atomic.Pointer fields aren't carved out of a raw byte slab here.
func (sl *SkipList[K]) accountNode(height int) {
	var k K
	headerSize := int(unsafe.Sizeof(k)) + int(unsafe.Sizeof(uintptr(0)))
	linkSize := int(unsafe.Sizeof(atomic.Pointer[node[K]]{}))
	size := headerSize + height*linkSize
	if _, err := sl.arena.AllocateAligned(size); err != nil {
		sl.logger.Warnf("%sarena accounting failed: %v", logging.NSSkipList, err)
	}
}

// MaxHeight returns the current number of active levels.
func (sl *SkipList[K]) MaxHeight() int {
	return int(sl.maxHeight.Load())
}

// Count returns the number of keys inserted so far.
func (sl *SkipList[K]) Count() int64 {
	return sl.count.Load()
}

// Close releases resources the list borrowed rather than was given. If
// Options.RNG was left nil, the sampler's source came from rng.Get() and
// is returned to rng's pool here; a caller-supplied RNG is left alone,
// since the caller retains ownership of it. Close is not required before
// a list is garbage collected — it only matters for reusing the pooled
// generator across many short-lived lists.
func (sl *SkipList[K]) Close() {
	if sl.rngOwned {
		rng.Put(sl.sampler.source)
	}
}

// keyIsAfterNode reports whether key sorts strictly after n's key. A nil
// n is treated as infinite (i.e. key is never "after" a nil node),
// matching the original's KeyIsAfterNode helper.
func (sl *SkipList[K]) keyIsAfterNode(key K, n *node[K]) bool {
	return n != nil && sl.cmp(n.key, key) < 0
}

// FindGreaterOrEqual returns the first node with key >= target, or nil if
// none exists. See spec.md §4.5 for the rationale behind the integrated
// descent (as opposed to FindLessThan(key).next[0]).
func (sl *SkipList[K]) findGreaterOrEqual(key K) *node[K] {
	x := sl.head
	level := sl.MaxHeight() - 1
	var lastBigger *node[K]
	for {
		next := x.loadNext(level)
		var cmp int
		if next == nil || next == lastBigger {
			cmp = 1
		} else {
			cmp = sl.cmp(next.key, key)
		}
		switch {
		case cmp == 0 || (cmp > 0 && level == 0):
			return next
		case cmp < 0:
			x = next
		default:
			lastBigger = next
			level--
		}
	}
}

// findLessThan returns the rightmost node strictly less than key (or
// head if none). When prevOut is non-nil, it records the predecessor at
// every level in [0, MaxHeight).
func (sl *SkipList[K]) findLessThan(key K, prevOut []*node[K]) *node[K] {
	x := sl.head
	level := sl.MaxHeight() - 1
	var lastNotAfter *node[K]
	for {
		next := x.loadNext(level)
		if next != lastNotAfter && sl.keyIsAfterNode(key, next) {
			x = next
			continue
		}
		if prevOut != nil {
			prevOut[level] = x
		}
		if level == 0 {
			return x
		}
		lastNotAfter = next
		level--
	}
}

// findLast walks rightmost at each level, dropping to 0, and returns the
// last node in the list (or head if the list is empty).
func (sl *SkipList[K]) findLast() *node[K] {
	x := sl.head
	level := sl.MaxHeight() - 1
	for {
		next := x.loadNext(level)
		if next != nil {
			x = next
			continue
		}
		if level == 0 {
			return x
		}
		level--
	}
}

// Contains returns true iff an entry comparing equal to key is in the
// list.
func (sl *SkipList[K]) Contains(key K) bool {
	x := sl.findGreaterOrEqual(key)
	return x != nil && sl.cmp(x.key, key) == 0
}

// Insert adds key to the list.
//
// REQUIRES: the caller holds the external write lock.
// REQUIRES: nothing comparing equal to key is currently in the list —
// violating this panics with a *ListError (spec.md §4.12).
func (sl *SkipList[K]) Insert(key K) {
	sl.insert(key, sl.prev, true)
}

// insert implements spec.md §4.6. useFastPath selects whether the
// sequential-append shortcut is attempted; the bucketed variant
// (bucket.go) reuses this with its own quotient key and its own prev
// vector so it doesn't disturb the primary list's sequential cache.
func (sl *SkipList[K]) insert(key K, prev []*node[K], useFastPath bool) *node[K] {
	sequential := useFastPath &&
		!sl.keyIsAfterNode(key, prev[0].loadNext(0)) &&
		(prev[0] == sl.head || sl.keyIsAfterNode(key, prev[0]))

	if sequential {
		for i := 1; i < sl.prevHeight; i++ {
			prev[i] = prev[0]
		}
	} else {
		sl.findLessThan(key, prev)
	}

	if next := prev[0].loadNext(0); next != nil && sl.cmp(next.key, key) == 0 {
		panic(newListError("Insert", "duplicate key"))
	}

	height := sl.sampler.sample()
	maxH := sl.MaxHeight()
	if height > maxH {
		for i := maxH; i < height; i++ {
			prev[i] = sl.head
		}
		// Relaxed store: a reader observing the new max height either
		// sees a still-nil link at the new top levels (and drops down)
		// or sees the fully-published node set up below.
		sl.maxHeight.Store(int32(height))
		sl.logger.Debugf("%smax_height raised to %d", logging.NSSkipList, height)
	}

	x := newNode[K](key, height)
	sl.accountNode(height)
	for i := 0; i < height; i++ {
		x.storeNextRelaxed(i, prev[i].loadNext(i))
		prev[i].storeNextRelease(i, x)
	}

	if useFastPath {
		sl.prev[0] = x
		sl.prevHeight = height
	}
	sl.count.Add(1)
	return x
}

// EstimateCountLessThan returns a rough rank estimate (not exact) for the
// number of keys strictly less than key, per spec.md §4.5.
func (sl *SkipList[K]) EstimateCountLessThan(key K) uint64 {
	var count uint64
	x := sl.head
	level := sl.MaxHeight() - 1
	for {
		next := x.loadNext(level)
		if next == nil || sl.cmp(next.key, key) >= 0 {
			if level == 0 {
				return count
			}
			count *= uint64(sl.branching)
			level--
			continue
		}
		x = next
		count++
	}
}

// EstimateMax returns the exact bottom-level node count via a linear
// walk (spec.md §6 estimate_max; despite the name, C7/C6 make this exact
// rather than approximate since the bottom level already holds a node
// per key).
func (sl *SkipList[K]) EstimateMax() uint64 {
	var n uint64
	for x := sl.head.loadNext(0); x != nil; x = x.loadNext(0) {
		n++
	}
	return n
}
