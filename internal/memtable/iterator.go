package memtable

// Iterator provides ordered traversal over a SkipList's contents
// (spec.md §4.7 / C7). It holds only a list reference and a node
// reference and is never invalid to construct — it simply starts
// positioned before the first entry until one of the Seek* methods is
// called.
//
// Multiple iterators may co-exist over the same list, and an iterator
// may run on a reader goroutine concurrently with the single writer's
// Insert calls: it may observe insertions that happened after the
// iterator was created, since every link it walks is an acquire load
// paired with the writer's release store. An Iterator itself is not
// safe for concurrent use from more than one goroutine.
type Iterator[K any] struct {
	list *SkipList[K]
	node *node[K]
}

// NewIterator returns an iterator over sl, initially invalid.
func (sl *SkipList[K]) NewIterator() *Iterator[K] {
	return &Iterator[K]{list: sl}
}

// SetList rebinds the iterator to a different list and invalidates its
// position, letting a caller reuse one Iterator value instead of
// allocating a fresh one per list.
func (it *Iterator[K]) SetList(sl *SkipList[K]) {
	it.list = sl
	it.node = nil
}

// Valid reports whether the iterator is positioned at an entry.
func (it *Iterator[K]) Valid() bool {
	return it.node != nil
}

// Key returns the key at the current position.
//
// REQUIRES: Valid().
func (it *Iterator[K]) Key() K {
	return it.node.key
}

// Next advances to the next entry.
//
// REQUIRES: Valid().
func (it *Iterator[K]) Next() {
	it.node = it.node.loadNext(0)
}

// Prev moves to the previous entry. If there is none, the iterator
// becomes invalid.
//
// REQUIRES: Valid().
func (it *Iterator[K]) Prev() {
	n := it.list.findLessThan(it.node.key, nil)
	if n == it.list.head {
		it.node = nil
		return
	}
	it.node = n
}

// Seek positions the iterator at the first entry with key >= target.
func (it *Iterator[K]) Seek(target K) {
	it.node = it.list.findGreaterOrEqual(target)
}

// SeekForPrev positions the iterator at the last entry with key <=
// target: seek forward first, then walk backward while overshooting.
func (it *Iterator[K]) SeekForPrev(target K) {
	it.Seek(target)
	if !it.Valid() {
		it.SeekToLast()
	}
	for it.Valid() && it.list.cmp(target, it.Key()) < 0 {
		it.Prev()
	}
}

// SeekToFirst positions the iterator at the first entry in the list.
func (it *Iterator[K]) SeekToFirst() {
	it.node = it.list.head.loadNext(0)
}

// SeekToLast positions the iterator at the last entry in the list. If
// the list is empty, the iterator becomes invalid.
func (it *Iterator[K]) SeekToLast() {
	n := it.list.findLast()
	if n == it.list.head {
		it.node = nil
		return
	}
	it.node = n
}
