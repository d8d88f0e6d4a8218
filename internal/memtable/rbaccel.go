package memtable

// rbColor is the classical red-black node color.
type rbColor bool

const (
	rbRed   rbColor = false
	rbBlack rbColor = true
)

// rbNode backs the red-black tree accelerator (C10, spec.md §4.10): the
// same express-stop role as the C9 BST, but self-balancing so lookup
// stays O(log n) regardless of insertion order. Every nil child in the
// classical algorithm is replaced by the shared sentinel sl.rbLeaf, so
// fix-up and rotations never need a nil check.
type rbNode[K any] struct {
	key         K
	slNode      *node[K]
	color       rbColor
	parent      *rbNode[K]
	left, right *rbNode[K]
}

// rbSentinel lazily allocates the shared black leaf used in place of
// nil children, and the empty tree's root.
func (sl *SkipList[K]) rbSentinel() *rbNode[K] {
	if sl.rbLeaf == nil {
		sl.rbLeaf = &rbNode[K]{color: rbBlack}
		sl.rbRoot = sl.rbLeaf
	}
	return sl.rbLeaf
}

// InsertRBAccel inserts key into the list exactly as Insert does, and
// additionally indexes the new node in the C10 tree whenever it drew
// the structural height cap — see InsertTreeAccel's comment for why
// this must be the cap (sl.maxHeightCfg), not the dynamic sl.MaxHeight().
func (sl *SkipList[K]) InsertRBAccel(key K) {
	n := sl.insert(key, sl.prev, true)
	if n.height() == sl.maxHeightCfg {
		sl.insertRBTree(key, n)
	}
}

func (sl *SkipList[K]) insertRBTree(key K, slNode *node[K]) {
	leaf := sl.rbSentinel()

	z := &rbNode[K]{
		key:    key,
		slNode: slNode,
		color:  rbRed,
		left:   leaf,
		right:  leaf,
	}

	var y *rbNode[K]
	x := sl.rbRoot
	for x != leaf {
		y = x
		if sl.cmp(x.key, key) < 0 {
			x = x.right
		} else {
			x = x.left
		}
	}
	z.parent = y

	switch {
	case y == nil:
		sl.rbRoot = z
	case sl.cmp(z.key, y.key) > 0:
		y.right = z
	default:
		y.left = z
	}

	if z.parent == nil {
		z.color = rbBlack
		return
	}
	if z.parent.parent == nil {
		return
	}
	sl.rbInsertFixup(z)
}

// rbInsertFixup restores the red-black invariants after a red-leaf
// insertion: while the new node's parent is red, either recolor through
// the uncle or rotate, walking the fix-up pointer toward the root.
func (sl *SkipList[K]) rbInsertFixup(z *rbNode[K]) {
	for z != sl.rbRoot && z.parent.color == rbRed {
		grandparent := z.parent.parent
		onLeft := z.parent == grandparent.left
		var uncle *rbNode[K]
		if onLeft {
			uncle = grandparent.right
		} else {
			uncle = grandparent.left
		}

		if uncle != nil && uncle.color == rbRed {
			z.parent.color = rbBlack
			uncle.color = rbBlack
			grandparent.color = rbRed
			z = grandparent
			continue
		}

		if onLeft {
			if z == z.parent.right {
				z = z.parent
				sl.rbRotateLeft(z)
			}
			z.parent.color = rbBlack
			grandparent.color = rbRed
			sl.rbRotateRight(grandparent)
		} else {
			if z == z.parent.left {
				z = z.parent
				sl.rbRotateRight(z)
			}
			z.parent.color = rbBlack
			grandparent.color = rbRed
			sl.rbRotateLeft(grandparent)
		}
	}
	sl.rbRoot.color = rbBlack
}

func (sl *SkipList[K]) rbRotateLeft(x *rbNode[K]) {
	leaf := sl.rbLeaf
	y := x.right
	x.right = y.left
	if y.left != leaf {
		y.left.parent = x
	}
	y.parent = x.parent

	switch {
	case x.parent == nil:
		sl.rbRoot = y
	case x == x.parent.left:
		x.parent.left = y
	default:
		x.parent.right = y
	}
	x.parent = y
	y.left = x
}

func (sl *SkipList[K]) rbRotateRight(y *rbNode[K]) {
	leaf := sl.rbLeaf
	x := y.left
	y.left = x.right
	if x.right != leaf {
		x.right.parent = y
	}
	x.parent = y.parent

	switch {
	case y.parent == nil:
		sl.rbRoot = x
	case y == y.parent.left:
		y.parent.left = x
	default:
		y.parent.right = x
	}
	y.parent = x
	x.right = y
}

// searchRBNode mirrors searchTreeNode's grandparent-retreat logic with
// the shared sentinel in place of nil.
func (sl *SkipList[K]) searchRBNode(key K) *node[K] {
	leaf := sl.rbSentinel()
	pos := sl.rbRoot
	var parent, grandparent *rbNode[K]

	for pos != leaf {
		switch c := sl.cmp(pos.key, key); {
		case c == 0:
			return pos.slNode
		case c < 0:
			if pos.right == leaf {
				return pos.slNode
			}
			if grandparent != nil {
				grandparent = nil
				parent = pos
				pos = pos.right
			} else {
				parent = pos
				pos = pos.right
			}
		default: // c > 0
			if pos.left == leaf {
				switch {
				case parent == nil:
					return sl.head
				case grandparent == nil:
					return parent.slNode
				default:
					return grandparent.slNode
				}
			}
			if parent != nil && grandparent == nil {
				grandparent = parent
				parent = pos
				pos = pos.left
			} else if parent != nil {
				parent = pos
				pos = pos.left
			} else {
				pos = pos.left
			}
		}
	}
	return sl.head
}

// FindGreaterOrEqualRBAccel is FindGreaterOrEqual seeded from the C10
// express-stop search instead of head.
func (sl *SkipList[K]) FindGreaterOrEqualRBAccel(key K) *node[K] {
	start := sl.searchRBNode(key)
	return sl.findGreaterOrEqualFrom(start, key)
}

// ContainsRBAccel is Contains via the C10 entry point.
func (sl *SkipList[K]) ContainsRBAccel(key K) bool {
	x := sl.FindGreaterOrEqualRBAccel(key)
	return x != nil && sl.cmp(x.key, key) == 0
}
