package page

import (
	"encoding/binary"

	"github.com/dbcore/bptreeindex/internal/pager"
)

const (
	internalLevelOff  = 0
	internalKeysOff   = internalLevelOff + 4
	internalPageNoOff = internalKeysOff + IntNonLeafCapacity*keySize
)

// Internal is a zero-copy view over a pager.Page holding an internal node:
// a level tag, N separator keys and N+1 child page ids, the layout of
// spec.md §3/§6's NonLeafNodeInt.
type Internal struct {
	buf *pager.Page
}

// AsInternal wraps a resident page as an internal-node view.
func AsInternal(buf *pager.Page) Internal { return Internal{buf: buf} }

// InitInternal zeroes buf and sets its level.
func InitInternal(buf *pager.Page, level int32) Internal {
	for i := range buf {
		buf[i] = 0
	}
	n := Internal{buf: buf}
	n.SetLevel(level)
	return n
}

func (n Internal) keyOff(i int) int    { return internalKeysOff + i*keySize }
func (n Internal) pageNoOff(i int) int { return internalPageNoOff + i*pageIDSize }

// Level returns 1 if this node's children are leaves, 0 otherwise.
func (n Internal) Level() int32 {
	return int32(binary.LittleEndian.Uint32(n.buf[internalLevelOff : internalLevelOff+4]))
}

// SetLevel sets the level tag.
func (n Internal) SetLevel(level int32) {
	binary.LittleEndian.PutUint32(n.buf[internalLevelOff:internalLevelOff+4], uint32(level))
}

// Key returns the separator key at index i.
func (n Internal) Key(i int) int32 {
	return int32(binary.LittleEndian.Uint32(n.buf[n.keyOff(i) : n.keyOff(i)+keySize]))
}

// SetKey writes the separator key at index i.
func (n Internal) SetKey(i int, key int32) {
	binary.LittleEndian.PutUint32(n.buf[n.keyOff(i):n.keyOff(i)+keySize], uint32(key))
}

// ClearKey zeroes the separator key at index i.
func (n Internal) ClearKey(i int) { n.SetKey(i, 0) }

// Child returns the child page id at index i (0 <= i <= N).
func (n Internal) Child(i int) PageID {
	return PageID(binary.LittleEndian.Uint32(n.buf[n.pageNoOff(i) : n.pageNoOff(i)+pageIDSize]))
}

// SetChild writes the child page id at index i.
func (n Internal) SetChild(i int, id PageID) {
	binary.LittleEndian.PutUint32(n.buf[n.pageNoOff(i):n.pageNoOff(i)+pageIDSize], uint32(id))
}

// ClearChild zeroes the child page id at index i, restoring the
// unused-tail-slot sentinel.
func (n Internal) ClearChild(i int) { n.SetChild(i, pager.NoPage) }

// OccupiedChildCount returns m, the largest index such that Child(m-1) is
// non-zero — i.e. the number of occupied child pointers, one more than the
// index of the last occupied child. Found by binary search over the
// guaranteed-contiguous occupied prefix.
func (n Internal) OccupiedChildCount() int {
	lo, hi := 0, IntNonLeafCapacity+1
	for lo < hi {
		mid := (lo + hi) / 2
		if n.Child(mid) == pager.NoPage {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo
}

// IsFull reports whether every child slot (including the "extra" one at
// index N) is occupied, i.e. there is no room left for another separator.
func (n Internal) IsFull() bool {
	return n.Child(IntNonLeafCapacity) != pager.NoPage
}

// FindChild implements spec.md §4.2's findChild: start at the last occupied
// child, walk left while the preceding key is > key, and return the child
// at the index where the walk stops. A key equal to a separator routes to
// the separator's right child.
func (n Internal) FindChild(key int32) PageID {
	i := n.OccupiedChildCount() - 1
	for i > 0 && n.Key(i-1) > key {
		i--
	}
	return n.Child(i)
}

// InsertIndex returns the smallest slot index i in [0, numKeys) with
// Key(i) > key, or numKeys if no such slot exists — spec.md §4.4's
// insertion-point rule ("p = m - 1" there, with m the occupied-children
// count; m - 1 is exactly the number of keys currently occupied).
func (n Internal) InsertIndex(occupiedChildren int, key int32) int {
	numKeys := occupiedChildren - 1
	lo, hi := 0, numKeys
	for lo < hi {
		mid := (lo + hi) / 2
		if n.Key(mid) > key {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo
}

// Insert shifts keys [at, m-1) and child pointers [at+1, m) one slot right,
// then writes the new separator key at at and the new right child at at+1.
// m is the occupied-children count before insertion; the caller must
// ensure the node is not full.
func (n Internal) Insert(m, at int, key int32, rightChild PageID) {
	for i := m - 1; i > at; i-- {
		n.SetKey(i, n.Key(i-1))
	}
	for i := m; i > at+1; i-- {
		n.SetChild(i, n.Child(i-1))
	}
	n.SetKey(at, key)
	n.SetChild(at+1, rightChild)
}
