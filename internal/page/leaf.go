package page

import (
	"encoding/binary"

	"github.com/dbcore/bptreeindex/internal/pager"
)

const (
	leafKeysOff    = 0
	leafRIDsOff    = leafKeysOff + IntLeafCapacity*keySize
	leafRightSibOf = leafRIDsOff + IntLeafCapacity*recordIDSize
)

// Leaf is a zero-copy view over a pager.Page holding a leaf node: parallel
// key/record-id arrays followed by a right-sibling page id, exactly the
// layout of spec.md §3/§6's LeafNodeInt.
type Leaf struct {
	buf *pager.Page
}

// AsLeaf wraps a resident page as a leaf view. The caller is responsible
// for having pinned buf via the pager.
func AsLeaf(buf *pager.Page) Leaf { return Leaf{buf: buf} }

// InitLeaf zeroes buf and sets up an empty leaf with no right sibling.
func InitLeaf(buf *pager.Page) Leaf {
	for i := range buf {
		buf[i] = 0
	}
	return Leaf{buf: buf}
}

func (l Leaf) keyOff(i int) int { return leafKeysOff + i*keySize }
func (l Leaf) ridOff(i int) int { return leafRIDsOff + i*recordIDSize }

// Key returns the key stored at slot i.
func (l Leaf) Key(i int) int32 {
	return int32(binary.LittleEndian.Uint32(l.buf[l.keyOff(i) : l.keyOff(i)+keySize]))
}

// SetKey writes the key at slot i.
func (l Leaf) SetKey(i int, key int32) {
	binary.LittleEndian.PutUint32(l.buf[l.keyOff(i):l.keyOff(i)+keySize], uint32(key))
}

// RID returns the record id stored at slot i.
func (l Leaf) RID(i int) RecordID {
	off := l.ridOff(i)
	return readRecordID(l.buf[off : off+recordIDSize])
}

// SetRID writes the record id at slot i.
func (l Leaf) SetRID(i int, rid RecordID) {
	off := l.ridOff(i)
	writeRecordID(l.buf[off:off+recordIDSize], rid)
}

// Clear zeroes slot i (key = 0, rid.PageNum = 0), restoring the empty-slot
// sentinel invariant.
func (l Leaf) Clear(i int) {
	l.SetKey(i, 0)
	l.SetRID(i, RecordID{})
}

// RightSib returns the page id of the next leaf in key order, or NoPage if
// this is the rightmost leaf.
func (l Leaf) RightSib() PageID {
	return PageID(binary.LittleEndian.Uint32(l.buf[leafRightSibOf : leafRightSibOf+pageIDSize]))
}

// SetRightSib sets the right-sibling link.
func (l Leaf) SetRightSib(id PageID) {
	binary.LittleEndian.PutUint32(l.buf[leafRightSibOf:leafRightSibOf+pageIDSize], uint32(id))
}

// OccupiedCount returns n, the largest index such that RID(n-1) is
// non-empty. Because the leaf invariant guarantees occupied slots are a
// contiguous prefix, this is a binary search rather than a linear scan —
// the logical accessor spec.md §9's design notes call for in place of
// scanning for the sentinel repeatedly.
func (l Leaf) OccupiedCount() int {
	lo, hi := 0, IntLeafCapacity
	for lo < hi {
		mid := (lo + hi) / 2
		if l.RID(mid).Empty() {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo
}

// IsFull reports whether every slot is occupied.
func (l Leaf) IsFull() bool {
	return !l.RID(IntLeafCapacity - 1).Empty()
}

// InsertIndex returns the smallest slot index i in [0, occupied) with
// Key(i) > key, or occupied if no such slot exists — spec.md §4.3's
// insertion-point rule, found by binary search since the prefix is sorted.
func (l Leaf) InsertIndex(occupied int, key int32) int {
	lo, hi := 0, occupied
	for lo < hi {
		mid := (lo + hi) / 2
		if l.Key(mid) > key {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo
}

// Insert shifts slots [at, occupied) one to the right and writes key/rid at
// at. The caller must ensure the leaf is not full and that at was computed
// by InsertIndex (or an equivalent insertion-point rule) against occupied.
func (l Leaf) Insert(occupied, at int, key int32, rid RecordID) {
	for i := occupied; i > at; i-- {
		l.SetKey(i, l.Key(i-1))
		l.SetRID(i, l.RID(i-1))
	}
	l.SetKey(at, key)
	l.SetRID(at, rid)
}
