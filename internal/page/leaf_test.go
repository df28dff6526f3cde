package page

import (
	"testing"

	"github.com/dbcore/bptreeindex/internal/pager"
	"github.com/stretchr/testify/assert"
)

func TestLeafInsertKeepsAscendingOrder(t *testing.T) {
	buf := new(pager.Page)
	leaf := InitLeaf(buf)

	keys := []int32{5, 3, 8, 1, 4, 7, 9, 2, 6}
	occupied := 0
	for _, k := range keys {
		at := leaf.InsertIndex(occupied, k)
		leaf.Insert(occupied, at, k, RecordID{PageNum: uint32(k), SlotNum: 0})
		occupied++
	}

	assert.Equal(t, occupied, leaf.OccupiedCount())
	for i := 1; i < occupied; i++ {
		assert.LessOrEqual(t, leaf.Key(i-1), leaf.Key(i))
	}
	for i, want := range []int32{1, 2, 3, 4, 5, 6, 7, 8, 9} {
		assert.Equal(t, want, leaf.Key(i))
	}
}

func TestLeafOccupiedCountOnEmptyLeaf(t *testing.T) {
	buf := new(pager.Page)
	leaf := InitLeaf(buf)
	assert.Equal(t, 0, leaf.OccupiedCount())
	assert.False(t, leaf.IsFull())
}

func TestLeafIsFullAtCapacity(t *testing.T) {
	buf := new(pager.Page)
	leaf := InitLeaf(buf)
	for i := 0; i < IntLeafCapacity; i++ {
		leaf.SetKey(i, int32(i))
		leaf.SetRID(i, RecordID{PageNum: uint32(i + 1)})
	}
	assert.True(t, leaf.IsFull())
	assert.Equal(t, IntLeafCapacity, leaf.OccupiedCount())
}

func TestLeafRightSibDefaultsToNoPage(t *testing.T) {
	buf := new(pager.Page)
	leaf := InitLeaf(buf)
	assert.Equal(t, pager.NoPage, leaf.RightSib())
	leaf.SetRightSib(PageID(7))
	assert.Equal(t, PageID(7), leaf.RightSib())
}

func TestLeafClearRestoresEmptySentinel(t *testing.T) {
	buf := new(pager.Page)
	leaf := InitLeaf(buf)
	leaf.SetKey(0, 42)
	leaf.SetRID(0, RecordID{PageNum: 1, SlotNum: 2})
	leaf.Clear(0)
	assert.Equal(t, int32(0), leaf.Key(0))
	assert.True(t, leaf.RID(0).Empty())
}
