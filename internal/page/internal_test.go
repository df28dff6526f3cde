package page

import (
	"testing"

	"github.com/dbcore/bptreeindex/internal/pager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildInternal creates an internal node with the given separator keys and
// children id = index + 1, i.e. Child(i) routes to "page i+1".
func buildInternal(t *testing.T, keys []int32) Internal {
	t.Helper()
	buf := new(pager.Page)
	n := InitInternal(buf, 0)
	n.SetChild(0, PageID(1))
	for i, k := range keys {
		n.SetKey(i, k)
		n.SetChild(i+1, PageID(i+2))
	}
	return n
}

func TestFindChildRoutesBoundaryKeyRight(t *testing.T) {
	// separators: 10, 20, 30 -> children: p1 (<10), p2 [10,20), p3 [20,30), p4 (>=30)
	n := buildInternal(t, []int32{10, 20, 30})

	cases := []struct {
		key  int32
		want PageID
	}{
		{5, 1},
		{10, 2}, // boundary routes right
		{15, 2},
		{20, 3},
		{29, 3},
		{30, 4},
		{100, 4},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, n.FindChild(c.key), "key=%d", c.key)
	}
}

func TestInternalOccupiedChildCount(t *testing.T) {
	n := buildInternal(t, []int32{10, 20, 30})
	require.Equal(t, 4, n.OccupiedChildCount())
}

func TestInternalInsertShiftsKeysAndChildren(t *testing.T) {
	n := buildInternal(t, []int32{10, 30})
	m := n.OccupiedChildCount() // 3: children p1,p2,p3 and keys 10,30
	at := n.InsertIndex(m, 20)
	n.Insert(m, at, 20, PageID(99))

	assert.Equal(t, int32(10), n.Key(0))
	assert.Equal(t, int32(20), n.Key(1))
	assert.Equal(t, int32(30), n.Key(2))
	assert.Equal(t, PageID(1), n.Child(0))
	assert.Equal(t, PageID(2), n.Child(1))
	assert.Equal(t, PageID(99), n.Child(2))
	assert.Equal(t, PageID(3), n.Child(3))
}

func TestInternalIsFull(t *testing.T) {
	buf := new(pager.Page)
	n := InitInternal(buf, 1)
	assert.False(t, n.IsFull())
	n.SetChild(IntNonLeafCapacity, PageID(1))
	assert.True(t, n.IsFull())
}

func TestInternalLevelRoundTrips(t *testing.T) {
	buf := new(pager.Page)
	n := InitInternal(buf, 1)
	assert.Equal(t, int32(1), n.Level())
	n.SetLevel(0)
	assert.Equal(t, int32(0), n.Level())
}
