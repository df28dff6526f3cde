package bptree

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbcore/bptreeindex/internal/page"
)

func openTestIndex(t *testing.T, cacheFrames int) *BTreeIndex {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	idx, _, err := Open("employee", 4, page.Integer, cacheFrames, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func rid(n int) page.RecordID {
	return page.RecordID{PageNum: uint32(n + 1), SlotNum: 0}
}

func scanAll(t *testing.T, idx *BTreeIndex, low int32, lowOp Operator, high int32, highOp Operator) []page.RecordID {
	t.Helper()
	require.NoError(t, idx.StartScan(low, lowOp, high, highOp))
	var out []page.RecordID
	for {
		r, err := idx.ScanNext()
		if err == ErrIndexScanCompleted {
			break
		}
		require.NoError(t, err)
		out = append(out, r)
	}
	require.NoError(t, idx.EndScan())
	return out
}

func TestInsertPermutationThenScanFullRange(t *testing.T) {
	idx := openTestIndex(t, 32)
	keys := []int32{5, 3, 8, 1, 4, 7, 9, 2, 6}
	for _, k := range keys {
		require.NoError(t, idx.InsertEntry(k, rid(int(k))))
	}

	got := scanAll(t, idx, 1, GTE, 9, LTE)
	require.Len(t, got, 9)
	for i, r := range got {
		assert.Equal(t, rid(i+1), r)
	}
}

func TestStartScanOperatorVariants(t *testing.T) {
	idx := openTestIndex(t, 32)
	for k := int32(1); k <= 5; k++ {
		require.NoError(t, idx.InsertEntry(k, rid(int(k))))
	}

	got := scanAll(t, idx, 2, GT, 4, LT)
	require.Len(t, got, 1)
	assert.Equal(t, rid(3), got[0])

	got = scanAll(t, idx, 2, GTE, 4, LTE)
	require.Len(t, got, 3)
}

func TestStartScanRejectsBadOperator(t *testing.T) {
	idx := openTestIndex(t, 8)
	require.NoError(t, idx.InsertEntry(1, rid(1)))
	err := idx.StartScan(1, LT, 5, LTE)
	assert.ErrorIs(t, err, ErrBadOperator)
	err = idx.StartScan(1, GTE, 5, GT)
	assert.ErrorIs(t, err, ErrBadOperator)
}

func TestStartScanRejectsBadRange(t *testing.T) {
	idx := openTestIndex(t, 8)
	require.NoError(t, idx.InsertEntry(1, rid(1)))
	err := idx.StartScan(10, GTE, 1, LTE)
	assert.ErrorIs(t, err, ErrBadRange)
}

func TestStartScanNoMatchingKeyIsNoSuchKey(t *testing.T) {
	idx := openTestIndex(t, 8)
	require.NoError(t, idx.InsertEntry(1, rid(1)))
	require.NoError(t, idx.InsertEntry(100, rid(100)))

	err := idx.StartScan(40, GTE, 60, LTE)
	assert.ErrorIs(t, err, ErrNoSuchKey)
}

func TestScanNextWithoutStartScanIsScanNotInitialized(t *testing.T) {
	idx := openTestIndex(t, 8)
	_, err := idx.ScanNext()
	assert.ErrorIs(t, err, ErrScanNotInitialized)
	assert.ErrorIs(t, idx.EndScan(), ErrScanNotInitialized)
}

func TestForcedLeafSplitPromotesRootToInternal(t *testing.T) {
	idx := openTestIndex(t, 64)
	const n = page.IntLeafCapacity + 50
	for i := 0; i < n; i++ {
		require.NoError(t, idx.InsertEntry(int32(i), rid(i)))
	}
	assert.NotEqual(t, idx.initialRootPageNo, idx.rootPageNo, "root should have been promoted once a leaf split")

	got := scanAll(t, idx, 0, GTE, int32(n-1), LTE)
	require.Len(t, got, n)
	for i, r := range got {
		assert.Equal(t, rid(i), r)
	}
}

func TestForcedInternalSplitYieldsThreeLevelTree(t *testing.T) {
	idx := openTestIndex(t, 256)
	// One internal node is full once it holds IntNonLeafCapacity+1 children.
	// Ascending insertion leaves each split-off leaf about half full (171 of
	// IntLeafCapacity slots), so this count comfortably overflows the root's
	// child capacity and forces the root itself (then full) to split.
	const n = (page.IntNonLeafCapacity+1)*page.IntLeafCapacity + 2000
	for i := 0; i < n; i++ {
		require.NoError(t, idx.InsertEntry(int32(i), rid(i)))
	}

	buf, err := idx.pg.Read(idx.rootPageNo)
	require.NoError(t, err)
	root := page.AsInternal(buf)
	assert.Equal(t, int32(0), root.Level(), "root's children should themselves be internal nodes")
	require.NoError(t, idx.pg.Unpin(idx.rootPageNo, false))
}

func TestInsertEntryKeysOutOfOrderStaySorted(t *testing.T) {
	idx := openTestIndex(t, 32)
	keys := make([]int32, 0, page.IntLeafCapacity+20)
	for i := page.IntLeafCapacity + 19; i >= 0; i-- {
		keys = append(keys, int32(i))
	}
	for _, k := range keys {
		require.NoError(t, idx.InsertEntry(k, rid(int(k))))
	}
	got := scanAll(t, idx, 0, GTE, int32(len(keys)-1), LTE)
	require.Len(t, got, len(keys))
	for i, r := range got {
		assert.Equal(t, rid(i), r)
	}
}

func TestBulkBuildFromRelationScanner(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	var records []RelationRecord
	for i := 0; i < 20; i++ {
		buf := make([]byte, 8)
		binary.LittleEndian.PutUint32(buf[4:], uint32(i))
		records = append(records, RelationRecord{RID: rid(i), Data: buf})
	}
	scanner := &SliceScanner{Records: records}

	idx, name, err := Open("t1", 4, page.Integer, 32, scanner)
	require.NoError(t, err)
	defer idx.Close()
	assert.Equal(t, "t1.4", name)

	got := scanAll(t, idx, 0, GTE, 19, LTE)
	require.Len(t, got, 20)
}

func TestOpenExistingIndexRejectsMismatchedArgs(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	idx, _, err := Open("r", 0, page.Integer, 8, nil)
	require.NoError(t, err)
	require.NoError(t, idx.Close())

	_, _, err = Open("r", 0, page.Double, 8, nil)
	assert.ErrorIs(t, err, ErrBadIndexInfo)
}
