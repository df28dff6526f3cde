package main

import (
	"github.com/dbcore/bptreeindex/internal/bptree"
	"github.com/dbcore/bptreeindex/internal/lsmindex"
	"github.com/dbcore/bptreeindex/internal/page"
)

// benchIndex is the common surface the workload driver needs from either
// index under comparison. The disk B+ Tree and the Pebble-backed LSM index
// expose different native APIs (scan-cursor vs. batch range), so each gets
// a thin adapter satisfying this interface rather than forcing one shape on
// both implementations.
type benchIndex interface {
	InsertEntry(key int32, rid page.RecordID) error
	RangeCount(low, high int32) (int, error)
	Close() error
}

type bptreeAdapter struct{ idx *bptree.BTreeIndex }

func (a bptreeAdapter) InsertEntry(key int32, rid page.RecordID) error {
	return a.idx.InsertEntry(key, rid)
}

func (a bptreeAdapter) RangeCount(low, high int32) (int, error) {
	if err := a.idx.StartScan(low, bptree.GTE, high, bptree.LTE); err != nil {
		if err == bptree.ErrNoSuchKey {
			return 0, nil
		}
		return 0, err
	}
	count := 0
	for {
		_, err := a.idx.ScanNext()
		if err == bptree.ErrIndexScanCompleted {
			break
		}
		if err != nil {
			return count, err
		}
		count++
	}
	return count, a.idx.EndScan()
}

func (a bptreeAdapter) Close() error { return a.idx.Close() }

type lsmAdapter struct{ idx *lsmindex.Index }

func (a lsmAdapter) InsertEntry(key int32, rid page.RecordID) error {
	return a.idx.InsertEntry(key, rid)
}

func (a lsmAdapter) RangeCount(low, high int32) (int, error) {
	rids, err := a.idx.RangeScan(low, lsmindex.GTE, high, lsmindex.LTE)
	return len(rids), err
}

func (a lsmAdapter) Close() error { return a.idx.Close() }
