package bptree

import "github.com/dbcore/bptreeindex/internal/page"

// StartScan implements spec.md §4.9: validate the range, end any scan
// already in progress, descend to the leaf that should hold the first
// qualifying key, and position the cursor there. The leaf the cursor is on
// stays pinned until EndScan, also after ScanNext has reported
// ErrIndexScanCompleted.
func (t *BTreeIndex) StartScan(low int32, lowOp Operator, high int32, highOp Operator) error {
	if lowOp != GT && lowOp != GTE {
		return ErrBadOperator
	}
	if highOp != LT && highOp != LTE {
		return ErrBadOperator
	}
	if low > high {
		return ErrBadRange
	}
	if t.scan.executing {
		if err := t.EndScan(); err != nil {
			return err
		}
	}

	pageID := t.rootPageNo
	buf, err := t.pg.Read(pageID)
	if err != nil {
		return err
	}

	if t.rootPageNo != t.initialRootPageNo {
		for {
			node := page.AsInternal(buf)
			childID := node.FindChild(low)
			isLevel1 := node.Level() == 1
			if err := t.pg.Unpin(pageID, false); err != nil {
				return err
			}
			pageID = childID
			buf, err = t.pg.Read(pageID)
			if err != nil {
				return err
			}
			if isLevel1 {
				break
			}
		}
	}

	for {
		leaf := page.AsLeaf(buf)
		occ := leaf.OccupiedCount()

		matched, crossedHigh := -1, false
		for i := 0; i < occ; i++ {
			k := leaf.Key(i)
			if satisfies(low, lowOp, high, highOp, k) {
				matched = i
				break
			}
			if !belowHigh(k, high, highOp) {
				crossedHigh = true
				break
			}
		}

		if matched >= 0 {
			t.scan = scanState{
				executing: true,
				pageID:    pageID,
				buf:       buf,
				nextEntry: matched,
				lowVal:    low,
				highVal:   high,
				lowOp:     lowOp,
				highOp:    highOp,
			}
			return nil
		}
		if crossedHigh {
			if err := t.pg.Unpin(pageID, false); err != nil {
				return err
			}
			return ErrNoSuchKey
		}

		right := leaf.RightSib()
		if err := t.pg.Unpin(pageID, false); err != nil {
			return err
		}
		if right == page.PageID(0) {
			return ErrNoSuchKey
		}
		pageID = right
		buf, err = t.pg.Read(pageID)
		if err != nil {
			return err
		}
	}
}

// ScanNext implements spec.md §4.10: return the next qualifying record id,
// following right-sibling links across leaf boundaries, and fail with
// ErrIndexScanCompleted once the current key no longer satisfies the range
// or the rightmost leaf runs out.
func (t *BTreeIndex) ScanNext() (page.RecordID, error) {
	if !t.scan.executing {
		return page.RecordID{}, ErrScanNotInitialized
	}

	leaf := page.AsLeaf(t.scan.buf)
	if t.scan.nextEntry >= leaf.OccupiedCount() {
		right := leaf.RightSib()
		if right == page.PageID(0) {
			// Rightmost leaf exhausted: leave it pinned so EndScan balances
			// the pin it is still holding, rather than double-unpinning here.
			return page.RecordID{}, ErrIndexScanCompleted
		}
		if err := t.pg.Unpin(t.scan.pageID, false); err != nil {
			return page.RecordID{}, err
		}
		buf, err := t.pg.Read(right)
		if err != nil {
			return page.RecordID{}, err
		}
		t.scan.pageID = right
		t.scan.buf = buf
		t.scan.nextEntry = 0
		leaf = page.AsLeaf(buf)
		if leaf.OccupiedCount() == 0 {
			return page.RecordID{}, ErrIndexScanCompleted
		}
	}

	key := leaf.Key(t.scan.nextEntry)
	if !satisfies(t.scan.lowVal, t.scan.lowOp, t.scan.highVal, t.scan.highOp, key) {
		return page.RecordID{}, ErrIndexScanCompleted
	}

	rid := leaf.RID(t.scan.nextEntry)
	t.scan.nextEntry++
	return rid, nil
}

// EndScan implements spec.md §4.9's endScan: unpin the current leaf and
// reset the cursor.
func (t *BTreeIndex) EndScan() error {
	if !t.scan.executing {
		return ErrScanNotInitialized
	}
	if err := t.pg.Unpin(t.scan.pageID, false); err != nil {
		return err
	}
	t.scan = scanState{}
	return nil
}

// satisfies implements spec.md §4.9/§4.10's four-case predicate table.
func satisfies(low int32, lowOp Operator, high int32, highOp Operator, key int32) bool {
	var lowOK bool
	if lowOp == GTE {
		lowOK = key >= low
	} else {
		lowOK = key > low
	}
	return lowOK && belowHigh(key, high, highOp)
}

func belowHigh(key, high int32, highOp Operator) bool {
	if highOp == LTE {
		return key <= high
	}
	return key < high
}
