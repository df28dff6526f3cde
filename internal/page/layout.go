// Package page provides zero-copy byte views over a pager.Page for the
// three on-disk node shapes this B+ Tree core uses: the meta page, leaf
// nodes and internal nodes. It generalizes the slot-accessor style of the
// teacher's dbms/index/bptree/pbtree.go (numKeys/getSlot/putSlot over fixed
// byte offsets) to the fixed-width parallel-array layout spec.md §3 and §6
// require, rather than the teacher's variable-length slotted-cell layout
// (dbms/index/btpage), which cannot express a fixed leaf/internal capacity.
package page

import (
	"encoding/binary"

	"github.com/dbcore/bptreeindex/internal/pager"
)

const (
	keySize      = 4 // int32 key
	pageIDSize   = 4 // uint32 page id
	recordIDSize = 8 // two uint32 fields

	// IntLeafCapacity is L in spec.md §3/§6:
	// floor((SIZE - sizeof(PageId)) / (sizeof(int) + sizeof(RecordId))).
	IntLeafCapacity = (pager.PageSize - pageIDSize) / (keySize + recordIDSize)

	// IntNonLeafCapacity is N in spec.md §3/§6:
	// floor((SIZE - sizeof(int) - sizeof(PageId)) / (sizeof(int) + sizeof(PageId))).
	IntNonLeafCapacity = (pager.PageSize - keySize - pageIDSize) / (keySize + pageIDSize)
)

// PageID is re-exported for callers that only need the page package.
type PageID = pager.PageID

// RecordID is an opaque (page_number, slot_number) pair identifying a
// record in the base relation. PageNum == 0 is the "empty slot" sentinel.
type RecordID struct {
	PageNum  uint32
	SlotNum  uint32
}

// Empty reports whether this is the sentinel "no record" value.
func (r RecordID) Empty() bool { return r.PageNum == 0 }

func readRecordID(buf []byte) RecordID {
	return RecordID{
		PageNum: binary.LittleEndian.Uint32(buf[0:4]),
		SlotNum: binary.LittleEndian.Uint32(buf[4:8]),
	}
}

func writeRecordID(buf []byte, r RecordID) {
	binary.LittleEndian.PutUint32(buf[0:4], r.PageNum)
	binary.LittleEndian.PutUint32(buf[4:8], r.SlotNum)
}
