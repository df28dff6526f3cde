package main

import (
	"math/rand"

	"github.com/dbcore/bptreeindex/internal/page"
)

// WorkloadType names a mixed read/write distribution to drive against an
// index, adapted from the teacher's OLTP/OLAP/Reporting split. "Read" here
// is a zero-width range scan — StartScan(k, GTE, k, LTE) — since this
// core's only query primitive is range scan, not a separate point lookup.
type WorkloadType string

const (
	OLTP      WorkloadType = "OLTP (90/10 read/write)"
	OLAP      WorkloadType = "OLAP (10/90 read/write)"
	Reporting WorkloadType = "Reporting (range scan)"
)

// ExecuteWorkload runs ops operations of wType against idx, with keys drawn
// from [0, keySpace).
func ExecuteWorkload(idx benchIndex, wType WorkloadType, ops, keySpace int) {
	for i := 0; i < ops; i++ {
		choice := rand.Intn(100)
		key := int32(rand.Intn(keySpace))

		switch wType {
		case OLTP:
			if choice < 90 {
				_, _ = idx.RangeCount(key, key)
			} else {
				_ = idx.InsertEntry(key, page.RecordID{PageNum: uint32(key) + 1})
			}
		case OLAP:
			if choice < 10 {
				_, _ = idx.RangeCount(key, key)
			} else {
				_ = idx.InsertEntry(key, page.RecordID{PageNum: uint32(key) + 1})
			}
		case Reporting:
			_, _ = idx.RangeCount(key, key+100)
		}
	}
}
