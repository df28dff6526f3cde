// Package lsmindex wraps Pebble (CockroachDB's LSM storage engine) behind
// an interface shaped like internal/bptree's, so the benchmark CLI can
// compare the disk-resident B+ Tree against an off-the-shelf LSM index over
// the same int32-keyed workload.
package lsmindex

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/pebble"

	"github.com/dbcore/bptreeindex/internal/page"
)

// Index is an int32-keyed, RecordID-valued Pebble-backed store.
type Index struct {
	db *pebble.DB
}

// Open opens (or creates) a Pebble database at dir.
func Open(dir string) (*Index, error) {
	opts := &pebble.Options{
		MemTableSize:                16 << 20,
		MemTableStopWritesThreshold: 4,
		L0CompactionThreshold:       4,
		L0StopWritesThreshold:       12,
	}
	db, err := pebble.Open(dir, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "lsmindex: open %s", dir)
	}
	return &Index{db: db}, nil
}

// Close flushes and shuts down Pebble.
func (idx *Index) Close() error {
	return idx.db.Close()
}

// InsertEntry inserts (key, rid), mirroring bptree.BTreeIndex.InsertEntry's
// signature so the benchmark CLI can drive both indexes identically.
func (idx *Index) InsertEntry(key int32, rid page.RecordID) error {
	return idx.db.Set(encodeKey(key), encodeRID(rid), pebble.NoSync)
}

// RangeScan returns every RecordID whose key falls in [low, high], honoring
// the same inclusive/exclusive operator semantics as bptree's scan.
func (idx *Index) RangeScan(low int32, lowOp Operator, high int32, highOp Operator) ([]page.RecordID, error) {
	lower := encodeKey(low)
	if lowOp == GT {
		lower = encodeKey(low + 1)
	}
	upper := encodeKey(high + 1)
	if highOp == LT {
		upper = encodeKey(high)
	}

	iter, err := idx.db.NewIter(&pebble.IterOptions{LowerBound: lower, UpperBound: upper})
	if err != nil {
		return nil, errors.Wrap(err, "lsmindex: range scan")
	}
	defer iter.Close()

	var out []page.RecordID
	for iter.First(); iter.Valid(); iter.Next() {
		out = append(out, decodeRID(iter.Value()))
	}
	return out, iter.Error()
}

// Operator mirrors bptree.Operator so RangeScan callers can reuse the same
// constants without importing the bptree package.
type Operator int

const (
	LT Operator = iota
	LTE
	GTE
	GT
)

// encodeKey encodes an int32 key as a big-endian 4-byte slice shifted into
// unsigned space so lexicographic byte order matches signed integer order —
// the same trick the teacher's key encoding relied on for int64.
func encodeKey(k int32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(k)^0x80000000)
	return b
}

func encodeRID(rid page.RecordID) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint32(b[0:4], rid.PageNum)
	binary.BigEndian.PutUint32(b[4:8], rid.SlotNum)
	return b
}

func decodeRID(b []byte) page.RecordID {
	return page.RecordID{
		PageNum: binary.BigEndian.Uint32(b[0:4]),
		SlotNum: binary.BigEndian.Uint32(b[4:8]),
	}
}
