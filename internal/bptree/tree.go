// Package bptree implements a disk-resident B+ Tree index over a single
// fixed-width int32 attribute, on top of the pin-counted buffer manager in
// internal/pager and the fixed-width node views in internal/page.
package bptree

import (
	"encoding/binary"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"

	"github.com/dbcore/bptreeindex/internal/page"
	"github.com/dbcore/bptreeindex/internal/pager"
)

// Operator is a scan-range comparison operator, per spec.md §6.
type Operator int

const (
	LT Operator = iota
	LTE
	GTE
	GT
)

// Separator is an (id, key) pair pushed up out of a split — the separator's
// key routes to the page on its right, never a dangling pointer.
type Separator struct {
	Key     int32
	ChildID page.PageID
}

// scanState holds the cursor of an in-progress StartScan/ScanNext/EndScan.
// The leaf under buf remains pinned for the whole lifetime of the scan.
type scanState struct {
	executing   bool
	pageID      page.PageID
	buf         *pager.Page
	nextEntry   int
	lowVal      int32
	highVal     int32
	lowOp       Operator
	highOp      Operator
}

// BTreeIndex is a single open index over one attribute of one relation.
type BTreeIndex struct {
	pg     *pager.Pager
	log    *logrus.Entry

	relationName      string
	attrByteOffset    int32
	attrType          page.Datatype
	rootPageNo        page.PageID
	initialRootPageNo page.PageID

	scan scanState
}

// IndexFileName returns the canonical on-disk name for an index over
// relationName at attrByteOffset: "<relation_name>.<attr_byte_offset>", per
// spec.md §6/§4.11 and original_source/src/btree.cpp's outIndexName build.
func IndexFileName(relationName string, attrByteOffset int32) string {
	return relationName + "." + strconv.Itoa(int(attrByteOffset))
}

// Open opens the index file for (relationName, attrByteOffset), creating and
// bulk-building it from scanner if it does not yet exist. cacheFrames sizes
// the pager's resident-page cache. Per spec.md §6, it returns the concrete
// file name actually used, so callers that created it can discover the path.
func Open(relationName string, attrByteOffset int32, attrType page.Datatype, cacheFrames int, scanner RelationScanner) (*BTreeIndex, string, error) {
	outIndexName := IndexFileName(relationName, attrByteOffset)
	log := logrus.WithFields(logrus.Fields{"relation": relationName, "attrByteOffset": attrByteOffset})

	pg, err := pager.OpenExisting(outIndexName, cacheFrames)
	switch {
	case errors.Is(err, pager.ErrFileNotFound):
		t, createErr := create(outIndexName, relationName, attrByteOffset, attrType, cacheFrames, scanner, log)
		if createErr != nil {
			return nil, "", createErr
		}
		return t, outIndexName, nil
	case err != nil:
		return nil, "", errors.Wrapf(err, "bptree: open %s", outIndexName)
	}

	metaBuf, err := pg.Read(pg.FirstPageNo())
	if err != nil {
		return nil, "", err
	}
	meta := page.AsMeta(metaBuf)
	if meta.RelationName() != relationName || meta.AttrByteOffset() != attrByteOffset || meta.AttrType() != attrType {
		_ = pg.Unpin(pg.FirstPageNo(), false)
		_ = pg.Close()
		return nil, "", errors.Wrapf(ErrBadIndexInfo, "index file %s", outIndexName)
	}
	t := &BTreeIndex{
		pg:                pg,
		log:               log,
		relationName:      relationName,
		attrByteOffset:    attrByteOffset,
		attrType:          attrType,
		rootPageNo:        meta.RootPageNo(),
		initialRootPageNo: meta.InitialRootPageNo(),
	}
	if err := pg.Unpin(pg.FirstPageNo(), false); err != nil {
		return nil, "", err
	}
	log.Info("opened existing index")
	return t, outIndexName, nil
}

func create(outIndexName, relationName string, attrByteOffset int32, attrType page.Datatype, cacheFrames int, scanner RelationScanner, log *logrus.Entry) (*BTreeIndex, error) {
	pg, err := pager.Create(outIndexName, cacheFrames)
	if err != nil {
		return nil, errors.Wrapf(err, "bptree: create %s", outIndexName)
	}

	metaID, metaBuf, err := pg.Allocate()
	if err != nil {
		return nil, err
	}
	rootID, rootBuf, err := pg.Allocate()
	if err != nil {
		return nil, err
	}

	meta := page.AsMeta(metaBuf)
	meta.SetRelationName(relationName)
	meta.SetAttrByteOffset(attrByteOffset)
	meta.SetAttrType(attrType)
	meta.SetRootPageNo(rootID)
	meta.SetInitialRootPageNo(rootID)
	page.InitLeaf(rootBuf)

	if err := pg.Unpin(metaID, true); err != nil {
		return nil, err
	}
	if err := pg.Unpin(rootID, true); err != nil {
		return nil, err
	}

	t := &BTreeIndex{
		pg:                pg,
		log:               log,
		relationName:      relationName,
		attrByteOffset:    attrByteOffset,
		attrType:          attrType,
		rootPageNo:        rootID,
		initialRootPageNo: rootID,
	}

	if err := t.bulkBuild(scanner); err != nil {
		return nil, err
	}
	log.WithField("index", outIndexName).Info("created and bulk-built index")
	return t, nil
}

// bulkBuild drains scanner, inserting every record's key into the freshly
// created tree, mirroring the original constructor's scan-and-insert loop.
func (t *BTreeIndex) bulkBuild(scanner RelationScanner) error {
	if scanner == nil {
		return nil
	}
	for {
		rid, record, err := scanner.ScanNext()
		if errors.Is(err, ErrEndOfRelation) {
			return t.pg.Flush()
		}
		if err != nil {
			return err
		}
		key, err := t.extractKey(record)
		if err != nil {
			return err
		}
		if err := t.InsertEntry(key, rid); err != nil {
			return err
		}
	}
}

func (t *BTreeIndex) extractKey(record []byte) (int32, error) {
	off := int(t.attrByteOffset)
	if off < 0 || off+4 > len(record) {
		return 0, errors.Newf("bptree: attrByteOffset %d out of range for a %d-byte record", t.attrByteOffset, len(record))
	}
	return int32(binary.LittleEndian.Uint32(record[off : off+4])), nil
}

// Close ends any executing scan and flushes the backing file.
func (t *BTreeIndex) Close() error {
	if t.scan.executing {
		if err := t.EndScan(); err != nil {
			return err
		}
	}
	t.log.Info("closing index")
	return t.pg.Close()
}
