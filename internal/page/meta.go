package page

import (
	"encoding/binary"

	"github.com/dbcore/bptreeindex/internal/pager"
)

// Datatype mirrors spec.md §6's attr_type enum. Only Integer is supported
// by this core; Double and String are accepted on the wire for format
// compatibility but never produced or consumed by the tree logic.
type Datatype int32

const (
	Integer Datatype = 0
	Double  Datatype = 1
	String  Datatype = 2
)

const (
	metaRelationNameOff = 0
	metaRelationNameLen = 20
	metaAttrOffsetOff   = metaRelationNameOff + metaRelationNameLen
	metaAttrTypeOff     = metaAttrOffsetOff + 4
	metaRootPageOff     = metaAttrTypeOff + 4
	// metaInitialRootOff persists spec.md §9 Open Question 1's resolution:
	// the page id of the tree's very first (leaf) root, so a reopened index
	// never has to guess whether the current root is a leaf.
	metaInitialRootOff = metaRootPageOff + 4
)

// Meta is a zero-copy view over the index file's first page.
type Meta struct {
	buf *pager.Page
}

// AsMeta wraps a resident page as a meta-page view.
func AsMeta(buf *pager.Page) Meta { return Meta{buf: buf} }

// RelationName returns the NUL-terminated relation name.
func (m Meta) RelationName() string {
	raw := m.buf[metaRelationNameOff : metaRelationNameOff+metaRelationNameLen]
	n := 0
	for n < len(raw) && raw[n] != 0 {
		n++
	}
	return string(raw[:n])
}

// SetRelationName writes name, NUL-terminated and zero-padded, truncating
// if it exceeds the 20-byte field.
func (m Meta) SetRelationName(name string) {
	field := m.buf[metaRelationNameOff : metaRelationNameOff+metaRelationNameLen]
	for i := range field {
		field[i] = 0
	}
	n := len(name)
	if n > metaRelationNameLen-1 {
		n = metaRelationNameLen - 1
	}
	copy(field, name[:n])
}

// AttrByteOffset returns the byte offset of the indexed attribute in a record.
func (m Meta) AttrByteOffset() int32 {
	return int32(binary.LittleEndian.Uint32(m.buf[metaAttrOffsetOff : metaAttrOffsetOff+4]))
}

// SetAttrByteOffset sets the indexed attribute's byte offset.
func (m Meta) SetAttrByteOffset(off int32) {
	binary.LittleEndian.PutUint32(m.buf[metaAttrOffsetOff:metaAttrOffsetOff+4], uint32(off))
}

// AttrType returns the indexed attribute's declared type.
func (m Meta) AttrType() Datatype {
	return Datatype(binary.LittleEndian.Uint32(m.buf[metaAttrTypeOff : metaAttrTypeOff+4]))
}

// SetAttrType sets the indexed attribute's declared type.
func (m Meta) SetAttrType(t Datatype) {
	binary.LittleEndian.PutUint32(m.buf[metaAttrTypeOff:metaAttrTypeOff+4], uint32(t))
}

// RootPageNo returns the current root page id.
func (m Meta) RootPageNo() PageID {
	return PageID(binary.LittleEndian.Uint32(m.buf[metaRootPageOff : metaRootPageOff+4]))
}

// SetRootPageNo updates the current root page id. Called exactly when root
// promotion occurs, per spec.md §3's meta page invariant.
func (m Meta) SetRootPageNo(id PageID) {
	binary.LittleEndian.PutUint32(m.buf[metaRootPageOff:metaRootPageOff+4], uint32(id))
}

// InitialRootPageNo returns the page id of the tree's original (leaf) root.
func (m Meta) InitialRootPageNo() PageID {
	return PageID(binary.LittleEndian.Uint32(m.buf[metaInitialRootOff : metaInitialRootOff+4]))
}

// SetInitialRootPageNo persists the original root's page id. Written once,
// at index creation, and never again.
func (m Meta) SetInitialRootPageNo(id PageID) {
	binary.LittleEndian.PutUint32(m.buf[metaInitialRootOff:metaInitialRootOff+4], uint32(id))
}
