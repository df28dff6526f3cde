package bptree

import "github.com/dbcore/bptreeindex/internal/page"

// RelationScanner supplies the records a new index is built over. Open calls
// ScanNext repeatedly during the initial bulk build; the tree extracts the
// indexed attribute itself at attrByteOffset, mirroring how the original
// scan-and-insert loop pulled the key straight out of each record's bytes.
type RelationScanner interface {
	// ScanNext returns the next record's id and raw bytes. It returns
	// ErrEndOfRelation once the relation is exhausted.
	ScanNext() (page.RecordID, []byte, error)
}

// RelationRecord is one (record id, raw bytes) pair of a SliceScanner.
type RelationRecord struct {
	RID  page.RecordID
	Data []byte
}

// SliceScanner is a minimal in-memory RelationScanner, used by tests in
// place of a real heap file.
type SliceScanner struct {
	Records []RelationRecord
	pos     int
}

// ScanNext implements RelationScanner.
func (s *SliceScanner) ScanNext() (page.RecordID, []byte, error) {
	if s.pos >= len(s.Records) {
		return page.RecordID{}, nil, ErrEndOfRelation
	}
	r := s.Records[s.pos]
	s.pos++
	return r.RID, r.Data, nil
}
