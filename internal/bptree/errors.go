package bptree

import "github.com/cockroachdb/errors"

// Error taxonomy per spec.md §7. Each is a sentinel comparable with
// errors.Is. Open returns ErrBadIndexInfo wrapped with
// github.com/cockroachdb/errors context; the scan errors are returned
// unwrapped. The file-not-found signal is pager.ErrFileNotFound.
var (
	// ErrBadIndexInfo: existing index file metadata disagrees with the
	// constructor's relationName/attrByteOffset/attrType.
	ErrBadIndexInfo = errors.New("bptree: index metadata does not match constructor arguments")

	// ErrBadOperator: lowOp not in {GT, GTE} or highOp not in {LT, LTE}.
	ErrBadOperator = errors.New("bptree: scan operator out of range")

	// ErrBadRange: low value exceeds high value.
	ErrBadRange = errors.New("bptree: low value exceeds high value")

	// ErrNoSuchKey: no key in the tree satisfies the scan predicate at start.
	ErrNoSuchKey = errors.New("bptree: no key satisfies the scan range")

	// ErrScanNotInitialized: scanNext/endScan called with no active scan.
	ErrScanNotInitialized = errors.New("bptree: no scan is currently executing")

	// ErrIndexScanCompleted: the scan has been exhausted.
	ErrIndexScanCompleted = errors.New("bptree: scan has been exhausted")

	// ErrEndOfRelation: the relation scanner has no more records. Caught
	// internally during bulk build; never surfaced to a bptree caller.
	ErrEndOfRelation = errors.New("bptree: relation scanner exhausted")
)
