// Package pager implements the narrow buffer-manager contract the B+ Tree
// core depends on: allocate a page, read-and-pin a page, unpin with a dirty
// flag, and flush every dirty page of a file. Unlike the teacher's original
// pager (github.com/btree-query-bench/bmark/dbms/pager), every resident page
// here carries a pin count; the tree is only allowed to mutate a page while
// it holds a pin, and Flush refuses to run while any page is still pinned.
package pager

import (
	"os"

	"github.com/cockroachdb/errors"
)

const (
	// PageSize matches the OS page size, as in the teacher's pager.
	PageSize = 4096
)

// PageID identifies a page within a file. Zero is the reserved "none"
// sentinel — no page is ever allocated at id 0.
type PageID uint32

// NoPage is the sentinel PageID meaning "empty slot / no sibling / no page".
const NoPage PageID = 0

// Page is a raw fixed-size block of bytes.
type Page [PageSize]byte

var (
	// ErrFileNotFound is returned by OpenExisting when the backing file
	// does not exist yet; callers catch this to fall into a create path.
	ErrFileNotFound = errors.New("pager: file not found")
	// ErrNotPinned is returned by Unpin when the page has no outstanding pin.
	ErrNotPinned = errors.New("pager: unpin of a page with no outstanding pin")
	// ErrPagesPinned is returned by Flush when pages of the file are still pinned.
	ErrPagesPinned = errors.New("pager: flush requested while pages are still pinned")
	// ErrPageNotAllocated is returned by Read for a page id that was never allocated.
	ErrPageNotAllocated = errors.New("pager: read of a page id that was never allocated")
)

type frame struct {
	page  *Page
	pin   int
	dirty bool
	// lruNode is non-nil iff pin == 0, i.e. the frame is eviction-eligible.
	lruNode *lruNode
}

// Pager manages a single file of fixed-size pages, caching resident pages
// and evicting unpinned ones under an LRU policy when the cache is full.
type Pager struct {
	file       *os.File
	frames     map[PageID]*frame
	lru        *lruList
	cacheLimit int
	nextPageID PageID
}

// Create creates a brand-new, empty page file at path. It fails if the file
// already exists, mirroring the original BadgerDB BlobFile(name, true) path.
func Create(path string, cacheFrames int) (*Pager, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "pager: create %s", path)
	}
	return &Pager{
		file:       f,
		frames:     make(map[PageID]*frame),
		lru:        newLRUList(),
		cacheLimit: cacheFrames,
		nextPageID: 1, // page 1 is the first allocatable page, by convention.
	}, nil
}

// OpenExisting opens a page file that must already exist. If it does not,
// ErrFileNotFound is returned so callers can fall back to Create.
func OpenExisting(path string, cacheFrames int) (*Pager, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrFileNotFound
		}
		return nil, errors.Wrapf(err, "pager: open %s", path)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "pager: stat %s", path)
	}
	pageCount := PageID(info.Size() / PageSize)
	return &Pager{
		file:       f,
		frames:     make(map[PageID]*frame),
		lru:        newLRUList(),
		cacheLimit: cacheFrames,
		nextPageID: pageCount + 1,
	}, nil
}

// Allocate reserves a new, zeroed page, pinned for the caller.
func (p *Pager) Allocate() (PageID, *Page, error) {
	if err := p.evictIfNeeded(); err != nil {
		return NoPage, nil, err
	}
	id := p.nextPageID
	p.nextPageID++

	pg := new(Page)
	if err := p.writeToDisk(id, pg); err != nil {
		return NoPage, nil, err
	}
	fr := &frame{page: pg, pin: 1}
	p.frames[id] = fr
	return id, pg, nil
}

// Read pins and returns the page with the given id, loading it from disk
// if it is not already resident.
func (p *Pager) Read(id PageID) (*Page, error) {
	if id == NoPage {
		return nil, errors.New("pager: read of the NoPage sentinel")
	}
	if fr, ok := p.frames[id]; ok {
		if fr.pin == 0 {
			p.lru.remove(fr.lruNode)
			fr.lruNode = nil
		}
		fr.pin++
		return fr.page, nil
	}
	if id >= p.nextPageID {
		return nil, errors.Wrapf(ErrPageNotAllocated, "page %d", id)
	}
	if err := p.evictIfNeeded(); err != nil {
		return nil, err
	}
	pg, err := p.readFromDisk(id)
	if err != nil {
		return nil, err
	}
	p.frames[id] = &frame{page: pg, pin: 1}
	return pg, nil
}

// Unpin decrements the pin count on a page, marking it dirty if requested.
// The dirty flag is sticky across multiple pins/unpins of the same frame.
func (p *Pager) Unpin(id PageID, dirty bool) error {
	fr, ok := p.frames[id]
	if !ok || fr.pin == 0 {
		return errors.Wrapf(ErrNotPinned, "page %d", id)
	}
	if dirty {
		fr.dirty = true
	}
	fr.pin--
	if fr.pin == 0 {
		fr.lruNode = p.lru.pushFront(id)
	}
	return nil
}

// Flush writes every dirty page of the file to disk. It refuses to run
// while any page is still pinned, per the pin-discipline contract.
func (p *Pager) Flush() error {
	for id, fr := range p.frames {
		if fr.pin > 0 {
			return errors.Wrapf(ErrPagesPinned, "page %d", id)
		}
	}
	for id, fr := range p.frames {
		if !fr.dirty {
			continue
		}
		if err := p.writeToDisk(id, fr.page); err != nil {
			return err
		}
		fr.dirty = false
	}
	return nil
}

// FirstPageNo returns the page id of the first page of the file — the meta
// page, by convention.
func (p *Pager) FirstPageNo() PageID { return 1 }

// Close flushes the file and closes the underlying descriptor.
func (p *Pager) Close() error {
	if err := p.Flush(); err != nil {
		return err
	}
	return p.file.Close()
}

func (p *Pager) evictIfNeeded() error {
	if len(p.frames) < p.cacheLimit || p.cacheLimit <= 0 {
		return nil
	}
	victim, ok := p.lru.popBack()
	if !ok {
		// Every resident frame is pinned; grow past the nominal cache limit
		// rather than fail the caller, matching the single-scan/single-insert
		// workload this core is built for.
		return nil
	}
	fr := p.frames[victim]
	if fr.dirty {
		if err := p.writeToDisk(victim, fr.page); err != nil {
			return err
		}
	}
	delete(p.frames, victim)
	return nil
}

func (p *Pager) offset(id PageID) int64 {
	return int64(id-1) * PageSize
}

func (p *Pager) readFromDisk(id PageID) (*Page, error) {
	pg := new(Page)
	if _, err := p.file.ReadAt(pg[:], p.offset(id)); err != nil {
		return nil, errors.Wrapf(err, "pager: read page %d", id)
	}
	return pg, nil
}

func (p *Pager) writeToDisk(id PageID, pg *Page) error {
	if _, err := p.file.WriteAt(pg[:], p.offset(id)); err != nil {
		return errors.Wrapf(err, "pager: write page %d", id)
	}
	return nil
}

// ─── LRU eviction list (unpinned frames only) ──────────────────────────────
//
// Adapted from the teacher's lruCache (dbms/pager/pager.go): same doubly
// linked list shape, but this list only ever holds frames with pin == 0 —
// a page enters it on Unpin and leaves it the moment Read re-pins it.

type lruNode struct {
	id         PageID
	prev, next *lruNode
}

type lruList struct {
	head, tail *lruNode
}

func newLRUList() *lruList { return &lruList{} }

func (l *lruList) pushFront(id PageID) *lruNode {
	n := &lruNode{id: id, next: l.head}
	if l.head != nil {
		l.head.prev = n
	}
	l.head = n
	if l.tail == nil {
		l.tail = n
	}
	return n
}

func (l *lruList) remove(n *lruNode) {
	if n == nil {
		return
	}
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
}

func (l *lruList) popBack() (PageID, bool) {
	if l.tail == nil {
		return NoPage, false
	}
	id := l.tail.id
	l.remove(l.tail)
	return id, true
}
