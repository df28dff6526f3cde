package bptree

import "github.com/dbcore/bptreeindex/internal/page"

// InsertEntry inserts (key, rid) into the tree, per spec.md §4.8. It
// descends from the root, splitting any full node on the way back up, and
// promotes a new root if the split propagates all the way out of the
// current root's own call.
func (t *BTreeIndex) InsertEntry(key int32, rid page.RecordID) error {
	rootWasLeaf := t.rootPageNo == t.initialRootPageNo
	sep, err := t.insert(t.rootPageNo, rootWasLeaf, key, rid)
	if err != nil {
		return err
	}
	if sep != nil {
		return t.promoteRoot(rootWasLeaf, sep)
	}
	return nil
}

// insert reads and pins pageID, inserts (key, rid) into the subtree rooted
// there, and unpins pageID exactly once on every return path — including
// error paths, so a failure partway through a recursive insert never leaks
// a pin. It returns a non-nil Separator only when pageID's node split and
// the separator must be absorbed by the caller (or promoted, at the root).
func (t *BTreeIndex) insert(pageID page.PageID, isLeaf bool, key int32, rid page.RecordID) (*Separator, error) {
	buf, err := t.pg.Read(pageID)
	if err != nil {
		return nil, err
	}

	if isLeaf {
		leaf := page.AsLeaf(buf)
		if !leaf.IsFull() {
			occ := leaf.OccupiedCount()
			at := leaf.InsertIndex(occ, key)
			leaf.Insert(occ, at, key, rid)
			if err := t.pg.Unpin(pageID, true); err != nil {
				return nil, err
			}
			return nil, nil
		}
		return t.splitLeaf(leaf, pageID, key, rid)
	}

	node := page.AsInternal(buf)
	childID := node.FindChild(key)
	childIsLeaf := node.Level() == 1

	sep, err := t.insert(childID, childIsLeaf, key, rid)
	if err != nil {
		_ = t.pg.Unpin(pageID, false)
		return nil, err
	}
	if sep == nil {
		if err := t.pg.Unpin(pageID, false); err != nil {
			return nil, err
		}
		return nil, nil
	}
	if !node.IsFull() {
		m := node.OccupiedChildCount()
		at := node.InsertIndex(m, sep.Key)
		node.Insert(m, at, sep.Key, sep.ChildID)
		if err := t.pg.Unpin(pageID, true); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return t.splitInternal(node, pageID, sep)
}

// splitLeaf implements spec.md §4.5. It unpins both the old leaf and the
// newly allocated one itself, on every return path.
func (t *BTreeIndex) splitLeaf(leaf page.Leaf, pageID page.PageID, key int32, rid page.RecordID) (*Separator, error) {
	newID, newBuf, err := t.pg.Allocate()
	if err != nil {
		_ = t.pg.Unpin(pageID, false)
		return nil, err
	}
	newLeaf := page.InitLeaf(newBuf)

	const L = page.IntLeafCapacity
	mid := L / 2
	if L%2 == 1 && key > leaf.Key(mid) {
		mid++
	}

	for i := mid; i < L; i++ {
		newLeaf.SetKey(i-mid, leaf.Key(i))
		newLeaf.SetRID(i-mid, leaf.RID(i))
		leaf.Clear(i)
	}

	if key > leaf.Key(mid-1) {
		occ := L - mid
		at := newLeaf.InsertIndex(occ, key)
		newLeaf.Insert(occ, at, key, rid)
	} else {
		occ := mid
		at := leaf.InsertIndex(occ, key)
		leaf.Insert(occ, at, key, rid)
	}

	newLeaf.SetRightSib(leaf.RightSib())
	leaf.SetRightSib(newID)

	sep := &Separator{Key: newLeaf.Key(0), ChildID: newID}

	if err := t.pg.Unpin(pageID, true); err != nil {
		return nil, err
	}
	if err := t.pg.Unpin(newID, true); err != nil {
		return nil, err
	}
	return sep, nil
}

// splitInternal implements spec.md §4.6. The separator-push boundary follows
// spec.md exactly (push_idx chosen by the parity/comparison rule); the
// child-pointer relocation below is the standard B-tree split (I'.Child(0)
// is the right child of the pushed-up key, I.Child(push_idx) stays in I) —
// see DESIGN.md for why a literal index-shifted reading of that step would
// drop a subtree.
func (t *BTreeIndex) splitInternal(old page.Internal, pageID page.PageID, incoming *Separator) (*Separator, error) {
	newID, newBuf, err := t.pg.Allocate()
	if err != nil {
		_ = t.pg.Unpin(pageID, false)
		return nil, err
	}
	newNode := page.InitInternal(newBuf, old.Level())

	const N = page.IntNonLeafCapacity
	mid := N / 2
	pushIdx := mid
	if N%2 == 0 {
		if incoming.Key < old.Key(mid) {
			pushIdx = mid - 1
		} else {
			pushIdx = mid
		}
	}
	pushKey := old.Key(pushIdx)

	for i := pushIdx + 1; i < N; i++ {
		j := i - (pushIdx + 1)
		newNode.SetKey(j, old.Key(i))
		newNode.SetChild(j, old.Child(i))
		old.ClearKey(i)
		old.ClearChild(i)
	}
	newNode.SetChild(N-pushIdx-1, old.Child(N))
	old.ClearChild(N)
	old.ClearKey(pushIdx)

	if incoming.Key < newNode.Key(0) {
		m := pushIdx + 1
		at := old.InsertIndex(m, incoming.Key)
		old.Insert(m, at, incoming.Key, incoming.ChildID)
	} else {
		m := N - pushIdx
		at := newNode.InsertIndex(m, incoming.Key)
		newNode.Insert(m, at, incoming.Key, incoming.ChildID)
	}

	sep := &Separator{Key: pushKey, ChildID: newID}

	if err := t.pg.Unpin(pageID, true); err != nil {
		return nil, err
	}
	if err := t.pg.Unpin(newID, true); err != nil {
		return nil, err
	}
	return sep, nil
}

// promoteRoot implements spec.md §4.7: allocate a fresh internal root whose
// two children are the old root and the page that just split off of it, and
// point the meta page at it.
func (t *BTreeIndex) promoteRoot(oldRootWasLeaf bool, sep *Separator) error {
	newRootID, newBuf, err := t.pg.Allocate()
	if err != nil {
		return err
	}
	level := int32(0)
	if oldRootWasLeaf {
		level = 1
	}
	newRoot := page.InitInternal(newBuf, level)
	newRoot.SetChild(0, t.rootPageNo)
	newRoot.SetKey(0, sep.Key)
	newRoot.SetChild(1, sep.ChildID)

	metaBuf, err := t.pg.Read(t.pg.FirstPageNo())
	if err != nil {
		_ = t.pg.Unpin(newRootID, true)
		return err
	}
	page.AsMeta(metaBuf).SetRootPageNo(newRootID)
	if err := t.pg.Unpin(t.pg.FirstPageNo(), true); err != nil {
		return err
	}
	if err := t.pg.Unpin(newRootID, true); err != nil {
		return err
	}

	t.rootPageNo = newRootID
	return nil
}
