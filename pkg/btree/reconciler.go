package btree

import (
	"encoding/binary"
	"fmt"

	"mothball/pkg/entry"
	"mothball/pkg/evict"
	"mothball/pkg/pager"
)

// Reconciler is the concrete evict.Reconciler backing mothball's B+Tree:
// it turns an in-memory evict.Page into on-disk bytes via the pager,
// producing exactly the outcome evict.Engine's commit logic expects.
//
// It reuses the same entry-count thresholds and midpoint-split math as
// LeafNode.split/InternalNode.split, adapted to operate over
// evict.Page's Entries/Children slices instead of a page-backed
// NodeHeader - the split-merge page this produces plays the role the
// newly created sibling node plays during a split, except the
// grandparent doesn't learn about it until its own reconciliation folds
// it in (see foldChildren below).
type Reconciler struct {
	pager *pager.Pager
}

// NewReconciler returns a Reconciler that persists reconciled pages
// through p.
func NewReconciler(p *pager.Pager) *Reconciler {
	return &Reconciler{pager: p}
}

// Reconcile implements evict.Reconciler.
func (r *Reconciler) Reconcile(page *evict.Page) error {
	if page.IsInternal() {
		return r.reconcileInternal(page)
	}
	return r.reconcileLeaf(page)
}

func (r *Reconciler) reconcileLeaf(page *evict.Page) error {
	if len(page.Entries) == 0 {
		page.Modify = &evict.ModificationRecord{Kind: evict.OutcomeEmpty}
		return nil
	}

	if int64(len(page.Entries)) < ENTRIES_PER_LEAF_NODE {
		addr, size, err := r.writeLeaf(page.Entries)
		if err != nil {
			return fmt.Errorf("reconcile leaf: %w", err)
		}
		page.Modify = &evict.ModificationRecord{Kind: evict.OutcomeReplace, Addr: addr, Size: size}
		return nil
	}

	// Split: same midpoint rule as LeafNode.split.
	mid := int64(len(page.Entries)) / 2
	left := page.Entries[:mid]
	right := append([]evict.LeafEntry(nil), page.Entries[mid:]...)

	leftAddr, leftSize, err := r.writeLeaf(left)
	if err != nil {
		return fmt.Errorf("reconcile leaf split (left): %w", err)
	}
	rightAddr, rightSize, err := r.writeLeaf(right)
	if err != nil {
		return fmt.Errorf("reconcile leaf split (right): %w", err)
	}

	leftRef := evict.NewRef(evict.StateOnDisk)
	leftRef.Addr, leftRef.Size = leftAddr, leftSize
	rightRef := evict.NewRef(evict.StateOnDisk)
	rightRef.Addr, rightRef.Size = rightAddr, rightSize

	splitMerge := evict.NewPage(internalCounterpart(page.Type))
	splitMerge.Children = []*evict.Ref{leftRef, rightRef}
	splitMerge.SeparatorKeys = []int64{right[0].Key}
	splitMerge.Modify = &evict.ModificationRecord{Kind: evict.OutcomeSplitMerge}

	page.Entries = left
	page.Modify = &evict.ModificationRecord{Kind: evict.OutcomeSplit, SplitPage: splitMerge}
	return nil
}

func (r *Reconciler) reconcileInternal(page *evict.Page) error {
	children, separators, err := foldChildren(page)
	if err != nil {
		return err
	}

	if len(children) == 0 {
		page.Modify = &evict.ModificationRecord{Kind: evict.OutcomeEmpty}
		return nil
	}

	if int64(len(children)-1) < KEYS_PER_INTERNAL_NODE {
		addr, size, err := r.writeInternal(children, separators)
		if err != nil {
			return fmt.Errorf("reconcile internal: %w", err)
		}
		page.Children, page.SeparatorKeys = children, separators
		page.Modify = &evict.ModificationRecord{Kind: evict.OutcomeReplace, Addr: addr, Size: size}
		return nil
	}

	// Split, mirroring InternalNode.split's midpoint-over-keys rule.
	mid := (int64(len(children)) - 1) / 2
	leftChildren, leftSeparators := children[:mid+1], separators[:mid]
	promoted := separators[mid]
	rightChildren, rightSeparators := children[mid+1:], separators[mid+1:]

	leftAddr, leftSize, err := r.writeInternal(leftChildren, leftSeparators)
	if err != nil {
		return fmt.Errorf("reconcile internal split (left): %w", err)
	}
	rightAddr, rightSize, err := r.writeInternal(rightChildren, rightSeparators)
	if err != nil {
		return fmt.Errorf("reconcile internal split (right): %w", err)
	}

	leftRef := evict.NewRef(evict.StateOnDisk)
	leftRef.Addr, leftRef.Size = leftAddr, leftSize
	rightRef := evict.NewRef(evict.StateOnDisk)
	rightRef.Addr, rightRef.Size = rightAddr, rightSize

	splitMerge := evict.NewPage(internalCounterpart(page.Type))
	splitMerge.Children = []*evict.Ref{leftRef, rightRef}
	splitMerge.SeparatorKeys = []int64{promoted}
	splitMerge.Modify = &evict.ModificationRecord{Kind: evict.OutcomeSplitMerge}

	page.Children, page.SeparatorKeys = leftChildren, leftSeparators
	page.Modify = &evict.ModificationRecord{Kind: evict.OutcomeSplit, SplitPage: splitMerge}
	return nil
}

// foldChildren flattens any child already folded by review (Foldable
// per outcome.go: SplitMerge always, Split/Empty once locked) into this
// page's own child list, the way a real merge operation would splice a
// split-merge page's two children into its grandparent instead of
// leaving an extra tree level around. An Empty child contributes no
// children and drops its adjoining separator; a Split/SplitMerge child
// contributes its own children and separator in its place.
func foldChildren(page *evict.Page) ([]*evict.Ref, []int64, error) {
	children := make([]*evict.Ref, 0, len(page.Children))
	separators := make([]int64, 0, len(page.SeparatorKeys))

	// skipSep is set when an Empty first child has no separator to its
	// left, so the one to its right is dropped instead.
	skipSep := false
	for i, child := range page.Children {
		appended := false
		if i > 0 {
			if skipSep {
				skipSep = false
			} else {
				separators = append(separators, page.SeparatorKeys[i-1])
				appended = true
			}
		}

		folded := child.Page
		if folded == nil || folded.Modify == nil || !folded.Modify.Kind.Foldable() {
			children = append(children, child)
			continue
		}

		switch folded.Modify.Kind {
		case evict.OutcomeEmpty:
			// Drop the child and the separator we just appended for it.
			if appended {
				separators = separators[:len(separators)-1]
			} else {
				skipSep = true
			}
		case evict.OutcomeSplitMerge, evict.OutcomeSplit:
			children = append(children, folded.Children...)
			if len(folded.SeparatorKeys) > 0 {
				separators = append(separators, folded.SeparatorKeys...)
			}
		default:
			return nil, nil, fmt.Errorf("foldChildren: child carries non-foldable outcome %v", folded.Modify.Kind)
		}
	}
	return children, separators, nil
}

// internalCounterpart returns the internal PageType that holds children
// of t's family (row or column store).
func internalCounterpart(t evict.PageType) evict.PageType {
	if t.IsColumnStore() {
		return evict.ColumnInternal
	}
	return evict.RowInternal
}

// writeLeaf serializes entries into a freshly allocated page, the same
// header-plus-entries layout LeafNode uses (NODETYPE_OFFSET,
// NUM_KEYS_OFFSET, entries packed from LEAF_NODE_HEADER_SIZE), and
// returns its page number and size to be carried as a Ref's addr/size.
func (r *Reconciler) writeLeaf(entries []evict.LeafEntry) (addr, size int64, err error) {
	p, err := r.pager.GetNewPage()
	if err != nil {
		return 0, 0, err
	}
	defer r.pager.PutPage(p)
	initPage(p, LEAF_NODE)

	numKeysData := make([]byte, NUM_KEYS_SIZE)
	binary.PutVarint(numKeysData, int64(len(entries)))
	p.Update(numKeysData, NUM_KEYS_OFFSET, NUM_KEYS_SIZE)

	for i, e := range entries {
		data := entry.New(e.Key, e.Value).Marshal()
		p.Update(data, LEAF_NODE_HEADER_SIZE+int64(i)*ENTRYSIZE, ENTRYSIZE)
	}
	return p.GetPageNum(), pager.Pagesize, nil
}

// writeInternal serializes children/separators into a freshly allocated
// page using InternalNode's KEYS_OFFSET/PNS_OFFSET layout: children[i]'s
// on-disk address at pn slot i, separators[i] at key slot i.
func (r *Reconciler) writeInternal(children []*evict.Ref, separators []int64) (addr, size int64, err error) {
	p, err := r.pager.GetNewPage()
	if err != nil {
		return 0, 0, err
	}
	defer r.pager.PutPage(p)
	initPage(p, INTERNAL_NODE)

	numKeysData := make([]byte, NUM_KEYS_SIZE)
	binary.PutVarint(numKeysData, int64(len(separators)))
	p.Update(numKeysData, NUM_KEYS_OFFSET, NUM_KEYS_SIZE)

	for i, key := range separators {
		data := make([]byte, KEY_SIZE)
		binary.PutVarint(data, key)
		p.Update(data, keyPos(int64(i)), KEY_SIZE)
	}
	for i, child := range children {
		data := make([]byte, PN_SIZE)
		binary.PutVarint(data, child.Addr)
		p.Update(data, pnPos(int64(i)), PN_SIZE)
	}
	return p.GetPageNum(), pager.Pagesize, nil
}
