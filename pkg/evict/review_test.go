package evict

import "testing"

// S3: an internal page with a clean SplitMerge child folds the child
// in, commits, and reaps the child before the parent itself.
func TestEvictInternalFoldsSplitMergeChild(t *testing.T) {
	child := NewPage(RowLeaf)
	childRef := NewRef(StateInMemory)
	childRef.Page = child
	child.Parent = childRef
	child.Modify = &ModificationRecord{Kind: OutcomeSplitMerge}

	parentPage := NewPage(RowInternal)
	parentPage.Children = []*Ref{childRef}
	parentPage.SetModified(true)
	outerParent := linkRef(parentPage)

	rec := &fakeReconciler{outcome: &ModificationRecord{Kind: OutcomeReplace, Addr: 5, Size: 4096}}
	tracker := &fakeTracker{}
	alloc := &fakeAllocator{}
	e := newTestEngine(rec, tracker, alloc, nil)
	sess := NewSession(0, 4)

	if err := e.Evict(sess, parentPage, 0); err != nil {
		t.Fatalf("Evict: %v", err)
	}
	if childRef.State() != StateLocked {
		// reap discards the child's Page but the Ref itself is left
		// Locked - nothing in this package transitions a folded child's
		// Ref back, since the parent's own Ref was what got swung.
		t.Fatalf("child ref state = %v, want Locked", childRef.State())
	}
	if outerParent.Addr != 5 || outerParent.Size != 4096 || outerParent.State() != StateOnDisk {
		t.Fatalf("outer parent ref = addr:%d size:%d state:%v, want 5/4096/OnDisk",
			outerParent.Addr, outerParent.Size, outerParent.State())
	}
	if len(tracker.discarded) != 2 || tracker.discarded[0] != child.ID() || tracker.discarded[1] != parentPage.ID() {
		t.Fatalf("discard order = %v, want [child, parent]", tracker.discarded)
	}
	if len(alloc.pagedOut) != 2 {
		t.Fatalf("paged out = %v, want 2 pages", alloc.pagedOut)
	}
}

// An internal page whose every child is OnDisk behaves like a leaf:
// review locks nothing, reap walks nothing.
func TestEvictInternalAllChildrenOnDisk(t *testing.T) {
	onDiskRef := NewRef(StateOnDisk)
	onDiskRef.Addr, onDiskRef.Size = 42, 4096

	parentPage := NewPage(RowInternal)
	parentPage.Children = []*Ref{onDiskRef}
	outerParent := linkRef(parentPage)

	e := newTestEngine(&fakeReconciler{}, nil, nil, nil)
	sess := NewSession(0, 4)

	if err := e.Evict(sess, parentPage, 0); err != nil {
		t.Fatalf("Evict: %v", err)
	}
	if outerParent.State() != StateOnDisk {
		t.Fatalf("outer parent ref state = %v, want OnDisk", outerParent.State())
	}
	if onDiskRef.State() != StateOnDisk || onDiskRef.Addr != 42 {
		t.Fatalf("untouched OnDisk child was modified: %+v", onDiskRef)
	}
}
