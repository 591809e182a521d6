package evict

import "testing"

// S5: root split cascade. The root's own reconcile produces a Split,
// whose split page's reconciliation produces another Split, whose
// split page finally reconciles to a Replace. driveRootSplit must
// iterate exactly that many times and leave tree.root at the final
// (addr, size), discarding every intermediate page along the way.
func TestEvictRootSplitCascade(t *testing.T) {
	root := NewPage(RowInternal)
	root.SetModified(true)
	rootRef := NewRef(StateInMemory)
	rootRef.Page = root
	root.Parent = rootRef

	level2 := NewPage(RowInternal)
	level3 := NewPage(RowInternal)

	// Call 0 (evict.go's own top-level Reconcile on root): Split into level2.
	// Call 1 (driveRootSplit, reconciling level2): Split into level3.
	// Call 2 (driveRootSplit, reconciling level3): Replace at (7, 4096).
	rec := &cascadingReconciler{outcomes: []*ModificationRecord{
		{Kind: OutcomeSplit, SplitPage: level2},
		{Kind: OutcomeSplit, SplitPage: level3},
		{Kind: OutcomeReplace, Addr: 7, Size: 4096},
	}}

	tracker := &fakeTracker{}
	alloc := &fakeAllocator{}
	e := newTestEngine(rec, tracker, alloc, nil)
	// rootRef is the tree's own root Ref, so isRoot evaluates true.
	e.Tree.RootRef = rootRef
	sess := NewSession(0, 4)

	if err := e.Evict(sess, root, SingleThreaded); err != nil {
		t.Fatalf("Evict: %v", err)
	}
	if rec.calls != 3 {
		t.Fatalf("reconcile called %d times, want 3", rec.calls)
	}
	if e.Tree.RootRef.Addr != 7 || e.Tree.RootRef.Size != 4096 {
		t.Fatalf("tree root = addr:%d size:%d, want 7/4096", e.Tree.RootRef.Addr, e.Tree.RootRef.Size)
	}
	if e.Tree.RootRef.State() != StateOnDisk {
		t.Fatalf("tree root state = %v, want OnDisk", e.Tree.RootRef.State())
	}

	// driveRootSplit discards each intermediate split page as it
	// cascades (level2, then level3); the original root page is
	// discarded last, by the orchestrator's own trailing reap/discard.
	wantDiscarded := []uint64{level2.ID(), level3.ID(), root.ID()}
	if len(tracker.discarded) != len(wantDiscarded) {
		t.Fatalf("discarded = %v, want %v", tracker.discarded, wantDiscarded)
	}
	for i, id := range wantDiscarded {
		if tracker.discarded[i] != id {
			t.Fatalf("discarded[%d] = %d, want %d", i, tracker.discarded[i], id)
		}
	}
}
