package evict

import (
	"errors"
	"testing"
)

// S1: clean leaf, no contention.
func TestEvictCleanLeaf(t *testing.T) {
	page := NewPage(RowLeaf)
	ref := linkRef(page)

	alloc := &fakeAllocator{}
	tracker := &fakeTracker{}
	e := newTestEngine(&fakeReconciler{}, tracker, alloc, nil)
	sess := NewSession(0, 4)

	if err := e.Evict(sess, page, 0); err != nil {
		t.Fatalf("Evict: %v", err)
	}
	if ref.State() != StateOnDisk {
		t.Fatalf("ref state = %v, want OnDisk", ref.State())
	}
	if ref.Page != nil {
		t.Fatalf("ref.Page = %v, want nil", ref.Page)
	}
	if len(alloc.pagedOut) != 1 || alloc.pagedOut[0] != page.ID() {
		t.Fatalf("page was not paged out: %v", alloc.pagedOut)
	}
	if e.Stats.EvictUnmodified.Load() != 1 {
		t.Fatalf("EvictUnmodified = %d, want 1", e.Stats.EvictUnmodified.Load())
	}
	if e.Stats.EvictModified.Load() != 0 {
		t.Fatalf("EvictModified = %d, want 0", e.Stats.EvictModified.Load())
	}
}

// S2: dirty leaf, Replace.
func TestEvictDirtyLeafReplace(t *testing.T) {
	page := NewPage(RowLeaf)
	page.SetModified(true)
	ref := linkRef(page)

	rec := &fakeReconciler{outcome: &ModificationRecord{Kind: OutcomeReplace, Addr: 100, Size: 4096}}
	alloc := &fakeAllocator{}
	e := newTestEngine(rec, nil, alloc, nil)
	sess := NewSession(0, 4)

	if err := e.Evict(sess, page, 0); err != nil {
		t.Fatalf("Evict: %v", err)
	}
	if ref.Addr != 100 || ref.Size != 4096 {
		t.Fatalf("ref addr/size = %d/%d, want 100/4096", ref.Addr, ref.Size)
	}
	if ref.State() != StateOnDisk {
		t.Fatalf("ref state = %v, want OnDisk", ref.State())
	}
	if len(alloc.pagedOut) != 1 || alloc.pagedOut[0] != page.ID() {
		t.Fatalf("page was not paged out: %v", alloc.pagedOut)
	}
	if e.Stats.EvictModified.Load() != 1 {
		t.Fatalf("EvictModified = %d, want 1", e.Stats.EvictModified.Load())
	}
}

// S4: hazard conflict without Wait.
func TestEvictHazardConflictBusy(t *testing.T) {
	page := NewPage(RowLeaf)
	ref := linkRef(page)

	e := newTestEngine(&fakeReconciler{}, nil, nil, nil)
	e.Hazards.Publish(0, page)
	sess := NewSession(1, 4) // distinct slot range from the publisher above

	err := e.Evict(sess, page, 0)
	if !errors.Is(err, ErrBusy) {
		t.Fatalf("Evict err = %v, want ErrBusy", err)
	}
	if ref.State() != StateInMemory {
		t.Fatalf("ref state = %v, want InMemory (rolled back)", ref.State())
	}
	if e.Stats.EvictUnmodified.Load() != 0 || e.Stats.EvictModified.Load() != 0 {
		t.Fatalf("counters incremented on a busy call: %+v", e.Stats)
	}
}

// S6: dirty Empty child causes a non-root internal eviction to reject.
func TestEvictDirtyEmptyChildRejects(t *testing.T) {
	child := NewPage(RowLeaf)
	child.SetModified(true)
	child.Modify = &ModificationRecord{Kind: OutcomeEmpty}
	childRef := NewRef(StateInMemory)
	childRef.Page = child

	parentPage := NewPage(RowInternal)
	parentPage.Children = []*Ref{childRef}
	parentPage.SeparatorKeys = nil
	parentPage.SetModified(true)
	parentRef := linkRef(parentPage)
	child.Parent = childRef

	e := newTestEngine(&fakeReconciler{}, nil, nil, nil)
	sess := NewSession(0, 4)

	err := e.Evict(sess, parentPage, 0)
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("Evict err = %v, want ErrRejected", err)
	}
	if parentRef.State() != StateInMemory {
		t.Fatalf("parent ref state = %v, want InMemory after unwind", parentRef.State())
	}
	if childRef.State() != StateInMemory {
		t.Fatalf("child ref state = %v, want InMemory after unwind", childRef.State())
	}
}

// Evicting a SplitMerge-flagged page is rejected for direct eviction
// and bumps its read-generation instead (round-trip property).
func TestEvictSplitMergePageShortCircuits(t *testing.T) {
	page := NewPage(RowInternal)
	page.Modify = &ModificationRecord{Kind: OutcomeSplitMerge}
	ref := linkRef(page)
	ref.setState(StateLocked) // as it would be mid-fold by some other review

	cache := &fakeCache{}
	e := newTestEngine(&fakeReconciler{}, nil, nil, cache)
	sess := NewSession(0, 4)

	before := page.ReadGen.Load()
	if err := e.Evict(sess, page, 0); err != nil {
		t.Fatalf("Evict: %v", err)
	}
	if page.ReadGen.Load() <= before {
		t.Fatalf("read-gen not bumped: before=%d after=%d", before, page.ReadGen.Load())
	}
	if ref.State() != StateInMemory {
		t.Fatalf("ref state = %v, want InMemory", ref.State())
	}
}
