package evict

// Fakes for the external collaborators listed in collaborators.go,
// driven by the concrete scenarios spec'd out for this package (a
// clean leaf, a dirty replace, a split-merge fold, a hazard conflict, a
// root-split cascade, and a dirty-empty non-root reject).

type fakeReconciler struct {
	outcome *ModificationRecord
	err     error
	calls   int
}

func (f *fakeReconciler) Reconcile(page *Page) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	page.Modify = f.outcome
	return nil
}

// cascadingReconciler drives a root-split over a fixed sequence of
// outcomes, one per call, to exercise driveRootSplit's iteration.
type cascadingReconciler struct {
	outcomes []*ModificationRecord
	calls    int
}

func (c *cascadingReconciler) Reconcile(page *Page) error {
	if c.calls >= len(c.outcomes) {
		page.Modify = &ModificationRecord{Kind: OutcomeReplace, Addr: 999, Size: 4096}
		return nil
	}
	page.Modify = c.outcomes[c.calls]
	c.calls++
	return nil
}

type fakeTracker struct {
	discarded []uint64
	err       error
}

func (t *fakeTracker) Discard(page *Page, final bool) error {
	t.discarded = append(t.discarded, page.ID())
	return t.err
}

type fakeAllocator struct {
	pagedOut []uint64
}

func (a *fakeAllocator) PageOut(page *Page) {
	a.pagedOut = append(a.pagedOut, page.ID())
}

type fakeCache struct {
	gen uint64
}

func (c *fakeCache) ReadGen() uint64 {
	c.gen++
	return c.gen
}

type fakeForceClearer struct {
	cleared []uint64
}

func (f *fakeForceClearer) ClearForceEvict(page *Page) {
	f.cleared = append(f.cleared, page.ID())
}

// newTestEngine wires an Engine over the given fakes, defaulting any
// nil collaborator to an inert stand-in so tests only need to supply
// the ones they care about.
func newTestEngine(rec Reconciler, tracker *fakeTracker, alloc *fakeAllocator, cache *fakeCache) *Engine {
	if tracker == nil {
		tracker = &fakeTracker{}
	}
	if alloc == nil {
		alloc = &fakeAllocator{}
	}
	if cache == nil {
		cache = &fakeCache{}
	}
	return &Engine{
		Tree:       NewTree(InvalidAddr, 0),
		Hazards:    NewHazardTable(16),
		Reconciler: rec,
		Tracker:    tracker,
		Allocator:  alloc,
		Cache:      cache,
		Tracer:     NopTracer{},
	}
}

// linkRef wires page as the in-memory occupant of a fresh InMemory Ref
// and sets the back-link, the same shape the read path would leave
// behind before handing a page to this package.
func linkRef(page *Page) *Ref {
	ref := NewRef(StateInMemory)
	ref.Page = page
	page.Parent = ref
	return ref
}
