package evict

// Reconciler writes a page (and folds any SplitMerge descendants
// already locked for it) into on-disk form, populating page.Modify
// with exactly one outcome. It is the sole place byte-layout and disk
// allocation concerns enter this package; see pkg/btree for the
// concrete implementation used in production and the fakes in this
// package's tests for the scenario-driven ones.
type Reconciler interface {
	Reconcile(page *Page) error
}

// Tracker resolves any deferred frees associated with a modified page
// once it has left the tree - tracked_objects_discard(page, final).
type Tracker interface {
	Discard(page *Page, final bool) error
}

// Allocator returns a discarded page's memory to the backing
// allocator - page_out(page).
type Allocator interface {
	PageOut(page *Page)
}

// Cache exposes the monotonic read-generation counter used to bump a
// rejected merge-split page - cache_read_gen().
type Cache interface {
	ReadGen() uint64
}

// ForceEvictClearer clears the external force-evict marker on a page
// once the orchestrator has honored it - force_evict_clear(page).
type ForceEvictClearer interface {
	ClearForceEvict(page *Page)
}

// DurabilityLog is a durability/consistency-warning backing
// describes: a durable record of which pages this process has
// committed to disk by eviction, and of any consistency warning raised
// along the way (a Tracker failure discovered after the page has
// already left its parent, per discard's doc comment). Wiring it is
// optional - a nil Engine.Durability just skips logging, the same
// stance this package takes for Tracer and Diagnostics.
type DurabilityLog interface {
	LogEvict(addr, size int64) error
	LogWarning(pageID uint64, cause error) error
}
