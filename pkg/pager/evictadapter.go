package pager

import (
	"sync"
	"sync/atomic"

	"mothball/pkg/evict"
)

// Cache adapts a Pager into evict.Cache and evict.Allocator. Disk
// allocation itself happens inside the reconciler (see
// pkg/btree.Reconciler.writeLeaf/writeInternal, which call
// Pager.GetNewPage directly); what this type owns is the process-wide
// read-generation counter and the page_out hook the eviction core calls
// once a page has left the tree.
type Cache struct {
	pager *Pager
	gen   atomic.Uint64
}

// NewCache returns a Cache backed by p.
func NewCache(p *Pager) *Cache {
	return &Cache{pager: p}
}

// ReadGen implements evict.Cache - cache_read_gen(). Bumped, not just
// read, on every call: a rejected SplitMerge re-check (evict.Evict step
// 1) needs a strictly newer generation each time it is passed over, or
// a racing eviction attempt could loop forever mistaking a stale
// generation for a fresh one.
func (c *Cache) ReadGen() uint64 {
	return c.gen.Add(1)
}

// PageOut implements evict.Allocator - page_out(page). This
// Pager has no on-disk page-free list (GetFreePN only ever grows), so
// there is nothing to reclaim here beyond what the reconciler's
// PutPage calls already released while writing; it is a deliberate
// no-op that gives Engine a concrete Allocator to call.
func (c *Cache) PageOut(page *evict.Page) {}

// Tracker implements evict.Tracker using an in-memory ledger of
// discarded page ids, standing in for this pager's lack of any
// deferred-free bookkeeping (pkg/recovery only tracks the write-ahead
// log, not freed pages). Kept so a caller - or a test - can observe
// which pages the eviction core considered fully discarded.
type Tracker struct {
	mu        sync.Mutex
	discarded map[uint64]bool
}

// NewTracker returns an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{discarded: make(map[uint64]bool)}
}

// Discard implements evict.Tracker - tracked_objects_discard(page, final).
func (t *Tracker) Discard(page *evict.Page, final bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.discarded[page.ID()] = final
	return nil
}

// WasDiscarded reports whether Discard has been called for the given
// page id, and with what final value. Exposed for tests.
func (t *Tracker) WasDiscarded(id uint64) (final bool, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	final, ok = t.discarded[id]
	return
}
