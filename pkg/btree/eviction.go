package btree

import (
	"mothball/pkg/evict"
	"mothball/pkg/pager"
)

// NewEvictionEngine wires an evict.Engine over this index: its
// Reconciler serializes through the same pager the index itself reads
// and writes, and the root Ref starts on-disk at this index's root page
// number, the same root BTreeIndex.Find/Insert/Delete address directly.
//
// This is the integration point between the index's existing,
// page-locking read/write path (insert/delete/get above, latched with
// lockRoot/unlockParents) and the eviction core: a cache manager would
// call Engine.Evict on candidate pages it selects via its own
// replacement policy, a policy this package does not implement.
//
// durability is optional and is assigned straight to Engine.Durability
// - see pkg/recovery.Manager for the concrete implementation this
// module wires in by default.
func (index *BTreeIndex) NewEvictionEngine(durability evict.DurabilityLog) *evict.Engine {
	cache := pager.NewCache(index.pager)
	return &evict.Engine{
		Tree:       evict.NewTree(index.rootPN, pager.Pagesize),
		Hazards:    evict.NewDefaultHazardTable(),
		Reconciler: NewReconciler(index.pager),
		Tracker:    pager.NewTracker(),
		Allocator:  cache,
		Cache:      cache,
		Tracer:     evict.NopTracer{},
		Durability: durability,
	}
}
