package evict

// Flags mirror the exposed entry point's flag set.
type Flags uint8

const (
	// SingleThreaded means the caller already holds a tree-wide lock;
	// skip all hazard/lock work.
	SingleThreaded Flags = 1 << iota
	// Wait means spin until exclusive access is obtained rather than
	// returning Busy.
	Wait
	// ForceEvict mirrors the page's own sticky force-evict marker being
	// set; the orchestrator promotes it to Wait for this call and
	// clears the marker.
	ForceEvict
)

// Engine bundles the collaborators C1-C8 are built against. One Engine
// serves every session evicting pages from the same tree, mirroring how
// a Pager/TransactionManager bundles shared state behind a
// single manager struct rather than threading collaborators through
// free functions.
type Engine struct {
	Tree    *Tree
	Hazards *HazardTable
	Stats   Stats

	Reconciler   Reconciler
	Tracker      Tracker
	Allocator    Allocator
	Cache        Cache
	ForceClearer ForceEvictClearer
	Tracer       Tracer
	Durability   DurabilityLog // optional; see collaborators.go

	Diagnostics *Diagnostics // optional; see diagnostics.go
}
