// Package evict implements the page eviction and reconciliation-commit
// core of mothball's B+Tree storage engine: acquiring exclusive access to
// an in-memory page (and any descendants eligible to be folded into it),
// reconciling it to on-disk form, and atomically swinging the parent
// reference so concurrent readers never observe a torn intermediate
// state.
//
// Everything upstream of this package - choosing which page to evict,
// disk allocation, the read path's hazard acquisition, the byte layout
// reconciliation produces - is a collaborator reached through the
// interfaces in collaborators.go.
package evict

import "sync/atomic"

// PageType identifies the storage layout a page uses. Column-store and
// row-store pages use different child/entry accessors even though this
// package's eviction logic treats both uniformly.
type PageType int

const (
	RowLeaf PageType = iota
	RowInternal
	ColumnLeaf
	ColumnInternal
)

// IsInternal reports whether pages of this type hold child Refs rather
// than entries.
func (t PageType) IsInternal() bool {
	return t == RowInternal || t == ColumnInternal
}

// IsColumnStore reports whether pages of this type use the column-store
// child accessor. No column-store page is ever constructed by this
// module (see DESIGN.md); the tag is carried so the eviction logic
// itself never has to special-case on store kind.
func (t PageType) IsColumnStore() bool {
	return t == ColumnLeaf || t == ColumnInternal
}

var nextPageID atomic.Uint64

// Page is a node of the tree. A Page is owned by exactly one Ref; it
// never outlives the state transition that discards it.
type Page struct {
	id      uint64
	Type    PageType
	Parent  *Ref // back-link to the Ref that owns this page, nil for the tree root
	Children []*Ref // ordered child reference cells, valid when Type.IsInternal()

	// SeparatorKeys holds the boundary key for Children[i+1], i.e. the
	// lowest key reachable through Children[i+1]. Owned by reconciliation;
	// the eviction core never reads it, only Children's Ref states.
	SeparatorKeys []int64

	// Entries is the leaf payload. Owned by reconciliation; the
	// eviction core never inspects it.
	Entries []LeafEntry

	ReadGen atomic.Uint64

	modified    bool
	forceEvict  bool
	Modify      *ModificationRecord
}

// LeafEntry is an opaque key-value pair carried by a leaf page. Its
// byte layout is a reconciliation concern, out of scope for this
// package; it exists only so the (fake or real) Reconciler this
// package calls through has somewhere to read/write leaf content.
type LeafEntry struct {
	Key   int64
	Value int64
}

// NewPage allocates a new, clean Page of the given type with a stable
// identity suitable for hazard-slot comparisons. Per the design notes,
// identity is a monotonic id rather than raw pointer arithmetic.
func NewPage(t PageType) *Page {
	return &Page{id: nextPageID.Add(1), Type: t}
}

// ID returns the page's stable identity, used by the hazard table for
// membership comparisons instead of pointer arithmetic.
func (p *Page) ID() uint64 { return p.id }

// IsInternal reports whether this page holds child Refs.
func (p *Page) IsInternal() bool { return p.Type.IsInternal() }

// IsModified reports whether the page carries unwritten changes -
// page_is_modified(page) from the external-interface list.
func (p *Page) IsModified() bool { return p.modified }

// SetModified toggles the dirty bit - page_set_modified(page).
func (p *Page) SetModified(dirty bool) { p.modified = dirty }

// MarkForceEvict sets the sticky, externally-set force-evict marker
// tested by the orchestrator's step 2. Exposed for callers outside this
// package (and for tests) that need to simulate the cache setting it.
func (p *Page) MarkForceEvict() { p.forceEvict = true }

// ForceEvictRequested reports whether the force-evict marker is set.
func (p *Page) ForceEvictRequested() bool { return p.forceEvict }

// ChildAt returns the child Ref at index i using the row-store
// accessor.
func (p *Page) ChildAt(i int) *Ref { return p.Children[i] }

// ColumnChildAt returns the child Ref at index i using the
// column-store accessor. Kept as a distinct code path from ChildAt -
// see the Open Questions in SPEC_FULL.md about the source's
// column-store discard defect, which used the row-store accessor by
// mistake. This package never reproduces that mistake: callers must
// pick the accessor that matches the page's PageType.
func (p *Page) ColumnChildAt(i int) *Ref { return p.Children[i] }
