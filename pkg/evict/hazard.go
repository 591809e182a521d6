package evict

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/bits-and-blooms/bitset"
)

// HazardTable is the process-wide array of hazard slots described in
// one per session per concurrency level. A non-empty slot names
// a page some reader currently relies on not being freed.
//
// The source scans the whole slot array with a single unsynchronized
// word read per slot, relying on the Dekker-style pairing for
// correctness even under stale reads. A safe Go port cannot do a
// torn-free read of N independent words without either per-word atomics
// (which the source already effectively has, one per slot, via
// slots[i]) or a way to skip slots that were never populated. This
// implementation uses both: each slot is an atomic.Pointer[Page], and
// occupied is a bits-and-blooms/bitset.BitSet giving Snapshot an O(set
// bits) walk instead of an O(len(slots)) one. occupied is guarded by a
// short-held mutex only to keep concurrent Set/Clear calls on
// neighboring bits inside the same machine word race-free; the bitset
// itself is still snapshotted (cloned) before being walked, so a
// snapshot can still observe a hazard that is retracted moments later -
// exactly the staleness the algorithm is built to tolerate.
type HazardTable struct {
	mu       sync.Mutex
	occupied *bitset.BitSet
	slots    []atomic.Pointer[Page]
}

// NewHazardTable allocates a table with the given total slot count
// (maxSessions * slotsPerSession).
func NewHazardTable(totalSlots uint) *HazardTable {
	return &HazardTable{
		occupied: bitset.New(totalSlots),
		slots:    make([]atomic.Pointer[Page], totalSlots),
	}
}

// Publish names page in the given slot, owned single-writer by the
// calling session. Readers on the hazard-acquisition path publish their
// slot before re-checking a Ref's state; this package never calls
// Publish itself (hazard acquisition on the read path is out of scope)
// but consumes the table this way is documented for that caller.
func (h *HazardTable) Publish(slot uint, page *Page) {
	h.slots[slot].Store(page)
	h.mu.Lock()
	h.occupied.Set(slot)
	h.mu.Unlock()
}

// Retract clears a previously-published slot.
func (h *HazardTable) Retract(slot uint) {
	h.slots[slot].Store(nil)
	h.mu.Lock()
	h.occupied.Clear(slot)
	h.mu.Unlock()
}

// Snapshot builds a compacted, identity-sorted copy of every
// currently-occupied slot into sess's reused scratch buffer.
func (h *HazardTable) Snapshot(sess *Session) []*Page {
	h.mu.Lock()
	occ := h.occupied.Clone()
	h.mu.Unlock()

	out := sess.scratch[:0]
	for i, ok := occ.NextSet(0); ok; i, ok = occ.NextSet(i + 1) {
		if p := h.slots[i].Load(); p != nil {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID() < out[b].ID() })
	sess.scratch = out
	return out
}

// Contains reports whether page appears in a snapshot built by
// Snapshot, by binary search on page identity.
func Contains(snapshot []*Page, page *Page) bool {
	if page == nil {
		return false
	}
	id := page.ID()
	idx := sort.Search(len(snapshot), func(i int) bool { return snapshot[i].ID() >= id })
	return idx < len(snapshot) && snapshot[idx].ID() == id
}
