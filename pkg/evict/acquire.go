package evict

import (
	"fmt"
	"runtime"

	"mothball/pkg/config"
)

// acquireExclusive is C2: acquire_exclusive(ref, force) -> Ok | Busy.
//
// Preconditions: ref.State() is InMemory or already Locked.
//
//  1. Set ref.state := Locked (plain store - see Ref.setState's doc for
//     why this alone needs no fence).
//  2. Snapshot the hazard table. If the page isn't named, return true.
//  3. Otherwise, if !wait: roll back to InMemory and return false.
//  4. If wait: yield and retry from step 2.
//
// Rationale: hazard references are only ever acquired while
// descending the tree, which requires reading a parent Ref in state
// InMemory. If our store of Locked happens before the hazard reader's
// re-check, the reader either won't find InMemory (and aborts its
// hazard) or will already have published its slot, and we will see it
// in the snapshot. Either way no page is discarded while a hazard names
// it.
func (e *Engine) acquireExclusive(sess *Session, ref *Ref, wait bool) bool {
	retries := 0
	for {
		ref.lock()
		page := ref.Page
		snap := e.Hazards.Snapshot(sess)
		if !Contains(snap, page) {
			return true
		}
		if !wait {
			ref.setState(StateInMemory)
			return false
		}
		retries++
		e.Stats.HazardRetries.Add(1)
		if e.Tracer != nil {
			e.Tracer.TraceHazardRetry(sess, ref)
			if retries == config.HazardSpinYields {
				e.Tracer.TraceConsistencyWarning(page, fmt.Errorf("hazard wait exceeded %d spin-yields", config.HazardSpinYields))
			}
		}
		runtime.Gosched()
	}
}

// lockDirect performs the InMemory->Locked transition without any
// hazard check, for the SingleThreaded case: the caller already holds a
// tree-wide lock, so no other session can be mid-descent through this
// Ref, and the plain transition is purely bookkeeping to keep the rest
// of the state machine (commit, reap) uniform regardless of flags.
func lockDirect(ref *Ref) {
	ref.lock()
}
