package evict

import (
	"errors"
	"fmt"
)

// Evict is the single exposed entry point: evict(session,
// page, flags).
//
//  1. A page carrying SplitMerge is never a direct eviction target
//     refresh its read-generation, restore its parent
//     Ref to InMemory, and return Ok cleanly.
//  2. A page with its external force-evict marker set gets Wait forced
//     on for this call, and the marker is cleared.
//  3. Unless SingleThreaded, acquire the page's own parent Ref via C2,
//     honoring Wait. This Ref is the initial high-water entry.
//  4. For internal pages, invoke C3 to lock the foldable subtree; leaves
//     skip it.
//  5. A C3 rejection unwinds via C4 and returns Rejected - not an error,
//     a normal outcome the eviction policy can retry.
//  6. If the page is modified, invoke the Reconciler. Its failure
//     unwinds via C4 and propagates the error verbatim.
//  7. A clean page commits via the Clean branch of C5 and bumps
//     cache_evict_unmodified.
//  8. A dirty page commits via the dirty branch of C5 and bumps
//     cache_evict_modified. A dirty Empty/non-root commit means the
//     page was not actually evicted; stop there.
//  9. Otherwise invoke C6 to reap folded descendants, then discard the
//     page itself.
//
// Every exit on steps 3-6 that failed after partial locking routes
// through unwind (C4) first, never silently partial.
func (e *Engine) Evict(sess *Session, page *Page, flags Flags) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if ae, ok := r.(*AssertionError); ok {
				e.dumpDiagnostics(sess, page, ae)
			}
			panic(r)
		}
	}()

	if e.Tracer != nil {
		e.Tracer.TraceEvictEntry(sess, page)
	}

	if page.Modify != nil && page.Modify.Kind == OutcomeSplitMerge {
		page.ReadGen.Store(e.Cache.ReadGen())
		if page.Parent != nil {
			page.Parent.setState(StateInMemory)
		}
		return nil
	}

	if flags&ForceEvict != 0 || page.ForceEvictRequested() {
		flags |= Wait
		if e.ForceClearer != nil {
			e.ForceClearer.ClearForceEvict(page)
		}
	}

	singleThreaded := flags&SingleThreaded != 0
	parent := page.Parent
	if parent == nil {
		parent = e.Tree.RootRef
	}

	var locked []*Ref
	if !singleThreaded {
		if !e.acquireExclusive(sess, parent, flags&Wait != 0) {
			return ErrBusy
		}
	} else {
		lockDirect(parent)
	}
	locked = append(locked, parent)

	if page.IsInternal() {
		childLocked, _, rerr := e.review(sess, page, flags)
		locked = append(locked, childLocked...)
		if rerr != nil {
			e.unwind(locked, singleThreaded)
			if errors.Is(rerr, ErrRejected) || errors.Is(rerr, ErrBusy) {
				return rerr
			}
			return fmt.Errorf("evict: review: %w", rerr)
		}
	}

	if page.IsModified() {
		if err := e.Reconciler.Reconcile(page); err != nil {
			e.unwind(locked, singleThreaded)
			return fmt.Errorf("evict: reconcile: %w", err)
		}
	}

	isRoot := parent == e.Tree.RootRef

	if page.Modify == nil {
		e.commitClean(page, parent)
		e.Stats.EvictUnmodified.Add(1)
	} else {
		keepInMemory, cerr := e.commitDirty(page, parent, isRoot, locked, singleThreaded)
		e.Stats.EvictModified.Add(1)
		if cerr != nil {
			return cerr
		}
		if keepInMemory {
			return nil
		}
	}
	e.logDurableCommit(page, parent)

	e.reap(page)
	e.discard(page)
	return nil
}

// logDurableCommit records the parent Ref's just-published on-disk
// address through Durability, if one is wired - the page's new address
// became authoritative the moment commitClean/commitDirty published it
// above. A nil Engine.Durability or a logging failure is not fatal to
// the eviction itself; a failure is surfaced through Tracer the same
// way discard's Tracker failure is, since it is the same "already
// committed, nothing left to roll back" situation.
func (e *Engine) logDurableCommit(page *Page, parent *Ref) {
	if e.Durability == nil || parent.State() != StateOnDisk {
		return
	}
	if err := e.Durability.LogEvict(parent.Addr, parent.Size); err != nil && e.Tracer != nil {
		e.Tracer.TraceConsistencyWarning(page, fmt.Errorf("durability log: %w", err))
	}
}
