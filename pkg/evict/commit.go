package evict

import "fmt"

// commitClean is the Clean case of C5: publish (parent.page := nil,
// parent.state := OnDisk) over the page's existing addr/size - a clean
// page's Ref already carries the on-disk address it was read in from,
// since nothing ever overwrote it while the page sat InMemory/Locked.
// There are no folded descendants to reap for a clean page.
func (e *Engine) commitClean(page *Page, parent *Ref) {
	parent.publish(parent.Addr, parent.Size, nil, StateOnDisk)
}

// commitDirty is the dirty half of C5: Parent Updater. locked holds
// every Ref this Evict call locked, parent included, in acquisition
// order - needed so the Empty/non-root case can release all of them.
//
// Returns keepInMemory=true for the one case where the page is not
// actually evicted (dirty Empty, non-root): the orchestrator must stop
// without reaping or discarding.
func (e *Engine) commitDirty(page *Page, parent *Ref, isRoot bool, locked []*Ref, singleThreaded bool) (keepInMemory bool, err error) {
	switch page.Modify.Kind {
	case OutcomeEmpty:
		if isRoot {
			parent.publish(InvalidAddr, 0, nil, StateOnDisk)
			return false, nil
		}
		// Not actually evicted; it will be folded when its own parent
		// is evicted. Release every lock this call took, including the
		// page's own Ref, and return cleanly.
		e.unwind(locked, singleThreaded)
		return true, nil

	case OutcomeReplace:
		parent.publish(page.Modify.Addr, page.Modify.Size, nil, StateOnDisk)
		return false, nil

	case OutcomeSplit:
		if !isRoot {
			parent.publish(parent.Addr, parent.Size, page.Modify.SplitPage, StateInMemory)
			return false, nil
		}
		// The original root page is discarded by the caller's trailing
		// reap/discard like any other evicted page; what driveRootSplit
		// iterates over is the freshly produced split page it left
		// behind, which has no Ref of its own yet.
		if err := e.driveRootSplit(page.Modify.SplitPage); err != nil {
			return false, err
		}
		parent.setState(StateOnDisk)
		return false, nil

	default:
		assertf(false, fmt.Sprintf("commit observed invalid outcome kind %v", page.Modify.Kind))
		return false, nil
	}
}
