package evict

// unwind is C4: release locks acquired during review (plus, when the
// caller included it, the evicted page's own parent Ref) in the reverse
// of their acquisition order - the invariant that the last successfully
// locked page forms a valid cut."
//
// The source's unwind mirrors review's own recursive traversal shape
// and stops when it reaches the high-water page, so it never touches a
// sibling subtree review never opened. This implementation gets the
// same result more directly: locked already contains, in acquisition
// order, exactly the Refs review (or the orchestrator) locked and
// nothing else, so reversing that slice is the unwind.
//
// A no-op under SingleThreaded.
func (e *Engine) unwind(locked []*Ref, singleThreaded bool) {
	if singleThreaded {
		return
	}
	for i := len(locked) - 1; i >= 0; i-- {
		ref := locked[i]
		assertf(ref.State() == StateLocked, "unwind encountered a Ref not in Locked state")
		ref.setState(StateInMemory)
	}
}
