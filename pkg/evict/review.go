package evict

// reviewFrame is one level of the explicit work-stack review walks,
// per the design note that recursion-on-tree-depth should be an
// explicit stack instead: it removes stack-overflow risk and makes the
// high-water mark a first-class value rather than an out-parameter
// threaded through recursion.
type reviewFrame struct {
	page *Page
	idx  int
}

// review is C3: review(page, flags) -> Ok | Reject.
//
// Walks only the in-memory children of an internal page in natural key
// order (OnDisk children are skipped; Reading or already-Locked
// children - held by some other actor - reject immediately, unless
// SingleThreaded, in which case seeing either is an assertion failure:
// the caller already holds a tree-wide lock, so no other actor should
// be able to hold one of these states). Returns every Ref this call
// locked, in acquisition order, and the deepest page it locked (the
// high-water mark C4 stops at).
func (e *Engine) review(sess *Session, root *Page, flags Flags) (locked []*Ref, highWater *Page, err error) {
	singleThreaded := flags&SingleThreaded != 0
	wait := flags&Wait != 0

	stack := []*reviewFrame{{page: root}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.idx >= len(top.page.Children) {
			stack = stack[:len(stack)-1]
			continue
		}
		ref := top.page.Children[top.idx]
		top.idx++

		switch ref.State() {
		case StateOnDisk:
			continue
		case StateReading, StateLocked:
			assertf(!singleThreaded, "review observed a Reading/Locked child under SingleThreaded")
			return locked, highWater, ErrRejected
		case StateInMemory:
			child := ref.Page
			if child.Modify == nil || !child.Modify.Kind.Foldable() {
				// A normal in-memory child cannot be folded.
				return locked, highWater, ErrRejected
			}

			if singleThreaded {
				lockDirect(ref)
			} else {
				if !e.acquireExclusive(sess, ref, wait) {
					return locked, highWater, ErrBusy
				}
			}

			// Re-test outcome flags under the lock.
			switch {
			case child.Modify.Kind == OutcomeSplitMerge:
				// Foldable whether clean or dirty.
			case !child.IsModified():
				// Split or Empty, clean: foldable.
			default:
				// Split or Empty, dirty: the parent would not yet know
				// the child's on-disk shape.
				if !singleThreaded {
					ref.setState(StateInMemory)
				}
				return locked, highWater, ErrRejected
			}

			locked = append(locked, ref)
			highWater = child
			if child.IsInternal() {
				stack = append(stack, &reviewFrame{page: child})
			}
		default:
			assertf(false, "review observed a Ref in an invalid state")
		}
	}
	return locked, highWater, nil
}
