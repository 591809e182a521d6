package evict

import "fmt"

// driveRootSplit is C7: a newly produced root-level split page has no
// parent to defer into, so it must be reconciled and written
// immediately. That reconciliation can itself split again (typical
// during bulk-load of a large initial index), so this iterates:
// Replace exits with tree.RootRef updated, Split moves on to the new
// split page, anything else is a logic error.
//
// Termination: each iteration produces either a Replace (exit) or a
// Split whose split page has strictly fewer entries than the page that
// produced it; in the worst case the hierarchy collapses by one level
// per iteration, bounded by the tree's height at entry.
func (e *Engine) driveRootSplit(page *Page) error {
	for iteration := 0; ; iteration++ {
		if e.Tracer != nil {
			e.Tracer.TraceRootSplit(page, iteration)
		}
		page.SetModified(true)
		page.Modify = nil
		if err := e.Reconciler.Reconcile(page); err != nil {
			return fmt.Errorf("evict: root-split reconcile: %w", err)
		}

		switch page.Modify.Kind {
		case OutcomeReplace:
			e.Tree.RootRef.Addr = page.Modify.Addr
			e.Tree.RootRef.Size = page.Modify.Size
			e.discard(page)
			return nil
		case OutcomeSplit:
			next := page.Modify.SplitPage
			e.discard(page)
			page = next
		default:
			return fmt.Errorf("evict: root-split driver observed invalid outcome %v", page.Modify.Kind)
		}
	}
}
