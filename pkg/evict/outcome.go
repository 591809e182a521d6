package evict

// OutcomeKind is the tagged-variant discriminant for reconciliation
// outcomes. Per the design notes, the source's mutually-exclusive flag
// bits {Replace, Split, Empty, SplitMerge} are modeled as a single
// variant with a per-case payload rather than a flag set.
type OutcomeKind int

const (
	// OutcomeNone marks a clean page: reconciliation has not run, or a
	// page has no modification record at all.
	OutcomeNone OutcomeKind = iota
	// OutcomeReplace: reconciled to a single on-disk page.
	OutcomeReplace
	// OutcomeSplit: reconciled to a newly built internal page (the
	// "split page") referencing multiple on-disk children.
	OutcomeSplit
	// OutcomeEmpty: reconciled to nothing; all entries were deleted.
	OutcomeEmpty
	// OutcomeSplitMerge: a transient internal page produced by a prior
	// split. Never written independently; only ever folded into its
	// parent during that parent's own eviction.
	OutcomeSplitMerge
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeNone:
		return "None"
	case OutcomeReplace:
		return "Replace"
	case OutcomeSplit:
		return "Split"
	case OutcomeEmpty:
		return "Empty"
	case OutcomeSplitMerge:
		return "SplitMerge"
	default:
		return "Invalid"
	}
}

// Foldable reports whether a page carrying this outcome is eligible to
// be folded into its parent during the parent's own eviction (
// step 1 of the review).
func (k OutcomeKind) Foldable() bool {
	return k == OutcomeEmpty || k == OutcomeSplit || k == OutcomeSplitMerge
}

// ModificationRecord is the payload a Reconciler attaches to a Page
// after reconciling it. Exactly one ModificationRecord exists per
// reconciled page; Kind says which fields are meaningful.
type ModificationRecord struct {
	Kind OutcomeKind

	// Addr, Size: valid when Kind == OutcomeReplace.
	Addr int64
	Size int64

	// SplitPage: valid when Kind == OutcomeSplit. An internal page
	// carrying OutcomeSplitMerge, referencing the on-disk children the
	// reconciler already wrote.
	SplitPage *Page
}
