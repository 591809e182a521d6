package evict

import (
	"fmt"
	"io"
)

// Tracer receives the verbose trace hooks: entry to evict,
// root-split iteration, failed hazard acquisition, plus consistency
// warnings: a Tracker failure after a page has already left its
// parent, a hazard wait past config.HazardSpinYields, a failed
// durability-log write, or a failed diagnostics dump. No package in
// this module imports a structured logging library; the idiom already
// used elsewhere (btree.Node.printNode, the pager REPL) is fmt.Fprintf
// against an io.Writer, which this mirrors instead of reaching for
// zap/logrus/slog.
type Tracer interface {
	TraceEvictEntry(sess *Session, page *Page)
	TraceRootSplit(page *Page, iteration int)
	TraceHazardRetry(sess *Session, ref *Ref)
	TraceConsistencyWarning(page *Page, cause error)
}

// NopTracer discards every trace hook. The zero value is ready to use.
type NopTracer struct{}

func (NopTracer) TraceEvictEntry(*Session, *Page)        {}
func (NopTracer) TraceRootSplit(*Page, int)              {}
func (NopTracer) TraceHazardRetry(*Session, *Ref)        {}
func (NopTracer) TraceConsistencyWarning(*Page, error)   {}

// WriterTracer writes one line per trace hook to W, in the
// fmt.Fprintf-to-io.Writer style used elsewhere for printNode/REPL
// output rather than a logging library.
type WriterTracer struct {
	W io.Writer
}

func (t WriterTracer) TraceEvictEntry(sess *Session, page *Page) {
	fmt.Fprintf(t.W, "evict: session=%s page=%d type=%v enter\n", sess.ID, page.ID(), page.Type)
}

func (t WriterTracer) TraceRootSplit(page *Page, iteration int) {
	fmt.Fprintf(t.W, "evict: root-split iteration=%d page=%d\n", iteration, page.ID())
}

func (t WriterTracer) TraceHazardRetry(sess *Session, ref *Ref) {
	fmt.Fprintf(t.W, "evict: session=%s hazard retry on page=%d\n", sess.ID, ref.Page.ID())
}

func (t WriterTracer) TraceConsistencyWarning(page *Page, cause error) {
	fmt.Fprintf(t.W, "evict: CONSISTENCY WARNING page=%d: %v\n", page.ID(), cause)
}
