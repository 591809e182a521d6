package btree_test

import (
	"os"
	"testing"

	"mothball/pkg/btree"
	"mothball/pkg/evict"
	"mothball/pkg/pager"
)

func newTestPager(t *testing.T) *pager.Pager {
	t.Helper()
	f, err := os.CreateTemp("", "*.db")
	if err != nil {
		t.Fatal(err)
	}
	name := f.Name()
	f.Close()
	t.Cleanup(func() { os.Remove(name) })

	p, err := pager.New(name)
	if err != nil {
		t.Fatalf("pager.New: %v", err)
	}
	t.Cleanup(func() { p.Close() })
	return p
}

func TestReconcileSmallLeafReplaces(t *testing.T) {
	p := newTestPager(t)
	r := btree.NewReconciler(p)

	page := evict.NewPage(evict.RowLeaf)
	page.Entries = []evict.LeafEntry{{Key: 1, Value: 10}, {Key: 2, Value: 20}}

	if err := r.Reconcile(page); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if page.Modify == nil || page.Modify.Kind != evict.OutcomeReplace {
		t.Fatalf("Modify = %+v, want Replace", page.Modify)
	}
	if page.Modify.Size != pager.Pagesize {
		t.Fatalf("Size = %d, want %d", page.Modify.Size, pager.Pagesize)
	}
}

func TestReconcileEmptyLeaf(t *testing.T) {
	p := newTestPager(t)
	r := btree.NewReconciler(p)

	page := evict.NewPage(evict.RowLeaf)
	if err := r.Reconcile(page); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if page.Modify == nil || page.Modify.Kind != evict.OutcomeEmpty {
		t.Fatalf("Modify = %+v, want Empty", page.Modify)
	}
}

func TestReconcileOverfullLeafSplits(t *testing.T) {
	p := newTestPager(t)
	r := btree.NewReconciler(p)

	page := evict.NewPage(evict.RowLeaf)
	// Comfortably beyond any plausible per-page entry budget (a leaf
	// entry takes at least 16 bytes, a page is a few KB) to force a
	// split regardless of the exact threshold.
	const n = 4096
	for i := 0; i < n; i++ {
		page.Entries = append(page.Entries, evict.LeafEntry{Key: int64(i), Value: int64(i)})
	}

	if err := r.Reconcile(page); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if page.Modify == nil || page.Modify.Kind != evict.OutcomeSplit {
		t.Fatalf("Modify = %+v, want Split", page.Modify)
	}
	sibling := page.Modify.SplitPage
	if sibling == nil {
		t.Fatal("SplitPage is nil")
	}
	if sibling.Modify == nil || sibling.Modify.Kind != evict.OutcomeSplitMerge {
		t.Fatalf("sibling.Modify = %+v, want SplitMerge", sibling.Modify)
	}
	if len(sibling.Children) != 2 {
		t.Fatalf("sibling.Children = %d, want 2", len(sibling.Children))
	}
	for _, c := range sibling.Children {
		if c.State() != evict.StateOnDisk {
			t.Fatalf("sibling child state = %v, want OnDisk", c.State())
		}
	}
	for _, c := range sibling.Children {
		if c.Page != nil {
			t.Fatalf("OnDisk child Ref should own no in-memory page, got %+v", c.Page)
		}
	}
	if len(page.Entries) >= n {
		t.Fatalf("left half not truncated: %d entries remain, started with %d", len(page.Entries), n)
	}
}
