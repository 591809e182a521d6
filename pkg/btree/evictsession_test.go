package btree_test

import (
	"os"
	"testing"

	"mothball/pkg/btree"
	"mothball/pkg/concurrency"
	"mothball/pkg/evict"
)

func newTestIndex(t *testing.T) *btree.BTreeIndex {
	t.Helper()
	f, err := os.CreateTemp("", "*.db")
	if err != nil {
		t.Fatal(err)
	}
	name := f.Name()
	f.Close()
	t.Cleanup(func() { os.Remove(name) })

	index, err := btree.OpenIndex(name)
	if err != nil {
		t.Fatalf("OpenIndex: %v", err)
	}
	t.Cleanup(func() { index.Close() })
	return index
}

func TestEvictSessionLocksAroundEvict(t *testing.T) {
	index := newTestIndex(t)
	engine := index.NewEvictionEngine(nil)
	pool := evict.NewSessionPool()
	sess := pool.Acquire()
	if sess == nil {
		t.Fatal("SessionPool.Acquire returned nil")
	}

	lm := concurrency.NewResourceLockManager()
	tm := concurrency.NewTransactionManager(lm)
	es := btree.NewEvictSession(engine, sess, tm, index.GetName())

	page := evict.NewPage(evict.RowLeaf)
	ref := evict.NewRef(evict.StateInMemory)
	ref.Page = page
	page.Parent = ref

	if err := es.Evict(page, 0); err != nil {
		t.Fatalf("Evict: %v", err)
	}
	if ref.State() != evict.StateOnDisk {
		t.Fatalf("ref state = %v, want OnDisk", ref.State())
	}
	// The per-call transaction must be released, not left held: a
	// second Evict under the same session has to be able to re-lock
	// the same tree without deadlocking against itself.
	if _, found := tm.GetTransaction(sess.ID); found {
		t.Fatalf("transaction for session %s still tracked after Evict", sess.ID)
	}

	page2 := evict.NewPage(evict.RowLeaf)
	ref2 := evict.NewRef(evict.StateInMemory)
	ref2.Page = page2
	page2.Parent = ref2
	if err := es.Evict(page2, 0); err != nil {
		t.Fatalf("second Evict: %v", err)
	}
}
