package btree

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"mothball/pkg/concurrency"
	"mothball/pkg/evict"
	"mothball/pkg/recovery"
	"mothball/pkg/repl"

	"github.com/google/uuid"
)

// EvictionREPL exposes the page-eviction and reconciliation-commit
// core as its own project, the same "one subsystem, driven directly"
// shape pager_repl.go already uses for the pager project. Commands
// construct and evict
// synthetic pages rather than reaching into this index's live B+Tree
// node representation: the eviction core's Page/Ref model is
// deliberately independent of BTreeIndex's own on-disk node layout
// (see NewEvictionEngine's doc comment), so this REPL demonstrates the
// core the same way a cache manager would drive it, not by splicing it
// into Insert/Find/Delete.
//
// tm supplies the session-lock context every evict_run call runs
// under (EvictSession). rm, if non-nil, is wired as both
// Engine.Durability and the backing for evict_checkpoint/evict_tail.
func EvictionREPL(index *BTreeIndex, tm *concurrency.TransactionManager, rm *recovery.Manager) *repl.REPL {
	var durability evict.DurabilityLog
	if rm != nil {
		durability = rm
	}
	engine := index.NewEvictionEngine(durability)
	pool := evict.NewSessionPool()

	var mu sync.Mutex
	pages := make(map[uint64]*evict.Page)
	sessions := make(map[uuid.UUID]*evict.Session)

	sessionFor := func(clientId uuid.UUID) *EvictSession {
		mu.Lock()
		defer mu.Unlock()
		sess, ok := sessions[clientId]
		if !ok {
			sess = pool.Acquire()
			sessions[clientId] = sess
		}
		return NewEvictSession(engine, sess, tm, index.GetName())
	}

	r := repl.NewRepl()

	r.AddCommand("evict_new", func(payload string, cfg *repl.REPLConfig) (string, error) {
		fields := strings.Fields(payload)
		n := 0
		if len(fields) == 2 {
			var err error
			if n, err = strconv.Atoi(fields[1]); err != nil {
				return "", fmt.Errorf("usage: evict_new <entry count>")
			}
		} else if len(fields) != 1 {
			return "", fmt.Errorf("usage: evict_new <entry count>")
		}

		page := evict.NewPage(evict.RowLeaf)
		for i := 0; i < n; i++ {
			page.Entries = append(page.Entries, evict.LeafEntry{Key: int64(i), Value: int64(i)})
		}
		ref := evict.NewRef(evict.StateInMemory)
		ref.Page = page
		page.Parent = ref

		mu.Lock()
		pages[page.ID()] = page
		mu.Unlock()
		return fmt.Sprintf("page %d created with %d entries", page.ID(), n), nil
	}, "Create a synthetic page with <entry count> leaf entries. usage: evict_new <entry count>")

	r.AddCommand("evict_run", func(payload string, cfg *repl.REPLConfig) (string, error) {
		fields := strings.Fields(payload)
		if len(fields) != 2 {
			return "", fmt.Errorf("usage: evict_run <page id>")
		}
		id, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return "", fmt.Errorf("usage: evict_run <page id>")
		}
		mu.Lock()
		page, ok := pages[id]
		mu.Unlock()
		if !ok {
			return "", fmt.Errorf("no such page %d", id)
		}

		es := sessionFor(cfg.GetAddr())
		if err := es.Evict(page, evict.Wait); err != nil {
			return "", err
		}

		mu.Lock()
		delete(pages, id)
		mu.Unlock()
		return fmt.Sprintf("page %d evicted", id), nil
	}, "Evict a page created with evict_new, under this client's lock context. usage: evict_run <page id>")

	r.AddCommand("evict_stats", func(payload string, cfg *repl.REPLConfig) (string, error) {
		return fmt.Sprintf("unmodified=%d modified=%d hazard_retries=%d",
			engine.Stats.EvictUnmodified.Load(),
			engine.Stats.EvictModified.Load(),
			engine.Stats.HazardRetries.Load()), nil
	}, "Print eviction counters. usage: evict_stats")

	if rm != nil {
		r.AddCommand("evict_checkpoint", func(payload string, cfg *repl.REPLConfig) (string, error) {
			root := engine.Tree.RootRef
			if err := rm.Checkpoint(filepath.Dir(index.pager.GetFileName()), root.Addr, root.Size); err != nil {
				return "", err
			}
			return "checkpoint written", nil
		}, "Checkpoint the tree root and snapshot its backing directory. usage: evict_checkpoint")

		r.AddCommand("evict_tail", func(payload string, cfg *repl.REPLConfig) (string, error) {
			fields := strings.Fields(payload)
			n := 10
			if len(fields) == 2 {
				var err error
				if n, err = strconv.Atoi(fields[1]); err != nil {
					return "", fmt.Errorf("usage: evict_tail <n>")
				}
			} else if len(fields) != 1 {
				return "", fmt.Errorf("usage: evict_tail <n>")
			}
			lines, err := rm.Tail(n)
			if err != nil {
				return "", err
			}
			return strings.Join(lines, "\n"), nil
		}, "Print the last <n> durability log lines. usage: evict_tail <n>")
	}

	return r
}
