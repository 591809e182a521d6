package recovery

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/icza/backscanner"
	"github.com/otiai10/copy"
)

// Manager is a durability/consistency-warning backing:
// an append-only write-ahead log of committed evictions and
// consistency warnings, plus checkpoints that snapshot the pager's
// backing directory the same way this package's earlier recovery manager snapshotted the database folder. It implements evict.DurabilityLog,
// so an evict.Engine can be handed a *Manager directly as
// Engine.Durability.
//
// Unlike a KV write-ahead log, this carries no per-transaction
// undo stack and no redo/undo replay: the eviction core commits a page
// exactly once and never rolls an eviction back - the core does
// not attempt recovery - so there is nothing here to undo. What
// remains is strictly the durability ledger - what got evicted, what
// went wrong - and the checkpoint/backscan machinery needed to read it
// back.
type Manager struct {
	logFile *os.File
	mtx     sync.Mutex
}

// NewManager opens (creating if necessary) the write-ahead log at
// logFilename.
func NewManager(logFilename string) (*Manager, error) {
	logFile, err := os.OpenFile(logFilename, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0666)
	if err != nil {
		return nil, err
	}
	return &Manager{logFile: logFile}, nil
}

// Close closes the underlying log file.
func (m *Manager) Close() error {
	return m.logFile.Close()
}

// flushLog serializes the specified log and immediately appends it to
// the end of log file on disk. Expects m.mtx to be locked.
func (m *Manager) flushLog(l log) error {
	if _, err := m.logFile.WriteString(l.toString()); err != nil {
		return err
	}
	return m.logFile.Sync()
}

// LogEvict implements evict.DurabilityLog: records that a page was
// durably committed to disk at addr/size by eviction.
func (m *Manager) LogEvict(addr, size int64) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return m.flushLog(evictLog{addr: addr, size: size})
}

// LogWarning implements evict.DurabilityLog: records a consistency
// warning against a page id, for the operator to investigate after
// the fact - the log itself never attempts to act on it.
func (m *Manager) LogWarning(pageID uint64, cause error) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	causeStr := "unknown"
	if cause != nil {
		causeStr = cause.Error()
	}
	return m.flushLog(warnLog{pageID: pageID, cause: causeStr})
}

// Checkpoint records the tree's current root address/size to the log
// and snapshots dir to a sibling "-recovery" directory, mirroring the
// Checkpoint/delta pairing this package has used before: the log entry marks the moment
// recoverable state begins, the directory copy is the state itself.
func (m *Manager) Checkpoint(dir string, rootAddr, rootSize int64) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	if err := m.flushLog(checkpointLog{rootAddr: rootAddr, rootSize: rootSize}); err != nil {
		return err
	}
	return snapshot(dir)
}

// snapshot copies dir to a sibling "-recovery" directory, discarding
// whatever snapshot was there before.
func snapshot(dir string) error {
	base := strings.TrimSuffix(filepath.Clean(dir), string(filepath.Separator))
	recoveryDir := base + "-recovery"
	if err := os.RemoveAll(recoveryDir); err != nil {
		return err
	}
	return copy.Copy(base, recoveryDir)
}

// Prime swaps dir for its "-recovery" snapshot if one exists, replacing
// dir's contents with the copy Checkpoint last took; with no snapshot it
// only makes sure dir exists. Returns the directory the caller should
// open.
func Prime(dir string) (string, error) {
	base := strings.TrimSuffix(filepath.Clean(dir), string(filepath.Separator))
	recoveryDir := base + "-recovery"
	if _, err := os.Stat(recoveryDir); err != nil {
		if os.IsNotExist(err) {
			return dir, os.MkdirAll(base, 0775)
		}
		return dir, err
	}
	if err := os.RemoveAll(base); err != nil {
		return dir, err
	}
	if err := copy.Copy(recoveryDir, base); err != nil {
		return dir, err
	}
	return dir, nil
}

// LastCheckpoint backscans the log for the most recent checkpoint
// entry, the same reverse-scan-to-last-checkpoint idiom a write-ahead log's
// checkpoint lookup typically used via icza/backscanner, simplified here since
// this log has no transaction bookkeeping to track while scanning.
func (m *Manager) LastCheckpoint() (rootAddr, rootSize int64, found bool, err error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	fstats, err := m.logFile.Stat()
	if err != nil {
		return 0, 0, false, err
	}
	scanner := backscanner.New(m.logFile, int(fstats.Size()))
	checkpointTarget := []byte("checkpoint")
	for {
		line, _, err := scanner.LineBytes()
		if err != nil {
			if err == io.EOF {
				return 0, 0, false, nil
			}
			return 0, 0, false, err
		}
		if !bytes.Contains(line, checkpointTarget) {
			continue
		}
		l, err := logFromString(string(line))
		if err != nil {
			return 0, 0, false, err
		}
		cl := l.(checkpointLog)
		return cl.rootAddr, cl.rootSize, true, nil
	}
}

// Tail returns up to n of the most recent log lines, newest last - for
// REPL/diagnostic inspection of what this process has durably
// recorded.
func (m *Manager) Tail(n int) ([]string, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	fstats, err := m.logFile.Stat()
	if err != nil {
		return nil, err
	}
	scanner := backscanner.New(m.logFile, int(fstats.Size()))
	lines := make([]string, 0, n)
	for len(lines) < n {
		line, _, err := scanner.Line()
		if err != nil {
			break
		}
		// Every record ends in a newline, so the scan from the end first
		// yields the empty text after the last one.
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}
	return lines, nil
}
