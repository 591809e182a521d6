package evict

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/icza/backscanner"
	"github.com/otiai10/copy"
)

// Diagnostics writes a postmortem artifact when an AssertionError
// panics out of Evict - the "logged as a consistency warning... cannot
// be cleanly rolled back" path, extended to cover genuine
// assertion failures too. Wiring it is optional: a nil *Diagnostics on
// Engine is a no-op.
//
// This is not crash recovery (still out of scope per spec.md's
// Non-goals) - it writes one best-effort artifact next to a fatal
// panic, the same "snapshot a directory aside before trouble"
// idiom pkg/recovery's checkpointing uses via otiai10/copy, plus a
// backscanner read of the trace file's tail, mirroring how
// recovery_manager.go backscans the write-ahead log to find the last
// checkpoint.
type Diagnostics struct {
	// Dir is the directory postmortem-<ts> subdirectories are created
	// under.
	Dir string
	// TraceFile, if set, is tailed for its last lines into the dump.
	TraceFile string
	// ScratchDir, if set, is copied into the dump wholesale.
	ScratchDir string
}

func (e *Engine) dumpDiagnostics(sess *Session, page *Page, cause error) {
	if e.Diagnostics == nil {
		return
	}
	if err := e.Diagnostics.dump(sess, page, cause); err != nil && e.Tracer != nil {
		e.Tracer.TraceConsistencyWarning(page, fmt.Errorf("diagnostics dump failed: %w", err))
	}
}

func (d *Diagnostics) dump(sess *Session, page *Page, cause error) error {
	dest := filepath.Join(d.Dir, fmt.Sprintf("postmortem-%d", time.Now().UnixNano()))
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return err
	}

	var sessionID string
	if sess != nil {
		sessionID = sess.ID.String()
	}
	summary := fmt.Sprintf("session=%s page=%d type=%v cause=%v\n", sessionID, page.ID(), page.Type, cause)
	if err := os.WriteFile(filepath.Join(dest, "cause.txt"), []byte(summary), 0o644); err != nil {
		return err
	}

	if d.TraceFile != "" {
		if tail, err := tailTraceFile(d.TraceFile, 64); err == nil {
			_ = os.WriteFile(filepath.Join(dest, "trace_tail.log"), []byte(strings.Join(tail, "\n")), 0o644)
		}
	}

	if d.ScratchDir != "" {
		_ = copy.Copy(d.ScratchDir, filepath.Join(dest, "scratch"))
	}

	return nil
}

func tailTraceFile(path string, maxLines int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	scanner := backscanner.New(f, int(info.Size()))
	lines := make([]string, 0, maxLines)
	for i := 0; i < maxLines; i++ {
		line, _, err := scanner.Line()
		if err != nil {
			break
		}
		lines = append(lines, line)
	}
	// backscanner yields newest-first; restore chronological order.
	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}
	return lines, nil
}
