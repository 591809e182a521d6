package recovery

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

/*
   Logs come in the following forms:

	 EVICT log -- records a page this process durably committed to
	 disk by eviction;
	 < evict addr size >

	 WARN log -- records a consistency warning raised after a page had
	 already left its parent, logged rather than rolled back since the
	 eviction has already committed;
	 < warn pageID cause >

	 CHECKPOINT log -- records the tree's current root address/size,
	 alongside a snapshot of the backing pager directory;
	 < checkpoint rootAddr rootSize >
*/

// Interface that all log structs share.
type log interface {
	toString() string // Serializes the log to a string
}

// Log for a durably committed eviction.
type evictLog struct {
	addr int64
	size int64
}

func (el evictLog) toString() string {
	return fmt.Sprintf("< evict %v %v >\n", el.addr, el.size)
}

// Log for a consistency warning raised against a page.
type warnLog struct {
	pageID uint64
	cause  string
}

func (wl warnLog) toString() string {
	return fmt.Sprintf("< warn %v %s >\n", wl.pageID, sanitizeCause(wl.cause))
}

// Log for a checkpoint of the tree's root.
type checkpointLog struct {
	rootAddr int64
	rootSize int64
}

func (cl checkpointLog) toString() string {
	return fmt.Sprintf("< checkpoint %v %v >\n", cl.rootAddr, cl.rootSize)
}

// sanitizeCause collapses a cause string to something the single-line
// log format can round-trip: no angle brackets, no newlines.
func sanitizeCause(cause string) string {
	out := make([]rune, 0, len(cause))
	for _, r := range cause {
		switch r {
		case '\n', '\r', '<', '>':
			out = append(out, '_')
		default:
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return "unknown"
	}
	return string(out)
}

var evictExp = regexp.MustCompile(`< evict (-?\d+) (\d+) >`)
var warnExp = regexp.MustCompile(`< warn (\d+) (.*) >`)
var checkpointExp = regexp.MustCompile(`< checkpoint (-?\d+) (\d+) >`)

// Convert the textual representation of a log to its respective struct.
// Returns an error if the string could not be parsed into a log.
func logFromString(s string) (log, error) {
	switch {
	case evictExp.MatchString(s):
		m := evictExp.FindStringSubmatch(s)
		addr, _ := strconv.ParseInt(m[1], 10, 64)
		size, _ := strconv.ParseInt(m[2], 10, 64)
		return evictLog{addr: addr, size: size}, nil
	case checkpointExp.MatchString(s):
		m := checkpointExp.FindStringSubmatch(s)
		rootAddr, _ := strconv.ParseInt(m[1], 10, 64)
		rootSize, _ := strconv.ParseInt(m[2], 10, 64)
		return checkpointLog{rootAddr: rootAddr, rootSize: rootSize}, nil
	case warnExp.MatchString(s):
		m := warnExp.FindStringSubmatch(s)
		pageID, _ := strconv.ParseUint(m[1], 10, 64)
		return warnLog{pageID: pageID, cause: m[2]}, nil
	default:
		return nil, errors.New("could not parse log")
	}
}
