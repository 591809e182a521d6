package evict

import "sync/atomic"

// Stats holds the observability counters: plain struct fields
// bumped with sync/atomic, in the style this module's concurrency and
// recovery packages already assert on directly rather than through a
// metrics library.
type Stats struct {
	EvictUnmodified atomic.Int64 // cache_evict_unmodified
	EvictModified   atomic.Int64 // cache_evict_modified
	HazardRetries   atomic.Int64 // rec_hazard
}
