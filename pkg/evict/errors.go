package evict

import "errors"

// ErrBusy is returned when exclusive access could not be acquired and
// the caller did not request Wait. Expected and recoverable: the
// eviction policy decides whether to retry.
var ErrBusy = errors.New("evict: could not acquire exclusive access")

// ErrRejected is returned when review determined the candidate's
// subtree cannot legally leave memory right now (a non-foldable
// in-memory child, a child held by another session, or a dirty
// Split/Empty child the parent doesn't yet know the shape of).
// Expected and recoverable, same as ErrBusy.
var ErrRejected = errors.New("evict: subtree is not eligible for eviction")

// AssertionError marks a detected-impossible state: the source treats
// these as fatal, and this package does not attempt recovery from them
// either. Evict recovers a panicking AssertionError only long enough to
// write a diagnostic dump, then re-panics.
type AssertionError struct {
	Msg string
}

func (e *AssertionError) Error() string {
	return "evict: assertion failed: " + e.Msg
}

func assertf(cond bool, msg string) {
	if !cond {
		panic(&AssertionError{Msg: msg})
	}
}
