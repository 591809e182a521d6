package evict

import "sync/atomic"

// State is the four-valued reference-cell state from the data model.
type State int32

const (
	// StateOnDisk means the Ref's Addr/Size are authoritative and no
	// in-memory Page is owned.
	StateOnDisk State = iota
	// StateReading means the read path is materializing the page; this
	// package only ever observes it, never sets or clears it.
	StateReading
	// StateInMemory means Page is owned and reachable by readers.
	StateInMemory
	// StateLocked means this session holds exclusive access; no other
	// session may observe the Ref as InMemory while it holds this state.
	StateLocked
)

func (s State) String() string {
	switch s {
	case StateOnDisk:
		return "OnDisk"
	case StateReading:
		return "Reading"
	case StateInMemory:
		return "InMemory"
	case StateLocked:
		return "Locked"
	default:
		return "Invalid"
	}
}

// InvalidAddr is the sentinel on-disk address for a Ref that owns no
// storage - e.g. the root Ref of an empty tree.
const InvalidAddr int64 = -1

// Ref is the edge from a parent to a child: the reference cell from
// the data model. Every in-memory Page is owned by exactly one
// Ref; back-links from Page to Ref exist only for traversal
// convenience and never imply ownership.
type Ref struct {
	state atomic.Int32

	Addr int64
	Size int64
	Page *Page // owning pointer, valid when state != StateOnDisk
}

// NewRef constructs a Ref in the given initial state.
func NewRef(state State) *Ref {
	r := &Ref{}
	r.state.Store(int32(state))
	return r
}

// State reads the Ref's state with acquire semantics: the Ref's
// Addr/Size/Page fields are guaranteed consistent with whatever state
// is observed, because every publishing transition in this package
// writes those fields before the state transition.
func (r *Ref) State() State {
	return State(r.state.Load())
}

// setState performs a plain transition. Locked<->InMemory transitions
// need no fence beyond this: hazard readers publish their slot before
// re-checking the Ref state, so the Dekker-style pairing documented in
// the hazard-acquire ordering is what makes the plain store safe, not an explicit
// memory barrier here. Transitions that also publish Addr/Size/Page
// (the OnDisk and split-result cases) go through publish instead.
func (r *Ref) setState(s State) {
	r.state.Store(int32(s))
}

// publish writes addr/size/page before transitioning state, giving
// observers that load State() with acquire semantics a consistent view
// of all three fields.
func (r *Ref) publish(addr, size int64, page *Page, s State) {
	r.Addr = addr
	r.Size = size
	r.Page = page
	r.state.Store(int32(s))
}

// lock performs the InMemory->Locked transition C2 assumes the caller
// has already narrowed to. It is an unconditional store, not a CAS, per
// the caller is expected to have already determined the
// Ref is eligible (InMemory or already Locked by this session).
func (r *Ref) lock() {
	r.setState(StateLocked)
}
