package evict

import "github.com/google/uuid"

// Session identifies the thread-of-control driving one Evict call, the
// generalization of the Transaction.clientId pattern
// (pkg/concurrency) to eviction. Each session owns a contiguous range
// of hazard slots and a scratch buffer it reuses across calls, per the
// "Scratch memory for the hazard snapshot is session-local and reused"
// resource note.
type Session struct {
	ID uuid.UUID

	slotBase uint
	slots    uint

	scratch []*Page
}

// NewSession allocates a session owning the hazard-slot range
// [slotBase, slotBase+slots).
func NewSession(slotBase, slots uint) *Session {
	return &Session{
		ID:       uuid.New(),
		slotBase: slotBase,
		slots:    slots,
		scratch:  make([]*Page, 0, 8),
	}
}
