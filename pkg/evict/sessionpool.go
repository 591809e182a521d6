package evict

import "mothball/pkg/config"

// NewDefaultHazardTable sizes a HazardTable for config.MaxEvictionSessions
// sessions, each owning config.MaxHazardSlotsPerSession slots.
func NewDefaultHazardTable() *HazardTable {
	return NewHazardTable(uint(config.MaxEvictionSessions) * uint(config.MaxHazardSlotsPerSession))
}

// SessionPool hands out Sessions backed by disjoint slot ranges in a
// shared HazardTable, up to config.MaxEvictionSessions at a time.
type SessionPool struct {
	slotsPerSession uint
	next            uint
	max             uint
}

// NewSessionPool builds a pool sized to match a HazardTable built by
// NewDefaultHazardTable.
func NewSessionPool() *SessionPool {
	return &SessionPool{
		slotsPerSession: uint(config.MaxHazardSlotsPerSession),
		max:             uint(config.MaxEvictionSessions),
	}
}

// Acquire hands out the next free session's slot range. Returns nil
// once every session slot range has been handed out; the caller is
// expected to reuse Sessions across eviction calls rather than churn
// through the pool per call.
func (p *SessionPool) Acquire() *Session {
	if p.next >= p.max {
		return nil
	}
	sess := NewSession(p.next*p.slotsPerSession, p.slotsPerSession)
	p.next++
	return sess
}
