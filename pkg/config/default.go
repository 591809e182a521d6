// Global database config.
package config

// Name of the database.
const DBName = "mothball"

// Prompt printed by REPL.
const Prompt = DBName + "> "

// The maximum number of pages that can be in the pager's buffer at once.
const MaxPagesInBuffer = 32

// Name of log file.
const LogFileName = "db.log"

// The maximum number of hazard slots a single eviction session may hold
// at once. Mirrors MaxPagesInBuffer's role of bounding a fixed-size
// shared array.
const MaxHazardSlotsPerSession = 4

// The maximum number of sessions the process-wide hazard table is
// sized for.
const MaxEvictionSessions = 64

// HazardSpinYields is a soft threshold: a Wait-flagged eviction call
// that spins past this many hazard retries fires a trace hook (it is
// not enforced as a hard cap - Wait spins indefinitely per spec).
const HazardSpinYields = 1000

// Return prompt if requested, else "".
func GetPrompt(flag bool) string {
	if flag {
		return Prompt
	}
	return ""
}
