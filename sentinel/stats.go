package sentinel

import "sync/atomic"

// ResolveStats holds per-master-name resolution counters (spec.md §3, §5).
// Counters are monotonically non-decreasing; Snapshot copies every field
// into a plain value, loading each counter atomically on its own, so under
// concurrent updates the fields are not read at one single instant.
type ResolveStats struct {
	NRequests  atomic.Int64
	NAttempts  atomic.Int64
	NSuccesses atomic.Int64
	NErrors    atomic.Int64
	NChanges   atomic.Int64
}

// ResolveStatsSnapshot is a plain-value copy of ResolveStats.
type ResolveStatsSnapshot struct {
	NRequests, NAttempts, NSuccesses, NErrors, NChanges int64
}

func (s *ResolveStats) Snapshot() ResolveStatsSnapshot {
	return ResolveStatsSnapshot{
		NRequests:  s.NRequests.Load(),
		NAttempts:  s.NAttempts.Load(),
		NSuccesses: s.NSuccesses.Load(),
		NErrors:    s.NErrors.Load(),
		NChanges:   s.NChanges.Load(),
	}
}

// SentinelStats holds per-sentinel-address counters (spec.md §3, §5): how
// many attempts reached this address, and how each one was bucketed.
type SentinelStats struct {
	NAttempts      atomic.Int64
	NSuccesses     atomic.Int64
	NErrors        atomic.Int64
	NIgnorant      atomic.Int64
	NUnreachable   atomic.Int64
	NMisidentified atomic.Int64
	NOtherErrors   atomic.Int64
}

// SentinelStatsSnapshot is a plain-value copy of SentinelStats.
type SentinelStatsSnapshot struct {
	NAttempts, NSuccesses, NErrors, NIgnorant, NUnreachable, NMisidentified, NOtherErrors int64
}

func (s *SentinelStats) Snapshot() SentinelStatsSnapshot {
	return SentinelStatsSnapshot{
		NAttempts:      s.NAttempts.Load(),
		NSuccesses:     s.NSuccesses.Load(),
		NErrors:        s.NErrors.Load(),
		NIgnorant:      s.NIgnorant.Load(),
		NUnreachable:   s.NUnreachable.Load(),
		NMisidentified: s.NMisidentified.Load(),
		NOtherErrors:   s.NOtherErrors.Load(),
	}
}
