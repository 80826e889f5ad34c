// Package sentinel implements the Sentinel-based master resolver
// described in spec.md §3-§7: a stateful resolver entity that tracks, per
// master name, an ordered list of candidate sentinel addresses and the
// last address it resolved to, backs those with attempt/outcome
// statistics, and dispatches layered observer callbacks as either changes.
package sentinel

import (
	"sync"

	"github.com/sanguivore-easyco/carmine/addr"
)

// Spec is the resolver entity of spec.md §3: it owns the sentinel address
// map, the resolved master address map, and both statistics tables for the
// lifetime of a client. It has no explicit teardown.
type Spec struct {
	// BaseOpts are the manager-scope resolver options, overridable per
	// request via the opts argument to ResolveMasterAddr.
	BaseOpts Options
	// ManagerCbs is the manager-scope observer table: consulted after
	// DefaultCallbacks and before any per-request table.
	ManagerCbs Callbacks

	sentinelAddrs *cell[map[string][]addr.Addr]
	resolvedAddrs *cell[map[string]addr.Addr]

	resolveStats  sync.Map // master name (string) -> *ResolveStats
	sentinelStats sync.Map // addr.String() -> *SentinelStats

	dial DialFunc
}

// New creates a Spec seeded with an initial sentinel address map (master
// name -> address list). dial may be nil, in which case DefaultDialFunc is
// used.
func New(initial map[string][]addr.Addr, opts Options, cbs Callbacks, dial DialFunc) *Spec {
	if dial == nil {
		dial = DefaultDialFunc
	}
	return &Spec{
		BaseOpts:      opts,
		ManagerCbs:    cbs,
		sentinelAddrs: newCell(addr.Clean(copyAddrMap(initial))),
		resolvedAddrs: newCell(map[string]addr.Addr{}),
		dial:          dial,
	}
}

func copyAddrMap(m map[string][]addr.Addr) map[string][]addr.Addr {
	out := make(map[string][]addr.Addr, len(m))
	for k, v := range m {
		out[k] = append([]addr.Addr(nil), v...)
	}
	return out
}

// GetSentinelAddrs returns a read-only snapshot of the sentinel address
// list for masterName. It performs no I/O.
func (s *Spec) GetSentinelAddrs(masterName string) []addr.Addr {
	m := s.sentinelAddrs.Load()
	return append([]addr.Addr(nil), m[masterName]...)
}

// GetMasterAddr returns the last address ResolveMasterAddr resolved
// masterName to, or the zero Addr and false if none has been resolved yet.
// It performs no I/O.
func (s *Spec) GetMasterAddr(masterName string) (addr.Addr, bool) {
	m := s.resolvedAddrs.Load()
	a, ok := m[masterName]
	return a, ok
}

// AddBack appends each of addrs to masterName's sentinel list (spec.md
// §4.4), firing on-sentinels-change if the list actually changed.
func (s *Spec) AddBack(cbs Callbacks, masterName string, addrs ...string) error {
	var ferr error
	s.mutateAddrs(s.cbLayers(cbs), masterName, func(list []addr.Addr) []addr.Addr {
		out, err := addr.AddBack(list, addrs...)
		if err != nil {
			ferr = err
			return list
		}
		return out
	})
	return ferr
}

// AddFront promotes a to the head of masterName's sentinel list, firing
// on-sentinels-change if the list actually changed.
func (s *Spec) AddFront(cbs Callbacks, masterName, a string) error {
	var ferr error
	s.mutateAddrs(s.cbLayers(cbs), masterName, func(list []addr.Addr) []addr.Addr {
		out, err := addr.AddFront(list, a)
		if err != nil {
			ferr = err
			return list
		}
		return out
	})
	return ferr
}

// Remove drops all occurrences of a from masterName's sentinel list,
// firing on-sentinels-change if the list actually changed.
func (s *Spec) Remove(cbs Callbacks, masterName, a string) error {
	var ferr error
	s.mutateAddrs(s.cbLayers(cbs), masterName, func(list []addr.Addr) []addr.Addr {
		out, err := addr.Remove(list, a)
		if err != nil {
			ferr = err
			return list
		}
		return out
	})
	return ferr
}

// mutateAddrs applies fn to masterName's sentinel list under the cell's
// CAS loop, firing on-sentinels-change exactly once if the result differs
// from the prior value (spec.md §5 invariant: the sentinel address map is
// only mutated through operations that compare old vs new).
func (s *Spec) mutateAddrs(cbs []Callbacks, masterName string, fn func([]addr.Addr) []addr.Addr) {
	before, after := s.sentinelAddrs.Update(func(cur map[string][]addr.Addr) map[string][]addr.Addr {
		out := copyAddrMap(cur)
		out[masterName] = fn(cur[masterName])
		return out
	})
	if !addrListEqual(before[masterName], after[masterName]) {
		oldList, newList := before[masterName], after[masterName]
		dispatch(cbs, EventSentinelsChange, func() Event {
			return Event{ID: EventSentinelsChange, MasterName: masterName, Old: oldList, New: newList, Spec: s}
		})
	}
}

// ResetMasterAddr replaces the resolved master address for masterName. If
// the value actually changed, it fires on-resolve-change and increments
// n-changes (spec.md §3, §4.5 step 5).
func (s *Spec) ResetMasterAddr(cbs Callbacks, masterName string, a addr.Addr) {
	before, after := s.resolvedAddrs.Update(func(cur map[string]addr.Addr) map[string]addr.Addr {
		out := make(map[string]addr.Addr, len(cur)+1)
		for k, v := range cur {
			out[k] = v
		}
		out[masterName] = a
		return out
	})
	oldAddr, hadOld := before[masterName]
	newAddr := after[masterName]
	if !hadOld || !oldAddr.Equal(newAddr) {
		s.resolveStatsFor(masterName).NChanges.Add(1)
		dispatch(s.cbLayers(cbs), EventResolveChange, func() Event {
			return Event{ID: EventResolveChange, MasterName: masterName, Old: oldAddr, New: newAddr, Spec: s}
		})
	}
}

// cbLayers builds the three-layer dispatch order: process-wide,
// manager-scope, per-request.
func (s *Spec) cbLayers(requestCbs Callbacks) []Callbacks {
	return layeredCallbacks(DefaultCallbacks, s.ManagerCbs, requestCbs)
}

func (s *Spec) resolveStatsFor(masterName string) *ResolveStats {
	v, _ := s.resolveStats.LoadOrStore(masterName, &ResolveStats{})
	return v.(*ResolveStats)
}

func (s *Spec) sentinelStatsFor(a addr.Addr) *SentinelStats {
	v, _ := s.sentinelStats.LoadOrStore(a.String(), &SentinelStats{})
	return v.(*SentinelStats)
}

// ResolveStatsSnapshot returns a snapshot (see ResolveStats.Snapshot) of
// resolution statistics for masterName.
func (s *Spec) ResolveStatsSnapshot(masterName string) ResolveStatsSnapshot {
	return s.resolveStatsFor(masterName).Snapshot()
}

// SentinelStatsSnapshot returns a snapshot (see SentinelStats.Snapshot) of
// per-sentinel statistics for a.
func (s *Spec) SentinelStatsSnapshot(a addr.Addr) SentinelStatsSnapshot {
	return s.sentinelStatsFor(a).Snapshot()
}

func addrListEqual(a, b []addr.Addr) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
