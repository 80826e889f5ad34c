package sentinel

import (
	"time"

	"github.com/sanguivore-easyco/carmine/addr"
)

// ErrKind identifies a resolver failure mode (spec.md §7).
type ErrKind string

const (
	// ErrNoSentinelAddrs is returned when the spec has no sentinel
	// addresses on file for the requested master name.
	ErrNoSentinelAddrs ErrKind = "no-sentinel-addrs-in-spec"
	// ErrResolveTimeout is returned when timeout-ms elapses without a
	// confirmed master.
	ErrResolveTimeout ErrKind = "resolve-timeout"
	// ErrUnreachable is an internal per-attempt bucket; it is folded into
	// a SentinelStats counter and never escapes ResolveMasterAddr on its
	// own.
	ErrUnreachable ErrKind = "unreachable"
)

// Error is returned by ResolveMasterAddr, carrying the structured data
// payload described in spec.md §7.
type Error struct {
	Kind ErrKind
	Data map[string]interface{}
}

func (e *Error) Error() string { return "sentinel: " + string(e.Kind) }

// AttemptLogEntry records one attempt made during a resolution round, plus
// the synthetic "retry-after-sleep" and "timeout" entries appended at round
// boundaries (spec.md §4.5, §7).
type AttemptLogEntry struct {
	Attempt  int
	Sentinel addr.Addr
	Kind     string // "", "unreachable", "ignorant", "misidentified", "retry-after-sleep", "timeout"
	Duration time.Duration
}

const (
	bucketUnreachable   = "unreachable"
	bucketIgnorant      = "ignorant"
	bucketMisidentified = "misidentified"
)

// ResolveMasterAddr is the core algorithm of spec.md §4.5: it walks
// masterName's sentinel list in order, confirms any reported candidate
// with ROLE before trusting it, and retries after the merged retry delay
// until waiting another delay would exceed the merged timeout (requestOpts
// over s.BaseOpts over DefaultOptions), measured from the start of the call.
func (s *Spec) ResolveMasterAddr(masterName string, requestOpts Options, requestCbs Callbacks) (addr.Addr, error) {
	opts := Merge(requestOpts, s.BaseOpts, DefaultOptions())
	cbs := s.cbLayers(requestCbs)
	rstats := s.resolveStatsFor(masterName)
	rstats.NRequests.Add(1)

	sentinels := s.GetSentinelAddrs(masterName)
	if len(sentinels) == 0 {
		return s.failResolve(masterName, cbs, opts, rstats, &Error{
			Kind: ErrNoSentinelAddrs,
			Data: map[string]interface{}{"master-name": masterName},
		})
	}

	start := time.Now()
	var log []AttemptLogEntry

	for {
		a, ok, reportedBy, gossip := s.tryRound(masterName, sentinels, opts, &log, rstats)
		if ok {
			s.promote(cbs, masterName, reportedBy, gossip, opts)
			rstats.NSuccesses.Add(1)
			dispatch(cbs, EventResolveSuccess, func() Event {
				return Event{ID: EventResolveSuccess, MasterName: masterName, New: a, Spec: s, Opts: opts}
			})
			s.ResetMasterAddr(requestCbs, masterName, a)
			return a, nil
		}

		elapsed := time.Since(start)
		timeout := time.Duration(opts.TimeoutMs) * time.Millisecond
		retryDelay := time.Duration(opts.RetryDelayMs) * time.Millisecond
		if elapsed+retryDelay > timeout {
			log = append(log, AttemptLogEntry{Attempt: len(log), Kind: "timeout", Duration: elapsed})
			nAttempts := 0
			for _, e := range log {
				if e.Kind != "retry-after-sleep" && e.Kind != "timeout" {
					nAttempts++
				}
			}
			return s.failResolve(masterName, cbs, opts, rstats, &Error{
				Kind: ErrResolveTimeout,
				Data: map[string]interface{}{
					"master-name":    masterName,
					"n-attempts":     nAttempts,
					"attempt-log":    log,
					"sentinel-stats": s.sentinelStatsSnapshots(sentinels),
				},
			})
		}
		log = append(log, AttemptLogEntry{Attempt: len(log), Kind: "retry-after-sleep", Duration: retryDelay})
		time.Sleep(retryDelay)
	}
}

func (s *Spec) failResolve(masterName string, cbs []Callbacks, opts Options, rstats *ResolveStats, err *Error) (addr.Addr, error) {
	rstats.NErrors.Add(1)
	dispatch(cbs, EventResolveError, func() Event {
		return Event{ID: EventResolveError, MasterName: masterName, Err: err, Spec: s, Opts: opts}
	})
	return addr.Addr{}, err
}

// tryRound makes one pass over sentinels, stopping at the first one that
// reports a candidate confirmed as master via ROLE.
func (s *Spec) tryRound(masterName string, sentinels []addr.Addr, opts Options, log *[]AttemptLogEntry, rstats *ResolveStats) (master addr.Addr, ok bool, reportedBy addr.Addr, gossip map[addr.Addr]bool) {
	gossip = map[addr.Addr]bool{}
	for _, sa := range sentinels {
		rstats.NAttempts.Add(1)
		sstats := s.sentinelStatsFor(sa)
		sstats.NAttempts.Add(1)

		attemptStart := time.Now()
		m, bucket, g := s.attemptSentinel(sa, masterName, opts)

		switch bucket {
		case bucketUnreachable:
			sstats.NUnreachable.Add(1)
			sstats.NErrors.Add(1)
			*log = append(*log, AttemptLogEntry{Attempt: len(*log), Sentinel: sa, Kind: bucket, Duration: time.Since(attemptStart)})
			continue
		case bucketIgnorant:
			sstats.NIgnorant.Add(1)
			*log = append(*log, AttemptLogEntry{Attempt: len(*log), Sentinel: sa, Kind: bucket, Duration: time.Since(attemptStart)})
			for _, ga := range g {
				gossip[ga] = true
			}
			continue
		}

		for _, ga := range g {
			gossip[ga] = true
		}

		role := s.confirmRole(m, opts)
		if role == "master" {
			sstats.NSuccesses.Add(1)
			*log = append(*log, AttemptLogEntry{Attempt: len(*log), Sentinel: sa, Kind: "", Duration: time.Since(attemptStart)})
			return m, true, sa, gossip
		}

		sstats.NMisidentified.Add(1)
		sstats.NErrors.Add(1)
		*log = append(*log, AttemptLogEntry{Attempt: len(*log), Sentinel: sa, Kind: bucketMisidentified, Duration: time.Since(attemptStart)})
	}
	return addr.Addr{}, false, addr.Addr{}, gossip
}

// attemptSentinel dials sa and asks it for masterName's current master,
// plus (if requested) its list of known peer sentinels.
func (s *Spec) attemptSentinel(sa addr.Addr, masterName string, opts Options) (master addr.Addr, bucket string, gossip []addr.Addr) {
	conn, err := s.dial(sa, opts.ConnOpts)
	if err != nil {
		return addr.Addr{}, bucketUnreachable, nil
	}
	defer conn.Close()

	m, ok, err := conn.GetMasterAddrByName(masterName)
	if err != nil {
		return addr.Addr{}, bucketUnreachable, nil
	}

	// Gossip is collected regardless of whether this sentinel knows the
	// master (spec.md §4.5 step 3b sends it "additionally"), so an ignorant
	// sentinel's peer list still feeds the address list (spec.md §8).
	if opts.AddMissingSentinels {
		if descs, err := conn.Sentinels(masterName); err == nil {
			for _, d := range descs {
				if d.IP == "" || d.Port == "" {
					continue
				}
				if a, err := addr.New(d.IP, d.Port); err == nil {
					gossip = append(gossip, a)
				}
			}
		}
	}

	if !ok {
		return addr.Addr{}, bucketIgnorant, gossip
	}

	return m, "", gossip
}

// confirmRole dials m and issues ROLE (spec.md §4.5 step 4). A connection
// failure here is treated as a non-master role rather than a fatal error
// (spec.md §9 open question): the round simply records misidentified and
// moves on.
func (s *Spec) confirmRole(m addr.Addr, opts Options) string {
	conn, err := s.dial(m, opts.ConnOpts)
	if err != nil {
		return ""
	}
	defer conn.Close()
	role, err := conn.Role()
	if err != nil {
		return ""
	}
	return role
}

// promote moves the sentinel that reported the confirmed master to the
// front of masterName's list, and (when requested) appends any gossiped
// peers to the back (spec.md §4.5 step 5).
func (s *Spec) promote(cbs []Callbacks, masterName string, reportedBy addr.Addr, gossip map[addr.Addr]bool, opts Options) {
	s.mutateAddrs(cbs, masterName, func(list []addr.Addr) []addr.Addr {
		out := addr.AddFrontAddr(list, reportedBy)
		if opts.AddMissingSentinels && len(gossip) > 0 {
			extra := make([]addr.Addr, 0, len(gossip))
			for a := range gossip {
				extra = append(extra, a)
			}
			out = addr.AddBackAddr(out, extra...)
		}
		return out
	})
}

func (s *Spec) sentinelStatsSnapshots(addrs []addr.Addr) map[string]SentinelStatsSnapshot {
	out := make(map[string]SentinelStatsSnapshot, len(addrs))
	for _, a := range addrs {
		out[a.String()] = s.sentinelStatsFor(a).Snapshot()
	}
	return out
}
