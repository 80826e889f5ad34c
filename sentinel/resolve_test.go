package sentinel

import (
	"testing"

	"github.com/rsms/go-testutil"
	"github.com/sanguivore-easyco/carmine/addr"
)

// fakeConn is a test double for SentinelConn with canned answers, used to
// exercise resolve paths that the three magic hostnames in conn.go can't
// reach (e.g. "a real-looking sentinel that reports a specific master").
type fakeConn struct {
	master    addr.Addr
	hasMaster bool
	role      string
	descs     []SentinelDescriptor
}

func (c fakeConn) GetMasterAddrByName(string) (addr.Addr, bool, error) {
	return c.master, c.hasMaster, nil
}
func (c fakeConn) Sentinels(string) ([]SentinelDescriptor, error) { return c.descs, nil }
func (c fakeConn) Role() (string, error)                          { return c.role, nil }
func (c fakeConn) Close() error                                   { return nil }

func makeTestDial(byAddr map[string]SentinelConn) DialFunc {
	return func(a addr.Addr, opts ConnOpts) (SentinelConn, error) {
		if c, ok := byAddr[a.String()]; ok {
			return c, nil
		}
		return DefaultDialFunc(a, opts)
	}
}

// TestResolveSuccessAfterOneIgnorant is spec.md §8 scenario 6.
func TestResolveSuccessAfterOneIgnorant(t *testing.T) {
	assert := testutil.NewAssert(t)

	master, err := addr.New("10.0.0.5", "6379")
	assert.Ok("parse master", err == nil)
	sentinelB, err := addr.New("127.0.0.1", "26379")
	assert.Ok("parse sentinelB", err == nil)

	dial := makeTestDial(map[string]SentinelConn{
		sentinelB.String(): fakeConn{master: master, hasMaster: true},
		master.String():    fakeConn{role: "master"},
	})

	initial := map[string][]addr.Addr{
		"mymaster": {{Host: "ignorant"}, sentinelB},
	}
	spec := New(initial, Options{}, nil, dial)

	var changeFired, successFired int
	cbs := Callbacks{
		EventResolveChange:  func(Event) { changeFired++ },
		EventResolveSuccess: func(Event) { successFired++ },
	}

	got, err := spec.ResolveMasterAddr("mymaster", Options{}, cbs)
	assert.Ok("no error", err == nil)
	assert.Ok("resolved to candidate", got.Equal(master))
	assert.Eq("resolve-change fired once", changeFired, 1)
	assert.Eq("resolve-success fired once", successFired, 1)

	list := spec.GetSentinelAddrs("mymaster")
	assert.Ok("promoted to head", len(list) > 0 && list[0].Equal(sentinelB))

	resolved, ok := spec.GetMasterAddr("mymaster")
	assert.Ok("GetMasterAddr reflects result", ok && resolved.Equal(master))
}

// TestResolveTimeoutAllUnreachable is spec.md §8 scenario 7.
func TestResolveTimeoutAllUnreachable(t *testing.T) {
	assert := testutil.NewAssert(t)

	sentinels := []addr.Addr{{Host: "unreachable", Port: 0}, {Host: "unreachable", Port: 1}}
	initial := map[string][]addr.Addr{"mymaster": sentinels}
	opts := Options{}.WithTimeoutMs(100).WithRetryDelayMs(40)
	spec := New(initial, opts, nil, nil)

	_, err := spec.ResolveMasterAddr("mymaster", Options{}, nil)
	assert.Ok("errored", err != nil)

	serr, ok := err.(*Error)
	assert.Ok("is *sentinel.Error", ok)
	assert.Eq("kind", string(serr.Kind), string(ErrResolveTimeout))

	stats, ok := serr.Data["sentinel-stats"].(map[string]SentinelStatsSnapshot)
	assert.Ok("has sentinel-stats", ok)

	var totalUnreachable int64
	for _, st := range stats {
		totalUnreachable += st.NUnreachable
	}
	n := int64(len(sentinels))
	rounds := totalUnreachable / n
	assert.Ok("at least two rounds", rounds >= 2)
	assert.Eq("n-unreachable == N x rounds", totalUnreachable, n*rounds)
}

func TestResolveNoSentinelAddrs(t *testing.T) {
	assert := testutil.NewAssert(t)
	spec := New(nil, Options{}, nil, nil)
	_, err := spec.ResolveMasterAddr("mymaster", Options{}, nil)
	assert.Ok("errored", err != nil)
	serr, ok := err.(*Error)
	assert.Ok("is *sentinel.Error", ok)
	assert.Eq("kind", string(serr.Kind), string(ErrNoSentinelAddrs))
}

func TestResolveMisidentifiedThenRetryTimesOut(t *testing.T) {
	assert := testutil.NewAssert(t)
	initial := map[string][]addr.Addr{"mymaster": {{Host: "misidentified"}}}
	opts := Options{}.WithTimeoutMs(60).WithRetryDelayMs(30)
	spec := New(initial, opts, nil, nil)

	_, err := spec.ResolveMasterAddr("mymaster", Options{}, nil)
	assert.Ok("errored", err != nil)

	st := spec.SentinelStatsSnapshot(addr.Addr{Host: "misidentified"})
	assert.Ok("recorded at least one misidentified", st.NMisidentified > 0)
}
