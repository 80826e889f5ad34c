package sentinel

import (
	"bufio"
	"fmt"
	"net"
	"time"

	"github.com/sanguivore-easyco/carmine/addr"
	"github.com/sanguivore-easyco/carmine/request"
)

// ConnOpts configures how the resolver dials transient connections to
// sentinels and to a candidate master for the ROLE check. These are never
// pooled: the target is a Sentinel (or a ROLE check against a candidate),
// not a data connection (spec.md §1's connection-pooling non-goal is about
// the data path, not this).
type ConnOpts struct {
	Network string        // defaults to "tcp"
	Timeout time.Duration // dial timeout, defaults to 5s
}

// SentinelDescriptor is the subset of a SENTINEL sentinels reply entry the
// resolver cares about (spec.md §4.5 step 3c, "gossip").
type SentinelDescriptor struct {
	IP   string
	Port string
}

// SentinelConn is the thin interface the resolver needs from a connection
// to a single sentinel or candidate master: enough to issue the three
// commands named in spec.md §6 (SENTINEL get-master-addr-by-name, SENTINEL
// sentinels, ROLE) without a full reply-parser dependency.
type SentinelConn interface {
	GetMasterAddrByName(masterName string) (a addr.Addr, ok bool, err error)
	Sentinels(masterName string) ([]SentinelDescriptor, error)
	Role() (role string, err error)
	Close() error
}

// DialFunc opens a transient SentinelConn to a. The three simulated
// testing hostnames "unreachable", "ignorant", and "misidentified"
// (spec.md §4.5 step 3c, §8) are handled by DefaultDialFunc without any
// network I/O; custom DialFuncs used in tests are expected to do the same.
type DialFunc func(a addr.Addr, opts ConnOpts) (SentinelConn, error)

// DefaultDialFunc dials a real TCP connection to a, or short-circuits to
// canned, network-free behavior for the three simulated testing hostnames.
// A "misidentified" sentinel reports a candidate master that itself
// resolves (via the same short-circuit) to host "misidentified", so the
// subsequent ROLE check also completes without touching the network.
func DefaultDialFunc(a addr.Addr, opts ConnOpts) (SentinelConn, error) {
	switch a.Host {
	case "unreachable":
		return nil, &Error{Kind: ErrUnreachable, Data: map[string]interface{}{"addr": a.String()}}
	case "ignorant":
		return ignorantConn{}, nil
	case "misidentified":
		return misidentifiedConn{}, nil
	}

	network := opts.Network
	if network == "" {
		network = "tcp"
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	nc, err := net.DialTimeout(network, a.String(), timeout)
	if err != nil {
		return nil, err
	}
	return &wireConn{nc: nc, r: bufio.NewReader(nc), w: request.NewBuffered(nc)}, nil
}

// ignorantConn simulates a sentinel that has no opinion about the master
// (spec.md §8 scenario 6): it answers but reports no candidate.
type ignorantConn struct{}

func (ignorantConn) GetMasterAddrByName(string) (addr.Addr, bool, error) { return addr.Addr{}, false, nil }
func (ignorantConn) Sentinels(string) ([]SentinelDescriptor, error)      { return nil, nil }
func (ignorantConn) Role() (string, error)                               { return "master", nil }
func (ignorantConn) Close() error                                        { return nil }

// misidentifiedConn simulates a sentinel that reports a candidate whose
// ROLE check then comes back non-master.
type misidentifiedConn struct{}

func (misidentifiedConn) GetMasterAddrByName(string) (addr.Addr, bool, error) {
	return addr.Addr{Host: "misidentified", Port: 6379}, true, nil
}
func (misidentifiedConn) Sentinels(string) ([]SentinelDescriptor, error) { return nil, nil }
func (misidentifiedConn) Role() (string, error)                         { return "slave", nil }
func (misidentifiedConn) Close() error                                  { return nil }

// wireConn is the real, network-backed SentinelConn, using request.Flusher
// to write commands and replyReader to decode their replies.
type wireConn struct {
	nc net.Conn
	r  *bufio.Reader
	w  request.Flusher
}

func (c *wireConn) send(args ...interface{}) error {
	return request.WriteRequests(c.w, [][]interface{}{args}, false)
}

func (c *wireConn) GetMasterAddrByName(masterName string) (addr.Addr, bool, error) {
	if err := c.send("SENTINEL", "get-master-addr-by-name", masterName); err != nil {
		return addr.Addr{}, false, err
	}
	rr := newReplyReader(c.r)
	n := rr.ArrayHeader()
	if rr.Err() != nil {
		return addr.Addr{}, false, rr.Err()
	}
	if n < 0 {
		return addr.Addr{}, false, nil
	}
	if n != 2 {
		return addr.Addr{}, false, fmt.Errorf("sentinel: unexpected get-master-addr-by-name reply length %d", n)
	}
	host := rr.Str()
	port := rr.Str()
	if rr.Err() != nil {
		return addr.Addr{}, false, rr.Err()
	}
	a, err := addr.New(host, port)
	return a, true, err
}

func (c *wireConn) Sentinels(masterName string) ([]SentinelDescriptor, error) {
	if err := c.send("SENTINEL", "sentinels", masterName); err != nil {
		return nil, err
	}
	rr := newReplyReader(c.r)
	return rr.SentinelDescriptors()
}

func (c *wireConn) Role() (string, error) {
	if err := c.send("ROLE"); err != nil {
		return "", err
	}
	rr := newReplyReader(c.r)
	n := rr.ArrayHeader()
	if rr.Err() != nil {
		return "", rr.Err()
	}
	if n < 1 {
		return "", fmt.Errorf("sentinel: empty ROLE reply")
	}
	role := rr.Str()
	for i := 1; i < n; i++ {
		rr.Discard()
	}
	return role, rr.Err()
}

func (c *wireConn) Close() error { return c.nc.Close() }
