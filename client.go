// Package carmine is a Redis client library built around a Sentinel-based
// master resolver (package sentinel) and a RESP3 request writer (packages
// wire, arg, request).
package carmine

import (
	"fmt"
	"time"

	"github.com/mediocregopher/radix/v3"
	"github.com/rsms/go-log"

	"github.com/sanguivore-easyco/carmine/sentinel"
)

// Client wires a sentinel-resolved master address to a pooled connection.
// It is adapted from the teacher's redis.Redis: where that struct dialed
// one or two fixed addresses, Client re-resolves its master through a
// sentinel.Spec before dialing, and again whenever Reopen is called (e.g.
// from an on-resolve-change observer).
type Client struct {
	Logger *log.Logger

	MasterName   string
	Spec         *sentinel.Spec
	ConnPoolSize int

	pool *radix.Pool
}

// Open resolves masterName via spec and opens a connection pool to the
// result.
func (c *Client) Open(masterName string, spec *sentinel.Spec, connPoolSize int) error {
	a, err := spec.ResolveMasterAddr(masterName, sentinel.Options{}, nil)
	if err != nil {
		return err
	}
	pool, err := radix.NewPool("tcp", a.String(), connPoolSize)
	if err != nil {
		return err
	}
	if c.Logger != nil {
		c.Logger.Info("connected to %s (master %s)", a, masterName)
	}
	return c.SetConnections(masterName, spec, connPoolSize, pool)
}

// OpenRetry calls Open until it succeeds, with a second's delay in between.
func (c *Client) OpenRetry(masterName string, spec *sentinel.Spec, connPoolSize int) {
	for {
		err := c.Open(masterName, spec, connPoolSize)
		if err == nil {
			return
		}
		if c.Logger != nil {
			c.Logger.Warn("%s; retrying in 1s", err)
		}
		time.Sleep(time.Second)
	}
}

// SetConnections adopts an already-open pool, the way the teacher's
// SetConnections adopted an already-dialed rwc/roc pair.
func (c *Client) SetConnections(masterName string, spec *sentinel.Spec, connPoolSize int, pool *radix.Pool) error {
	if c.pool != nil {
		return fmt.Errorf("carmine: already connected")
	}
	c.MasterName = masterName
	c.Spec = spec
	c.ConnPoolSize = connPoolSize
	c.pool = pool
	if c.Logger != nil {
		c.initErrLogging(pool)
	}
	return nil
}

func (c *Client) initErrLogging(p *radix.Pool) {
	p.ErrCh = make(chan error)
	go func(ch chan error, l *log.Logger) {
		for {
			// ErrCh closes when p.Close() is called.
			err, ok := <-ch
			if !ok {
				break
			}
			l.Warn("recovered pool error %v", err)
		}
		l.Debug("closed connection pool")
	}(p.ErrCh, c.Logger)
}

// Close closes the pool. The Client is unusable afterward.
func (c *Client) Close() error {
	err := c.pool.Close()
	c.pool = nil
	return err
}

// Do runs action a on the pooled connection.
func (c *Client) Do(a radix.Action) error {
	return c.pool.Do(a)
}

// Reopen re-resolves c.MasterName and replaces the pool with one dialed to
// the (possibly new) result, closing the old pool afterward. Callers that
// want this to happen automatically on failover should register an
// on-resolve-change handler (see sentinel.Callbacks) that calls Reopen.
func (c *Client) Reopen(opts sentinel.Options) error {
	a, err := c.Spec.ResolveMasterAddr(c.MasterName, opts, nil)
	if err != nil {
		return err
	}
	pool, err := radix.NewPool("tcp", a.String(), c.ConnPoolSize)
	if err != nil {
		return err
	}
	old := c.pool
	c.pool = pool
	if old != nil {
		old.Close()
	}
	if c.Logger != nil {
		c.initErrLogging(pool)
	}
	return nil
}
