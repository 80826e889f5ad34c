// Package request implements the RESP3 request writer (spec.md §4.3): given
// an ordered sequence of command argument lists, it frames each non-empty
// list as "*<n>\r\n" followed by each argument via arg.WriteBulkArg, and
// flushes the sink exactly once after all lists are written.
package request

import (
	"bufio"
	"io"

	"github.com/sanguivore-easyco/carmine/arg"
	"github.com/sanguivore-easyco/carmine/wire"
)

// Flusher is satisfied by *bufio.Writer; sinks that don't buffer can be
// wrapped in bufio.NewWriter before being passed to WriteRequests.
type Flusher interface {
	io.Writer
	Flush() error
}

// WriteRequests frames each non-empty argument list in cmds as a RESP3
// array of bulk strings and flushes sink exactly once at the end. Empty
// argument lists are skipped: no bytes are emitted for them. markersEnabled
// is forwarded to arg.WriteBulkArg for every argument.
//
// A successful call produces a byte stream a RESP3 server parses as exactly
// k commands, where k is the number of non-empty lists in cmds, in order.
func WriteRequests(sink Flusher, cmds [][]interface{}, markersEnabled bool) error {
	for _, args := range cmds {
		if len(args) == 0 {
			continue
		}
		if err := wire.ArrayLen(sink, len(args)); err != nil {
			return err
		}
		for _, a := range args {
			if err := arg.WriteBulkArg(sink, a, markersEnabled); err != nil {
				return err
			}
		}
	}
	return sink.Flush()
}

// NewBuffered wraps w in a *bufio.Writer suitable for use as a Flusher.
func NewBuffered(w io.Writer) *bufio.Writer {
	return bufio.NewWriter(w)
}
