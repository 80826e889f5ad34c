// Package wire implements the low-level RESP3 writers: length-prefixed
// bulk strings, simple-long integers, bulk-encoded doubles, and raw bulk
// byte payloads. Everything here is a pure function over an io.Writer; none
// of it knows about command framing or argument dispatch, that lives in
// the request and arg packages.
//
// See https://redis.io/topics/protocol for the wire format.
package wire

import (
	"bytes"
	"io"
	"strconv"
)

var delim = []byte{'\r', '\n'}

const (
	arrayPrefix  = '*'
	bulkPrefix   = '$'
	simpleLongP  = ':'
	smallCacheLo = -32768
	smallCacheHi = 32767
	lenCacheMax  = 255
)

// smallInts holds precomputed ":<n>\r\n" encodings for n in
// [smallCacheLo, smallCacheHi], indexed by n-smallCacheLo. Correctness never
// depends on this cache; it only exists to avoid strconv.AppendInt on the
// hot path for small values.
var smallInts [][]byte

// bulkLens and arrayLens hold precomputed "$<n>\r\n" / "*<n>\r\n" encodings
// for n in [0, lenCacheMax].
var bulkLens [lenCacheMax + 1][]byte
var arrayLens [lenCacheMax + 1][]byte

func init() {
	smallInts = make([][]byte, smallCacheHi-smallCacheLo+1)
	for i := range smallInts {
		smallInts[i] = appendSimpleLong(nil, int64(i+smallCacheLo))
	}
	for i := 0; i <= lenCacheMax; i++ {
		bulkLens[i] = appendLenPrefix(nil, bulkPrefix, i)
		arrayLens[i] = appendLenPrefix(nil, arrayPrefix, i)
	}
}

func appendLenPrefix(buf []byte, prefix byte, n int) []byte {
	buf = append(buf, prefix)
	buf = strconv.AppendInt(buf, int64(n), 10)
	return append(buf, delim...)
}

func appendSimpleLong(buf []byte, n int64) []byte {
	buf = append(buf, simpleLongP)
	buf = strconv.AppendInt(buf, n, 10)
	return append(buf, delim...)
}

// ArrayLen writes "*<n>\r\n" to w.
func ArrayLen(w io.Writer, n int) error {
	if n >= 0 && n <= lenCacheMax {
		_, err := w.Write(arrayLens[n])
		return err
	}
	_, err := w.Write(appendLenPrefix(nil, arrayPrefix, n))
	return err
}

// BulkLen writes "$<n>\r\n" to w.
func BulkLen(w io.Writer, n int) error {
	if n >= 0 && n <= lenCacheMax {
		_, err := w.Write(bulkLens[n])
		return err
	}
	_, err := w.Write(appendLenPrefix(nil, bulkPrefix, n))
	return err
}

// SimpleLong writes ":<n>\r\n" to w.
func SimpleLong(w io.Writer, n int64) error {
	if n >= smallCacheLo && n <= smallCacheHi {
		_, err := w.Write(smallInts[n-smallCacheLo])
		return err
	}
	_, err := w.Write(appendSimpleLong(nil, n))
	return err
}

// BulkDouble writes "$<len>\r\n<decimal>\r\n" where <decimal> is the
// shortest round-tripping textual form of d, always carrying a decimal
// point (strconv's shortest form drops it for integral values).
func BulkDouble(w io.Writer, d float64) error {
	buf := strconv.AppendFloat(make([]byte, 0, 32), d, 'f', -1, 64)
	if !bytes.ContainsAny(buf, ".eE") {
		buf = append(buf, '.', '0')
	}
	return WriteBulkBytes(w, buf)
}

// WriteBulkBytes writes "$<len>\r\n<ba>\r\n" where len = len(ba).
func WriteBulkBytes(w io.Writer, ba []byte) error {
	if err := BulkLen(w, len(ba)); err != nil {
		return err
	}
	if len(ba) > 0 {
		if _, err := w.Write(ba); err != nil {
			return err
		}
	}
	_, err := w.Write(delim)
	return err
}

// WriteBulkBytesMarked writes "$<marker_len+payload_len>\r\n<marker><payload>\r\n",
// used to prefix serialized blobs with a short magic marker sequence without
// having to concatenate marker and payload first.
func WriteBulkBytesMarked(w io.Writer, marker, payload []byte) error {
	if err := BulkLen(w, len(marker)+len(payload)); err != nil {
		return err
	}
	if len(marker) > 0 {
		if _, err := w.Write(marker); err != nil {
			return err
		}
	}
	if len(payload) > 0 {
		if _, err := w.Write(payload); err != nil {
			return err
		}
	}
	_, err := w.Write(delim)
	return err
}
