// Package arg implements the polymorphic argument encoder described in
// spec.md §4.2: dispatch from an arbitrary host value to RESP3 wire bytes,
// including wrapper types that freeze an argument's encoding ahead of time.
//
// The dispatch is a single type switch over a closed set of Go types in
// WriteBulkArg, so the marker policy — whether a bulk payload gets a short
// magic prefix — lives in exactly one place. This mirrors the teacher's
// resp.Any, which uses a single MarshalRESP method with an internal type
// switch.
package arg

import (
	"fmt"
	"io"
	"reflect"

	"github.com/sanguivore-easyco/carmine/codec"
	"github.com/sanguivore-easyco/carmine/wire"
)

// Marker bytes, fixed two- or six-octet sequences prefixed inside bulk
// payloads when blob markers are enabled. See spec.md §4.2 and §6.
var (
	markerNil = []byte{0x00, 0x5F}                               // ba-nil
	markerBin = []byte{0x00, 0x3C}                                // ba-bin
	markerNpy = []byte{0x00, 0x3E, 'N', 'P', 'Y', 0x00}           // ba-npy
)

// ErrKind identifies a failure mode from the argument encoder.
type ErrKind string

const (
	ErrReservedNull       ErrKind = "reserved-null"
	ErrUnsupportedArgType ErrKind = "unsupported-arg-type"
)

// Error is returned by WriteBulkArg and the wrapper constructors.
type Error struct {
	Kind  ErrKind
	Value interface{}
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("arg: %s: %v (value %#v)", e.Kind, e.Cause, e.Value)
	}
	return fmt.Sprintf("arg: %s: %#v", e.Kind, e.Value)
}

func (e *Error) Unwrap() error { return e.Cause }

// Name is a keyword-like argument: a qualified name with an optional
// namespace, encoded as "ns/name" or just "name" when Ns is empty.
type Name struct {
	Ns   string
	Name string
}

func (n Name) String() string {
	if n.Ns == "" {
		return n.Name
	}
	return n.Ns + "/" + n.Name
}

// WriteBulkArg writes v to sink in RESP3 form, dispatching on its runtime
// type. markersEnabled controls whether raw byte arrays, nil, and
// otherwise-unencodable values get a blob marker prefix (spec.md §4.2).
//
// On any error, no partial bytes have been written for that argument.
func WriteBulkArg(sink io.Writer, v interface{}, markersEnabled bool) error {
	switch vv := v.(type) {
	case string:
		if markersEnabled && len(vv) > 0 && vv[0] == 0x00 {
			return &Error{Kind: ErrReservedNull, Value: vv}
		}
		return wire.WriteBulkBytes(sink, []byte(vv))
	case rune:
		return wire.WriteBulkBytes(sink, []byte(string(vv)))
	case Name:
		return wire.WriteBulkBytes(sink, []byte(vv.String()))
	case int:
		return wire.SimpleLong(sink, int64(vv))
	case int8:
		return wire.SimpleLong(sink, int64(vv))
	case int16:
		return wire.SimpleLong(sink, int64(vv))
	case int64:
		return wire.SimpleLong(sink, vv)
	case float32:
		return wire.BulkDouble(sink, float64(vv))
	case float64:
		return wire.BulkDouble(sink, vv)
	case RawBytes:
		return wire.WriteBulkBytes(sink, vv.Bytes)
	case *Frozen:
		if markersEnabled {
			return wire.WriteBulkBytesMarked(sink, markerNpy, vv.bytes)
		}
		return wire.WriteBulkBytes(sink, vv.bytes)
	case []byte:
		if !markersEnabled {
			return wire.WriteBulkBytes(sink, vv)
		}
		return wire.WriteBulkBytesMarked(sink, markerBin, vv)
	case nil:
		if !markersEnabled {
			return &Error{Kind: ErrUnsupportedArgType, Value: v}
		}
		_, err := sink.Write(buildMarkerOnly(markerNil))
		return err
	default:
		if deref, ok := reflectDeref(v); ok {
			return WriteBulkArg(sink, deref, markersEnabled)
		}
		if !markersEnabled {
			return &Error{Kind: ErrUnsupportedArgType, Value: v}
		}
		b, err := codec.Freeze(v, codec.Options{})
		if err != nil {
			return &Error{Kind: ErrUnsupportedArgType, Value: v, Cause: err}
		}
		return wire.WriteBulkBytesMarked(sink, markerNpy, b)
	}
}

// buildMarkerOnly returns "$<len>\r\n<marker>\r\n" for a marker written as
// the entire bulk payload (the nil case has no trailing payload bytes).
func buildMarkerOnly(marker []byte) []byte {
	var buf []byte
	buf = append(buf, '$')
	buf = append(buf, []byte(fmt.Sprintf("%d", len(marker)))...)
	buf = append(buf, '\r', '\n')
	buf = append(buf, marker...)
	buf = append(buf, '\r', '\n')
	return buf
}

// reflectDeref is used by callers that accept interface{} and want the
// WriteBulkArg dispatch to see through a single level of pointer
// indirection, matching the teacher's reflect.Ptr handling in
// resp.Any.MarshalRESP and encoder2.write.
func reflectDeref(v interface{}) (interface{}, bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr && !rv.IsNil() {
		return rv.Elem().Interface(), true
	}
	return v, false
}
