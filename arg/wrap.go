package arg

import (
	"sync"

	"github.com/sanguivore-easyco/carmine/codec"
)

// RawBytes wraps a byte array to be written verbatim as a bulk string,
// bypassing serialization and marker logic entirely (spec.md §3, §4.2).
type RawBytes struct {
	Bytes []byte
}

// ToBytes wraps ba for verbatim bulk-string encoding. It is idempotent: if
// ba is already a RawBytes the same wrapper is returned unchanged. Any
// non-byte-array input fails with ErrUnsupportedArgType.
func ToBytes(v interface{}) (RawBytes, error) {
	switch vv := v.(type) {
	case RawBytes:
		return vv, nil
	case []byte:
		return RawBytes{Bytes: vv}, nil
	default:
		return RawBytes{}, &Error{Kind: ErrUnsupportedArgType, Value: v}
	}
}

// Frozen wraps a value together with the codec options used to serialize
// it and the eagerly-computed serialized bytes, so that any error in
// serialization surfaces at wrap time rather than mid-request (spec.md
// §4.2 "Failure modes").
type Frozen struct {
	value interface{}
	opts  codec.Options
	bytes []byte
}

// Value returns the original, unserialized value.
func (f *Frozen) Value() interface{} { return f.value }

// Opts returns the codec options used to produce Bytes.
func (f *Frozen) Opts() codec.Options { return f.opts }

// Bytes returns the eagerly-computed serialized payload.
func (f *Frozen) Bytes() []byte { return f.bytes }

// dynamicOpts holds the ambient freeze-options resolved by Dynamic. It is
// the one piece of global state this package carries; it is process-wide,
// not goroutine-local, so a binding is visible to every goroutine while it
// is in effect. Bind/restore is via DynamicOpts.
var dynamicOpts struct {
	mu  sync.RWMutex
	set bool
	val codec.Options
}

// Dynamic is a distinguished sentinel value for to-frozen's opts parameter:
// it resolves from the current dynamic freeze-options binding, or the zero
// Options if none is in effect.
var Dynamic = &struct{ dynamicMarker bool }{true}

// DynamicOpts binds opts as the ambient freeze-options for the duration of
// fn, restoring the previous binding (or unbinding) when fn returns.
func DynamicOpts(opts codec.Options, fn func()) {
	dynamicOpts.mu.Lock()
	prevSet, prevVal := dynamicOpts.set, dynamicOpts.val
	dynamicOpts.set, dynamicOpts.val = true, opts
	dynamicOpts.mu.Unlock()

	defer func() {
		dynamicOpts.mu.Lock()
		dynamicOpts.set, dynamicOpts.val = prevSet, prevVal
		dynamicOpts.mu.Unlock()
	}()
	fn()
}

func resolveOpts(opts interface{}) codec.Options {
	if opts == Dynamic {
		dynamicOpts.mu.RLock()
		defer dynamicOpts.mu.RUnlock()
		if dynamicOpts.set {
			return dynamicOpts.val
		}
		return codec.Options{}
	}
	if o, ok := opts.(codec.Options); ok {
		return o
	}
	return codec.Options{}
}

// ToFrozen serializes value with opts eagerly and returns the wrapper. If
// value is already a *Frozen wrapped with an equal opts, the same wrapper
// is returned unchanged (idempotent); with different opts it is
// re-serialized. opts may be the Dynamic sentinel, in which case the
// currently-bound dynamic freeze-options apply (or the zero Options if none
// is bound).
func ToFrozen(opts interface{}, value interface{}) (*Frozen, error) {
	resolved := resolveOpts(opts)

	if f, ok := value.(*Frozen); ok {
		if f.opts == resolved {
			return f, nil
		}
		value = f.value
	}

	b, err := codec.Freeze(value, resolved)
	if err != nil {
		return nil, &Error{Kind: ErrUnsupportedArgType, Value: value, Cause: err}
	}
	return &Frozen{value: value, opts: resolved, bytes: b}, nil
}
