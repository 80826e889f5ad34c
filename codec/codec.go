// Package codec is the external serialization collaborator referenced by
// arg.Frozen: a freeze/thaw pair (see Freeze for when its output is
// deterministic). It is intentionally thin — a generic serialization
// framework is explicitly out of scope for this module — and delegates the
// actual encoding to github.com/rsms/go-json, walking composite values with
// reflection the same way the teacher's resp.Any marshaler walks slices and
// maps for RESP instead of JSON.
package codec

import (
	"fmt"
	"reflect"

	"github.com/rsms/go-json"
)

// Options controls how Freeze serializes a value. The zero value is the
// default: compact output, map keys in iteration order.
type Options struct {
	// SortMapKeys makes Freeze emit map keys in sorted order, so that two
	// freezes of an equal map produce byte-identical output. Off by default
	// to match the teacher's JsonEncoder, which does not sort.
	SortMapKeys bool
}

// Freeze serializes v into bytes using opts. The same (v, opts) pair yields
// the same bytes when v contains no maps, or when opts.SortMapKeys is set.
// With SortMapKeys off, map keys follow Go's map iteration order, so two
// freezes of the same map can produce different bytes.
func Freeze(v interface{}, opts Options) ([]byte, error) {
	b := json.Builder{}
	if err := encodeAny(&b, reflect.ValueOf(v), opts); err != nil {
		return nil, err
	}
	if b.Err != nil {
		return nil, b.Err
	}
	return b.Bytes(), nil
}

// Thaw deserializes data (as produced by Freeze) into out, which must be a
// non-nil pointer. Only bool, integer, float and string targets are
// decoded; any other kind (slice, map, struct, ...) returns an error.
func Thaw(data []byte, out interface{}) error {
	r := json.Reader{}
	r.ResetBytes(data)
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("codec: Thaw requires a non-nil pointer, got %T", out)
	}
	if err := decodeAny(&r, rv.Elem()); err != nil {
		return err
	}
	return r.Err
}

func encodeAny(b *json.Builder, v reflect.Value, opts Options) error {
	if !v.IsValid() {
		b.Null()
		return nil
	}
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface:
		if v.IsNil() {
			b.Null()
			return nil
		}
		return encodeAny(b, v.Elem(), opts)
	case reflect.Bool:
		b.Bool(v.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		b.Int(v.Int(), 64)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		b.Uint(v.Uint(), 64)
	case reflect.Float32:
		b.Float(v.Float(), 32)
	case reflect.Float64:
		b.Float(v.Float(), 64)
	case reflect.String:
		b.Str(v.String())
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.IsNil() {
			b.Null()
			return nil
		}
		if v.Type().Elem().Kind() == reflect.Uint8 {
			b.Str(string(v.Bytes()))
			return nil
		}
		b.StartArray()
		for i := 0; i < v.Len(); i++ {
			if err := encodeAny(b, v.Index(i), opts); err != nil {
				return err
			}
		}
		b.EndArray()
	case reflect.Map:
		if v.IsNil() {
			b.Null()
			return nil
		}
		b.StartObject()
		keys := v.MapKeys()
		if opts.SortMapKeys {
			sortMapKeys(keys)
		}
		for _, k := range keys {
			b.Key(fmt.Sprintf("%v", k.Interface()))
			if err := encodeAny(b, v.MapIndex(k), opts); err != nil {
				return err
			}
		}
		b.EndObject()
	case reflect.Struct:
		b.StartObject()
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if f.PkgPath != "" {
				continue // unexported
			}
			b.Key(f.Name)
			if err := encodeAny(b, v.Field(i), opts); err != nil {
				return err
			}
		}
		b.EndObject()
	default:
		return fmt.Errorf("codec: cannot freeze value of kind %s", v.Kind())
	}
	return nil
}

func decodeAny(r *json.Reader, v reflect.Value) error {
	switch v.Kind() {
	case reflect.Bool:
		v.SetBool(r.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v.SetInt(r.Int(64))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v.SetUint(r.Uint(64))
	case reflect.Float32, reflect.Float64:
		v.SetFloat(r.Float(64))
	case reflect.String:
		v.SetString(r.Str())
	default:
		return fmt.Errorf("codec: cannot thaw into kind %s", v.Kind())
	}
	return nil
}

func sortMapKeys(keys []reflect.Value) {
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0; j-- {
			a := fmt.Sprintf("%v", keys[j-1].Interface())
			b := fmt.Sprintf("%v", keys[j].Interface())
			if a <= b {
				break
			}
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
}
