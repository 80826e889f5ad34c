package arg

import (
	"bytes"
	"testing"

	"github.com/rsms/go-testutil"
)

func TestWriteBulkArgString(t *testing.T) {
	assert := testutil.NewAssert(t)
	var buf bytes.Buffer
	assert.Ok("write", WriteBulkArg(&buf, "str", true) == nil)
	assert.Eq("encoding", buf.String(), "$3\r\nstr\r\n")
}

func TestWriteBulkArgReservedNull(t *testing.T) {
	assert := testutil.NewAssert(t)
	var buf bytes.Buffer
	err := WriteBulkArg(&buf, "\x00bad", true)
	assert.Ok("rejected", err != nil)
	ae, ok := err.(*Error)
	assert.Ok("is *Error", ok)
	assert.Eq("kind", string(ae.Kind), string(ErrReservedNull))
	assert.Eq("no bytes written", buf.Len(), 0)
}

func TestWriteBulkArgReservedNullOnlyWhenMarkersEnabled(t *testing.T) {
	assert := testutil.NewAssert(t)
	var buf bytes.Buffer
	assert.Ok("write", WriteBulkArg(&buf, "\x00bad", false) == nil)
}

func TestWriteBulkArgInts(t *testing.T) {
	assert := testutil.NewAssert(t)
	for _, v := range []interface{}{int(1), int8(2), int16(3), int64(5)} {
		var buf bytes.Buffer
		assert.Ok("write", WriteBulkArg(&buf, v, true) == nil)
	}
}

// rune is an alias for int32 in Go, so a bare int32 value is indistinguishable
// from a rune and takes the character encoding, not the integer one.
func TestWriteBulkArgRuneIsCharNotInt(t *testing.T) {
	assert := testutil.NewAssert(t)
	var buf bytes.Buffer
	assert.Ok("write", WriteBulkArg(&buf, int32('x'), true) == nil)
	assert.Eq("encoding", buf.String(), "$1\r\nx\r\n")
}

func TestWriteBulkArgNilMarkersOn(t *testing.T) {
	assert := testutil.NewAssert(t)
	var buf bytes.Buffer
	assert.Ok("write", WriteBulkArg(&buf, nil, true) == nil)
	assert.Eq("encoding", buf.String(), "$2\r\n\x00_\r\n")
}

func TestWriteBulkArgNilMarkersOff(t *testing.T) {
	assert := testutil.NewAssert(t)
	var buf bytes.Buffer
	err := WriteBulkArg(&buf, nil, false)
	assert.Ok("rejected", err != nil)
	ae, _ := err.(*Error)
	assert.Eq("kind", string(ae.Kind), string(ErrUnsupportedArgType))
}

func TestWriteBulkArgBytesMarker(t *testing.T) {
	assert := testutil.NewAssert(t)
	var buf bytes.Buffer
	assert.Ok("write", WriteBulkArg(&buf, []byte{97, 98, 99}, true) == nil)
	assert.Eq("encoding", buf.String(), "$5\r\n\x00<abc\r\n")
}

func TestWriteBulkArgBytesNoMarker(t *testing.T) {
	assert := testutil.NewAssert(t)
	var buf bytes.Buffer
	assert.Ok("write", WriteBulkArg(&buf, []byte{97, 98, 99}, false) == nil)
	assert.Eq("encoding", buf.String(), "$3\r\nabc\r\n")
}

func TestWriteBulkArgRawBytesNeverMarked(t *testing.T) {
	assert := testutil.NewAssert(t)
	rb, err := ToBytes([]byte{97, 98, 99})
	assert.Ok("wrap", err == nil)
	var buf bytes.Buffer
	assert.Ok("write", WriteBulkArg(&buf, rb, true) == nil)
	assert.Eq("encoding", buf.String(), "$3\r\nabc\r\n")
}

func TestToBytesIdempotent(t *testing.T) {
	assert := testutil.NewAssert(t)
	rb1, _ := ToBytes([]byte{1, 2, 3})
	rb2, err := ToBytes(rb1)
	assert.Ok("no error", err == nil)
	assert.Eq("same bytes", string(rb2.Bytes), string(rb1.Bytes))
}

func TestToBytesRejectsNonBytes(t *testing.T) {
	assert := testutil.NewAssert(t)
	_, err := ToBytes("not bytes")
	assert.Ok("rejected", err != nil)
}

func TestToFrozenIdempotentSameOpts(t *testing.T) {
	assert := testutil.NewAssert(t)
	f1, err := ToFrozen(nil, "hello")
	assert.Ok("no error", err == nil)
	f2, err := ToFrozen(nil, f1)
	assert.Ok("no error", err == nil)
	assert.Ok("same instance", f1 == f2)
}

func TestWriteBulkArgFrozenMarked(t *testing.T) {
	assert := testutil.NewAssert(t)
	f, err := ToFrozen(nil, "hi")
	assert.Ok("no error", err == nil)
	var buf bytes.Buffer
	assert.Ok("write", WriteBulkArg(&buf, f, true) == nil)
	assert.Ok("has npy marker", bytes.Contains(buf.Bytes(), []byte{0x00, 0x3E, 'N', 'P', 'Y', 0x00}))
}

func TestWriteBulkArgFrozenUnmarked(t *testing.T) {
	assert := testutil.NewAssert(t)
	f, err := ToFrozen(nil, "hi")
	assert.Ok("no error", err == nil)
	var buf bytes.Buffer
	assert.Ok("write", WriteBulkArg(&buf, f, false) == nil)
	assert.Ok("no npy marker", !bytes.Contains(buf.Bytes(), []byte{0x00, 0x3E, 'N', 'P', 'Y', 0x00}))
}

func TestWriteBulkArgIndependentOfMarkersForNonMarkerTypes(t *testing.T) {
	assert := testutil.NewAssert(t)
	for _, v := range []interface{}{"str", int64(7), 4.0} {
		var on, off bytes.Buffer
		assert.Ok("on", WriteBulkArg(&on, v, true) == nil)
		assert.Ok("off", WriteBulkArg(&off, v, false) == nil)
		assert.Eq("same bytes", on.String(), off.String())
	}
}

func TestWriteBulkArgName(t *testing.T) {
	assert := testutil.NewAssert(t)
	var buf bytes.Buffer
	assert.Ok("write", WriteBulkArg(&buf, Name{Name: "kw"}, true) == nil)
	assert.Eq("encoding", buf.String(), "$2\r\nkw\r\n")
}

func TestWriteBulkArgQualifiedName(t *testing.T) {
	assert := testutil.NewAssert(t)
	var buf bytes.Buffer
	assert.Ok("write", WriteBulkArg(&buf, Name{Ns: "ns", Name: "kw"}, true) == nil)
	assert.Eq("encoding", buf.String(), "$5\r\nns/kw\r\n")
}
