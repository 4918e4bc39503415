// Package proto implements the fixed-order little-endian wire encoding for
// commands and state records. Every payload starts with a format version
// byte and a kind byte; fields follow in declaration order with 32-bit
// floats, single-byte booleans, and uint16-length-prefixed strings.
package proto

import (
	"encoding/binary"
	"math"
)

// Version is the wire format revision written into every payload.
const Version = 1

// Payload kind identifiers.
const (
	KindMoveCommand      byte = 1
	KindJumpCommand      byte = 2
	KindHeartbeatCommand byte = 3

	KindPlayerRecord      byte = 16
	KindCollectibleRecord byte = 17
	KindTerrainState      byte = 18
)

// MaxStringLen is the longest string the uint16 length prefix can carry.
// Intake clamps player-supplied strings to this bound before they reach
// world state, so every encoded record round-trips exactly.
const MaxStringLen = 1<<16 - 1

type writer struct {
	buf []byte
}

func newWriter(version, kind byte) *writer {
	return &writer{buf: []byte{version, kind}}
}

func (w *writer) bytes() []byte { return w.buf }

func (w *writer) u8(v byte) {
	w.buf = append(w.buf, v)
}

func (w *writer) u16(v uint16) {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
}

func (w *writer) u32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

func (w *writer) u64(v uint64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
}

func (w *writer) i32(v int32) {
	w.u32(uint32(v))
}

func (w *writer) i64(v int64) {
	w.u64(uint64(v))
}

func (w *writer) f32(v float32) {
	w.u32(math.Float32bits(v))
}

func (w *writer) boolean(v bool) {
	if v {
		w.u8(1)
	} else {
		w.u8(0)
	}
}

func (w *writer) str(v string) {
	// Last-resort guard; intake bounds strings before they reach state.
	if len(v) > MaxStringLen {
		v = v[:MaxStringLen]
	}
	w.u16(uint16(len(v)))
	w.buf = append(w.buf, v...)
}

// reader walks an untrusted buffer, latching the first failure so callers
// can chain field reads and check the error once.
type reader struct {
	buf []byte
	off int
	err *DecodeError
}

func newReader(buf []byte) *reader {
	return &reader{buf: buf}
}

func (r *reader) fail(what string) {
	if r.err == nil {
		r.err = decodeErr(what, ErrShortBuffer)
	}
}

func (r *reader) take(n int, what string) []byte {
	if r.err != nil {
		return nil
	}
	if r.off+n > len(r.buf) {
		r.fail(what)
		return nil
	}
	chunk := r.buf[r.off : r.off+n]
	r.off += n
	return chunk
}

func (r *reader) u8(what string) byte {
	chunk := r.take(1, what)
	if chunk == nil {
		return 0
	}
	return chunk[0]
}

func (r *reader) u16(what string) uint16 {
	chunk := r.take(2, what)
	if chunk == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(chunk)
}

func (r *reader) u32(what string) uint32 {
	chunk := r.take(4, what)
	if chunk == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(chunk)
}

func (r *reader) u64(what string) uint64 {
	chunk := r.take(8, what)
	if chunk == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(chunk)
}

func (r *reader) i32(what string) int32 {
	return int32(r.u32(what))
}

func (r *reader) i64(what string) int64 {
	return int64(r.u64(what))
}

func (r *reader) f32(what string) float32 {
	return math.Float32frombits(r.u32(what))
}

func (r *reader) boolean(what string) bool {
	return r.u8(what) != 0
}

func (r *reader) str(what string) string {
	length := int(r.u16(what))
	chunk := r.take(length, what)
	if chunk == nil {
		return ""
	}
	return string(chunk)
}

func (r *reader) remaining() int {
	return len(r.buf) - r.off
}

// header validates the version and kind prefix of a payload.
func (r *reader) header(wantKind byte, what string) {
	if r.err != nil {
		return
	}
	version := r.u8(what)
	if r.err != nil {
		return
	}
	if version != Version {
		r.err = decodeErr(what, ErrVersion)
		return
	}
	kind := r.u8(what)
	if r.err != nil {
		return
	}
	if kind != wantKind {
		r.err = decodeErr(what, ErrUnknownKind)
	}
}

func (r *reader) finish(what string) *DecodeError {
	if r.err != nil {
		return r.err
	}
	if r.remaining() != 0 {
		return decodeErr(what, ErrTrailingBytes)
	}
	return nil
}
