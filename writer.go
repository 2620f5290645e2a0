package ainb

import (
	"bytes"
	"encoding/binary"
	"math"
)

// Writer accumulates bytes for encode and supports deferred patching:
// reserve a 4-byte slot now, write its real value once it's known (once
// the referenced object has itself been emitted).
type Writer struct {
	buf bytes.Buffer
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer { return &Writer{} }

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return w.buf.Len() }

// Bytes returns the accumulated buffer. Valid only after all deferred
// patches have been resolved.
func (w *Writer) Bytes() []byte { return w.buf.Bytes() }

func (w *Writer) WriteU8(v uint8) { w.buf.WriteByte(v) }

func (w *Writer) WriteU16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf.Write(b[:])
}

func (w *Writer) WriteS16(v int16) { w.WriteU16(uint16(v)) }

func (w *Writer) WriteU32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

func (w *Writer) WriteS32(v int32) { w.WriteU32(uint32(v)) }

func (w *Writer) WriteU64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
}

func (w *Writer) WriteF32(v float32) { w.WriteU32(math.Float32bits(v)) }

func (w *Writer) WriteVec3(v [3]float32) {
	for _, f := range v {
		w.WriteF32(f)
	}
}

func (w *Writer) WriteGUID(g [16]byte) { w.buf.Write(g[:]) }

func (w *Writer) WriteBytes(b []byte) { w.buf.Write(b) }

// Pad writes n zero bytes.
func (w *Writer) Pad(n int) {
	for i := 0; i < n; i++ {
		w.buf.WriteByte(0)
	}
}

// DeferredU32 reserves a 4-byte slot and returns a token used to patch it
// once the real value is known.
type DeferredU32 struct {
	offset int
}

// ReserveU32 writes a placeholder zero dword and returns a patch token.
func (w *Writer) ReserveU32() DeferredU32 {
	d := DeferredU32{offset: w.buf.Len()}
	w.WriteU32(0)
	return d
}

// Patch overwrites a previously reserved dword with v. Must be called
// after ReserveU32 and before Bytes() is relied upon.
func (w *Writer) Patch(d DeferredU32, v uint32) {
	b := w.buf.Bytes()
	binary.LittleEndian.PutUint32(b[d.offset:], v)
}

// PatchHere is a convenience for "patch d with the writer's current
// length", the common case of deferred-patching an object's own offset.
func (w *Writer) PatchHere(d DeferredU32) {
	w.Patch(d, uint32(w.buf.Len()))
}

// StringPool accumulates distinct strings and assigns each one offset,
// zero-terminated, in first-seen order. Encoding relays the pool from
// observed strings; order need not match the original input.
type StringPool struct {
	offsets map[string]uint32
	buf     bytes.Buffer
}

// NewStringPool returns an empty pool.
func NewStringPool() *StringPool {
	return &StringPool{offsets: make(map[string]uint32)}
}

// Offset returns s's offset within the pool, appending it (plus a
// terminating zero) on first use.
func (p *StringPool) Offset(s string) uint32 {
	if off, ok := p.offsets[s]; ok {
		return off
	}
	off := uint32(p.buf.Len())
	p.buf.WriteString(s)
	p.buf.WriteByte(0)
	p.offsets[s] = off
	return off
}

// Bytes returns the accumulated pool contents.
func (p *StringPool) Bytes() []byte { return p.buf.Bytes() }

// Len returns the pool's current byte length.
func (p *StringPool) Len() int { return p.buf.Len() }
