package ainb

import (
	"encoding/binary"
	"math"
	"unicode/utf8"
)

// Reader is a position-based cursor over a byte buffer with little-endian
// typed reads and a shared string pool. Decoding files that require enum
// resolution needs a Reader built over a mutable buffer, because enum
// resolution rewrites bytes at arbitrary offsets before the rest of the
// file is read.
type Reader struct {
	buf []byte
	pos int

	poolOffset int
	poolLen    int
	poolSet    bool
}

// NewReader wraps buf for read-only decoding. The returned Reader shares
// buf's backing array; callers that need to mutate bytes in place (enum
// resolution) must build the Reader over a buffer they own exclusively.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Len returns the size of the underlying buffer.
func (r *Reader) Len() int { return len(r.buf) }

// Tell returns the current cursor position.
func (r *Reader) Tell() int { return r.pos }

// Seek moves the cursor to an absolute offset. It does not itself bounds
// check; bounds are enforced on read.
func (r *Reader) Seek(offset int) { r.pos = offset }

// Bytes returns the full underlying buffer.
func (r *Reader) Bytes() []byte { return r.buf }

// SetStringPool installs the shared string pool used by ReadStringOffset
// and GetString: [offset, offset+length) within the underlying buffer.
func (r *Reader) SetStringPool(offset, length int) {
	r.poolOffset = offset
	r.poolLen = length
	r.poolSet = true
}

func (r *Reader) require(n int) error {
	if n < 0 || r.pos+n > len(r.buf) || r.pos < 0 {
		return outOfBounds(r.pos, n, len(r.buf))
	}
	return nil
}

// TempSeek moves the cursor to offset, invokes fn, and restores the
// original cursor on every exit path, including when fn returns an error.
func (r *Reader) TempSeek(offset int, fn func() error) error {
	saved := r.pos
	r.pos = offset
	defer func() { r.pos = saved }()
	return fn()
}

func (r *Reader) ReadU8() (uint8, error) {
	if err := r.require(1); err != nil {
		return 0, err
	}
	v := r.buf[r.pos]
	r.pos++
	return v, nil
}

func (r *Reader) ReadU16() (uint16, error) {
	if err := r.require(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(r.buf[r.pos:])
	r.pos += 2
	return v, nil
}

func (r *Reader) ReadS16() (int16, error) {
	v, err := r.ReadU16()
	return int16(v), err
}

func (r *Reader) ReadU32() (uint32, error) {
	if err := r.require(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *Reader) ReadS32() (int32, error) {
	v, err := r.ReadU32()
	return int32(v), err
}

func (r *Reader) ReadU64() (uint64, error) {
	if err := r.require(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(r.buf[r.pos:])
	r.pos += 8
	return v, nil
}

func (r *Reader) ReadF32() (float32, error) {
	v, err := r.ReadU32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// ReadVec3 reads three consecutive little-endian floats.
func (r *Reader) ReadVec3() ([3]float32, error) {
	var v [3]float32
	for i := range v {
		f, err := r.ReadF32()
		if err != nil {
			return v, err
		}
		v[i] = f
	}
	return v, nil
}

// ReadGUID reads a 16-byte GUID verbatim (byte order preserved, not
// re-interpreted as the Windows mixed-endian GUID layout).
func (r *Reader) ReadGUID() ([16]byte, error) {
	var g [16]byte
	if err := r.require(16); err != nil {
		return g, err
	}
	copy(g[:], r.buf[r.pos:r.pos+16])
	r.pos += 16
	return g, nil
}

// ReadBytes reads n raw bytes and advances the cursor.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if err := r.require(n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, r.buf[r.pos:r.pos+n])
	r.pos += n
	return out, nil
}

// GetString reads a zero-terminated UTF-8 string at an offset relative to
// the installed string pool, without moving the cursor.
func (r *Reader) GetString(poolRelativeOffset uint32) (string, error) {
	if !r.poolSet {
		return "", ErrNoStringPool
	}
	start := r.poolOffset + int(poolRelativeOffset)
	if poolRelativeOffset > uint32(r.poolLen) || start < r.poolOffset || start > r.poolOffset+r.poolLen {
		return "", outOfBounds(start, 0, len(r.buf))
	}
	end := start
	for end < len(r.buf) && r.buf[end] != 0 {
		end++
		if end > r.poolOffset+r.poolLen {
			return "", outOfBounds(end, 0, len(r.buf))
		}
	}
	if end >= len(r.buf) {
		return "", outOfBounds(end, 0, len(r.buf))
	}
	s := r.buf[start:end]
	if !utf8.Valid(s) {
		return "", ErrInvalidUtf8
	}
	return string(s), nil
}

// ReadStringOffset reads a 32-bit pool-relative offset at the cursor, then
// resolves it through GetString.
func (r *Reader) ReadStringOffset() (string, error) {
	off, err := r.ReadU32()
	if err != nil {
		return "", err
	}
	return r.GetString(off)
}

// Patch overwrites 4 bytes at an absolute offset with the little-endian
// encoding of v. Used exclusively by the enum resolver; it requires the
// Reader to have been built over a buffer the caller owns exclusively.
func (r *Reader) Patch(offset int, v int32) error {
	if offset < 0 || offset+4 > len(r.buf) {
		return outOfBounds(offset, 4, len(r.buf))
	}
	binary.LittleEndian.PutUint32(r.buf[offset:], uint32(v))
	return nil
}
