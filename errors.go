package ainb

import (
	"errors"
	"fmt"
)

// Fatal error sentinels. Each is returned (optionally wrapped with
// positional context) from a decode call that cannot produce a complete
// object; decode never returns a half-built AINB.
var (
	// ErrInvalidMagic is returned when the 4-byte file or EXB magic does
	// not match the expected value.
	ErrInvalidMagic = errors.New("ainb: invalid magic")

	// ErrUnsupportedVersion is returned when the version dword is outside
	// the set of versions this package understands.
	ErrUnsupportedVersion = errors.New("ainb: unsupported version")

	// ErrOutOfBounds is returned when a read would exceed the buffer.
	// Reads are not checked for alignment.
	ErrOutOfBounds = errors.New("ainb: read out of bounds")

	// ErrInvalidUtf8 is returned when a string pulled from the string pool
	// is not valid UTF-8.
	ErrInvalidUtf8 = errors.New("ainb: invalid utf-8 in string pool")

	// ErrNoStringPool is returned when a string offset is resolved before
	// the pool has been installed on the reader.
	ErrNoStringPool = errors.New("ainb: string pool not installed")

	// ErrInvalidEnumValue is returned when a discriminator byte or word
	// does not match any known variant (node kind, plug type, replacement
	// type, BBParam type, and so on).
	ErrInvalidEnumValue = errors.New("ainb: invalid enum value")

	// ErrInvalidDefaultCase is returned when a selector's last child plug
	// does not carry the expected default-case payload.
	ErrInvalidDefaultCase = errors.New("ainb: selector default plug has the wrong payload shape")

	// ErrInvalidReference is returned when a transition plug's transition
	// index falls outside the transition table.
	ErrInvalidReference = errors.New("ainb: reference index out of range")

	// ErrDictDecode is returned on structural or type mismatches while
	// decoding the JSON interchange form.
	ErrDictDecode = errors.New("ainb: malformed JSON interchange value")
)

// OutOfBoundsError carries the offending offset and read size alongside
// ErrOutOfBounds so callers can report useful diagnostics.
type OutOfBoundsError struct {
	Offset int
	Size   int
	Len    int
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("ainb: read of %d byte(s) at offset %#x exceeds buffer length %#x", e.Size, e.Offset, e.Len)
}

func (e *OutOfBoundsError) Unwrap() error { return ErrOutOfBounds }

func outOfBounds(offset, size, length int) error {
	return &OutOfBoundsError{Offset: offset, Size: size, Len: length}
}

// VersionError names the unsupported value it rejected.
type VersionError struct {
	Got uint32
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("ainb: unsupported version %#x", e.Got)
}

func (e *VersionError) Unwrap() error { return ErrUnsupportedVersion }

// MagicError names the 4 bytes actually found in place of a magic value.
type MagicError struct {
	Want string
	Got  []byte
}

func (e *MagicError) Error() string {
	return fmt.Sprintf("ainb: expected magic %q, got %q", e.Want, e.Got)
}

func (e *MagicError) Unwrap() error { return ErrInvalidMagic }
