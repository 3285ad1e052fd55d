package hashtrie

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Key is a normalized byte-string key representation. It is backed by a Go
// string (not []byte) so that it satisfies the built-in comparable
// constraint and can be used directly as the K type parameter of Trie,
// Map, and Set.
//
// Integer encoding policy
// -----------------------
// All integer constructors produce an 8-byte big-endian representation
// (most-significant byte first). To keep comparisons order-preserving
// across signed and unsigned types and across different integer widths,
// every integer constructor adds an offset of 1<<63 before encoding the
// numeric value. For signed constructors the value is first converted to
// int64, for unsigned constructors it is treated as uint64; in both cases
// the offset is added and the resulting unsigned 64-bit value is written
// big-endian into the Key.
//
// This mapping has two useful properties:
//   - Lexicographic byte-wise comparison of Keys corresponds to numeric
//     ordering of the original values (taking signedness into account).
//   - Values produced from different source widths are comparable (for
//     example FromInt32(x) equals FromInt64(x) for the same numeric x).
//
// Both properties hold for every signed value and for unsigned values below
// 1<<63. Adding the offset to an unsigned value of 1<<63 or more wraps
// around, so such a Key sorts below the negative values and equals the Key
// of a negative signed value (FromUint64(1<<63) == FromInt64(math.MinInt64)).
type Key string

// FromBytes returns a Key built from the given bytes.
func FromBytes(b []byte) Key { return Key(string(b)) }

// FromString returns a Key built from s after normalizing it to Unicode
// NFC, so two differently-composed but canonically-equal strings produce
// the same Key.
func FromString(s string) Key { return Key(norm.NFC.String(s)) }

const int64Offset = uint64(1) << 63

func encode64(u uint64) Key {
	b := [8]byte{
		byte(u >> 56), byte(u >> 48), byte(u >> 40), byte(u >> 32),
		byte(u >> 24), byte(u >> 16), byte(u >> 8), byte(u),
	}
	return Key(b[:])
}

// FromInt converts an int to an 8-byte big-endian, order-preserving Key.
func FromInt(i int) Key { return encode64(uint64(int64(i)) + int64Offset) }

// FromInt64 converts an int64 to an 8-byte big-endian, order-preserving Key.
func FromInt64(i int64) Key { return encode64(uint64(i) + int64Offset) }

// FromInt32 converts an int32 to an 8-byte big-endian, order-preserving Key.
func FromInt32(i int32) Key { return encode64(uint64(int64(i)) + int64Offset) }

// FromInt16 converts an int16 to an 8-byte big-endian, order-preserving Key.
func FromInt16(i int16) Key { return encode64(uint64(int64(i)) + int64Offset) }

// FromInt8 converts an int8 to an 8-byte big-endian, order-preserving Key.
func FromInt8(i int8) Key { return encode64(uint64(int64(i)) + int64Offset) }

// FromUint converts a uint to an 8-byte big-endian, order-preserving Key.
func FromUint(u uint) Key { return encode64(uint64(u) + int64Offset) }

// FromUint64 converts a uint64 to an 8-byte big-endian, order-preserving Key.
func FromUint64(u uint64) Key { return encode64(u + int64Offset) }

// FromUint32 converts a uint32 to an 8-byte big-endian, order-preserving Key.
func FromUint32(u uint32) Key { return encode64(uint64(u) + int64Offset) }

// FromUint16 converts a uint16 to an 8-byte big-endian, order-preserving Key.
func FromUint16(u uint16) Key { return encode64(uint64(u) + int64Offset) }

// FromUint8 converts a uint8 to an 8-byte big-endian, order-preserving Key.
func FromUint8(u uint8) Key { return encode64(uint64(u) + int64Offset) }

// FromByte is an alias for FromUint8.
func FromByte(b byte) Key { return FromUint8(b) }

// FromRune converts a rune to its UTF-8 encoding as a Key.
func FromRune(r rune) Key { return Key(string(r)) }

// Bytes returns the Key's contents as a byte slice copy.
func (k Key) Bytes() []byte { return []byte(k) }

// String returns the Key as uppercase hex byte tuples, e.g. "[01,AB,00]".
func (k Key) String() string {
	if len(k) == 0 {
		return "[]"
	}
	var sb strings.Builder
	sb.WriteByte('[')
	const hex = "0123456789ABCDEF"
	for i := 0; i < len(k); i++ {
		if i > 0 {
			sb.WriteByte(',')
		}
		b := k[i]
		sb.WriteByte(hex[b>>4])
		sb.WriteByte(hex[b&0x0F])
	}
	sb.WriteByte(']')
	return sb.String()
}

// Equal reports whether k and other have the same contents.
func (k Key) Equal(other Key) bool { return k == other }

// LessThan reports whether k is lexicographically less than other. Kept as
// a value-level utility only (e.g. for deterministic test fixtures);
// ordered iteration and range queries over a trie are a non-goal (§1) and
// Key.LessThan is never used to implement one.
func (k Key) LessThan(other Key) bool { return k < other }

// IsEmpty returns whether the Key is empty.
func (k Key) IsEmpty() bool { return len(k) == 0 }
