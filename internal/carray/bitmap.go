// Package carray implements the fixed-popcount child container and the
// bitword operations a HAMT branch node needs: a 32-bit occupancy bitmap
// (the default FlagWidth) plus a dense child vector sized exactly to its
// popcount.
package carray

import "math/bits"

// Bitmap is a 32-bit occupancy map, one bit per possible child slot at a
// branch node. Bit i is set iff a child exists for flag i.
type Bitmap uint32

// Width is the number of bits a Bitmap can address (the FlagWidth of the
// default concretization, §6 of the specification).
const Width = 32

// LogWidth is log2(Width); the number of hash bits consumed per trie depth.
const LogWidth = 5

// Flag is a single-bit Bitmap identifying one child slot.
type Flag = Bitmap

// NthBit returns the single-bit flag for bit position i (0..Width-1).
// It panics if i is out of range, mirroring the specification's
// BitInvariantViolation for an out-of-range nth_bit request.
func NthBit(i uint) Flag {
	if i >= Width {
		panic("carray: nth_bit index out of range")
	}
	return Flag(1) << i
}

// Popcount returns the number of set bits.
func (b Bitmap) Popcount() int {
	return bits.OnesCount32(uint32(b))
}

// Contains reports whether flag is present in b. Panics if flag does not
// have popcount exactly 1.
func (b Bitmap) Contains(flag Flag) bool {
	mustBeSingleBit(flag)
	return b&flag != 0
}

// Insert returns b with flag set. Panics if flag is already present or is
// not a single bit.
func (b Bitmap) Insert(flag Flag) Bitmap {
	mustBeSingleBit(flag)
	if b&flag != 0 {
		panic("carray: bitmap already contains flag")
	}
	return b | flag
}

// Remove returns b with flag cleared. Panics if flag is absent or is not a
// single bit.
func (b Bitmap) Remove(flag Flag) Bitmap {
	mustBeSingleBit(flag)
	if b&flag == 0 {
		panic("carray: bitmap does not contain flag")
	}
	return b &^ flag
}

// Index returns the dense slot position of flag within b: the number of
// set bits strictly below flag. Panics if flag is absent.
func (b Bitmap) Index(flag Flag) int {
	mustBeSingleBit(flag)
	if b&flag == 0 {
		panic("carray: bitmap does not contain flag")
	}
	return bits.OnesCount32(uint32(b & (flag - 1)))
}

func mustBeSingleBit(flag Flag) {
	if flag == 0 || flag&(flag-1) != 0 {
		panic("carray: flag does not have popcount 1")
	}
}
