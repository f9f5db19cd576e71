// Package sha1 is a streaming reference implementation of the SHA-1 message
// digest as defined in FIPS 180-4 / RFC 3174.
//
// Input is consumed through a Padder, which turns an io.Reader of unknown
// length into the sequence of padded 64-byte blocks. Each block is folded
// into a State by Compress. Digest wires both together.
//
// SHA-1 is cryptographically broken. This package exists to produce
// checksum-utility compatible output, not to protect secrets.
package sha1

import (
	"fmt"
	"math/bits"
)

// Word is a 32-bit unsigned value. All arithmetic on Word wraps around
// modulo 2^32.
type Word uint32

func (w Word) Add(o Word) Word {
	return w + o
}

// RotateLeft rotates w left by n bits. n must be less than 32.
func (w Word) RotateLeft(n uint) Word {
	if n >= 32 {
		panic(fmt.Sprintf("sha1: rotate amount %d out of range", n))
	}

	return Word(bits.RotateLeft32(uint32(w), int(n)))
}

func (w Word) And(o Word) Word { return w & o }
func (w Word) Or(o Word) Word  { return w | o }
func (w Word) Xor(o Word) Word { return w ^ o }
func (w Word) Not() Word       { return ^w }
