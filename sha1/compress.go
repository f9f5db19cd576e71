package sha1

import (
	"encoding/binary"
	"fmt"
)

// Rounds is the number of rounds performed per block.
const Rounds = 80

const (
	init0 Word = 0x67452301
	init1 Word = 0xEFCDAB89
	init2 Word = 0x98BADCFE
	init3 Word = 0x10325476
	init4 Word = 0xC3D2E1F0
)

const (
	k0 Word = 0x5A827999
	k1 Word = 0x6ED9EBA1
	k2 Word = 0x8F1BBCDC
	k3 Word = 0xCA62C1D6
)

// State is the running 160-bit digest state H0..H4.
type State [5]Word

// InitialState is the state before the first block is compressed.
var InitialState = State{init0, init1, init2, init3, init4}

// F is the round function for round t. Rounds are split into four quadrants
// of 20 rounds: choose, parity, majority, parity.
func F(t int, b, c, d Word) Word {
	switch {
	case 0 <= t && t < 20:
		return b.And(c).Or(b.Not().And(d))
	case 20 <= t && t < 40:
		return b.Xor(c).Xor(d)
	case 40 <= t && t < 60:
		return b.And(c).Or(b.And(d)).Or(c.And(d))
	case 60 <= t && t < Rounds:
		return b.Xor(c).Xor(d)
	default:
		panic(fmt.Sprintf("sha1: round %d out of range", t))
	}
}

// K returns the round constant for round t.
func K(t int) Word {
	switch {
	case 0 <= t && t < 20:
		return k0
	case 20 <= t && t < 40:
		return k1
	case 40 <= t && t < 60:
		return k2
	case 60 <= t && t < Rounds:
		return k3
	default:
		panic(fmt.Sprintf("sha1: round %d out of range", t))
	}
}

// Schedule expands block into the 80 word message schedule.
func Schedule(block *Block) [Rounds]Word {
	var w [Rounds]Word

	for i := 0; i < 16; i++ {
		w[i] = Word(binary.BigEndian.Uint32(block[i*4:]))
	}
	for i := 16; i < Rounds; i++ {
		w[i] = w[i-3].Xor(w[i-8]).Xor(w[i-14]).Xor(w[i-16]).RotateLeft(1)
	}

	return w
}

// Compress folds block into s.
func (s *State) Compress(block *Block) {
	w := Schedule(block)

	a, b, c, d, e := s[0], s[1], s[2], s[3], s[4]

	for t := 0; t < Rounds; t++ {
		temp := a.RotateLeft(5).
			Add(F(t, b, c, d)).
			Add(e).
			Add(w[t]).
			Add(K(t))

		e = d
		d = c
		c = b.RotateLeft(30)
		b = a
		a = temp
	}

	s[0] = s[0].Add(a)
	s[1] = s[1].Add(b)
	s[2] = s[2].Add(c)
	s[3] = s[3].Add(d)
	s[4] = s[4].Add(e)
}
