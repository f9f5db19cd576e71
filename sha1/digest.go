package sha1

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"io"
)

// Size is the size of a SHA-1 digest in bytes.
const Size = 20

// Sum is a finalised SHA-1 digest in its canonical big-endian byte form.
type Sum [Size]byte

// SumOf returns the byte form of the state s.
func SumOf(s State) Sum {
	var sum Sum

	for i, word := range s {
		binary.BigEndian.PutUint32(sum[i*4:], uint32(word))
	}

	return sum
}

// Words returns the five words H0..H4 making up s.
func (s Sum) Words() State {
	var state State

	for i := range state {
		state[i] = Word(binary.BigEndian.Uint32(s[i*4:]))
	}

	return state
}

func (s Sum) String() string {
	return Format(s)
}

// Format renders s as 40 lowercase hexadecimal digits, H0 first.
func Format(s Sum) string {
	return hex.EncodeToString(s[:])
}

// Digest computes the SHA-1 digest of everything read from r.
//
// A read error fails the whole computation, no partial digest is returned.
func Digest(r io.Reader) (Sum, error) {
	return DigestContext(context.Background(), r)
}

// DigestContext is like Digest but stops between blocks with ctx.Err() once
// ctx is done.
func DigestContext(ctx context.Context, r io.Reader) (Sum, error) {
	return Drain(ctx, NewPadder(r))
}

// Drain compresses all remaining blocks of padder, starting from
// InitialState. padder.BytesRead() reports the message length afterwards.
func Drain(ctx context.Context, padder *Padder) (Sum, error) {
	state := InitialState

	for {
		if err := ctx.Err(); err != nil {
			return Sum{}, err
		}

		block, err := padder.Next()
		if err == io.EOF {
			break
		} else if err != nil {
			return Sum{}, err
		}

		state.Compress(block)
	}

	return SumOf(state), nil
}
