package sha1

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// BlockSize is the size of a SHA-1 block in bytes.
const BlockSize = 64

const (
	// lengthOffset is the offset of the big-endian bit length in the final
	// block.
	lengthOffset = BlockSize - 8
)

// Block is one 512-bit chunk of padded input.
type Block [BlockSize]byte

// Padder produces the padded block sequence of a byte stream.
//
// The underlying reader is consumed one block at a time, the stream is never
// held in memory. A Padder is not restartable, create a new one to scan
// another stream.
type Padder struct {
	r io.Reader

	size uint64

	// lengthOwed is set when the terminator did not leave room for the
	// length, which then has to be emitted in an extra block.
	lengthOwed bool
	done       bool
	err        error
}

func NewPadder(r io.Reader) *Padder {
	return &Padder{
		r: r,
	}
}

// BytesRead returns the number of bytes consumed from the underlying reader
// so far.
func (p *Padder) BytesRead() uint64 {
	return p.size
}

// Next returns the next block of the sequence. io.EOF is returned once the
// sequence is exhausted. Any other error is a read error of the underlying
// reader, it is sticky: all following calls return the same error.
func (p *Padder) Next() (*Block, error) {
	if p.err != nil {
		return nil, p.err
	}
	if p.done {
		return nil, io.EOF
	}

	block := &Block{}

	if p.lengthOwed {
		p.putLength(block)
		p.done = true

		return block, nil
	}

	n, err := io.ReadFull(p.r, block[:])
	p.size += uint64(n)
	if err == nil {
		return block, nil
	} else if err != io.EOF && err != io.ErrUnexpectedEOF {
		p.err = errors.Wrap(err, "(*Padder).Next: read block")
		return nil, p.err
	}

	// End of stream, n < BlockSize
	block[n] = 0x80

	if n < lengthOffset {
		p.putLength(block)
		p.done = true
	} else {
		p.lengthOwed = true
	}

	return block, nil
}

func (p *Padder) putLength(block *Block) {
	binary.BigEndian.PutUint64(block[lengthOffset:], p.size*8)
}
