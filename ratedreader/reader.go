// Package ratedreader provides an implementation of a rate limited io.Reader.
//
// A token bucket algorithm (https://godoc.org/golang.org/x/time/rate) performs
// the rate limiting / scheduling.
package ratedreader

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

// DefaultBurstSize is the default size of bursts.
const DefaultBurstSize int = 32 * 1024 // 32 KiB

var _ io.Reader = &Reader{}

// Reader limits the throughput of reads from an underlying reader. A single
// Read call never requests more than the burst size from the underlying
// reader at once.
type Reader struct {
	ctx     context.Context
	r       io.Reader
	limiter *rate.Limiter
}

func NewReader(ctx context.Context, rd io.Reader, limit rate.Limit) *Reader {
	return NewReaderBurst(ctx, rd, limit, DefaultBurstSize)
}

func NewReaderBurst(ctx context.Context, rd io.Reader, limit rate.Limit, burst int) *Reader {
	return &Reader{
		ctx:     ctx,
		r:       rd,
		limiter: rate.NewLimiter(limit, burst),
	}
}

func (r *Reader) Read(p []byte) (int, error) {
	n := len(p)
	if burst := r.limiter.Burst(); n > burst {
		n = burst
	}

	err := r.limiter.WaitN(r.ctx, n)
	if err != nil {
		return 0, errors.Wrap(err, "(*Reader).Read: wait for limiter")
	}

	return r.r.Read(p[:n])
}

// ResetReader replaces the underlying reader. The limiter state is kept, so
// a Reader can be reused for a sequence of inputs.
func (r *Reader) ResetReader(rd io.Reader) {
	r.r = rd
}

func (r *Reader) SetLimit(newLimit rate.Limit) {
	r.limiter.SetLimit(newLimit)
}
