package worker

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/apex/log"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"git.scc.kit.edu/sdm/lsdf-sha1sum/ratedreader"
	"git.scc.kit.edu/sdm/lsdf-sha1sum/sha1"
)

// StdinPath is the path denoting the standard input.
const StdinPath = "-"

var (
	ErrNotRegular = errors.New("not a regular file")
)

type Config struct {
	// Concurrency is the number of inputs digested in parallel.
	Concurrency int
	// MaxThroughput is the maximum number of bytes per second read from all
	// inputs together. 0 means unlimited.
	MaxThroughput int

	Logger log.Interface `yaml:"-"`
}

var DefaultConfig = &Config{
	Concurrency: 1,
}

// Kind classifies the outcome of digesting one Input.
type Kind int

const (
	KindOK Kind = iota
	KindOpenError
	KindNotRegular
	KindReadError
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindOpenError:
		return "open error"
	case KindNotRegular:
		return "not regular"
	case KindReadError:
		return "read error"
	default:
		return "unknown"
	}
}

type Input struct {
	// Name is the label printed alongside the digest.
	Name string
	// Path is the file to read, StdinPath selects the standard input.
	Path string
}

// PathInput returns an Input reading path, labelled with path.
func PathInput(path string) Input {
	return Input{
		Name: path,
		Path: path,
	}
}

type Result struct {
	Input     Input
	Kind      Kind
	Sum       sha1.Sum
	BytesRead uint64
	Err       error
}

// Worker digests a batch of inputs.
type Worker struct {
	Config *Config

	// stdinMu is held for the whole digest of a StdinPath input, the
	// standard input may be listed more than once.
	stdinMu sync.Mutex
	stdin   io.Reader

	fieldLogger log.Interface
}

func New(config *Config, stdin io.Reader) *Worker {
	return &Worker{
		Config: config,
		stdin:  stdin,
	}
}

// Run digests all inputs and calls emit for each Result, strictly in the
// order of inputs. A result is emitted as soon as it and all preceding
// results are available.
//
// Failing inputs are reported as results and do not stop the run. Run returns
// early only if emit returns an error or ctx is cancelled.
func (w *Worker) Run(ctx context.Context, inputs []Input, emit func(*Result) error) error {
	logger := w.Config.Logger
	if logger == nil {
		logger = log.Log
	}
	w.fieldLogger = logger.WithFields(log.Fields{
		"component": "worker.Worker",
	})

	concurrency := w.Config.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > len(inputs) {
		concurrency = len(inputs)
	}

	results := make([]*Result, len(inputs))
	ready := make([]chan struct{}, len(inputs))
	for i := range ready {
		ready[i] = make(chan struct{})
	}

	group, groupCtx := errgroup.WithContext(ctx)
	indexes := make(chan int)

	group.Go(func() error {
		defer close(indexes)

		for i := range inputs {
			select {
			case indexes <- i:
			case <-groupCtx.Done():
				return groupCtx.Err()
			}
		}

		return nil
	})

	for i := 0; i < concurrency; i++ {
		d := w.newDigester(groupCtx, concurrency)

		group.Go(func() error {
			for i := range indexes {
				results[i] = d.digest(groupCtx, &inputs[i])
				close(ready[i])
			}

			return nil
		})
	}

	group.Go(func() error {
		for i := range inputs {
			select {
			case <-ready[i]:
			case <-groupCtx.Done():
				return groupCtx.Err()
			}

			err := emit(results[i])
			if err != nil {
				return errors.Wrap(err, "(*Worker).Run: emit result")
			}
		}

		return nil
	})

	return group.Wait()
}

// digester holds the per goroutine resources, similar to a pool entry.
type digester struct {
	worker *Worker
	reader *ratedreader.Reader
}

func (w *Worker) newDigester(ctx context.Context, concurrency int) *digester {
	d := &digester{
		worker: w,
	}

	if w.Config.MaxThroughput > 0 {
		limit := rate.Limit(float64(w.Config.MaxThroughput) / float64(concurrency))
		d.reader = ratedreader.NewReader(ctx, nil, limit)
	}

	return d
}

func (d *digester) digest(ctx context.Context, input *Input) *Result {
	result := &Result{
		Input: *input,
	}
	fieldLogger := d.worker.fieldLogger.WithFields(log.Fields{
		"name": input.Name,
		"path": input.Path,
	})

	if input.Path == StdinPath {
		d.worker.stdinMu.Lock()
		defer d.worker.stdinMu.Unlock()
	}

	source, err := d.worker.open(input)
	if err != nil {
		result.Err = err
		if errors.Cause(err) == ErrNotRegular {
			result.Kind = KindNotRegular
		} else {
			result.Kind = KindOpenError
		}

		fieldLogger.WithError(err).WithFields(log.Fields{
			"action": "skipping",
		}).Warn("Encountered error while opening input")

		return result
	}

	var r io.Reader = source
	if d.reader != nil {
		d.reader.ResetReader(source)
		r = d.reader
	}

	padder := sha1.NewPadder(r)
	result.Sum, err = sha1.Drain(ctx, padder)
	result.BytesRead = padder.BytesRead()

	closeErr := source.Close()
	if closeErr != nil {
		fieldLogger.WithError(closeErr).
			Warn("Encountered error while closing input")
	}

	if err != nil {
		result.Kind = KindReadError
		result.Err = err

		fieldLogger.WithError(err).WithFields(log.Fields{
			"action":     "skipping",
			"bytes_read": result.BytesRead,
		}).Warn("Encountered error while calculating hashsum of input")

		return result
	}

	fieldLogger.WithFields(log.Fields{
		"bytes_read": result.BytesRead,
		"checksum":   result.Sum.String(),
	}).Debug("Finished calculating hashsum of input")

	return result
}

func (w *Worker) open(input *Input) (io.ReadCloser, error) {
	if input.Path == StdinPath {
		return io.NopCloser(w.stdin), nil
	}

	f, err := os.Open(input.Path)
	if err != nil {
		return nil, err
	}

	stat, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if !stat.Mode().IsRegular() {
		_ = f.Close()
		return nil, errors.Wrap(ErrNotRegular, input.Path)
	}

	return f, nil
}
