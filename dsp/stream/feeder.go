package stream

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cwbudde/algo-comb/dsp/filter/comb"
)

// Errors returned by Feeder.
var (
	ErrClosed  = errors.New("stream: feeder closed")
	ErrStopped = errors.New("stream: feeder stopped")
)

const defaultQueueLen = 16

// Sink receives the accumulator vector after a processed sample. step is
// the bank's sample count. out is owned by the bank and only valid during
// the call.
type Sink func(step uint64, out []float64) error

type config struct {
	every    uint64
	queueLen int
}

// Option configures a Feeder.
type Option func(*config)

// WithEvery calls the sink only for every n-th sample. n < 1 is ignored.
func WithEvery(n int) Option {
	return func(cfg *config) {
		if n > 0 {
			cfg.every = uint64(n)
		}
	}
}

// WithQueueLen sets how many blocks may wait before Submit blocks.
func WithQueueLen(n int) Option {
	return func(cfg *config) {
		if n >= 0 {
			cfg.queueLen = n
		}
	}
}

// Feeder owns a comb bank and feeds it from a queue of sample blocks.
type Feeder struct {
	bank  *comb.Bank
	sink  Sink
	every uint64

	mu       sync.RWMutex
	closed   bool
	inflight sync.WaitGroup
	blocks   chan []float64
	done     chan struct{}
	stopped  chan struct{}
	runOnce  sync.Once
}

// NewFeeder returns a feeder for bank. A nil sink discards outputs. The
// caller must not touch bank until Run has returned.
func NewFeeder(bank *comb.Bank, sink Sink, opts ...Option) *Feeder {
	cfg := config{every: 1, queueLen: defaultQueueLen}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return &Feeder{
		bank:    bank,
		sink:    sink,
		every:   cfg.every,
		blocks:  make(chan []float64, cfg.queueLen),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Submit queues a copy of block. It blocks while the queue is full and
// returns ErrClosed once Close has been called, ErrStopped once Run has
// returned, or the context error.
func (f *Feeder) Submit(ctx context.Context, block []float64) error {
	f.mu.RLock()
	if f.closed {
		f.mu.RUnlock()
		return ErrClosed
	}
	f.inflight.Add(1)
	f.mu.RUnlock()
	defer f.inflight.Done()

	cp := make([]float64, len(block))
	copy(cp, block)

	select {
	case f.blocks <- cp:
		return nil
	case <-f.done:
		return ErrClosed
	case <-f.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting blocks and wakes producers waiting on a full
// queue. Run returns nil after the queued blocks are processed. Close does
// not block and is idempotent.
func (f *Feeder) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return
	}
	f.closed = true
	close(f.done)

	// The queue is closed once no Submit can send on it any more.
	go func() {
		f.inflight.Wait()
		close(f.blocks)
	}()
}

// Run processes queued blocks until Close drains the queue, the context is
// done, or the sink fails. Run may be called once; later calls return
// ErrStopped.
func (f *Feeder) Run(ctx context.Context) error {
	err := ErrStopped
	f.runOnce.Do(func() {
		defer close(f.stopped)
		err = f.run(ctx)
	})
	return err
}

func (f *Feeder) run(ctx context.Context) error {
	for {
		select {
		case block, ok := <-f.blocks:
			if !ok {
				return nil
			}
			if err := f.process(block); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (f *Feeder) process(block []float64) error {
	for _, x := range block {
		out := f.bank.Process(x)
		step := f.bank.Count()
		if f.sink == nil || step%f.every != 0 {
			continue
		}
		if err := f.sink(step, out); err != nil {
			return fmt.Errorf("stream: sink at step %d: %w", step, err)
		}
	}
	return nil
}
