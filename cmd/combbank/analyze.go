package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-comb/dsp/core"
	"github.com/cwbudde/algo-comb/dsp/filter/comb"
	"github.com/cwbudde/algo-comb/dsp/onset"
	"github.com/cwbudde/algo-comb/dsp/stream"
	"github.com/cwbudde/algo-comb/stats/periodicity"
	"golang.org/x/sync/errgroup"
)

// mergeBatch is the number of merged frames handed to the feeder at once.
const mergeBatch = 256

type inputInfo struct {
	path     string
	rate     int
	channels int
	bitDepth int
	samples  int64
}

type result struct {
	inputs      []inputInfo
	frames      uint64
	accumulated uint64
	normalized  []float64
	smoothed    []float64
	peak        int
	salience    periodicity.Stats
	period      float64
	bpm         float64
	history     *history
	coincidence *onset.Coincidence
}

// source is one decoded input reduced to frame values.
type source struct {
	in       *wavInput
	detector *onset.Detector
	frames   chan []float64
}

// analyze streams every input through its own onset stage into a single
// comb bank. Each decoder runs on its own goroutine, a merger combines the
// frame streams and hands them to a stream.Feeder, which owns the bank.
//
// With one input the bank sees the onset strength of each frame. With two
// inputs it sees the number of inputs with an onset in the frame, and the
// onset timing of the two inputs is compared; matches are written to stdout.
func analyze(ctx context.Context, opts *options, stdout io.Writer) (*result, error) {
	res := &result{}

	sources := make([]*source, 0, len(opts.inputs))
	for _, path := range opts.inputs {
		in, err := openWAVInput(path)
		if err != nil {
			return nil, err
		}
		defer func() { _ = in.Close() }()

		if opts.verbose {
			log.Printf("Input format of %s: %d Hz, %d channels, %d-bit", path, in.rate, in.channels, in.bitDepth)
		}

		src := &source{in: in, frames: make(chan []float64, 4)}
		if opts.hop > 1 {
			cfg := core.ApplyProcessorOptions(
				core.WithSampleRate(float64(in.rate)),
				core.WithHopSize(opts.hop),
			)
			onsetOpts := []onset.Option{onset.WithMethod(opts.method)}
			if opts.threshold > 0 {
				onsetOpts = append(onsetOpts, onset.WithBinary(opts.threshold))
			}
			src.detector, err = onset.New(cfg, onsetOpts...)
			if err != nil {
				return nil, err
			}
		}
		sources = append(sources, src)
		res.inputs = append(res.inputs, inputInfo{
			path:     path,
			rate:     in.rate,
			channels: in.channels,
			bitDepth: in.bitDepth,
		})
	}

	if len(sources) == 2 {
		var err error
		res.coincidence, err = onset.NewCoincidence(opts.minWindow/1000, opts.maxWindow/1000)
		if err != nil {
			return nil, err
		}
	}

	// Frames without an onset do not count, as in onset-count analysis.
	bankOpts := []comb.Option{comb.WithGate(comb.PositiveGate)}
	if opts.plain {
		bankOpts = append(bankOpts, comb.WithAccumulation(comb.Plain))
	}

	bank, err := comb.New(opts.maxDelay, bankOpts...)
	if err != nil {
		return nil, err
	}

	var out *vectorWriter
	if opts.out != "" {
		out, err = createVectorWriter(opts.out)
		if err != nil {
			return nil, err
		}
		defer func() { _ = out.Close() }()
	}

	var hist *history
	if opts.png != "" {
		expected := sources[0].in.expectedFrames(opts.hop)
		for _, src := range sources[1:] {
			expected = min(expected, src.in.expectedFrames(opts.hop))
		}
		hist = newHistory(opts.width, expected, opts.smooth)
	}

	// The sink runs on the Run goroutine, which owns the bank.
	var norm []float64
	sink := func(step uint64, _ []float64) error {
		norm = bank.Normalized(norm)
		if out != nil {
			if err := out.Write(norm); err != nil {
				return err
			}
		}
		if hist != nil {
			return hist.record(step-1, norm)
		}
		return nil
	}

	feeder := stream.NewFeeder(bank, sink)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return feeder.Run(gctx)
	})

	blockSize := core.ApplyProcessorOptions(core.WithHopSize(opts.hop)).BlockSize
	for i, src := range sources {
		g.Go(func() error {
			n, err := src.produce(gctx, blockSize)
			res.inputs[i].samples = n
			return err
		})
	}

	g.Go(func() error {
		defer feeder.Close()
		if len(sources) == 1 {
			return forward(gctx, sources[0].frames, feeder)
		}
		return merge(gctx, sources[0], sources[1], res.coincidence, feeder, stdout)
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if out != nil {
		if err := out.Close(); err != nil {
			return nil, err
		}
	}

	res.frames = bank.Count()
	res.accumulated = bank.Accumulated()
	res.normalized = bank.Normalized(nil)
	res.history = hist

	res.smoothed, err = comb.Smooth(nil, res.normalized, opts.smooth)
	if err != nil {
		return nil, err
	}

	if res.accumulated > 0 {
		rate := float64(res.inputs[0].rate)
		res.peak, err = comb.Peak(res.smoothed, opts.minDelay)
		if err != nil {
			return nil, err
		}
		res.salience, err = periodicity.Calculate(res.smoothed, opts.minDelay)
		if err != nil {
			return nil, err
		}
		res.period = comb.PeriodSeconds(res.peak, opts.hop, rate)
		res.bpm = comb.BPM(res.peak, opts.hop, rate)
	}

	if hist != nil {
		if err := hist.writePNG(opts.png, opts.minDelay); err != nil {
			return nil, err
		}
		if opts.verbose {
			log.Printf("Wrote %d history columns to %s", hist.columns(), opts.png)
		}
	}

	return res, nil
}

// produce decodes the input and sends its frame values in batches. Without
// a detector every sample is a frame. The channel is closed on return.
func (s *source) produce(ctx context.Context, blockSize int) (int64, error) {
	defer close(s.frames)

	var batch []float64
	emit := func(strength float64) { batch = append(batch, strength) }

	return s.in.readMono(blockSize, func(block []float64) error {
		if s.detector == nil {
			batch = append(batch, block...)
		} else if err := s.detector.Write(block, emit); err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}

		select {
		case s.frames <- batch:
			batch = nil
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
}

// forward submits the frames of a single source unchanged.
func forward(ctx context.Context, frames <-chan []float64, feeder *stream.Feeder) error {
	for {
		select {
		case batch, ok := <-frames:
			if !ok {
				return nil
			}
			if err := feeder.Submit(ctx, batch); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// merge pairs the frames of two sources by index. Each pair contributes
// its number of onsets to the bank and one observation to the coincidence
// tracker. Merging stops at the end of the shorter source; the rest of the
// longer one is decoded and discarded so that its sample count is complete.
func merge(ctx context.Context, a, b *source, c *onset.Coincidence, feeder *stream.Feeder, stdout io.Writer) error {
	queues := [2]*frameQueue{{ch: a.frames}, {ch: b.frames}}
	detectors := [2]*onset.Detector{a.detector, b.detector}

	batch := make([]float64, 0, mergeBatch)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		err := feeder.Submit(ctx, batch)
		batch = batch[:0]
		return err
	}

	for frame := uint64(0); ; frame++ {
		var (
			onsets [2]bool
			at     [2]float64
			count  int
			ended  bool
		)
		for i, q := range queues {
			v, ok, err := q.next(ctx)
			if err != nil {
				return err
			}
			if !ok {
				ended = true
				continue
			}
			if v > 0 {
				onsets[i] = true
				at[i] = detectors[i].FrameTime(frame)
				count++
			}
		}
		if ended {
			break
		}

		if m, ok := c.Observe(onsets, at); ok {
			if _, err := fmt.Fprintf(stdout, "%.3f\t%.1f\t%d\n", m.MostRecent, m.Diff*1000, m.Onsets); err != nil {
				return err
			}
		}

		batch = append(batch, float64(count))
		if len(batch) == mergeBatch {
			if err := flush(); err != nil {
				return err
			}
		}
	}

	if err := flush(); err != nil {
		return err
	}
	for _, q := range queues {
		if err := q.drain(ctx); err != nil {
			return err
		}
	}
	return nil
}

// frameQueue reads frame values one at a time from a batch channel.
type frameQueue struct {
	ch   <-chan []float64
	buf  []float64
	done bool
}

// next returns the next frame value. It reports false once the channel is
// closed and drained.
func (q *frameQueue) next(ctx context.Context) (float64, bool, error) {
	for len(q.buf) == 0 {
		if q.done {
			return 0, false, nil
		}
		select {
		case batch, ok := <-q.ch:
			if !ok {
				q.done = true
				continue
			}
			q.buf = batch
		case <-ctx.Done():
			return 0, false, ctx.Err()
		}
	}

	v := q.buf[0]
	q.buf = q.buf[1:]
	return v, true, nil
}

// drain discards the remaining batches until the channel is closed.
func (q *frameQueue) drain(ctx context.Context) error {
	q.buf = nil
	for !q.done {
		select {
		case _, ok := <-q.ch:
			if !ok {
				q.done = true
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// sampleCounts joins the per-input sample counts for the summary.
func sampleCounts(inputs []inputInfo) string {
	counts := make([]string, len(inputs))
	for i, in := range inputs {
		counts[i] = strconv.FormatInt(in.samples, 10)
	}
	return strings.Join(counts, " + ")
}

// expectedFrames estimates the number of frames from the WAV duration.
func (w *wavInput) expectedFrames(hop int) uint64 {
	d, err := w.decoder.Duration()
	if err != nil || d <= 0 {
		return 0
	}
	samples := uint64(d.Seconds() * float64(w.rate))
	return samples / uint64(hop)
}

// vectorWriter writes one space-separated vector per line with three
// decimals.
type vectorWriter struct {
	file   *os.File
	w      *bufio.Writer
	line   []byte
	closed bool
}

func createVectorWriter(path string) (*vectorWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return &vectorWriter{file: f, w: bufio.NewWriterSize(f, 256*1024)}, nil
}

// Write appends v as one line.
func (v *vectorWriter) Write(values []float64) error {
	line := v.line[:0]
	for i, x := range values {
		if i > 0 {
			line = append(line, ' ')
		}
		line = strconv.AppendFloat(line, x, 'f', 3, 64)
	}
	line = append(line, '\n')
	v.line = line

	if _, err := v.w.Write(line); err != nil {
		return fmt.Errorf("failed to write comb vector: %w", err)
	}
	return nil
}

// Close flushes and closes the file. It is safe to call more than once.
func (v *vectorWriter) Close() error {
	if v.closed {
		return nil
	}
	v.closed = true

	if err := v.w.Flush(); err != nil {
		_ = v.file.Close()
		return fmt.Errorf("failed to flush output file: %w", err)
	}
	return v.file.Close()
}
