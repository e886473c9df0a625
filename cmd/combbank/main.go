// Command combbank runs a cumulative comb filter bank over a WAV file and
// reports the dominant periodicity.
//
// Usage:
//
//	combbank [flags] input.wav [second.wav]
//
// By default the input is reduced to binary onsets per hop of 256 samples
// and the bank spans three seconds of frames at 48 kHz. Only frames with a
// positive value are accumulated. Each accumulated frame appends the
// normalized comb vector to the -out file.
//
// With a second input the bank sees the number of inputs with an onset in
// each frame. Whenever the latest onsets of the two inputs lie between
// -min-window and -max-window milliseconds apart, a line with the later
// onset time in seconds, the difference in milliseconds and the number of
// onsets in the frame is printed.
//
// Examples:
//
//	combbank drums.wav
//	combbank -method specflux -png history.png drums.wav
//	combbank -hop 1 -max-delay 64 -out comb.txt tone.wav
//	combbank left.wav right.wav
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/cwbudde/algo-comb/dsp/onset"
)

const (
	// 48 kHz / 256-sample hops, three seconds of history.
	defaultMaxDelay = 48000 / 256 * 3
	defaultHop      = 256
	defaultSmooth   = 11
	defaultMinDelay = 20
	defaultWidth    = 1024
	defaultOut      = "combFilter.txt"

	// Binary onsets on the energy rise of a normalized signal.
	defaultThreshold = 0.01

	// Onset differences below 10 ms are not perceptible; above 40 ms they
	// are likely musically intended.
	defaultMinWindow = 10.0
	defaultMaxWindow = 40.0
)

type options struct {
	maxDelay  int
	hop       int
	threshold float64
	smooth    int
	minDelay  int
	out       string
	png       string
	width     int
	plain     bool
	verbose   bool
	method    onset.Method
	minWindow float64
	maxWindow float64
	inputs    []string
}

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	if errors.Is(err, errUsage) {
		os.Exit(2)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	if opts.verbose {
		log.Printf("Inputs: %v", opts.inputs)
		log.Printf("Max delay: %d frames, hop: %d samples", opts.maxDelay, opts.hop)
		if opts.hop > 1 {
			log.Printf("Onsets: %v, threshold %g", opts.method, opts.threshold)
		}
	}

	res, err := analyze(ctx, opts, stdout)
	if err != nil {
		return err
	}

	printSummary(stdout, opts, res)
	return nil
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("combbank", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{}
	fs.IntVar(&opts.maxDelay, "max-delay", defaultMaxDelay, "largest comb delay in frames")
	fs.IntVar(&opts.hop, "hop", defaultHop, "samples per frame (1 feeds raw samples)")
	fs.Float64Var(&opts.threshold, "threshold", defaultThreshold, "binary onset threshold on the onset strength (0 = continuous strength)")
	fs.IntVar(&opts.smooth, "smooth", defaultSmooth, "odd moving-average width across taps for peak picking")
	fs.IntVar(&opts.minDelay, "min-delay", defaultMinDelay, "smallest delay considered for the peak")
	fs.StringVar(&opts.out, "out", defaultOut, "text file receiving one normalized comb vector per frame (empty disables)")
	fs.StringVar(&opts.png, "png", "", "PNG file receiving the comb history image (empty disables)")
	fs.IntVar(&opts.width, "width", defaultWidth, "history image width in columns")
	fs.BoolVar(&opts.plain, "plain", false, "use plain instead of compensated accumulation")
	fs.BoolVar(&opts.verbose, "v", false, "verbose output")
	method := fs.String("method", "default", "onset detection function: energy, specflux, hfc or default")
	fs.Float64Var(&opts.minWindow, "min-window", defaultMinWindow, "lower bound in ms of a windowed onset difference between two inputs")
	fs.Float64Var(&opts.maxWindow, "max-window", defaultMaxWindow, "upper bound in ms of a windowed onset difference between two inputs")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: combbank [flags] input.wav [second.wav]\n\n")
		fmt.Fprintf(stderr, "Runs a cumulative comb filter bank over a WAV file.\n\n")
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, errUsage
		}
		return nil, fmt.Errorf("%w: %v", errUsage, err)
	}

	if fs.NArg() < 1 || fs.NArg() > 2 {
		fs.Usage()
		return nil, fmt.Errorf("%w: expected one or two input files, got %d", errUsage, fs.NArg())
	}
	opts.inputs = fs.Args()

	var err error
	opts.method, err = onset.ParseMethod(*method)
	if err != nil {
		return nil, fmt.Errorf("-method: %w", err)
	}

	switch {
	case opts.maxDelay < 1:
		return nil, fmt.Errorf("-max-delay must be >= 1, got %d", opts.maxDelay)
	case opts.hop < 1:
		return nil, fmt.Errorf("-hop must be >= 1, got %d", opts.hop)
	case opts.threshold < 0:
		return nil, fmt.Errorf("-threshold must be >= 0, got %g", opts.threshold)
	case opts.smooth < 1 || opts.smooth%2 == 0:
		return nil, fmt.Errorf("-smooth must be odd and >= 1, got %d", opts.smooth)
	case opts.minDelay < 0 || opts.minDelay > opts.maxDelay:
		return nil, fmt.Errorf("-min-delay must be in [0, %d], got %d", opts.maxDelay, opts.minDelay)
	case opts.width < 1:
		return nil, fmt.Errorf("-width must be >= 1, got %d", opts.width)
	case opts.minWindow < 0 || !(opts.maxWindow > opts.minWindow):
		return nil, fmt.Errorf("-min-window and -max-window must satisfy 0 <= min < max, got %g and %g", opts.minWindow, opts.maxWindow)
	case len(opts.inputs) == 2 && opts.hop < 2:
		return nil, fmt.Errorf("-hop must be >= 2 with two inputs, got %d", opts.hop)
	}

	return opts, nil
}

func printSummary(w io.Writer, opts *options, res *result) {
	for _, in := range res.inputs {
		fmt.Fprintf(w, "%s: %d Hz, %d channels, %d-bit\n", in.path, in.rate, in.channels, in.bitDepth)
	}
	fmt.Fprintf(w, "  %s samples -> %d frames (%d accumulated)\n", sampleCounts(res.inputs), res.frames, res.accumulated)
	if res.coincidence != nil {
		fmt.Fprintf(w, "  windowed onsets: %d/%d (%.1f%%) within %g-%g ms\n",
			res.coincidence.Windowed(), res.coincidence.Total(), res.coincidence.Percent(), opts.minWindow, opts.maxWindow)
	}
	if res.accumulated == 0 {
		fmt.Fprintf(w, "  no periodicity: nothing accumulated\n")
		return
	}
	fmt.Fprintf(w, "  peak delay: %d frames (%.3f s, %.1f BPM)\n", res.peak, res.period, res.bpm)
	fmt.Fprintf(w, "  salience: %.1f dB over %d taps\n", res.salience.Salience_dB, res.salience.Taps)
}
