package core_test

import (
	"fmt"

	"github.com/cwbudde/algo-comb/dsp/core"
)

func ExampleApplyProcessorOptions() {
	cfg := core.ApplyProcessorOptions(
		core.WithSampleRate(44100),
		core.WithHopSize(441),
	)

	fmt.Printf("sampleRate=%.0f hop=%d frameRate=%.0f\n", cfg.SampleRate, cfg.HopSize, cfg.FrameRate())

	// Output:
	// sampleRate=44100 hop=441 frameRate=100
}

func ExampleNeumaierAdd() {
	var sum, comp float64
	for _, x := range []float64{1, 1e100, 1, -1e100} {
		sum, comp = core.NeumaierAdd(sum, comp, x)
	}
	fmt.Println(sum + comp)

	// Output:
	// 2
}
