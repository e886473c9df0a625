package comb_test

import (
	"fmt"

	"github.com/cwbudde/algo-comb/dsp/filter/comb"
)

func ExampleBank_Process() {
	b, err := comb.New(2)
	if err != nil {
		panic(err)
	}

	for _, x := range []float64{1, 2, 3} {
		fmt.Println(b.Process(x))
	}
	// Output:
	// [1 0 0]
	// [3 1 0]
	// [6 3 1]
}

func ExamplePeak() {
	b, err := comb.New(8, comb.WithGate(comb.PositiveGate))
	if err != nil {
		panic(err)
	}

	// Onsets every 3 frames.
	for i := 0; i < 30; i++ {
		if i%3 == 0 {
			b.Process(1)
		} else {
			b.Process(0)
		}
	}

	delay, err := comb.Peak(b.Outputs(), 1)
	if err != nil {
		panic(err)
	}

	fmt.Println("period:", delay, "frames")
	// Output:
	// period: 3 frames
}
