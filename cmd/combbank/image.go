package main

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	"github.com/cwbudde/algo-comb/dsp/core"
	"github.com/cwbudde/algo-comb/dsp/filter/comb"
)

// history keeps smoothed comb vectors sampled at evenly spaced frames, one
// per image column.
type history struct {
	width  int
	skip   uint64
	smooth int
	cols   [][]float64
}

func newHistory(width int, expectedFrames uint64, smooth int) *history {
	skip := expectedFrames / uint64(width)
	if skip == 0 {
		skip = 1
	}
	return &history{
		width:  width,
		skip:   skip,
		smooth: smooth,
		cols:   make([][]float64, 0, width),
	}
}

// record stores a smoothed copy of v when frame falls on a column.
func (h *history) record(frame uint64, v []float64) error {
	if frame%h.skip != 0 || len(h.cols) >= h.width {
		return nil
	}
	col, err := comb.Smooth(nil, v, h.smooth)
	if err != nil {
		return err
	}
	h.cols = append(h.cols, col)
	return nil
}

func (h *history) columns() int {
	return len(h.cols)
}

// render draws one column per recorded vector and one row per tap. Taps
// below minDelay are blanked. Each column is scaled to its own maximum; the
// maximum is marked red, half its delay green and double its delay blue.
func (h *history) render(minDelay int) *image.RGBA {
	height := 1
	if len(h.cols) > 0 {
		height = len(h.cols[0])
	}
	img := image.NewRGBA(image.Rect(0, 0, h.width, height))

	for x, col := range h.cols {
		maxPos, maxVal := -1, 0.0
		for y := minDelay; y < len(col); y++ {
			if col[y] > maxVal {
				maxPos, maxVal = y, col[y]
			}
		}

		for y := range col {
			grey := uint8(0)
			if y >= minDelay && maxVal > 0 {
				grey = uint8(math.Round(core.Clamp(col[y]/maxVal, 0, 1) * 255))
			}
			img.SetRGBA(x, y, color.RGBA{R: grey, G: grey, B: grey, A: 255})
		}

		if maxPos < 0 {
			continue
		}
		img.SetRGBA(x, maxPos, color.RGBA{R: 255, A: 255})
		img.SetRGBA(x, maxPos/2, color.RGBA{G: 255, A: 255})
		if maxPos*2 < len(col) {
			img.SetRGBA(x, maxPos*2, color.RGBA{B: 255, A: 255})
		}
	}

	return img
}

func (h *history) writePNG(path string, minDelay int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create image file: %w", err)
	}

	if err := png.Encode(f, h.render(minDelay)); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to encode image: %w", err)
	}
	return f.Close()
}
