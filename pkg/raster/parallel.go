package raster

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// minRowsPerWorker keeps tiny buffers on the calling goroutine
const minRowsPerWorker = 16

// ParallelRows calls fn once for every row in [0, height), splitting the rows
// into contiguous bands processed concurrently. fn must only write to its own
// row; it may read anything that is not written during the call.
func ParallelRows(height int, fn func(y int)) {
	if height <= 0 {
		return
	}
	workers := runtime.GOMAXPROCS(0)
	if n := height / minRowsPerWorker; n < workers {
		workers = n
	}
	if workers <= 1 {
		for y := 0; y < height; y++ {
			fn(y)
		}
		return
	}

	band := (height + workers - 1) / workers
	var g errgroup.Group
	for start := 0; start < height; start += band {
		y0, y1 := start, min(start+band, height)
		g.Go(func() error {
			for y := y0; y < y1; y++ {
				fn(y)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// Map applies fn to every pixel of src and returns the result as a new buffer.
// fn receives the pixel coordinates and its colour and returns the new colour.
func Map(src *Buffer, fn func(x, y int, r, g, b uint8) (uint8, uint8, uint8)) *Buffer {
	dst := New(src.Width, src.Height)
	ParallelRows(src.Height, func(y int) {
		in, out := src.Row(y), dst.Row(y)
		for x := 0; x < src.Width; x++ {
			i := x * 3
			out[i], out[i+1], out[i+2] = fn(x, y, in[i], in[i+1], in[i+2])
		}
	})
	return dst
}
