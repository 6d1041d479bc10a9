package compositing

import (
	"fmt"

	"github.com/menta2k/headshot/pkg/raster"
)

// Composite blends fg over bg using mask: out = fg*m + bg*(1-m), with m the
// mask value scaled to [0,1] as returned by Mask.Fraction, rounded to the
// nearest integer. All three inputs must have the same size.
func Composite(fg, bg *raster.Buffer, mask *raster.Mask) (*raster.Buffer, error) {
	if !fg.SameSize(bg) {
		return nil, fmt.Errorf("size mismatch: foreground %dx%d, background %dx%d",
			fg.Width, fg.Height, bg.Width, bg.Height)
	}
	if !mask.SameSize(fg) {
		return nil, fmt.Errorf("size mismatch: image %dx%d, mask %dx%d",
			fg.Width, fg.Height, mask.Width, mask.Height)
	}

	out := raster.New(fg.Width, fg.Height)
	raster.ParallelRows(fg.Height, func(y int) {
		f, b, m, dst := fg.Row(y), bg.Row(y), mask.Row(y), out.Row(y)
		for x, a := range m {
			alpha := int(a)
			for c := 0; c < 3; c++ {
				i := x*3 + c
				dst[i] = blend(int(f[i]), int(b[i]), alpha)
			}
		}
	})
	return out, nil
}

// blend mixes two channel values with an 8-bit alpha, rounding to nearest
func blend(fg, bg, alpha int) uint8 {
	return uint8((fg*alpha + bg*(255-alpha) + 127) / 255)
}
