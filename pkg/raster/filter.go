package raster

import (
	"github.com/disintegration/imaging"
)

// GaussianBlur returns a blurred copy of b. sigma is the standard deviation
// of the kernel in pixels.
func GaussianBlur(b *Buffer, sigma float64) *Buffer {
	if sigma <= 0 || b.Empty() {
		return b.Clone()
	}
	return FromImage(imaging.Blur(b.ToNRGBA(), sigma))
}

// UnsharpParams configures an unsharp mask
type UnsharpParams struct {
	Radius    float64 `json:"radius" yaml:"radius"`
	Percent   int     `json:"percent" yaml:"percent"`
	Threshold int     `json:"threshold" yaml:"threshold"`
}

// UnsharpMask amplifies the difference between b and its Gaussian blur.
// Channels whose difference is below Threshold are copied unchanged.
func UnsharpMask(b *Buffer, p UnsharpParams) *Buffer {
	if b.Empty() {
		return b.Clone()
	}
	blurred := GaussianBlur(b, p.Radius)
	out := New(b.Width, b.Height)
	ParallelRows(b.Height, func(y int) {
		src, soft, dst := b.Row(y), blurred.Row(y), out.Row(y)
		for i := range src {
			diff := int(src[i]) - int(soft[i])
			if diff >= p.Threshold || -diff >= p.Threshold {
				dst[i] = Clamp(int(src[i]) + diff*p.Percent/100)
			} else {
				dst[i] = src[i]
			}
		}
	})
	return out
}

// Resize scales b to width x height with a Lanczos filter
func Resize(b *Buffer, width, height int) *Buffer {
	if b.Width == width && b.Height == height {
		return b.Clone()
	}
	return FromImage(imaging.Resize(b.ToNRGBA(), width, height, imaging.Lanczos))
}
