package grading

import (
	"github.com/menta2k/headshot/pkg/raster"
)

// EnhanceConfig holds the final tonal multipliers. A value of 1 leaves the
// image unchanged.
type EnhanceConfig struct {
	Contrast   float64 `json:"contrast" yaml:"contrast"`
	Saturation float64 `json:"saturation" yaml:"saturation"`
	Brightness float64 `json:"brightness" yaml:"brightness"`
}

// DefaultEnhanceConfig returns a subtle contrast, saturation and brightness boost
func DefaultEnhanceConfig() EnhanceConfig {
	return EnhanceConfig{
		Contrast:   1.12,
		Saturation: 1.08,
		Brightness: 1.03,
	}
}

// Enhance applies contrast, saturation and brightness in that order
func Enhance(buf *raster.Buffer, cfg EnhanceConfig) *raster.Buffer {
	out := Contrast(buf, cfg.Contrast)
	out = Saturation(out, cfg.Saturation)
	return Brightness(out, cfg.Brightness)
}

// Contrast interpolates every channel away from the mean luma of the image
func Contrast(buf *raster.Buffer, factor float64) *raster.Buffer {
	mean := float64(MeanLuma(buf))
	var lut [256]uint8
	for i := range lut {
		lut[i] = interpolate(mean, float64(i), factor)
	}
	return raster.Map(buf, func(_, _ int, r, g, b uint8) (uint8, uint8, uint8) {
		return lut[r], lut[g], lut[b]
	})
}

// Saturation interpolates every pixel away from its own gray level
func Saturation(buf *raster.Buffer, factor float64) *raster.Buffer {
	return raster.Map(buf, func(_, _ int, r, g, b uint8) (uint8, uint8, uint8) {
		l := float64(raster.Luma(r, g, b))
		return interpolate(l, float64(r), factor), interpolate(l, float64(g), factor), interpolate(l, float64(b), factor)
	})
}

// Brightness scales every channel by factor
func Brightness(buf *raster.Buffer, factor float64) *raster.Buffer {
	var lut [256]uint8
	for i := range lut {
		lut[i] = interpolate(0, float64(i), factor)
	}
	return raster.Map(buf, func(_, _ int, r, g, b uint8) (uint8, uint8, uint8) {
		return lut[r], lut[g], lut[b]
	})
}

// MeanLuma returns the average luma of buf rounded to the nearest integer
func MeanLuma(buf *raster.Buffer) int {
	if buf.Empty() {
		return 0
	}
	sums := make([]uint64, buf.Height)
	raster.ParallelRows(buf.Height, func(y int) {
		row := buf.Row(y)
		var s uint64
		for i := 0; i < len(row); i += 3 {
			s += uint64(raster.Luma(row[i], row[i+1], row[i+2]))
		}
		sums[y] = s
	})
	var total uint64
	for _, s := range sums {
		total += s
	}
	return int(float64(total)/float64(buf.Width*buf.Height) + 0.5)
}

// interpolate returns from + factor*(to-from), truncated and clamped
func interpolate(from, to, factor float64) uint8 {
	v := from + factor*(to-from)
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}
