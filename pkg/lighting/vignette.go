package lighting

import (
	"math"

	"github.com/menta2k/headshot/pkg/raster"
)

const (
	minVignette = 0.3
	maxVignette = 1.0
)

// VignetteFactor returns the brightness multiplier for a pixel at normalised
// radial distance dist (1 at the middle of each edge).
func VignetteFactor(dist, strength float64) float64 {
	v := 1 - dist*dist*strength*0.5
	return math.Max(minVignette, math.Min(maxVignette, v))
}

// Vignette darkens buf radially toward its edges
func Vignette(buf *raster.Buffer, strength float64) *raster.Buffer {
	cx, cy := float64(buf.Width)/2, float64(buf.Height)/2
	return raster.Map(buf, func(x, y int, r, g, b uint8) (uint8, uint8, uint8) {
		dx := (float64(x) - cx) / cx
		dy := (float64(y) - cy) / cy
		f := VignetteFactor(math.Sqrt(dx*dx+dy*dy), strength)
		return uint8(float64(r) * f), uint8(float64(g) * f), uint8(float64(b) * f)
	})
}
