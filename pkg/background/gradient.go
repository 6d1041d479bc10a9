// Package background synthesizes the studio backdrop that replaces the
// original photo background.
package background

import (
	"math"

	"github.com/menta2k/headshot/pkg/raster"
	"github.com/menta2k/headshot/pkg/types"
)

// Config describes a vertical gradient with a soft key light
type Config struct {
	Top    types.RGB `json:"top" yaml:"top"`
	Bottom types.RGB `json:"bottom" yaml:"bottom"`

	// Key light position as a fraction of width and height
	LightX float64 `json:"light_x" yaml:"light_x"`
	LightY float64 `json:"light_y" yaml:"light_y"`

	Falloff   float64    `json:"falloff" yaml:"falloff"`
	Intensity float64    `json:"intensity" yaml:"intensity"`
	Warmth    [3]float64 `json:"warmth" yaml:"warmth"`
}

// DefaultConfig returns a dark blue-gray to near-black backdrop lit from the upper left
func DefaultConfig() Config {
	return Config{
		Top:       types.RGB{R: 18, G: 22, B: 36},
		Bottom:    types.RGB{R: 8, G: 10, B: 18},
		LightX:    0.35,
		LightY:    0.3,
		Falloff:   1.4,
		Intensity: 0.15,
		Warmth:    [3]float64{60, 50, 40},
	}
}

// Synthesizer generates gradient backgrounds
type Synthesizer struct {
	config Config
}

// New creates a Synthesizer with the default backdrop
func New() *Synthesizer {
	return &Synthesizer{config: DefaultConfig()}
}

// NewWithConfig creates a Synthesizer with a custom backdrop
func NewWithConfig(config Config) *Synthesizer {
	return &Synthesizer{config: config}
}

// Generate renders a width x height backdrop
func (s *Synthesizer) Generate(width, height int) *raster.Buffer {
	c := s.config
	buf := raster.New(width, height)
	if buf.Empty() {
		return buf
	}
	w, h := float64(width), float64(height)
	lx, ly := w*c.LightX, h*c.LightY

	raster.ParallelRows(height, func(y int) {
		t := float64(y) / h
		r := int(float64(c.Top.R)*(1-t) + float64(c.Bottom.R)*t)
		g := int(float64(c.Top.G)*(1-t) + float64(c.Bottom.G)*t)
		b := int(float64(c.Top.B)*(1-t) + float64(c.Bottom.B)*t)
		dy := (float64(y) - ly) / h

		row := buf.Row(y)
		for x := 0; x < width; x++ {
			dx := (float64(x) - lx) / w
			radial := math.Max(0, 1-math.Sqrt(dx*dx+dy*dy)*c.Falloff)
			radial = radial * radial * c.Intensity

			i := x * 3
			row[i+0] = raster.Clamp(int(float64(r) + radial*c.Warmth[0]))
			row[i+1] = raster.Clamp(int(float64(g) + radial*c.Warmth[1]))
			row[i+2] = raster.Clamp(int(float64(b) + radial*c.Warmth[2]))
		}
	})
	return buf
}
