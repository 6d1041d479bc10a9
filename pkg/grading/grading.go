// Package grading applies the cinematic colour grade and the final tonal
// enhancements. Every transform here is a pure per-pixel function.
package grading

import (
	"github.com/menta2k/headshot/pkg/raster"
)

// Config holds the colour grading constants. Per-channel arrays are in
// R, G, B order.
type Config struct {
	// Shadow lift, scaled by (1 - luminance)
	Lift [3]float64 `json:"lift" yaml:"lift"`

	// Warm highlights above HighlightStart, scaled by (lum-start)/(1-start)
	HighlightStart float64    `json:"highlight_start" yaml:"highlight_start"`
	Highlight      [3]float64 `json:"highlight" yaml:"highlight"`

	// Teal midtones inside (MidLow, MidHigh), triangular weight around MidPeak
	MidLow   float64    `json:"mid_low" yaml:"mid_low"`
	MidHigh  float64    `json:"mid_high" yaml:"mid_high"`
	MidPeak  float64    `json:"mid_peak" yaml:"mid_peak"`
	MidWidth float64    `json:"mid_width" yaml:"mid_width"`
	Teal     [3]float64 `json:"teal" yaml:"teal"`

	// Range compression: channel*Compress + Offset
	Compress float64    `json:"compress" yaml:"compress"`
	Offset   [3]float64 `json:"offset" yaml:"offset"`
}

// DefaultConfig returns cool shadows, warm highlights and a teal midtone split
func DefaultConfig() Config {
	return Config{
		Lift:           [3]float64{15, 12, 20},
		HighlightStart: 0.5,
		Highlight:      [3]float64{10, 5, -5},
		MidLow:         0.2,
		MidHigh:        0.7,
		MidPeak:        0.45,
		MidWidth:       0.25,
		Teal:           [3]float64{0, 3, 5},
		Compress:       0.95,
		Offset:         [3]float64{8, 6, 8},
	}
}

// Grader applies the cinematic grade
type Grader struct {
	config Config
}

// New creates a Grader with the default look
func New() *Grader {
	return &Grader{config: DefaultConfig()}
}

// NewWithConfig creates a Grader with a custom look
func NewWithConfig(config Config) *Grader {
	return &Grader{config: config}
}

// Apply grades every pixel of buf and returns the result
func (g *Grader) Apply(buf *raster.Buffer) *raster.Buffer {
	return raster.Map(buf, func(_, _ int, r, gr, b uint8) (uint8, uint8, uint8) {
		return g.GradePixel(r, gr, b)
	})
}

// GradePixel grades a single colour. Every intermediate step truncates to an
// integer, as the grade was tuned against integer arithmetic.
func (g *Grader) GradePixel(r8, g8, b8 uint8) (uint8, uint8, uint8) {
	c := g.config
	lum := Luminance(r8, g8, b8)
	ch := [3]int{int(r8), int(g8), int(b8)}

	for i := range ch {
		ch[i] = int(float64(ch[i]) + c.Lift[i]*(1-lum))
	}

	if lum > c.HighlightStart && c.HighlightStart < 1 {
		strength := (lum - c.HighlightStart) / (1 - c.HighlightStart)
		for i := range ch {
			if c.Highlight[i] != 0 {
				ch[i] = int(float64(ch[i]) + c.Highlight[i]*strength)
			}
		}
	}

	if lum > c.MidLow && lum < c.MidHigh && c.MidWidth > 0 {
		mid := 1 - abs(lum-c.MidPeak)/c.MidWidth
		mid = max(0, min(1, mid))
		for i := range ch {
			if c.Teal[i] != 0 {
				ch[i] = int(float64(ch[i]) + c.Teal[i]*mid)
			}
		}
	}

	for i := range ch {
		ch[i] = int(float64(ch[i])*c.Compress + c.Offset[i])
	}

	return raster.Clamp(ch[0]), raster.Clamp(ch[1]), raster.Clamp(ch[2])
}

// Luminance returns the Rec. 601 luminance of a colour in [0,1]
func Luminance(r, g, b uint8) float64 {
	return (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 255
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
