// Package lighting simulates studio light on a finished composite: a warm key
// light from the upper left, a cool rim light on the right, and a radial
// vignette.
package lighting

import (
	"fmt"
	"math"

	"github.com/menta2k/headshot/pkg/raster"
	"github.com/menta2k/headshot/pkg/types"
)

// Light is a radial light source. Position is a fraction of the image size;
// Y is ignored for the rim light, which follows the face center.
type Light struct {
	X        float64    `json:"x" yaml:"x"`
	Y        float64    `json:"y" yaml:"y"`
	Falloff  float64    `json:"falloff" yaml:"falloff"`
	Exponent float64    `json:"exponent" yaml:"exponent"`
	Tint     [3]float64 `json:"tint" yaml:"tint"`
}

// Config holds the key and rim light parameters
type Config struct {
	Key Light `json:"key" yaml:"key"`
	Rim Light `json:"rim" yaml:"rim"`

	// Rim light extents: a fraction of the image width horizontally and a
	// multiple of the face height vertically.
	RimScaleX float64 `json:"rim_scale_x" yaml:"rim_scale_x"`
	RimScaleY float64 `json:"rim_scale_y" yaml:"rim_scale_y"`
}

// DefaultConfig returns a warm key and a cool rim light
func DefaultConfig() Config {
	return Config{
		Key: Light{X: 0.25, Y: 0.15, Falloff: 1.2, Exponent: 2, Tint: [3]float64{30, 22, 15}},
		Rim: Light{X: 0.85, Falloff: 1, Exponent: 3, Tint: [3]float64{10, 15, 25}},

		RimScaleX: 0.3,
		RimScaleY: 2,
	}
}

// Simulator adds studio lighting to images
type Simulator struct {
	config Config
}

// New creates a Simulator with default lights
func New() *Simulator {
	return &Simulator{config: DefaultConfig()}
}

// NewWithConfig creates a Simulator with custom lights
func NewWithConfig(config Config) *Simulator {
	return &Simulator{config: config}
}

// Overlay renders the light contribution for a width x height image
func (s *Simulator) Overlay(width, height int, face types.FaceRegion) *raster.Buffer {
	c := s.config
	w, h := float64(width), float64(height)
	kx, ky := w*c.Key.X, h*c.Key.Y
	rx, ry := w*c.Rim.X, float64(face.Cy)
	rsx := math.Max(1, w*c.RimScaleX)
	rsy := math.Max(1, float64(face.H)*c.RimScaleY)

	light := raster.New(width, height)
	raster.ParallelRows(height, func(y int) {
		row := light.Row(y)
		fy := float64(y)
		for x := 0; x < width; x++ {
			fx := float64(x)

			dx, dy := (fx-kx)/w, (fy-ky)/h
			key := math.Pow(math.Max(0, 1-math.Sqrt(dx*dx+dy*dy)*c.Key.Falloff), c.Key.Exponent)

			dx, dy = (fx-rx)/rsx, (fy-ry)/rsy
			rim := math.Pow(math.Max(0, 1-math.Sqrt(dx*dx+dy*dy)*c.Rim.Falloff), c.Rim.Exponent)

			i := x * 3
			for ch := 0; ch < 3; ch++ {
				row[i+ch] = raster.Clamp(int(key*c.Key.Tint[ch]) + int(rim*c.Rim.Tint[ch]))
			}
		}
	})
	return light
}

// Apply screen-blends the light overlay onto buf
func (s *Simulator) Apply(buf *raster.Buffer, face types.FaceRegion) *raster.Buffer {
	out, _ := Screen(buf, s.Overlay(buf.Width, buf.Height, face))
	return out
}

// Screen blends overlay onto base: 255 - (255-base)(255-overlay)/255
func Screen(base, overlay *raster.Buffer) (*raster.Buffer, error) {
	if !base.SameSize(overlay) {
		return nil, fmt.Errorf("size mismatch: base %dx%d, overlay %dx%d",
			base.Width, base.Height, overlay.Width, overlay.Height)
	}
	out := raster.New(base.Width, base.Height)
	raster.ParallelRows(base.Height, func(y int) {
		b, o, dst := base.Row(y), overlay.Row(y), out.Row(y)
		for i := range dst {
			dst[i] = ScreenChannel(b[i], o[i])
		}
	})
	return out, nil
}

// ScreenChannel screen-blends a single channel value
func ScreenChannel(base, overlay uint8) uint8 {
	return raster.Clamp(int(255 - float64(255-int(base))*float64(255-int(overlay))/255))
}
