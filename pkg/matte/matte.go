// Package matte builds the soft alpha mask that separates the subject from
// the background. There is no segmentation model: the mask is the union of
// three elliptical templates (head, body, hair) anchored to the face region,
// softened and edge-tightened with blur and contrast passes.
package matte

import (
	"math"

	"github.com/menta2k/headshot/pkg/raster"
	"github.com/menta2k/headshot/pkg/types"
)

// Ellipse is a template falloff anchored to the face region. Offsets and
// radii are expressed in multiples of the face width (X) and height (Y).
type Ellipse struct {
	RadiusX float64 `json:"radius_x" yaml:"radius_x"`
	RadiusY float64 `json:"radius_y" yaml:"radius_y"`
	OffsetY float64 `json:"offset_y" yaml:"offset_y"`
	Weight  float64 `json:"weight" yaml:"weight"`
	// Gate limits the template to rows below (body) or above (hair)
	// Cy + Gate*H.
	Gate float64 `json:"gate" yaml:"gate"`
}

// Config holds the mask geometry and post-processing constants
type Config struct {
	SampleStep int `json:"sample_step" yaml:"sample_step"`

	Head Ellipse `json:"head" yaml:"head"`
	Body Ellipse `json:"body" yaml:"body"`
	Hair Ellipse `json:"hair" yaml:"hair"`

	BlurDivisor    int     `json:"blur_divisor" yaml:"blur_divisor"`
	MinBlur        float64 `json:"min_blur" yaml:"min_blur"`
	Contrast       float64 `json:"contrast" yaml:"contrast"`
	SoftenDivisor  int     `json:"soften_divisor" yaml:"soften_divisor"`
	MinSoften      float64 `json:"min_soften" yaml:"min_soften"`
	FallbackScaleX float64 `json:"fallback_scale_x" yaml:"fallback_scale_x"`
	FallbackScaleY float64 `json:"fallback_scale_y" yaml:"fallback_scale_y"`
	FallbackBlur   float64 `json:"fallback_blur" yaml:"fallback_blur"`
}

// DefaultConfig returns the head-and-shoulders template set
func DefaultConfig() Config {
	return Config{
		SampleStep: 3,
		// centered slightly above the face center
		Head: Ellipse{RadiusX: 0.75, RadiusY: 0.85, OffsetY: -0.15, Weight: 1.0},
		// starts 0.2 face heights below the center and extends downward
		Body: Ellipse{RadiusX: 1.5, RadiusY: 3.0, OffsetY: 0.2, Weight: 0.9, Gate: 0.2},
		// full strength down to 0.6 face heights above the center
		Hair:           Ellipse{RadiusX: 0.9, RadiusY: 0.8, OffsetY: -0.6, Weight: 0.85, Gate: 0.1},
		BlurDivisor:    80,
		MinBlur:        3,
		Contrast:       1.8,
		SoftenDivisor:  120,
		MinSoften:      2,
		FallbackScaleX: 1.2,
		FallbackScaleY: 1.5,
		FallbackBlur:   20,
	}
}

// Builder produces subject masks
type Builder struct {
	config Config
}

// New creates a Builder with default templates
func New() *Builder {
	return &Builder{config: DefaultConfig()}
}

// NewWithConfig creates a Builder with custom templates
func NewWithConfig(config Config) *Builder {
	return &Builder{config: config}
}

// Result is a subject mask together with how it was obtained
type Result struct {
	Mask *raster.Mask
	// Reference is the average colour sampled around the face center
	Reference types.RGB
	// Fallback is set when no reference colour could be sampled and the
	// plain elliptical mask was used instead.
	Fallback bool
}

// Build computes the subject mask of buf for the given face region
func (b *Builder) Build(buf *raster.Buffer, face types.FaceRegion) Result {
	ref, ok := b.ReferenceColor(buf, face)
	if !ok {
		return Result{Mask: b.ellipseMask(buf.Width, buf.Height, face), Fallback: true}
	}

	c := b.config
	fw, fh := float64(face.W), float64(face.H)
	cx, cy := float64(face.Cx), float64(face.Cy)

	mask := raster.FillMask(buf.Width, buf.Height, func(x, y int) float64 {
		px, py := float64(x), float64(y)
		return max(
			headScore(px, py, cx, cy, fw, fh, c.Head),
			bodyScore(px, py, cx, cy, fw, fh, c.Body),
			hairScore(px, py, cx, cy, fw, fh, c.Hair),
		)
	})

	short := min(buf.Width, buf.Height)
	mask = mask.Blur(math.Max(c.MinBlur, float64(divide(short, c.BlurDivisor))))
	mask = mask.Contrast(c.Contrast)
	mask = mask.Blur(math.Max(c.MinSoften, float64(divide(short, c.SoftenDivisor))))

	return Result{Mask: mask, Reference: ref}
}

// ReferenceColor averages a window of samples around the face center. The
// window spans a third of the face extents in each direction. It reports
// false when the region is degenerate or the window contains no pixels.
func (b *Builder) ReferenceColor(buf *raster.Buffer, face types.FaceRegion) (types.RGB, bool) {
	if face.Area() == 0 {
		return types.RGB{}, false
	}

	step := max(1, b.config.SampleStep)
	rx, ry := face.W/3, face.H/3

	var sr, sg, sb, n int
	for y := max(0, face.Cy-ry); y < min(buf.Height, face.Cy+ry); y += step {
		for x := max(0, face.Cx-rx); x < min(buf.Width, face.Cx+rx); x += step {
			r, g, bl := buf.RGBAt(x, y)
			sr += int(r)
			sg += int(g)
			sb += int(bl)
			n++
		}
	}
	if n == 0 {
		return types.RGB{}, false
	}
	return types.RGB{R: uint8(sr / n), G: uint8(sg / n), B: uint8(sb / n)}, true
}

// ellipseMask is the fallback mask: one ellipse around the face, blurred
func (b *Builder) ellipseMask(width, height int, face types.FaceRegion) *raster.Mask {
	c := b.config
	rx := math.Max(1, float64(face.W)*c.FallbackScaleX)
	ry := math.Max(1, float64(face.H)*c.FallbackScaleY)
	cx, cy := float64(face.Cx), float64(face.Cy)

	mask := raster.FillMask(width, height, func(x, y int) float64 {
		dx := (float64(x) - cx) / rx
		dy := (float64(y) - cy) / ry
		return 1 - math.Sqrt(dx*dx+dy*dy)
	})
	return mask.Blur(c.FallbackBlur)
}

func headScore(x, y, cx, cy, fw, fh float64, e Ellipse) float64 {
	dx := (x - cx) / (fw * e.RadiusX)
	dy := (y - (cy + fh*e.OffsetY)) / (fh * e.RadiusY)
	return math.Max(0, 1-math.Sqrt(dx*dx+dy*dy)) * e.Weight
}

func bodyScore(x, y, cx, cy, fw, fh float64, e Ellipse) float64 {
	if y <= cy+fh*e.Gate {
		return 0
	}
	dx := math.Abs(x-cx) / (fw * e.RadiusX)
	dy := math.Max(0, y-cy-fh*e.OffsetY) / (fh * e.RadiusY)
	return math.Max(0, 1-math.Sqrt(dx*dx+dy*dy)) * e.Weight
}

func hairScore(x, y, cx, cy, fw, fh float64, e Ellipse) float64 {
	if y >= cy+fh*e.Gate {
		return 0
	}
	dx := math.Abs(x-cx) / (fw * e.RadiusX)
	dy := math.Max(0, cy+fh*e.OffsetY-y) / (fh * e.RadiusY)
	return math.Max(0, 1-math.Sqrt(dx*dx+dy*dy)) * e.Weight
}

func divide(v, d int) int {
	if d <= 0 {
		return 0
	}
	return v / d
}
