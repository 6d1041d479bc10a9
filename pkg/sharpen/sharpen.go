// Package sharpen sharpens the face while softening everything else, so the
// subject's features read crisply against a smooth background.
package sharpen

import (
	"fmt"
	"math"

	"github.com/menta2k/headshot/pkg/compositing"
	"github.com/menta2k/headshot/pkg/raster"
	"github.com/menta2k/headshot/pkg/types"
)

// Config holds the face-aware sharpening parameters
type Config struct {
	Unsharp  raster.UnsharpParams `json:"unsharp" yaml:"unsharp"`
	SoftBlur float64              `json:"soft_blur" yaml:"soft_blur"`

	// The sharp region is an ellipse of ScaleX*W by ScaleY*H around the face
	// center, fading out at 1/Falloff normalised radii.
	ScaleX  float64 `json:"scale_x" yaml:"scale_x"`
	ScaleY  float64 `json:"scale_y" yaml:"scale_y"`
	Falloff float64 `json:"falloff" yaml:"falloff"`

	BlurDivisor int     `json:"blur_divisor" yaml:"blur_divisor"`
	MinBlur     float64 `json:"min_blur" yaml:"min_blur"`
}

// DefaultConfig returns the standard portrait sharpening setup
func DefaultConfig() Config {
	return Config{
		Unsharp:     raster.UnsharpParams{Radius: 2, Percent: 120, Threshold: 3},
		SoftBlur:    3,
		ScaleX:      0.9,
		ScaleY:      1.1,
		Falloff:     0.8,
		BlurDivisor: 40,
		MinBlur:     5,
	}
}

// FaceAwareSharpener composites a sharpened copy over a softened copy
// through a mask centred on the face
type FaceAwareSharpener struct {
	config Config
}

// New creates a sharpener with the default parameters
func New() *FaceAwareSharpener {
	return &FaceAwareSharpener{config: DefaultConfig()}
}

// NewWithConfig creates a sharpener with custom parameters
func NewWithConfig(config Config) *FaceAwareSharpener {
	return &FaceAwareSharpener{config: config}
}

// Apply returns buf sharpened inside the face region and softened outside it
func (s *FaceAwareSharpener) Apply(buf *raster.Buffer, face types.FaceRegion) (*raster.Buffer, error) {
	if buf.Empty() {
		return buf.Clone(), nil
	}

	sharp := raster.UnsharpMask(buf, s.config.Unsharp)
	soft := raster.GaussianBlur(buf, s.config.SoftBlur)
	mask := s.Mask(buf.Width, buf.Height, face)

	out, err := compositing.Composite(sharp, soft, mask)
	if err != nil {
		return nil, fmt.Errorf("failed to composite sharpened face: %w", err)
	}
	return out, nil
}

// Mask returns the sharpening weight for every pixel: 255 at the face
// center, fading to 0 outside the face ellipse.
func (s *FaceAwareSharpener) Mask(width, height int, face types.FaceRegion) *raster.Mask {
	c := s.config
	rx := math.Max(1, float64(face.W)*c.ScaleX)
	ry := math.Max(1, float64(face.H)*c.ScaleY)
	cx, cy := float64(face.Cx), float64(face.Cy)

	mask := raster.FillMask(width, height, func(x, y int) float64 {
		dx := (float64(x) - cx) / rx
		dy := (float64(y) - cy) / ry
		return 1 - c.Falloff*math.Sqrt(dx*dx+dy*dy)
	})

	sigma := c.MinBlur
	if c.BlurDivisor > 0 {
		sigma = math.Max(sigma, float64(min(width, height)/c.BlurDivisor))
	}
	return mask.Blur(sigma)
}
