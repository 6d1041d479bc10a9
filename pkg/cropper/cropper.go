package cropper

import (
	"fmt"
	"image"

	"github.com/menta2k/headshot/pkg/raster"
	"github.com/menta2k/headshot/pkg/types"
)

// SquareCropPlanner computes rule-of-thirds square crops around a face
type SquareCropPlanner struct {
	config CropConfig
}

// CropConfig holds configuration for square cropping
type CropConfig struct {
	// FaceLine is the vertical position of the face center inside the crop,
	// as a fraction of the crop side measured from the top.
	FaceLine float64 `json:"face_line" yaml:"face_line"`
}

// DefaultCropConfig places the face center 38% from the top
func DefaultCropConfig() CropConfig {
	return CropConfig{FaceLine: 0.38}
}

// New creates a new SquareCropPlanner with default configuration
func New() *SquareCropPlanner {
	return &SquareCropPlanner{config: DefaultCropConfig()}
}

// NewWithConfig creates a new SquareCropPlanner with custom configuration
func NewWithConfig(config CropConfig) *SquareCropPlanner {
	return &SquareCropPlanner{config: config}
}

// CropResult contains the result of a cropping operation
type CropResult struct {
	Image *raster.Buffer
	// Rect is the crop rectangle in source coordinates
	Rect image.Rectangle
	// Face is the face region in crop coordinates
	Face types.FaceRegion
}

// Plan returns the square crop rectangle for an image of the given size and
// the face region remapped into crop space. The rectangle side is
// min(width, height) and it always lies fully inside the image.
func (c *SquareCropPlanner) Plan(width, height int, face types.FaceRegion) (image.Rectangle, types.FaceRegion) {
	size := min(width, height)
	line := int(float64(size) * c.config.FaceLine)

	top := clamp(face.Cy-line, 0, height-size)
	left := clamp(face.Cx-size/2, 0, width-size)

	// The new center is where the face would sit had the crop not been
	// clamped; the extents are carried over unmeasured.
	remapped := types.FaceRegion{Cx: size / 2, Cy: line, W: face.W, H: face.H}
	return image.Rect(left, top, left+size, top+size), remapped
}

// Apply crops buf to its planned square and remaps the face region
func (c *SquareCropPlanner) Apply(buf *raster.Buffer, face types.FaceRegion) (CropResult, error) {
	if buf.Empty() {
		return CropResult{}, fmt.Errorf("invalid image dimensions %dx%d", buf.Width, buf.Height)
	}

	rect, remapped := c.Plan(buf.Width, buf.Height, face)
	return CropResult{
		Image: buf.Crop(rect),
		Rect:  rect,
		Face:  remapped,
	}, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
