package types

import (
	"fmt"
	"image"

	"github.com/lucasb-eyer/go-colorful"
)

// FaceRegion is an estimated face location in pixel coordinates.
// It is only meaningful relative to the buffer it was computed from and
// must be remapped after any crop or resize.
type FaceRegion struct {
	Cx int `json:"cx" yaml:"cx"`
	Cy int `json:"cy" yaml:"cy"`
	W  int `json:"w" yaml:"w"`
	H  int `json:"h" yaml:"h"`
}

// FallbackRegion returns the region used when no face could be estimated:
// the image center with a quarter of the width and a third of the height.
func FallbackRegion(width, height int) FaceRegion {
	return FaceRegion{
		Cx: width / 2,
		Cy: height / 2,
		W:  max(1, width/4),
		H:  max(1, height/3),
	}
}

// Bounds returns the rectangle spanned by the region.
func (f FaceRegion) Bounds() image.Rectangle {
	return image.Rect(f.Cx-f.W/2, f.Cy-f.H/2, f.Cx-f.W/2+f.W, f.Cy-f.H/2+f.H)
}

// Area returns the area of the region
func (f FaceRegion) Area() int {
	return f.W * f.H
}

// RGB is an 8-bit colour triple. It marshals to and from hex strings such
// as "#121624".
type RGB struct {
	R, G, B uint8
}

// ParseRGB parses a hex colour such as "#121624"
func ParseRGB(hex string) (RGB, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid colour %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return RGB{R: r, G: g, B: b}, nil
}

// Hex renders the colour as a lowercase hex string
func (c RGB) Hex() string {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}.Hex()
}

// MarshalText implements encoding.TextMarshaler
func (c RGB) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (c *RGB) UnmarshalText(text []byte) error {
	parsed, err := ParseRGB(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// SaveOptions controls how a finished buffer is encoded
type SaveOptions struct {
	Format   string `json:"format" yaml:"format"` // jpg, png or webp
	Quality  int    `json:"quality" yaml:"quality"`
	Lossless bool   `json:"lossless" yaml:"lossless"`
}

// DefaultOutputPath is used when no output path is given
const DefaultOutputPath = "profile_photo_professional.jpg"
