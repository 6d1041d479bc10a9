// Package raster holds the pixel containers shared by every processing stage:
// a packed RGB Buffer, a single-channel Mask, and the helpers that bridge them
// to image.Image so the imaging library can operate on them.
//
// Buffers are row-major with three bytes per pixel and no padding. Stages never
// assume the size of the original photo; they read Width and Height from the
// buffer they are given.
package raster

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Buffer is a packed row-major RGB image
type Buffer struct {
	Width  int
	Height int
	Pix    []uint8
}

// New allocates a black buffer of the given size
func New(width, height int) *Buffer {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Buffer{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*3),
	}
}

// Filled allocates a buffer where every pixel has the given colour
func Filled(width, height int, r, g, b uint8) *Buffer {
	buf := New(width, height)
	for i := 0; i < len(buf.Pix); i += 3 {
		buf.Pix[i+0] = r
		buf.Pix[i+1] = g
		buf.Pix[i+2] = b
	}
	return buf
}

// Empty reports whether the buffer has no pixels
func (b *Buffer) Empty() bool {
	return b == nil || b.Width <= 0 || b.Height <= 0
}

// Bounds returns the buffer rectangle anchored at the origin
func (b *Buffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.Width, b.Height)
}

// Offset returns the index of the red sample of pixel (x, y)
func (b *Buffer) Offset(x, y int) int {
	return (y*b.Width + x) * 3
}

// RGBAt returns the colour of pixel (x, y)
func (b *Buffer) RGBAt(x, y int) (uint8, uint8, uint8) {
	i := b.Offset(x, y)
	return b.Pix[i], b.Pix[i+1], b.Pix[i+2]
}

// SetRGB sets the colour of pixel (x, y)
func (b *Buffer) SetRGB(x, y int, r, g, bl uint8) {
	i := b.Offset(x, y)
	b.Pix[i+0] = r
	b.Pix[i+1] = g
	b.Pix[i+2] = bl
}

// Row returns the samples of row y
func (b *Buffer) Row(y int) []uint8 {
	start := y * b.Width * 3
	return b.Pix[start : start+b.Width*3]
}

// Clone returns a deep copy of the buffer
func (b *Buffer) Clone() *Buffer {
	out := &Buffer{Width: b.Width, Height: b.Height, Pix: make([]uint8, len(b.Pix))}
	copy(out.Pix, b.Pix)
	return out
}

// SameSize reports whether both buffers have identical dimensions
func (b *Buffer) SameSize(o *Buffer) bool {
	return b.Width == o.Width && b.Height == o.Height
}

// Crop copies the part of the buffer covered by r. r is clipped to the
// buffer bounds first.
func (b *Buffer) Crop(r image.Rectangle) *Buffer {
	return FromImage(imaging.Crop(b.ToNRGBA(), r))
}

// FromImage converts any image to an RGB buffer. Alpha is dropped without
// compositing, so transparent pixels keep their stored colour.
func FromImage(img image.Image) *Buffer {
	var src *image.NRGBA
	if n, ok := img.(*image.NRGBA); ok && n.Bounds().Min == (image.Point{}) {
		src = n
	} else {
		src = imaging.Clone(img)
	}
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	out := New(w, h)
	ParallelRows(h, func(y int) {
		row := out.Row(y)
		si := y * src.Stride
		for x := 0; x < w; x++ {
			row[x*3+0] = src.Pix[si+0]
			row[x*3+1] = src.Pix[si+1]
			row[x*3+2] = src.Pix[si+2]
			si += 4
		}
	})
	return out
}

// ToNRGBA converts the buffer to an opaque *image.NRGBA
func (b *Buffer) ToNRGBA() *image.NRGBA {
	dst := image.NewNRGBA(b.Bounds())
	ParallelRows(b.Height, func(y int) {
		row := b.Row(y)
		di := y * dst.Stride
		for x := 0; x < b.Width; x++ {
			dst.Pix[di+0] = row[x*3+0]
			dst.Pix[di+1] = row[x*3+1]
			dst.Pix[di+2] = row[x*3+2]
			dst.Pix[di+3] = 0xff
			di += 4
		}
	})
	return dst
}

// ColorModel, Bounds and At let a Buffer be handed directly to encoders.
func (b *Buffer) ColorModel() color.Model {
	return color.NRGBAModel
}

// At implements image.Image
func (b *Buffer) At(x, y int) color.Color {
	if !(image.Point{x, y}).In(b.Bounds()) {
		return color.NRGBA{}
	}
	r, g, bl := b.RGBAt(x, y)
	return color.NRGBA{R: r, G: g, B: bl, A: 0xff}
}

// Clamp truncates v into the 8-bit channel range
func Clamp(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// ClampF truncates v toward zero and clamps it into the 8-bit channel range
func ClampF(v float64) uint8 {
	return Clamp(int(v))
}

// Luma returns the ITU-R 601-2 luma of a colour with the same fixed-point
// rounding that common imaging toolkits use for RGB to L conversion.
func Luma(r, g, b uint8) uint8 {
	return uint8((uint32(r)*19595 + uint32(g)*38470 + uint32(b)*7471 + 0x8000) >> 16)
}
