package raster

import (
	"image"

	"github.com/disintegration/imaging"
)

// Mask is a single-channel alpha buffer. A value of 255 means the effect or
// foreground is applied fully, 0 means not at all.
type Mask struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewMask allocates a zero mask
func NewMask(width, height int) *Mask {
	return &Mask{Width: width, Height: height, Pix: make([]uint8, width*height)}
}

// At returns the mask value at (x, y)
func (m *Mask) At(x, y int) uint8 {
	return m.Pix[y*m.Width+x]
}

// Set stores v at (x, y)
func (m *Mask) Set(x, y int, v uint8) {
	m.Pix[y*m.Width+x] = v
}

// Fraction returns the mask value at (x, y) normalised to [0,1]
func (m *Mask) Fraction(x, y int) float64 {
	return float64(m.At(x, y)) / 255
}

// Row returns the samples of row y
func (m *Mask) Row(y int) []uint8 {
	return m.Pix[y*m.Width : (y+1)*m.Width]
}

// SameSize reports whether the mask matches the buffer dimensions
func (m *Mask) SameSize(b *Buffer) bool {
	return m.Width == b.Width && m.Height == b.Height
}

// FillMask builds a mask by evaluating score for every pixel. Scores are clamped
// to [0,1] and truncated onto the 0..255 scale.
func FillMask(width, height int, score func(x, y int) float64) *Mask {
	m := NewMask(width, height)
	ParallelRows(height, func(y int) {
		row := m.Row(y)
		for x := range row {
			s := score(x, y)
			if s < 0 {
				s = 0
			}
			if s > 1 {
				s = 1
			}
			row[x] = uint8(s * 255)
		}
	})
	return m
}

// ToGray converts the mask to a grayscale image
func (m *Mask) ToGray() *image.Gray {
	g := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		copy(g.Pix[y*g.Stride:y*g.Stride+m.Width], m.Row(y))
	}
	return g
}

// MaskFromImage reads the red channel of img as a mask
func MaskFromImage(img image.Image) *Mask {
	src := imaging.Clone(img)
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	m := NewMask(w, h)
	ParallelRows(h, func(y int) {
		row := m.Row(y)
		si := y * src.Stride
		for x := range row {
			row[x] = src.Pix[si]
			si += 4
		}
	})
	return m
}

// Blur returns a Gaussian-blurred copy of the mask
func (m *Mask) Blur(sigma float64) *Mask {
	if sigma <= 0 {
		return m.Clone()
	}
	return MaskFromImage(imaging.Blur(m.ToGray(), sigma))
}

// Clone returns a deep copy of the mask
func (m *Mask) Clone() *Mask {
	out := NewMask(m.Width, m.Height)
	copy(out.Pix, m.Pix)
	return out
}

// Mean returns the average mask value rounded to the nearest integer
func (m *Mask) Mean() int {
	if len(m.Pix) == 0 {
		return 0
	}
	var sum uint64
	for _, v := range m.Pix {
		sum += uint64(v)
	}
	return int(float64(sum)/float64(len(m.Pix)) + 0.5)
}

// Contrast stretches mask values away from their mean by factor
func (m *Mask) Contrast(factor float64) *Mask {
	mean := float64(m.Mean())
	var lut [256]uint8
	for i := range lut {
		lut[i] = ClampF(mean + (float64(i)-mean)*factor)
	}
	out := NewMask(m.Width, m.Height)
	for i, v := range m.Pix {
		out.Pix[i] = lut[v]
	}
	return out
}
