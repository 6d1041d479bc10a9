package sharpen

import (
	"bytes"
	"testing"

	"github.com/menta2k/headshot/pkg/raster"
	"github.com/menta2k/headshot/pkg/types"
)

// createTestImage creates a checkerboard so both sharpening and blurring
// leave visible traces
func createTestImage(width, height, cell int) *raster.Buffer {
	buf := raster.New(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if (x/cell+y/cell)%2 == 0 {
				buf.SetRGB(x, y, 200, 180, 160)
			} else {
				buf.SetRGB(x, y, 40, 50, 60)
			}
		}
	}
	return buf
}

func TestMaskShape(t *testing.T) {
	s := New()
	face := types.FaceRegion{Cx: 100, Cy: 100, W: 60, H: 80}
	mask := s.Mask(200, 200, face)

	if mask.Width != 200 || mask.Height != 200 {
		t.Fatalf("Expected 200x200 mask, got %dx%d", mask.Width, mask.Height)
	}
	if v := mask.At(100, 100); v < 200 {
		t.Errorf("Expected strong weight at face center, got %d", v)
	}
	if v := mask.At(0, 0); v > 10 {
		t.Errorf("Expected no weight in the corner, got %d", v)
	}
}

func TestApplyPreservesSize(t *testing.T) {
	buf := createTestImage(120, 90, 4)
	out, err := New().Apply(buf, types.FaceRegion{Cx: 60, Cy: 40, W: 30, H: 36})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if out.Width != 120 || out.Height != 90 {
		t.Errorf("Expected 120x90, got %dx%d", out.Width, out.Height)
	}
}

func TestApplySoftensOutsideFace(t *testing.T) {
	buf := createTestImage(200, 200, 2)
	face := types.FaceRegion{Cx: 100, Cy: 100, W: 40, H: 50}
	out, err := New().Apply(buf, face)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	// a fine checkerboard blurred with sigma 3 collapses toward its mean
	r1, _, _ := out.RGBAt(5, 5)
	r2, _, _ := out.RGBAt(7, 5)
	diff := int(r1) - int(r2)
	if diff < 0 {
		diff = -diff
	}
	if diff > 20 {
		t.Errorf("Expected softened background, neighbouring cells differ by %d", diff)
	}
}

func TestApplyFlatImageUnchanged(t *testing.T) {
	buf := raster.Filled(64, 64, 120, 110, 100)
	out, err := New().Apply(buf, types.FaceRegion{Cx: 32, Cy: 32, W: 16, H: 20})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	for i := range out.Pix {
		d := int(out.Pix[i]) - int(buf.Pix[i])
		if d < -1 || d > 1 {
			t.Fatalf("Flat image changed at %d: %d -> %d", i, buf.Pix[i], out.Pix[i])
		}
	}
}

func TestApplyDeterministic(t *testing.T) {
	buf := createTestImage(96, 96, 3)
	face := types.FaceRegion{Cx: 48, Cy: 40, W: 24, H: 30}
	a, _ := New().Apply(buf, face)
	b, _ := New().Apply(buf, face)
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Error("Sharpening should be deterministic")
	}
}

func TestApplyEmpty(t *testing.T) {
	out, err := New().Apply(raster.New(0, 0), types.FaceRegion{})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if !out.Empty() {
		t.Error("Expected empty output for empty input")
	}
}

func BenchmarkApply(b *testing.B) {
	buf := createTestImage(1000, 1000, 8)
	face := types.FaceRegion{Cx: 500, Cy: 380, W: 250, H: 300}
	s := New()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Apply(buf, face)
	}
}
